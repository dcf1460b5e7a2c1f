package store

import (
	"context"
	"errors"
	"time"

	"github.com/avoropai/argus/internal/model"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ClaimStore persists attributed statements awaiting analysis.
type ClaimStore interface {
	InsertClaim(ctx context.Context, claim model.Claim) (string, error)
	GetPendingClaims(ctx context.Context, limit int, hours int) ([]model.Claim, error)
	UpdateClaimStatus(ctx context.Context, id string, status model.ClaimStatus) error
}

// EventStore persists verified real-world actions. The table is append-only:
// retraction inserts a record rather than touching the original row.
type EventStore interface {
	InsertEvent(ctx context.Context, event model.Event) (string, error)
	GetRecentEvents(ctx context.Context, limit int) ([]model.Event, error)
	GetActionsInWindow(ctx context.Context, start, end time.Time) ([]model.Event, error)
	MarkEventRetracted(ctx context.Context, eventID string) error
}

// HypothesisStore manages hypothesis lifecycles.
type HypothesisStore interface {
	InsertHypothesis(ctx context.Context, h model.Hypothesis) (string, error)
	GetHypothesis(ctx context.Context, id string) (*model.Hypothesis, error)
	GetPendingHypotheses(ctx context.Context) ([]model.Hypothesis, error)
	UpdateHypothesisStatus(ctx context.Context, id string, status model.HypothesisStatus, supportDelta, refuteDelta int) error
}

// Store is the combined durable store used by the orchestrator.
type Store interface {
	ClaimStore
	EventStore
	HypothesisStore
	Migrate(ctx context.Context) error
	Close() error
}
