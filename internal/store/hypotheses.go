package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoropai/argus/internal/model"
)

// InsertHypothesis stores a new hypothesis as PROPOSED and returns its ID.
// A hypothesis without a falsifiable condition is rejected here as a last
// line of defense; the judgment pipeline should never produce one.
func (s *SQLiteStore) InsertHypothesis(ctx context.Context, h model.Hypothesis) (string, error) {
	if h.FalsifiableCondition == "" {
		return "", fmt.Errorf("hypothesis without falsifiable condition is not persistable")
	}

	id := h.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := h.Status
	if status == "" {
		status = model.HypothesisProposed
	}
	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hypotheses (id, statement, falsifiable_condition, verification_deadline, status, support_count, refute_count, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, h.Statement, h.FalsifiableCondition, nullTime(h.VerificationDeadline),
		string(status), h.SupportCount, h.RefuteCount, h.Confidence, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert hypothesis: %w", err)
	}
	return id, nil
}

// GetHypothesis fetches one hypothesis by ID.
func (s *SQLiteStore) GetHypothesis(ctx context.Context, id string) (*model.Hypothesis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, statement, falsifiable_condition, verification_deadline, status, support_count, refute_count, confidence, created_at, resolved_at
		 FROM hypotheses WHERE id = ?`, id,
	)
	h, err := scanHypothesis(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("hypothesis %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetPendingHypotheses returns every unresolved hypothesis ordered by
// verification deadline, soonest first.
func (s *SQLiteStore) GetPendingHypotheses(ctx context.Context) ([]model.Hypothesis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, statement, falsifiable_condition, verification_deadline, status, support_count, refute_count, confidence, created_at, resolved_at
		 FROM hypotheses
		 WHERE status IN (?, ?, ?)
		 ORDER BY verification_deadline ASC`,
		string(model.HypothesisProposed), string(model.HypothesisStrengthened), string(model.HypothesisWeakened),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending hypotheses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hs []model.Hypothesis
	for rows.Next() {
		h, err := scanHypothesis(rows)
		if err != nil {
			return nil, err
		}
		hs = append(hs, *h)
	}
	return hs, rows.Err()
}

// UpdateHypothesisStatus applies a lifecycle transition and bumps the
// support/refute counters. Counters only grow; a terminal status also stamps
// resolved_at. The read-then-write here is safe only because a single
// orchestrator instance runs at a time.
func (s *SQLiteStore) UpdateHypothesisStatus(ctx context.Context, id string, status model.HypothesisStatus, supportDelta, refuteDelta int) error {
	if supportDelta < 0 || refuteDelta < 0 {
		return fmt.Errorf("support/refute counters are monotonic, got deltas %d/%d", supportDelta, refuteDelta)
	}

	current, err := s.GetHypothesis(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return fmt.Errorf("hypothesis %s already resolved as %s", id, current.Status)
	}

	var resolvedAt any
	if status.Terminal() {
		resolvedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE hypotheses
		 SET status = ?, support_count = ?, refute_count = ?, resolved_at = ?
		 WHERE id = ?`,
		string(status), current.SupportCount+supportDelta, current.RefuteCount+refuteDelta, resolvedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update hypothesis status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHypothesis(row rowScanner) (*model.Hypothesis, error) {
	var (
		h          model.Hypothesis
		deadline   sql.NullTime
		status     string
		resolvedAt sql.NullTime
	)
	err := row.Scan(&h.ID, &h.Statement, &h.FalsifiableCondition, &deadline,
		&status, &h.SupportCount, &h.RefuteCount, &h.Confidence, &h.CreatedAt, &resolvedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan hypothesis: %w", err)
	}
	if deadline.Valid {
		t := deadline.Time
		h.VerificationDeadline = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		h.ResolvedAt = &t
	}
	h.Status = model.HypothesisStatus(status)
	return &h, nil
}
