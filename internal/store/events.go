package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoropai/argus/internal/model"
)

// InsertEvent appends a new event and returns its ID.
func (s *SQLiteStore) InsertEvent(ctx context.Context, event model.Event) (string, error) {
	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := event.Status
	if status == "" {
		status = model.EventRaw
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	sources, err := json.Marshal(orEmptySources(event.Sources))
	if err != nil {
		return "", fmt.Errorf("marshal sources: %w", err)
	}
	entities, err := json.Marshal(orEmpty(event.Entities))
	if err != nil {
		return "", fmt.Errorf("marshal entities: %w", err)
	}
	tags, err := json.Marshal(orEmpty(event.Tags))
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, statement, occurred_at, sources, entities, tags, action_type, status, created_at, retracted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, event.Statement, nullTime(event.OccurredAt), string(sources), string(entities),
		string(tags), nullString(string(event.ActionType)), string(status), createdAt, event.Retracted,
	)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// GetRecentEvents returns the most recently recorded events.
func (s *SQLiteStore) GetRecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, statement, occurred_at, sources, entities, tags, action_type, status, created_at, retracted
		 FROM events
		 ORDER BY created_at DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectEvents(rows)
}

// GetActionsInWindow returns non-retracted real-world actions that occurred
// inside [start, end]. Used by Judgment 0.
func (s *SQLiteStore) GetActionsInWindow(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, statement, occurred_at, sources, entities, tags, action_type, status, created_at, retracted
		 FROM events
		 WHERE action_type IS NOT NULL
		   AND retracted = 0
		   AND occurred_at >= ? AND occurred_at <= ?
		 ORDER BY occurred_at DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions in window: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectEvents(rows)
}

// MarkEventRetracted records a retraction. The original row is left intact;
// a retraction record is appended instead.
func (s *SQLiteStore) MarkEventRetracted(ctx context.Context, eventID string) error {
	_, err := s.InsertEvent(ctx, model.Event{
		Statement: fmt.Sprintf("RETRACTION: event %s has been retracted", eventID),
		Tags:      []string{"retraction"},
		Status:    model.EventStale,
		Retracted: true,
	})
	if err != nil {
		return fmt.Errorf("insert retraction: %w", err)
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		var (
			event      model.Event
			occurredAt sql.NullTime
			sources    string
			entities   string
			tags       string
			actionType sql.NullString
			status     string
		)
		if err := rows.Scan(&event.ID, &event.Statement, &occurredAt, &sources,
			&entities, &tags, &actionType, &status, &event.CreatedAt, &event.Retracted); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if occurredAt.Valid {
			t := occurredAt.Time
			event.OccurredAt = &t
		}
		if err := json.Unmarshal([]byte(sources), &event.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		if err := json.Unmarshal([]byte(entities), &event.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &event.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		event.ActionType = model.ActionType(actionType.String)
		event.Status = model.EventStatus(status)
		events = append(events, event)
	}
	return events, rows.Err()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptySources(s []model.SourceReference) []model.SourceReference {
	if s == nil {
		return []model.SourceReference{}
	}
	return s
}
