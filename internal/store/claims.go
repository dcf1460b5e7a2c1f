package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoropai/argus/internal/model"
)

// InsertClaim stores a new claim as PENDING and returns its ID.
func (s *SQLiteStore) InsertClaim(ctx context.Context, claim model.Claim) (string, error) {
	id := claim.ID
	if id == "" {
		id = uuid.New().String()
	}
	status := claim.Status
	if status == "" {
		status = model.ClaimPending
	}
	createdAt := claim.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, claim_text, attributed_to, source_url, observed_at, batch_id, processing_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, claim.Text, claim.AttributedTo, nullString(claim.SourceURL),
		nullTime(claim.ObservedAt), nullString(claim.BatchID), string(status), createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert claim: %w", err)
	}
	return id, nil
}

// GetPendingClaims returns PENDING claims observed within the trailing
// window, oldest first, capped at limit.
func (s *SQLiteStore) GetPendingClaims(ctx context.Context, limit int, hours int) ([]model.Claim, error) {
	if limit <= 0 {
		limit = 20
	}
	if hours <= 0 {
		hours = 24
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_text, attributed_to, source_url, observed_at, batch_id, processing_status, created_at
		 FROM claims
		 WHERE processing_status = ? AND created_at >= ?
		 ORDER BY created_at ASC
		 LIMIT ?`,
		string(model.ClaimPending), cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// UpdateClaimStatus advances a claim's processing status. Transitions are
// monotonic; regressions are rejected.
func (s *SQLiteStore) UpdateClaimStatus(ctx context.Context, id string, status model.ClaimStatus) error {
	rank := map[model.ClaimStatus]int{
		model.ClaimPending:    0,
		model.ClaimProcessing: 1,
		model.ClaimCompleted:  2,
	}

	var current string
	err := s.db.QueryRowContext(ctx,
		`SELECT processing_status FROM claims WHERE id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query claim status: %w", err)
	}

	if rank[status] < rank[model.ClaimStatus(current)] {
		return fmt.Errorf("claim %s: cannot move status backwards from %s to %s", id, current, status)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE claims SET processing_status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	return nil
}

func scanClaim(rows *sql.Rows) (model.Claim, error) {
	var (
		claim      model.Claim
		sourceURL  sql.NullString
		observedAt sql.NullTime
		batchID    sql.NullString
		status     string
	)
	if err := rows.Scan(&claim.ID, &claim.Text, &claim.AttributedTo, &sourceURL,
		&observedAt, &batchID, &status, &claim.CreatedAt); err != nil {
		return model.Claim{}, fmt.Errorf("scan claim: %w", err)
	}
	claim.SourceURL = sourceURL.String
	claim.BatchID = batchID.String
	claim.Status = model.ClaimStatus(status)
	if observedAt.Valid {
		t := observedAt.Time
		claim.ObservedAt = &t
	}
	return claim, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
