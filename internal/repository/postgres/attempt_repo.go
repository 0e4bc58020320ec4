package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docfill/internal/domain"
	"docfill/internal/port"
)

type attemptRepo struct {
	db *sqlx.DB
}

// NewAttemptRepo creates a new PostgreSQL-backed AttemptRepository.
func NewAttemptRepo(db *sqlx.DB) port.AttemptRepository {
	return &attemptRepo{db: db}
}

func (r *attemptRepo) Upsert(ctx context.Context, sessionID uuid.UUID, a *domain.ValidationAttempt) error {
	a.UpdatedAt = time.Now().UTC()

	query := `INSERT INTO validation_attempts
		(session_id, field_id, status, submitted_value, accepted_value, proposed_value, confidence, rejection_reason, rejection_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id, field_id) DO UPDATE SET
			status = EXCLUDED.status,
			submitted_value = EXCLUDED.submitted_value,
			accepted_value = EXCLUDED.accepted_value,
			proposed_value = EXCLUDED.proposed_value,
			confidence = EXCLUDED.confidence,
			rejection_reason = EXCLUDED.rejection_reason,
			rejection_count = EXCLUDED.rejection_count,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		sessionID, a.FieldID, a.Status, a.SubmittedValue, a.AcceptedValue,
		a.ProposedValue, a.Confidence, a.RejectionReason, a.RejectionCount, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("attemptRepo.Upsert: %w", err)
	}
	return nil
}

func (r *attemptRepo) Get(ctx context.Context, sessionID uuid.UUID, fieldID string) (*domain.ValidationAttempt, error) {
	var a domain.ValidationAttempt
	err := r.db.GetContext(ctx, &a,
		`SELECT field_id, status, submitted_value, accepted_value, proposed_value, confidence, rejection_reason, rejection_count, updated_at
		 FROM validation_attempts WHERE session_id = $1 AND field_id = $2`,
		sessionID, fieldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, fmt.Errorf("attemptRepo.Get: %w", err)
	}
	return &a, nil
}

func (r *attemptRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ValidationAttempt, error) {
	var attempts []domain.ValidationAttempt
	err := r.db.SelectContext(ctx, &attempts,
		`SELECT field_id, status, submitted_value, accepted_value, proposed_value, confidence, rejection_reason, rejection_count, updated_at
		 FROM validation_attempts WHERE session_id = $1 ORDER BY field_id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("attemptRepo.ListBySession: %w", err)
	}
	return attempts, nil
}

func (r *attemptRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM validation_attempts WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("attemptRepo.DeleteBySession: %w", err)
	}
	return nil
}
