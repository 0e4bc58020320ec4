package port

import (
	"context"

	"github.com/google/uuid"

	"docfill/internal/domain"
)

// SessionRepository stores fill sessions and their field schemas.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.FillSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FillSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, filledKey string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]domain.FillSession, error)
}

// AttemptRepository stores per-field validation attempts keyed by session
// and field.
type AttemptRepository interface {
	Upsert(ctx context.Context, sessionID uuid.UUID, attempt *domain.ValidationAttempt) error
	Get(ctx context.Context, sessionID uuid.UUID, fieldID string) (*domain.ValidationAttempt, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ValidationAttempt, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
