package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docfill/internal/domain"
	"docfill/internal/port"
)

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new PostgreSQL-backed SessionRepository.
func NewSessionRepo(db *sqlx.DB) port.SessionRepository {
	return &sessionRepo{db: db}
}

// sessionRow is the flat row shape; field schemas live in a JSONB column.
type sessionRow struct {
	ID         uuid.UUID      `db:"id"`
	FileName   string         `db:"file_name"`
	Status     string         `db:"status"`
	SourceKey  string         `db:"source_key"`
	FilledKey  sql.NullString `db:"filled_key"`
	Fields     []byte         `db:"fields"`
	Assessment sql.NullString `db:"assessment"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row *sessionRow) toDomain() (*domain.FillSession, error) {
	s := &domain.FillSession{
		ID:         row.ID,
		FileName:   row.FileName,
		Status:     domain.SessionStatus(row.Status),
		SourceKey:  row.SourceKey,
		FilledKey:  row.FilledKey.String,
		Assessment: row.Assessment.String,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &s.Fields); err != nil {
			return nil, fmt.Errorf("decoding session fields: %w", err)
		}
	}
	return s, nil
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.FillSession) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create encoding fields: %w", err)
	}

	query := `INSERT INTO fill_sessions (id, file_name, status, source_key, filled_key, fields, assessment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.FileName, s.Status, s.SourceKey, nullString(s.FilledKey), fields, nullString(s.Assessment), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FillSession, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM fill_sessions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	return row.toDomain()
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, filledKey string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE fill_sessions SET status = $1, filled_key = $2, updated_at = $3 WHERE id = $4`,
		status, nullString(filledKey), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("sessionRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM fill_sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context, limit, offset int) ([]domain.FillSession, error) {
	var rows []sessionRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM fill_sessions ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.List: %w", err)
	}

	sessions := make([]domain.FillSession, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("sessionRepo.List: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
