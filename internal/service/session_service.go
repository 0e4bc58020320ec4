package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"docfill/internal/detector"
	"docfill/internal/docmodel"
	"docfill/internal/domain"
	"docfill/internal/export"
	"docfill/internal/port"
	"docfill/internal/validator"
)

// SessionService runs the persisted fill workflow: a document is analyzed
// once at session creation, values are submitted and validated per field,
// and finalization renders the filled artifact.
type SessionService struct {
	pipeline *PipelineService
	engine   *validator.Engine
	sessions port.SessionRepository
	attempts port.AttemptRepository
	storage  port.ObjectStorage

	// fieldMu serializes submissions per (session, field) so rejection
	// streaks never race.
	mu      sync.Mutex
	fieldMu map[string]*sync.Mutex
}

// NewSessionService creates a SessionService.
func NewSessionService(
	pipeline *PipelineService,
	engine *validator.Engine,
	sessions port.SessionRepository,
	attempts port.AttemptRepository,
	storage port.ObjectStorage,
) *SessionService {
	return &SessionService{
		pipeline: pipeline,
		engine:   engine,
		sessions: sessions,
		attempts: attempts,
		storage:  storage,
		fieldMu:  make(map[string]*sync.Mutex),
	}
}

func (s *SessionService) lockField(sessionID uuid.UUID, fieldID string) *sync.Mutex {
	key := sessionID.String() + "/" + fieldID
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.fieldMu[key]
	if !ok {
		m = &sync.Mutex{}
		s.fieldMu[key] = m
	}
	return m
}

func sourceKey(id uuid.UUID) string { return fmt.Sprintf("sessions/%s/source.docx", id) }
func filledKey(id uuid.UUID) string { return fmt.Sprintf("sessions/%s/filled.docx", id) }

// Create analyzes the uploaded document and opens a fill session for it.
func (s *SessionService) Create(ctx context.Context, fileName string, data []byte) (*domain.FillSession, error) {
	analysis, err := s.pipeline.Process(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	session := &domain.FillSession{
		ID:         uuid.New(),
		FileName:   fileName,
		Status:     domain.SessionOpen,
		SourceKey:  "",
		Fields:     analysis.Fields,
		Assessment: analysis.Assessment,
	}
	session.SourceKey = sourceKey(session.ID)

	if err := s.storage.Upload(ctx, session.SourceKey, data, DocxContentType); err != nil {
		return nil, fmt.Errorf("storing session source: %w", err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	log.Printf("service.SessionService: created session %s for %s (%d fields)", session.ID, fileName, len(session.Fields))
	return session, nil
}

// Get returns a session with its validation attempts.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.FillSession, []domain.ValidationAttempt, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := s.attempts.ListBySession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return session, attempts, nil
}

// List returns recent sessions.
func (s *SessionService) List(ctx context.Context, limit, offset int) ([]domain.FillSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessions.List(ctx, limit, offset)
}

// Submit validates one value for one field and persists the new attempt
// state. Submissions for the same field are serialized.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, fieldID, value string) (*domain.ValidationAttempt, error) {
	session, field, err := s.openSessionField(ctx, id, fieldID)
	if err != nil {
		return nil, err
	}

	m := s.lockField(session.ID, fieldID)
	m.Lock()
	defer m.Unlock()

	prior, err := s.attempts.Get(ctx, id, fieldID)
	if err != nil && err != domain.ErrFieldNotFound {
		return nil, err
	}

	attempt := s.engine.Submit(*field, value, prior)
	if err := s.attempts.Upsert(ctx, id, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Confirm accepts or declines a proposed normalization for a field.
func (s *SessionService) Confirm(ctx context.Context, id uuid.UUID, fieldID string, accepted bool) (*domain.ValidationAttempt, error) {
	session, _, err := s.openSessionField(ctx, id, fieldID)
	if err != nil {
		return nil, err
	}

	m := s.lockField(session.ID, fieldID)
	m.Lock()
	defer m.Unlock()

	prior, err := s.attempts.Get(ctx, id, fieldID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.engine.Confirm(prior, accepted)
	if err != nil {
		return nil, err
	}
	if err := s.attempts.Upsert(ctx, id, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (s *SessionService) openSessionField(ctx context.Context, id uuid.UUID, fieldID string) (*domain.FillSession, *domain.FieldSchema, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == domain.SessionFinalized {
		return nil, nil, domain.ErrSessionFinalized
	}
	for i := range session.Fields {
		if session.Fields[i].FieldID == fieldID {
			return session, &session.Fields[i], nil
		}
	}
	return nil, nil, domain.ErrFieldNotFound
}

// Finalize renders the filled document from all resolved values, stores it,
// and closes the session. Unresolved optional fields are left verbatim;
// unresolved required fields block finalization.
func (s *SessionService) Finalize(ctx context.Context, id uuid.UUID) (*domain.FillSession, *domain.FillReport, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == domain.SessionFinalized {
		return nil, nil, domain.ErrSessionFinalized
	}

	attempts, err := s.attempts.ListBySession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	values := make(map[string]string, len(attempts))
	resolved := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		if a.Status.Terminal() {
			values[a.FieldID] = a.AcceptedValue
			resolved[a.FieldID] = true
		}
	}
	for _, f := range session.Fields {
		if f.Required && !resolved[f.FieldID] {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrSessionIncomplete, f.FieldID)
		}
	}

	data, err := s.storage.Download(ctx, session.SourceKey)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session source: %w", err)
	}

	doc, err := docmodel.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	// Detection is deterministic, so occurrence indices recomputed here
	// line up with the ones stored on the session's fields.
	occs := detector.Detect(doc)

	out, report, err := fill(doc, occs, session.Fields, values)
	if err != nil {
		return nil, nil, err
	}

	key := filledKey(id)
	if err := s.storage.Upload(ctx, key, out, DocxContentType); err != nil {
		return nil, nil, fmt.Errorf("storing filled document: %w", err)
	}
	if err := s.sessions.UpdateStatus(ctx, id, domain.SessionFinalized, key); err != nil {
		return nil, nil, err
	}

	session.Status = domain.SessionFinalized
	session.FilledKey = key
	log.Printf("service.SessionService: finalized session %s (%d filled, %d skipped)", id, len(report.Filled), len(report.Skipped))
	return session, report, nil
}

// DownloadFilled returns a presigned URL for the finalized artifact.
func (s *SessionService) DownloadFilled(ctx context.Context, id uuid.UUID, expirySeconds int64) (string, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if session.FilledKey == "" {
		return "", domain.ErrSessionIncomplete
	}
	return s.storage.GetPresignedURL(ctx, session.FilledKey, expirySeconds)
}

// Export renders the session's field report workbook.
func (s *SessionService) Export(ctx context.Context, id uuid.UUID) ([]byte, error) {
	session, attempts, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.FieldReport(session, attempts)
}

// Delete removes a session, its attempts, and its stored artifacts.
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.attempts.DeleteBySession(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}

	// Artifact cleanup is best-effort; the rows are already gone.
	if err := s.storage.Delete(ctx, session.SourceKey); err != nil {
		log.Printf("service.SessionService: deleting source for %s: %v", id, err)
	}
	if session.FilledKey != "" {
		if err := s.storage.Delete(ctx, session.FilledKey); err != nil {
			log.Printf("service.SessionService: deleting filled artifact for %s: %v", id, err)
		}
	}
	return nil
}
