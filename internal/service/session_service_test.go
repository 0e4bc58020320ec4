package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docfill/internal/domain"
	"docfill/internal/service"
	"docfill/internal/validator"
	"docfill/mocks"
)

type sessionFixture struct {
	svc      *service.SessionService
	sessions *mocks.MockSessionRepo
	attempts *mocks.MockAttemptRepo
	storage  *mocks.MockObjectStorage
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions: new(mocks.MockSessionRepo),
		attempts: new(mocks.MockAttemptRepo),
		storage:  new(mocks.MockObjectStorage),
	}
	f.svc = service.NewSessionService(newPipeline(), validator.New(), f.sessions, f.attempts, f.storage)
	return f
}

func openSession(id uuid.UUID) *domain.FillSession {
	return &domain.FillSession{
		ID:        id,
		FileName:  "lease.docx",
		Status:    domain.SessionOpen,
		SourceKey: fmt.Sprintf("sessions/%s/source.docx", id),
		Fields: []domain.FieldSchema{
			{FieldID: "___#0", Label: "Tenant Name", DataType: domain.DataTypeName, Required: true, Occurrences: []int{0}},
			{FieldID: "___#1", Label: "Landlord Name", DataType: domain.DataTypeName, Required: true, Occurrences: []int{1}},
		},
	}
}

func TestSessionCreate(t *testing.T) {
	f := newSessionFixture()
	data := docxBytes(t, "Tenant: ___  Landlord: ___")

	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	}), data, service.DocxContentType).Return(nil)
	f.sessions.On("Create", mock.Anything, mock.Anything).Return(nil)

	session, err := f.svc.Create(context.Background(), "lease.docx", data)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, domain.SessionOpen, session.Status)
	assert.Equal(t, fmt.Sprintf("sessions/%s/source.docx", session.ID), session.SourceKey)
	require.Len(t, session.Fields, 2)
	assert.Equal(t, "___#0", session.Fields[0].FieldID)

	f.storage.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestSessionCreate_UploadFailureAbortsSession(t *testing.T) {
	f := newSessionFixture()
	data := docxBytes(t, "Tenant: ___")

	f.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("bucket gone"))

	_, err := f.svc.Create(context.Background(), "lease.docx", data)
	require.Error(t, err)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionSubmit(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()

	f.sessions.On("GetByID", mock.Anything, id).Return(openSession(id), nil)
	f.attempts.On("Get", mock.Anything, id, "___#0").Return(nil, domain.ErrFieldNotFound)
	f.attempts.On("Upsert", mock.Anything, id, mock.Anything).Return(nil)

	attempt, err := f.svc.Submit(context.Background(), id, "___#0", "Alice")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAccepted, attempt.Status)
	assert.Equal(t, "Alice", attempt.AcceptedValue)
	f.attempts.AssertExpectations(t)
}

func TestSessionSubmit_FinalizedSession(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	session := openSession(id)
	session.Status = domain.SessionFinalized

	f.sessions.On("GetByID", mock.Anything, id).Return(session, nil)

	_, err := f.svc.Submit(context.Background(), id, "___#0", "Alice")
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)
}

func TestSessionSubmit_UnknownField(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()

	f.sessions.On("GetByID", mock.Anything, id).Return(openSession(id), nil)

	_, err := f.svc.Submit(context.Background(), id, "no-such-field", "x")
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
}

func TestSessionConfirm(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	prior := &domain.ValidationAttempt{
		FieldID:        "___#0",
		Status:         domain.StatusAwaitingConfirmation,
		SubmittedValue: "5000",
		ProposedValue:  "$5,000.00",
		Confidence:     0.9,
	}

	f.sessions.On("GetByID", mock.Anything, id).Return(openSession(id), nil)
	f.attempts.On("Get", mock.Anything, id, "___#0").Return(prior, nil)
	f.attempts.On("Upsert", mock.Anything, id, mock.Anything).Return(nil)

	attempt, err := f.svc.Confirm(context.Background(), id, "___#0", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, attempt.Status)
	assert.Equal(t, "$5,000.00", attempt.AcceptedValue)
}

func TestSessionFinalize(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	session := openSession(id)
	data := docxBytes(t, "Tenant: ___  Landlord: ___")

	f.sessions.On("GetByID", mock.Anything, id).Return(session, nil)
	f.attempts.On("ListBySession", mock.Anything, id).Return([]domain.ValidationAttempt{
		{FieldID: "___#0", Status: domain.StatusAccepted, AcceptedValue: "Alice"},
		{FieldID: "___#1", Status: domain.StatusAutoAccepted, AcceptedValue: "Bob"},
	}, nil)
	f.storage.On("Download", mock.Anything, session.SourceKey).Return(data, nil)
	filledKey := fmt.Sprintf("sessions/%s/filled.docx", id)
	f.storage.On("Upload", mock.Anything, filledKey, mock.Anything, service.DocxContentType).Return(nil)
	f.sessions.On("UpdateStatus", mock.Anything, id, domain.SessionFinalized, filledKey).Return(nil)

	finalized, report, err := f.svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, domain.SessionFinalized, finalized.Status)
	assert.Equal(t, filledKey, finalized.FilledKey)
	assert.ElementsMatch(t, []string{"___#0", "___#1"}, report.Filled)
	f.storage.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestSessionFinalize_UnresolvedRequiredField(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()

	f.sessions.On("GetByID", mock.Anything, id).Return(openSession(id), nil)
	f.attempts.On("ListBySession", mock.Anything, id).Return([]domain.ValidationAttempt{
		{FieldID: "___#0", Status: domain.StatusAccepted, AcceptedValue: "Alice"},
		{FieldID: "___#1", Status: domain.StatusPending, SubmittedValue: "???"},
	}, nil)

	_, _, err := f.svc.Finalize(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionIncomplete)
	f.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestSessionFinalize_AlreadyFinalized(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	session := openSession(id)
	session.Status = domain.SessionFinalized

	f.sessions.On("GetByID", mock.Anything, id).Return(session, nil)

	_, _, err := f.svc.Finalize(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)
}

func TestDownloadFilled(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	session := openSession(id)
	session.FilledKey = fmt.Sprintf("sessions/%s/filled.docx", id)

	f.sessions.On("GetByID", mock.Anything, id).Return(session, nil)
	f.storage.On("GetPresignedURL", mock.Anything, session.FilledKey, int64(3600)).Return("https://bucket.example/filled", nil)

	url, err := f.svc.DownloadFilled(context.Background(), id, 3600)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/filled", url)
}

func TestDownloadFilled_NotFinalized(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()

	f.sessions.On("GetByID", mock.Anything, id).Return(openSession(id), nil)

	_, err := f.svc.DownloadFilled(context.Background(), id, 3600)
	assert.ErrorIs(t, err, domain.ErrSessionIncomplete)
}

func TestSessionDelete(t *testing.T) {
	f := newSessionFixture()
	id := uuid.New()
	session := openSession(id)
	session.FilledKey = fmt.Sprintf("sessions/%s/filled.docx", id)

	f.sessions.On("GetByID", mock.Anything, id).Return(session, nil)
	f.attempts.On("DeleteBySession", mock.Anything, id).Return(nil)
	f.sessions.On("Delete", mock.Anything, id).Return(nil)
	f.storage.On("Delete", mock.Anything, session.SourceKey).Return(nil)
	// Artifact cleanup failures must not fail the delete.
	f.storage.On("Delete", mock.Anything, session.FilledKey).Return(fmt.Errorf("object missing"))

	err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)
	f.storage.AssertExpectations(t)
}

func TestSessionList_ClampsLimit(t *testing.T) {
	f := newSessionFixture()

	f.sessions.On("List", mock.Anything, 20, 0).Return([]domain.FillSession{}, nil)

	_, err := f.svc.List(context.Background(), -5, -3)
	require.NoError(t, err)
	f.sessions.AssertExpectations(t)
}
