package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	submissionsvc "github.com/angelmondragon/storefront-backend/internal/submissions"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubSubmissionService struct {
	err      error
	lastID   uuid.UUID
	lastUser uuid.UUID
}

func (s *stubSubmissionService) Get(_ context.Context, id uuid.UUID) (*submissionsvc.SubmissionDTO, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &submissionsvc.SubmissionDTO{ID: id}, nil
}

func (s *stubSubmissionService) List(context.Context) ([]submissionsvc.SubmissionDTO, error) {
	return []submissionsvc.SubmissionDTO{}, s.err
}

func (s *stubSubmissionService) ListByUser(_ context.Context, userID uuid.UUID) ([]submissionsvc.SubmissionDTO, error) {
	s.lastUser = userID
	return []submissionsvc.SubmissionDTO{{ID: uuid.New(), UserID: userID}}, s.err
}

func TestListUserSubmissions(t *testing.T) {
	svc := &stubSubmissionService{}
	userID := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "userId", userID.String())

	rec := httptest.NewRecorder()
	ListUserSubmissions(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, svc.lastUser)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), userID.String())
}

func TestGetSubmissionNotFound(t *testing.T) {
	svc := &stubSubmissionService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Submission not found")}
	id := uuid.New()

	rec := httptest.NewRecorder()
	GetSubmission(svc, testLogger()).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String()))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Submission not found", decodeEnvelope(t, rec).Error.Message)
	assert.Equal(t, id, svc.lastID)
}

func TestListSubmissions(t *testing.T) {
	rec := httptest.NewRecorder()
	ListSubmissions(&stubSubmissionService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
