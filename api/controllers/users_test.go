package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usersvc "github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubUserService struct {
	err     error
	created *usersvc.CreateUserInput
	updated *usersvc.UpdateUserInput
	lastID  uuid.UUID
}

func (s *stubUserService) Create(_ context.Context, input usersvc.CreateUserInput) (*usersvc.UserDTO, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.UserDTO{ID: uuid.New(), Username: input.Username, Email: input.Email, Role: "customer"}, nil
}

func (s *stubUserService) List(context.Context) ([]usersvc.UserDTO, error) {
	return []usersvc.UserDTO{}, s.err
}

func (s *stubUserService) Get(_ context.Context, id uuid.UUID) (*usersvc.UserDTO, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.UserDTO{ID: id}, nil
}

func (s *stubUserService) Update(_ context.Context, id uuid.UUID, input usersvc.UpdateUserInput) (*usersvc.UserDTO, error) {
	s.lastID = id
	s.updated = &input
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.UserDTO{ID: id}, nil
}

func (s *stubUserService) Delete(_ context.Context, id uuid.UUID) (*usersvc.UserDTO, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &usersvc.UserDTO{ID: id}, nil
}

func TestCreateUserSuccess(t *testing.T) {
	svc := &stubUserService{}
	body := `{"username":"ada","email":"ada@example.com","password":"correct-horse"}`

	rec := httptest.NewRecorder()
	CreateUser(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/user/create", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "User created successfully", env.Success)
	assert.NotContains(t, string(env.Data), "password")
	require.NotNil(t, svc.created)
	assert.Equal(t, "ada", svc.created.Username)
}

func TestCreateUserValidation(t *testing.T) {
	svc := &stubUserService{}
	body := `{"username":"ada","email":"not-an-email","password":"short","role":"owner"}`

	rec := httptest.NewRecorder()
	CreateUser(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/user/create", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeEnvelope(t, rec).Error.Details
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Equal(t, "must be one of customer admin", details["role"])
	assert.Nil(t, svc.created)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.New(pkgerrors.CodeValidation, "Username or email already exists")}
	body := `{"username":"ada","email":"ada@example.com","password":"correct-horse"}`

	rec := httptest.NewRecorder()
	CreateUser(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/user/create", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or email already exists", decodeEnvelope(t, rec).Error.Message)
}

func TestUpdateUserPartial(t *testing.T) {
	svc := &stubUserService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/admin/user/update/"+id.String(), strings.NewReader(`{"email":"new@example.com"}`))
	req = withURLParam(req, "id", id.String())

	rec := httptest.NewRecorder()
	UpdateUser(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated)
	require.NotNil(t, svc.updated.Email)
	assert.Equal(t, "new@example.com", *svc.updated.Email)
	assert.Nil(t, svc.updated.Username)
	assert.Nil(t, svc.updated.Password)
}

func TestGetAndDeleteUserNotFound(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.New(pkgerrors.CodeNotFound, "User not found")}
	id := uuid.New()

	rec := httptest.NewRecorder()
	GetUser(svc, testLogger()).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String()))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeEnvelope(t, rec).Error.Message)

	rec = httptest.NewRecorder()
	DeleteUser(svc, testLogger()).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id.String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers(t *testing.T) {
	rec := httptest.NewRecorder()
	ListUsers(&stubUserService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/user/find/all", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}
