package cart

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/angelmondragon/storefront-backend/internal/submissions"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	findErr   error
	saveErr   error
	saveCalls int
}

func newStubUserRepo(list ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range list {
		if u.Version == 0 {
			u.Version = 1
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	clone.Cart = append(types.CartLines{}, user.Cart...)
	return &clone, nil
}

func (s *stubUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string, excludeID *uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) { return nil, nil }

func (s *stubUserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return errors.New("not implemented")
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

func (s *stubUserRepo) SaveCart(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	stored := s.users[user.ID]
	stored.Cart = append(types.CartLines{}, user.Cart...)
	stored.Version++
	user.Version = stored.Version
	return nil
}

func (s *stubUserRepo) cart(id uuid.UUID) types.CartLines {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(types.CartLines{}, s.users[id].Cart...)
}

type stubProductRepo struct {
	products   map[uuid.UUID]models.Product
	findErr    error
	bulkCalls  int
	singleHits int
}

func newStubProductRepo(list ...models.Product) *stubProductRepo {
	repo := &stubProductRepo{products: map[uuid.UUID]models.Product{}}
	for _, p := range list {
		repo.products[p.ID] = p
	}
	return repo
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.singleHits++
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *stubProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.bulkCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubSubmissionRepo struct {
	created   []models.CartSubmission
	createErr error
}

func (s *stubSubmissionRepo) WithTx(tx *gorm.DB) submissions.Repository { return s }

func (s *stubSubmissionRepo) Create(ctx context.Context, submission *models.CartSubmission) (*models.CartSubmission, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	s.created = append(s.created, *submission)
	return submission, nil
}

func (s *stubSubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CartSubmission, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubmissionRepo) List(ctx context.Context) ([]models.CartSubmission, error) {
	return s.created, nil
}

func (s *stubSubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartSubmission, error) {
	return nil, nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubPublisher struct {
	events []pubsub.Event
	err    error
}

func (s *stubPublisher) Publish(ctx context.Context, event pubsub.Event) error {
	s.events = append(s.events, event)
	return s.err
}
