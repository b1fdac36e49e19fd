package submissions

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the read side of cart submissions. Submissions are only ever
// written by the cart workflow.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error)
	List(ctx context.Context) ([]SubmissionDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]SubmissionDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("submission repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	return FromModel(submission), nil
}

func (s *service) List(ctx context.Context) ([]SubmissionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list submissions")
	}
	return FromModels(rows), nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]SubmissionDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user submissions")
	}
	return FromModels(rows), nil
}
