package submissions

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists immutable cart submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, submission *models.CartSubmission) (*models.CartSubmission, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartSubmission, error)
	List(ctx context.Context) ([]models.CartSubmission, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartSubmission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, submission *models.CartSubmission) (*models.CartSubmission, error) {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartSubmission, error) {
	var submission models.CartSubmission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns every submission, newest first.
func (r *repository) List(ctx context.Context) ([]models.CartSubmission, error) {
	var rows []models.CartSubmission
	if err := r.db.WithContext(ctx).
		Order("submission_date DESC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns the submissions of one user, newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartSubmission, error) {
	var rows []models.CartSubmission
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submission_date DESC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
