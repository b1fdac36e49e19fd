package users

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mustCreateUser(t *testing.T, repo Repository, username string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func TestRepositoryCreateDefaults(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	user := mustCreateUser(t, repo, "ana")
	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "customer", found.Role.String())
	assert.Equal(t, 1, found.Version)
	assert.NotNil(t, found.Cart)
	assert.Empty(t, found.Cart)
}

func TestRepositoryFindByUsernameOrEmail(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	user := mustCreateUser(t, repo, "ana")

	found, err := repo.FindByUsernameOrEmail(ctx, "someone", "ana@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByUsernameOrEmail(ctx, "ana", "x@example.com", &user.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryRejectsDuplicateUsername(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	mustCreateUser(t, repo, "ana")

	_, err := repo.Create(context.Background(), &models.User{Username: "ana", Email: "other@example.com", PasswordHash: "h"})
	assert.Error(t, err)
}

func TestRepositorySaveCartBumpsVersion(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	user := mustCreateUser(t, repo, "ana")

	productID := uuid.New()
	user.Cart = append(user.Cart, types.CartLine{
		ProductID:  productID,
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("20"),
		Name:       "Tee",
	})
	require.NoError(t, repo.SaveCart(ctx, user))
	assert.Equal(t, 2, user.Version)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, found.Cart, 1)
	assert.Equal(t, productID, found.Cart[0].ProductID)
	assert.True(t, found.Cart[0].TotalPrice.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, 2, found.Version)
}

func TestRepositorySaveCartDetectsStaleVersion(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	user := mustCreateUser(t, repo, "ana")

	first, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	first.Cart = types.CartLines{{ProductID: uuid.New(), Quantity: 1}}
	require.NoError(t, repo.SaveCart(ctx, first))

	second.Cart = types.CartLines{{ProductID: uuid.New(), Quantity: 3}}
	err = repo.SaveCart(ctx, second)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, found.Cart, 1)
	assert.Equal(t, 1, found.Cart[0].Quantity)
}

func TestRepositoryUpdateAndDeleteMissing(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	assert.True(t, errors.Is(repo.Update(ctx, uuid.New(), map[string]any{"username": "x"}), gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound))
}
