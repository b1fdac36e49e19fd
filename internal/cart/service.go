package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/submissions"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OperationAdd    = "add"
	OperationRemove = "remove"
	OperationView   = "view"
	OperationSubmit = "submit"

	// MaxLineQuantity caps a single cart line.
	MaxLineQuantity = 10000
)

// maxCartAmount is the largest value cart_submissions.total_amount (NUMERIC(12,2)) holds.
var maxCartAmount = decimal.RequireFromString("9999999999.99")

// Service runs the cart workflow against the user's embedded cart.
type Service interface {
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error
	ViewCart(ctx context.Context, userID uuid.UUID) ([]LineView, error)
	SubmitCart(ctx context.Context, userID uuid.UUID) (*submissions.SubmissionDTO, error)
}

// Dependencies groups the collaborators of the cart service. Events and
// Metrics are optional.
type Dependencies struct {
	Users       users.Repository
	Products    productReader
	Submissions submissions.Repository
	Tx          txRunner
	Events      eventPublisher
	Metrics     *metrics.CartMetrics
	Logger      *logger.Logger
}

type service struct {
	users       users.Repository
	products    productReader
	submissions submissions.Repository
	tx          txRunner
	events      eventPublisher
	metrics     *metrics.CartMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(deps Dependencies) (Service, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if deps.Submissions == nil {
		return nil, fmt.Errorf("submission repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:       deps.Users,
		products:    deps.Products,
		submissions: deps.Submissions,
		tx:          deps.Tx,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Unknown user and product ids are client errors in the workflow, not 404s.
func userNotFound() error {
	return pkgerrors.New(pkgerrors.CodeInvalidReference, "User not found")
}

func cartTooLarge(total decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Cart total exceeds the allowed amount").
		WithDetails(map[string]string{
			"totalAmount": total.StringFixed(2),
			"maxAmount":   maxCartAmount.StringFixed(2),
		})
}

func productNotFound(productID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeInvalidReference, "Product not found").
		WithDetails(map[string]string{"productId": productID.String()})
}

// AddToCart appends a new line priced at quantity x the current product price.
// Existing lines for the same product are left untouched.
func (s *service) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (err error) {
	defer func() { s.metrics.Record(OperationAdd, err) }()

	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}
	if quantity > MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"quantity": fmt.Sprintf("must be at most %d", MaxLineQuantity)})
	}

	user, err := s.loadUser(ctx, s.users, userID)
	if err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return productNotFound(productID)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	total := lineTotal(product.Price, quantity)
	if cartTotal := user.Cart.Total().Add(total); cartTotal.GreaterThan(maxCartAmount) {
		return cartTooLarge(cartTotal)
	}

	user.Cart = append(user.Cart, types.CartLine{
		ProductID:   product.ID,
		Quantity:    quantity,
		TotalPrice:  total,
		Name:        product.Name,
		Description: product.Description,
		AddedAt:     s.now(),
	})
	if err := s.saveCart(ctx, s.users, user); err != nil {
		return err
	}

	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, userID.String()), productID.String())
	s.logg.Debug(ctx, fmt.Sprintf("cart line added (quantity=%d)", quantity))
	return nil
}

// RemoveFromCart drops every line for productID. An absent product is not an
// error; the cart is persisted either way.
func (s *service) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (err error) {
	defer func() { s.metrics.Record(OperationRemove, err) }()

	user, err := s.loadUser(ctx, s.users, userID)
	if err != nil {
		return err
	}

	before := len(user.Cart)
	user.Cart = user.Cart.Without(productID)
	if err := s.saveCart(ctx, s.users, user); err != nil {
		return err
	}

	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, userID.String()), productID.String())
	s.logg.Debug(ctx, fmt.Sprintf("cart lines removed (count=%d)", before-len(user.Cart)))
	return nil
}

// ViewCart is read-only. Products are resolved with one bulk read.
func (s *service) ViewCart(ctx context.Context, userID uuid.UUID) (lines []LineView, err error) {
	defer func() { s.metrics.Record(OperationView, err) }()

	user, err := s.loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	byID, err := s.resolveProducts(ctx, user.Cart)
	if err != nil {
		return nil, err
	}

	lines = make([]LineView, 0, len(user.Cart))
	for _, line := range user.Cart {
		var product *products.ProductDTO
		if p, ok := byID[line.ProductID]; ok {
			product = products.NewProductDTO(p)
		}
		lines = append(lines, newLineView(line, product))
	}
	return lines, nil
}

// SubmitCart prices every line at the current product price, records the
// submission and clears the cart in one transaction. The submitted event is
// published after commit.
func (s *service) SubmitCart(ctx context.Context, userID uuid.UUID) (dto *submissions.SubmissionDTO, err error) {
	defer func() { s.metrics.Record(OperationSubmit, err) }()

	var created *models.CartSubmission
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)

		user, err := s.loadUser(ctx, userRepo, userID)
		if err != nil {
			return err
		}

		byID, err := s.resolveProducts(ctx, user.Cart)
		if err != nil {
			return err
		}

		items := make(types.SubmittedItems, 0, len(user.Cart))
		for _, line := range user.Cart {
			product, ok := byID[line.ProductID]
			if !ok {
				return productNotFound(line.ProductID)
			}
			items = append(items, types.SubmittedItem{
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				TotalPrice:  lineTotal(product.Price, line.Quantity),
				Name:        product.Name,
				Description: product.Description,
				Size:        product.Size.String(),
			})
		}

		// live prices can push a cart accepted at add time past the column limit
		if items.Total().GreaterThan(maxCartAmount) {
			return cartTooLarge(items.Total())
		}

		submission, err := s.submissions.WithTx(tx).Create(ctx, &models.CartSubmission{
			UserID:         user.ID,
			Items:          items,
			SubmissionDate: s.now(),
			TotalAmount:    items.Total(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert cart submission")
		}

		user.Cart = types.CartLines{}
		if err := s.saveCart(ctx, userRepo, user); err != nil {
			return err
		}
		created = submission
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit cart")
	}

	s.metrics.ObserveSubmission(created.TotalAmount)
	dto = submissions.FromModel(created)

	ctx = s.logg.WithFields(s.logg.WithUserID(ctx, userID.String()), map[string]any{
		"submission_id": created.ID.String(),
		"items":         len(created.Items),
		"total_amount":  created.TotalAmount.String(),
	})
	s.logg.Info(ctx, "cart submitted")
	s.publishSubmitted(ctx, dto)
	return dto, nil
}

func (s *service) publishSubmitted(ctx context.Context, dto *submissions.SubmissionDTO) {
	if s.events == nil {
		return
	}
	event := pubsub.Event{
		Type:        pubsub.EventTypeCartSubmitted,
		AggregateID: dto.ID.String(),
		OrderingKey: dto.UserID.String(),
		OccurredAt:  dto.SubmissionDate,
		Data:        dto,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.metrics.IncPublishFailure()
		s.logg.Error(ctx, "failed to publish cart submitted event", err)
	}
}

func (s *service) loadUser(ctx context.Context, repo users.Repository, userID uuid.UUID) (*models.User, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) saveCart(ctx context.Context, repo users.Repository, user *models.User) error {
	if err := repo.SaveCart(ctx, user); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: save cart")
	}
	return nil
}

func (s *service) resolveProducts(ctx context.Context, lines types.CartLines) (map[uuid.UUID]*models.Product, error) {
	ids := lines.ProductIDs()
	byID := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	return byID, nil
}

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
