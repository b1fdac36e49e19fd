package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/submissions"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/idempotency"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Dependencies carries everything the HTTP surface needs. Idempotency,
// Metrics, Gatherer and Uploads are optional.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Cart        cart.Service
	Products    products.Service
	Users       users.Service
	Submissions submissions.Service

	// Readiness checks keyed by dependency name.
	Checks      map[string]controllers.Pinger
	Idempotency idempotency.Store
	Metrics     *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	// Uploads serves locally stored product images under /uploads.
	Uploads http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	maxUpload := cfg.Storage.MaxUploadBytes()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Checks, logg))
	})

	if deps.Gatherer != nil && cfg.FeatureFlags.EnableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", deps.Uploads))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/product", func(r chi.Router) {
			r.Post("/create", controllers.CreateProduct(deps.Products, maxUpload, logg))
			r.Get("/find/all", controllers.ListProducts(deps.Products, logg))
			r.Get("/find/{id}", controllers.GetProduct(deps.Products, logg))
			r.Put("/update/{id}", controllers.UpdateProduct(deps.Products, maxUpload, logg))
			r.Delete("/delete/{id}", controllers.DeleteProduct(deps.Products, logg))
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/create", controllers.CreateUser(deps.Users, logg))
			r.Get("/find/all", controllers.ListUsers(deps.Users, logg))
			r.Get("/find/{id}", controllers.GetUser(deps.Users, logg))
			r.Put("/update/{id}", controllers.UpdateUser(deps.Users, logg))
			r.Delete("/delete/{id}", controllers.DeleteUser(deps.Users, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/add", cartcontrollers.AddToCart(deps.Cart, logg))
			r.Post("/remove/{userId}/{productId}", cartcontrollers.RemoveFromCart(deps.Cart, logg))
			r.Get("/view/{userId}", cartcontrollers.ViewCart(deps.Cart, logg))
			r.Post("/submit/{userId}", cartcontrollers.SubmitCart(deps.Cart, logg))
		})

		r.Route("/submission", func(r chi.Router) {
			r.Get("/find/all", controllers.ListSubmissions(deps.Submissions, logg))
			r.Get("/find/{id}", controllers.GetSubmission(deps.Submissions, logg))
			r.Get("/user/{userId}", controllers.ListUserSubmissions(deps.Submissions, logg))
		})
	})

	return r
}
