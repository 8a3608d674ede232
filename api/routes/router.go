package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weldpoly/quotecart-backend/api/controllers"
	"github.com/weldpoly/quotecart-backend/api/middleware"
	"github.com/weldpoly/quotecart-backend/internal/cart"
	"github.com/weldpoly/quotecart-backend/internal/quotes"
	cartsync "github.com/weldpoly/quotecart-backend/internal/sync"
	"github.com/weldpoly/quotecart-backend/pkg/config"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    *cart.Store
	Syncer   *cartsync.Syncer
	Quotes   quotes.Service
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Limiter  middleware.RateLimiter
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	cartWritePolicy := middleware.NewRateLimitPolicy(
		"cart_write",
		deps.Config.RateLimit.CartWriteWindow,
		deps.Config.RateLimit.CartWriteSessionLimit,
		deps.Config.RateLimit.CartWriteIPLimit,
	)
	quoteSubmitPolicy := middleware.NewRateLimitPolicy(
		"quote_submit",
		deps.Config.RateLimit.QuoteSubmitWindow,
		deps.Config.RateLimit.QuoteSubmitSessionLimit,
		deps.Config.RateLimit.QuoteSubmitIPLimit,
	)
	cartWrite := middleware.RateLimit(cartWritePolicy, deps.Limiter, deps.Logger)
	quoteSubmit := middleware.RateLimit(quoteSubmitPolicy, deps.Limiter, deps.Logger)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(deps.Config.Session, deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(deps.Syncer, deps.Logger))
			r.Get("/modal", controllers.CartView(deps.Syncer, deps.Logger))
			r.Get("/count", controllers.CartCount(deps.Store, deps.Logger))
			r.Post("/open", controllers.CartOpen(deps.Syncer, deps.Logger))
			r.Post("/close", controllers.CartClose(deps.Syncer, deps.Logger))
			r.With(cartWrite).Post("/products", controllers.CartAddProduct(deps.Store, deps.Syncer, deps.Logger))
			r.Get("/spare-parts", controllers.CartSpareParts(deps.Syncer, deps.Logger))
			r.With(cartWrite).Post("/spare-parts", controllers.CartToggleSparePart(deps.Store, deps.Syncer, deps.Logger))
			r.With(cartWrite).Patch("/items/{key}", controllers.CartChangeQty(deps.Store, deps.Syncer, deps.Logger))
			r.With(cartWrite).Delete("/items/{key}", controllers.CartRemoveItem(deps.Store, deps.Syncer, deps.Logger))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.With(quoteSubmit).Post("/", controllers.QuoteSubmit(deps.Quotes, deps.Logger))
			r.Get("/", controllers.QuoteList(deps.Quotes, deps.Logger))
			r.Get("/{id}", controllers.QuoteGet(deps.Quotes, deps.Logger))
		})
	})

	// Back-office surface; no operator auth exists yet, so it stays off in prod.
	if !deps.Config.App.IsProd() {
		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Post("/quotes/{id}/process", controllers.QuoteMarkProcessed(deps.Quotes, deps.Logger))
		})
	}

	return r
}
