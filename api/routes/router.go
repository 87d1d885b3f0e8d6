package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gaprints/prints-backend/api/controllers"
	"github.com/gaprints/prints-backend/api/middleware"
	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/db"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/redis"
)

// NewRouter wires the storefront API. redisClient may be nil, which disables
// rate limiting and idempotent replay. metrics may be nil to skip /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	prints controllers.CatalogReader,
	sessions controllers.CartSessions,
	checkoutService controllers.CheckoutSubmitter,
	metrics http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		limiter          redis.RateLimiter
		readiness        = map[string]controllers.Pinger{}
	)
	if dbP != nil {
		readiness["db"] = dbP
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		limiter = redisClient
		readiness["redis"] = redisClient
	}

	checkoutPolicy := checkoutRateLimitPolicy(cfg.Checkout)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, readiness))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/prints", controllers.PrintsList(prints, logg))
		r.Get("/prints/{slug}", controllers.PrintDetail(prints, logg))
		r.Get("/shipping/zones", controllers.ShippingZones())

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.CartSession, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg, nil))
				r.Get("/", controllers.CartGet(sessions, logg))
				r.Delete("/", controllers.CartClear(sessions, logg))
				r.Post("/items", controllers.CartAddItem(sessions, prints, logg))
				r.Patch("/items/{id}", controllers.CartUpdateItem(sessions, logg))
				r.Delete("/items/{id}", controllers.CartRemoveItem(sessions, logg))
				r.Get("/events", controllers.CartEvents(sessions, logg))
				r.Post("/open", controllers.CartOpen(sessions, logg))
				r.Post("/close", controllers.CartClose(sessions, logg))
			})

			r.With(
				middleware.RateLimit(checkoutPolicy, limiter, logg, responses.WriteCheckoutError),
				middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg, responses.WriteCheckoutError),
			).Post("/checkout", controllers.Checkout(checkoutService, sessions, logg))
		})
	})

	return r
}

func checkoutRateLimitPolicy(cfg config.CheckoutConfig) middleware.RateLimitPolicy {
	return middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimitWindow,
		cfg.RateLimit,
		cfg.RateLimitPerEmail,
	)
}
