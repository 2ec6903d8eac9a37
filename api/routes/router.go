package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidcalleja/garagebook-backend/api/controllers"
	"github.com/davidcalleja/garagebook-backend/api/middleware"
	"github.com/davidcalleja/garagebook-backend/internal/analytics"
	"github.com/davidcalleja/garagebook-backend/internal/auth"
	"github.com/davidcalleja/garagebook-backend/internal/billing"
	"github.com/davidcalleja/garagebook-backend/internal/cars"
	"github.com/davidcalleja/garagebook-backend/internal/garages"
	"github.com/davidcalleja/garagebook-backend/internal/invitations"
	"github.com/davidcalleja/garagebook-backend/pkg/auth/session"
	"github.com/davidcalleja/garagebook-backend/pkg/config"
	"github.com/davidcalleja/garagebook-backend/pkg/db"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
	"github.com/davidcalleja/garagebook-backend/pkg/metrics"
	"github.com/davidcalleja/garagebook-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Idempotency    redis.IdempotencyStore
	SessionManager session.AccessSessionChecker
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics

	Auth        auth.Service
	Garages     garages.Service
	Cars        cars.Service
	Invitations invitations.Service
	Billing     billing.Service
	Analytics   analytics.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	// Guard against a typed-nil client leaking into the middleware interfaces.
	store := p.Idempotency
	if store == nil && p.Redis != nil {
		store = p.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	rateLimit := func(policy middleware.ThrottlePolicy) func(http.Handler) http.Handler {
		if p.Redis == nil {
			return middleware.Throttle(policy, nil, logg)
		}
		return middleware.Throttle(policy, p.Redis, logg)
	}

	loginPolicy := middleware.ThrottlePolicy{
		Surface:    "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		IPLimit:    cfg.AuthRateLimit.LoginIPLimit,
		EmailLimit: cfg.AuthRateLimit.LoginEmailLimit,
	}
	registerPolicy := middleware.ThrottlePolicy{
		Surface:    "register",
		Window:     cfg.AuthRateLimit.RegisterWindow,
		IPLimit:    cfg.AuthRateLimit.RegisterIPLimit,
		EmailLimit: cfg.AuthRateLimit.RegisterEmailLimit,
	}

	var cachePinger redis.Pinger
	if p.Redis != nil {
		cachePinger = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, cachePinger, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(registerPolicy)).
			With(middleware.Idempotency(store, logg)).
			Post("/register", controllers.Register(p.Auth, logg))
		r.With(rateLimit(loginPolicy)).
			Post("/login", controllers.Login(p.Auth, logg))
		r.Post("/refresh", controllers.Refresh(p.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, p.SessionManager, logg)).
			Post("/logout", controllers.Logout(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.Idempotency(store, logg))

		r.Get("/plans", controllers.ListPlans(p.Billing, logg))
		r.Get("/subscription", controllers.GetSubscription(p.Billing, logg))

		r.Route("/garages", func(r chi.Router) {
			r.Post("/", controllers.CreateGarage(p.Garages, logg))
			r.Get("/", controllers.ListGarages(p.Garages, logg))

			r.Route("/{garageID}", func(r chi.Router) {
				r.Get("/", controllers.GetGarage(p.Garages, logg))
				r.Patch("/", controllers.UpdateGarage(p.Garages, logg))
				r.Delete("/", controllers.DeleteGarage(p.Garages, logg))

				r.Get("/members", controllers.ListGarageMembers(p.Garages, logg))
				r.Delete("/members/{userID}", controllers.RemoveGarageMember(p.Garages, logg))

				r.Post("/invitations", controllers.CreateInvitation(p.Invitations, logg))

				r.Get("/analytics/summary", controllers.AnalyticsSummary(p.Analytics, logg))

				r.Route("/cars", func(r chi.Router) {
					r.Post("/", controllers.CreateCar(p.Cars, logg))
					r.Get("/", controllers.ListCars(p.Cars, logg))

					r.Route("/{carID}", func(r chi.Router) {
						r.Get("/", controllers.GetCar(p.Cars, logg))
						r.Patch("/", controllers.UpdateCar(p.Cars, logg))
						r.Delete("/", controllers.DeleteCar(p.Cars, logg))
						r.Post("/status", controllers.SetCarStatus(p.Cars, logg))
						r.Post("/sell", controllers.SellCar(p.Cars, logg))
						r.Post("/cancel-sale", controllers.CancelCarSale(p.Cars, logg))

						r.Route("/expenses", func(r chi.Router) {
							r.Get("/", controllers.ListExpenses(p.Cars, logg))
							r.Post("/", controllers.AddExpense(p.Cars, logg))
							r.Patch("/{expenseID}", controllers.UpdateExpense(p.Cars, logg))
							r.Delete("/{expenseID}", controllers.DeleteExpense(p.Cars, logg))
						})
					})
				})
			})
		})

		r.Route("/invitations/{token}", func(r chi.Router) {
			r.Get("/", controllers.GetInvitation(p.Invitations, logg))
			r.Post("/accept", controllers.AcceptInvitation(p.Invitations, logg))
			r.Post("/decline", controllers.DeclineInvitation(p.Invitations, logg))
		})
	})

	return r
}
