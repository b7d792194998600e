package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/config"
	"github.com/muze-cafe/api/internal/enum"
	"github.com/muze-cafe/api/internal/handler"
	mw "github.com/muze-cafe/api/internal/middleware"
	"github.com/muze-cafe/api/internal/ratelimit"
	"github.com/muze-cafe/api/internal/ws"
)

// Store is the database surface the read-only and admin handlers need.
// Satisfied by *database.Queries.
type Store interface {
	handler.MenuStore
	handler.SettingsStore
}

// New creates a Chi router with all application routes wired up.
// counter may be nil, in which case no rate limits are applied.
func New(cfg *config.Config, store Store, orders handler.OrderServicer, hub *ws.Hub, counter ratelimit.Counter) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RealIP(mw.ParseTrustedProxies(cfg.TrustedProxies)))
	r.Use(mw.Logger)
	r.Use(mw.Metrics)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	orderLimit := limiter(counter, "orders", 5, 15*time.Minute, "Too many orders. Please wait before placing another order.")
	pinLimit := limiter(counter, "pin", 5, 5*time.Minute, "Too many login attempts. Please try again later.")

	orderHandler := handler.NewOrderHandler(orders)
	authHandler := handler.NewAuthHandler(cfg.StaffPINHash, cfg.JWTSecret, cfg.TokenTTL)
	menuHandler := handler.NewMenuHandler(store)
	settingsHandler := handler.NewSettingsHandler(store)

	r.Route("/api", func(r chi.Router) {
		r.Route("/menu", menuHandler.RegisterRoutes)

		r.With(pinLimit).Route("/auth", authHandler.RegisterRoutes)

		r.Route("/orders", func(r chi.Router) {
			r.With(orderLimit).Post("/", orderHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(mw.Authenticate(cfg.JWTSecret))
				r.Use(mw.RequireRole(enum.RoleStaff))
				orderHandler.RegisterStaffRoutes(r)
			})

			orderHandler.RegisterPublicRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.RoleStaff))
			r.Route("/settings", settingsHandler.RegisterRoutes)
		})
	})

	logrus.Info("router initialized")
	return r
}

func limiter(counter ratelimit.Counter, name string, max int64, window time.Duration, message string) func(http.Handler) http.Handler {
	if counter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw.RateLimit(counter, name, max, window, message)
}
