package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"golang.org/x/time/rate"

	"github.com/cardvault-api/internal/application/auth"
	"github.com/cardvault-api/internal/application/cardimage"
	"github.com/cardvault-api/internal/application/notification"
	"github.com/cardvault-api/internal/application/order"
	"github.com/cardvault-api/internal/application/payment"
	"github.com/cardvault-api/internal/application/status"
	"github.com/cardvault-api/internal/application/user"
	"github.com/cardvault-api/internal/config"
	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/pkg/ratelimit"
	"github.com/cardvault-api/internal/transport/http/handler"
	appmiddleware "github.com/cardvault-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	production := cfg.AppEnv == "production"

	// 10 requests/second per client IP across the whole API; the login flow
	// carries its own much tighter attempt limiter inside the auth service.
	r.Use(appmiddleware.RateLimit(ratelimit.NewLimit(rate.Limit(10), 20)))

	authMw := appmiddleware.SessionAuth(deps.TokenProvider, deps.UserRepo)

	loginLimiter := ratelimit.NewKeyed(cfg.LoginWindow, cfg.LoginMaxAttempts)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		Tokens:      deps.TokenProvider,
		Mailer:      deps.Mailer,
		Limiter:     loginLimiter,
		FrontendURL: cfg.FrontendURL,
	})
	orderSvc := order.NewService(deps.OrderRepo, deps.StatusRepo, deps.NotificationRepo)
	paymentSvc := payment.NewService(deps.Payments)
	statusSvc := status.NewService(deps.StatusRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	imageSvc := cardimage.NewService(deps.S3Store, deps.CardImageRepo)
	userSvc := user.NewService(deps.UserRepo)

	authH := handler.NewAuth(authSvc, cfg.SessionTTL, production)
	orderH := handler.NewOrders(orderSvc)
	paymentH := handler.NewPayments(paymentSvc)
	statusH := handler.NewStatuses(statusSvc)
	notifH := handler.NewNotifications(notifSvc)
	imageH := handler.NewCardImages(imageSvc)
	userH := handler.NewUsers(userSvc)

	csrfProtect := csrf.Protect([]byte(cfg.CSRFAuthKey),
		csrf.Secure(production),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.TrustedOrigins(cfg.AllowedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"invalid csrf token"}`))
		})),
	)
	r.Use(csrfProtect)

	r.Get("/health-check", handler.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/csrf-token", authH.CSRFToken)
		r.Post("/register", authH.Register)
		r.Get("/verify-email/{token}", authH.VerifyEmail)
		r.Post("/set-password", authH.SetPassword)
		r.Post("/login", authH.Login)
		r.Post("/request-password-reset", authH.RequestPasswordReset)
		r.Post("/reset-password", authH.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/me", authH.Me)
			r.Post("/logout", authH.Logout)
			r.Post("/change-password", authH.ChangePassword)
		})
	})

	r.Get("/statuses", statusH.List)
	r.Get("/statuses/{id}", statusH.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Post("/orders", orderH.Create)
		r.Get("/orders", orderH.List)
		r.Get("/orders/{id}", orderH.Get)

		r.Post("/payments/intent", paymentH.CreateIntent)

		r.Get("/notifications", notifH.ListUnread)
		r.Put("/notifications/{id}", notifH.MarkAsRead)

		r.Post("/cards/images", imageH.Upload)
		r.Get("/cards/images", imageH.List)
		r.Get("/cards/images/{id}", imageH.Download)
		r.Delete("/cards/images/{id}", imageH.Delete)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Put("/orders/{id}/status", orderH.SetStatus)

			r.Post("/statuses", statusH.Create)
			r.Put("/statuses/{id}", statusH.Update)
			r.Delete("/statuses/{id}", statusH.Delete)

			r.Get("/users", userH.List)
			r.Get("/users/{id}", userH.Get)
			r.Delete("/users/{id}", userH.Disable)
		})
	})

	return r
}
