package http

import (
	"net/http"
	"time"

	"authsvc/internal/domain"
	obsmw "authsvc/internal/observability/middleware"
	"authsvc/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	CORSOrigins        []string
	RequestTimeout     time.Duration
	TrustProxy         bool
	RateLimitPerMinute int
	Cookies            CookieConfig
}

func NewRouter(auth service.AuthService, accounts service.AccountService, authn service.Authenticator, opts Options) http.Handler {
	r := chi.NewRouter()

	// --- Middlewares ---
	r.Use(obsmw.WithRequestAndTrace)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id", "X-Trace-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(obsmw.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, domain.ErrNotFound)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := &authHandler{auth: auth, cookies: opts.Cookies}
	uh := &accountHandler{accounts: accounts}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.RateLimitPerMinute > 0 {
				r.Use(httprate.Limit(opts.RateLimitPerMinute, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeError(w, r, domain.ErrTooManyAttempts.WithMessage("Too many requests. Please try again later."))
					}),
				))
			}
			r.Post("/signup", ah.signup)
			r.Post("/verify-email", ah.verifyEmail)
			r.Post("/login", ah.login)
			r.Post("/forgot-password", ah.forgotPassword)
			r.Post("/reset-password", ah.resetPassword)
			r.Post("/logout", ah.logout)
			r.Post("/refresh-token", ah.refresh)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(Authenticate(authn))
			r.Use(Restrict(authn, domain.AccessRequirement{}))
			r.Get("/me", uh.me)
			r.Put("/profile", uh.updateProfile)
			r.Put("/change-password", uh.changePassword)
		})
	})

	return r
}
