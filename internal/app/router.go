package app

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-basket/internal/basket"
	"github.com/noah-isme/backend-basket/internal/common"
	"github.com/noah-isme/backend-basket/internal/docs"
	"github.com/noah-isme/backend-basket/internal/health"
	"github.com/noah-isme/backend-basket/internal/obs"
	"github.com/noah-isme/backend-basket/internal/ratelimit"
	"github.com/noah-isme/backend-basket/internal/security"
)

// NewRouter assembles the HTTP surface: middleware chain, basket routes and
// operational endpoints.
func NewRouter(deps *Dependencies) http.Handler {
	cfg := deps.Config

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.Obs.EnableTracing {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.Obs.EnablePrometheus {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, registerer)
		r.Use(obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, nil, registerer).Middleware)
	}
	r.Use(obs.RequestLogger(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", obs.BasketIDHeader, common.IdempotencyHeader},
		ExposedHeaders:   []string{obs.BasketIDHeader, "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.HSTS}.Middleware)

	if cfg.Obs.EnablePrometheus {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Obs.EnablePprof {
		r.Mount("/debug/pprof", protect(middleware.Profiler(), cfg.Obs.PprofUser, cfg.Obs.PprofPass))
	}
	if cfg.SwaggerEnable {
		r.Get("/swagger/openapi.yaml", docs.Handler)
	}

	healthHandler := health.Handler{Checker: health.RedisChecker{Client: deps.Redis}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	log := deps.Logger.With().Str("component", "http").Logger()
	h := &basket.Handler{
		Svc:          deps.Service,
		Logger:       &log,
		CookieName:   cfg.BasketCookieName,
		CookieSecure: cfg.BasketCookieSecure,
		CookieMaxAge: cfg.BasketIdleTTL,
	}
	limit := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { log.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	idem := common.Idem{
		R:   deps.Redis,
		TTL: cfg.IdempotencyTTL,
		Scope: func(r *http.Request) string {
			if id, ok := basket.IDFromContext(r.Context()); ok {
				return id.String()
			}
			return ""
		},
	}

	r.Route("/basket", func(b chi.Router) {
		b.Use(limit.Middleware)
		b.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		if cfg.CSRF {
			b.Use(security.CSRF{ExemptHeader: obs.BasketIDHeader}.Middleware)
		}
		b.Use(h.ResolveBasket)
		b.Use(idem.Middleware)
		h.Routes(b)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteProblem(w, common.Problem{Title: "Not found", Status: http.StatusNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteProblem(w, common.Problem{Title: "Method not allowed", Status: http.StatusMethodNotAllowed})
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// protect wraps handler with basic auth when user is set.
func protect(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			common.WriteProblem(w, common.Problem{Title: "Unauthorised", Status: http.StatusUnauthorized})
			return
		}
		handler.ServeHTTP(w, r)
	})
}
