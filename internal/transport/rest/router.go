package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/screenpulse/screenpulse/internal/metrics"
	"github.com/screenpulse/screenpulse/internal/security"
)

type RouterDeps struct {
	Handler   *Handler
	Verifier  security.AccessTokenVerifier
	JWTIssuer string

	// Limiter is optional; rate limiting is skipped when nil.
	Limiter  RequestLimiter
	RLLimit  int
	RLWindow time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Verifier == nil {
		panic("rest.NewRouter: nil verifier")
	}

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(HTTPLogger)
	r.Use(middleware.Recoverer)
	if d.Limiter != nil {
		r.Use(RateLimitMiddleware(d.Limiter, d.RLLimit, d.RLWindow))
	}
	r.Use(SecurityHeaders)
	r.Use(HTTPMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", d.Handler.Register)
		r.Post("/auth/login", d.Handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Verifier, AuthOptions{ExpectedIssuer: d.JWTIssuer}))

			r.Post("/devices", d.Handler.CreateDevice)
			r.Get("/devices", d.Handler.ListDevices)
			r.Patch("/devices/{deviceID}", d.Handler.RenameDevice)
			r.Delete("/devices/{deviceID}", d.Handler.DeleteDevice)

			r.Post("/sync/push", d.Handler.Push)
			r.Get("/sync/records", d.Handler.Pull)
			r.Get("/sync/log", d.Handler.SyncLog)

			r.Get("/activity", d.Handler.Activity)

			r.Get("/analytics/daily", d.Handler.DailySummary)
			r.Get("/analytics/weekly", d.Handler.WeeklySummary)
			r.Get("/analytics/trends", d.Handler.Trends)
			r.Get("/analytics/top-domains", d.Handler.TopDomains)

			r.Post("/screenshots", d.Handler.UploadScreenshot)
			r.Get("/screenshots", d.Handler.ListScreenshots)
			r.Get("/screenshots/{screenshotID}", d.Handler.FetchScreenshot)
			r.Delete("/screenshots/{screenshotID}", d.Handler.DeleteScreenshot)
		})
	})

	return r
}
