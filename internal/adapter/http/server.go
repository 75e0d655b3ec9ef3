// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"fittrack/internal/app"
)

// OIDCConfig carries the single-sign-on wiring. When Enabled is false the
// SSO endpoints respond 404 and password login is the only way in.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth    *app.AuthService
	tracker *app.TrackerService
	profile *app.ProfileService

	oidcConfig OIDCConfig
	log        zerolog.Logger

	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, tracker *app.TrackerService, profile *app.ProfileService, oidcConfig OIDCConfig, log zerolog.Logger) *Server {
	return &Server{
		auth:       auth,
		tracker:    tracker,
		profile:    profile,
		oidcConfig: oidcConfig,
		log:        log,
	}
}

// WithoutAuth disables session validation; requests identify themselves via
// the X-User-Email header instead. For tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/config", s.handleConfig)

		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/sso/login", s.handleSSOLogin)
		r.Get("/auth/sso/callback", s.handleSSOCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/sensor/reading", s.handleSensorReading)
			r.Post("/tracker/start", s.handleTrackerStart)
			r.Post("/tracker/stop", s.handleTrackerStop)

			r.Get("/stats/today", s.handleStatsToday)
			r.Get("/stats/hourly", s.handleStatsHourly)
			r.Get("/stats/weekly", s.handleStatsWeekly)

			r.Get("/profile", s.handleProfileGet)
			r.Put("/profile", s.handleProfileUpdate)
			r.Put("/profile/goals", s.handleGoalsUpdate)
			r.Post("/profile/weight", s.handleWeightRecord)
		})
	})

	return r
}
