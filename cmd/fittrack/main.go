package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	adapthttp "fittrack/internal/adapter/http"
	"fittrack/internal/adapter/memory"
	"fittrack/internal/adapter/postgres"
	"fittrack/internal/adapter/sqlite"
	"fittrack/internal/app"
	"fittrack/internal/config"
	"fittrack/internal/domain"
)

// store bundles the repository ports served by the selected backend.
type store struct {
	users     domain.UserRepository
	activity  domain.ActivityRepository
	baselines domain.BaselineStore
	sessions  domain.SessionRepository
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.AppEnv)

	st, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer func() { _ = st.close() }()

	authSvc := app.NewAuthService(st.users, st.sessions)
	trackerSvc := app.NewTrackerService(st.activity, st.users, st.baselines, logger)
	defer trackerSvc.Close()
	profileSvc := app.NewProfileService(st.users, trackerSvc)

	trackerSvc.SetGoalCompletedFunc(func(email string, steps int) {
		logger.Info().Str("email", email).Int("steps", steps).Msg("step goal completed")
	})

	oidcConfig, err := buildOIDC(context.Background(), cfg.OIDC)
	if err != nil {
		logger.Fatal().Err(err).Msg("oidc setup")
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: adapthttp.New(authSvc, trackerSvc, profileSvc, oidcConfig, logger).Handler(),
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go sessionCleanupLoop(cleanupCtx, st.sessions, logger)

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("driver", cfg.StoreDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("stopped")
}

func openStore(cfg config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &store{users: db, activity: db, baselines: db, sessions: db.NewSessionRepo(), close: db.Close}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{users: db, activity: db, baselines: db, sessions: db.NewSessionRepo(), close: db.Close}, nil
	case config.DriverMemory:
		db := memory.New()
		return &store{users: db, activity: db, baselines: db, sessions: db.NewSessionRepo(), close: func() error { return nil }}, nil
	}
	return nil, errors.New("unknown store driver " + cfg.StoreDriver)
}

func buildOIDC(ctx context.Context, o config.OIDC) (adapthttp.OIDCConfig, error) {
	if !o.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, o.IssuerURL)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// sessionCleanupLoop purges expired sessions once an hour.
func sessionCleanupLoop(ctx context.Context, sessions domain.SessionRepository, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn().Err(err).Msg("delete expired sessions")
			}
		}
	}
}
