// Package server is the composition root: it builds the services over one
// KeyValueStore, mounts the handlers on a chi router and runs the HTTP
// server until SIGINT or SIGTERM.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                             liveness
//	GET    /metrics                             Prometheus
//	POST   /api/auth/signup|signin|logout        accounts (signin rate limited)
//	GET    /api/auth/session                    current session or null
//	GET    /api/gate                            which screen the app shows
//	*      /api/onboarding...                   onboarding record and tips   [session]
//	*      /api/profile...                      profile                      [session]
//	GET    /api/settings, PATCH /api/settings   settings                     [session]
//	GET    /api/dashboard/..., /api/community/..., /api/documents            [session]
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/config"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/dashboard"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/handler"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/sl"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/middleware"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// Server owns the store: it is closed once the HTTP server has drained.
type Server struct {
	router   *chi.Mux
	cfg      *config.Config
	logger   *slog.Logger
	store    repository.KeyValueStore
	gate     *service.Gate
	registry *prometheus.Registry
}

// New wires every service over store and sets up the routes.
// cfg.Auth.JWTSecret must already be set.
func New(cfg *config.Config, store repository.KeyValueStore, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: prometheus.NewRegistry(),
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	passwords, err := auth.NewPasswordService(auth.Scheme(s.cfg.Auth.PasswordScheme), s.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	// === SERVICES ===
	accounts := service.NewAuthService(s.store, passwords, s.logger)
	onboarding := service.NewOnboardingService(s.store, &notify.Subject{}, s.logger)
	profiles := service.NewProfileService(s.store, onboarding, s.logger)
	settings := service.NewSettingsService(s.store, s.logger)
	s.gate = service.NewGate(service.DevFlags{
		DisableAuth:       s.cfg.Dev.DisableAuth,
		ForceOnboarding:   s.cfg.Dev.ForceOnboarding,
		HonorStoredBypass: s.cfg.Dev.HonorStoredBypass,
	}, onboarding, settings, onboarding.Changes(), s.logger)

	perfRNG, forecastRNG := s.dashboardRNGs()
	performance := dashboard.NewPerformance(perfRNG)
	forecasts := dashboard.NewForecaster(forecastRNG)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(accounts, tokens, s.cfg.HTTP.SecureCookie, s.logger)
	gateHandler := handler.NewGateHandler(s.gate, tokens, accounts, s.logger)
	onboardingHandler := handler.NewOnboardingHandler(onboarding, s.logger)
	profileHandler := handler.NewProfileHandler(profiles, s.logger)
	settingsHandler := handler.NewSettingsHandler(settings, s.logger)
	dashboardHandler := handler.NewDashboardHandler(performance, forecasts, s.cfg.Location(), s.logger)

	// === METRICS ===
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(s.registry)

	// === GLOBAL MIDDLEWARE ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Handler)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	signInLimiter := rate.NewLimiter(rate.Limit(s.cfg.Auth.SignInRate), s.cfg.Auth.SignInBurst)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignUp)
			r.With(middleware.RateLimit(signInLimiter, s.logger)).Post("/signin", authHandler.HandleSignIn)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/session", authHandler.HandleSession)
		})
		r.Get("/gate", gateHandler.HandleState)

		// Everything below needs a session, unless the gate bypasses auth.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(tokens, accounts, s.gate.AuthBypassed))

			r.Route("/onboarding", func(r chi.Router) {
				r.Get("/", onboardingHandler.HandleGet)
				r.Put("/", onboardingHandler.HandleSave)
				r.Patch("/", onboardingHandler.HandlePatch)
				r.Delete("/", onboardingHandler.HandleReset)
				r.Post("/skip", onboardingHandler.HandleSkip)
				r.Get("/tips", onboardingHandler.HandleTips)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.HandleGet)
				r.Put("/", profileHandler.HandleSave)
				r.Put("/avatar", profileHandler.HandleSetAvatar)
				r.Delete("/avatar", profileHandler.HandleClearAvatar)
				r.Patch("/site", profileHandler.HandleEditSite)
				r.Put("/notifications", profileHandler.HandleSetNotifications)
			})

			r.Get("/settings", settingsHandler.HandleGet)
			r.Patch("/settings", settingsHandler.HandleUpdate)

			r.Get("/dashboard/performance/{period}", dashboardHandler.HandlePerformance)
			r.Get("/dashboard/forecast", dashboardHandler.HandleForecast)
			r.Get("/dashboard/forecast/month", dashboardHandler.HandleMonthForecast)

			r.Get("/community/regions", dashboardHandler.HandleRegions)
			r.Get("/community/regions/{id}", dashboardHandler.HandleRegion)
			r.Get("/community/select", dashboardHandler.HandleSelect)

			r.Get("/documents", dashboardHandler.HandleDocuments)
		})
	})

	return nil
}

// dashboardRNGs seeds the simulated figures. A zero seed picks a random one,
// so every start shows different numbers.
func (s *Server) dashboardRNGs() (*rand.Rand, *rand.Rand) {
	seed := s.cfg.Dashboard.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, 1)), rand.New(rand.NewPCG(seed, 2))
}

// Close releases the gate subscription and the store.
func (s *Server) Close() error {
	s.gate.Close()
	return s.store.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to cfg.HTTP.ShutdownTimeout and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing store", sl.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:         s.cfg.HTTP.Address,
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("address", s.cfg.HTTP.Address),
			slog.String("env", s.cfg.Env),
			slog.String("storage", s.cfg.Storage.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
