// Package server assembles the demo REST backend the portal client talks to.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/platform/config"
	"hrmportal/internal/platform/db"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/email"
	"hrmportal/internal/platform/jobs"
	"hrmportal/internal/platform/logging"
	"hrmportal/internal/platform/metrics"
	"hrmportal/internal/transport/http/api"
	attendancehandler "hrmportal/internal/transport/http/handlers/attendance"
	authhandler "hrmportal/internal/transport/http/handlers/auth"
	employeeshandler "hrmportal/internal/transport/http/handlers/employees"
	leavehandler "hrmportal/internal/transport/http/handlers/leave"
	payrollhandler "hrmportal/internal/transport/http/handlers/payroll"
	reportshandler "hrmportal/internal/transport/http/handlers/reports"
	settingshandler "hrmportal/internal/transport/http/handlers/settings"
	"hrmportal/internal/transport/http/middleware"
)

// uploadOverhead leaves room for multipart framing around a maximum-size
// payslip.
const uploadOverhead = 1 << 20

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    *demostore.Store
	Matrix   *auth.MatrixStore
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Jobs     *jobs.Service
	Mailer   email.Mailer
	Audit    audit.Store
	Router   http.Handler

	pool     *pgxpool.Pool
	stopJobs context.CancelFunc
}

type Option func(*App)

// WithMailer replaces the mailer built from the configuration.
func WithMailer(m email.Mailer) Option {
	return func(a *App) { a.Mailer = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// New wires the store, optional Postgres persistence, background jobs and
// the router. Callers must Close the app.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.New(cfg.Environment, cfg.LogLevel, os.Stdout)
	}
	if strings.TrimSpace(app.Config.JWTSecret) == "" {
		app.Config.JWTSecret = uuid.NewString() + uuid.NewString()
		app.Logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	if app.Mailer == nil {
		app.Mailer = email.New(cfg, app.Logger)
	}

	app.Matrix = auth.NewMatrixStore(auth.DefaultMatrix())
	storeOpts := []demostore.Option{demostore.WithLogger(app.Logger)}

	var runs jobs.RunRecorder
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		app.pool = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		storeOpts = append(storeOpts, demostore.WithSettingsRepository(db.NewSettingsStore(pool)))
		runs = db.NewJobRunStore(pool)
		app.Audit = db.NewAuditStore(pool)
	}
	if app.Audit == nil {
		app.Audit = audit.NewMemory(0, app.Logger)
	}

	app.Store = demostore.New(app.Matrix, storeOpts...)
	if err := app.Store.LoadSettings(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if cfg.SeedDemoData {
		if err := app.Store.Seed(); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(app.Registry, "hrm", "http")

	app.Jobs = jobs.New(app.Store, app.Mailer, cfg.EmailFrom, cfg.ScheduleInterval)
	app.Jobs.Runs = runs
	app.Jobs.Logger = app.Logger
	jobCtx, cancel := context.WithCancel(context.Background())
	app.stopJobs = cancel
	app.Jobs.Start(jobCtx)

	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Instrument(a.Metrics))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, payroll.MaxPayslipBytes+uploadOverhead))
	router.Use(middleware.Auth(cfg.JWTSecret, a.Store))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", a.handleReady)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(a.Store, a.Config.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		employeeshandler.NewHandler(a.Store, a.Matrix).RegisterRoutes(r)
		attendancehandler.NewHandler(a.Store, a.Matrix).RegisterRoutes(r)
		leavehandler.NewHandler(a.Store, a.Matrix).RegisterRoutes(r)
		payrollhandler.NewHandler(a.Store, a.Matrix, a.Mailer, cfg.EmailFrom, a.Audit).RegisterRoutes(r)
		reportshandler.NewHandler(a.Store, a.Matrix).RegisterRoutes(r)
		settingshandler.NewHandler(a.Store, a.Matrix, a.Audit).RegisterRoutes(r)
	})
	return router
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HRM demo server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
