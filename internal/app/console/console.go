// Package console is the view layer of the portal client. It binds the
// session, the query cache, the permission matrix and the resource clients
// so a front-end only renders what it gets back.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/reports"
	"hrmportal/internal/domain/settings"
	"hrmportal/internal/platform/metrics"
	"hrmportal/internal/querycache"
	"hrmportal/internal/session"
	apiclient "hrmportal/internal/transport/http/client"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrForbidden        = errors.New("permission denied")
)

type Options struct {
	APIURL            string
	Storage           session.Storage
	StaleTime         time.Duration
	GCTime            time.Duration
	RequestTimeout    time.Duration
	RateLimit         float64
	RateBurst         int
	ValidateOnRestore bool
	HTTPClient        *http.Client
	Registerer        prometheus.Registerer
	Logger            *slog.Logger
}

type App struct {
	API     *apiclient.Client
	Session *session.Store
	Cache   *querycache.Cache
	Matrix  *auth.MatrixStore

	Auth       *auth.Client
	Employees  *employees.Client
	Attendance *attendance.Client
	Leave      *leave.Client
	Payroll    *payroll.Client
	Reports    *reports.Client
	Settings   *settings.Client

	logger      *slog.Logger
	unsubscribe func()
}

func New(opts Options) (*App, error) {
	if opts.Storage == nil {
		return nil, errors.New("console: storage is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api, err := apiclient.New(opts.APIURL,
		apiclient.WithHTTPClient(opts.HTTPClient),
		apiclient.WithTimeout(opts.RequestTimeout),
		apiclient.WithRateLimit(opts.RateLimit, opts.RateBurst),
		apiclient.WithMetrics(metrics.New(opts.Registerer, "hrm", "client")),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	a := &App{
		API:        api,
		Matrix:     auth.NewMatrixStore(auth.DefaultMatrix()),
		Auth:       auth.NewClient(api),
		Employees:  employees.NewClient(api),
		Attendance: attendance.NewClient(api),
		Leave:      leave.NewClient(api),
		Payroll:    payroll.NewClient(api),
		Reports:    reports.NewClient(api),
		Settings:   settings.NewClient(api, logger),
		logger:     logger,
	}
	a.Session = session.New(opts.Storage, a.Auth,
		session.WithLogger(logger),
		session.WithServerValidation(opts.ValidateOnRestore),
	)
	a.Cache = querycache.New(querycache.Options{
		StaleTime:    opts.StaleTime,
		GCTime:       opts.GCTime,
		FetchTimeout: opts.RequestTimeout,
		Registerer:   opts.Registerer,
		Logger:       logger,
	})

	api.SetTokenSource(a.Session.Token)
	api.OnUnauthorized(func(token string, err error) {
		a.Session.ExpireToken(token, apiclient.Message(err))
	})
	a.unsubscribe = a.Session.Subscribe(a.onSessionEvent)
	return a, nil
}

// onSessionEvent drops everything cached for the previous identity. The
// matrix goes back to the defaults until the next roles load.
func (a *App) onSessionEvent(ev session.Event) {
	switch ev.Type {
	case session.EventLogin, session.EventLogout, session.EventExpired:
		a.Cache.Clear()
	}
	if ev.Type == session.EventLogout || ev.Type == session.EventExpired {
		a.Matrix.Update(auth.DefaultMatrix())
		a.logger.Info("session ended", "event", string(ev.Type), "reason", ev.Reason)
	}
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.Cache.Close()
}

// Restore loads the persisted session and, when one is found, the role
// matrix. Callers render protected views only after it returns.
func (a *App) Restore(ctx context.Context) error {
	if err := a.Session.Restore(ctx); err != nil {
		return err
	}
	if _, ok := a.Session.Current(); ok {
		a.refreshRolesQuietly(ctx)
	}
	return nil
}

// Login returns false, nil for rejected credentials.
func (a *App) Login(ctx context.Context, email, password string) (bool, error) {
	ok, err := a.Session.Login(ctx, email, password)
	if err != nil || !ok {
		return ok, err
	}
	a.refreshRolesQuietly(ctx)
	return true, nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.Session.Logout(ctx)
}

// Current is the signed-in user, if any.
func (a *App) Current() (session.Session, bool) {
	return a.Session.Current()
}

// Can answers whether the signed-in user may perform action on module. It
// is false when nobody is signed in.
func (a *App) Can(module auth.Module, action auth.Action) bool {
	role, ok := a.Session.Role()
	if !ok {
		return false
	}
	return a.Matrix.Can(role, module, action)
}

// RefreshRoles reloads the server's role matrix into the local store,
// bypassing any cached copy.
func (a *App) RefreshRoles(ctx context.Context) (auth.Matrix, error) {
	if _, err := a.user(); err != nil {
		return auth.Matrix{}, err
	}
	a.Cache.Invalidate(RolesKey())
	m, err := querycache.Load(ctx, a.Cache, RolesKey(), a.Settings.Roles)
	if err != nil {
		return auth.Matrix{}, err
	}
	a.Matrix.Update(m)
	return m, nil
}

func (a *App) refreshRolesQuietly(ctx context.Context) {
	if _, err := a.RefreshRoles(ctx); err != nil {
		a.logger.Warn("role matrix not loaded, using defaults", "err", err)
	}
}

func (a *App) user() (session.Session, error) {
	sess, ok := a.Session.Current()
	if !ok {
		return session.Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

// require checks c before any request is made.
func (a *App) require(c auth.Capability) (session.Session, error) {
	sess, err := a.user()
	if err != nil {
		return sess, err
	}
	if !a.Matrix.Allows(sess.Role, c) {
		return sess, fmt.Errorf("%w: %s cannot %s %s", ErrForbidden, sess.Role, c.Action(), c.Module())
	}
	return sess, nil
}

// requireSelfOr lets the user act on their own records, or on anyone's with c.
func (a *App) requireSelfOr(c auth.Capability, employeeID string) (session.Session, error) {
	sess, err := a.user()
	if err != nil {
		return sess, err
	}
	if sess.UserID == employeeID {
		return sess, nil
	}
	return a.require(c)
}
