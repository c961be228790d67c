package console_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmportal/internal/app/console"
	"hrmportal/internal/app/server"
	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/platform/config"
	"hrmportal/internal/platform/email"
	"hrmportal/internal/platform/localstore"
	"hrmportal/internal/platform/logging"
	"hrmportal/internal/platform/validation"
	apiclient "hrmportal/internal/transport/http/client"
)

type backend struct {
	app      *server.App
	srv      *httptest.Server
	requests atomic.Int64
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	cfg := config.Config{
		Addr:               ":0",
		JWTSecret:          "console-test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		SeedDemoData:       true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
	app, err := server.New(context.Background(), cfg, server.WithMailer(&email.Recorder{}), server.WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	b := &backend{app: app}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		app.Router.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) client(t *testing.T, storage *localstore.Memory) *console.App {
	t.Helper()
	app, err := console.New(console.Options{
		APIURL:            b.srv.URL,
		Storage:           storage,
		StaleTime:         time.Hour,
		GCTime:            time.Minute,
		RequestTimeout:    5 * time.Second,
		ValidateOnRestore: true,
		Logger:            logging.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func (b *backend) login(t *testing.T, email, password string) *console.App {
	t.Helper()
	app := b.client(t, localstore.NewMemory())
	ok, err := app.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.True(t, ok, "login %s", email)
	return app
}

func TestLoginWithBadCredentials(t *testing.T) {
	b := newBackend(t)
	app := b.client(t, localstore.NewMemory())
	ok, err := app.Login(context.Background(), "admin@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	_, signedIn := app.Current()
	assert.False(t, signedIn)
}

func TestInvertedLeaveRangeNeverReachesServer(t *testing.T) {
	b := newBackend(t)
	app := b.login(t, "employee@example.com", "employee123")
	ctx := context.Background()

	_, err := app.LeaveRequests(ctx)
	require.NoError(t, err)
	before := b.requests.Load()

	_, err = app.ApplyLeave(ctx, leave.ApplyInput{Type: "casual", StartDate: "2026-05-10", EndDate: "2026-05-08", Reason: "trip"})
	require.ErrorIs(t, err, validation.ErrInvalid)
	assert.Equal(t, before, b.requests.Load(), "no request may be sent")

	snap, ok := app.Cache.Get(console.LeaveKey())
	require.True(t, ok)
	assert.False(t, snap.Stale, "a rejected write must not invalidate")
}

func TestRoleUpdateIsVisibleImmediately(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.login(t, "admin@example.com", "admin123")
	hr := b.login(t, "hr@example.com", "hr123")

	assert.False(t, hr.Can(auth.ModulePayroll, auth.ActionApprove))
	_, err := hr.ProcessPayroll(ctx, payroll.Period{Month: "1", Year: "2030"})
	require.ErrorIs(t, err, console.ErrForbidden)

	granted := auth.DefaultMatrix().With(auth.RoleHR, auth.CapPayrollApprove, true)
	_, err = admin.SaveRoles(ctx, granted)
	require.NoError(t, err)
	assert.True(t, admin.Matrix.Can(auth.RoleHR, auth.ModulePayroll, auth.ActionApprove))

	_, err = hr.RefreshRoles(ctx)
	require.NoError(t, err)
	require.True(t, hr.Can(auth.ModulePayroll, auth.ActionApprove))
	res, err := hr.ProcessPayroll(ctx, payroll.Period{Month: "1", Year: "2030"})
	require.NoError(t, err)
	assert.NotZero(t, res.Processed)

	_, err = admin.SaveRoles(ctx, auth.DefaultMatrix())
	require.NoError(t, err)
	assert.False(t, admin.Matrix.Can(auth.RoleHR, auth.ModulePayroll, auth.ActionApprove))

	trail, err := admin.AuditTrail(ctx, audit.Filter{Action: audit.ActionRolesUpdate}, 10)
	require.NoError(t, err)
	assert.Len(t, trail, 2)
	_, err = hr.AuditTrail(ctx, audit.Filter{}, 10)
	assert.ErrorIs(t, err, console.ErrForbidden)
}

func TestCreateEmployeeInvalidatesList(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.login(t, "admin@example.com", "admin123")

	list, err := admin.ListEmployees(ctx)
	require.NoError(t, err)
	before := b.requests.Load()

	again, err := admin.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(list))
	assert.Equal(t, before, b.requests.Load(), "a fresh entry is served from the cache")

	_, err = admin.CreateEmployee(ctx, employees.Input{Name: "New Hire", Email: "new.hire@example.com", Department: "Engineering"})
	require.NoError(t, err)

	after, err := admin.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(list)+1)
}

func TestMarkAttendanceRefreshesDay(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	hr := b.login(t, "hr@example.com", "hr123")
	const day = "2030-01-15"

	empty, err := hr.AttendanceOn(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, empty)

	rec, err := hr.MarkAttendance(ctx, attendance.MarkInput{EmployeeID: "3", Date: day, Status: attendance.StatusPresent, CheckIn: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, "3", rec.EmployeeID)

	snap, ok := hr.Cache.Get(console.AttendanceKey(day))
	require.True(t, ok)
	assert.True(t, snap.Stale, "marking must invalidate the day")

	marked, err := hr.AttendanceOn(ctx, day)
	require.NoError(t, err)
	require.Len(t, marked, 1)
	assert.Equal(t, attendance.StatusPresent, marked[0].Status)

	history, err := hr.EmployeeAttendance(ctx, "3")
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestFailedWriteKeepsCache(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	admin := b.login(t, "admin@example.com", "admin123")

	list, err := admin.ListEmployees(ctx)
	require.NoError(t, err)
	_, err = admin.CreateEmployee(ctx, employees.Input{Name: "Dup", Email: list[0].Email})
	require.ErrorIs(t, err, apiclient.ErrConflict)

	snap, ok := admin.Cache.Get(console.EmployeesKey())
	require.True(t, ok)
	assert.False(t, snap.Stale)
}

func TestEmployeeGatedWithoutNetwork(t *testing.T) {
	b := newBackend(t)
	emp := b.login(t, "employee@example.com", "employee123")
	before := b.requests.Load()

	_, err := emp.ListEmployees(context.Background())
	require.ErrorIs(t, err, console.ErrForbidden)
	assert.Equal(t, before, b.requests.Load())
	assert.False(t, emp.Can(auth.ModuleEmployees, auth.ActionView))
	assert.True(t, emp.Can(auth.ModuleLeave, auth.ActionApply))
}

func TestRejectedTokenEndsSession(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	hr := b.login(t, "hr@example.com", "hr123")

	_, err := hr.ListEmployees(ctx)
	require.NoError(t, err)
	require.NotZero(t, hr.Cache.Len())

	claims, err := auth.ParseToken("console-test-secret", hr.Session.Token())
	require.NoError(t, err)
	b.app.Store.Revoke(claims.ID, time.Now().Add(time.Hour))

	_, err = hr.Departments(ctx)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	_, signedIn := hr.Current()
	assert.False(t, signedIn)
	assert.Zero(t, hr.Cache.Len())
	_, err = hr.ListEmployees(ctx)
	assert.ErrorIs(t, err, console.ErrNotAuthenticated)
}

func TestRestoreFromStorage(t *testing.T) {
	b := newBackend(t)
	storage := localstore.NewMemory()
	first := b.client(t, storage)
	ok, err := first.Login(context.Background(), "hr@example.com", "hr123")
	require.NoError(t, err)
	require.True(t, ok)

	second := b.client(t, storage)
	require.NoError(t, second.Restore(context.Background()))
	sess, signedIn := second.Current()
	require.True(t, signedIn)
	assert.Equal(t, auth.RoleHR, sess.Role)

	require.NoError(t, second.Logout(context.Background()))
	third := b.client(t, storage)
	require.NoError(t, third.Restore(context.Background()))
	_, signedIn = third.Current()
	assert.False(t, signedIn)
}
