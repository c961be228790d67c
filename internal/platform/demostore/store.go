// Package demostore is the in-memory backend of the demo server. It plays
// the mocked REST server the portal was first built against.
package demostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/reports"
	"hrmportal/internal/domain/settings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// SettingsRepository persists company settings and the role matrix across
// restarts. The Postgres implementation lives in platform/db.
type SettingsRepository interface {
	LoadCompany(ctx context.Context) (settings.Company, bool, error)
	SaveCompany(ctx context.Context, c settings.Company) error
	LoadRoles(ctx context.Context) ([]auth.RolePermission, bool, error)
	SaveRoles(ctx context.Context, roles []auth.RolePermission) error
}

// File is a stored binary: logo, payslip or generated report.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type account struct {
	user auth.User
	hash string
}

type Store struct {
	mu sync.RWMutex

	accounts  map[string]*account
	revoked   map[string]time.Time
	employees map[string]*employees.Employee
	empOrder  []string

	attendance []*attendance.Record
	leaves     []*leave.Request
	balances   map[string]leave.Balance

	payroll  []*payroll.Record
	payslips map[string]File

	reports     []*reports.Report
	reportFiles map[string]File
	schedules   []*reports.Schedule
	lastRun     map[string]string

	company settings.Company
	logo    *File

	matrix *auth.MatrixStore
	repo   SettingsRepository
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithSettingsRepository(repo SettingsRepository) Option {
	return func(s *Store) { s.repo = repo }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty store. matrix is shared with the RBAC middleware so
// a roles update is enforced on the next request.
func New(matrix *auth.MatrixStore, opts ...Option) *Store {
	if matrix == nil {
		matrix = auth.NewMatrixStore(auth.DefaultMatrix())
	}
	s := &Store{
		accounts:    map[string]*account{},
		revoked:     map[string]time.Time{},
		employees:   map[string]*employees.Employee{},
		balances:    map[string]leave.Balance{},
		payslips:    map[string]File{},
		reportFiles: map[string]File{},
		lastRun:     map[string]string{},
		matrix:      matrix,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSettings pulls persisted company settings and roles, if any.
func (s *Store) LoadSettings(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	company, ok, err := s.repo.LoadCompany(ctx)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	if ok {
		s.mu.Lock()
		s.company = company
		s.mu.Unlock()
	}
	roles, ok, err := s.repo.LoadRoles(ctx)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if ok {
		m, gaps := auth.MatrixFromWire(roles)
		if len(gaps) > 0 {
			s.logger.Warn("persisted role matrix incomplete, missing entries denied", "gaps", gaps)
		}
		s.matrix.Update(m)
	}
	return nil
}

func (s *Store) Matrix() *auth.MatrixStore {
	return s.matrix
}

func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}

func newID() string {
	return uuid.NewString()
}
