package demostore

import (
	"context"
	"fmt"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/settings"
)

const logoURL = "/api/settings/company/logo"

func (s *Store) Company() settings.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

// UpdateCompany replaces the company profile. The logo is managed through
// SetLogo and survives an update that omits it.
func (s *Store) UpdateCompany(ctx context.Context, c settings.Company) (settings.Company, error) {
	if err := c.Validate(); err != nil {
		return settings.Company{}, err
	}
	s.mu.Lock()
	if c.Logo == "" {
		c.Logo = s.company.Logo
	}
	s.company = c
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveCompany(ctx, c); err != nil {
			return settings.Company{}, fmt.Errorf("persist company: %w", err)
		}
	}
	return c, nil
}

func (s *Store) SetLogo(ctx context.Context, file File) (settings.Company, error) {
	s.mu.Lock()
	s.logo = &file
	s.company.Logo = logoURL
	c := s.company
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveCompany(ctx, c); err != nil {
			return settings.Company{}, fmt.Errorf("persist company: %w", err)
		}
	}
	return c, nil
}

func (s *Store) Logo() (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logo == nil {
		return File{}, ErrNotFound
	}
	return *s.logo, nil
}

// Roles renders the live matrix with every entry present.
func (s *Store) Roles() []auth.RolePermission {
	return s.matrix.Load().Wire()
}

// SaveRoles replaces the matrix. Entries the payload leaves out are denied
// and reported back as gaps.
func (s *Store) SaveRoles(ctx context.Context, entries []auth.RolePermission) (auth.Matrix, []string, error) {
	m, gaps := auth.MatrixFromWire(entries)
	if s.repo != nil {
		if err := s.repo.SaveRoles(ctx, m.Wire()); err != nil {
			return auth.Matrix{}, nil, fmt.Errorf("persist roles: %w", err)
		}
	}
	s.matrix.Update(m)
	if len(gaps) > 0 {
		s.logger.Warn("role matrix saved with missing entries", "gaps", gaps)
	}
	return m, gaps, nil
}
