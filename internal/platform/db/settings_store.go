package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/settings"
)

// SettingsStore keeps the company profile and the role matrix in Postgres.
type SettingsStore struct {
	pool *pgxpool.Pool
}

func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

func (s *SettingsStore) LoadCompany(ctx context.Context) (settings.Company, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT profile FROM company_settings WHERE id = 1").Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings.Company{}, false, nil
	}
	if err != nil {
		return settings.Company{}, false, err
	}
	var c settings.Company
	if err := json.Unmarshal(raw, &c); err != nil {
		return settings.Company{}, false, err
	}
	return c, true, nil
}

func (s *SettingsStore) SaveCompany(ctx context.Context, c settings.Company) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
    INSERT INTO company_settings (id, profile) VALUES (1, $1)
    ON CONFLICT (id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()
  `, raw)
	return err
}

func (s *SettingsStore) LoadRoles(ctx context.Context) ([]auth.RolePermission, bool, error) {
	rows, err := s.pool.Query(ctx, "SELECT role, permissions FROM role_permissions ORDER BY role")
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []auth.RolePermission
	for rows.Next() {
		var role string
		var raw []byte
		if err := rows.Scan(&role, &raw); err != nil {
			return nil, false, err
		}
		entry := auth.RolePermission{Role: auth.Role(role)}
		if err := json.Unmarshal(raw, &entry.Permissions); err != nil {
			return nil, false, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

// SaveRoles replaces every stored role in one transaction.
func (s *SettingsStore) SaveRoles(ctx context.Context, roles []auth.RolePermission) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM role_permissions"); err != nil {
		return err
	}
	for _, entry := range roles {
		raw, err := json.Marshal(entry.Permissions)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "INSERT INTO role_permissions (role, permissions) VALUES ($1, $2)", string(entry.Role), raw); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
