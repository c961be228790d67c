package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrmportal/internal/domain/audit"
)

// AuditStore is the Postgres audit.Store.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func (s *AuditStore) Record(ctx context.Context, e audit.Event) error {
	_, err := s.pool.Exec(ctx, `
    INSERT INTO audit_events (id, actor_user_id, action, entity_type, entity_id, request_id, ip, before_json, after_json, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, e.ID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.RequestID, e.IP, nullJSON(e.Before), nullJSON(e.After), e.CreatedAt)
	return err
}

func (s *AuditStore) List(ctx context.Context, f audit.Filter, limit, offset int) ([]audit.Event, error) {
	query, args := buildAuditQuery(f)
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []audit.Event{}
	for rows.Next() {
		var (
			e             audit.Event
			before, after []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &e.IP, &e.CreatedAt, &before, &after); err != nil {
			return nil, err
		}
		e.Before, e.After = before, after
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildAuditQuery(f audit.Filter) (string, []any) {
	query := `SELECT id::text, actor_user_id, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json
    FROM audit_events WHERE true`
	var args []any
	if f.Action != "" {
		args = append(args, f.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if f.ActorID != "" {
		args = append(args, f.ActorID)
		query += fmt.Sprintf(" AND actor_user_id = $%d", len(args))
	}
	return query, args
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
