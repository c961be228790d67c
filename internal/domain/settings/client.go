package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	apiclient "hrmportal/internal/transport/http/client"
)

type Client struct {
	api    *apiclient.Client
	logger *slog.Logger
}

func NewClient(api *apiclient.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}

func (c *Client) Company(ctx context.Context) (Company, error) {
	var out Company
	err := c.api.Get(ctx, "/settings/company", &out)
	return out, err
}

func (c *Client) UpdateCompany(ctx context.Context, company Company) (Company, error) {
	if err := company.Validate(); err != nil {
		return Company{}, err
	}
	var out Company
	err := c.api.Put(ctx, "/settings/company", company, &out)
	return out, err
}

func (c *Client) UploadLogo(ctx context.Context, filename string, content io.Reader) (Company, error) {
	var out Company
	err := c.api.Upload(ctx, "/settings/company/logo", apiclient.Upload{
		Field:    "logo",
		Filename: filename,
		Content:  content,
	}, &out)
	return out, err
}

// Audit lists recorded changes, newest first.
func (c *Client) Audit(ctx context.Context, f audit.Filter, limit int) ([]audit.Event, error) {
	q := url.Values{}
	if f.Action != "" {
		q.Set("action", f.Action)
	}
	if f.ActorID != "" {
		q.Set("actor", f.ActorID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []audit.Event
	err := c.api.Get(ctx, "/settings/audit", &out, apiclient.WithQuery(q))
	return out, err
}

// Roles loads the permission matrix. Entries the server leaves out are
// denied and logged.
func (c *Client) Roles(ctx context.Context) (auth.Matrix, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, "/settings/roles", &raw); err != nil {
		return auth.Matrix{}, err
	}
	return c.matrixFrom(raw)
}

// SaveRoles sends the full matrix and returns what the server stored.
func (c *Client) SaveRoles(ctx context.Context, m auth.Matrix) (auth.Matrix, error) {
	var raw json.RawMessage
	if err := c.api.Put(ctx, "/settings/roles", RolesPayload{Roles: m.Wire()}, &raw); err != nil {
		return auth.Matrix{}, err
	}
	if len(raw) == 0 {
		return m, nil
	}
	return c.matrixFrom(raw)
}

func (c *Client) matrixFrom(raw json.RawMessage) (auth.Matrix, error) {
	entries, err := decodeRoles(raw)
	if err != nil {
		return auth.Matrix{}, fmt.Errorf("decode roles: %w", err)
	}
	m, gaps := auth.MatrixFromWire(entries)
	if len(gaps) > 0 {
		c.logger.Warn("role matrix incomplete, missing entries denied", "gaps", gaps)
	}
	return m, nil
}
