package reports

import (
	"context"
	"net/url"

	apiclient "hrmportal/internal/transport/http/client"
)

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Generate(ctx context.Context, in GenerateInput) (Report, error) {
	if err := in.Validate(); err != nil {
		return Report{}, err
	}
	var out Report
	err := c.api.Post(ctx, "/reports/generate", in.Normalized(), &out)
	return out, err
}

func (c *Client) Recent(ctx context.Context) ([]Report, error) {
	var out []Report
	err := c.api.Get(ctx, "/reports/recent", &out)
	return out, err
}

func (c *Client) Download(ctx context.Context, id string) (apiclient.File, error) {
	return c.api.Download(ctx, "/reports/"+url.PathEscape(id)+"/download")
}

func (c *Client) Schedule(ctx context.Context, in ScheduleInput) (Schedule, error) {
	if err := in.Validate(); err != nil {
		return Schedule{}, err
	}
	var out Schedule
	err := c.api.Post(ctx, "/reports/schedule", in, &out)
	return out, err
}

func (c *Client) Scheduled(ctx context.Context) ([]Schedule, error) {
	var out []Schedule
	err := c.api.Get(ctx, "/reports/scheduled", &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.api.Get(ctx, "/dashboard/stats", &out)
	return out, err
}

func (c *Client) Departments(ctx context.Context) ([]DepartmentCount, error) {
	var out []DepartmentCount
	err := c.api.Get(ctx, "/dashboard/departments", &out)
	return out, err
}
