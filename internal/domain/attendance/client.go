package attendance

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

// List returns the records for date, or all records when date is empty.
func (c *Client) List(ctx context.Context, date string) ([]Record, error) {
	var out []Record
	err := c.api.Get(ctx, "/attendance", &out, apiclient.WithQuery(url.Values{"date": {date}}))
	return out, err
}

func (c *Client) ByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	var out []Record
	err := c.api.Get(ctx, "/attendance/employee/"+url.PathEscape(employeeID), &out)
	return out, err
}

func (c *Client) Mark(ctx context.Context, in MarkInput) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	var out Record
	err := c.api.Post(ctx, "/attendance", in, &out)
	return out, err
}

func (c *Client) MarkBulk(ctx context.Context, in BulkInput) ([]Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out []Record
	err := c.api.Post(ctx, "/attendance/bulk", in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, in UpdateInput) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	var out Record
	err := c.api.Put(ctx, "/attendance/"+url.PathEscape(id), in, &out)
	return out, err
}
