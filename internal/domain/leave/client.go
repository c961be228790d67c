package leave

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

func (c *Client) List(ctx context.Context) ([]Request, error) {
	var out []Request
	err := c.api.Get(ctx, "/leave", &out)
	return out, err
}

func (c *Client) ByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	var out []Request
	err := c.api.Get(ctx, "/leave/employee/"+url.PathEscape(employeeID), &out)
	return out, err
}

func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var out Balance
	err := c.api.Get(ctx, "/leave/balance", &out)
	return out, err
}

// Apply validates in locally first; an invalid application never reaches
// the network.
func (c *Client) Apply(ctx context.Context, in ApplyInput) (Request, error) {
	if _, err := in.Validate(); err != nil {
		return Request{}, err
	}
	var out Request
	err := c.api.Post(ctx, "/leave", in, &out)
	return out, err
}

func (c *Client) SetStatus(ctx context.Context, id string, in StatusInput) (Request, error) {
	if err := in.Validate(); err != nil {
		return Request{}, err
	}
	var out Request
	err := c.api.Put(ctx, "/leave/"+url.PathEscape(id)+"/status", in, &out)
	return out, err
}

func (c *Client) Cancel(ctx context.Context, id string) (Request, error) {
	var out Request
	err := c.api.Put(ctx, "/leave/"+url.PathEscape(id)+"/cancel", struct{}{}, &out)
	return out, err
}
