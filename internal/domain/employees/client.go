package employees

import (
	"context"
	"io"
	"net/url"

	apiclient "hrmportal/internal/transport/http/client"
)

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := c.api.Get(ctx, "/employees", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Employee, error) {
	var out Employee
	err := c.api.Get(ctx, "/employees/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in Input) (Employee, error) {
	if err := in.ValidateCreate(); err != nil {
		return Employee{}, err
	}
	var out Employee
	err := c.api.Post(ctx, "/employees", in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, in Input) (Employee, error) {
	if err := in.ValidateUpdate(); err != nil {
		return Employee{}, err
	}
	var out Employee
	err := c.api.Put(ctx, "/employees/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/employees/"+url.PathEscape(id), nil)
}

func (c *Client) UploadAvatar(ctx context.Context, id, filename string, content io.Reader) (Employee, error) {
	var out Employee
	err := c.api.Upload(ctx, "/employees/"+url.PathEscape(id)+"/avatar", apiclient.Upload{
		Field:    "avatar",
		Filename: filename,
		Content:  content,
	}, &out)
	return out, err
}
