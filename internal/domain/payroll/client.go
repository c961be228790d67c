package payroll

import (
	"context"
	"io"
	"net/url"
	"strings"

	"hrmportal/internal/platform/validation"
	apiclient "hrmportal/internal/transport/http/client"
)

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := c.api.Get(ctx, "/payroll", &out)
	return out, err
}

func (c *Client) ByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	var out []Record
	err := c.api.Get(ctx, "/payroll/employee/"+url.PathEscape(employeeID), &out)
	return out, err
}

func (c *Client) ByPeriod(ctx context.Context, p Period) ([]Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalize()
	var out []Record
	err := c.api.Get(ctx, "/payroll/period/"+url.PathEscape(p.Year)+"/"+url.PathEscape(p.Month), &out)
	return out, err
}

func (c *Client) Process(ctx context.Context, p Period) (ProcessResult, error) {
	if err := p.Validate(); err != nil {
		return ProcessResult{}, err
	}
	var out ProcessResult
	err := c.api.Post(ctx, "/payroll/process", p.Normalize(), &out)
	return out, err
}

// PayslipUpload is an externally prepared payslip PDF for one employee.
type PayslipUpload struct {
	EmployeeID string
	Period     Period
	Filename   string
	Size       int64
	Content    io.Reader
}

func (u PayslipUpload) Validate() error {
	v := validation.New()
	v.Required("employeeId", u.EmployeeID, "is required")
	v.Merge(u.Period.Validate())
	if !strings.HasSuffix(strings.ToLower(u.Filename), ".pdf") {
		v.Add("file", ErrNotPDF.Error())
	}
	if u.Size > MaxPayslipBytes {
		v.Add("file", ErrPayslipTooLarge.Error())
	}
	if u.Content == nil {
		v.Add("file", "is required")
	}
	return v.Err()
}

func (c *Client) UploadPayslip(ctx context.Context, u PayslipUpload) (Record, error) {
	if err := u.Validate(); err != nil {
		return Record{}, err
	}
	p := u.Period.Normalize()
	var out Record
	err := c.api.Upload(ctx, "/payroll/upload", apiclient.Upload{
		Field:    "file",
		Filename: u.Filename,
		Content:  u.Content,
		Fields: map[string]string{
			"employeeId": u.EmployeeID,
			"month":      p.Month,
			"year":       p.Year,
		},
	}, &out)
	return out, err
}

func (c *Client) Download(ctx context.Context, id string) (apiclient.File, error) {
	return c.api.Download(ctx, "/payroll/"+url.PathEscape(id)+"/download")
}

func (c *Client) Email(ctx context.Context, id string) (EmailResult, error) {
	var out EmailResult
	err := c.api.Post(ctx, "/payroll/"+url.PathEscape(id)+"/email", struct{}{}, &out)
	return out, err
}
