package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/httpclient"
	"github.com/flexprice/marketplace/internal/logger"
	supabasego "github.com/nedpals/supabase-go"
)

const (
	restPath       = "/rest/v1"
	rpcPath        = "/rest/v1/rpc"
	adminUsersPath = "/auth/v1/admin/users"

	// Prefer header values understood by PostgREST
	PreferReturnRepresentation = "return=representation"
	PreferReturnMinimal        = "return=minimal"
)

// Client talks to the data service. Plain table reads go through supabase-go; RPCs, auth admin
// calls and writes that depend on PostgREST status codes or Prefer headers go through httpclient.
type Client struct {
	*supabasego.Client

	http       httpclient.Client
	baseURL    string
	serviceKey string
	logger     *logger.Logger
}

// NewClient creates a data-service client acting with the service role
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, log *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(cfg.Supabase.BaseURL, "/")

	sb := supabasego.CreateClient(baseURL, cfg.Supabase.ServiceKey)
	if sb == nil {
		return nil, ierr.NewError("failed to create supabase client").
			WithHint("Data service is not configured").
			Mark(ierr.ErrSystem)
	}

	return &Client{
		Client:     sb,
		http:       httpClient,
		baseURL:    baseURL,
		serviceKey: cfg.Supabase.ServiceKey,
		logger:     log,
	}, nil
}

// RESTRequest describes a PostgREST table request
type RESTRequest struct {
	Method string
	Table  string
	Query  url.Values
	Body   interface{}
	Prefer string
}

// REST sends a table request and decodes the response body into out when out is non-nil
func (c *Client) REST(ctx context.Context, req *RESTRequest, out interface{}) error {
	return c.send(ctx, req.Method, fmt.Sprintf("%s%s/%s", c.baseURL, restPath, req.Table), req.Query, req.Body, req.Prefer, out)
}

// RPC calls a stored procedure with named parameters
func (c *Client) RPC(ctx context.Context, fn string, params interface{}, out interface{}) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("%s%s/%s", c.baseURL, rpcPath, fn), nil, params, "", out)
}

// AdminUser calls the auth admin endpoint for a single user
func (c *Client) AdminUser(ctx context.Context, method, userID string, body interface{}, out interface{}) error {
	return c.send(ctx, method, fmt.Sprintf("%s%s/%s", c.baseURL, adminUsersPath, url.PathEscape(userID)), nil, body, "", out)
}

func (c *Client) send(ctx context.Context, method, target string, query url.Values, body interface{}, prefer string, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode data service request").
				Mark(ierr.ErrSystem)
		}
	}

	headers := map[string]string{
		"apikey":        c.serviceKey,
		"Authorization": "Bearer " + c.serviceKey,
		"Accept":        "application/json",
	}
	if prefer != "" {
		headers["Prefer"] = prefer
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     target,
		Query:   query,
		Headers: headers,
		Body:    payload,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			c.logger.Debugw("data service request failed",
				"method", method,
				"url", target,
				"status", httpErr.StatusCode,
				"response", string(httpErr.Response))
		}
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return ierr.WithError(err).
			WithHint("Unexpected data service response").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
