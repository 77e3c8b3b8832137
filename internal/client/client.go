// Package client is the typed REST client of the eCoA API. Reads that cannot
// reach the server fall back to a static dataset and say so in their Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

// Source tells where the value of a Result came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
	SourceFailed   Source = "failed"
)

// Result is the outcome of a client call. Err is kept when fallback data
// was substituted.
type Result[T any] struct {
	Value  T
	Source Source
	Err    error
}

// OK reports whether Value holds live data.
func (r Result[T]) OK() bool { return r.Source == SourceLive }

// Stale reports whether Value is fallback data.
func (r Result[T]) Stale() bool { return r.Source == SourceFallback }

func live[T any](v T) Result[T] { return Result[T]{Value: v, Source: SourceLive} }

func failed[T any](err error) Result[T] { return Result[T]{Source: SourceFailed, Err: err} }

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status=%d %s", e.StatusCode, e.Message)
}

// Client is a minimal eCoA HTTP API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// Fallback is served by reads that fail with a transport error or a 5xx.
	// Nil disables fallback.
	Fallback *mockdata.Dataset
}

// DefaultTimeout bounds each request made by a client from New.
const DefaultTimeout = 10 * time.Second

// New creates a client with sane defaults and the built-in fallback dataset.
func New(baseURL string) *Client {
	ds := mockdata.Fallback()
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Fallback:   &ds,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) Templates() *TemplatesClient { return &TemplatesClient{c: c} }

func (c *Client) Responsibilities() *ResponsibilitiesClient {
	return &ResponsibilitiesClient{c: c}
}

func (c *Client) Requests() *RequestsClient { return &RequestsClient{c: c} }

func (c *Client) Users() *UsersClient { return &UsersClient{c: c} }

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Login exchanges an email for a session token and keeps the token on c.
func (c *Client) Login(ctx context.Context, email string) (model.User, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "api/auth/login", nil, map[string]string{"email": email}, &resp); err != nil {
		return model.User{}, err
	}
	c.Token = resp.Token
	return resp.User, nil
}

// shouldFallback reports whether err means the server could not answer,
// as opposed to answering with a client error.
func shouldFallback(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// read runs fetch and substitutes fallback data when the server could not answer.
func read[T any](ctx context.Context, c *Client, what string, fetch func() (T, error), fallback func(*mockdata.Dataset) (T, bool)) Result[T] {
	v, err := fetch()
	if err == nil {
		return live(v)
	}
	if c.Fallback == nil || !shouldFallback(err) {
		return failed[T](err)
	}
	fb, ok := fallback(c.Fallback)
	if !ok {
		return failed[T](err)
	}
	slog.WarnContext(ctx, "serving fallback data", "resource", what, "error", err)
	return Result[T]{Value: fb, Source: SourceFallback, Err: err}
}

// write runs a mutation. Writes never fall back.
func write[T any](fetch func() (T, error)) Result[T] {
	v, err := fetch()
	if err != nil {
		return failed[T](err)
	}
	return live(v)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	u := c.url(endpoint, query)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) url(endpoint string, query url.Values) string {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// decodeError reads both the bare {error,message} body and the
// {success:false,message} envelope.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code, apiErr.Message = body.Error, body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func pageValues(q url.Values, page, pageSize *int) {
	if page != nil {
		q.Set("page", fmt.Sprint(*page))
	}
	if pageSize != nil {
		q.Set("page_size", fmt.Sprint(*pageSize))
	}
}

func setIf(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
