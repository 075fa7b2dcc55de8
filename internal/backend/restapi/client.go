// Package restapi implements the service.API interface over the task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskdash/internal/service"
)

// DefaultTimeout is the timeout for API calls when none is configured.
const DefaultTimeout = 10 * time.Second

// StatusError is a non-2xx response. Status is the server's reason phrase;
// the body is not parsed for detail.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client implements service.API.
type Client struct {
	baseURL string
	timeout time.Duration

	// plain is used for the account endpoints, authed for everything else.
	plain  *http.Client
	authed *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the base HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.plain = hc }
}

// New creates a client for the API rooted at baseURL. Authenticated calls
// take their bearer token from ts, which is consulted on every request.
// A nil ts yields a client that can only log in and register.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		plain:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c.Authorized(ts), nil
}

// Authorized returns a copy of c whose task and user calls carry the bearer
// token from ts.
func (c *Client) Authorized(ts oauth2.TokenSource) *Client {
	cp := *c
	cp.authed = nil
	if ts != nil {
		// The source is consulted per request rather than through
		// oauth2.ReuseTokenSource, so a logout takes effect immediately.
		cp.authed = &http.Client{
			Transport: &oauth2.Transport{Base: c.plain.Transport, Source: ts},
			Timeout:   c.plain.Timeout,
		}
	}
	return &cp
}

type loginResponse struct {
	AccessToken string           `json:"accessToken"`
	IDToken     string           `json:"idToken"`
	User        service.Identity `json:"user"`
}

// Login implements service.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, c.plain, http.MethodPost, "/users/login", body, &resp); err != nil {
		return service.LoginResult{}, err
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.IDToken
	}
	if token == "" {
		return service.LoginResult{}, fmt.Errorf("login response has no access token")
	}
	return service.LoginResult{AccessToken: token, User: resp.User}, nil
}

// Register implements service.Authenticator.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	return c.do(ctx, c.plain, http.MethodPost, "/users/register", reg, nil)
}

type tasksResponse struct {
	Tasks []service.Task `json:"tasks"`
}

type taskResponse struct {
	Task service.Task `json:"task"`
}

type usersResponse struct {
	Users []service.User `json:"users"`
}

// ListTasks implements service.TaskAPI.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var resp tasksResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ListUserTasks implements service.TaskAPI.
func (c *Client) ListUserTasks(ctx context.Context, userID string) ([]service.Task, error) {
	var resp tasksResponse
	path := "/tasks/user/" + url.PathEscape(userID)
	if err := c.do(ctx, c.authed, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask implements service.TaskAPI.
func (c *Client) CreateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, c.authed, http.MethodPost, "/tasks", draft, &resp); err != nil {
		return service.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask implements service.TaskAPI.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, c.authed, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &resp); err != nil {
		return service.Task{}, err
	}
	return resp.Task, nil
}

// DeleteTask implements service.TaskAPI.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// ListUsers implements service.Directory.
func (c *Client) ListUsers(ctx context.Context) ([]service.User, error) {
	var resp usersResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ErrNoCredential is returned by authenticated calls on a client built
// without a token source.
var ErrNoCredential = errors.New("no credential configured")

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	if hc == nil {
		return ErrNoCredential
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return statusError(res, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}
	return nil
}

// statusError keeps the server's reason phrase for a non-2xx response,
// falling back to the standard text for the code.
func statusError(res *http.Response, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return wrapError(err)
	}
	reason := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if reason == "" {
		reason = http.StatusText(gerr.Code)
	}
	return &StatusError{Code: gerr.Code, Status: reason}
}

// wrapError maps transport and HTTP errors to their user-facing form.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &StatusError{Code: gerr.Code, Status: http.StatusText(gerr.Code)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		// Drop the method and URL; keep the cause (token source errors included).
		return uerr.Err
	}
	return err
}
