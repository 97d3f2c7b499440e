// Package client talks to the survey backend on behalf of a logged in user.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

const DefaultBaseURL = "http://localhost:8080"

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if session == nil {
		session = NewSession(nil)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// URL resolves path against the base URL. Absolute http(s) URLs are kept.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do sends a request to the backend. The body is JSON unless header sets
// another Content-Type, and the session token, when present, is sent as a
// bearer token.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debugf("%s %s", method, req.URL)
	return c.http.Do(req)
}

// doJSON encodes in as the request body and, on a 2xx answer, decodes the
// response into out. Any other answer is returned with its body read.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	return c.exchange(ctx, method, path, body, nil, out)
}

func (c *Client) exchange(ctx context.Context, method, path string, body io.Reader, header http.Header, out any) (int, []byte, error) {
	res, err := c.Do(ctx, method, path, body, header)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	if !ok(res.StatusCode) {
		return res.StatusCode, data, nil
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return res.StatusCode, data, err
		}
	}
	return res.StatusCode, data, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func (c *Client) Login(ctx context.Context, cred model.Credentials) (string, error) {
	return c.authenticate(ctx, "/api/auth/login", cred, msgLoginFailed)
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (string, error) {
	return c.authenticate(ctx, "/api/auth/register", reg, msgRegisterFailed)
}

func (c *Client) authenticate(ctx context.Context, path string, in any, fallback string) (string, error) {
	var res model.AuthResponse
	status, body, err := c.doJSON(ctx, http.MethodPost, path, in, &res)
	if err != nil {
		return "", &AuthError{Status: status, Message: fallback, Err: err}
	}
	if !ok(status) {
		return "", &AuthError{Status: status, Message: authMessage(body, fallback)}
	}
	if res.Token == "" {
		return "", &AuthError{Status: status, Message: fallback}
	}
	if err := c.session.Set(res.Token); err != nil {
		return "", err
	}
	return res.Token, nil
}

// authMessage only reads the message field: the auth endpoints answer with
// {"message": ...} on failure.
func authMessage(body []byte, fallback string) string {
	var e model.ErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return fallback
	}
	return e.Message
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Token() (string, bool) {
	return c.session.Token()
}

func (c *Client) IsAuthenticated() bool {
	return c.session.Valid()
}
