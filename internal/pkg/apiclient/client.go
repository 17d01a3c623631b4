// Package apiclient talks to the scheduling REST API on behalf of a browser session.
package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// CSRF cookie and header names used by the scheduling API
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// Config holds the client settings
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded apart from the caller's context
	Timeout   time.Duration
	UserAgent string
	Debug     bool
}

// Response wraps the decoded body of a successful call
type Response[T any] struct {
	Data   T
	Status int
}

// Client is the shared REST client. It keeps no cookies of its own: each
// browser session talks through a Conn that carries that session's cookies.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a new API client
func New(cfg Config, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetCookieJar(nil).
		SetDebug(cfg.Debug)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{http: rc, logger: logger.With().Str("component", "apiclient").Logger()}
}

// Cookies are the upstream cookies of one browser session, by name
type Cookies map[string]string

// Clone returns a copy of the cookies
func (c Cookies) Clone() Cookies {
	out := make(Cookies, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Conn issues calls for one browser session and tracks the cookies the API sets
type Conn struct {
	client  *Client
	mu      sync.Mutex
	cookies Cookies
}

// Session opens a Conn seeded with previously stored cookies
func (c *Client) Session(cookies Cookies) *Conn {
	if cookies == nil {
		cookies = Cookies{}
	}
	return &Conn{client: c, cookies: cookies.Clone()}
}

// Cookies returns the current upstream cookies
func (s *Conn) Cookies() Cookies {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies.Clone()
}

func (s *Conn) request(ctx context.Context, method string) *resty.Request {
	r := s.client.http.R().SetContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, value := range s.cookies {
		r.SetCookie(&http.Cookie{Name: name, Value: value})
	}
	if !isSafeMethod(method) {
		if token, ok := s.cookies[CSRFCookieName]; ok {
			r.SetHeader(CSRFHeaderName, token)
		}
	}
	return r
}

func (s *Conn) absorb(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ck := range cookies {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(s.cookies, ck.Name)
			continue
		}
		s.cookies[ck.Name] = ck.Value
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// call performs one request and decodes a 2xx body into T. Empty bodies leave T zero.
func call[T any](ctx context.Context, s *Conn, method, path string, query map[string]string, body interface{}) (*Response[T], error) {
	r := s.request(ctx, method)
	if len(query) > 0 {
		r.SetQueryParams(query)
	}
	if body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return send[T](s, r, method, path)
}

// upload posts one file as multipart/form-data under field
func upload[T any](ctx context.Context, s *Conn, path, field string, file File) (*Response[T], error) {
	r := s.request(ctx, http.MethodPost).
		SetMultipartField(field, file.Name, file.ContentType, file.Reader)
	return send[T](s, r, http.MethodPost, path)
}

// File is an upload forwarded from the browser
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func send[T any](s *Conn, r *resty.Request, method, path string) (*Response[T], error) {
	start := time.Now()
	resp, err := r.Execute(method, path)
	if err != nil {
		s.client.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("API request failed")
		return nil, newTransportError(err)
	}
	s.absorb(resp.Cookies())

	s.client.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("API request")

	if resp.IsError() || resp.StatusCode() >= 300 {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}

	out := &Response[T]{Status: resp.StatusCode()}
	if raw := resp.Body(); len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &out.Data); err != nil {
			return nil, newDecodeError(resp.StatusCode(), raw, err)
		}
	}
	return out, nil
}
