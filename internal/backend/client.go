// Package backend implements a client for the Alignak Backend REST API, an
// Eve-style HTTP/JSON service. It covers token authentication and paginated
// resource search, which is all the counter extraction needs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/version"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 50

	// Hard cap on pages per search so a misbehaving backend that keeps
	// announcing a next page cannot spin the client forever.
	maxPages = 10000
)

var userAgent = "alignak-counters/" + version.String()

// Config holds the connection parameters of a backend instance.
type Config struct {
	URL      string        `yaml:"url"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	PageSize int           `yaml:"page_size,omitempty"`
}

// Validate applies defaults and checks the connection parameters.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("backend url not set")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.URL, err)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	return nil
}

// Client talks to one Alignak Backend. It is not safe for concurrent use
// before Login has returned.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	token      string
}

// New creates a backend client from the given configuration.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Token returns the session token obtained by Login.
func (c *Client) Token() string { return c.token }

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates against the backend and stores the session token used
// by subsequent requests.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
		"action":   "generate",
	})
	if err != nil {
		return fmt.Errorf("encode login payload: %w", err)
	}

	endpoint, err := url.JoinPath(c.cfg.URL, "login")
	if err != nil {
		return fmt.Errorf("join login url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("authenticating", "url", c.cfg.URL, "username", c.cfg.Username)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "login to " + c.cfg.URL, Err: err}
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{URL: c.cfg.URL}
	case resp.StatusCode != http.StatusOK:
		return &TransportError{
			Op:  "login to " + c.cfg.URL,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return &TransportError{Op: "decode login response", Err: err}
	}
	if lr.Token == "" {
		return &AuthError{URL: c.cfg.URL}
	}

	c.token = lr.Token
	c.logger.Debug("authenticated", "url", c.cfg.URL)
	return nil
}

// Page is one page of an Eve resource listing.
type Page struct {
	Items []json.RawMessage `json:"_items"`
	Meta  Meta              `json:"_meta"`
	Links Links             `json:"_links"`
}

// Meta carries Eve pagination metadata.
type Meta struct {
	Page       int `json:"page"`
	MaxResults int `json:"max_results"`
	Total      int `json:"total"`
}

// Links carries the pagination links of a page.
type Links struct {
	Next *Link `json:"next"`
}

// Link is a single HATEOAS link.
type Link struct {
	Href string `json:"href"`
}

// Get fetches a single page of the given resource endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	u, err := url.JoinPath(c.cfg.URL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("join url for %q: %w", endpoint, err)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	// Eve session auth: the token goes in as the basic auth username.
	req.SetBasicAuth(c.token, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "get " + endpoint, Err: err}
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{URL: c.cfg.URL}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &QueryError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{
			Op:  "get " + endpoint,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &TransportError{Op: "decode " + endpoint + " response", Err: err}
	}
	return &page, nil
}

// GetAll fetches every page of the given resource endpoint and returns the
// concatenated items. Pagination is followed until the backend stops
// announcing a next page.
func (c *Client) GetAll(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	merged := url.Values{}
	for k, v := range params {
		merged[k] = v
	}
	merged.Set("max_results", strconv.Itoa(c.cfg.PageSize))

	var items []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		merged.Set("page", strconv.Itoa(page))

		p, err := c.Get(ctx, endpoint, merged)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Items...)

		c.logger.Debug("fetched page",
			"endpoint", endpoint,
			"page", page,
			"items", len(p.Items),
			"total", p.Meta.Total)

		if p.Links.Next == nil || len(p.Items) == 0 {
			break
		}
	}
	return items, nil
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	_ = resp.Body.Close()
}
