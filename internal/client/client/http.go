package client

import (
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

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://rickandmortyapi.com/api"
	defaultTimeout = 15 * time.Second

	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 4 << 20
)

// HTTPClient implements Client against the public REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
	byID    singleflight.Group
}

// NewHTTPClient validates baseURL and returns a client whose requests time
// out after timeout (a default is used when timeout <= 0).
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}

	return &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
		log: log.With("component", "api"),
	}, nil
}

// BuildQuery translates filters into query parameters, omitting absent ones.
func BuildQuery(filters *models.Filters) url.Values {
	q := url.Values{}
	if filters == nil {
		return q
	}
	if filters.Name != "" {
		q.Set("name", filters.Name)
	}
	if filters.Status != "" {
		q.Set("status", string(filters.Status))
	}
	if filters.Species != "" {
		q.Set("species", filters.Species)
	}
	if filters.Gender != "" {
		q.Set("gender", string(filters.Gender))
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	return q
}

func (c *HTTPClient) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *HTTPClient) List(ctx context.Context, filters *models.Filters) (*models.Page, error) {
	var page models.Page
	if err := c.get(ctx, c.endpoint(BuildQuery(filters), "character"), &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []models.Character{}
	}
	return &page, nil
}

// GetByID coalesces concurrent lookups of the same id into one request.
// The shared request is detached from any single caller's cancellation
// (the client timeout still bounds it); each caller stops waiting when its
// own ctx is done.
func (c *HTTPClient) GetByID(ctx context.Context, id int) (*models.Character, error) {
	key := strconv.Itoa(id)
	shared := context.WithoutCancel(ctx)
	done := c.byID.DoChan(key, func() (any, error) {
		var char models.Character
		if err := c.get(shared, c.endpoint(nil, "character", key), &char); err != nil {
			return nil, err
		}
		return char, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.Err != nil {
			return nil, res.Err
		}
		char := res.Val.(models.Character)
		return &char, nil
	}
}

func (c *HTTPClient) get(ctx context.Context, target string, out any) error {
	reqID := uuid.NewString()
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn(ctx, "request failed", "request_id", reqID, "url", target, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "request_id", reqID, "url", target,
		"status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadResponse)
		}
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
