// Package client is the Go client for the listings API. It wraps the REST
// endpoints, injects bearer credentials and refreshes the access token
// transparently when the server reports expiry. Concurrent requests hitting
// an expired token share one refresh call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/models"
	"golang.org/x/sync/singleflight"
)

// APIError is an error response from the service.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s [%s]", e.StatusCode, e.Message, e.Code)
}

// Client talks to a listings service instance.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu      sync.RWMutex
	access  string
	refresh string

	refreshGroup singleflight.Group
}

// New builds a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens installs a credential pair, e.g. restored from storage.
func (c *Client) SetTokens(t auth.Tokens) {
	c.mu.Lock()
	c.access = t.AccessToken
	c.refresh = t.RefreshToken
	c.mu.Unlock()
}

// Tokens returns the current credential pair.
func (c *Client) Tokens() auth.Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return auth.Tokens{AccessToken: c.access, RefreshToken: c.refresh}
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

// do performs one request, decoding into out when non-nil. On TOKEN_EXPIRED
// it refreshes once (single-flight across goroutines) and replays the
// request with the new access token.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	err := c.doOnce(ctx, method, path, query, body, out)
	var apiErr *APIError
	if err == nil || !errorAs(err, &apiErr) || apiErr.Code != "TOKEN_EXPIRED" {
		return err
	}

	if _, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refreshTokens(ctx)
	}); err != nil {
		return err
	}
	return c.doOnce(ctx, method, path, query, body, out)
}

func errorAs(err error, target **APIError) bool {
	e, ok := err.(*APIError)
	if ok {
		*target = e
	}
	return ok
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// refreshTokens trades the refresh token for a new access token.
func (c *Client) refreshTokens(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refresh
	c.mu.RUnlock()
	if refresh == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "no refresh token", Code: "INVALID_REFRESH_TOKEN"}
	}

	var res struct {
		Tokens auth.Tokens `json:"tokens"`
	}
	if err := c.doOnce(ctx, http.MethodPost, "/api/users/refresh-token", nil,
		map[string]string{"refreshToken": refresh}, &res); err != nil {
		// Stale credentials are useless; drop them so callers re-login.
		c.mu.Lock()
		c.access, c.refresh = "", ""
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.access = res.Tokens.AccessToken
	c.refresh = res.Tokens.RefreshToken
	c.mu.Unlock()
	return nil
}

// SearchPage is one page of property or rental search results.
type SearchPage struct {
	Properties  []models.Listing       `json:"properties"`
	TotalPages  int                    `json:"totalPages"`
	CurrentPage int                    `json:"currentPage"`
	Total       int                    `json:"total"`
	Filters     listing.Facets         `json:"filters"`
	Sources     []string               `json:"sources,omitempty"`
	MarketData  map[string]interface{} `json:"marketData,omitempty"`
}

// PropertyDetail is one listing plus its similar-listing set.
type PropertyDetail struct {
	Property          models.Listing   `json:"property"`
	SimilarProperties []models.Listing `json:"similarProperties"`
}

// AuthResponse is the register/login response body.
type AuthResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Tokens  auth.Tokens `json:"tokens"`
}

// SearchProperties runs a property search with the given query values.
func (c *Client) SearchProperties(ctx context.Context, query url.Values) (*SearchPage, error) {
	var page SearchPage
	if err := c.do(ctx, http.MethodGet, "/api/properties", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchRentals runs a rental search with the given query values.
func (c *Client) SearchRentals(ctx context.Context, query url.Values) (*SearchPage, error) {
	var page SearchPage
	if err := c.do(ctx, http.MethodGet, "/api/rentals", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Property fetches one listing with its similar set.
func (c *Client) Property(ctx context.Context, id string) (*PropertyDetail, error) {
	var detail PropertyDetail
	if err := c.do(ctx, http.MethodGet, "/api/properties/"+url.PathEscape(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Suggestions fetches typed suggestions for a partial query.
func (c *Client) Suggestions(ctx context.Context, q string, limit int) ([]listing.Suggestion, error) {
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var res struct {
		Suggestions []listing.Suggestion `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/properties/suggestions", query, nil, &res); err != nil {
		return nil, err
	}
	return res.Suggestions, nil
}

// Favorite adds or removes a favorite on a listing.
func (c *Client) Favorite(ctx context.Context, id, action string) error {
	return c.do(ctx, http.MethodPost, "/api/properties/"+url.PathEscape(id)+"/favorite", nil,
		map[string]string{"action": action}, nil)
}

// Register creates an account and installs its tokens on the client.
func (c *Client) Register(ctx context.Context, in auth.RegisterInput) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/register", nil, in, &res); err != nil {
		return nil, err
	}
	c.SetTokens(res.Tokens)
	return &res, nil
}

// Login authenticates and installs the returned tokens on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", nil,
		map[string]string{"email": email, "password": password}, &res); err != nil {
		return nil, err
	}
	c.SetTokens(res.Tokens)
	return &res, nil
}

// Me fetches the current account.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout revokes the current refresh token and clears local credentials.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refresh
	c.mu.RUnlock()

	err := c.do(ctx, http.MethodPost, "/api/users/logout", nil,
		map[string]string{"refreshToken": refresh}, nil)

	c.mu.Lock()
	c.access, c.refresh = "", ""
	c.mu.Unlock()
	return err
}
