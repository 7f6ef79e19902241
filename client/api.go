// Package client talks to the contacts API and keeps an incrementally loaded contact list.
package client

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
	"sync"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/tidwall/gjson"
)

// PageFetcher loads one page of contacts for a filter
type PageFetcher interface {
	FetchPage(ctx context.Context, filter Filter, page, limit int) (*models.ContactPage, error)
}

// ResponseError is a non-2xx reply from the API. It unwraps to the matching models sentinel.
type ResponseError struct {
	StatusCode int
	Type       string
	Message    string
	Details    string
	Field      string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("api returned %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return models.ErrValidation
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	}
	return nil
}

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger

	mu      sync.RWMutex
	session *Session
}

type Option func(*APIClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) { c.httpClient = hc }
}

func WithLogger(log logger.Logger) Option {
	return func(c *APIClient) { c.logger = log }
}

// NewAPIClient creates a client for the API mounted at baseURL, e.g. http://localhost:3000/api.
// session may be nil until Login is called.
func NewAPIClient(baseURL string, session *Session, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		session:    session,
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with
func (c *APIClient) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *APIClient) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *APIClient) accessToken() string {
	if s := c.Session(); s != nil {
		return s.AccessToken
	}
	return ""
}

// Login exchanges credentials for a token and adopts the resulting session
func (c *APIClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	session := &Session{
		BaseURL:     c.baseURL,
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		User:        resp.User,
	}
	c.setSession(session)
	return session, nil
}

func (c *APIClient) Register(ctx context.Context, req *models.RegisterUser) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the token server side and drops the session
func (c *APIClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.setSession(nil)
	return err
}

func (c *APIClient) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ValidateSession asks the API whether the held token is still accepted.
// A rejected or missing token reports false without an error.
func (c *APIClient) ValidateSession(ctx context.Context) (bool, error) {
	token := c.accessToken()
	if token == "" {
		return false, nil
	}
	var result struct {
		Valid bool `json:"valid"`
	}
	body := map[string]string{"token": token}
	err := c.do(ctx, http.MethodPost, "/auth/validate", nil, body, &result)
	if errors.Is(err, models.ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}

// FetchPage implements PageFetcher over GET /contacts
func (c *APIClient) FetchPage(ctx context.Context, filter Filter, page, limit int) (*models.ContactPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if len(filter.Tags) > 0 {
		q.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.Organization != "" {
		q.Set("organization", filter.Organization)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}

	var result models.ContactPage
	if err := c.do(ctx, http.MethodGet, "/contacts", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodGet, "/contacts/"+url.PathEscape(id), nil, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *APIClient) CreateContact(ctx context.Context, in *models.ContactInput) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", nil, in, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *APIClient) UpdateContact(ctx context.Context, id string, patch *models.ContactPatch) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPatch, "/contacts/"+url.PathEscape(id), nil, patch, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *APIClient) DeleteContact(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *APIClient) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	err := c.do(ctx, http.MethodGet, "/contacts/tags", nil, nil, &tags)
	return tags, err
}

func (c *APIClient) Organizations(ctx context.Context) ([]string, error) {
	var orgs []string
	err := c.do(ctx, http.MethodGet, "/contacts/organizations", nil, nil, &orgs)
	return orgs, err
}

func (c *APIClient) Export(ctx context.Context) ([]*models.Contact, error) {
	var contacts []*models.Contact
	err := c.do(ctx, http.MethodGet, "/contacts/export", nil, nil, &contacts)
	return contacts, err
}

// do sends one request and decodes the data member of the reply envelope into out
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("%s failed: %v", op, err)
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	data := gjson.GetBytes(raw, "data")
	if !data.Exists() {
		return fmt.Errorf("%s: response has no data", op)
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func responseError(status int, raw []byte) error {
	e := &ResponseError{StatusCode: status}
	if gjson.ValidBytes(raw) {
		env := gjson.ParseBytes(raw)
		e.Message = env.Get("message").String()
		e.Type = env.Get("error.type").String()
		e.Details = env.Get("error.details").String()
		e.Field = env.Get("error.field").String()
	} else {
		e.Details = strings.TrimSpace(string(raw))
	}
	return e
}
