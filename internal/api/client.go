// Package api talks to the story-sharing REST service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"snooze/internal/domain/errs"
	"snooze/internal/domain/story"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public hack-or-snooze API.
const DefaultBaseURL = "https://hack-or-snooze-v3.herokuapp.com"

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
	UserAgent string
	Breaker   BreakerConfig
}

// Client is the single boundary to the remote API. It never retries.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	reads   *gobreaker.CircuitBreaker
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = DefaultBreakerConfig()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		http:    httpClient,
		limiter: limiter,
		reads:   newBreaker("api-reads", cfg.Breaker),
	}
}

// ListStories fetches every story, in server order. No token is needed.
func (c *Client) ListStories(ctx context.Context) ([]story.Story, error) {
	var out storiesResponse
	err := throughBreaker(c.reads, "list stories", func() error {
		return c.send(ctx, "list stories", c.http.R(), http.MethodGet, "/stories", &out)
	})
	if err != nil {
		return nil, err
	}
	return out.Stories, nil
}

// CreateStory posts draft on behalf of the holder of token.
func (c *Client) CreateStory(ctx context.Context, token string, draft story.Draft) (story.Story, error) {
	var out storyResponse
	req := c.http.R().SetBody(createStoryRequest{Token: token, Story: draft})
	if err := c.send(ctx, "create story", req, http.MethodPost, "/stories", &out); err != nil {
		return story.Story{}, err
	}
	return out.Story, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, password, name string) (AuthResult, error) {
	var out AuthResult
	req := c.http.R().SetBody(authRequest{User: credentialsBody{Username: username, Password: password, Name: name}})
	if err := c.send(ctx, "signup", req, http.MethodPost, "/signup", &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// Login exchanges a username and password for a token.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	var out AuthResult
	req := c.http.R().SetBody(authRequest{User: credentialsBody{Username: username, Password: password}})
	if err := c.send(ctx, "login", req, http.MethodPost, "/login", &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// GetUser fetches the profile of username, including favorites and own stories.
func (c *Client) GetUser(ctx context.Context, token, username string) (UserRecord, error) {
	var out userResponse
	err := throughBreaker(c.reads, "get user", func() error {
		req := c.http.R().
			SetPathParam("username", username).
			SetQueryParam("token", token)
		return c.send(ctx, "get user", req, http.MethodGet, "/users/{username}", &out)
	})
	if err != nil {
		return UserRecord{}, err
	}
	return out.User, nil
}

// AddFavorite marks storyID as a favorite of username and returns the updated user.
func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) (UserRecord, error) {
	return c.favorite(ctx, "add favorite", http.MethodPost, token, username, storyID)
}

// RemoveFavorite is the counterpart of AddFavorite.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) (UserRecord, error) {
	return c.favorite(ctx, "remove favorite", http.MethodDelete, token, username, storyID)
}

func (c *Client) favorite(ctx context.Context, op, method, token, username, storyID string) (UserRecord, error) {
	var out userResponse
	req := c.http.R().
		SetPathParams(map[string]string{"username": username, "storyId": storyID}).
		SetBody(tokenRequest{Token: token})
	if err := c.send(ctx, op, req, method, "/users/{username}/favorites/{storyId}", &out); err != nil {
		return UserRecord{}, err
	}
	return out.User, nil
}

// send executes req and decodes a 2xx body into out. Everything that goes
// wrong is reported as one of the errs kinds.
func (c *Client) send(ctx context.Context, op string, req *resty.Request, method, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &errs.APIError{Op: op, Kind: errs.ErrNetwork, Message: err.Error()}
	}

	requestID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"op":         op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := req.
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		Execute(method, path)
	if err != nil {
		log.WithError(err).Info("API request failed")
		return &errs.APIError{Op: op, Kind: errs.ErrNetwork, Message: err.Error()}
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode(),
		"duration": time.Since(start),
	})

	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		apiErr := &errs.APIError{
			Op:      op,
			Status:  resp.StatusCode(),
			Kind:    kindForStatus(resp.StatusCode()),
			Message: errorMessage(resp.Body()),
		}
		log.WithError(apiErr).Debug("API returned an error")
		return apiErr
	}

	log.Debug("API request done")

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &errs.APIError{
			Op:      op,
			Status:  resp.StatusCode(),
			Kind:    errs.ErrValidation,
			Message: fmt.Sprintf("decode response: %v", err),
		}
	}
	if err := story.ValidateStruct(out); err != nil {
		return fmt.Errorf("%s: malformed response: %w", op, err)
	}
	return nil
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return errs.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrAuth
	case http.StatusNotFound:
		return errs.ErrNotFound
	default:
		return errs.ErrAPI
	}
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
