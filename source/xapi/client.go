// Package xapi fetches a user's profile and posts from the analytics proxy
// service. Callers pass an explicit Session on every call; the client keeps
// no token state of its own.
package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"social-analytics/models"
	"social-analytics/utils"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second

	// MaxPosts caps how many posts one FetchPosts call collects.
	MaxPosts = 500
	// PageSize is requested per page.
	PageSize = 100
	// MinRateLimitRemaining stops pagination once the proxy reports fewer
	// remaining requests than this.
	MinRateLimitRemaining = 10
)

var (
	// ErrUnauthorized is returned when the session token is missing or rejected.
	ErrUnauthorized = errors.New("xapi: unauthorized")
	// ErrBadResponse is returned when a 2xx body is not the expected JSON.
	ErrBadResponse = errors.New("xapi: malformed response")
)

// Session carries the caller's access token.
type Session struct {
	AccessToken string
}

// StatusError is a non-2xx response from the proxy.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("xapi: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed on retry.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to the proxy endpoints /api/x/me and /api/x/tweets.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *utils.RetryConfig
	logger     *utils.Logger
	now        func() time.Time
}

// NewHTTPClient creates an HTTP client with bounded timeouts.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// NewClient creates a Client. A nil httpClient uses NewHTTPClient.
func NewClient(baseURL string, httpClient *http.Client, maxRetries int, logger *utils.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
			ShouldRetry: isTransient,
		},
		logger: logger,
		now:    time.Now,
	}
}

type profileResponse struct {
	Data struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		Name          string `json:"name"`
		PublicMetrics struct {
			FollowersCount int64 `json:"followers_count"`
			FollowingCount int64 `json:"following_count"`
			TweetCount     int64 `json:"tweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

type postsResponse struct {
	Data []models.APIPost `json:"data"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
	RateLimit struct {
		Remaining string `json:"remaining"`
		Reset     string `json:"reset"`
	} `json:"_rateLimit"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// FetchProfile returns the authenticated user's profile.
func (c *Client) FetchProfile(ctx context.Context, s Session) (*models.APIProfile, error) {
	var resp profileResponse
	if err := c.get(ctx, s, "/api/x/me", nil, &resp); err != nil {
		return nil, err
	}

	d := resp.Data
	return &models.APIProfile{
		ID:        d.ID,
		Username:  d.Username,
		Name:      d.Name,
		Followers: d.PublicMetrics.FollowersCount,
		Following: d.PublicMetrics.FollowingCount,
		Posts:     d.PublicMetrics.TweetCount,
	}, nil
}

// FetchPosts pages through the user's posts from the last days days. It
// stops at MaxPosts, at the last page, or when the rate limit runs low.
func (c *Client) FetchPosts(ctx context.Context, s Session, userID string, days int) ([]models.APIPost, error) {
	if userID == "" {
		return nil, fmt.Errorf("xapi: user id is required")
	}
	if days <= 0 {
		days = 30
	}

	end := c.now().UTC()
	start := end.AddDate(0, 0, -days)

	seen := utils.NewIDSet()
	var posts []models.APIPost
	token := ""
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("user_id", userID)
		q.Set("max_results", strconv.Itoa(PageSize))
		q.Set("start_time", start.Format(time.RFC3339))
		q.Set("end_time", end.Format(time.RFC3339))
		if token != "" {
			q.Set("pagination_token", token)
		}

		var resp postsResponse
		if err := c.get(ctx, s, "/api/x/tweets", q, &resp); err != nil {
			return posts, err
		}

		for _, p := range resp.Data {
			if seen.Add(p.ID) {
				posts = append(posts, p)
			}
		}
		c.logger.Debug("[xapi] Page %d: %d posts (%d total)", page, len(resp.Data), len(posts))

		token = resp.Meta.NextToken
		if remaining, err := strconv.Atoi(resp.RateLimit.Remaining); err == nil && remaining < MinRateLimitRemaining {
			c.logger.Warn("[xapi] Approaching rate limit (%d remaining), stopping pagination", remaining)
			break
		}
		if token == "" || len(posts) >= MaxPosts {
			break
		}
	}

	if len(posts) > MaxPosts {
		posts = posts[:MaxPosts]
	}
	c.logger.Info("[xapi] Fetched %d posts for user %s over %d days", len(posts), userID, days)
	return posts, nil
}

func (c *Client) get(ctx context.Context, s Session, path string, q url.Values, out any) error {
	if s.AccessToken == "" {
		return ErrUnauthorized
	}

	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	return c.retry.Do(ctx, "GET "+path, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var e errorResponse
			_ = json.Unmarshal(body, &e)
			msg := e.Details
			if msg == "" {
				msg = e.Error
			}
			return &StatusError{StatusCode: resp.StatusCode, Message: msg}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w from %s: %v", ErrBadResponse, path, err)
		}
		return nil
	})
}

func isTransient(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadResponse) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
