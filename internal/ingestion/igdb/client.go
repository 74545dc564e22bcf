package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"questlog/internal/models"

	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL   = "https://api.igdb.com/v4"
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// IGDB allows 4 requests per second per client
	defaultRateLimit = 4
	rateBurst       = 4

	// Retry configuration
	maxRetries   = 4
	initialDelay = 500 * time.Millisecond
	maxDelay     = 8 * time.Second

	searchLimit = 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	RateLimit    float64
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client talks to the IGDB v4 API with rate limiting, retries and an
// auto-refreshed Twitch app token.
type Client struct {
	apiURL       string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *slog.Logger
	retryDelay   time.Duration

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), rateBurst),
		logger:       cfg.Logger,
		retryDelay:   initialDelay,
	}
}

// FetchGameByID returns nil, nil when IGDB has no game with that id.
func (c *Client) FetchGameByID(ctx context.Context, id int64) (*models.GameDocument, error) {
	var games []models.GameDocument
	if err := c.query(ctx, "/games", GameByIDQuery(id), &games); err != nil {
		return nil, fmt.Errorf("failed to fetch game %d: %w", id, err)
	}
	if len(games) == 0 {
		return nil, nil
	}
	return &games[0], nil
}

func (c *Client) Search(ctx context.Context, query string) ([]models.GameDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.GameDocument{}, nil
	}
	var games []models.GameDocument
	if err := c.query(ctx, "/games", SearchQuery(query, searchLimit), &games); err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	return games, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// accessToken returns the cached app token, requesting a new one a minute
// before expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response without access_token")
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// query posts an Apicalypse body with rate limiting and retry logic.
func (c *Client) query(ctx context.Context, endpoint, body string, result any) error {
	var lastErr error
	delay := c.retryDelay
	reauthed := false

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, bytes.NewBufferString(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Client-ID", c.clientID)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("User-Agent", "questlog/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries && ctx.Err() == nil {
				c.logger.Warn("IGDB request failed, retrying", "attempt", attempt+1, "error", err, "delay", delay)
				if err := sleep(ctx, delay); err != nil {
					return err
				}
				delay = min(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
		}

		status := resp.StatusCode
		if status == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(result)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("HTTP %d: %s", status, string(respBody))

		// an expired token is replaced once without counting against retries
		if status == http.StatusUnauthorized && !reauthed {
			reauthed = true
			c.dropToken()
			attempt--
			continue
		}

		if shouldRetry(status) && attempt < maxRetries {
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
					delay = d
				}
			}
			c.logger.Warn("IGDB returned retryable status", "status", status, "attempt", attempt+1, "delay", delay)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = min(delay*2, maxDelay)
			continue
		}

		return lastErr
	}

	return fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
