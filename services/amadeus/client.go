package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"tripwise/utils"

	"go.uber.org/zap"
)

const (
	maxRetries     = 3
	retryBaseDelay = 2000 * time.Millisecond
	authRetryDelay = time.Second
)

// Client talks to the Amadeus self-service APIs. It owns the OAuth2
// token lifecycle, a fixed-bucket admission window, and the retry policy
// for transient provider failures. Token and window state are
// mutex-guarded so concurrent chat turns cannot over-admit or
// double-refresh.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	rateMu       sync.Mutex
	requestCount int
	windowReset  time.Time

	// Injectable clocks for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient builds a travel client for the given credentials and base URL.
func NewClient(apiKey, apiSecret, baseURL string) *Client {
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// request is the single primitive all search operations build on. It
// checks the admission window, attaches a bearer token, retries 429/5xx
// responses with backoff (honoring Retry-After), and recovers from one
// stale-token 401 with a silent refresh.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	logger := utils.GetLogger()

	if err := c.checkRateLimit(); err != nil {
		logger.Warn("Amadeus rate limit reached", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	authRetried := false
	for attempt := 0; ; attempt++ {
		token, err := c.getToken(ctx)
		if err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			c.incrementRequestCount()
			return respBody, nil

		case resp.StatusCode == http.StatusUnauthorized && !authRetried:
			// Stale token; refresh once outside the retry budget.
			logger.Info("Amadeus returned 401, refreshing token and retrying",
				zap.String("path", path))
			c.invalidateToken()
			authRetried = true
			c.sleep(authRetryDelay)
			continue

		case isTransient(resp.StatusCode) && attempt < maxRetries:
			delay := retryDelay(resp.Header.Get("Retry-After"), attempt)
			logger.Warn("Transient Amadeus error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.String("path", path),
				zap.Duration("backoff", delay),
				zap.Int("attempt", attempt+1))
			c.sleep(delay)
			continue

		default:
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   path,
				Body:       string(respBody),
			}
		}
	}
}

// isTransient reports whether a status code warrants a retry.
func isTransient(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// retryDelay prefers the provider's Retry-After header, falling back to
// exponential backoff from the base delay.
func retryDelay(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return retryBaseDelay * (1 << attempt)
}
