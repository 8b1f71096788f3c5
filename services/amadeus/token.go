package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripwise/utils"

	"go.uber.org/zap"
)

const tokenPath = "/v1/security/oauth2/token"

// tokenExpirySlack is subtracted from the provider's expires_in so we
// refresh before the token actually lapses.
const tokenExpirySlack = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getToken returns the cached access token, refreshing it via the OAuth2
// client-credentials flow when missing or within the expiry slack.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}
	return c.refreshTokenLocked(ctx)
}

// invalidateToken discards the cached token so the next request fetches
// a fresh one. Used after a 401.
func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.accessToken = ""
	c.tokenMu.Unlock()
}

func (c *Client) refreshTokenLocked(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Err: fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))}
	}

	var result tokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to parse token response: %w", err)}
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(result.ExpiresIn)*time.Second - tokenExpirySlack)
	utils.GetLogger().Debug("Refreshed Amadeus access token",
		zap.Time("expiry", c.tokenExpiry))
	return c.accessToken, nil
}
