package amadeus

import "time"

// The provider's sandbox throttles aggressively, so the client enforces
// its own admission window: at most maxRequestsPerWindow requests per
// fixed 60-second bucket. Exceeding it fails the call up front instead
// of queueing.
const (
	rateWindow           = time.Minute
	maxRequestsPerWindow = 5
)

// checkRateLimit resets an expired window and rejects the request with a
// RateLimitError when the current window is exhausted.
func (c *Client) checkRateLimit() error {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	now := c.now()
	if !now.Before(c.windowReset) {
		c.requestCount = 0
		c.windowReset = now.Add(rateWindow)
	}
	if c.requestCount >= maxRequestsPerWindow {
		return &RateLimitError{RetryIn: c.windowReset.Sub(now)}
	}
	return nil
}

// incrementRequestCount charges one admitted request to the window.
func (c *Client) incrementRequestCount() {
	c.rateMu.Lock()
	c.requestCount++
	c.rateMu.Unlock()
}
