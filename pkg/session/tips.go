package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultTipLimit = 50

// Tips returns the signed-in wallet's tip history
// GET /api/v1/tips?network=solana&limit=50&offset=0
func (c *Client) Tips(ctx context.Context, params *TipParams) (*TipHistory, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}

	p := TipParams{Limit: defaultTipLimit}
	if params != nil {
		p = *params
	}
	if p.Limit == 0 {
		p.Limit = defaultTipLimit
	}
	if p.Limit < 1 || p.Limit > 100 {
		return nil, fmt.Errorf("limit must be between 1 and 100, got %d", p.Limit)
	}
	if p.Offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", p.Offset)
	}

	u, err := url.Parse(c.baseURL + "/api/v1/tips")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	if p.Network != "" {
		q.Set("network", p.Network)
	}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	u.RawQuery = q.Encode()

	var result TipHistory
	if err := httpRequest(ctx, c.httpClient, http.MethodGet, u.String(), nil, headers, &result); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
			return nil, fmt.Errorf("authentication failed: %w (hint: token may be expired, try refreshing)", err)
		}
		return nil, fmt.Errorf("failed to get tip history: %w", err)
	}
	return &result, nil
}

// TipsWithAutoRefresh retries Tips once after refreshing an expired access token
func (c *Client) TipsWithAutoRefresh(ctx context.Context, params *TipParams) (*TipHistory, error) {
	result, err := c.Tips(ctx, params)
	if err == nil {
		return result, nil
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.IsUnauthorized() {
		return nil, err
	}

	c.logger.Debug("access token rejected, refreshing")
	if _, refreshErr := c.RefreshToken(ctx); refreshErr != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", refreshErr)
	}
	return c.Tips(ctx, params)
}
