package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/types"
)

// HTTPClient reads the rosters from another instance of the roster API
// (GET /residents?floor= and GET /staff?floor=).
type HTTPClient struct {
	httpClient *resty.Client
	log        *logger.Logger
}

func NewHTTPClient(baseURL string, log *logger.Logger) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &HTTPClient{httpClient: client, log: log.Component("roster.http")}
}

func (c *HTTPClient) ListResidents(ctx context.Context, floor string) ([]types.Resident, error) {
	out := []types.Resident{}
	if err := c.get(ctx, "/residents", floor, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListStaff(ctx context.Context, floor string) ([]types.Staff, error) {
	out := []types.Staff{}
	if err := c.get(ctx, "/staff", floor, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, path, floor string, result any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("floor", floor).
		SetResult(result).
		Get(path)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("roster request failed")
		return fmt.Errorf("%w: GET %s: %v", ErrUnavailable, path, err)
	}
	if resp.IsError() {
		c.log.WithField("path", path).WithField("status_code", resp.StatusCode()).Warn("roster API returned error")
		return fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, path, resp.StatusCode())
	}
	return nil
}
