package dashsdk

import (
	"context"
	"fmt"
)

// Health probes GET /health. Callers that want a tighter bound than the
// client timeout pass a context with a deadline.
func (c *Client) Health(ctx context.Context) (apiResp *HealthResponse, err error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&apiResp).
		Get(routeHealth)

	if err := handleAPIError(resp, err, "health"); err != nil {
		return nil, err
	}

	if apiResp == nil || apiResp.Status != "ok" {
		return apiResp, fmt.Errorf("health: unexpected status from %s", c.baseURL)
	}

	return apiResp, nil
}
