package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// MetaStatsClient talks to the MetaApi statistics API.
type MetaStatsClient struct {
	client *resty.Client
}

type metricsResponse struct {
	Metrics map[string]any `json:"metrics"`
}

func NewMetaStatsClient(baseURL, token string, timeout time.Duration, opts ...func(*resty.Client)) (*MetaStatsClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("auth-token", token).
		SetTimeout(timeout)

	for _, opt := range opts {
		opt(client)
	}

	return &MetaStatsClient{client: client}, nil
}

func (c *MetaStatsClient) GetMetrics(ctx context.Context, accountID string) (map[string]any, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id required")
	}

	var payload metricsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("accountId", accountID).
		SetQueryParam("includeOpenPositions", "true").
		SetResult(&payload).
		Get("/users/current/accounts/{accountId}/metrics")
	if err := checkResponse("get metrics", resp, err); err != nil {
		return nil, err
	}
	if payload.Metrics == nil {
		return map[string]any{}, nil
	}
	return payload.Metrics, nil
}

func (c *MetaStatsClient) GetEquityChart(ctx context.Context, accountID string) ([]map[string]any, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id required")
	}

	var points []map[string]any
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("accountId", accountID).
		SetResult(&points).
		Get("/users/current/accounts/{accountId}/equity-chart")
	if err := checkResponse("get equity chart", resp, err); err != nil {
		return nil, err
	}
	return points, nil
}
