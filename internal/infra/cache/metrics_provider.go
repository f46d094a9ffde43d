package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"challenge_server/internal/domain"
)

// MetricsProvider caches metrics provider responses per account. Cache
// failures are logged and fall through to the wrapped provider.
type MetricsProvider struct {
	next   domain.MetricsProvider
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewMetricsProvider(next domain.MetricsProvider, store Store, ttl time.Duration, logger zerolog.Logger) (*MetricsProvider, error) {
	if next == nil {
		return nil, errors.New("metrics provider required")
	}
	if store == nil {
		return nil, errors.New("cache store required")
	}
	return &MetricsProvider{next: next, store: store, ttl: ttl, logger: logger}, nil
}

func (p *MetricsProvider) GetMetrics(ctx context.Context, accountID string) (map[string]any, error) {
	var out map[string]any
	err := p.cached(ctx, "metrics:"+accountID, &out, func() (any, error) {
		return p.next.GetMetrics(ctx, accountID)
	})
	return out, err
}

func (p *MetricsProvider) GetEquityChart(ctx context.Context, accountID string) ([]map[string]any, error) {
	var out []map[string]any
	err := p.cached(ctx, "equity-chart:"+accountID, &out, func() (any, error) {
		return p.next.GetEquityChart(ctx, accountID)
	})
	return out, err
}

func (p *MetricsProvider) cached(ctx context.Context, key string, dst any, fetch func() (any, error)) error {
	if raw, found, err := p.store.Get(ctx, key); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("metrics cache read")
	} else if found {
		if err := json.Unmarshal(raw, dst); err == nil {
			return nil
		}
		p.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	value, err := fetch()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, key, raw, p.ttl); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("metrics cache write")
	}
	return json.Unmarshal(raw, dst)
}
