package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge_server/internal/domain"
)

func newTestDashboardService(t *testing.T, challenges domain.ChallengeSource, stages domain.StageSource, metrics domain.MetricsProvider, repo domain.DashboardRepository) *DashboardService {
	t.Helper()
	svc, err := NewDashboardService(challenges, stages, metrics, repo, zerolog.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func metadataChallenge(id string, phase int) domain.Challenge {
	return domain.Challenge{
		DocumentID: id,
		Phase:      phase,
		Result:     domain.ChallengeResultProgress,
		Metadata: domain.MetadataFromObject(map[string]any{
			"metrics": map[string]any{
				"trades":             10.0,
				"wonTrades":          6.0,
				"lostTrades":         4.0,
				"averageWin":         100.0,
				"averageLoss":        -50.0,
				"deposits":           10000.0,
				"balance":            10500.0,
				"maxDrawdownPercent": 3.0,
				"dailyGrowth": []any{
					map[string]any{"date": "2024-05-01", "balance": 10000.0},
					map[string]any{"date": "2024-05-02", "balance": 10500.0},
				},
			},
		}),
		BrokerAccount: &domain.BrokerAccount{Login: "1001", Balance: 10000, IDMeta: "acc-1"},
	}
}

func TestNewDashboardServiceRequiresChallengeSource(t *testing.T) {
	_, err := NewDashboardService(nil, nil, nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestDashboardLoadFromMetadata(t *testing.T) {
	challenges := newFakeChallenges(metadataChallenge("c1", 1))
	stages := &fakeStages{stages: []domain.Stage{{Name: "Phase 1", ProfitTarget: 10, MaximumTotalLoss: 10}}}
	metrics := &fakeMetrics{}
	repo := newFakeDashboards()
	svc := newTestDashboardService(t, challenges, stages, metrics, repo)

	d, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, domain.MetricsSourceMetadata, d.MetricsSource)
	assert.Equal(t, "Phase 1", d.Stage.Name)
	assert.Equal(t, 10000.0, d.InitialBalance)
	assert.InDelta(t, 50.0, d.Progress.Target.Percentage, 1e-9)
	assert.Equal(t, domain.ColorBandYellow, d.Progress.Target.ColorBand)
	assert.InDelta(t, 30.0, d.Progress.Drawdown.Percentage, 1e-9)
	assert.InDelta(t, 3.0, d.Metrics.ProfitFactor, 1e-9)
	assert.False(t, d.SyntheticSeries)
	assert.Len(t, d.Series, 2+2+2)
	assert.NotEmpty(t, d.Generation)
	assert.Equal(t, fixedNow, d.ComputedAt)

	assert.Zero(t, metrics.metricCalls, "provider is not consulted when metadata decodes")
	assert.Equal(t, 1, repo.saves)

	cached, err := svc.Cached(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, d.Generation, cached.Generation)
}

func TestDashboardPrefersEmbeddedStages(t *testing.T) {
	c := metadataChallenge("c1", 2)
	fields := c.Metadata.Fields()
	fields["stages"] = []any{
		map[string]any{"name": "Embedded A", "profitTarget": 8.0},
		map[string]any{"name": "Embedded B", "profitTarget": 5.0},
	}
	svc := newTestDashboardService(t, newFakeChallenges(c), &fakeStages{stages: []domain.Stage{{Name: "Fetched"}}}, nil, nil)

	d, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Embedded A", d.Stage.Name, "two-stage programs reuse the first stage for phase 2")
}

func TestDashboardFallsBackToProvider(t *testing.T) {
	c := metadataChallenge("c1", 1)
	c.Metadata = domain.MetadataFromText("{broken")
	metrics := &fakeMetrics{
		metrics: map[string]any{"trades": 4.0, "balance": 10200.0, "deposits": 10000.0},
		chart: []map[string]any{
			{"brokerTime": "2024-05-01 00:00:00.000", "lastBalance": 10000.0},
			{"brokerTime": "2024-05-02 00:00:00.000", "lastBalance": 10200.0},
		},
	}
	svc := newTestDashboardService(t, newFakeChallenges(c), &fakeStages{err: errors.New("cms down")}, metrics, nil)

	d, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, domain.MetricsSourceProvider, d.MetricsSource)
	assert.Equal(t, 4, d.Metrics.Trades)
	assert.True(t, d.Stage.IsDefault, "stage fetch failure degrades to the default stage")
	assert.Equal(t, 1, metrics.metricCalls)
	assert.Equal(t, 1, metrics.chartCalls)
	require.Len(t, d.Metrics.EquityChart, 2)
	assert.InDelta(t, 25.0, d.Progress.Target.Percentage, 1e-9)
}

func TestDashboardEmptySourceWhenProviderFails(t *testing.T) {
	c := metadataChallenge("c1", 1)
	c.Metadata = domain.RawMetadata{}
	c.BrokerAccount.Balance = 5000
	metrics := &fakeMetrics{err: errors.New("timeout")}
	svc := newTestDashboardService(t, newFakeChallenges(c), nil, metrics, nil)

	d, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, domain.MetricsSourceEmpty, d.MetricsSource)
	assert.Equal(t, 5000.0, d.InitialBalance)
	assert.Zero(t, d.Metrics.Trades)
	assert.True(t, d.SyntheticSeries)
	assert.Len(t, d.Series, 34)
}

func TestDashboardLoadUnknownChallenge(t *testing.T) {
	svc := newTestDashboardService(t, newFakeChallenges(), nil, nil, nil)
	_, err := svc.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Cached(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// blockingStages holds the first ListStages call until release is closed.
type blockingStages struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStages) ListStages(ctx context.Context, _ string) ([]domain.Stage, error) {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, nil
}

func TestDashboardStaleLoadIsNotPersisted(t *testing.T) {
	stages := &blockingStages{entered: make(chan struct{}), release: make(chan struct{})}
	repo := newFakeDashboards()
	svc := newTestDashboardService(t, newFakeChallenges(metadataChallenge("c1", 1)), stages, nil, repo)

	staleDone := make(chan domain.ChallengeDashboard, 1)
	go func() {
		d, err := svc.Load(context.Background(), "c1")
		if err != nil {
			t.Errorf("stale load: %v", err)
		}
		staleDone <- d
	}()
	<-stages.entered

	fresh, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)

	close(stages.release)
	stale := <-staleDone

	assert.Less(t, stale.Sequence, fresh.Sequence)
	assert.Equal(t, 1, repo.saves)
	saved, err := repo.GetDashboard(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fresh.Generation, saved.Generation)
}

func TestRefreshActive(t *testing.T) {
	done := metadataChallenge("c3", 1)
	done.Result = domain.ChallengeResultApproved
	challenges := newFakeChallenges(metadataChallenge("c1", 1), metadataChallenge("c2", 2), done)
	repo := newFakeDashboards()
	svc := newTestDashboardService(t, challenges, nil, nil, repo)

	count, err := svc.RefreshActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, repo.saves)

	require.NotEmpty(t, challenges.queries)
	assert.ElementsMatch(t,
		[]domain.ChallengeResult{domain.ChallengeResultInit, domain.ChallengeResultProgress},
		challenges.queries[0].Results)

	recent, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestRefreshActiveListError(t *testing.T) {
	challenges := newFakeChallenges()
	challenges.listErr = errors.New("cms down")
	svc := newTestDashboardService(t, challenges, nil, nil, nil)

	_, err := svc.RefreshActive(context.Background())
	assert.Error(t, err)
}
