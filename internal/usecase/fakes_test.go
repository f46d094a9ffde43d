package usecase

import (
	"context"
	"sync"

	"challenge_server/internal/domain"
)

type fakeChallenges struct {
	mu       sync.Mutex
	byID     map[string]domain.Challenge
	children map[string][]domain.Challenge
	listErr  error
	queries  []domain.ChallengeQuery
}

func newFakeChallenges(challenges ...domain.Challenge) *fakeChallenges {
	f := &fakeChallenges{
		byID:     map[string]domain.Challenge{},
		children: map[string][]domain.Challenge{},
	}
	for _, c := range challenges {
		f.byID[c.DocumentID] = c
		if c.ParentID != "" {
			f.children[c.ParentID] = append(f.children[c.ParentID], c)
		}
	}
	return f
}

func (f *fakeChallenges) GetChallenge(_ context.Context, documentID string) (domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[documentID]
	if !ok {
		return domain.Challenge{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeChallenges) ListChallenges(_ context.Context, query domain.ChallengeQuery) ([]domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if query.ParentID != "" {
		return f.children[query.ParentID], nil
	}

	var out []domain.Challenge
	for _, c := range f.byID {
		for _, r := range query.Results {
			if c.Result == r {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

type fakeStages struct {
	stages []domain.Stage
	err    error
}

func (f *fakeStages) ListStages(context.Context, string) ([]domain.Stage, error) {
	return f.stages, f.err
}

type fakeMetrics struct {
	mu          sync.Mutex
	metrics     map[string]any
	chart       []map[string]any
	err         error
	metricCalls int
	chartCalls  int
}

func (f *fakeMetrics) GetMetrics(context.Context, string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.metrics, nil
}

func (f *fakeMetrics) GetEquityChart(context.Context, string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartCalls++
	return f.chart, nil
}

type fakeDashboards struct {
	mu    sync.Mutex
	saved map[string]domain.ChallengeDashboard
	saves int
}

func newFakeDashboards() *fakeDashboards {
	return &fakeDashboards{saved: map[string]domain.ChallengeDashboard{}}
}

func (f *fakeDashboards) SaveDashboard(_ context.Context, d domain.ChallengeDashboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.saved[d.Challenge.DocumentID] = d
	return nil
}

func (f *fakeDashboards) GetDashboard(_ context.Context, id string) (domain.ChallengeDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.saved[id]
	if !ok {
		return domain.ChallengeDashboard{}, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeDashboards) ListDashboards(_ context.Context, limit int) ([]domain.ChallengeDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ChallengeDashboard, 0, len(f.saved))
	for _, d := range f.saved {
		if len(out) == limit {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

type fakeRewards struct {
	rewards []domain.Reward
	created []domain.RewardInput
}

func (f *fakeRewards) ListRewards(context.Context) ([]domain.Reward, error) {
	return f.rewards, nil
}

func (f *fakeRewards) GetReward(_ context.Context, id string) (domain.Reward, error) {
	for _, r := range f.rewards {
		if r.DocumentID == id {
			return r, nil
		}
	}
	return domain.Reward{}, domain.ErrNotFound
}

func (f *fakeRewards) CreateReward(_ context.Context, input domain.RewardInput) (domain.Reward, error) {
	f.created = append(f.created, input)
	return domain.Reward{DocumentID: "new", Name: input.Name, Probability: input.Probability}, nil
}

func (f *fakeRewards) UpdateReward(_ context.Context, id string, input domain.RewardInput) (domain.Reward, error) {
	if _, err := f.GetReward(context.Background(), id); err != nil {
		return domain.Reward{}, err
	}
	return domain.Reward{DocumentID: id, Name: input.Name}, nil
}

func (f *fakeRewards) DeleteReward(_ context.Context, id string) error {
	_, err := f.GetReward(context.Background(), id)
	return err
}

type fakeCatalog struct {
	page, perPage int
}

func (f *fakeCatalog) ListProducts(_ context.Context, page, perPage int) (domain.ProductPage, error) {
	f.page, f.perPage = page, perPage
	return domain.ProductPage{Page: page, PerPage: perPage}, nil
}

func (f *fakeCatalog) ListVariations(_ context.Context, productID int64) ([]domain.ProductVariation, error) {
	return []domain.ProductVariation{{ID: 1, ProductID: productID}}, nil
}

type fakePreferences struct {
	stored map[string]domain.UserPreferences
}

func (f *fakePreferences) LoadPreferences(_ context.Context, userID string) (domain.UserPreferences, error) {
	p, ok := f.stored[userID]
	if !ok {
		return domain.UserPreferences{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePreferences) SavePreferences(_ context.Context, prefs domain.UserPreferences) error {
	if f.stored == nil {
		f.stored = map[string]domain.UserPreferences{}
	}
	f.stored[prefs.UserID] = prefs
	return nil
}
