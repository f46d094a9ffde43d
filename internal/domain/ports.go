package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidMetadata = errors.New("invalid challenge metadata")
	ErrInvalidPhase    = errors.New("invalid challenge phase")
)

type ChallengeQuery struct {
	ParentID string
	Results  []ChallengeResult
	Limit    int
}

// ChallengeSource reads challenges from the backend CMS.
type ChallengeSource interface {
	GetChallenge(ctx context.Context, documentID string) (Challenge, error)
	ListChallenges(ctx context.Context, query ChallengeQuery) ([]Challenge, error)
}

// StageSource returns the stage configuration of the program a challenge belongs to.
type StageSource interface {
	ListStages(ctx context.Context, challengeDocumentID string) ([]Stage, error)
}

// MetricsProvider is the external trading-metrics API. Responses are returned
// loosely typed; the normalizer owns the field mapping.
type MetricsProvider interface {
	GetMetrics(ctx context.Context, accountID string) (map[string]any, error)
	GetEquityChart(ctx context.Context, accountID string) ([]map[string]any, error)
}

type RewardStore interface {
	ListRewards(ctx context.Context) ([]Reward, error)
	GetReward(ctx context.Context, documentID string) (Reward, error)
	CreateReward(ctx context.Context, input RewardInput) (Reward, error)
	UpdateReward(ctx context.Context, documentID string, input RewardInput) (Reward, error)
	DeleteReward(ctx context.Context, documentID string) error
}

type ProductCatalog interface {
	ListProducts(ctx context.Context, page, perPage int) (ProductPage, error)
	ListVariations(ctx context.Context, productID int64) ([]ProductVariation, error)
}

// DashboardRepository persists the latest computed dashboard per challenge.
type DashboardRepository interface {
	SaveDashboard(ctx context.Context, dashboard ChallengeDashboard) error
	GetDashboard(ctx context.Context, documentID string) (ChallengeDashboard, error)
	ListDashboards(ctx context.Context, limit int) ([]ChallengeDashboard, error)
}

type PreferencesStore interface {
	LoadPreferences(ctx context.Context, userID string) (UserPreferences, error)
	SavePreferences(ctx context.Context, prefs UserPreferences) error
}
