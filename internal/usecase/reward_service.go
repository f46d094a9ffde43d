package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"challenge_server/internal/domain"
)

// ValidationError wraps input that failed validation so transports can map it to 400.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type RewardService struct {
	store    domain.RewardStore
	validate *validator.Validate
}

func NewRewardService(store domain.RewardStore) (*RewardService, error) {
	if store == nil {
		return nil, errors.New("reward store required")
	}
	return &RewardService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// List returns all rewards with their display probability filled in.
func (s *RewardService) List(ctx context.Context) ([]domain.Reward, error) {
	rewards, err := s.store.ListRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return NormalizeProbabilities(rewards), nil
}

func (s *RewardService) Get(ctx context.Context, documentID string) (domain.Reward, error) {
	if documentID == "" {
		return domain.Reward{}, &ValidationError{Err: errors.New("reward id required")}
	}
	return s.store.GetReward(ctx, documentID)
}

func (s *RewardService) Create(ctx context.Context, input domain.RewardInput) (domain.Reward, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return domain.Reward{}, &ValidationError{Err: err}
	}
	return s.store.CreateReward(ctx, input)
}

func (s *RewardService) Update(ctx context.Context, documentID string, input domain.RewardInput) (domain.Reward, error) {
	if documentID == "" {
		return domain.Reward{}, &ValidationError{Err: errors.New("reward id required")}
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return domain.Reward{}, &ValidationError{Err: err}
	}
	return s.store.UpdateReward(ctx, documentID, input)
}

func (s *RewardService) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return &ValidationError{Err: errors.New("reward id required")}
	}
	return s.store.DeleteReward(ctx, documentID)
}

// NormalizeProbabilities sets each reward's NormalizedProbability to its
// share of the summed probabilities. All shares are 0 when the sum is 0.
func NormalizeProbabilities(rewards []domain.Reward) []domain.Reward {
	out := make([]domain.Reward, len(rewards))
	copy(out, rewards)

	total := decimal.Zero
	for _, r := range out {
		if r.Probability > 0 {
			total = total.Add(decimal.NewFromFloat(r.Probability))
		}
	}
	for i := range out {
		if total.IsZero() || out[i].Probability <= 0 {
			out[i].NormalizedProbability = 0
			continue
		}
		share := decimal.NewFromFloat(out[i].Probability).DivRound(total, 8)
		out[i].NormalizedProbability = share.InexactFloat64()
	}
	return out
}
