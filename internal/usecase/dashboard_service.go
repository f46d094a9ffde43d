package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"challenge_server/internal/domain"
)

const (
	refreshConcurrency  = 4
	maxRecentDashboards = 100
)

type DashboardService struct {
	challenges domain.ChallengeSource
	stages     domain.StageSource
	metrics    domain.MetricsProvider
	repo       domain.DashboardRepository
	logger     zerolog.Logger
	loads      *loadTracker
	now        func() time.Time
}

// NewDashboardService wires the dashboard pipeline. Only the challenge source
// is required; without stages, metrics provider or repository the pipeline
// degrades to defaults and skips persistence.
func NewDashboardService(
	challenges domain.ChallengeSource,
	stages domain.StageSource,
	metrics domain.MetricsProvider,
	repo domain.DashboardRepository,
	logger zerolog.Logger,
) (*DashboardService, error) {
	if challenges == nil {
		return nil, errors.New("challenge source required")
	}
	return &DashboardService{
		challenges: challenges,
		stages:     stages,
		metrics:    metrics,
		repo:       repo,
		logger:     logger,
		loads:      newLoadTracker(),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Load runs the full pipeline for one challenge. The result is persisted only
// if no newer load for the same challenge started in the meantime.
func (s *DashboardService) Load(ctx context.Context, documentID string) (domain.ChallengeDashboard, error) {
	if documentID == "" {
		return domain.ChallengeDashboard{}, errors.New("challenge id required")
	}

	seq, token := s.loads.begin(documentID)
	defer s.loads.finish(documentID, seq)

	var (
		challenge domain.Challenge
		stages    []domain.Stage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.challenges.GetChallenge(gctx, documentID)
		if err != nil {
			return fmt.Errorf("fetch challenge: %w", err)
		}
		challenge = c
		return nil
	})
	if s.stages != nil {
		g.Go(func() error {
			st, err := s.stages.ListStages(gctx, documentID)
			if err != nil {
				s.logger.Warn().Err(err).Str("challenge", documentID).Msg("stage fetch failed, using fallback stages")
				return nil
			}
			stages = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ChallengeDashboard{}, err
	}

	dashboard := s.assemble(ctx, challenge, stages)
	dashboard.Generation = token
	dashboard.Sequence = seq

	if s.repo == nil {
		return dashboard, nil
	}
	if !s.loads.isCurrent(documentID, seq) {
		s.logger.Debug().Str("challenge", documentID).Str("generation", token).Msg("stale dashboard load discarded")
		return dashboard, nil
	}
	if err := s.repo.SaveDashboard(ctx, dashboard); err != nil {
		s.logger.Warn().Err(err).Str("challenge", documentID).Msg("persist dashboard")
	}
	return dashboard, nil
}

// Cached returns the last persisted dashboard for a challenge.
func (s *DashboardService) Cached(ctx context.Context, documentID string) (domain.ChallengeDashboard, error) {
	if s.repo == nil {
		return domain.ChallengeDashboard{}, domain.ErrNotFound
	}
	return s.repo.GetDashboard(ctx, documentID)
}

// Recent lists the most recently computed dashboards, newest first.
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]domain.ChallengeDashboard, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 || limit > maxRecentDashboards {
		limit = maxRecentDashboards
	}
	return s.repo.ListDashboards(ctx, limit)
}

// RefreshActive reloads the dashboards of all challenges still being traded
// and returns how many succeeded. Individual failures are logged.
func (s *DashboardService) RefreshActive(ctx context.Context) (int, error) {
	active, err := s.challenges.ListChallenges(ctx, domain.ChallengeQuery{
		Results: []domain.ChallengeResult{domain.ChallengeResultInit, domain.ChallengeResultProgress},
	})
	if err != nil {
		return 0, fmt.Errorf("list active challenges: %w", err)
	}

	var refreshed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, c := range active {
		id := c.DocumentID
		if id == "" {
			continue
		}
		g.Go(func() error {
			if _, err := s.Load(gctx, id); err != nil {
				s.logger.Warn().Err(err).Str("challenge", id).Msg("refresh dashboard")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(refreshed.Load()), nil
}

func (s *DashboardService) assemble(ctx context.Context, challenge domain.Challenge, fetched []domain.Stage) domain.ChallengeDashboard {
	now := s.now()
	opts := NormalizeOptions{InitialBalance: challenge.AccountBalance(), Now: now}

	source := domain.MetricsSourceMetadata
	decoded, err := DecodeMetadata(challenge.Metadata, opts)
	if err != nil {
		s.logger.Warn().Err(err).Str("challenge", challenge.DocumentID).Msg("metadata decode failed, using metrics provider")
		if snapshot, ok := s.providerMetrics(ctx, challenge, opts); ok {
			decoded.Metrics = snapshot
			source = domain.MetricsSourceProvider
		} else {
			decoded.Metrics = NormalizeMetrics(nil, opts)
			source = domain.MetricsSourceEmpty
		}
	}

	stages := decoded.Stages
	if len(stages) == 0 {
		stages = fetched
	}
	stage := ResolveStage(challenge.Phase, stages)

	initial := decoded.Metrics.Deposits
	if initial <= 0 {
		initial = challenge.AccountBalance()
	}

	in := SeriesInput{InitialBalance: initial, Now: now}
	if source != domain.MetricsSourceEmpty {
		in.Points = SeriesPointsFromSnapshot(decoded.Metrics)
	}
	if initial > 0 {
		drawdown := initial - initial*stage.MaximumTotalLoss/100
		target := initial + initial*stage.ProfitTarget/100
		in.MaxDrawdown, in.ProfitTarget = &drawdown, &target
	}
	series := BuildSeries(in)

	return domain.ChallengeDashboard{
		Challenge:       challenge,
		Stage:           stage,
		InitialBalance:  initial,
		Metrics:         decoded.Metrics,
		MetricsSource:   source,
		Progress:        ComputeProgress(decoded.Metrics, stage, initial),
		Series:          series,
		SyntheticSeries: len(series) > 0 && series[0].Synthetic,
		ComputedAt:      now,
	}
}

func (s *DashboardService) providerMetrics(ctx context.Context, challenge domain.Challenge, opts NormalizeOptions) (domain.MetricsSnapshot, bool) {
	if s.metrics == nil || challenge.BrokerAccount == nil || challenge.BrokerAccount.IDMeta == "" {
		return domain.MetricsSnapshot{}, false
	}
	accountID := challenge.BrokerAccount.IDMeta

	raw, err := s.metrics.GetMetrics(ctx, accountID)
	if err != nil {
		s.logger.Warn().Err(err).Str("account", accountID).Msg("metrics provider unavailable")
		return domain.MetricsSnapshot{}, false
	}

	fields := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		fields[k] = v
	}
	if _, ok := lookup(fields, metricAliases["equityChart"]...); !ok {
		chart, err := s.metrics.GetEquityChart(ctx, accountID)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("account", accountID).Msg("equity chart unavailable")
		case len(chart) > 0:
			fields["equityChart"] = chart
		}
	}

	return NormalizeMetrics(fields, opts), true
}
