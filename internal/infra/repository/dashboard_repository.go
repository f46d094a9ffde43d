package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"challenge_server/internal/domain"
)

type GormDashboardRepository struct {
	db *gorm.DB
}

func NewGormDashboardRepository(db *gorm.DB) (*GormDashboardRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormDashboardRepository{db: db}, nil
}

// SaveDashboard upserts the snapshot of a challenge. A row written by a newer
// load (higher sequence) is never overwritten.
func (r *GormDashboardRepository) SaveDashboard(ctx context.Context, dashboard domain.ChallengeDashboard) error {
	if dashboard.Challenge.DocumentID == "" {
		return errors.New("challenge id required")
	}
	model, err := toDashboardSnapshotModel(dashboard)
	if err != nil {
		return err
	}

	assignments := clause.Assignments(map[string]interface{}{
		"phase":            gorm.Expr("EXCLUDED.phase"),
		"result":           gorm.Expr("EXCLUDED.result"),
		"stage_name":       gorm.Expr("EXCLUDED.stage_name"),
		"metrics_source":   gorm.Expr("EXCLUDED.metrics_source"),
		"initial_balance":  gorm.Expr("EXCLUDED.initial_balance"),
		"balance":          gorm.Expr("EXCLUDED.balance"),
		"target_percent":   gorm.Expr("EXCLUDED.target_percent"),
		"drawdown_percent": gorm.Expr("EXCLUDED.drawdown_percent"),
		"generation":       gorm.Expr("EXCLUDED.generation"),
		"sequence":         gorm.Expr("EXCLUDED.sequence"),
		"payload":          gorm.Expr("EXCLUDED.payload"),
		"computed_at":      gorm.Expr("EXCLUDED.computed_at"),
		"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
	})

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}},
			DoUpdates: assignments,
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "dashboard_snapshots.sequence < EXCLUDED.sequence"},
			}},
		}).
		Create(&model).Error
}

func (r *GormDashboardRepository) GetDashboard(ctx context.Context, documentID string) (domain.ChallengeDashboard, error) {
	var model DashboardSnapshotModel
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", documentID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ChallengeDashboard{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ChallengeDashboard{}, err
	}
	return model.toDomain()
}

// ListDashboards returns the most recently computed snapshots.
func (r *GormDashboardRepository) ListDashboards(ctx context.Context, limit int) ([]domain.ChallengeDashboard, error) {
	var models []DashboardSnapshotModel
	query := r.db.WithContext(ctx).Order("computed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}

	out := make([]domain.ChallengeDashboard, 0, len(models))
	for _, m := range models {
		d, err := m.toDomain()
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
