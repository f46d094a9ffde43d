package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"challenge_server/internal/domain"
)

type GormPreferencesRepository struct {
	db *gorm.DB
}

func NewGormPreferencesRepository(db *gorm.DB) (*GormPreferencesRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormPreferencesRepository{db: db}, nil
}

func (r *GormPreferencesRepository) LoadPreferences(ctx context.Context, userID string) (domain.UserPreferences, error) {
	var model UserPreferencesModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserPreferences{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserPreferences{}, err
	}
	return model.toDomain(), nil
}

func (r *GormPreferencesRepository) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	model, err := toUserPreferencesModel(prefs)
	if err != nil {
		return err
	}

	assignments := clause.Assignments(map[string]interface{}{
		"theme":           gorm.Expr("EXCLUDED.theme"),
		"hide_balances":   gorm.Expr("EXCLUDED.hide_balances"),
		"visible_widgets": gorm.Expr("EXCLUDED.visible_widgets"),
		"updated_at":      gorm.Expr("EXCLUDED.updated_at"),
	})

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: assignments,
		}).
		Create(&model).Error
}
