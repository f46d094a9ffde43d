package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"challenge_server/internal/infra/repository"
)

func ApplyMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&repository.DashboardSnapshotModel{},
		&repository.UserPreferencesModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
