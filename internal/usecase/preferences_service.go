package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"challenge_server/internal/domain"
)

type PreferencesService struct {
	store domain.PreferencesStore
}

func NewPreferencesService(store domain.PreferencesStore) (*PreferencesService, error) {
	if store == nil {
		return nil, errors.New("preferences store required")
	}
	return &PreferencesService{store: store}, nil
}

// Load returns the stored preferences, or the defaults for users that never saved any.
func (s *PreferencesService) Load(ctx context.Context, userID string) (domain.UserPreferences, error) {
	if userID == "" {
		return domain.UserPreferences{}, &ValidationError{Err: errors.New("user id required")}
	}
	prefs, err := s.store.LoadPreferences(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultPreferences(userID), nil
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if prefs.VisibleWidgets == nil {
		prefs.VisibleWidgets = map[string]bool{}
	}
	return prefs, nil
}

// Save merges patch into the current preferences and stores the result.
func (s *PreferencesService) Save(ctx context.Context, userID string, patch domain.PreferencesPatch) (domain.UserPreferences, error) {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return domain.UserPreferences{}, &ValidationError{Err: fmt.Errorf("unknown theme %q", *patch.Theme)}
	}

	current, err := s.Load(ctx, userID)
	if err != nil {
		return domain.UserPreferences{}, err
	}

	updated := current.Apply(patch)
	updated.UserID = userID
	updated.UpdatedAt = time.Now().UTC()

	if err := s.store.SavePreferences(ctx, updated); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return updated, nil
}
