package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"challenge_server/internal/domain"
)

type DashboardSnapshotModel struct {
	ID              int64          `gorm:"column:id;primaryKey"`
	ChallengeID     string         `gorm:"column:challenge_id;uniqueIndex;not null"`
	Phase           int            `gorm:"column:phase"`
	Result          *string        `gorm:"column:result"`
	StageName       *string        `gorm:"column:stage_name"`
	MetricsSource   string         `gorm:"column:metrics_source;not null"`
	InitialBalance  float64        `gorm:"column:initial_balance"`
	Balance         float64        `gorm:"column:balance"`
	TargetPercent   float64        `gorm:"column:target_percent"`
	DrawdownPercent float64        `gorm:"column:drawdown_percent"`
	Generation      string         `gorm:"column:generation;not null"`
	Sequence        int64          `gorm:"column:sequence;not null"`
	Payload         datatypes.JSON `gorm:"column:payload"`
	ComputedAt      time.Time      `gorm:"column:computed_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (DashboardSnapshotModel) TableName() string {
	return "dashboard_snapshots"
}

func toDashboardSnapshotModel(d domain.ChallengeDashboard) (DashboardSnapshotModel, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return DashboardSnapshotModel{}, fmt.Errorf("encode dashboard: %w", err)
	}
	return DashboardSnapshotModel{
		ChallengeID:     d.Challenge.DocumentID,
		Phase:           d.Challenge.Phase,
		Result:          stringPointerOrNil(string(d.Challenge.Result)),
		StageName:       stringPointerOrNil(d.Stage.Name),
		MetricsSource:   string(d.MetricsSource),
		InitialBalance:  d.InitialBalance,
		Balance:         d.Metrics.Balance,
		TargetPercent:   d.Progress.Target.Percentage,
		DrawdownPercent: d.Progress.Drawdown.Percentage,
		Generation:      d.Generation,
		Sequence:        d.Sequence,
		Payload:         jsonOrEmpty(payload),
		ComputedAt:      d.ComputedAt,
	}, nil
}

func (m DashboardSnapshotModel) toDomain() (domain.ChallengeDashboard, error) {
	var d domain.ChallengeDashboard
	if err := json.Unmarshal(m.Payload, &d); err != nil {
		return domain.ChallengeDashboard{}, fmt.Errorf("decode dashboard %s: %w", m.ChallengeID, err)
	}
	d.Generation = m.Generation
	d.Sequence = m.Sequence
	return d, nil
}

type UserPreferencesModel struct {
	ID             int64          `gorm:"column:id;primaryKey"`
	UserID         string         `gorm:"column:user_id;uniqueIndex;not null"`
	Theme          string         `gorm:"column:theme;not null"`
	HideBalances   bool           `gorm:"column:hide_balances"`
	VisibleWidgets datatypes.JSON `gorm:"column:visible_widgets"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
}

func (UserPreferencesModel) TableName() string {
	return "user_preferences"
}

func toUserPreferencesModel(p domain.UserPreferences) (UserPreferencesModel, error) {
	widgets, err := json.Marshal(p.VisibleWidgets)
	if err != nil {
		return UserPreferencesModel{}, fmt.Errorf("encode widgets: %w", err)
	}
	return UserPreferencesModel{
		UserID:         p.UserID,
		Theme:          string(p.Theme),
		HideBalances:   p.HideBalances,
		VisibleWidgets: jsonOrEmpty(widgets),
		UpdatedAt:      p.UpdatedAt,
	}, nil
}

func (m UserPreferencesModel) toDomain() domain.UserPreferences {
	widgets := map[string]bool{}
	if len(m.VisibleWidgets) > 0 {
		_ = json.Unmarshal(m.VisibleWidgets, &widgets)
	}
	return domain.UserPreferences{
		UserID:         m.UserID,
		Theme:          domain.Theme(m.Theme),
		HideBalances:   m.HideBalances,
		VisibleWidgets: widgets,
		UpdatedAt:      m.UpdatedAt,
	}
}

func stringPointerOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func jsonOrEmpty(data []byte) datatypes.JSON {
	if len(data) == 0 || string(data) == "null" {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(append([]byte(nil), data...))
}
