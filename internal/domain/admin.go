package domain

import "time"

type Reward struct {
	ID                    int64     `json:"id"`
	DocumentID            string    `json:"documentId"`
	Name                  string    `json:"name"`
	Percentage            float64   `json:"percentage"`
	Probability           float64   `json:"probability"`
	Duration              int       `json:"duration"`
	UsageCount            int       `json:"usageCount"`
	ProductVariations     []int64   `json:"productVariations"`
	NormalizedProbability float64   `json:"normalizedProbability"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
}

type RewardInput struct {
	Name              string  `json:"name" validate:"required,max=120"`
	Percentage        float64 `json:"percentage" validate:"gte=0,lte=100"`
	Probability       float64 `json:"probability" validate:"gte=0"`
	Duration          int     `json:"duration" validate:"gte=0"`
	ProductVariations []int64 `json:"productVariations" validate:"dive,gt=0"`
}

type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Price      string  `json:"price"`
	Variations []int64 `json:"variations"`
}

type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

type ProductVariation struct {
	ID         int64                `json:"id"`
	ProductID  int64                `json:"productId"`
	SKU        string               `json:"sku"`
	Price      string               `json:"price"`
	Attributes []VariationAttribute `json:"attributes"`
}

type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// UserPreferences are the per-user display settings of the dashboard.
type UserPreferences struct {
	UserID         string          `json:"userId"`
	Theme          Theme           `json:"theme"`
	HideBalances   bool            `json:"hideBalances"`
	VisibleWidgets map[string]bool `json:"visibleWidgets"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:         userID,
		Theme:          ThemeSystem,
		VisibleWidgets: map[string]bool{},
	}
}

// PreferencesPatch is a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	Theme          *Theme          `json:"theme,omitempty"`
	HideBalances   *bool           `json:"hideBalances,omitempty"`
	VisibleWidgets map[string]bool `json:"visibleWidgets,omitempty"`
}

// Apply returns a copy of p with the patch merged in. Widget toggles are
// merged key by key.
func (p UserPreferences) Apply(patch PreferencesPatch) UserPreferences {
	out := p
	out.VisibleWidgets = make(map[string]bool, len(p.VisibleWidgets)+len(patch.VisibleWidgets))
	for k, v := range p.VisibleWidgets {
		out.VisibleWidgets[k] = v
	}
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	if patch.HideBalances != nil {
		out.HideBalances = *patch.HideBalances
	}
	for k, v := range patch.VisibleWidgets {
		out.VisibleWidgets[k] = v
	}
	return out
}
