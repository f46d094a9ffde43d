package domain

import "time"

// MetricsSnapshot is the canonical view of an account's trading metrics.
// Numeric fields are never left unset: absent values are 0 or derived.
type MetricsSnapshot struct {
	Trades             int               `json:"trades"`
	WonTrades          int               `json:"wonTrades"`
	LostTrades         int               `json:"lostTrades"`
	WonTradesPercent   float64           `json:"wonTradesPercent"`
	LostTradesPercent  float64           `json:"lostTradesPercent"`
	AverageWin         float64           `json:"averageWin"`
	AverageLoss        float64           `json:"averageLoss"`
	Balance            float64           `json:"balance"`
	Equity             float64           `json:"equity"`
	Profit             float64           `json:"profit"`
	MaxDrawdown        float64           `json:"maxDrawdown"`
	MaxDrawdownPercent float64           `json:"maxDrawdownPercent"`
	ProfitFactor       float64           `json:"profitFactor"`
	Expectancy         float64           `json:"expectancy"`
	Deposits           float64           `json:"deposits"`
	DailyGrowth        []GrowthPoint     `json:"dailyGrowth"`
	EquityChart        []EquityPoint     `json:"equityChart"`
	CurrencySummary    []CurrencySummary `json:"currencySummary"`
}

type EquityPoint struct {
	Time    time.Time `json:"t"`
	Equity  float64   `json:"equity"`
	Balance float64   `json:"balance"`
}

type GrowthPoint struct {
	Date          time.Time `json:"date"`
	Balance       float64   `json:"balance"`
	Gains         float64   `json:"gains"`
	Lots          float64   `json:"lots"`
	Pips          float64   `json:"pips"`
	TradeDayCount int       `json:"tradeDayCount"`
}

// CurrencySummary is the per-instrument breakdown reported by the metrics provider.
type CurrencySummary struct {
	Currency   string  `json:"currency"`
	Trades     int     `json:"trades"`
	WonTrades  int     `json:"wonTrades"`
	LostTrades int     `json:"lostTrades"`
	Profit     float64 `json:"profit"`
	Pips       float64 `json:"pips"`
}

// SeriesPoint is one balance observation fed to the chart series builder.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

const (
	SeriesBalance      = "balance"
	SeriesMaxDrawdown  = "max_drawdown"
	SeriesProfitTarget = "profit_target"
)

// SeriesRow is one row of the flat multi-category chart series. Exactly one
// of the value fields is set.
type SeriesRow struct {
	Date         time.Time `json:"date"`
	Balance      *float64  `json:"balance,omitempty"`
	MaxDrawdown  *float64  `json:"max_drawdown,omitempty"`
	ProfitTarget *float64  `json:"profit_target,omitempty"`
	Synthetic    bool      `json:"synthetic,omitempty"`
}

func (r SeriesRow) Category() string {
	switch {
	case r.Balance != nil:
		return SeriesBalance
	case r.MaxDrawdown != nil:
		return SeriesMaxDrawdown
	case r.ProfitTarget != nil:
		return SeriesProfitTarget
	default:
		return ""
	}
}

type ColorBand string

const (
	ColorBandGreen  ColorBand = "green"
	ColorBandYellow ColorBand = "yellow"
	ColorBandRed    ColorBand = "red"
)

// Gauge is a bounded progress indicator. Value is the threshold the gauge
// measures against and Current the observed value.
type Gauge struct {
	Value      float64   `json:"value"`
	Current    float64   `json:"current"`
	Percentage float64   `json:"percentage"`
	ColorBand  ColorBand `json:"colorBand"`
}

type Progress struct {
	Target       Gauge `json:"target"`
	Drawdown     Gauge `json:"drawdown"`
	ProfitFactor Gauge `json:"profitFactor"`
}

type MetricsSource string

const (
	MetricsSourceMetadata MetricsSource = "metadata"
	MetricsSourceProvider MetricsSource = "provider"
	MetricsSourceEmpty    MetricsSource = "empty"
)

// ChallengeDashboard is everything the dashboard pages render for one challenge.
type ChallengeDashboard struct {
	Challenge       Challenge       `json:"challenge"`
	Stage           Stage           `json:"stage"`
	InitialBalance  float64         `json:"initialBalance"`
	Metrics         MetricsSnapshot `json:"metrics"`
	MetricsSource   MetricsSource   `json:"metricsSource"`
	Progress        Progress        `json:"progress"`
	Series          []SeriesRow     `json:"series"`
	SyntheticSeries bool            `json:"syntheticSeries"`
	Generation      string          `json:"generation"`
	Sequence        int64           `json:"sequence"`
	ComputedAt      time.Time       `json:"computedAt"`
}
