package usecase

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"challenge_server/internal/domain"
)

const (
	syntheticDays = 30
	// syntheticSwing bounds a synthetic daily move as a fraction of the initial balance.
	syntheticSwing = 0.02
)

type SeriesInput struct {
	Points []domain.SeriesPoint
	// MaxDrawdown and ProfitTarget are absolute balance levels. Nil values
	// are derived from the default stage when InitialBalance is known.
	MaxDrawdown    *float64
	ProfitTarget   *float64
	InitialBalance float64
	// Now anchors the synthetic placeholder walk. Zero means time.Now.
	Now time.Time
}

// BuildSeries flattens balance points and the two threshold lines into the
// row format the line chart consumes. Threshold lines hold two rows each, at
// the first and last balance date. Without points, a placeholder walk marked
// Synthetic is generated from the initial balance.
func BuildSeries(in SeriesInput) []domain.SeriesRow {
	points := make([]domain.SeriesPoint, len(in.Points))
	copy(points, in.Points)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	synthetic := false
	if len(points) == 0 {
		if in.InitialBalance <= 0 {
			return nil
		}
		now := in.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		points = syntheticWalk(in.InitialBalance, now)
		synthetic = true
	}

	drawdown := in.MaxDrawdown
	if drawdown == nil && in.InitialBalance > 0 {
		v := in.InitialBalance - in.InitialBalance*domain.DefaultMaximumTotalLoss/100
		drawdown = &v
	}
	target := in.ProfitTarget
	if target == nil && in.InitialBalance > 0 {
		v := in.InitialBalance + in.InitialBalance*domain.DefaultProfitTarget/100
		target = &v
	}

	rows := make([]domain.SeriesRow, 0, len(points)+4)
	for _, p := range points {
		value := p.Value
		rows = append(rows, domain.SeriesRow{Date: p.Date, Balance: &value, Synthetic: synthetic})
	}

	first, last := points[0].Date, points[len(points)-1].Date
	if drawdown != nil {
		v := *drawdown
		rows = append(rows,
			domain.SeriesRow{Date: first, MaxDrawdown: &v},
			domain.SeriesRow{Date: last, MaxDrawdown: &v},
		)
	}
	if target != nil {
		v := *target
		rows = append(rows,
			domain.SeriesRow{Date: first, ProfitTarget: &v},
			domain.SeriesRow{Date: last, ProfitTarget: &v},
		)
	}
	return rows
}

// syntheticWalk is seeded from the initial balance so the same account always
// renders the same placeholder.
func syntheticWalk(initial float64, now time.Time) []domain.SeriesPoint {
	rng := rand.New(rand.NewSource(int64(math.Round(initial * 100))))
	start := now.Truncate(24*time.Hour).AddDate(0, 0, -(syntheticDays - 1))

	points := make([]domain.SeriesPoint, 0, syntheticDays)
	balance := initial
	for i := 0; i < syntheticDays; i++ {
		if i > 0 {
			balance += (rng.Float64()*2 - 1) * syntheticSwing * initial
		}
		points = append(points, domain.SeriesPoint{
			Date:  start.AddDate(0, 0, i),
			Value: math.Round(balance*100) / 100,
		})
	}
	return points
}

// SeriesPointsFromRaw reads provider or metadata points, accepting the date
// under date, brokerTime, time or t. Undated entries are dropped.
func SeriesPointsFromRaw(items []map[string]any) []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, len(items))
	for _, item := range items {
		d, _ := lookup(item, "date", "brokerTime", "time", "t")
		ts := parseTime(d)
		if ts.IsZero() {
			continue
		}
		value, _ := lookupFloat(item, "balance", "equity", "value", "lastBalance")
		points = append(points, domain.SeriesPoint{Date: ts, Value: value})
	}
	return points
}

// SeriesPointsFromSnapshot prefers the daily growth series and falls back to
// the equity chart balances.
func SeriesPointsFromSnapshot(s domain.MetricsSnapshot) []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, max(len(s.DailyGrowth), len(s.EquityChart)))
	for _, g := range s.DailyGrowth {
		if g.Date.IsZero() {
			continue
		}
		points = append(points, domain.SeriesPoint{Date: g.Date, Value: g.Balance})
	}
	if len(points) > 0 {
		return points
	}
	for _, e := range s.EquityChart {
		points = append(points, domain.SeriesPoint{Date: e.Time, Value: e.Balance})
	}
	return points
}
