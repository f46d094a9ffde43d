package usecase

import "challenge_server/internal/domain"

// TargetProfitFactor is the profit factor at which the gauge reads 100%.
const TargetProfitFactor = 2.0

const (
	bandHigh = 80.0
	bandMid  = 40.0
)

// ComputeProgress derives the three dashboard gauges. The gauges are
// independent of each other.
func ComputeProgress(snapshot domain.MetricsSnapshot, stage domain.Stage, initialBalance float64) domain.Progress {
	return domain.Progress{
		Target:       targetGauge(snapshot.Balance, stage.ProfitTarget, initialBalance),
		Drawdown:     drawdownGauge(snapshot.MaxDrawdownPercent, stage.MaximumTotalLoss),
		ProfitFactor: profitFactorGauge(snapshot.ProfitFactor),
	}
}

func targetGauge(current, profitTargetPercent, initial float64) domain.Gauge {
	target := initial + initial*profitTargetPercent/100

	var pct float64
	switch {
	case initial <= 0 || current <= initial:
		pct = 0
	case current >= target:
		pct = 100
	default:
		pct = clamp((current-initial)/(target-initial)*100, 0, 100)
	}

	return domain.Gauge{
		Value:      target,
		Current:    current,
		Percentage: pct,
		ColorBand:  positiveBand(pct),
	}
}

func drawdownGauge(actualPercent, allowedPercent float64) domain.Gauge {
	pct := clamp(safeDivide(actualPercent, allowedPercent)*100, 0, 100)
	return domain.Gauge{
		Value:      allowedPercent,
		Current:    actualPercent,
		Percentage: pct,
		ColorBand:  inverseBand(pct),
	}
}

func profitFactorGauge(current float64) domain.Gauge {
	pct := clamp(current/TargetProfitFactor*100, 0, 100)
	return domain.Gauge{
		Value:      TargetProfitFactor,
		Current:    current,
		Percentage: pct,
		ColorBand:  positiveBand(pct),
	}
}

// positiveBand colors gauges where a higher reading is better.
func positiveBand(pct float64) domain.ColorBand {
	switch {
	case pct >= bandHigh:
		return domain.ColorBandGreen
	case pct >= bandMid:
		return domain.ColorBandYellow
	default:
		return domain.ColorBandRed
	}
}

// inverseBand colors gauges where a higher reading is worse.
func inverseBand(pct float64) domain.ColorBand {
	switch {
	case pct >= bandHigh:
		return domain.ColorBandRed
	case pct >= bandMid:
		return domain.ColorBandYellow
	default:
		return domain.ColorBandGreen
	}
}
