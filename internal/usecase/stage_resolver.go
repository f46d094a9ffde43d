package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"challenge_server/internal/domain"
)

// ResolveStage picks the stage governing phase. Programs with two or three
// stages reuse the first stage record for phases 2 and 3. Without stages, or
// with a non-positive phase, the default stage is returned.
func ResolveStage(phase int, stages []domain.Stage) domain.Stage {
	n := len(stages)
	if n == 0 || phase < 1 {
		return domain.DefaultStage()
	}

	var idx int
	if (n == 2 || n == 3) && (phase == 2 || phase == 3) {
		idx = 0
	} else {
		idx = min(phase-1, n-1)
	}
	if idx < 0 || idx > n-1 {
		idx = 0
	}
	return stages[idx]
}

// ResolveStageFromRaw parses the phase before resolving. On parse failure the
// default stage is returned together with ErrInvalidPhase.
func ResolveStageFromRaw(raw any, stages []domain.Stage) (domain.Stage, error) {
	phase, err := ParsePhase(raw)
	if err != nil {
		return domain.DefaultStage(), err
	}
	return ResolveStage(phase, stages), nil
}

// ParsePhase accepts positive integers, integral floats and numeric strings.
func ParsePhase(raw any) (int, error) {
	var phase int
	switch val := raw.(type) {
	case int:
		phase = val
	case int64:
		phase = int(val)
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPhase, val)
		}
		phase = int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidPhase, val)
		}
		phase = parsed
	default:
		f, ok := asFloat(raw)
		if !ok || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPhase, raw)
		}
		phase = int(f)
	}
	if phase < 1 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidPhase, phase)
	}
	return phase, nil
}

// DecodeStages maps loosely typed stage objects from the CMS or from
// challenge metadata. Entries that are not objects are skipped.
func DecodeStages(raw any) []domain.Stage {
	items := toMapSlice(raw)
	if len(items) == 0 {
		return nil
	}
	stages := make([]domain.Stage, 0, len(items))
	for _, item := range items {
		stages = append(stages, decodeStage(item))
	}
	return stages
}

func decodeStage(fields map[string]any) domain.Stage {
	stage := domain.Stage{
		ID:          int64(toFloat(fields["id"])),
		DocumentID:  toString(fields["documentId"]),
		Name:        toString(fields["name"]),
		Description: toString(fields["description"]),
	}
	stage.ProfitTarget, _ = lookupFloat(fields, "profitTarget", "profit_target", "target")
	stage.MaximumDailyLoss, _ = lookupFloat(fields, "maximumDailyLoss", "maximum_daily_loss", "max_daily_loss", "maxDailyLoss")
	stage.MaximumTotalLoss, _ = lookupFloat(fields, "maximumTotalLoss", "maximum_total_loss", "max_loss", "maxLoss", "maxDrawdownPercent")
	days, _ := lookupFloat(fields, "minimumTradingDays", "minimum_trading_days", "minTradingDays")
	stage.MinimumTradingDays = int(days)
	return stage
}
