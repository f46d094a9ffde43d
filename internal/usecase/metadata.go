package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"challenge_server/internal/domain"
)

// metricAliases maps each canonical snapshot field to every name it has been
// stored under, in lookup order.
var metricAliases = map[string][]string{
	"trades":             {"trades", "totalTrades", "total_trades"},
	"wonTrades":          {"wonTrades", "won_trades", "winningTrades"},
	"lostTrades":         {"lostTrades", "lost_trades", "losingTrades"},
	"wonTradesPercent":   {"wonTradesPercent", "won_trades_percent", "winRate"},
	"lostTradesPercent":  {"lostTradesPercent", "lost_trades_percent", "lossRate"},
	"averageWin":         {"averageWin", "average_win", "avgWin"},
	"averageLoss":        {"averageLoss", "average_loss", "avgLoss"},
	"balance":            {"balance", "currentBalance", "current_balance"},
	"equity":             {"equity", "currentEquity", "current_equity"},
	"profit":             {"profit", "netProfit", "net_profit"},
	"maxDrawdown":        {"maxDrawdown", "max_drawdown", "maxDrawdownAbsolute", "absoluteDrawdown"},
	"maxDrawdownPercent": {"maxDrawdownPercent", "max_drawdown_percent", "maxDrawdownPct", "relativeDrawdown"},
	"profitFactor":       {"profitFactor", "profit_factor"},
	"expectancy":         {"expectancy"},
	"deposits":           {"deposits", "initialBalance", "initial_balance", "startBalance"},
	"dailyGrowth":        {"dailyGrowth", "daily_growth"},
	"equityChart":        {"equityChart", "equity_chart"},
	"currencySummary":    {"currencySummary", "currency_summary"},
}

var stageListKeys = []string{"stages", "challengeStages", "challenge_stages"}

type NormalizeOptions struct {
	// InitialBalance is used when the metrics carry no deposits figure.
	InitialBalance float64
	// Now anchors synthesized equity points. Zero means time.Now.
	Now time.Time
}

func (o NormalizeOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

type DecodedMetadata struct {
	Metrics domain.MetricsSnapshot
	Stages  []domain.Stage
}

// DecodeMetadata turns a challenge metadata blob into a normalized snapshot.
// Unparseable text, absent metadata, and objects carrying neither a metrics
// sub-object nor a trades field yield ErrInvalidMetadata.
func DecodeMetadata(raw domain.RawMetadata, opts NormalizeOptions) (DecodedMetadata, error) {
	fields, err := metadataFields(raw)
	if err != nil {
		return DecodedMetadata{}, err
	}

	metrics, hasMetrics := nestedObject(fields["metrics"])
	_, hasTrades := lookup(fields, "trades")
	if !hasMetrics && !hasTrades {
		return DecodedMetadata{}, fmt.Errorf("%w: no metrics or trades field", domain.ErrInvalidMetadata)
	}

	merged := make(map[string]any, len(fields)+len(metrics))
	for k, v := range fields {
		if k == "metrics" {
			continue
		}
		merged[k] = v
	}
	for k, v := range metrics {
		merged[k] = v
	}

	var stages []domain.Stage
	if v, ok := lookup(fields, stageListKeys...); ok {
		stages = DecodeStages(v)
	}

	return DecodedMetadata{
		Metrics: NormalizeMetrics(merged, opts),
		Stages:  stages,
	}, nil
}

func metadataFields(raw domain.RawMetadata) (map[string]any, error) {
	switch raw.Kind() {
	case domain.MetadataObject:
		return raw.Fields(), nil
	case domain.MetadataText:
		text := strings.TrimSpace(raw.Text())
		if text == "" {
			return nil, fmt.Errorf("%w: empty", domain.ErrInvalidMetadata)
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMetadata, err)
		}
		fields, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: not an object", domain.ErrInvalidMetadata)
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("%w: absent", domain.ErrInvalidMetadata)
	}
}

// nestedObject accepts an object or a JSON string holding one.
func nestedObject(v any) (map[string]any, bool) {
	if m, ok := toMap(v); ok {
		return m, true
	}
	text, ok := v.(string)
	if !ok {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func lookupMetric(fields map[string]any, name string) (float64, bool) {
	return lookupFloat(fields, metricAliases[name]...)
}

func metricInt(fields map[string]any, name string) int {
	v, _ := lookupMetric(fields, name)
	return int(v)
}

// NormalizeMetrics builds a snapshot from loosely named metric fields,
// defaulting absent numbers to 0 and deriving what can be derived.
func NormalizeMetrics(fields map[string]any, opts NormalizeOptions) domain.MetricsSnapshot {
	if fields == nil {
		fields = map[string]any{}
	}
	now := opts.now()

	s := domain.MetricsSnapshot{
		Trades:     metricInt(fields, "trades"),
		WonTrades:  metricInt(fields, "wonTrades"),
		LostTrades: metricInt(fields, "lostTrades"),
	}
	s.AverageWin, _ = lookupMetric(fields, "averageWin")
	s.AverageLoss, _ = lookupMetric(fields, "averageLoss")

	initial, ok := lookupMetric(fields, "deposits")
	if !ok || initial <= 0 {
		initial = opts.InitialBalance
	}
	s.Deposits = initial

	profit, hasProfit := lookupMetric(fields, "profit")
	balance, hasBalance := lookupMetric(fields, "balance")
	equity, hasEquity := lookupMetric(fields, "equity")
	if !hasBalance && initial > 0 && hasProfit {
		balance, hasBalance = initial+profit, true
	}
	if !hasBalance && hasEquity {
		balance, hasBalance = equity, true
	}
	if !hasEquity {
		equity = balance
	}
	if !hasProfit && hasBalance && initial > 0 {
		profit = balance - initial
	}
	s.Balance, s.Equity, s.Profit = balance, equity, profit

	if v, ok := lookupMetric(fields, "wonTradesPercent"); ok {
		s.WonTradesPercent = v
	} else if s.Trades > 0 {
		s.WonTradesPercent = float64(s.WonTrades) / float64(s.Trades) * 100
	}
	if v, ok := lookupMetric(fields, "lostTradesPercent"); ok {
		s.LostTradesPercent = v
	} else if s.Trades > 0 {
		s.LostTradesPercent = float64(s.LostTrades) / float64(s.Trades) * 100
	}

	if v, ok := lookupMetric(fields, "profitFactor"); ok {
		s.ProfitFactor = v
	} else {
		s.ProfitFactor = safeDivide(float64(s.WonTrades)*s.AverageWin, math.Abs(float64(s.LostTrades)*s.AverageLoss))
	}

	// averageLoss arrives signed negative.
	if v, ok := lookupMetric(fields, "expectancy"); ok {
		s.Expectancy = v
	} else {
		s.Expectancy = s.WonTradesPercent/100*s.AverageWin + s.LostTradesPercent/100*s.AverageLoss
	}

	dd, hasDD := lookupMetric(fields, "maxDrawdown")
	ddPct, hasDDPct := lookupMetric(fields, "maxDrawdownPercent")
	switch {
	case hasDD && hasDDPct:
	case hasDD:
		ddPct = safeDivide(dd, initial) * 100
	case hasDDPct:
		dd = ddPct / 100 * initial
	case hasBalance && initial > 0:
		dd = math.Max(0, initial-balance)
		ddPct = dd / initial * 100
	}
	s.MaxDrawdown, s.MaxDrawdownPercent = dd, ddPct

	if v, ok := lookup(fields, metricAliases["dailyGrowth"]...); ok {
		s.DailyGrowth = decodeGrowth(v)
	}
	if v, ok := lookup(fields, metricAliases["currencySummary"]...); ok {
		s.CurrencySummary = decodeCurrencySummary(v)
	}

	var chart []domain.EquityPoint
	if v, ok := lookup(fields, metricAliases["equityChart"]...); ok {
		chart = DecodeEquityChart(toMapSlice(v))
	}
	s.EquityChart = ensureEquityChart(chart, initial, s.Equity, s.Balance, now)

	return s
}

// DecodeEquityChart reads provider equity points, dropping undated entries,
// and returns them in ascending time order.
func DecodeEquityChart(items []map[string]any) []domain.EquityPoint {
	points := make([]domain.EquityPoint, 0, len(items))
	for _, item := range items {
		v, _ := lookup(item, "t", "time", "date", "brokerTime", "startBrokerTime")
		ts := parseTime(v)
		if ts.IsZero() {
			continue
		}
		equity, hasEquity := lookupFloat(item, "equity", "averageEquity", "lastEquity", "maxEquity")
		balance, hasBalance := lookupFloat(item, "balance", "averageBalance", "lastBalance", "maxBalance")
		if !hasBalance {
			balance = equity
		}
		if !hasEquity {
			equity = balance
		}
		points = append(points, domain.EquityPoint{Time: ts, Equity: equity, Balance: balance})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points
}

// ensureEquityChart guarantees at least two ordered points.
func ensureEquityChart(chart []domain.EquityPoint, initial, equity, balance float64, now time.Time) []domain.EquityPoint {
	switch len(chart) {
	case 0:
		return []domain.EquityPoint{
			{Time: now.Add(-24 * time.Hour), Equity: initial, Balance: initial},
			{Time: now, Equity: equity, Balance: balance},
		}
	case 1:
		first := domain.EquityPoint{Time: chart[0].Time.Add(-24 * time.Hour), Equity: initial, Balance: initial}
		return []domain.EquityPoint{first, chart[0]}
	default:
		return chart
	}
}

func decodeGrowth(v any) []domain.GrowthPoint {
	items := toMapSlice(v)
	points := make([]domain.GrowthPoint, 0, len(items))
	for _, item := range items {
		d, _ := lookup(item, "date", "brokerTime", "time")
		points = append(points, domain.GrowthPoint{
			Date:          parseTime(d),
			Balance:       toFloat(item["balance"]),
			Gains:         toFloat(item["gains"]),
			Lots:          toFloat(item["lots"]),
			Pips:          toFloat(item["pips"]),
			TradeDayCount: toInt(item["tradeDayCount"]),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func decodeCurrencySummary(v any) []domain.CurrencySummary {
	items := toMapSlice(v)
	out := make([]domain.CurrencySummary, 0, len(items))
	for _, item := range items {
		totals := item
		if nested, ok := toMap(item["total"]); ok {
			totals = nested
		}
		out = append(out, domain.CurrencySummary{
			Currency:   toString(item["currency"]),
			Trades:     toInt(totals["trades"]),
			WonTrades:  toInt(totals["wonTrades"]),
			LostTrades: toInt(totals["lostTrades"]),
			Profit:     toFloat(totals["profit"]),
			Pips:       toFloat(totals["pips"]),
		})
	}
	return out
}
