package httpclient

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"challenge_server/internal/domain"
)

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func parseTimePtr(v any) *time.Time {
	raw := strings.TrimSpace(toString(v))
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// flatten lifts Strapi v4 style {id, attributes: {...}} and {data: {...}}
// wrappers so both API versions decode the same way.
func flatten(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if inner, ok := m["data"]; ok && len(m) == 1 {
		return flatten(inner)
	}
	attrs, ok := m["attributes"].(map[string]any)
	if !ok {
		return m
	}
	out := make(map[string]any, len(attrs)+1)
	for k, val := range attrs {
		out[k] = val
	}
	if id, ok := m["id"]; ok {
		out["id"] = id
	}
	return out
}

func decodeChallenge(v any) (domain.Challenge, error) {
	m := flatten(v)
	if m == nil {
		return domain.Challenge{}, fmt.Errorf("unexpected challenge payload %T", v)
	}

	c := domain.Challenge{
		ID:         int64(toFloat(m["id"])),
		DocumentID: toString(m["documentId"]),
		Phase:      int(toFloat(m["phase"])),
		ParentID:   toString(m["parentId"]),
		Result:     domain.ChallengeResult(strings.ToLower(strings.TrimSpace(toString(m["result"])))),
		StartDate:  parseTimePtr(m["startDate"]),
		EndDate:    parseTimePtr(m["endDate"]),
	}

	switch meta := m["metadata"].(type) {
	case string:
		c.Metadata = domain.MetadataFromText(meta)
	case map[string]any:
		c.Metadata = domain.MetadataFromObject(meta)
	}

	if account := flatten(m["broker_account"]); account != nil {
		c.BrokerAccount = &domain.BrokerAccount{
			Login:    toString(account["login"]),
			Balance:  toFloat(account["balance"]),
			Platform: toString(account["platform"]),
			Server:   toString(account["server"]),
			IDMeta:   toString(account["idMeta"]),
		}
	}
	return c, nil
}
