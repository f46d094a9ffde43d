package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

type ChallengeResult string

const (
	ChallengeResultInit        ChallengeResult = "init"
	ChallengeResultProgress    ChallengeResult = "progress"
	ChallengeResultApproved    ChallengeResult = "approved"
	ChallengeResultDisapproved ChallengeResult = "disapproved"
	ChallengeResultWithdrawal  ChallengeResult = "withdrawal"
	ChallengeResultRetry       ChallengeResult = "retry"
)

func (r ChallengeResult) Valid() bool {
	switch r {
	case ChallengeResultInit, ChallengeResultProgress, ChallengeResultApproved,
		ChallengeResultDisapproved, ChallengeResultWithdrawal, ChallengeResultRetry:
		return true
	}
	return false
}

// Active reports whether the challenge is still being traded.
func (r ChallengeResult) Active() bool {
	return r == ChallengeResultInit || r == ChallengeResultProgress
}

// BrokerAccount is the trading account a challenge runs on. IDMeta is the
// account id at the metrics provider.
type BrokerAccount struct {
	Login    string  `json:"login"`
	Balance  float64 `json:"balance"`
	Platform string  `json:"platform"`
	Server   string  `json:"server"`
	IDMeta   string  `json:"idMeta"`
}

// Challenge is one phase of a trading evaluation. Later phases point back to
// the originating record through ParentID.
type Challenge struct {
	ID            int64           `json:"id"`
	DocumentID    string          `json:"documentId"`
	Phase         int             `json:"phase"`
	ParentID      string          `json:"parentId,omitempty"`
	Result        ChallengeResult `json:"result"`
	StartDate     *time.Time      `json:"startDate,omitempty"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Metadata      RawMetadata     `json:"metadata"`
	BrokerAccount *BrokerAccount  `json:"broker_account,omitempty"`
}

func (c Challenge) InProgress() bool {
	return c.EndDate == nil
}

// AccountBalance returns the broker account balance, or 0 when no account is linked.
func (c Challenge) AccountBalance() float64 {
	if c.BrokerAccount == nil {
		return 0
	}
	return c.BrokerAccount.Balance
}

type MetadataKind int

const (
	MetadataAbsent MetadataKind = iota
	MetadataText
	MetadataObject
)

// RawMetadata holds the challenge metadata blob as it arrived: absent, a JSON
// encoded string, or an already decoded object.
type RawMetadata struct {
	kind   MetadataKind
	text   string
	fields map[string]any
}

func MetadataFromText(text string) RawMetadata {
	return RawMetadata{kind: MetadataText, text: text}
}

func MetadataFromObject(fields map[string]any) RawMetadata {
	if fields == nil {
		return RawMetadata{}
	}
	return RawMetadata{kind: MetadataObject, fields: fields}
}

func (m RawMetadata) Kind() MetadataKind {
	return m.kind
}

func (m RawMetadata) Text() string {
	return m.text
}

func (m RawMetadata) Fields() map[string]any {
	return m.fields
}

func (m *RawMetadata) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*m = RawMetadata{}
		return nil
	case trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*m = MetadataFromText(text)
		return nil
	case trimmed[0] == '{':
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*m = MetadataFromObject(fields)
		return nil
	default:
		// Arrays and scalars are kept verbatim; decoding rejects them later.
		*m = MetadataFromText(string(trimmed))
		return nil
	}
}

func (m RawMetadata) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case MetadataText:
		return json.Marshal(m.text)
	case MetadataObject:
		return json.Marshal(m.fields)
	default:
		return []byte("null"), nil
	}
}

// Stage holds the pass/fail thresholds of one phase of a program. Percentages
// are expressed as whole numbers (10 means 10%).
type Stage struct {
	ID                 int64   `json:"id,omitempty"`
	DocumentID         string  `json:"documentId,omitempty"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	ProfitTarget       float64 `json:"profitTarget"`
	MaximumDailyLoss   float64 `json:"maximumDailyLoss"`
	MaximumTotalLoss   float64 `json:"maximumTotalLoss"`
	MinimumTradingDays int     `json:"minimumTradingDays"`
	IsDefault          bool    `json:"isDefault,omitempty"`
}

const (
	DefaultProfitTarget     = 8.0
	DefaultMaximumDailyLoss = 5.0
	DefaultMaximumTotalLoss = 10.0
)

// DefaultStage is substituted whenever no configured stage applies.
func DefaultStage() Stage {
	return Stage{
		Name:             "Default",
		Description:      "Fallback thresholds",
		ProfitTarget:     DefaultProfitTarget,
		MaximumDailyLoss: DefaultMaximumDailyLoss,
		MaximumTotalLoss: DefaultMaximumTotalLoss,
		IsDefault:        true,
	}
}
