package prediction

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"savewise/internal/domain/profile"
	"savewise/pkg/errors"
)

// SavingsOutput is the binary classifier's answer
type SavingsOutput struct {
	CanAchieveSavings bool    `json:"can_achieve_savings"`
	Confidence        float64 `json:"confidence"`
}

// AmountOutput is the regressor's answer
type AmountOutput struct {
	RecommendedSavings float64 `json:"recommended_savings"`
}

// MultiTaskOutput combines the three heads of the multi-output model
type MultiTaskOutput struct {
	CanAchieveSavings        bool    `json:"can_achieve_savings"`
	SavingsConfidence        float64 `json:"savings_confidence"`
	RecommendedSavingsAmount float64 `json:"recommended_savings_amount"`
	FinancialRisk            bool    `json:"financial_risk"`
	RiskScore                float64 `json:"risk_score"`
}

// Result is the aggregated ensemble response
type Result struct {
	Savings   SavingsOutput   `json:"savings_model"`
	Amount    AmountOutput    `json:"amount_model"`
	MultiTask MultiTaskOutput `json:"multi_task_model"`
}

// Record is one persisted (input, output) pair. Records are never mutated
// after creation.
type Record struct {
	ID        string          `json:"id,omitempty"`
	Timestamp Timestamp       `json:"timestamp"`
	Input     profile.Profile `json:"input"`
	Output    Result          `json:"output"`
}

// NewRecord stamps a fresh record with the current local time
func NewRecord(input profile.Profile, output Result) *Record {
	return &Record{
		Timestamp: Timestamp{Time: time.Now()},
		Input:     input,
		Output:    output,
	}
}

// Timestamp is an ISO-8601 instant. It accepts timestamps with or without a
// zone offset since both appear in stored data.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses any of the accepted layouts. Values without an
// offset are read as local time.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, errors.NewValidationError("timestamp", "not an ISO-8601 timestamp", s)
}

func (t Timestamp) String() string {
	return t.Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "timestamp must be a string")
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return errors.Newf("cannot scan %T into timestamp", src)
	}
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}
