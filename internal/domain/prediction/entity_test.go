package prediction

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampLayouts(t *testing.T) {
	for _, s := range []string{
		"2025-03-01T10:15:30.123456",
		"2025-03-01T10:15:30",
		"2025-03-01T10:15:30.123456+00:00",
		"2025-03-01T10:15:30Z",
		"2025-03-01 10:15:30.5+05:30",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2025, ts.Year(), s)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestampWithoutOffsetIsLocal(t *testing.T) {
	ts, err := ParseTimestamp("2025-03-01T10:15:30")
	require.NoError(t, err)
	assert.Equal(t, time.Local, ts.Location())
}

func TestResultJSONShape(t *testing.T) {
	res := Result{
		Savings:   SavingsOutput{CanAchieveSavings: true, Confidence: 0.9},
		Amount:    AmountOutput{RecommendedSavings: 1200},
		MultiTask: MultiTaskOutput{RiskScore: 0.1},
	}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["savings_model"]["can_achieve_savings"])
	assert.Equal(t, 1200.0, decoded["amount_model"]["recommended_savings"])
	assert.Contains(t, decoded["multi_task_model"], "recommended_savings_amount")
	assert.Contains(t, decoded["multi_task_model"], "financial_risk")
}

func TestRecordTimestampRoundTrip(t *testing.T) {
	rec := Record{Timestamp: Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC)}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2025-01-02T03:04:05.000006Z"`)
	assert.NotContains(t, string(data), `"id"`)
}

func TestHistoryLatest(t *testing.T) {
	_, ok := History{}.Latest()
	assert.False(t, ok)

	h := History{Records: []Record{{ID: "new"}, {ID: "old"}}, Source: SourceRemote}
	rec, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "new", rec.ID)
}
