package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
)

func sampleRecord() *prediction.Record {
	return &prediction.Record{
		ID:        "7",
		Timestamp: prediction.Timestamp{Time: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)},
		Input: profile.Profile{
			Income: 50000, Age: 30, Dependents: 1, Occupation: "Student", CityTier: "Tier_2",
			DesiredSavingsPercentage: 20, DisposableIncome: 10000,
			Expenses:         profile.Expenses{Rent: 1000, LoanRepayment: 500, Groceries: 300, EatingOut: 200},
			PotentialSavings: profile.PotentialSavings{Groceries: 50, EatingOut: 100},
		},
		Output: prediction.Result{
			Savings:   prediction.SavingsOutput{CanAchieveSavings: true, Confidence: 0.8},
			Amount:    prediction.AmountOutput{RecommendedSavings: 1500},
			MultiTask: prediction.MultiTaskOutput{CanAchieveSavings: true, SavingsConfidence: 0.7, RecommendedSavingsAmount: 1400, RiskScore: 0.2},
		},
	}
}

func TestRowRoundTrip(t *testing.T) {
	rec := sampleRecord()
	row := FromRecord(rec)

	assert.Equal(t, 1, row.IncomeBracketMiddle)
	assert.Equal(t, 1, row.OccupationStudent)
	assert.Equal(t, 1, row.SavingsDifficultyNaN)
	require.NotNil(t, row.EssentialExpenses)
	assert.Equal(t, 1800.0, *row.EssentialExpenses)
	require.NotNil(t, row.TotalExpenses)
	assert.Equal(t, 2000.0, *row.TotalExpenses)

	assert.Equal(t, *rec, row.ToRecord())
}

func TestRowNonFiniteDerivedValuesAreNull(t *testing.T) {
	rec := sampleRecord()
	rec.Input.Income = 0
	row := FromRecord(rec)

	assert.Nil(t, row.EssentialExpenseRatio)
	assert.Nil(t, row.DebtToIncomeRatio)
	assert.Nil(t, row.FinancialStressScore)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"debt_to_income_ratio":null`)
}

func TestRowJSONOmitsEmptyID(t *testing.T) {
	rec := sampleRecord()
	rec.ID = ""

	data, err := json.Marshal(FromRecord(rec))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.Contains(t, string(data), `"user_id":null`)
	assert.Contains(t, string(data), `"timestamp":"2025-05-01T12:00:00Z"`)
}

func TestRowIDAcceptsNumbersAndStrings(t *testing.T) {
	var rows []PredictionRow
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 42, "timestamp": "2025-05-01T12:00:00.123456+00:00"},
		{"id": "9b2c6f1e-0000-4000-8000-000000000000", "timestamp": "2025-05-01T12:00:00"}
	]`), &rows))

	assert.Equal(t, RowID("42"), rows[0].ID)
	assert.Equal(t, RowID("9b2c6f1e-0000-4000-8000-000000000000"), rows[1].ID)
}

func TestInsertColumns(t *testing.T) {
	cols := InsertColumns()
	assert.NotContains(t, cols, "id")
	assert.Equal(t, "timestamp", cols[0])
	assert.Contains(t, cols, "multi_task_risk_score")
	assert.Len(t, cols, 61)
}
