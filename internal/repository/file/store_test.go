package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
)

func record(income float64, at time.Time) *prediction.Record {
	return &prediction.Record{
		Timestamp: prediction.Timestamp{Time: at},
		Input:     profile.Profile{Income: income, Age: 30, Occupation: "Student", CityTier: "Tier_2"},
		Output:    prediction.Result{Amount: prediction.AmountOutput{RecommendedSavings: income / 10}},
	}
}

func TestListMissingFileIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "user_data.json"))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateOverwritesSingleSlot(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "user_data.json"))
	now := time.Now()

	_, err := store.Create(ctx, record(1000, now))
	require.NoError(t, err)
	stored, err := store.Create(ctx, record(2000, now.Add(time.Second)))
	require.NoError(t, err)
	assert.Equal(t, 2000.0, stored.Input.Income)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2000.0, records[0].Input.Income)
	assert.Equal(t, 200.0, records[0].Output.Amount.RecommendedSavings)
}

func TestCreateDropsBackendID(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "user_data.json"))
	rec := record(1000, time.Now())
	rec.ID = "remote-42"

	stored, err := store.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, stored.ID)
	assert.Equal(t, "remote-42", rec.ID)
}

func TestListReadsForeignDocumentNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	doc := `{"predictions": [
		{"timestamp": "2025-01-01T10:00:00.000001", "input": %s, "output": {}},
		{"timestamp": "2025-01-02T10:00:00.000001", "input": %s, "output": {}}
	]}`
	input := `{"Income": "1000", "Age": 30, "Dependents": 0, "Occupation": "Retired", "City_Tier": "Tier_1",
		"Desired_Savings_Percentage": 10, "Disposable_Income": 100,
		"Rent": 0, "Loan_Repayment": 0, "Insurance": 0, "Groceries": 0, "Transport": 0, "Eating_Out": 0,
		"Entertainment": 0, "Utilities": 0, "Healthcare": 0, "Education": 0, "Miscellaneous": 0,
		"Potential_Savings_Groceries": 0, "Potential_Savings_Transport": 0, "Potential_Savings_Eating_Out": 0,
		"Potential_Savings_Entertainment": 0, "Potential_Savings_Utilities": 0, "Potential_Savings_Healthcare": 0,
		"Potential_Savings_Education": 0, "Potential_Savings_Miscellaneous": 0}`
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(doc, input, input)), 0o644))

	records, err := NewStore(path).List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Timestamp.Day())
	assert.Equal(t, 1000.0, records[0].Input.Income)
}

func TestListCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).List(context.Background())
	assert.Error(t, err)
}

func TestConcurrentCreatesLeaveOneValidRecord(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "user_data.json"))

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Create(ctx, record(float64(i*1000), time.Now()))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
