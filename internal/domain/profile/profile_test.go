package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/pkg/errors"
)

func rawProfile() map[string]interface{} {
	raw := map[string]interface{}{
		"Income":                     50000.0,
		"Age":                        30.0,
		"Dependents":                 1.0,
		"Occupation":                 "Student",
		"City_Tier":                  "Tier_2",
		"Desired_Savings_Percentage": 20.0,
		"Disposable_Income":          10000.0,
	}
	for _, f := range ExpenseFields {
		raw[f] = 100.0
	}
	for _, f := range PotentialSavingsFields {
		raw[f] = 10.0
	}
	return raw
}

func TestParseValidProfile(t *testing.T) {
	p, err := Parse(rawProfile())
	require.NoError(t, err)

	assert.Equal(t, 50000.0, p.Income)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 1, p.Dependents)
	assert.Equal(t, "Student", p.Occupation)
	assert.Equal(t, "Tier_2", p.CityTier)
	assert.Equal(t, 1100.0, p.Expenses.Total())
	assert.Equal(t, 600.0, p.Expenses.Essential())
	assert.Equal(t, 80.0, p.PotentialSavings.Total())
}

func TestParseLenientConversions(t *testing.T) {
	raw := rawProfile()
	raw["Income"] = " 42000.5 "
	raw["Age"] = 30.9
	raw["Dependents"] = "2"
	raw["Rent"] = true
	raw["Insurance"] = json.Number("12.5")

	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 42000.5, p.Income)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 2, p.Dependents)
	assert.Equal(t, 1.0, p.Rent)
	assert.Equal(t, 12.5, p.Insurance)
}

func TestParseNegativeAgeTruncatesTowardZero(t *testing.T) {
	raw := rawProfile()
	raw["Age"] = -1.7

	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, -1, p.Age)
}

func TestParseRejectsOutOfRangeIntegers(t *testing.T) {
	cases := map[string]interface{}{
		"Age":        1e20,
		"Dependents": -1e20,
	}
	for field, value := range cases {
		t.Run(field, func(t *testing.T) {
			raw := rawProfile()
			raw[field] = value

			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))

			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, field, ve.Field)
		})
	}

	raw := rawProfile()
	raw["Age"] = json.Number("1e20")
	_, err := Parse(raw)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestParseMissingField(t *testing.T) {
	raw := rawProfile()
	delete(raw, "Groceries")

	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingField))

	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Groceries", ve.Field)
}

func TestParseReportsFirstProblemInFieldOrder(t *testing.T) {
	raw := rawProfile()
	delete(raw, "City_Tier")
	raw["Income"] = "lots"

	_, err := Parse(raw)
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Income", ve.Field)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestParseInvalidValues(t *testing.T) {
	cases := map[string]interface{}{
		"Income":     nil,
		"Age":        "30.5",
		"Dependents": []interface{}{1},
		"Rent":       "abc",
		"Occupation": map[string]interface{}{"x": 1},
	}
	for field, value := range cases {
		t.Run(field, func(t *testing.T) {
			raw := rawProfile()
			raw[field] = value

			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestProfileJSONRoundTrip(t *testing.T) {
	p, err := Parse(rawProfile())
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Potential_Savings_Groceries":10`)
	assert.Contains(t, string(data), `"City_Tier":"Tier_2"`)

	var back Profile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}
