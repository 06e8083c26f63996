package features

import (
	"encoding/json"
	"os"

	"savewise/pkg/errors"
)

// Spec is the ordered list of feature names a model set was trained on:
// numerical features followed by categorical ones.
// Order must match the training script. Nothing at runtime can detect a
// reordering; a wrong order silently corrupts every prediction.
type Spec struct {
	Numerical   []string `json:"numerical_features"`
	Categorical []string `json:"categorical_features"`
}

// Names returns the full vector order
func (s Spec) Names() []string {
	names := make([]string, 0, s.Len())
	names = append(names, s.Numerical...)
	return append(names, s.Categorical...)
}

// Len is the vector length the models expect
func (s Spec) Len() int {
	return len(s.Numerical) + len(s.Categorical)
}

// LoadSpec reads feature_info.json produced at training time
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "read feature info %s", path)
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Spec{}, errors.Wrapf(err, "decode feature info %s", path)
	}
	if spec.Len() == 0 {
		return Spec{}, errors.Wrapf(errors.ErrInvalidInput, "feature info %s lists no features", path)
	}

	return spec, nil
}

// DefaultSpec lists every feature the encoder knows, in the order the API
// documents them. It is a fixture for tests; the service loads
// feature_info.json and refuses to start without it.
func DefaultSpec() Spec {
	return Spec{
		Numerical: []string{
			"Income", "Age", "Dependents",
			"Rent", "Loan_Repayment", "Insurance", "Groceries", "Transport", "Eating_Out",
			"Entertainment", "Utilities", "Healthcare", "Education", "Miscellaneous",
			"Desired_Savings_Percentage", "Disposable_Income",
			"Potential_Savings_Groceries", "Potential_Savings_Transport", "Potential_Savings_Eating_Out",
			"Potential_Savings_Entertainment", "Potential_Savings_Utilities", "Potential_Savings_Healthcare",
			"Potential_Savings_Education", "Potential_Savings_Miscellaneous",
			"Savings_Rate", "Actual_Savings_Potential", "Essential_Expenses", "Essential_Expense_Ratio",
			"Non_Essential_Income", "Expense_Efficiency", "Total_Expenses", "Debt_to_Income_Ratio",
			"Financial_Stress_Score",
		},
		Categorical: []string{
			"Occupation_Retired", "Occupation_Self_Employed", "Occupation_Student",
			"City_Tier_Tier_2", "City_Tier_Tier_3",
			"Age_Group_Young_Adult", "Age_Group_Mid_Career", "Age_Group_Pre_Retirement", "Age_Group_Senior",
			"Income_Bracket_Low_Income", "Income_Bracket_Lower_Mid", "Income_Bracket_Middle", "Income_Bracket_Upper_Mid",
			"Savings_Difficulty_Moderate", "Savings_Difficulty_Very_Hard", "Savings_Difficulty_nan",
		},
	}
}
