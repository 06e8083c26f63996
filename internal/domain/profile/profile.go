package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"savewise/pkg/errors"
)

// Occupations and city tiers that carry their own one-hot flag.
// Anything else falls into the dropped baseline category.
const (
	OccupationRetired      = "Retired"
	OccupationSelfEmployed = "Self_Employed"
	OccupationStudent      = "Student"

	CityTier2 = "Tier_2"
	CityTier3 = "Tier_3"
)

// ExpenseFields lists the monthly expense categories in submission order
var ExpenseFields = []string{
	"Rent", "Loan_Repayment", "Insurance", "Groceries", "Transport",
	"Eating_Out", "Entertainment", "Utilities", "Healthcare", "Education", "Miscellaneous",
}

// PotentialSavingsFields lists the potential-savings categories in submission order
var PotentialSavingsFields = []string{
	"Potential_Savings_Groceries", "Potential_Savings_Transport", "Potential_Savings_Eating_Out",
	"Potential_Savings_Entertainment", "Potential_Savings_Utilities", "Potential_Savings_Healthcare",
	"Potential_Savings_Education", "Potential_Savings_Miscellaneous",
}

// Expenses holds the eleven monthly expense categories
type Expenses struct {
	Rent          float64 `json:"Rent"`
	LoanRepayment float64 `json:"Loan_Repayment"`
	Insurance     float64 `json:"Insurance"`
	Groceries     float64 `json:"Groceries"`
	Transport     float64 `json:"Transport"`
	EatingOut     float64 `json:"Eating_Out"`
	Entertainment float64 `json:"Entertainment"`
	Utilities     float64 `json:"Utilities"`
	Healthcare    float64 `json:"Healthcare"`
	Education     float64 `json:"Education"`
	Miscellaneous float64 `json:"Miscellaneous"`
}

// Total sums every expense category
func (e Expenses) Total() float64 {
	return e.Rent + e.LoanRepayment + e.Insurance + e.Groceries + e.Transport +
		e.EatingOut + e.Entertainment + e.Utilities + e.Healthcare + e.Education + e.Miscellaneous
}

// Essential sums rent, loan repayment, groceries, transport, utilities and healthcare
func (e Expenses) Essential() float64 {
	return e.Rent + e.LoanRepayment + e.Groceries + e.Transport + e.Utilities + e.Healthcare
}

// PotentialSavings holds the eight categories the user believes they can cut
type PotentialSavings struct {
	Groceries     float64 `json:"Potential_Savings_Groceries"`
	Transport     float64 `json:"Potential_Savings_Transport"`
	EatingOut     float64 `json:"Potential_Savings_Eating_Out"`
	Entertainment float64 `json:"Potential_Savings_Entertainment"`
	Utilities     float64 `json:"Potential_Savings_Utilities"`
	Healthcare    float64 `json:"Potential_Savings_Healthcare"`
	Education     float64 `json:"Potential_Savings_Education"`
	Miscellaneous float64 `json:"Potential_Savings_Miscellaneous"`
}

// Total sums every potential-savings category
func (p PotentialSavings) Total() float64 {
	return p.Groceries + p.Transport + p.EatingOut + p.Entertainment +
		p.Utilities + p.Healthcare + p.Education + p.Miscellaneous
}

// Profile is a user's financial profile as submitted for prediction.
// All fields are required. JSON keys are the literal submission names.
type Profile struct {
	Income                   float64 `json:"Income"`
	Age                      int     `json:"Age"`
	Dependents               int     `json:"Dependents"`
	Occupation               string  `json:"Occupation"`
	CityTier                 string  `json:"City_Tier"`
	DesiredSavingsPercentage float64 `json:"Desired_Savings_Percentage"`
	DisposableIncome         float64 `json:"Disposable_Income"`

	Expenses
	PotentialSavings
}

// Parse converts a decoded JSON object into a Profile.
//
// Reals accept JSON numbers, booleans and numeric strings. Age and Dependents
// additionally truncate fractional numbers toward zero but reject fractional
// strings. Fields are checked in a fixed order and the first problem is returned
// as *errors.ValidationError.
func Parse(raw map[string]interface{}) (Profile, error) {
	var p Profile
	var err error

	if p.Income, err = realField(raw, "Income"); err != nil {
		return Profile{}, err
	}
	if p.Age, err = intField(raw, "Age"); err != nil {
		return Profile{}, err
	}
	if p.Dependents, err = intField(raw, "Dependents"); err != nil {
		return Profile{}, err
	}
	if p.DesiredSavingsPercentage, err = realField(raw, "Desired_Savings_Percentage"); err != nil {
		return Profile{}, err
	}
	if p.DisposableIncome, err = realField(raw, "Disposable_Income"); err != nil {
		return Profile{}, err
	}

	expenses := []*float64{
		&p.Rent, &p.LoanRepayment, &p.Insurance, &p.Expenses.Groceries, &p.Expenses.Transport,
		&p.Expenses.EatingOut, &p.Expenses.Entertainment, &p.Expenses.Utilities,
		&p.Expenses.Healthcare, &p.Expenses.Education, &p.Expenses.Miscellaneous,
	}
	for i, name := range ExpenseFields {
		if *expenses[i], err = realField(raw, name); err != nil {
			return Profile{}, err
		}
	}

	potential := []*float64{
		&p.PotentialSavings.Groceries, &p.PotentialSavings.Transport, &p.PotentialSavings.EatingOut,
		&p.PotentialSavings.Entertainment, &p.PotentialSavings.Utilities, &p.PotentialSavings.Healthcare,
		&p.PotentialSavings.Education, &p.PotentialSavings.Miscellaneous,
	}
	for i, name := range PotentialSavingsFields {
		if *potential[i], err = realField(raw, name); err != nil {
			return Profile{}, err
		}
	}

	if p.Occupation, err = labelField(raw, "Occupation"); err != nil {
		return Profile{}, err
	}
	if p.CityTier, err = labelField(raw, "City_Tier"); err != nil {
		return Profile{}, err
	}

	return p, nil
}

// ParseJSON decodes a JSON object and parses it with Parse
func ParseJSON(data []byte) (Profile, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Profile{}, errors.NewValidationError("body", "malformed JSON object", err.Error())
	}
	return Parse(raw)
}

// UnmarshalJSON applies the same lenient rules as Parse so stored records
// written by other clients decode the same way requests do.
func (p *Profile) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func lookup(raw map[string]interface{}, field string) (interface{}, error) {
	v, ok := raw[field]
	if !ok {
		return nil, errors.NewMissingFieldError(field)
	}
	return v, nil
}

func realField(raw map[string]interface{}, field string) (float64, error) {
	v, err := lookup(raw, field)
	if err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case float64:
		return val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, errors.NewValidationError(field, "could not convert to float", val.String())
		}
		return f, nil
	case bool:
		return boolToFloat(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, errors.NewValidationError(field, "could not convert string to float", val)
		}
		return f, nil
	case nil:
		return 0, errors.NewValidationError(field, "must be a number, not null", nil)
	default:
		return 0, errors.NewValidationError(field, fmt.Sprintf("must be a number, not %T", v), v)
	}
}

func intField(raw map[string]interface{}, field string) (int, error) {
	v, err := lookup(raw, field)
	if err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case float64:
		return truncate(field, val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, errors.NewValidationError(field, "could not convert to int", val.String())
		}
		return truncate(field, f)
	case bool:
		return int(boolToFloat(val)), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, errors.NewValidationError(field, "invalid literal for int", val)
		}
		return i, nil
	case nil:
		return 0, errors.NewValidationError(field, "must be an integer, not null", nil)
	default:
		return 0, errors.NewValidationError(field, fmt.Sprintf("must be an integer, not %T", v), v)
	}
}

func truncate(field string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.NewValidationError(field, "cannot convert non-finite number to int", f)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, errors.NewValidationError(field, "integer out of range", f)
	}
	return int(math.Trunc(f)), nil
}

// labelField reads a categorical field. Non-string scalars are kept in their
// textual form; they never match a known category.
func labelField(raw map[string]interface{}, field string) (string, error) {
	v, err := lookup(raw, field)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	case map[string]interface{}, []interface{}:
		return "", errors.NewValidationError(field, "must be a string", v)
	default:
		return fmt.Sprint(val), nil
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
