package testsupport

import (
	"time"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
)

// ProfileFixture provides builder pattern for creating test profiles
type ProfileFixture struct {
	p profile.Profile
}

// NewProfileFixture creates a salaried Tier_1 profile with a comfortable margin
func NewProfileFixture() *ProfileFixture {
	return &ProfileFixture{
		p: profile.Profile{
			Income:                   50000,
			Age:                      30,
			Dependents:               1,
			Occupation:               "Professional",
			CityTier:                 "Tier_1",
			DesiredSavingsPercentage: 10,
			DisposableIncome:         20000,
			Expenses: profile.Expenses{
				Rent:          10000,
				LoanRepayment: 2000,
				Insurance:     1000,
				Groceries:     5000,
				Transport:     2000,
				EatingOut:     1500,
				Entertainment: 1000,
				Utilities:     2000,
				Healthcare:    1000,
				Education:     500,
				Miscellaneous: 500,
			},
			PotentialSavings: profile.PotentialSavings{
				Groceries:     500,
				Transport:     200,
				EatingOut:     300,
				Entertainment: 200,
				Utilities:     100,
				Healthcare:    50,
				Education:     50,
				Miscellaneous: 100,
			},
		},
	}
}

// WithIncome sets the monthly income
func (f *ProfileFixture) WithIncome(income float64) *ProfileFixture {
	f.p.Income = income
	return f
}

// WithAge sets the age
func (f *ProfileFixture) WithAge(age int) *ProfileFixture {
	f.p.Age = age
	return f
}

// WithOccupation sets the occupation label
func (f *ProfileFixture) WithOccupation(occupation string) *ProfileFixture {
	f.p.Occupation = occupation
	return f
}

// WithCityTier sets the city tier label
func (f *ProfileFixture) WithCityTier(tier string) *ProfileFixture {
	f.p.CityTier = tier
	return f
}

// WithDisposable sets the disposable income
func (f *ProfileFixture) WithDisposable(disposable float64) *ProfileFixture {
	f.p.DisposableIncome = disposable
	return f
}

// Build returns the constructed profile
func (f *ProfileFixture) Build() profile.Profile {
	return f.p
}

// Raw returns the profile as a decoded JSON object keyed by submission names
func (f *ProfileFixture) Raw() map[string]interface{} {
	p := f.p
	return map[string]interface{}{
		"Income":                          p.Income,
		"Age":                             float64(p.Age),
		"Dependents":                      float64(p.Dependents),
		"Occupation":                      p.Occupation,
		"City_Tier":                       p.CityTier,
		"Desired_Savings_Percentage":      p.DesiredSavingsPercentage,
		"Disposable_Income":               p.DisposableIncome,
		"Rent":                            p.Rent,
		"Loan_Repayment":                  p.LoanRepayment,
		"Insurance":                       p.Insurance,
		"Groceries":                       p.Expenses.Groceries,
		"Transport":                       p.Expenses.Transport,
		"Eating_Out":                      p.Expenses.EatingOut,
		"Entertainment":                   p.Expenses.Entertainment,
		"Utilities":                       p.Expenses.Utilities,
		"Healthcare":                      p.Expenses.Healthcare,
		"Education":                       p.Expenses.Education,
		"Miscellaneous":                   p.Expenses.Miscellaneous,
		"Potential_Savings_Groceries":     p.PotentialSavings.Groceries,
		"Potential_Savings_Transport":     p.PotentialSavings.Transport,
		"Potential_Savings_Eating_Out":    p.PotentialSavings.EatingOut,
		"Potential_Savings_Entertainment": p.PotentialSavings.Entertainment,
		"Potential_Savings_Utilities":     p.PotentialSavings.Utilities,
		"Potential_Savings_Healthcare":    p.PotentialSavings.Healthcare,
		"Potential_Savings_Education":     p.PotentialSavings.Education,
		"Potential_Savings_Miscellaneous": p.PotentialSavings.Miscellaneous,
	}
}

// Result returns a plausible ensemble answer
func Result() prediction.Result {
	return prediction.Result{
		Savings: prediction.SavingsOutput{CanAchieveSavings: true, Confidence: 0.82},
		Amount:  prediction.AmountOutput{RecommendedSavings: 5000},
		MultiTask: prediction.MultiTaskOutput{
			CanAchieveSavings:        true,
			SavingsConfidence:        0.77,
			RecommendedSavingsAmount: 4800,
			FinancialRisk:            false,
			RiskScore:                0.21,
		},
	}
}

// RecordAt builds a record for the fixture profile stamped at ts
func (f *ProfileFixture) RecordAt(ts time.Time) prediction.Record {
	return prediction.Record{
		Timestamp: prediction.Timestamp{Time: ts},
		Input:     f.p,
		Output:    Result(),
	}
}
