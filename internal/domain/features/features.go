package features

import (
	"savewise/internal/domain/profile"
)

// Features is every model input computed from a profile.
// The feature tag is the training-time column name; Encoder lays the values
// out in Spec order.
type Features struct {
	Income     float64 `feature:"Income"`
	Age        float64 `feature:"Age"`
	Dependents float64 `feature:"Dependents"`

	Rent          float64 `feature:"Rent"`
	LoanRepayment float64 `feature:"Loan_Repayment"`
	Insurance     float64 `feature:"Insurance"`
	Groceries     float64 `feature:"Groceries"`
	Transport     float64 `feature:"Transport"`
	EatingOut     float64 `feature:"Eating_Out"`
	Entertainment float64 `feature:"Entertainment"`
	Utilities     float64 `feature:"Utilities"`
	Healthcare    float64 `feature:"Healthcare"`
	Education     float64 `feature:"Education"`
	Miscellaneous float64 `feature:"Miscellaneous"`

	DesiredSavingsPercentage float64 `feature:"Desired_Savings_Percentage"`
	DisposableIncome         float64 `feature:"Disposable_Income"`

	PotentialGroceries     float64 `feature:"Potential_Savings_Groceries"`
	PotentialTransport     float64 `feature:"Potential_Savings_Transport"`
	PotentialEatingOut     float64 `feature:"Potential_Savings_Eating_Out"`
	PotentialEntertainment float64 `feature:"Potential_Savings_Entertainment"`
	PotentialUtilities     float64 `feature:"Potential_Savings_Utilities"`
	PotentialHealthcare    float64 `feature:"Potential_Savings_Healthcare"`
	PotentialEducation     float64 `feature:"Potential_Savings_Education"`
	PotentialMiscellaneous float64 `feature:"Potential_Savings_Miscellaneous"`

	// Derived
	SavingsRate            float64 `feature:"Savings_Rate"`
	ActualSavingsPotential float64 `feature:"Actual_Savings_Potential"`
	EssentialExpenses      float64 `feature:"Essential_Expenses"`
	EssentialExpenseRatio  float64 `feature:"Essential_Expense_Ratio"`
	NonEssentialIncome     float64 `feature:"Non_Essential_Income"`
	ExpenseEfficiency      float64 `feature:"Expense_Efficiency"`
	TotalExpenses          float64 `feature:"Total_Expenses"`
	DebtToIncomeRatio      float64 `feature:"Debt_to_Income_Ratio"`
	FinancialStressScore   float64 `feature:"Financial_Stress_Score"`

	// One-hot groups. The first category of each group is the dropped baseline.
	OccupationRetired      float64 `feature:"Occupation_Retired"`
	OccupationSelfEmployed float64 `feature:"Occupation_Self_Employed"`
	OccupationStudent      float64 `feature:"Occupation_Student"`

	CityTier2 float64 `feature:"City_Tier_Tier_2"`
	CityTier3 float64 `feature:"City_Tier_Tier_3"`

	AgeYoungAdult    float64 `feature:"Age_Group_Young_Adult"`
	AgeMidCareer     float64 `feature:"Age_Group_Mid_Career"`
	AgePreRetirement float64 `feature:"Age_Group_Pre_Retirement"`
	AgeSenior        float64 `feature:"Age_Group_Senior"`

	IncomeLow      float64 `feature:"Income_Bracket_Low_Income"`
	IncomeLowerMid float64 `feature:"Income_Bracket_Lower_Mid"`
	IncomeMiddle   float64 `feature:"Income_Bracket_Middle"`
	IncomeUpperMid float64 `feature:"Income_Bracket_Upper_Mid"`

	// Placeholder group, never derived from input
	DifficultyModerate float64 `feature:"Savings_Difficulty_Moderate"`
	DifficultyVeryHard float64 `feature:"Savings_Difficulty_Very_Hard"`
	DifficultyNaN      float64 `feature:"Savings_Difficulty_nan"`
}

// Compute derives every feature from a profile.
// Income ratios are not guarded: zero income yields Inf or NaN.
func Compute(p profile.Profile) Features {
	essential := p.Expenses.Essential()
	potential := p.PotentialSavings.Total()

	f := Features{
		Income:     p.Income,
		Age:        float64(p.Age),
		Dependents: float64(p.Dependents),

		Rent:          p.Rent,
		LoanRepayment: p.LoanRepayment,
		Insurance:     p.Insurance,
		Groceries:     p.Expenses.Groceries,
		Transport:     p.Expenses.Transport,
		EatingOut:     p.Expenses.EatingOut,
		Entertainment: p.Expenses.Entertainment,
		Utilities:     p.Expenses.Utilities,
		Healthcare:    p.Expenses.Healthcare,
		Education:     p.Expenses.Education,
		Miscellaneous: p.Expenses.Miscellaneous,

		DesiredSavingsPercentage: p.DesiredSavingsPercentage,
		DisposableIncome:         p.DisposableIncome,

		PotentialGroceries:     p.PotentialSavings.Groceries,
		PotentialTransport:     p.PotentialSavings.Transport,
		PotentialEatingOut:     p.PotentialSavings.EatingOut,
		PotentialEntertainment: p.PotentialSavings.Entertainment,
		PotentialUtilities:     p.PotentialSavings.Utilities,
		PotentialHealthcare:    p.PotentialSavings.Healthcare,
		PotentialEducation:     p.PotentialSavings.Education,
		PotentialMiscellaneous: p.PotentialSavings.Miscellaneous,

		SavingsRate:            p.DesiredSavingsPercentage / 100,
		ActualSavingsPotential: potential,
		EssentialExpenses:      essential,
		EssentialExpenseRatio:  essential / p.Income,
		NonEssentialIncome:     p.Income - essential,
		TotalExpenses:          p.Expenses.Total(),
		DebtToIncomeRatio:      p.LoanRepayment / p.Income,
		FinancialStressScore:   1 - p.DisposableIncome/p.Income,

		OccupationRetired:      flag(p.Occupation == profile.OccupationRetired),
		OccupationSelfEmployed: flag(p.Occupation == profile.OccupationSelfEmployed),
		OccupationStudent:      flag(p.Occupation == profile.OccupationStudent),

		CityTier2: flag(p.CityTier == profile.CityTier2),
		CityTier3: flag(p.CityTier == profile.CityTier3),

		AgeYoungAdult:    flag(p.Age < 25),
		AgeMidCareer:     flag(p.Age >= 25 && p.Age < 40),
		AgePreRetirement: flag(p.Age >= 40 && p.Age < 60),
		AgeSenior:        flag(p.Age >= 60),

		IncomeLow:      flag(p.Income < 20000),
		IncomeLowerMid: flag(p.Income >= 20000 && p.Income < 40000),
		IncomeMiddle:   flag(p.Income >= 40000 && p.Income < 70000),
		IncomeUpperMid: flag(p.Income >= 70000),

		DifficultyModerate: 0,
		DifficultyVeryHard: 0,
		DifficultyNaN:      1,
	}

	if p.DisposableIncome > 0 {
		f.ExpenseEfficiency = potential / p.DisposableIncome
	}

	return f
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
