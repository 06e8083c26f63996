package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"savewise/internal/domain/features"
	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	"savewise/pkg/errors"
)

// Table is the default name of the flattened predictions table
const Table = "predictions"

// RowID accepts both numeric and text primary keys
type RowID string

func (id *RowID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		*id = RowID(unquoted)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "row id must be a string or number")
	}
	*id = RowID(n.String())
	return nil
}

// PredictionRow is one record flattened into table columns. Derived and
// one-hot columns are written for analytics and ignored on read.
type PredictionRow struct {
	ID        RowID                `json:"id,omitempty" db:"id"`
	Timestamp prediction.Timestamp `json:"timestamp" db:"timestamp"`
	UserID    *string              `json:"user_id" db:"user_id"`

	Income     float64 `json:"income" db:"income"`
	Age        int     `json:"age" db:"age"`
	Dependents int     `json:"dependents" db:"dependents"`
	Occupation string  `json:"occupation" db:"occupation"`
	CityTier   string  `json:"city_tier" db:"city_tier"`

	Rent          float64 `json:"rent" db:"rent"`
	LoanRepayment float64 `json:"loan_repayment" db:"loan_repayment"`
	Insurance     float64 `json:"insurance" db:"insurance"`
	Groceries     float64 `json:"groceries" db:"groceries"`
	Transport     float64 `json:"transport" db:"transport"`
	EatingOut     float64 `json:"eating_out" db:"eating_out"`
	Entertainment float64 `json:"entertainment" db:"entertainment"`
	Utilities     float64 `json:"utilities" db:"utilities"`
	Healthcare    float64 `json:"healthcare" db:"healthcare"`
	Education     float64 `json:"education" db:"education"`
	Miscellaneous float64 `json:"miscellaneous" db:"miscellaneous"`

	DesiredSavingsPercentage float64 `json:"desired_savings_percentage" db:"desired_savings_percentage"`
	DisposableIncome         float64 `json:"disposable_income" db:"disposable_income"`

	// nil when the value is not finite (zero income)
	SavingsRate            *float64 `json:"savings_rate" db:"savings_rate"`
	ActualSavingsPotential *float64 `json:"actual_savings_potential" db:"actual_savings_potential"`
	EssentialExpenses      *float64 `json:"essential_expenses" db:"essential_expenses"`
	EssentialExpenseRatio  *float64 `json:"essential_expense_ratio" db:"essential_expense_ratio"`
	NonEssentialIncome     *float64 `json:"non_essential_income" db:"non_essential_income"`
	ExpenseEfficiency      *float64 `json:"expense_efficiency" db:"expense_efficiency"`
	TotalExpenses          *float64 `json:"total_expenses" db:"total_expenses"`
	DebtToIncomeRatio      *float64 `json:"debt_to_income_ratio" db:"debt_to_income_ratio"`
	FinancialStressScore   *float64 `json:"financial_stress_score" db:"financial_stress_score"`

	PotentialSavingsGroceries     float64 `json:"potential_savings_groceries" db:"potential_savings_groceries"`
	PotentialSavingsTransport     float64 `json:"potential_savings_transport" db:"potential_savings_transport"`
	PotentialSavingsEatingOut     float64 `json:"potential_savings_eating_out" db:"potential_savings_eating_out"`
	PotentialSavingsEntertainment float64 `json:"potential_savings_entertainment" db:"potential_savings_entertainment"`
	PotentialSavingsUtilities     float64 `json:"potential_savings_utilities" db:"potential_savings_utilities"`
	PotentialSavingsHealthcare    float64 `json:"potential_savings_healthcare" db:"potential_savings_healthcare"`
	PotentialSavingsEducation     float64 `json:"potential_savings_education" db:"potential_savings_education"`
	PotentialSavingsMiscellaneous float64 `json:"potential_savings_miscellaneous" db:"potential_savings_miscellaneous"`

	OccupationRetired         int `json:"occupation_retired" db:"occupation_retired"`
	OccupationSelfEmployed    int `json:"occupation_self_employed" db:"occupation_self_employed"`
	OccupationStudent         int `json:"occupation_student" db:"occupation_student"`
	CityTierTier2             int `json:"city_tier_tier_2" db:"city_tier_tier_2"`
	CityTierTier3             int `json:"city_tier_tier_3" db:"city_tier_tier_3"`
	AgeGroupYoungAdult        int `json:"age_group_young_adult" db:"age_group_young_adult"`
	AgeGroupMidCareer         int `json:"age_group_mid_career" db:"age_group_mid_career"`
	AgeGroupPreRetirement     int `json:"age_group_pre_retirement" db:"age_group_pre_retirement"`
	AgeGroupSenior            int `json:"age_group_senior" db:"age_group_senior"`
	IncomeBracketLowIncome    int `json:"income_bracket_low_income" db:"income_bracket_low_income"`
	IncomeBracketLowerMid     int `json:"income_bracket_lower_mid" db:"income_bracket_lower_mid"`
	IncomeBracketMiddle       int `json:"income_bracket_middle" db:"income_bracket_middle"`
	IncomeBracketUpperMid     int `json:"income_bracket_upper_mid" db:"income_bracket_upper_mid"`
	SavingsDifficultyModerate int `json:"savings_difficulty_moderate" db:"savings_difficulty_moderate"`
	SavingsDifficultyVeryHard int `json:"savings_difficulty_very_hard" db:"savings_difficulty_very_hard"`
	SavingsDifficultyNaN      int `json:"savings_difficulty_nan" db:"savings_difficulty_nan"`

	SavingsModelCanAchieve        bool    `json:"savings_model_can_achieve" db:"savings_model_can_achieve"`
	SavingsModelConfidence        float64 `json:"savings_model_confidence" db:"savings_model_confidence"`
	AmountModelRecommendedSavings float64 `json:"amount_model_recommended_savings" db:"amount_model_recommended_savings"`
	MultiTaskCanAchieve           bool    `json:"multi_task_can_achieve" db:"multi_task_can_achieve"`
	MultiTaskSavingsConfidence    float64 `json:"multi_task_savings_confidence" db:"multi_task_savings_confidence"`
	MultiTaskRecommendedAmount    float64 `json:"multi_task_recommended_amount" db:"multi_task_recommended_amount"`
	MultiTaskFinancialRisk        bool    `json:"multi_task_financial_risk" db:"multi_task_financial_risk"`
	MultiTaskRiskScore            float64 `json:"multi_task_risk_score" db:"multi_task_risk_score"`
}

// FromRecord flattens a record into a row
func FromRecord(rec *prediction.Record) PredictionRow {
	in := rec.Input
	out := rec.Output
	f := features.Compute(in)

	return PredictionRow{
		ID:        RowID(rec.ID),
		Timestamp: rec.Timestamp,

		Income:     in.Income,
		Age:        in.Age,
		Dependents: in.Dependents,
		Occupation: in.Occupation,
		CityTier:   in.CityTier,

		Rent:          in.Rent,
		LoanRepayment: in.LoanRepayment,
		Insurance:     in.Insurance,
		Groceries:     in.Expenses.Groceries,
		Transport:     in.Expenses.Transport,
		EatingOut:     in.Expenses.EatingOut,
		Entertainment: in.Expenses.Entertainment,
		Utilities:     in.Expenses.Utilities,
		Healthcare:    in.Expenses.Healthcare,
		Education:     in.Expenses.Education,
		Miscellaneous: in.Expenses.Miscellaneous,

		DesiredSavingsPercentage: in.DesiredSavingsPercentage,
		DisposableIncome:         in.DisposableIncome,

		SavingsRate:            finite(f.SavingsRate),
		ActualSavingsPotential: finite(f.ActualSavingsPotential),
		EssentialExpenses:      finite(f.EssentialExpenses),
		EssentialExpenseRatio:  finite(f.EssentialExpenseRatio),
		NonEssentialIncome:     finite(f.NonEssentialIncome),
		ExpenseEfficiency:      finite(f.ExpenseEfficiency),
		TotalExpenses:          finite(f.TotalExpenses),
		DebtToIncomeRatio:      finite(f.DebtToIncomeRatio),
		FinancialStressScore:   finite(f.FinancialStressScore),

		PotentialSavingsGroceries:     in.PotentialSavings.Groceries,
		PotentialSavingsTransport:     in.PotentialSavings.Transport,
		PotentialSavingsEatingOut:     in.PotentialSavings.EatingOut,
		PotentialSavingsEntertainment: in.PotentialSavings.Entertainment,
		PotentialSavingsUtilities:     in.PotentialSavings.Utilities,
		PotentialSavingsHealthcare:    in.PotentialSavings.Healthcare,
		PotentialSavingsEducation:     in.PotentialSavings.Education,
		PotentialSavingsMiscellaneous: in.PotentialSavings.Miscellaneous,

		OccupationRetired:         int(f.OccupationRetired),
		OccupationSelfEmployed:    int(f.OccupationSelfEmployed),
		OccupationStudent:         int(f.OccupationStudent),
		CityTierTier2:             int(f.CityTier2),
		CityTierTier3:             int(f.CityTier3),
		AgeGroupYoungAdult:        int(f.AgeYoungAdult),
		AgeGroupMidCareer:         int(f.AgeMidCareer),
		AgeGroupPreRetirement:     int(f.AgePreRetirement),
		AgeGroupSenior:            int(f.AgeSenior),
		IncomeBracketLowIncome:    int(f.IncomeLow),
		IncomeBracketLowerMid:     int(f.IncomeLowerMid),
		IncomeBracketMiddle:       int(f.IncomeMiddle),
		IncomeBracketUpperMid:     int(f.IncomeUpperMid),
		SavingsDifficultyModerate: int(f.DifficultyModerate),
		SavingsDifficultyVeryHard: int(f.DifficultyVeryHard),
		SavingsDifficultyNaN:      int(f.DifficultyNaN),

		SavingsModelCanAchieve:        out.Savings.CanAchieveSavings,
		SavingsModelConfidence:        out.Savings.Confidence,
		AmountModelRecommendedSavings: out.Amount.RecommendedSavings,
		MultiTaskCanAchieve:           out.MultiTask.CanAchieveSavings,
		MultiTaskSavingsConfidence:    out.MultiTask.SavingsConfidence,
		MultiTaskRecommendedAmount:    out.MultiTask.RecommendedSavingsAmount,
		MultiTaskFinancialRisk:        out.MultiTask.FinancialRisk,
		MultiTaskRiskScore:            out.MultiTask.RiskScore,
	}
}

// ToRecord rebuilds the record from the raw columns
func (r PredictionRow) ToRecord() prediction.Record {
	return prediction.Record{
		ID:        string(r.ID),
		Timestamp: r.Timestamp,
		Input: profile.Profile{
			Income:                   r.Income,
			Age:                      r.Age,
			Dependents:               r.Dependents,
			Occupation:               r.Occupation,
			CityTier:                 r.CityTier,
			DesiredSavingsPercentage: r.DesiredSavingsPercentage,
			DisposableIncome:         r.DisposableIncome,
			Expenses: profile.Expenses{
				Rent:          r.Rent,
				LoanRepayment: r.LoanRepayment,
				Insurance:     r.Insurance,
				Groceries:     r.Groceries,
				Transport:     r.Transport,
				EatingOut:     r.EatingOut,
				Entertainment: r.Entertainment,
				Utilities:     r.Utilities,
				Healthcare:    r.Healthcare,
				Education:     r.Education,
				Miscellaneous: r.Miscellaneous,
			},
			PotentialSavings: profile.PotentialSavings{
				Groceries:     r.PotentialSavingsGroceries,
				Transport:     r.PotentialSavingsTransport,
				EatingOut:     r.PotentialSavingsEatingOut,
				Entertainment: r.PotentialSavingsEntertainment,
				Utilities:     r.PotentialSavingsUtilities,
				Healthcare:    r.PotentialSavingsHealthcare,
				Education:     r.PotentialSavingsEducation,
				Miscellaneous: r.PotentialSavingsMiscellaneous,
			},
		},
		Output: prediction.Result{
			Savings: prediction.SavingsOutput{
				CanAchieveSavings: r.SavingsModelCanAchieve,
				Confidence:        r.SavingsModelConfidence,
			},
			Amount: prediction.AmountOutput{
				RecommendedSavings: r.AmountModelRecommendedSavings,
			},
			MultiTask: prediction.MultiTaskOutput{
				CanAchieveSavings:        r.MultiTaskCanAchieve,
				SavingsConfidence:        r.MultiTaskSavingsConfidence,
				RecommendedSavingsAmount: r.MultiTaskRecommendedAmount,
				FinancialRisk:            r.MultiTaskFinancialRisk,
				RiskScore:                r.MultiTaskRiskScore,
			},
		},
	}
}

// InsertColumns lists every writable column in struct order
func InsertColumns() []string {
	t := reflect.TypeOf(PredictionRow{})
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		col := t.Field(i).Tag.Get("db")
		if col == "" || col == "id" {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
