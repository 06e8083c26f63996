package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"savewise/internal/domain/prediction"
)

func rupees(v float64) string {
	return "₹" + humanize.FormatFloat("#,###.##", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// BuildPrompt renders the advisor instructions around the user's latest
// profile, its predictions and the question
func BuildPrompt(rec *prediction.Record, message string, now time.Time) string {
	in := rec.Input
	out := rec.Output

	var b strings.Builder
	b.WriteString("You are a Personal Finance Advisor chatbot.\n")
	fmt.Fprintf(&b, "The user submitted this financial profile %s:\n\n",
		humanize.RelTime(rec.Timestamp.Time, now, "ago", "from now"))

	fmt.Fprintf(&b, "Income: %s\n", rupees(in.Income))
	fmt.Fprintf(&b, "Age: %d\n", in.Age)
	fmt.Fprintf(&b, "Occupation: %s\n", in.Occupation)
	fmt.Fprintf(&b, "City Tier: %s\n", in.CityTier)
	fmt.Fprintf(&b, "Dependents: %d\n\n", in.Dependents)

	b.WriteString("Monthly Expenses:\n")
	expenses := []struct {
		label string
		value float64
	}{
		{"Rent", in.Rent},
		{"Groceries", in.Expenses.Groceries},
		{"Transport", in.Expenses.Transport},
		{"Eating Out", in.Expenses.EatingOut},
		{"Utilities", in.Expenses.Utilities},
		{"Healthcare", in.Expenses.Healthcare},
		{"Education", in.Expenses.Education},
		{"Miscellaneous", in.Expenses.Miscellaneous},
	}
	for _, e := range expenses {
		fmt.Fprintf(&b, "%s: %s\n", e.label, rupees(e.value))
	}

	b.WriteString("\nSavings Goals:\n")
	fmt.Fprintf(&b, "Desired Savings %%: %s%%\n", humanize.Ftoa(in.DesiredSavingsPercentage))
	fmt.Fprintf(&b, "Disposable Income: %s\n", rupees(in.DisposableIncome))
	b.WriteString("Potential Savings Breakdown:\n")
	potential := []struct {
		label string
		value float64
	}{
		{"Groceries", in.PotentialSavings.Groceries},
		{"Transport", in.PotentialSavings.Transport},
		{"Eating Out", in.PotentialSavings.EatingOut},
		{"Utilities", in.PotentialSavings.Utilities},
		{"Healthcare", in.PotentialSavings.Healthcare},
		{"Education", in.PotentialSavings.Education},
		{"Miscellaneous", in.PotentialSavings.Miscellaneous},
	}
	for _, p := range potential {
		fmt.Fprintf(&b, " - %s: %s\n", p.label, rupees(p.value))
	}

	b.WriteString("\nPrediction Results:\n")
	fmt.Fprintf(&b, "Can Achieve Savings: %s\n", yesNo(out.Savings.CanAchieveSavings))
	fmt.Fprintf(&b, "Confidence: %.2f%%\n", out.Savings.Confidence*100)
	fmt.Fprintf(&b, "Recommended Monthly Savings: %s\n", rupees(out.Amount.RecommendedSavings))
	fmt.Fprintf(&b, "Financial Risk: %s\n\n", yesNo(out.MultiTask.FinancialRisk))

	fmt.Fprintf(&b, "Now the user is asking:\n%q\n\n", message)

	b.WriteString("Instructions:\n")
	b.WriteString("- For greetings or casual talk, respond naturally and friendly\n")
	b.WriteString("- For finance questions, use their data to give personalized advice\n")
	b.WriteString("- For general questions, answer normally without forcing financial data\n")
	b.WriteString("- Keep all responses under 100 words and conversational\n")
	b.WriteString("- Always answer in plain text without ** or other formatting\n")

	return b.String()
}
