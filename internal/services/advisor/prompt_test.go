package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"savewise/internal/testsupport"
)

func TestBuildPrompt(t *testing.T) {
	rec := testsupport.NewProfileFixture().WithCityTier("Tier_3").RecordAt(stamp)
	rec.Output.MultiTask.FinancialRisk = true

	p := BuildPrompt(&rec, "hi", stamp.Add(3*24*time.Hour))

	assert.Contains(t, p, "Income: ₹50,000")
	assert.Contains(t, p, "City Tier: Tier_3")
	assert.Contains(t, p, "Desired Savings %: 10%")
	assert.Contains(t, p, " - Eating Out: ₹300")
	assert.Contains(t, p, "Can Achieve Savings: Yes")
	assert.Contains(t, p, "Confidence: 82.00%")
	assert.Contains(t, p, "Financial Risk: Yes")
	assert.Contains(t, p, "3 days ago")
	assert.Contains(t, p, "under 100 words")
}
