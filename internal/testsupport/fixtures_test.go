package testsupport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/domain/profile"
)

func TestProfileFixtureRawRoundTrips(t *testing.T) {
	f := NewProfileFixture().WithIncome(42000).WithOccupation("Student").WithAge(19)

	parsed, err := profile.Parse(f.Raw())
	require.NoError(t, err)
	assert.Equal(t, f.Build(), parsed)
}

func TestRecordAt(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewProfileFixture().RecordAt(ts)

	assert.Empty(t, rec.ID)
	assert.True(t, rec.Timestamp.Equal(ts))
	assert.True(t, rec.Output.Savings.CanAchieveSavings)
}
