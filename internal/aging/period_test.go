package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(day(2024, time.March, 17))
	require.Equal(t, PeriodKey{Year: 2024, Month: time.March}, p)
}

func TestPeriodOrdering(t *testing.T) {
	jan := PeriodKey{2024, time.January}
	feb := PeriodKey{2024, time.February}
	dec23 := PeriodKey{2023, time.December}

	require.True(t, jan.Before(feb))
	require.True(t, dec23.Before(jan))
	require.False(t, feb.Before(jan))
	require.Equal(t, 0, jan.Compare(PeriodKey{2024, time.January}))
	require.Equal(t, -1, dec23.Compare(jan))
	require.Equal(t, 1, feb.Compare(jan))
}

func TestPeriodNextWrapsYear(t *testing.T) {
	require.Equal(t, PeriodKey{2025, time.January}, PeriodKey{2024, time.December}.Next())
	require.Equal(t, PeriodKey{2024, time.May}, PeriodKey{2024, time.April}.Next())
}

func TestPeriodsBetween(t *testing.T) {
	got := PeriodsBetween(PeriodKey{2023, time.November}, PeriodKey{2024, time.February})
	require.Equal(t, []PeriodKey{
		{2023, time.November},
		{2023, time.December},
		{2024, time.January},
		{2024, time.February},
	}, got)

	require.Len(t, PeriodsBetween(PeriodKey{2024, time.March}, PeriodKey{2024, time.March}), 1)
	require.Nil(t, PeriodsBetween(PeriodKey{2024, time.April}, PeriodKey{2024, time.March}))
}

func TestPeriodString(t *testing.T) {
	require.Equal(t, "2024-01", PeriodKey{2024, time.January}.String())
	require.Equal(t, "2023-12", PeriodKey{2023, time.December}.String())
}
