package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildRollupEmpty(t *testing.T) {
	rollup := BuildRollup(nil)
	require.Empty(t, rollup.Subtotals)
	require.True(t, rollup.Grand.Beginning.IsZero())
	require.True(t, rollup.Grand.Ending.IsZero())
}

func TestRollupConsistency(t *testing.T) {
	docs, allocs := fixture(t)
	res, err := testEngine().Run(testParams(day(2024, time.January, 1), day(2024, time.March, 31)), docs, allocs)
	require.NoError(t, err)
	require.NotEmpty(t, res.Rollup.Subtotals)

	// Every period subtotal equals the manual sum of that period's
	// counterparty rows.
	for _, sub := range res.Rollup.Subtotals {
		want := zeroBucketSet()
		for _, row := range res.Rows {
			if row.Period != sub.Period {
				continue
			}
			want.Beginning = want.Beginning.Add(row.Beginning)
			want.Purchases = want.Purchases.Add(row.Purchases)
			want.Payments = want.Payments.Add(row.Payments)
		}
		require.True(t, sub.Beginning.Equal(want.Beginning), "period %s beginning", sub.Period)
		require.True(t, sub.Purchases.Equal(want.Purchases), "period %s purchases", sub.Period)
		require.True(t, sub.Payments.Equal(want.Payments), "period %s payments", sub.Period)
		require.True(t, sub.Ending.Equal(sub.Beginning.Add(sub.Purchases).Sub(sub.Payments)),
			"period %s ending identity", sub.Period)
	}

	// Subtotals sum to the grand total.
	grand := zeroBucketSet()
	for _, sub := range res.Rollup.Subtotals {
		grand = grand.merge(sub.BucketSet)
	}
	require.True(t, res.Rollup.Grand.Beginning.Equal(grand.Beginning))
	require.True(t, res.Rollup.Grand.Purchases.Equal(grand.Purchases))
	require.True(t, res.Rollup.Grand.Payments.Equal(grand.Payments))
	require.True(t, res.Rollup.Grand.Ending.Equal(grand.Ending))
}

func TestRollupSubtotalsFollowPeriodOrder(t *testing.T) {
	docs, allocs := fixture(t)
	res, err := testEngine().Run(testParams(day(2024, time.January, 1), day(2024, time.March, 31)), docs, allocs)
	require.NoError(t, err)

	require.Len(t, res.Rollup.Subtotals, 3)
	for i := 1; i < len(res.Rollup.Subtotals); i++ {
		require.True(t, res.Rollup.Subtotals[i-1].Period.Before(res.Rollup.Subtotals[i].Period))
	}
}
