package aging

// BucketSet groups the four rollforward buckets for subtotal rows.
type BucketSet struct {
	Beginning MoneyQuad
	Purchases MoneyQuad
	Payments  MoneyQuad
	Ending    MoneyQuad
}

// add folds one balance row into the set, summing the three source
// buckets and re-deriving ending from the identity.
func (b BucketSet) add(row CounterpartyPeriodBalance) BucketSet {
	b.Beginning = b.Beginning.Add(row.Beginning)
	b.Purchases = b.Purchases.Add(row.Purchases)
	b.Payments = b.Payments.Add(row.Payments)
	b.Ending = b.Beginning.Add(b.Purchases).Sub(b.Payments)
	return b
}

// merge folds another set in under the same discipline.
func (b BucketSet) merge(o BucketSet) BucketSet {
	b.Beginning = b.Beginning.Add(o.Beginning)
	b.Purchases = b.Purchases.Add(o.Purchases)
	b.Payments = b.Payments.Add(o.Payments)
	b.Ending = b.Beginning.Add(b.Purchases).Sub(b.Payments)
	return b
}

// PeriodSubtotal sums every counterparty row of one period.
type PeriodSubtotal struct {
	Period PeriodKey
	BucketSet
}

// Rollup aggregates a run's rows into period subtotals and one grand
// total across the whole range.
type Rollup struct {
	Subtotals []PeriodSubtotal
	Grand     BucketSet
}

func zeroBucketSet() BucketSet {
	return BucketSet{
		Beginning: ZeroQuad(),
		Purchases: ZeroQuad(),
		Payments:  ZeroQuad(),
		Ending:    ZeroQuad(),
	}
}

// BuildRollup reduces the full row sequence of a run. Rows are expected
// in period order, as the aggregator emits them; subtotals come out in
// the same order.
func BuildRollup(rows []CounterpartyPeriodBalance) Rollup {
	rollup := Rollup{Grand: zeroBucketSet()}
	byPeriod := make(map[PeriodKey]int)
	for _, row := range rows {
		i, ok := byPeriod[row.Period]
		if !ok {
			i = len(rollup.Subtotals)
			byPeriod[row.Period] = i
			rollup.Subtotals = append(rollup.Subtotals, PeriodSubtotal{
				Period:    row.Period,
				BucketSet: zeroBucketSet(),
			})
		}
		rollup.Subtotals[i].BucketSet = rollup.Subtotals[i].BucketSet.add(row)
	}
	for _, sub := range rollup.Subtotals {
		rollup.Grand = rollup.Grand.merge(sub.BucketSet)
	}
	return rollup
}
