package payments

import "sort"

// Plans is the fixed amount-to-credits table. Amounts are whole currency
// units.
var Plans = map[int64]int64{
	200:  10,
	500:  25,
	1000: 50,
}

// CreditsFor returns the credit grant for an amount, or false for an amount
// that is not a plan.
func CreditsFor(amount int64) (int64, bool) {
	credits, ok := Plans[amount]
	return credits, ok
}

// PlanAmounts returns the plan amounts in ascending order, for rendering.
func PlanAmounts() []int64 {
	amounts := make([]int64, 0, len(Plans))
	for amount := range Plans {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	return amounts
}
