// Package pricing maps a subject's price or budget to a credit cost tier.
package pricing

// Credit cost tiers by reference amount. The reference amount is the listing
// price when unlocking a tenant lead, or the request's max/min budget when
// unlocking a posted request's contact; the caller picks which to pass.
const (
	premiumThreshold  = 700_000
	standardThreshold = 300_000

	CostPremium  = 20
	CostStandard = 15
	CostBasic    = 10
)

// CostFor returns the credit cost to unlock a lead with the given reference
// amount. Pure and total: every amount maps to a tier.
func CostFor(referenceAmount int) int {
	switch {
	case referenceAmount >= premiumThreshold:
		return CostPremium
	case referenceAmount >= standardThreshold:
		return CostStandard
	default:
		return CostBasic
	}
}
