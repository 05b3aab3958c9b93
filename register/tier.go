package register

// Tier is a subscription plan.
type Tier string

const (
	TierBasico  Tier = "Basico"
	TierOro     Tier = "oro"
	TierPlatino Tier = "platino"
	// TierCustom has no default student limit.
	TierCustom Tier = "custom"
)

var tierLimits = map[Tier]int{
	TierBasico:  100,
	TierOro:     500,
	TierPlatino: 1000,
}

// MaxStudents returns the default student limit of the tier.
// It reports false for custom or unknown tiers.
func (t Tier) MaxStudents() (int, bool) {
	n, ok := tierLimits[t]
	return n, ok
}

// Tiers lists the selectable plans in display order.
func Tiers() []Tier {
	return []Tier{TierBasico, TierOro, TierPlatino, TierCustom}
}
