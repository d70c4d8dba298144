package systems

import "github.com/pthm-cable/forage/components"

// Metabolize burns the per-tick living cost. It reports whether the
// creature has starved.
func Metabolize(cal *components.Calories, liveCost int) bool {
	cal.Current -= liveCost
	return cal.Current <= 0
}

// Conceive starts a pregnancy and charges its cost.
func Conceive(creature *components.Creature, cal *components.Calories, cost int) {
	creature.Pregnancy = components.Pregnancy{Active: true}
	cal.Current -= cost
}

// AdvancePregnancy ticks gestation and reports whether birth is due.
// A due pregnancy is cleared.
func AdvancePregnancy(p *components.Pregnancy, duration int) bool {
	if !p.Active {
		return false
	}
	p.Progress++
	if p.Progress < duration {
		return false
	}
	*p = components.Pregnancy{}
	return true
}

// Starved reports whether a creature must be removed.
func Starved(cal components.Calories) bool {
	return cal.Current <= 0
}
