package asset

import (
	"math"

	"sidegig/internal/state"
)

// AccruePassive advances the real-time trickle by dtHours: each active
// instance buffers rate*dt fractionally and flushes whole units into
// the wallet. The math is linear in dt and touches nothing until the
// flush, so one large delta (offline catch-up) and many small ticks
// settle identically. Returns the total flushed.
func (e *Engine) AccruePassive(st *state.State, dtHours float64) state.Money {
	if dtHours <= 0 {
		return 0
	}
	var flushed state.Money
	for i := range e.Catalog.Assets {
		def := &e.Catalog.Assets[i]
		if def.Passive.PerHour <= 0 {
			continue
		}
		as, ok := st.Assets[def.ID]
		if !ok {
			continue
		}
		for _, inst := range as.Instances {
			if inst.Status != state.StatusActive {
				continue
			}
			rate := def.Passive.PerHour * def.QualityIncomeScale(inst.Quality.Level)
			for _, ev := range st.Events.ForInstance(def.ID, inst.ID, inst.NicheID) {
				rate *= 1 + ev.CurrentPercent
			}
			if rate <= 0 {
				continue
			}
			inst.PassiveBuffer += rate * dtHours
			if units := math.Floor(inst.PassiveBuffer); units >= 1 {
				inst.PassiveBuffer -= units
				amount := state.Money(units)
				st.AddMoney(amount)
				inst.TotalIncome += amount
				flushed += amount
			}
		}
	}
	if flushed > 0 {
		e.Dirty.Mark(state.SectionWallet, state.SectionAssets)
	}
	return flushed
}
