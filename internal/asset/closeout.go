package asset

import (
	"fmt"
	"math"

	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/event"
	"sidegig/internal/state"
)

// CloseOutDay settles every instance at the day boundary. Setup
// instances that were funded advance one day and may go active; funded
// active instances roll today's payout into the pending queue;
// neglected ones show zero output but keep their queue intact. Daily
// quality-action usage resets here too.
func (e *Engine) CloseOutDay(st *state.State) {
	for i := range e.Catalog.Assets {
		def := &e.Catalog.Assets[i]
		as, ok := st.Assets[def.ID]
		if !ok {
			continue
		}
		for _, inst := range as.Instances {
			switch inst.Status {
			case state.StatusSetup:
				e.closeOutSetup(st, def, inst)
			case state.StatusActive:
				e.closeOutActive(st, def, inst)
			}
			inst.DailyUsage = nil
		}
	}
	e.Dirty.Mark(state.SectionAssets)
}

func (e *Engine) closeOutSetup(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance) {
	if !inst.SetupFundedToday {
		return
	}
	inst.DaysCompleted++
	inst.DaysRemaining--
	if inst.DaysCompleted >= def.Setup.Days {
		inst.Status = state.StatusActive
		inst.DaysRemaining = 0
		st.AppendLog(state.ToneSuccess, fmt.Sprintf("%s is up and running.", def.Name))
		e.Dirty.Mark(state.SectionLog)
	}
}

func (e *Engine) closeOutActive(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance) {
	if !inst.MaintenanceFundedToday {
		// No output while neglected; the queued payout survives.
		inst.LastIncome = 0
		inst.LastIncomeBreakdown = nil
		return
	}

	payout, breakdown := e.rollDailyIncome(st, def, inst)
	inst.PendingIncome += payout
	inst.LastIncome = payout
	inst.LastIncomeBreakdown = breakdown
	inst.TotalIncome += payout

	e.Events.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, event.TriggerContext{
		Asset:    def,
		Instance: inst,
	})
}

// rollDailyIncome draws the base amount from the quality level's range
// and layers the modifiers: ledger events in insertion order, then the
// upgrade payout multiplier. The breakdown itemizes each contribution;
// rounding differences are absorbed by the final entry so the entries
// always sum to the total.
func (e *Engine) rollDailyIncome(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance) (state.Money, *state.IncomeBreakdown) {
	lvl := def.QualityLevel(inst.Quality.Level)
	base := entropy.InRange(e.Rand, float64(lvl.IncomeMin), float64(lvl.IncomeMax))

	entries := []state.BreakdownEntry{{
		Label:  fmt.Sprintf("%s (%s)", def.Name, lvl.Name),
		Amount: state.Money(math.Round(base)),
		Type:   "base",
	}}

	running := base
	for _, ev := range st.Events.ForInstance(def.ID, inst.ID, inst.NicheID) {
		before := running
		running *= 1 + ev.CurrentPercent
		pct := ev.CurrentPercent
		entries = append(entries, state.BreakdownEntry{
			ID:      ev.ID,
			Label:   ev.Label,
			Amount:  state.Money(math.Round(running - before)),
			Type:    "event",
			Percent: &pct,
		})
	}

	mult, parts := e.Upgrades.Multiplier(st, catalog.EffectPayoutMult, def.ID, def.Tags)
	if mult != 1 {
		before := running
		running *= mult
		for _, p := range parts {
			entries = append(entries, state.BreakdownEntry{
				ID:     p.UpgradeID,
				Label:  p.Label,
				Amount: 0,
				Type:   "upgrade",
			})
		}
		if n := len(parts); n > 0 {
			entries[len(entries)-1].Amount = state.Money(math.Round(running - before))
		}
	}

	if running < 0 {
		running = 0
	}
	total := state.Money(math.Round(running))

	// Force the itemization to sum to the rounded total.
	var sum state.Money
	for _, entry := range entries {
		sum += entry.Amount
	}
	entries[len(entries)-1].Amount += total - sum

	return total, &state.IncomeBreakdown{Total: total, Entries: entries}
}
