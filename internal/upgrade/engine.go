// Package upgrade handles purchases and turns owned upgrades into the
// multipliers the other engines consume. Permanent upgrades buy once,
// repeatable ones stack per copy, consumables convert money into
// same-day bonus time.
package upgrade

import (
	"fmt"

	"sidegig/internal/catalog"
	"sidegig/internal/state"
)

// Clamp bands per effect kind. An effect value outside its band is
// pulled back in before it multiplies anything.
var effectBounds = map[catalog.EffectKind][2]float64{
	catalog.EffectPayoutMult:          {0.1, 10},
	catalog.EffectSetupTimeMult:       {0.5, 2},
	catalog.EffectMaintTimeMult:       {0.5, 2},
	catalog.EffectQualityProgressMult: {0.25, 5},
}

func clampEffect(kind catalog.EffectKind, v float64) float64 {
	bounds, ok := effectBounds[kind]
	if !ok {
		return v
	}
	if v < bounds[0] {
		return bounds[0]
	}
	if v > bounds[1] {
		return bounds[1]
	}
	return v
}

type Engine struct {
	Catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{Catalog: c}
}

// PurchaseResult reports a purchase attempt. Guard failures set Reason
// and leave the state untouched.
type PurchaseResult struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	UpgradeID string `json:"upgradeId"`
	Count     int    `json:"count,omitempty"`
}

// Purchase buys one copy of an upgrade. Consumable upgrades are used
// on the spot; permanent ones record ownership and apply any standing
// time bonus immediately.
func (e *Engine) Purchase(st *state.State, id string) (PurchaseResult, error) {
	def, ok := e.Catalog.Upgrade(id)
	if !ok {
		return PurchaseResult{}, fmt.Errorf("unknown upgrade %q", id)
	}
	res := PurchaseResult{UpgradeID: id}
	us := st.UpgradeState(id)

	if !def.Repeatable && us.Purchased {
		res.Reason = "already owned"
		return res, nil
	}
	if def.Repeatable && def.MaxCount > 0 && us.Count >= def.MaxCount {
		res.Reason = "owned the maximum number"
		return res, nil
	}
	for _, reqID := range def.Requires.Upgrades {
		if !st.UpgradeState(reqID).Purchased {
			req, _ := e.Catalog.Upgrade(reqID)
			name := reqID
			if req != nil {
				name = req.Name
			}
			res.Reason = fmt.Sprintf("requires %s", name)
			return res, nil
		}
	}

	if def.Consumable != nil {
		return e.useConsumable(st, def, us)
	}

	if !st.SpendMoney(def.Cost) {
		res.Reason = "not enough money"
		st.AppendLog(state.ToneWarning, fmt.Sprintf("Not enough money for %s.", def.Name))
		return res, nil
	}

	us.Purchased = true
	us.Count++
	if def.BonusTimeHours > 0 {
		st.BonusTime += def.BonusTimeHours
		st.GrantTime(def.BonusTimeHours)
	}
	st.AppendLog(state.ToneSuccess, fmt.Sprintf("Purchased %s.", def.Name))

	res.OK = true
	res.Count = us.Count
	return res, nil
}

// useConsumable burns one use: money out, bonus hours into today's
// budget. Uses are day-stamped and reset lazily.
func (e *Engine) useConsumable(st *state.State, def *catalog.UpgradeDef, us *state.UpgradeState) (PurchaseResult, error) {
	res := PurchaseResult{UpgradeID: def.ID}
	if us.LastUsedDay != st.Day {
		us.UsedToday = 0
		us.LastUsedDay = st.Day
	}
	if us.UsedToday >= def.Consumable.UsesPerDay {
		res.Reason = "daily limit reached"
		return res, nil
	}
	if !st.SpendMoney(def.Cost) {
		res.Reason = "not enough money"
		return res, nil
	}
	us.UsedToday++
	st.DailyBonusTime += def.Consumable.DailyBonusHours
	st.GrantTime(def.Consumable.DailyBonusHours)
	st.AppendLog(state.ToneInfo, fmt.Sprintf("%s: +%.0fh today.", def.Name, def.Consumable.DailyBonusHours))

	res.OK = true
	res.Count = us.UsedToday
	return res, nil
}

// Contribution is one upgrade's share of a combined multiplier, for
// payout breakdowns.
type Contribution struct {
	UpgradeID string
	Label     string
	Value     float64
}

// Multiplier folds every owned, matching effect of the given kind into
// one factor. Each effect is clamped to its band, then applied once
// per owned copy.
func (e *Engine) Multiplier(st *state.State, kind catalog.EffectKind, targetID string, tags []string) (float64, []Contribution) {
	total := 1.0
	var parts []Contribution
	for i := range e.Catalog.Upgrades {
		def := &e.Catalog.Upgrades[i]
		us, ok := st.Upgrades[def.ID]
		if !ok || us.Count == 0 || def.Consumable != nil {
			continue
		}
		for _, eff := range def.Effects {
			if eff.Kind != kind || !eff.Target.Matches(targetID, tags) {
				continue
			}
			v := clampEffect(kind, eff.Value)
			combined := 1.0
			for c := 0; c < us.Count; c++ {
				combined *= v
			}
			total *= combined
			parts = append(parts, Contribution{UpgradeID: def.ID, Label: def.Name, Value: combined})
		}
	}
	return total, parts
}

// AssistantHours is the shared daily labor pool granted by owned
// assistant-style upgrades.
func (e *Engine) AssistantHours(st *state.State) float64 {
	total := 0.0
	for i := range e.Catalog.Upgrades {
		def := &e.Catalog.Upgrades[i]
		if def.AssistantHours <= 0 {
			continue
		}
		if us, ok := st.Upgrades[def.ID]; ok {
			total += def.AssistantHours * float64(us.Count)
		}
	}
	return total
}
