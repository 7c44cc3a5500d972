package asset

import (
	"fmt"
	"math"

	"sidegig/internal/catalog"
	"sidegig/internal/event"
	"sidegig/internal/state"
)

// QualityResult reports a quality-action run.
type QualityResult struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	Progress  int    `json:"progress,omitempty"`
	LeveledUp bool   `json:"leveledUp,omitempty"`
	Level     int    `json:"level"`
}

// RunQualityAction spends time and money on a quality action and
// accumulates its progress. Crossing the next level's thresholds
// raises the level; the level itself never decays.
func (e *Engine) RunQualityAction(st *state.State, assetID, instanceID, actionID string) (QualityResult, error) {
	def, ok := e.Catalog.Asset(assetID)
	if !ok {
		return QualityResult{}, fmt.Errorf("unknown asset %q", assetID)
	}
	inst, _ := st.FindAssetInstance(assetID, instanceID)
	if inst == nil {
		return QualityResult{}, fmt.Errorf("asset %q: no instance %q", assetID, instanceID)
	}
	qa, ok := def.QualityAction(actionID)
	if !ok {
		return QualityResult{}, fmt.Errorf("asset %q: no quality action %q", assetID, actionID)
	}

	res := QualityResult{Level: inst.Quality.Level}
	if inst.Status != state.StatusActive {
		res.Reason = "instance is still in setup"
		return res, nil
	}
	if qa.DailyLimit > 0 && inst.DailyUsage[qa.ID] >= qa.DailyLimit {
		res.Reason = "daily limit reached"
		return res, nil
	}
	if st.TimeLeft < qa.TimeCost {
		res.Reason = "not enough time"
		st.AppendLog(state.ToneWarning, fmt.Sprintf("Not enough time for %s.", qa.Name))
		return res, nil
	}
	if !st.SpendMoney(qa.MoneyCost) {
		res.Reason = "not enough money"
		return res, nil
	}
	st.SpendTime(qa.TimeCost)

	if inst.DailyUsage == nil {
		inst.DailyUsage = map[string]int{}
	}
	inst.DailyUsage[qa.ID]++

	mult, _ := e.Upgrades.Multiplier(st, catalog.EffectQualityProgressMult, def.ID, def.Tags)
	gain := int(math.Round(float64(qa.Progress) * mult))
	if gain < 1 {
		gain = 1
	}
	if inst.Quality.Progress == nil {
		inst.Quality.Progress = map[string]int{}
	}
	inst.Quality.Progress[qa.ID] += gain

	res.OK = true
	res.Progress = inst.Quality.Progress[qa.ID]
	res.LeveledUp = e.checkLevelUp(st, def, inst)
	res.Level = inst.Quality.Level

	e.Events.MaybeTriggerAssetEvents(st, catalog.TriggerQualityAction, event.TriggerContext{
		Asset:    def,
		Instance: inst,
	})
	e.Dirty.Mark(state.SectionAssets, state.SectionTime, state.SectionWallet)
	return res, nil
}

// checkLevelUp walks the ladder while the next level's thresholds are
// all met. Progress keeps accumulating across levels.
func (e *Engine) checkLevelUp(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance) bool {
	leveled := false
	for inst.Quality.Level+1 < len(def.QualityLevels) {
		next := def.QualityLevels[inst.Quality.Level+1]
		met := true
		for actionID, needed := range next.Requires {
			if inst.Quality.Progress[actionID] < needed {
				met = false
				break
			}
		}
		if !met {
			break
		}
		inst.Quality.Level++
		leveled = true
		st.AppendLog(state.ToneSuccess, fmt.Sprintf("%s reached quality %q.", def.Name, next.Name))
	}
	return leveled
}

// AssignNiche pins an instance to a niche. The assignment is one-time;
// trend events for that niche then modify the instance's income.
func (e *Engine) AssignNiche(st *state.State, assetID, instanceID, nicheID string) error {
	inst, _ := st.FindAssetInstance(assetID, instanceID)
	if inst == nil {
		return fmt.Errorf("asset %q: no instance %q", assetID, instanceID)
	}
	niche, ok := e.Catalog.Niche(nicheID)
	if !ok {
		return fmt.Errorf("unknown niche %q", nicheID)
	}
	if inst.NicheID != "" {
		return fmt.Errorf("instance already assigned to a niche")
	}
	inst.NicheID = nicheID
	st.AppendLog(state.ToneInfo, fmt.Sprintf("Focused on the %s niche.", niche.Name))
	e.Dirty.Mark(state.SectionAssets, state.SectionLog)
	return nil
}

// SellResult reports a sale.
type SellResult struct {
	OK    bool        `json:"ok"`
	Price state.Money `json:"price"`
}

// Sell liquidates an instance for three days of its last income,
// removes it, and prunes any events that targeted it. Selling is the
// only way an instance is destroyed.
func (e *Engine) Sell(st *state.State, assetID, instanceID string) (SellResult, error) {
	def, ok := e.Catalog.Asset(assetID)
	if !ok {
		return SellResult{}, fmt.Errorf("unknown asset %q", assetID)
	}
	inst, idx := st.FindAssetInstance(assetID, instanceID)
	if inst == nil {
		return SellResult{}, fmt.Errorf("asset %q: no instance %q", assetID, instanceID)
	}

	price := inst.LastIncome * 3
	// A queued payout is part of the sale.
	price += inst.PendingIncome

	as := st.Assets[assetID]
	as.Instances = append(as.Instances[:idx], as.Instances[idx+1:]...)

	if price > 0 {
		st.AddMoney(price)
	}
	st.AppendLog(state.ToneInfo, fmt.Sprintf("Sold %s for $%d.", def.Name, price))

	e.Events.CleanupMissingTargets(st)
	e.Dirty.Mark(state.SectionAssets, state.SectionWallet, state.SectionEvents, state.SectionLog)
	return SellResult{OK: true, Price: price}, nil
}
