// Package asset runs the venture lifecycle: setup funding, daily
// maintenance allocation, close-out payouts into the pending-income
// queue, the quality ladder, niche assignment, and sale.
package asset

import (
	"fmt"

	"github.com/google/uuid"

	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/event"
	"sidegig/internal/state"
	"sidegig/internal/upgrade"
)

type Engine struct {
	Catalog  *catalog.Catalog
	Upgrades *upgrade.Engine
	Events   *event.Engine
	Rand     entropy.Source
	Dirty    *state.DirtyBus
}

func NewEngine(c *catalog.Catalog, up *upgrade.Engine, ev *event.Engine, rnd entropy.Source, dirty *state.DirtyBus) *Engine {
	return &Engine{Catalog: c, Upgrades: up, Events: ev, Rand: rnd, Dirty: dirty}
}

// LaunchResult reports a launch attempt.
type LaunchResult struct {
	OK         bool   `json:"ok"`
	Reason     string `json:"reason,omitempty"`
	InstanceID string `json:"instanceId,omitempty"`
}

// Launch buys a new instance in setup phase and tries to fund its
// first setup day on the spot.
func (e *Engine) Launch(st *state.State, assetID string) (LaunchResult, error) {
	def, ok := e.Catalog.Asset(assetID)
	if !ok {
		return LaunchResult{}, fmt.Errorf("unknown asset %q", assetID)
	}
	if reason := e.checkRequirements(st, def.Requires); reason != "" {
		st.AppendLog(state.ToneWarning, fmt.Sprintf("%s: %s.", def.Name, reason))
		return LaunchResult{Reason: reason}, nil
	}
	if !st.SpendMoney(def.Setup.Cost) {
		st.AppendLog(state.ToneWarning, fmt.Sprintf("Not enough money to launch %s.", def.Name))
		return LaunchResult{Reason: "not enough money"}, nil
	}

	inst := &state.AssetInstance{
		ID:            uuid.NewString(),
		Status:        state.StatusSetup,
		DaysRemaining: def.Setup.Days,
		CreatedOnDay:  st.Day,
	}
	if def.Setup.Days <= 0 {
		inst.Status = state.StatusActive
	} else {
		// First setup day funds immediately when the hours fit.
		hours := e.setupHours(st, def)
		if st.TimeLeft >= hours {
			st.SpendTime(hours)
			inst.SetupFundedToday = true
		}
	}
	st.AssetState(assetID).Instances = append(st.AssetState(assetID).Instances, inst)
	st.AppendLog(state.ToneSuccess, fmt.Sprintf("Launched %s.", def.Name))
	e.Dirty.Mark(state.SectionAssets, state.SectionWallet, state.SectionTime)
	return LaunchResult{OK: true, InstanceID: inst.ID}, nil
}

func (e *Engine) checkRequirements(st *state.State, req catalog.RequirementDef) string {
	for _, upID := range req.Upgrades {
		if !st.UpgradeState(upID).Purchased {
			name := upID
			if def, ok := e.Catalog.Upgrade(upID); ok {
				name = def.Name
			}
			return fmt.Sprintf("requires %s", name)
		}
	}
	for assetID, min := range req.ActiveInstances {
		count := 0
		for _, inst := range st.AssetState(assetID).Instances {
			if inst.Status == state.StatusActive {
				count++
			}
		}
		if count < min {
			return fmt.Sprintf("requires %d active %s", min, assetID)
		}
	}
	return ""
}

func (e *Engine) setupHours(st *state.State, def *catalog.AssetDef) float64 {
	mult, _ := e.Upgrades.Multiplier(st, catalog.EffectSetupTimeMult, def.ID, def.Tags)
	return def.Setup.HoursPerDay * mult
}

func (e *Engine) maintenanceHours(st *state.State, def *catalog.AssetDef) float64 {
	mult, _ := e.Upgrades.Multiplier(st, catalog.EffectMaintTimeMult, def.ID, def.Tags)
	return def.Maintenance.Hours * mult
}

// AllocateMaintenance runs the daily funding pass: every instance, in
// catalog declaration order, tries to cover its hours (and upkeep cost
// for active instances) from the assistant pool and then the player's
// budget. Funding is all-or-nothing per instance; later assets starve
// when the budget runs dry, which is the intended allocation order.
// Funding an active instance also flushes its pending income.
func (e *Engine) AllocateMaintenance(st *state.State) {
	assistant := e.Upgrades.AssistantHours(st)
	for i := range e.Catalog.Assets {
		def := &e.Catalog.Assets[i]
		as, ok := st.Assets[def.ID]
		if !ok {
			continue
		}
		for _, inst := range as.Instances {
			inst.SetupFundedToday = false
			inst.MaintenanceFundedToday = false
			switch inst.Status {
			case state.StatusSetup:
				assistant = e.fundSetup(st, def, inst, assistant)
			case state.StatusActive:
				assistant = e.fundMaintenance(st, def, inst, assistant)
			}
		}
	}
	e.Dirty.Mark(state.SectionAssets, state.SectionTime, state.SectionWallet)
}

// fundSetup covers one setup day's hours. Partial hours are never
// banked: either the full requirement is met or nothing is spent.
func (e *Engine) fundSetup(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance, assistant float64) float64 {
	need := e.setupHours(st, def)
	fromPool := need
	if fromPool > assistant {
		fromPool = assistant
	}
	rest := need - fromPool
	if st.TimeLeft < rest {
		return assistant
	}
	st.SpendTime(rest)
	inst.SetupFundedToday = true
	return assistant - fromPool
}

// fundMaintenance covers an active instance's hours and upkeep cost,
// then flushes any queued payout into the wallet. The flush belongs to
// the funding pass, not the close-out: income settles when the next
// cycle's upkeep clears.
func (e *Engine) fundMaintenance(st *state.State, def *catalog.AssetDef, inst *state.AssetInstance, assistant float64) float64 {
	need := e.maintenanceHours(st, def)
	fromPool := need
	if fromPool > assistant {
		fromPool = assistant
	}
	rest := need - fromPool
	if st.TimeLeft < rest || st.Money < def.Maintenance.Cost {
		return assistant
	}
	st.SpendTime(rest)
	if !st.SpendMoney(def.Maintenance.Cost) {
		return assistant
	}
	inst.MaintenanceFundedToday = true

	if inst.PendingIncome > 0 {
		st.AddMoney(inst.PendingIncome)
		st.AppendLog(state.ToneSuccess, fmt.Sprintf("%s paid out $%d.", def.Name, inst.PendingIncome))
		inst.PendingIncome = 0
		e.Dirty.Mark(state.SectionWallet, state.SectionLog)
	}
	return assistant - fromPool
}

// FundInstance retries the funding pass for a single instance mid-day,
// e.g. after the player earns the money that was missing this morning.
func (e *Engine) FundInstance(st *state.State, assetID, instanceID string) (bool, error) {
	def, ok := e.Catalog.Asset(assetID)
	if !ok {
		return false, fmt.Errorf("unknown asset %q", assetID)
	}
	inst, _ := st.FindAssetInstance(assetID, instanceID)
	if inst == nil {
		return false, fmt.Errorf("asset %q: no instance %q", assetID, instanceID)
	}
	switch inst.Status {
	case state.StatusSetup:
		if inst.SetupFundedToday {
			return true, nil
		}
		e.fundSetup(st, def, inst, 0)
		e.Dirty.Mark(state.SectionAssets, state.SectionTime)
		return inst.SetupFundedToday, nil
	case state.StatusActive:
		if inst.MaintenanceFundedToday {
			return true, nil
		}
		e.fundMaintenance(st, def, inst, 0)
		e.Dirty.Mark(state.SectionAssets, state.SectionTime, state.SectionWallet)
		return inst.MaintenanceFundedToday, nil
	default:
		return false, nil
	}
}
