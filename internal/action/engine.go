// Package action runs the generic time-boxed task lifecycle: instant
// hustles, multi-day contracts, and study tracks all share one shape.
// Availability gating, acceptance with capacity reservation, progress
// accrual, and payout on completion.
package action

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"sidegig/internal/catalog"
	"sidegig/internal/state"
	"sidegig/internal/upgrade"
)

type Engine struct {
	Catalog  *catalog.Catalog
	Upgrades *upgrade.Engine
	Dirty    *state.DirtyBus
}

func NewEngine(c *catalog.Catalog, up *upgrade.Engine, dirty *state.DirtyBus) *Engine {
	return &Engine{Catalog: c, Upgrades: up, Dirty: dirty}
}

// Availability is a side-effect-free gate check. Reason is set on the
// first failing guard.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func (e *Engine) Availability(st *state.State, def *catalog.ActionDef) Availability {
	as := st.ActionState(def.ID)

	if def.Availability.Policy == catalog.AvailabilityDailyLimit {
		limit := def.Availability.DailyLimit
		if UsedToday(as, st.Day)+PendingToday(as, st.Day) >= limit {
			return Availability{Reason: "daily limit reached"}
		}
	}
	if def.Availability.Policy == catalog.AvailabilityEnrollable {
		for _, inst := range as.Instances {
			if inst.Status == state.StatusActive {
				return Availability{Reason: "already enrolled"}
			}
			if inst.Status == state.StatusCompleted {
				return Availability{Reason: "already completed"}
			}
		}
	}
	if st.Money < def.MoneyCost {
		return Availability{Reason: "not enough money"}
	}
	if st.TimeLeft < e.upfrontHours(def) {
		return Availability{Reason: "not enough time"}
	}
	for _, reqID := range def.Requires.Upgrades {
		if !st.UpgradeState(reqID).Purchased {
			return Availability{Reason: fmt.Sprintf("requires upgrade %s", reqID)}
		}
	}
	for assetID, min := range def.Requires.ActiveInstances {
		count := 0
		for _, inst := range st.AssetState(assetID).Instances {
			if inst.Status == state.StatusActive {
				count++
			}
		}
		if count < min {
			return Availability{Reason: fmt.Sprintf("requires %d active %s", min, assetID)}
		}
	}
	return Availability{Available: true}
}

// upfrontHours is the time an accept must fit in today's budget: the
// flat accept cost plus the first slice of work.
func (e *Engine) upfrontHours(def *catalog.ActionDef) float64 {
	hours := def.TimeCost
	if def.Progress.DayBased() {
		hours += def.Progress.HoursPerDay
	} else if def.Progress.Completion == catalog.CompletionInstant {
		hours += def.Progress.HoursRequired
	}
	return hours
}

// AcceptOverrides adjust the instance built from the template, e.g. a
// market offer quoting non-standard hours.
type AcceptOverrides struct {
	HoursRequired float64 `json:"hoursRequired,omitempty"`
}

// Accept reserves capacity and creates an instance. Returns a nil
// instance with a reason when a guard fails; callers are expected to
// have checked Availability first, so the re-check here only closes
// the window between check and accept.
func (e *Engine) Accept(st *state.State, id string, ov AcceptOverrides) (*state.ActionInstance, Availability, error) {
	def, ok := e.Catalog.Action(id)
	if !ok {
		return nil, Availability{}, fmt.Errorf("unknown action %q", id)
	}
	if avail := e.Availability(st, def); !avail.Available {
		st.AppendLog(state.ToneWarning, fmt.Sprintf("%s: %s.", def.Name, avail.Reason))
		return nil, avail, nil
	}

	as := st.ActionState(id)
	if def.Availability.Policy == catalog.AvailabilityDailyLimit {
		if !Reserve(as, st.Day, def.Availability.DailyLimit) {
			return nil, Availability{Reason: "daily limit reached"}, nil
		}
	}
	if !st.SpendMoney(def.MoneyCost) {
		Release(as, st.Day)
		return nil, Availability{Reason: "not enough money"}, nil
	}
	st.SpendTime(def.TimeCost)

	hoursRequired := def.Progress.HoursRequired
	if ov.HoursRequired > 0 {
		hoursRequired = ov.HoursRequired
	}
	inst := &state.ActionInstance{
		ID:            uuid.NewString(),
		AcceptedOnDay: st.Day,
		Status:        state.StatusActive,
		Progress: state.ActionProgress{
			HoursRequired: hoursRequired,
			HoursPerDay:   def.Progress.HoursPerDay,
			DaysRequired:  def.Progress.DaysRequired,
			DailyLog:      map[int]float64{},
		},
	}
	// The deadline is pinned at acceptance: expiry windows count from
	// today, and a daily-limited action with no window must finish the
	// day it was taken.
	if def.Availability.ExpiryDays > 0 {
		inst.DeadlineDay = st.Day + def.Availability.ExpiryDays - 1
	} else if def.Availability.Policy == catalog.AvailabilityDailyLimit {
		inst.DeadlineDay = st.Day
	}
	as.Instances = append(as.Instances, inst)

	e.Dirty.Mark(state.SectionActions, state.SectionWallet, state.SectionTime)
	return inst, Availability{Available: true}, nil
}

// WorkResult reports one work call.
type WorkResult struct {
	OK          bool    `json:"ok"`
	Reason      string  `json:"reason,omitempty"`
	HoursLogged float64 `json:"hoursLogged,omitempty"`
	Completed   bool    `json:"completed,omitempty"`
	Payout      int64   `json:"payout,omitempty"`
}

// Work logs hours against an instance. Hours come out of today's
// budget; for day-based templates the day counter advances at most
// once per day regardless of how often Work is called. Instant
// instances finalize as soon as their requirement is met.
func (e *Engine) Work(st *state.State, actionID, instanceID string, hours float64) (WorkResult, error) {
	def, ok := e.Catalog.Action(actionID)
	if !ok {
		return WorkResult{}, fmt.Errorf("unknown action %q", actionID)
	}
	inst := st.FindActionInstance(actionID, instanceID)
	if inst == nil {
		return WorkResult{}, fmt.Errorf("action %q: no instance %q", actionID, instanceID)
	}
	if inst.Status != state.StatusActive {
		return WorkResult{Reason: "instance is not active"}, nil
	}
	if hours <= 0 {
		hours = def.Progress.HoursPerDay
	}
	if hours <= 0 {
		hours = inst.Progress.HoursRequired - inst.Progress.HoursLogged
	}
	if hours <= 0 {
		return WorkResult{Reason: "nothing left to work"}, nil
	}
	if st.TimeLeft < hours {
		st.AppendLog(state.ToneWarning, fmt.Sprintf("Not enough time left for %s.", def.Name))
		return WorkResult{Reason: "not enough time"}, nil
	}

	st.SpendTime(hours)
	e.advance(inst, st.Day, hours)
	e.Dirty.Mark(state.SectionActions, state.SectionTime)

	res := WorkResult{OK: true, HoursLogged: inst.Progress.HoursLogged}
	if def.Progress.Completion == catalog.CompletionInstant && e.requirementMet(def, inst) {
		payout := e.complete(st, def, inst)
		res.Completed = true
		res.Payout = payout
	}
	return res, nil
}

// advance adds hours to the running totals. Monotonic: nothing here
// ever decreases. The per-day counter moves once per distinct day.
func (e *Engine) advance(inst *state.ActionInstance, day int, hours float64) {
	p := &inst.Progress
	p.HoursLogged += hours
	if p.DailyLog == nil {
		p.DailyLog = map[int]float64{}
	}
	p.DailyLog[day] += hours
	if p.DaysRequired > 0 && p.LastWorkedDay != day {
		p.DaysCompleted++
	}
	p.LastWorkedDay = day
}

// Complete finalizes a manual-completion instance on player request.
func (e *Engine) Complete(st *state.State, actionID, instanceID string) (WorkResult, error) {
	def, ok := e.Catalog.Action(actionID)
	if !ok {
		return WorkResult{}, fmt.Errorf("unknown action %q", actionID)
	}
	inst := st.FindActionInstance(actionID, instanceID)
	if inst == nil {
		return WorkResult{}, fmt.Errorf("action %q: no instance %q", actionID, instanceID)
	}
	if inst.Status != state.StatusActive {
		return WorkResult{Reason: "instance is not active"}, nil
	}
	if !e.requirementMet(def, inst) {
		return WorkResult{Reason: "work remaining"}, nil
	}
	payout := e.complete(st, def, inst)
	return WorkResult{OK: true, Completed: true, Payout: payout}, nil
}

// SettleDay runs the day-boundary sweep for every action: deferred
// instances whose requirement is met finalize, then overdue instances
// expire and hand their reservation back. The sweep walks the catalog
// in declaration order so log output is stable run to run.
func (e *Engine) SettleDay(st *state.State) {
	for i := range e.Catalog.Actions {
		def := &e.Catalog.Actions[i]
		as, ok := st.Actions[def.ID]
		if !ok {
			continue
		}
		for _, inst := range as.Instances {
			if inst.Status != state.StatusActive {
				continue
			}
			if def.Progress.Completion == catalog.CompletionDeferred && e.requirementMet(def, inst) {
				e.complete(st, def, inst)
				continue
			}
			if inst.DeadlineDay > 0 && st.Day >= inst.DeadlineDay {
				inst.Status = state.StatusExpired
				Release(as, st.Day)
				st.AppendLog(state.ToneWarning, fmt.Sprintf("%s expired unfinished.", def.Name))
				e.Dirty.Mark(state.SectionActions)
			}
		}
	}
}

func (e *Engine) requirementMet(def *catalog.ActionDef, inst *state.ActionInstance) bool {
	p := inst.Progress
	if p.DaysRequired > 0 {
		return p.DaysCompleted >= p.DaysRequired
	}
	if p.HoursRequired > 0 {
		return p.HoursLogged+1e-9 >= p.HoursRequired
	}
	return true
}

// complete finalizes an instance: payout chain, wallet credit, log,
// reservation consumed.
func (e *Engine) complete(st *state.State, def *catalog.ActionDef, inst *state.ActionInstance) int64 {
	payout := e.payout(st, def)
	inst.Status = state.StatusCompleted
	inst.CompletedOn = st.Day
	inst.PayoutAwarded = payout

	if payout > 0 {
		st.AddMoney(payout)
	}
	msg := def.Payout.LogMessage
	if msg == "" {
		msg = fmt.Sprintf("%s completed.", def.Name)
	}
	if payout > 0 {
		msg = fmt.Sprintf("%s +$%d", msg, payout)
	}
	st.AppendLog(state.ToneSuccess, msg)

	if def.Availability.Policy == catalog.AvailabilityDailyLimit {
		Consume(st.ActionState(def.ID), st.Day)
	}
	e.Dirty.Mark(state.SectionActions, state.SectionWallet, state.SectionLog)
	return payout
}

// payout chains the reward: base amount, then each education boost
// (flat added, then its multiplier), then the combined upgrade payout
// multiplier, then rounding to a whole unit.
func (e *Engine) payout(st *state.State, def *catalog.ActionDef) int64 {
	amount := float64(def.Payout.Amount)
	if amount <= 0 {
		return 0
	}
	boosts := e.Catalog.BoostsFor(def.ID, def.Tags, func(trackID string) bool {
		return e.trackCompleted(st, trackID)
	})
	for _, b := range boosts {
		amount += float64(b.Flat)
		if b.Multiplier > 0 {
			amount *= b.Multiplier
		}
	}
	mult, _ := e.Upgrades.Multiplier(st, catalog.EffectPayoutMult, def.ID, def.Tags)
	amount *= mult
	return int64(math.Round(amount))
}

func (e *Engine) trackCompleted(st *state.State, trackID string) bool {
	as, ok := st.Actions[trackID]
	if !ok {
		return false
	}
	for _, inst := range as.Instances {
		if inst.Status == state.StatusCompleted {
			return true
		}
	}
	return false
}
