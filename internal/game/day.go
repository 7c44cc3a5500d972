package game

import (
	"fmt"

	"sidegig/internal/state"
)

// DayReport summarizes one settlement pass.
type DayReport struct {
	Day           int     `json:"day"`
	EventsExpired int     `json:"eventsExpired"`
	EventsSpawned int     `json:"eventsSpawned"`
	TimeLeft      float64 `json:"timeLeft"`
	Money         int64   `json:"money"`
}

// EndDay advances the day on player request.
func (e *Engine) EndDay() DayReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleLocked()
}

// settleLocked runs the settlement sequence. The order is fixed;
// automatic day-end (time exhausted) and the explicit call share this
// one path so offline catch-up and live play settle identically.
func (e *Engine) settleLocked() DayReport {
	e.settling = true
	defer func() { e.settling = false }()
	st := e.st

	// 1-2. Close out every asset: setup days advance, funded payouts
	// queue, neglected instances show zero output.
	e.Assets.CloseOutDay(st)

	// 3. Event decay, then orphan pruning.
	expired := e.Events.AdvanceAfterDay(st)
	expired += e.Events.CleanupMissingTargets(st)

	// 4. Niche trend draw, at most one new event per niche.
	spawned := e.Events.MaybeSpawnNicheEvents(st)

	// 5. Deferred completions and the overdue-instance sweep.
	e.Actions.SettleDay(st)

	// 6-7. Daily-limited counters reset lazily via their day stamps;
	// consumable bonus time does not carry over.
	st.DailyBonusTime = 0
	st.Day++
	st.TimeLeft = st.TimeCap()
	st.AppendLog(state.ToneInfo, fmt.Sprintf("Day %d begins.", st.Day))

	// 8. Fund the new day so funded/unfunded status is visible from
	// the first moment.
	e.Assets.AllocateMaintenance(st)

	e.Dirty.Mark(state.SectionDay, state.SectionTime, state.SectionWallet,
		state.SectionActions, state.SectionAssets, state.SectionEvents, state.SectionLog)

	return DayReport{
		Day:           st.Day,
		EventsExpired: expired,
		EventsSpawned: len(spawned),
		TimeLeft:      st.TimeLeft,
		Money:         st.Money,
	}
}

// checkDayEndLocked is the coalescing automatic trigger: when an
// operation drains the clock, the day settles once, even if several
// triggers fire in the same batch. Settlement itself refills the
// budget, so the loop below runs at most once per exhausted day.
func (e *Engine) checkDayEndLocked() {
	if e.settling || e.dayEndPending {
		return
	}
	e.dayEndPending = true
	defer func() { e.dayEndPending = false }()
	for e.st.TimeLeft <= 1e-9 {
		before := e.st.TimeLeft
		e.settleLocked()
		if e.st.TimeLeft <= before {
			// A catalog with a zero time budget must not spin.
			break
		}
	}
}
