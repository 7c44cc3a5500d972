package game

import (
	"time"

	"sidegig/internal/state"
)

// AccruePassive advances the passive trickle by one elapsed delta.
func (e *Engine) AccruePassive(dt time.Duration) state.Money {
	var flushed state.Money
	_ = e.mutate(func(st *state.State) error {
		flushed = e.Assets.AccruePassive(st, dt.Hours())
		return nil
	})
	return flushed
}

// CatchUp replays the wall-clock gap since the last save as a single
// large accrual delta. Same formula as the live tick, one big dt.
func (e *Engine) CatchUp() state.Money {
	var flushed state.Money
	_ = e.mutate(func(st *state.State) error {
		if st.LastSaved <= 0 {
			return nil
		}
		gap := e.Clock.Now().Sub(time.Unix(st.LastSaved, 0))
		if gap <= 0 {
			return nil
		}
		flushed = e.Assets.AccruePassive(st, gap.Hours())
		if flushed > 0 {
			st.AppendLog(state.ToneInfo, "While you were away, your ventures kept earning.")
		}
		return nil
	})
	return flushed
}
