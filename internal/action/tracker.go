package action

import "sidegig/internal/state"

// Daily-limit tracker over the day-stamped counters in ActionState.
// Crossing a day boundary resets lazily: a counter stamped with an
// older day reads as zero, so no sweep is needed at the boundary.
//
// Reserve holds capacity while a run is open; Consume converts the
// reservation into a used run, Release hands it back. The invariant
// used + pending <= limit holds at every step.

// UsedToday reads the consumed-run counter as of the given day.
func UsedToday(as *state.ActionState, day int) int {
	if as.LastRunDay != day {
		return 0
	}
	return as.RunsToday
}

// PendingToday reads the open-reservation counter as of the given day.
func PendingToday(as *state.ActionState, day int) int {
	if as.PendingAcceptsDay != day {
		return 0
	}
	return as.PendingAccepts
}

// Reserve takes one slot of capacity. Returns false when used+pending
// has reached the limit; a limit of zero or less means unlimited.
func Reserve(as *state.ActionState, day, limit int) bool {
	if limit > 0 && UsedToday(as, day)+PendingToday(as, day) >= limit {
		return false
	}
	as.PendingAccepts = PendingToday(as, day) + 1
	as.PendingAcceptsDay = day
	return true
}

// Release returns an unconsumed reservation, e.g. when an accepted
// instance expires before completing.
func Release(as *state.ActionState, day int) {
	p := PendingToday(as, day)
	if p <= 0 {
		return
	}
	as.PendingAccepts = p - 1
	as.PendingAcceptsDay = day
}

// Consume converts a reservation into a used run on completion. A
// reservation stamped on an earlier day has already evaporated; the
// run still counts against the completion day.
func Consume(as *state.ActionState, day int) {
	as.RunsToday = UsedToday(as, day) + 1
	as.LastRunDay = day
	p := PendingToday(as, day)
	if p > 0 {
		as.PendingAccepts = p - 1
		as.PendingAcceptsDay = day
	}
}
