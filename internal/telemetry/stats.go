// Package telemetry derives balance snapshots from a state document.
// Read-only: it never mutates the state it inspects.
package telemetry

import (
	"sidegig/internal/state"
)

type Stats struct {
	Day         int         `json:"day"`
	Money       state.Money `json:"money"`
	TotalEarned state.Money `json:"totalEarned"`
	TotalSpent  state.Money `json:"totalSpent"`
	EarnedPerDay float64    `json:"earnedPerDay"`

	ActionsOpen      int `json:"actionsOpen"`
	ActionsCompleted int `json:"actionsCompleted"`
	ActionsExpired   int `json:"actionsExpired"`

	AssetsInSetup int         `json:"assetsInSetup"`
	AssetsActive  int         `json:"assetsActive"`
	AssetIncome   state.Money `json:"assetIncome"`

	UpgradesOwned int `json:"upgradesOwned"`
	ActiveEvents  int `json:"activeEvents"`

	LogByTone map[state.LogTone]int `json:"logByTone"`
}

// Snapshot tallies the document into one report. Call it under the
// engine lock (game.Engine.View).
func Snapshot(st *state.State) Stats {
	stats := Stats{
		Day:          st.Day,
		Money:        st.Money,
		TotalEarned:  st.Totals.Earned,
		TotalSpent:   st.Totals.Spent,
		ActiveEvents: len(st.Events.Active),
		LogByTone:    map[state.LogTone]int{},
	}

	for _, as := range st.Actions {
		for _, inst := range as.Instances {
			switch inst.Status {
			case state.StatusActive, state.StatusPending:
				stats.ActionsOpen++
			case state.StatusCompleted:
				stats.ActionsCompleted++
			case state.StatusExpired:
				stats.ActionsExpired++
			}
		}
	}

	for _, as := range st.Assets {
		for _, inst := range as.Instances {
			switch inst.Status {
			case state.StatusSetup:
				stats.AssetsInSetup++
			case state.StatusActive:
				stats.AssetsActive++
			}
			stats.AssetIncome += inst.TotalIncome
		}
	}

	for _, us := range st.Upgrades {
		if us.Count > 0 {
			stats.UpgradesOwned++
		}
	}

	for _, entry := range st.Log {
		stats.LogByTone[entry.Tone]++
	}

	if st.Day > 0 {
		stats.EarnedPerDay = float64(st.Totals.Earned) / float64(st.Day)
	}
	return stats
}
