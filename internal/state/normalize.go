package state

// CurrentVersion is the persisted document shape version. Bump when a
// migration is added in internal/persistence.
const CurrentVersion = 2

// Normalize repairs a hydrated document in place: nil maps become empty,
// out-of-band numbers are clamped, and instances with impossible status
// values are coerced to something playable. Loading never fails on a
// damaged but parseable document.
func (s *State) Normalize() {
	if s.Day < 1 {
		s.Day = 1
	}
	if s.Money < 0 {
		s.Money = 0
	}
	if s.BaseTime <= 0 {
		s.BaseTime = 14
	}
	if s.TimeLeft < 0 {
		s.TimeLeft = 0
	}
	if cap := s.TimeCap(); s.TimeLeft > cap {
		s.TimeLeft = cap
	}
	if s.Actions == nil {
		s.Actions = map[string]*ActionState{}
	}
	if s.Assets == nil {
		s.Assets = map[string]*AssetState{}
	}
	if s.Upgrades == nil {
		s.Upgrades = map[string]*UpgradeState{}
	}
	if s.Events.Active == nil {
		s.Events.Active = []*EventEntry{}
	}

	for id, entry := range s.Actions {
		if entry == nil {
			delete(s.Actions, id)
			continue
		}
		kept := entry.Instances[:0]
		for _, inst := range entry.Instances {
			if inst == nil || inst.ID == "" {
				continue
			}
			switch inst.Status {
			case StatusActive, StatusCompleted, StatusExpired:
			default:
				inst.Status = StatusActive
			}
			if inst.Progress.HoursLogged < 0 {
				inst.Progress.HoursLogged = 0
			}
			if inst.Progress.DaysCompleted < 0 {
				inst.Progress.DaysCompleted = 0
			}
			kept = append(kept, inst)
		}
		entry.Instances = kept
	}

	for id, entry := range s.Assets {
		if entry == nil {
			delete(s.Assets, id)
			continue
		}
		kept := entry.Instances[:0]
		for _, inst := range entry.Instances {
			if inst == nil || inst.ID == "" {
				continue
			}
			switch inst.Status {
			case StatusSetup, StatusActive, StatusRetired:
			default:
				inst.Status = StatusSetup
			}
			if inst.DaysRemaining < 0 {
				inst.DaysRemaining = 0
			}
			if inst.Quality.Level < 0 {
				inst.Quality.Level = 0
			}
			if inst.PendingIncome < 0 {
				inst.PendingIncome = 0
			}
			if inst.PassiveBuffer < 0 {
				inst.PassiveBuffer = 0
			}
			kept = append(kept, inst)
		}
		entry.Instances = kept
	}

	kept := s.Events.Active[:0]
	for _, e := range s.Events.Active {
		if e == nil || e.ID == "" || e.RemainingDays <= 0 {
			continue
		}
		e.CurrentPercent = ClampPercent(e.CurrentPercent)
		kept = append(kept, e)
	}
	s.Events.Active = kept

	if len(s.Log) > LogCap {
		s.Log = append(s.Log[:0], s.Log[len(s.Log)-LogCap:]...)
	}
}
