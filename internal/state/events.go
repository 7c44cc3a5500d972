package state

// EventTarget says what an event entry modifies.
type EventTarget string

const (
	// TargetAssetInstance scopes an event to a single owned instance.
	TargetAssetInstance EventTarget = "assetInstance"
	// TargetNiche scopes an event to every instance assigned to a niche.
	TargetNiche EventTarget = "niche"
)

// EventEntry is one live income modifier in the ledger.
type EventEntry struct {
	ID          string      `json:"id"`
	BlueprintID string      `json:"blueprintId"`
	Target      EventTarget `json:"target"`

	// AssetID+InstanceID are set for assetInstance targets,
	// NicheID for niche targets.
	AssetID    string `json:"assetId,omitempty"`
	InstanceID string `json:"instanceId,omitempty"`
	NicheID    string `json:"nicheId,omitempty"`

	Label string `json:"label"`
	Tone  string `json:"tone,omitempty"`

	// CurrentPercent is the live modifier, e.g. 0.25 for +25%.
	// Clamped to [-0.95, 5] after every mutation.
	CurrentPercent     float64 `json:"currentPercent"`
	DailyPercentChange float64 `json:"dailyPercentChange"`
	RemainingDays      int     `json:"remainingDays"`
	TotalDays          int     `json:"totalDays"`
	StartedOnDay       int     `json:"startedOnDay"`
}

// EventLedger holds every live modifier. Order is append order; decay
// and pruning preserve it.
type EventLedger struct {
	Active []*EventEntry `json:"active"`
	// LastNicheRollDay guards the once-per-day niche trend draw.
	LastNicheRollDay int `json:"lastNicheRollDay,omitempty"`
}

const (
	// PercentFloor and PercentCeil bound any live modifier.
	PercentFloor = -0.95
	PercentCeil  = 5.0
)

// ClampPercent bounds a modifier percent to the allowed band.
func ClampPercent(p float64) float64 {
	if p < PercentFloor {
		return PercentFloor
	}
	if p > PercentCeil {
		return PercentCeil
	}
	return p
}

// Append adds an entry to the ledger.
func (l *EventLedger) Append(e *EventEntry) {
	e.CurrentPercent = ClampPercent(e.CurrentPercent)
	l.Active = append(l.Active, e)
}

// ForInstance returns the live entries that apply to one instance,
// both direct and via its niche, in ledger order.
func (l *EventLedger) ForInstance(assetID, instanceID, nicheID string) []*EventEntry {
	var out []*EventEntry
	for _, e := range l.Active {
		switch e.Target {
		case TargetAssetInstance:
			if e.AssetID == assetID && e.InstanceID == instanceID {
				out = append(out, e)
			}
		case TargetNiche:
			if nicheID != "" && e.NicheID == nicheID {
				out = append(out, e)
			}
		}
	}
	return out
}

// HasForInstance reports whether a blueprint already has a live entry
// on the given instance. Used for duplicate suppression.
func (l *EventLedger) HasForInstance(blueprintID, assetID, instanceID string) bool {
	for _, e := range l.Active {
		if e.BlueprintID == blueprintID && e.Target == TargetAssetInstance &&
			e.AssetID == assetID && e.InstanceID == instanceID {
			return true
		}
	}
	return false
}

// HasForNiche reports whether any live entry targets the given niche.
func (l *EventLedger) HasForNiche(nicheID string) bool {
	for _, e := range l.Active {
		if e.Target == TargetNiche && e.NicheID == nicheID {
			return true
		}
	}
	return false
}

// Retain keeps only the entries the predicate accepts, preserving order.
func (l *EventLedger) Retain(keep func(*EventEntry) bool) int {
	out := l.Active[:0]
	removed := 0
	for _, e := range l.Active {
		if keep(e) {
			out = append(out, e)
		} else {
			removed++
		}
	}
	l.Active = out
	return removed
}
