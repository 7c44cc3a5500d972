// Package event runs the temporary-modifier ledger: blueprint-driven
// trigger rolls, the once-per-day niche trend draw, daily decay, and
// orphan pruning. Entries live in the state document; this package owns
// every mutation of them.
package event

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/state"
)

type Engine struct {
	Catalog *catalog.Catalog
	Rand    entropy.Source
}

func NewEngine(c *catalog.Catalog, rnd entropy.Source) *Engine {
	return &Engine{Catalog: c, Rand: rnd}
}

// TriggerContext carries the situation a blueprint is evaluated in.
type TriggerContext struct {
	Asset    *catalog.AssetDef
	Instance *state.AssetInstance
}

// MaybeTriggerAssetEvents evaluates every blueprint registered for the
// trigger against one instance. Each blueprint rolls independently; a
// blueprint is suppressed while the same template, or any entry of the
// same tone, is already live on that instance. Returns the entries
// created.
func (e *Engine) MaybeTriggerAssetEvents(st *state.State, when catalog.BlueprintTrigger, ctx TriggerContext) []*state.EventEntry {
	if ctx.Asset == nil || ctx.Instance == nil {
		return nil
	}
	var created []*state.EventEntry
	for _, bp := range e.Catalog.BlueprintsFor(when) {
		if !bp.AppliesTo.Matches(ctx.Asset.ID, ctx.Asset.Tags) {
			continue
		}
		if st.Events.HasForInstance(bp.ID, ctx.Asset.ID, ctx.Instance.ID) {
			continue
		}
		if e.hasToneForInstance(st, bp.Tone, ctx.Asset.ID, ctx.Instance.ID) {
			continue
		}
		chance := bp.Chance + bp.QualityChanceStep*float64(ctx.Instance.Quality.Level)
		if chance <= 0 || e.Rand.Float64() >= chance {
			continue
		}
		entry := e.spawn(bp, st.Day, ctx.Asset.Name)
		if entry == nil {
			continue
		}
		entry.Target = state.TargetAssetInstance
		entry.AssetID = ctx.Asset.ID
		entry.InstanceID = ctx.Instance.ID
		st.Events.Append(entry)
		st.AppendLog(toneOf(bp.Tone), entry.Label)
		created = append(created, entry)
	}
	return created
}

// MaybeSpawnNicheEvents performs the once-per-day trend draw: for each
// niche with no live trend, one weighted draw across the niche
// blueprints, at most one new event per niche. Re-invocation on the
// same day is a no-op.
func (e *Engine) MaybeSpawnNicheEvents(st *state.State) []*state.EventEntry {
	if st.Events.LastNicheRollDay == st.Day {
		return nil
	}
	st.Events.LastNicheRollDay = st.Day

	candidates := e.Catalog.BlueprintsFor(catalog.TriggerNicheTrend)
	if len(candidates) == 0 {
		return nil
	}

	var created []*state.EventEntry
	for _, niche := range e.Catalog.Niches {
		if st.Events.HasForNiche(niche.ID) {
			continue
		}
		bp, ok := e.weightedDraw(candidates)
		if !ok {
			continue
		}
		entry := e.spawn(bp, st.Day, niche.Name)
		if entry == nil {
			continue
		}
		entry.Target = state.TargetNiche
		entry.NicheID = niche.ID
		st.Events.Append(entry)
		st.AppendLog(toneOf(bp.Tone), entry.Label)
		created = append(created, entry)
	}
	return created
}

// AdvanceAfterDay applies one day of decay: percent drifts by the daily
// change, then the day counter drops; spent entries are pruned. Returns
// how many entries were removed.
func (e *Engine) AdvanceAfterDay(st *state.State) int {
	for _, entry := range st.Events.Active {
		entry.CurrentPercent = state.ClampPercent(entry.CurrentPercent + entry.DailyPercentChange)
		entry.RemainingDays--
	}
	return st.Events.Retain(func(entry *state.EventEntry) bool {
		return entry.RemainingDays > 0
	})
}

// CleanupMissingTargets prunes entries whose target no longer exists.
// No entry may outlive its asset instance or niche.
func (e *Engine) CleanupMissingTargets(st *state.State) int {
	return st.Events.Retain(func(entry *state.EventEntry) bool {
		switch entry.Target {
		case state.TargetAssetInstance:
			inst, _ := st.FindAssetInstance(entry.AssetID, entry.InstanceID)
			return inst != nil
		case state.TargetNiche:
			_, ok := e.Catalog.Niche(entry.NicheID)
			return ok
		default:
			return false
		}
	})
}

// spawn rolls magnitude and duration for a blueprint. Returns nil for
// a blueprint whose rolled duration is non-positive; a malformed
// template skips quietly rather than aborting settlement.
func (e *Engine) spawn(bp catalog.EventBlueprint, day int, targetName string) *state.EventEntry {
	days := entropy.IntInRange(e.Rand, bp.DaysMin, bp.DaysMax)
	if days <= 0 {
		return nil
	}
	percent := state.ClampPercent(entropy.InRange(e.Rand, bp.PercentMin, bp.PercentMax))

	change := bp.DailyChange
	if bp.DailyChangeKind == "fade" {
		change = -percent / float64(days)
	}

	label := bp.Label
	if strings.Contains(label, "%s") {
		label = fmt.Sprintf(label, targetName)
	}

	return &state.EventEntry{
		ID:                 uuid.NewString(),
		BlueprintID:        bp.ID,
		Label:              label,
		Tone:               bp.Tone,
		CurrentPercent:     percent,
		DailyPercentChange: change,
		RemainingDays:      days,
		TotalDays:          days,
		StartedOnDay:       day,
	}
}

func (e *Engine) hasToneForInstance(st *state.State, tone, assetID, instanceID string) bool {
	if tone == "" {
		return false
	}
	for _, entry := range st.Events.Active {
		if entry.Target == state.TargetAssetInstance &&
			entry.AssetID == assetID && entry.InstanceID == instanceID &&
			entry.Tone == tone {
			return true
		}
	}
	return false
}

// weightedDraw picks one blueprint by weight. A blueprint with no
// positive weight falls back to its chance; entries with neither are
// excluded from the draw.
func (e *Engine) weightedDraw(candidates []catalog.EventBlueprint) (catalog.EventBlueprint, bool) {
	total := 0.0
	weights := make([]float64, len(candidates))
	for i, bp := range candidates {
		w := bp.Weight
		if w <= 0 {
			w = bp.Chance
		}
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return catalog.EventBlueprint{}, false
	}
	r := e.Rand.Float64() * total
	for i, bp := range candidates {
		r -= weights[i]
		if r < 0 {
			return bp, true
		}
	}
	return candidates[len(candidates)-1], true
}

func toneOf(tone string) state.LogTone {
	switch tone {
	case "positive":
		return state.ToneSuccess
	case "negative":
		return state.ToneWarning
	default:
		return state.ToneInfo
	}
}
