package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/state"
)

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := &catalog.Catalog{
		Assets: []catalog.AssetDef{
			{
				ID: "blog", Name: "Blog",
				Setup:         catalog.SetupDef{Days: 1, HoursPerDay: 1},
				Maintenance:   catalog.MaintenanceDef{Hours: 1},
				QualityLevels: []catalog.QualityLevelDef{{Name: "Base", IncomeMin: 1, IncomeMax: 2}},
			},
		},
		Niches: []catalog.NicheDef{{ID: "tech", Name: "Tech"}},
		Blueprints: []catalog.EventBlueprint{
			{
				ID: "spike", Label: "%s spiked", Tone: "positive",
				When: catalog.TriggerPayout, Chance: 0.5,
				PercentMin: 0.2, PercentMax: 0.2, DaysMin: 2, DaysMax: 2,
				DailyChangeKind: "fade",
			},
			{
				ID: "trend-up", Label: "%s booming", Tone: "positive",
				When: catalog.TriggerNicheTrend, Weight: 3,
				PercentMin: 0.3, PercentMax: 0.3, DaysMin: 3, DaysMax: 3,
			},
			{
				ID: "trend-down", Label: "%s slump", Tone: "negative",
				When: catalog.TriggerNicheTrend, Weight: 1,
				PercentMin: -0.4, PercentMax: -0.4, DaysMin: 3, DaysMax: 3,
			},
		},
	}
	require.NoError(t, c.Finalize())
	return c
}

func blogInstance(st *state.State) (*catalog.AssetDef, *state.AssetInstance) {
	inst := &state.AssetInstance{ID: "i1", Status: state.StatusActive}
	st.AssetState("blog").Instances = append(st.AssetState("blog").Instances, inst)
	return nil, inst
}

func TestTriggerRollCreatesEntry(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	_, inst := blogInstance(st)
	def, _ := c.Asset("blog")

	// 0.1 < 0.5 chance: the roll succeeds. Fixed ranges consume no draws.
	eng := NewEngine(c, &entropy.Scripted{Values: []float64{0.1}})
	created := eng.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, TriggerContext{Asset: def, Instance: inst})

	require.Len(t, created, 1)
	e := created[0]
	assert.Equal(t, "spike", e.BlueprintID)
	assert.Equal(t, "Blog spiked", e.Label)
	assert.Equal(t, 0.2, e.CurrentPercent)
	assert.Equal(t, 2, e.RemainingDays)
	assert.InDelta(t, -0.1, e.DailyPercentChange, 1e-9, "fade reaches zero over the duration")
	assert.Equal(t, state.TargetAssetInstance, e.Target)
	require.Len(t, st.Log, 1)
}

func TestTriggerRollFailureAndSuppression(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	_, inst := blogInstance(st)
	def, _ := c.Asset("blog")

	// 0.9 >= 0.5: no event.
	eng := NewEngine(c, &entropy.Scripted{Values: []float64{0.9}})
	assert.Empty(t, eng.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, TriggerContext{Asset: def, Instance: inst}))

	// Success, then a same-template re-roll is suppressed outright.
	eng = NewEngine(c, &entropy.Scripted{Values: []float64{0.1}})
	require.Len(t, eng.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, TriggerContext{Asset: def, Instance: inst}), 1)
	assert.Empty(t, eng.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, TriggerContext{Asset: def, Instance: inst}))
	assert.Len(t, st.Events.Active, 1)
}

func TestQualityChanceStepScalesOdds(t *testing.T) {
	c := fixtureCatalog(t)
	c.Blueprints[0].Chance = 0.1
	c.Blueprints[0].QualityChanceStep = 0.3
	st := state.New(14)
	_, inst := blogInstance(st)
	inst.Quality.Level = 2
	def, _ := c.Asset("blog")

	// Effective chance 0.1 + 2*0.3 = 0.7; a 0.6 roll passes.
	eng := NewEngine(c, &entropy.Scripted{Values: []float64{0.6}})
	assert.Len(t, eng.MaybeTriggerAssetEvents(st, catalog.TriggerPayout, TriggerContext{Asset: def, Instance: inst}), 1)
}

func TestNicheDrawOncePerDayAndWeighted(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)

	// Total weight 4; a 0.9 draw lands past trend-up (3) into trend-down.
	eng := NewEngine(c, &entropy.Scripted{Values: []float64{0.9}})
	created := eng.MaybeSpawnNicheEvents(st)
	require.Len(t, created, 1)
	assert.Equal(t, "trend-down", created[0].BlueprintID)
	assert.Equal(t, state.TargetNiche, created[0].Target)
	assert.Equal(t, "tech", created[0].NicheID)

	// Same day: no second roll. Same niche next day: live trend blocks it.
	assert.Empty(t, eng.MaybeSpawnNicheEvents(st))
	st.Day = 2
	assert.Empty(t, eng.MaybeSpawnNicheEvents(st))
	assert.Len(t, st.Events.Active, 1)
}

func TestNicheDrawLowRollPicksHeavyCandidate(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	eng := NewEngine(c, &entropy.Scripted{Values: []float64{0.2}})
	created := eng.MaybeSpawnNicheEvents(st)
	require.Len(t, created, 1)
	assert.Equal(t, "trend-up", created[0].BlueprintID)
}

func TestAdvanceAfterDayDecaysThenPrunes(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	st.Events.Append(&state.EventEntry{
		ID: "e", BlueprintID: "spike", Target: state.TargetNiche, NicheID: "tech",
		CurrentPercent: 0.2, DailyPercentChange: -0.05, RemainingDays: 2,
	})
	eng := NewEngine(c, entropy.NewSeeded(1))

	removed := eng.AdvanceAfterDay(st)
	assert.Equal(t, 0, removed)
	require.Len(t, st.Events.Active, 1)
	assert.InDelta(t, 0.15, st.Events.Active[0].CurrentPercent, 1e-9)
	assert.Equal(t, 1, st.Events.Active[0].RemainingDays)

	removed = eng.AdvanceAfterDay(st)
	assert.Equal(t, 1, removed)
	assert.Empty(t, st.Events.Active)
}

func TestDecayClampsPercent(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	st.Events.Append(&state.EventEntry{
		ID: "e", Target: state.TargetNiche, NicheID: "tech",
		CurrentPercent: -0.9, DailyPercentChange: -0.5, RemainingDays: 5,
	})
	eng := NewEngine(c, entropy.NewSeeded(1))
	eng.AdvanceAfterDay(st)
	assert.Equal(t, state.PercentFloor, st.Events.Active[0].CurrentPercent)
}

func TestCleanupMissingTargets(t *testing.T) {
	c := fixtureCatalog(t)
	st := state.New(14)
	_, inst := blogInstance(st)

	st.Events.Append(&state.EventEntry{
		ID: "keep", Target: state.TargetAssetInstance, AssetID: "blog", InstanceID: inst.ID, RemainingDays: 3,
	})
	st.Events.Append(&state.EventEntry{
		ID: "orphan", Target: state.TargetAssetInstance, AssetID: "blog", InstanceID: "sold", RemainingDays: 3,
	})
	st.Events.Append(&state.EventEntry{
		ID: "ghost-niche", Target: state.TargetNiche, NicheID: "gone", RemainingDays: 3,
	})

	eng := NewEngine(c, entropy.NewSeeded(1))
	removed := eng.CleanupMissingTargets(st)
	assert.Equal(t, 2, removed)
	require.Len(t, st.Events.Active, 1)
	assert.Equal(t, "keep", st.Events.Active[0].ID)
}
