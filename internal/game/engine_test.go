package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidegig/internal/action"
	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/state"
)

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := &catalog.Catalog{
		Actions: []catalog.ActionDef{
			{
				ID: "gig", Name: "Gig",
				Availability: catalog.AvailabilityDef{Policy: catalog.AvailabilityDailyLimit, DailyLimit: 1},
				Progress:     catalog.ProgressDef{Completion: catalog.CompletionInstant, HoursRequired: 0},
				Payout:       catalog.PayoutDef{Amount: 10},
			},
			{
				ID: "grind", Name: "Long Grind",
				Progress: catalog.ProgressDef{Completion: catalog.CompletionManual, HoursRequired: 100},
			},
			{
				ID: "study", Name: "Night Class",
				Availability: catalog.AvailabilityDef{Policy: catalog.AvailabilityEnrollable},
				Progress: catalog.ProgressDef{
					Completion: catalog.CompletionDeferred, HoursPerDay: 1, DaysRequired: 2,
				},
			},
		},
		Assets: []catalog.AssetDef{
			{
				ID: "blog", Name: "Blog",
				Setup:       catalog.SetupDef{Cost: 25, Days: 1, HoursPerDay: 2},
				Maintenance: catalog.MaintenanceDef{Hours: 1},
				QualityLevels: []catalog.QualityLevelDef{
					{Name: "Base", IncomeMin: 8, IncomeMax: 8},
				},
			},
		},
		Niches: []catalog.NicheDef{{ID: "tech", Name: "Tech"}},
		Blueprints: []catalog.EventBlueprint{
			{
				ID: "trend", Label: "%s trend", Tone: "positive",
				When: catalog.TriggerNicheTrend, Weight: 1,
				PercentMin: 0.2, PercentMax: 0.2, DaysMin: 2, DaysMax: 2,
			},
		},
	}
	require.NoError(t, c.Finalize())
	return c
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(Options{
		Catalog: fixtureCatalog(t),
		Rand:    &entropy.Scripted{Values: []float64{0.5}},
	})
}

func TestDailyLimitScenario(t *testing.T) {
	e := newTestEngine(t)

	inst, avail, err := e.AcceptAction("gig", action.AcceptOverrides{})
	require.NoError(t, err)
	require.True(t, avail.Available)
	require.NotNil(t, inst)

	res, err := e.WorkAction("gig", inst.ID, 0.0)
	require.NoError(t, err)
	_ = res

	// A zero-hour gig completes on accept-and-work; re-check through
	// the explicit completion path instead.
	e.View(func(st *state.State) {
		if inst.Status != state.StatusCompleted {
			got, cerr := e.Actions.Complete(st, "gig", inst.ID)
			require.NoError(t, cerr)
			require.True(t, got.OK)
		}
		assert.EqualValues(t, 10, st.Money)
	})

	second, avail, err := e.AcceptAction("gig", action.AcceptOverrides{})
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, "daily limit reached", avail.Reason)
}

func TestEndDaySequence(t *testing.T) {
	e := newTestEngine(t)
	e.View(func(st *state.State) {
		st.AddMoney(100)
		st.DailyBonusTime = 2
		st.GrantTime(2)
	})

	res, err := e.LaunchAsset("blog")
	require.NoError(t, err)
	require.True(t, res.OK)

	report := e.EndDay()
	assert.Equal(t, 2, report.Day)
	assert.Equal(t, 1, report.EventsSpawned, "one trend per niche per day")

	e.View(func(st *state.State) {
		assert.Equal(t, 0.0, st.DailyBonusTime, "consumable bonus does not carry over")
		assert.Equal(t, st.TimeCap()-1, st.TimeLeft, "new day already funded maintenance")
		inst := st.Assets["blog"].Instances[0]
		assert.Equal(t, state.StatusActive, inst.Status, "one funded setup day flips it active")
		assert.True(t, inst.MaintenanceFundedToday)
	})

	// Day 2 settlement queues the payout; day 3's funding pass flushes it.
	var moneyBefore int64
	e.View(func(st *state.State) { moneyBefore = st.Money })
	report = e.EndDay()
	assert.Equal(t, 3, report.Day)
	e.View(func(st *state.State) {
		assert.Equal(t, moneyBefore+8, st.Money, "queued payout flushed by the new day's funded pass")
		inst := st.Assets["blog"].Instances[0]
		assert.EqualValues(t, 0, inst.PendingIncome)
		assert.EqualValues(t, 8, inst.LastIncome)
	})
}

func TestAutomaticDayEndOnTimeExhaustion(t *testing.T) {
	e := newTestEngine(t)

	inst, _, err := e.AcceptAction("grind", action.AcceptOverrides{})
	require.NoError(t, err)

	// Burning the whole budget triggers exactly one settlement.
	res, err := e.WorkAction("grind", inst.ID, 14)
	require.NoError(t, err)
	require.True(t, res.OK)

	e.View(func(st *state.State) {
		assert.Equal(t, 2, st.Day)
		assert.Equal(t, st.TimeCap(), st.TimeLeft)
	})
}

func TestDeferredStudyCompletesViaSettlement(t *testing.T) {
	e := newTestEngine(t)

	inst, avail, err := e.AcceptAction("study", action.AcceptOverrides{})
	require.NoError(t, err)
	require.True(t, avail.Available)

	_, err = e.WorkAction("study", inst.ID, 1)
	require.NoError(t, err)
	e.EndDay()
	_, err = e.WorkAction("study", inst.ID, 1)
	require.NoError(t, err)
	e.EndDay()

	e.View(func(st *state.State) {
		got := st.FindActionInstance("study", inst.ID)
		assert.Equal(t, state.StatusCompleted, got.Status)
	})
}

func TestTimeInvariantHoldsAcrossOperations(t *testing.T) {
	e := newTestEngine(t)
	e.View(func(st *state.State) { st.AddMoney(500) })

	check := func() {
		e.View(func(st *state.State) {
			assert.GreaterOrEqual(t, st.TimeLeft, 0.0)
			assert.LessOrEqual(t, st.TimeLeft, st.TimeCap())
		})
	}

	_, _ = e.LaunchAsset("blog")
	check()
	inst, _, _ := e.AcceptAction("grind", action.AcceptOverrides{})
	check()
	if inst != nil {
		_, _ = e.WorkAction("grind", inst.ID, 5)
		check()
	}
	e.EndDay()
	check()
}

func TestEventDecayScenario(t *testing.T) {
	e := newTestEngine(t)
	e.View(func(st *state.State) {
		// Pre-mark the niche roll so the trend draw stays out of the way.
		st.Events.LastNicheRollDay = st.Day
		st.Events.Append(&state.EventEntry{
			ID: "e", Target: state.TargetNiche, NicheID: "tech",
			CurrentPercent: 0.2, DailyPercentChange: -0.05, RemainingDays: 2,
		})
	})

	e.EndDay()
	e.View(func(st *state.State) {
		require.Len(t, st.Events.Active, 1)
		assert.InDelta(t, 0.15, st.Events.Active[0].CurrentPercent, 1e-9)
		assert.Equal(t, 1, st.Events.Active[0].RemainingDays)
		st.Events.LastNicheRollDay = st.Day
	})

	e.EndDay()
	e.View(func(st *state.State) {
		for _, ev := range st.Events.Active {
			assert.NotEqual(t, "e", ev.ID, "spent entry is pruned")
		}
	})
}

func TestDefaultSeedFollowsClock(t *testing.T) {
	c := fixtureCatalog(t)
	draw := func(clk Clock) float64 {
		e := NewEngine(Options{Catalog: c, Clock: clk})
		return e.Rand.Float64()
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := draw(NewFakeClock(base))
	again := draw(NewFakeClock(base))
	later := draw(NewFakeClock(base.Add(time.Second)))

	assert.Equal(t, first, again, "same start instant, same stream")
	assert.NotEqual(t, first, later, "fresh servers should not share a stream")
}

func TestExplicitSeedIgnoresClock(t *testing.T) {
	c := fixtureCatalog(t)
	a := NewEngine(Options{Catalog: c, Seed: 7, Clock: NewFakeClock(time.Unix(100, 0))})
	b := NewEngine(Options{Catalog: c, Seed: 7, Clock: NewFakeClock(time.Unix(999, 0))})
	assert.Equal(t, a.Rand.Float64(), b.Rand.Float64())
}

func TestResumeNormalizesState(t *testing.T) {
	damaged := &state.State{Day: 0, Money: -10}
	e := NewEngine(Options{Catalog: fixtureCatalog(t), State: damaged})
	e.View(func(st *state.State) {
		assert.Equal(t, 1, st.Day)
		assert.EqualValues(t, 0, st.Money)
		assert.NotNil(t, st.Actions)
	})
}
