package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/event"
	"sidegig/internal/state"
	"sidegig/internal/upgrade"
)

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := &catalog.Catalog{
		Assets: []catalog.AssetDef{
			{
				ID: "blog", Name: "Blog", Tags: []string{"writing"},
				Setup:       catalog.SetupDef{Cost: 25, Days: 3, HoursPerDay: 3},
				Maintenance: catalog.MaintenanceDef{Hours: 1},
				QualityLevels: []catalog.QualityLevelDef{
					{Name: "Fresh", IncomeMin: 10, IncomeMax: 10},
					{Name: "Steady", IncomeMin: 20, IncomeMax: 20, Requires: map[string]int{"post": 2}},
				},
				QualityActions: []catalog.QualityActionDef{
					{ID: "post", Name: "Write Post", TimeCost: 2, Progress: 1, DailyLimit: 2},
				},
			},
			{
				ID: "cart", Name: "Cart",
				Setup:       catalog.SetupDef{Cost: 10, Days: 1, HoursPerDay: 1},
				Maintenance: catalog.MaintenanceDef{Hours: 2, Cost: 5},
				QualityLevels: []catalog.QualityLevelDef{
					{Name: "Basic", IncomeMin: 6, IncomeMax: 6},
				},
				Requires: catalog.RequirementDef{Upgrades: []string{"license"}},
			},
		},
		Upgrades: []catalog.UpgradeDef{
			{ID: "license", Name: "License", Cost: 40},
			{ID: "assistant", Name: "Assistant", Cost: 100, Repeatable: true, AssistantHours: 2},
			{
				ID: "megaphone", Name: "Megaphone", Cost: 50,
				Effects: []catalog.EffectDef{
					{Kind: catalog.EffectPayoutMult, Value: 2, Target: catalog.TargetFilter{AssetIDs: []string{"blog"}}},
				},
			},
		},
		Niches: []catalog.NicheDef{{ID: "tech", Name: "Tech"}},
	}
	require.NoError(t, c.Finalize())
	return c
}

func newEngine(t *testing.T, rnd entropy.Source) (*Engine, *state.State) {
	t.Helper()
	c := fixtureCatalog(t)
	up := upgrade.NewEngine(c)
	ev := event.NewEngine(c, rnd)
	eng := NewEngine(c, up, ev, rnd, state.NewDirtyBus())
	st := state.New(14)
	st.AddMoney(1000)
	return eng, st
}

func launchBlog(t *testing.T, eng *Engine, st *state.State) *state.AssetInstance {
	t.Helper()
	res, err := eng.Launch(st, "blog")
	require.NoError(t, err)
	require.True(t, res.OK)
	inst, _ := st.FindAssetInstance("blog", res.InstanceID)
	require.NotNil(t, inst)
	return inst
}

// settle mirrors the coordinator's funded cycle for one asset.
func settle(eng *Engine, st *state.State) {
	eng.CloseOutDay(st)
	st.Day++
	st.TimeLeft = st.TimeCap()
	eng.AllocateMaintenance(st)
}

func TestLaunchFundsFirstSetupDay(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)

	assert.EqualValues(t, 975, st.Money)
	assert.Equal(t, state.StatusSetup, inst.Status)
	assert.True(t, inst.SetupFundedToday)
	assert.Equal(t, 11.0, st.TimeLeft)
	assert.Equal(t, 3, inst.DaysRemaining)
}

func TestLaunchGuards(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))

	res, err := eng.Launch(st, "cart")
	require.NoError(t, err)
	assert.Equal(t, "requires License", res.Reason)

	st.Money = 5
	res, err = eng.Launch(st, "blog")
	require.NoError(t, err)
	assert.Equal(t, "not enough money", res.Reason)

	_, err = eng.Launch(st, "nope")
	assert.Error(t, err)
}

func TestSetupGoesActiveAfterFundedCycles(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)

	// Three funded settlement cycles flip setup to active.
	for day := 0; day < 3; day++ {
		require.True(t, inst.SetupFundedToday, "day %d should be funded", day)
		settle(eng, st)
	}
	assert.Equal(t, state.StatusActive, inst.Status)
	assert.Equal(t, 0, inst.DaysRemaining)
	assert.Equal(t, 3, inst.DaysCompleted)
}

func TestActiveNeverRevertsToSetup(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)
	for day := 0; day < 3; day++ {
		settle(eng, st)
	}
	require.Equal(t, state.StatusActive, inst.Status)

	// Starve it completely for several days.
	for day := 0; day < 3; day++ {
		st.TimeLeft = 0
		eng.CloseOutDay(st)
		st.Day++
		eng.AllocateMaintenance(st)
	}
	assert.Equal(t, state.StatusActive, inst.Status)
}

func TestUnfundedSetupDayDoesNotAdvance(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)

	settle(eng, st)
	require.Equal(t, 1, inst.DaysCompleted)

	// No time: the funding pass leaves the day unfunded.
	st.TimeLeft = 1
	eng.AllocateMaintenance(st)
	require.False(t, inst.SetupFundedToday)
	assert.Equal(t, 1.0, st.TimeLeft, "all-or-nothing: partial hours are not banked")

	eng.CloseOutDay(st)
	assert.Equal(t, 1, inst.DaysCompleted)
	assert.Equal(t, 2, inst.DaysRemaining)
}

func TestPayoutQueuesAndFlushesNextFundedCycle(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)
	for day := 0; day < 3; day++ {
		settle(eng, st)
	}
	require.Equal(t, state.StatusActive, inst.Status)
	eng.AllocateMaintenance(st)
	require.True(t, inst.MaintenanceFundedToday)

	moneyBefore := st.Money
	eng.CloseOutDay(st)

	// Income range is fixed at 10; the payout queues, it does not credit.
	assert.EqualValues(t, 10, inst.PendingIncome)
	assert.EqualValues(t, 10, inst.LastIncome)
	require.NotNil(t, inst.LastIncomeBreakdown)
	assert.Equal(t, moneyBefore, st.Money)

	// Next day's funded pass flushes the queue.
	st.Day++
	st.TimeLeft = st.TimeCap()
	eng.AllocateMaintenance(st)
	assert.EqualValues(t, 0, inst.PendingIncome)
	assert.Equal(t, moneyBefore+10, st.Money)
}

func TestUnfundedDayPreservesPendingIncome(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)
	for day := 0; day < 3; day++ {
		settle(eng, st)
	}
	inst.PendingIncome = 5
	inst.MaintenanceFundedToday = false
	inst.LastIncome = 7
	inst.LastIncomeBreakdown = &state.IncomeBreakdown{Total: 7}

	moneyBefore := st.Money
	eng.CloseOutDay(st)

	assert.Equal(t, moneyBefore, st.Money)
	assert.EqualValues(t, 5, inst.PendingIncome, "queued payout survives neglect")
	assert.EqualValues(t, 0, inst.LastIncome)
	assert.Nil(t, inst.LastIncomeBreakdown)
}

func TestIncomeModifiersAndBreakdown(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)
	for day := 0; day < 3; day++ {
		settle(eng, st)
	}
	_, err := eng.Upgrades.Purchase(st, "megaphone")
	require.NoError(t, err)

	st.Events.Append(&state.EventEntry{
		ID: "spike", Target: state.TargetAssetInstance,
		AssetID: "blog", InstanceID: inst.ID,
		Label: "Spike", CurrentPercent: 0.5, RemainingDays: 2,
	})

	inst.MaintenanceFundedToday = true
	payout, breakdown := eng.rollDailyIncome(st, &eng.Catalog.Assets[0], inst)

	// 10 base * 1.5 event * 2 upgrade = 30.
	assert.EqualValues(t, 30, payout)
	require.NotNil(t, breakdown)
	assert.EqualValues(t, 30, breakdown.Total)

	var sum state.Money
	for _, entry := range breakdown.Entries {
		sum += entry.Amount
	}
	assert.Equal(t, breakdown.Total, sum, "itemization sums to the total")
	assert.Equal(t, "base", breakdown.Entries[0].Type)
	assert.Equal(t, "event", breakdown.Entries[1].Type)
}

func TestDeclarationOrderStarvesLaterAssets(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	_, err := eng.Upgrades.Purchase(st, "license")
	require.NoError(t, err)

	blog := launchBlog(t, eng, st)
	res, err := eng.Launch(st, "cart")
	require.NoError(t, err)
	require.True(t, res.OK)
	cart, _ := st.FindAssetInstance("cart", res.InstanceID)

	// Budget covers only the blog's 3 setup hours.
	st.TimeLeft = 3.5
	eng.AllocateMaintenance(st)
	assert.True(t, blog.SetupFundedToday)
	assert.False(t, cart.SetupFundedToday)
}

func TestAssistantHoursOffsetMaintenance(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)
	for day := 0; day < 3; day++ {
		settle(eng, st)
	}
	_, err := eng.Upgrades.Purchase(st, "assistant")
	require.NoError(t, err)

	// Assistant covers the full hour of upkeep; the player budget is
	// untouched even at zero.
	st.TimeLeft = 0
	inst.MaintenanceFundedToday = false
	eng.AllocateMaintenance(st)
	assert.True(t, inst.MaintenanceFundedToday)
	assert.Equal(t, 0.0, st.TimeLeft)
}

func TestFundInstanceRetry(t *testing.T) {
	eng, st := newEngine(t, entropy.NewSeeded(1))
	inst := launchBlog(t, eng, st)

	st.Day++
	st.TimeLeft = 1
	eng.AllocateMaintenance(st)
	require.False(t, inst.SetupFundedToday)

	// Time freed up mid-day; the retry funds it.
	st.TimeLeft = 5
	ok, err := eng.FundInstance(st, "blog", inst.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, inst.SetupFundedToday)
}
