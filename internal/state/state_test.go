package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyBookkeeping(t *testing.T) {
	s := New(14)
	s.AddMoney(100)
	require.EqualValues(t, 100, s.Money)
	require.EqualValues(t, 100, s.Totals.Earned)

	ok := s.SpendMoney(40)
	require.True(t, ok)
	assert.EqualValues(t, 60, s.Money)
	assert.EqualValues(t, 40, s.Totals.Spent)

	ok = s.SpendMoney(1000)
	assert.False(t, ok)
	assert.EqualValues(t, 60, s.Money, "failed spend must not touch the wallet")

	s.AddMoney(-5)
	assert.EqualValues(t, 60, s.Money)
}

func TestTimeClampsToCapAndZero(t *testing.T) {
	s := New(14)
	s.BonusTime = 2
	s.DailyBonusTime = 1

	assert.Equal(t, 17.0, s.TimeCap())

	s.SpendTime(20)
	assert.Equal(t, 0.0, s.TimeLeft)

	s.GrantTime(100)
	assert.Equal(t, 17.0, s.TimeLeft)
}

func TestAccessorsCreateOnFirstUse(t *testing.T) {
	s := New(14)
	a := s.ActionState("freelance")
	require.NotNil(t, a)
	assert.Same(t, a, s.ActionState("freelance"))

	as := s.AssetState("blog")
	require.NotNil(t, as)
	assert.Same(t, as, s.AssetState("blog"))

	u := s.UpgradeState("laptop")
	require.NotNil(t, u)
	assert.Same(t, u, s.UpgradeState("laptop"))
}

func TestLogRingIsBounded(t *testing.T) {
	s := New(14)
	for i := 0; i < LogCap+50; i++ {
		s.AppendLog(ToneInfo, fmt.Sprintf("msg %d", i))
	}
	require.Len(t, s.Log, LogCap)
	assert.Equal(t, fmt.Sprintf("msg %d", LogCap+49), s.Log[len(s.Log)-1].Message)
	assert.Equal(t, "msg 50", s.Log[0].Message)

	recent := s.RecentLog(3)
	require.Len(t, recent, 3)
	assert.Equal(t, fmt.Sprintf("msg %d", LogCap+49), recent[2].Message)
}

func TestLedgerScopingAndRetain(t *testing.T) {
	s := New(14)
	s.Events.Append(&EventEntry{
		ID: "e1", BlueprintID: "bp-payout", Target: TargetAssetInstance,
		AssetID: "blog", InstanceID: "i1", CurrentPercent: 0.4, RemainingDays: 3,
	})
	s.Events.Append(&EventEntry{
		ID: "e2", BlueprintID: "bp-trend", Target: TargetNiche,
		NicheID: "tech", CurrentPercent: -0.2, RemainingDays: 5,
	})
	s.Events.Append(&EventEntry{
		ID: "e3", BlueprintID: "bp-payout", Target: TargetAssetInstance,
		AssetID: "blog", InstanceID: "i2", CurrentPercent: 0.1, RemainingDays: 1,
	})

	got := s.Events.ForInstance("blog", "i1", "tech")
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)

	got = s.Events.ForInstance("blog", "i2", "")
	require.Len(t, got, 1)
	assert.Equal(t, "e3", got[0].ID)

	assert.True(t, s.Events.HasForInstance("bp-payout", "blog", "i1"))
	assert.False(t, s.Events.HasForInstance("bp-payout", "blog", "i9"))
	assert.True(t, s.Events.HasForNiche("tech"))
	assert.False(t, s.Events.HasForNiche("food"))

	removed := s.Events.Retain(func(e *EventEntry) bool { return e.InstanceID != "i2" })
	assert.Equal(t, 1, removed)
	require.Len(t, s.Events.Active, 2)
	assert.Equal(t, "e1", s.Events.Active[0].ID)
}

func TestClampPercentBounds(t *testing.T) {
	assert.Equal(t, PercentFloor, ClampPercent(-2))
	assert.Equal(t, PercentCeil, ClampPercent(9))
	assert.Equal(t, 0.25, ClampPercent(0.25))

	l := EventLedger{}
	l.Append(&EventEntry{ID: "x", CurrentPercent: 80})
	assert.Equal(t, PercentCeil, l.Active[0].CurrentPercent)
}

func TestNormalizeRepairsDamage(t *testing.T) {
	s := &State{
		Day:      0,
		Money:    -50,
		BaseTime: 0,
		TimeLeft: -3,
		Actions: map[string]*ActionState{
			"freelance": {Instances: []*ActionInstance{
				nil,
				{ID: "", Status: StatusActive},
				{ID: "ok", Status: "bogus", Progress: ActionProgress{HoursLogged: -1}},
			}},
			"broken": nil,
		},
		Assets: map[string]*AssetState{
			"blog": {Instances: []*AssetInstance{
				{ID: "a", Status: "weird", DaysRemaining: -2, PendingIncome: -10},
			}},
		},
		Events: EventLedger{Active: []*EventEntry{
			nil,
			{ID: "gone", RemainingDays: 0},
			{ID: "live", RemainingDays: 2, CurrentPercent: 50},
		}},
	}

	s.Normalize()

	assert.Equal(t, 1, s.Day)
	assert.EqualValues(t, 0, s.Money)
	assert.Equal(t, 14.0, s.BaseTime)
	assert.Equal(t, 0.0, s.TimeLeft)
	assert.NotContains(t, s.Actions, "broken")

	insts := s.Actions["freelance"].Instances
	require.Len(t, insts, 1)
	assert.Equal(t, StatusActive, insts[0].Status)
	assert.Equal(t, 0.0, insts[0].Progress.HoursLogged)

	a := s.Assets["blog"].Instances[0]
	assert.Equal(t, StatusSetup, a.Status)
	assert.Equal(t, 0, a.DaysRemaining)
	assert.EqualValues(t, 0, a.PendingIncome)

	require.Len(t, s.Events.Active, 1)
	assert.Equal(t, "live", s.Events.Active[0].ID)
	assert.Equal(t, PercentCeil, s.Events.Active[0].CurrentPercent)
}

func TestNormalizeKeepsRetiredAssets(t *testing.T) {
	s := &State{
		Assets: map[string]*AssetState{
			"blog": {Instances: []*AssetInstance{
				{ID: "old", Status: StatusRetired},
			}},
		},
	}

	s.Normalize()

	assert.Equal(t, StatusRetired, s.Assets["blog"].Instances[0].Status)
}

func TestDirtyBusCoalescesAndFansOut(t *testing.T) {
	bus := NewDirtyBus()
	ch := bus.Subscribe()

	bus.Mark(SectionWallet, SectionTime)
	bus.Mark(SectionWallet)

	got := bus.Flush()
	assert.Len(t, got, 2)

	select {
	case batch := <-ch:
		assert.Len(t, batch, 2)
	default:
		t.Fatal("subscriber did not receive flush batch")
	}

	assert.Nil(t, bus.Flush(), "empty flush returns nil")

	bus.Unsubscribe(ch)
	bus.Mark(SectionDay)
	bus.Flush()
	select {
	case <-ch:
		t.Fatal("unsubscribed channel still receiving")
	default:
	}
}
