package state

// Package state holds the single mutable game document everything else
// reads and writes through. Engines receive an explicit *State handle;
// there is no package-level singleton, so tests can run isolated sims.

// Money is a whole currency unit. Payout math rounds to the nearest unit.
type Money = int64

type InstanceStatus string

const (
	StatusPending   InstanceStatus = "pending"
	StatusActive    InstanceStatus = "active"
	StatusCompleted InstanceStatus = "completed"
	StatusExpired   InstanceStatus = "expired"

	StatusSetup   InstanceStatus = "setup"
	StatusRetired InstanceStatus = "retired"
)

// State is the root game document. Lifetime = session; persisted as a
// single snapshot by the persistence layer.
type State struct {
	Version int `json:"version"`

	Money Money `json:"money"`
	Day   int   `json:"day"`

	TimeLeft       float64 `json:"timeLeft"`
	BaseTime       float64 `json:"baseTime"`
	BonusTime      float64 `json:"bonusTime"`
	DailyBonusTime float64 `json:"dailyBonusTime"`

	Actions  map[string]*ActionState  `json:"actions"`
	Assets   map[string]*AssetState   `json:"assets"`
	Upgrades map[string]*UpgradeState `json:"upgrades"`

	Events EventLedger `json:"events"`

	Log    []LogEntry `json:"log"`
	Totals Totals     `json:"totals"`

	LastSaved int64 `json:"lastSaved,omitempty"`
}

type Totals struct {
	Earned Money `json:"earned"`
	Spent  Money `json:"spent"`
}

// ActionState is the per-definition mutable record for an action.
// RunsToday/PendingAccepts are day-stamped: values from a previous day
// read as zero (lazy reset, no sweep needed).
type ActionState struct {
	RunsToday         int               `json:"runsToday"`
	LastRunDay        int               `json:"lastRunDay"`
	PendingAccepts    int               `json:"pendingAccepts"`
	PendingAcceptsDay int               `json:"pendingAcceptsDay"`
	Instances         []*ActionInstance `json:"instances"`
}

// ActionInstance is one accepted occurrence of an action. Owned
// exclusively by its ActionState; never shared.
type ActionInstance struct {
	ID            string         `json:"id"`
	AcceptedOnDay int            `json:"acceptedOnDay"`
	DeadlineDay   int            `json:"deadlineDay,omitempty"`
	Status        InstanceStatus `json:"status"`
	Progress      ActionProgress `json:"progress"`
	PayoutAwarded Money          `json:"payoutAwarded"`
	CompletedOn   int            `json:"completedOnDay,omitempty"`
}

type ActionProgress struct {
	HoursLogged   float64 `json:"hoursLogged"`
	HoursRequired float64 `json:"hoursRequired"`
	HoursPerDay   float64 `json:"hoursPerDay,omitempty"`
	DaysCompleted int     `json:"daysCompleted"`
	DaysRequired  int     `json:"daysRequired,omitempty"`
	LastWorkedDay int     `json:"lastWorkedDay,omitempty"`
	// DailyLog records hours worked per day, keyed by day number.
	DailyLog map[int]float64 `json:"dailyLog,omitempty"`
}

type AssetState struct {
	Instances []*AssetInstance `json:"instances"`
}

// AssetInstance is one venture the player owns. The setup -> active
// transition is one-way; instances are destroyed only by explicit sale.
type AssetInstance struct {
	ID     string         `json:"id"`
	Status InstanceStatus `json:"status"`

	DaysCompleted int `json:"daysCompleted"`
	DaysRemaining int `json:"daysRemaining"`

	SetupFundedToday       bool `json:"setupFundedToday"`
	MaintenanceFundedToday bool `json:"maintenanceFundedToday"`

	Quality QualityState `json:"quality"`

	// PendingIncome is a one-slot queue: the payout awaiting the next
	// funded maintenance cycle. It survives unfunded days.
	PendingIncome       Money            `json:"pendingIncome"`
	LastIncome          Money            `json:"lastIncome"`
	LastIncomeBreakdown *IncomeBreakdown `json:"lastIncomeBreakdown,omitempty"`
	TotalIncome         Money            `json:"totalIncome"`

	// PassiveBuffer accrues fractional trickle income between flushes.
	PassiveBuffer float64 `json:"passiveBuffer,omitempty"`

	CreatedOnDay int    `json:"createdOnDay"`
	NicheID      string `json:"nicheId,omitempty"`

	// DailyUsage counts quality-action runs for the current day,
	// keyed by quality action id. Cleared at close-out.
	DailyUsage map[string]int `json:"dailyUsage,omitempty"`
}

type QualityState struct {
	Level    int            `json:"level"`
	Progress map[string]int `json:"progress,omitempty"`
}

type IncomeBreakdown struct {
	Total   Money            `json:"total"`
	Entries []BreakdownEntry `json:"entries"`
}

// BreakdownEntry itemizes one contribution to a payout. Percent is nil
// for flat contributions.
type BreakdownEntry struct {
	ID      string   `json:"id,omitempty"`
	Label   string   `json:"label"`
	Amount  Money    `json:"amount"`
	Type    string   `json:"type"`
	Percent *float64 `json:"percent,omitempty"`
}

type UpgradeState struct {
	Purchased bool `json:"purchased"`
	Count     int  `json:"count,omitempty"`
	UsedToday int  `json:"usedToday,omitempty"`
	LastUsedDay int `json:"lastUsedDay,omitempty"`
}

// New returns a fresh day-1 state with the given daily time budget.
func New(baseTime float64) *State {
	return &State{
		Version:  CurrentVersion,
		Day:      1,
		BaseTime: baseTime,
		TimeLeft: baseTime,
		Actions:  map[string]*ActionState{},
		Assets:   map[string]*AssetState{},
		Upgrades: map[string]*UpgradeState{},
		Events:   EventLedger{Active: []*EventEntry{}},
	}
}

// TimeCap is the full daily hour budget.
func (s *State) TimeCap() float64 {
	return s.BaseTime + s.BonusTime + s.DailyBonusTime
}

// SpendTime deducts hours, clamping at zero.
func (s *State) SpendTime(hours float64) {
	if hours <= 0 {
		return
	}
	s.TimeLeft -= hours
	if s.TimeLeft < 0 {
		s.TimeLeft = 0
	}
}

// GrantTime adds hours up to the daily cap.
func (s *State) GrantTime(hours float64) {
	if hours <= 0 {
		return
	}
	s.TimeLeft += hours
	if cap := s.TimeCap(); s.TimeLeft > cap {
		s.TimeLeft = cap
	}
}

// AddMoney credits money and tracks lifetime earnings.
func (s *State) AddMoney(amount Money) {
	if amount <= 0 {
		return
	}
	s.Money += amount
	s.Totals.Earned += amount
}

// SpendMoney debits money, reporting false when funds are short.
func (s *State) SpendMoney(amount Money) bool {
	if amount <= 0 {
		return true
	}
	if s.Money < amount {
		return false
	}
	s.Money -= amount
	s.Totals.Spent += amount
	return true
}

// ActionState returns the entry for an action id, creating it on first use.
func (s *State) ActionState(id string) *ActionState {
	if s.Actions == nil {
		s.Actions = map[string]*ActionState{}
	}
	entry, ok := s.Actions[id]
	if !ok {
		entry = &ActionState{}
		s.Actions[id] = entry
	}
	return entry
}

// AssetState returns the entry for an asset id, creating it on first use.
func (s *State) AssetState(id string) *AssetState {
	if s.Assets == nil {
		s.Assets = map[string]*AssetState{}
	}
	entry, ok := s.Assets[id]
	if !ok {
		entry = &AssetState{}
		s.Assets[id] = entry
	}
	return entry
}

// UpgradeState returns the entry for an upgrade id, creating it on first use.
func (s *State) UpgradeState(id string) *UpgradeState {
	if s.Upgrades == nil {
		s.Upgrades = map[string]*UpgradeState{}
	}
	entry, ok := s.Upgrades[id]
	if !ok {
		entry = &UpgradeState{}
		s.Upgrades[id] = entry
	}
	return entry
}

// FindAssetInstance locates an instance by asset and instance id.
func (s *State) FindAssetInstance(assetID, instanceID string) (*AssetInstance, int) {
	entry, ok := s.Assets[assetID]
	if !ok {
		return nil, -1
	}
	for i, inst := range entry.Instances {
		if inst != nil && inst.ID == instanceID {
			return inst, i
		}
	}
	return nil, -1
}

// FindActionInstance locates an accepted instance by action and instance id.
func (s *State) FindActionInstance(actionID, instanceID string) *ActionInstance {
	entry, ok := s.Actions[actionID]
	if !ok {
		return nil
	}
	for _, inst := range entry.Instances {
		if inst != nil && inst.ID == instanceID {
			return inst
		}
	}
	return nil
}
