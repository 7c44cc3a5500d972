package catalog

// Package catalog holds the immutable content definitions the engines
// run against. Definitions are plain data; behavior that varies by
// definition is expressed as a kind string and dispatched by the
// consuming engine, so a catalog stays serializable end to end.

// AvailabilityPolicy gates how often an action can be taken.
type AvailabilityPolicy string

const (
	AvailabilityAlways     AvailabilityPolicy = "always"
	AvailabilityDailyLimit AvailabilityPolicy = "dailyLimit"
	AvailabilityEnrollable AvailabilityPolicy = "enrollable"
)

// CompletionMode says when an accepted instance finalizes.
type CompletionMode string

const (
	// CompletionInstant finalizes inside the work call that satisfies
	// the requirement.
	CompletionInstant CompletionMode = "instant"
	// CompletionManual waits for an explicit complete call.
	CompletionManual CompletionMode = "manual"
	// CompletionDeferred finalizes during day settlement once the
	// requirement is met.
	CompletionDeferred CompletionMode = "deferred"
)

type ActionDef struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`

	Availability AvailabilityDef `yaml:"availability"`
	Progress     ProgressDef     `yaml:"progress"`
	Payout       PayoutDef       `yaml:"payout"`

	// TimeCost and MoneyCost are charged up front on accept.
	TimeCost  float64 `yaml:"timeCost,omitempty"`
	MoneyCost int64   `yaml:"moneyCost,omitempty"`

	Requires RequirementDef `yaml:"requires,omitempty"`
}

type AvailabilityDef struct {
	Policy     AvailabilityPolicy `yaml:"policy"`
	DailyLimit int                `yaml:"dailyLimit,omitempty"`
	// ExpiryDays bounds how long an accepted instance may stay open.
	// Zero means no deadline.
	ExpiryDays int `yaml:"expiryDays,omitempty"`
}

type ProgressDef struct {
	Completion    CompletionMode `yaml:"completion"`
	HoursRequired float64        `yaml:"hoursRequired,omitempty"`
	HoursPerDay   float64        `yaml:"hoursPerDay,omitempty"`
	DaysRequired  int            `yaml:"daysRequired,omitempty"`
}

// DayBased reports whether completion is measured in worked days
// rather than raw hours.
func (p ProgressDef) DayBased() bool {
	return p.DaysRequired > 0
}

type PayoutDef struct {
	Amount     int64  `yaml:"amount"`
	LogMessage string `yaml:"logMessage,omitempty"`
}

type RequirementDef struct {
	Upgrades []string `yaml:"upgrades,omitempty"`
	// ActiveInstances maps asset id -> minimum count of active instances.
	ActiveInstances map[string]int `yaml:"activeInstances,omitempty"`
}

type AssetDef struct {
	ID   string   `yaml:"id"`
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags,omitempty"`

	Setup       SetupDef       `yaml:"setup"`
	Maintenance MaintenanceDef `yaml:"maintenance"`

	// QualityLevels index by quality.level; level 0 must exist.
	QualityLevels  []QualityLevelDef  `yaml:"qualityLevels"`
	QualityActions []QualityActionDef `yaml:"qualityActions,omitempty"`

	// Passive is the real-time trickle on top of daily payouts.
	Passive PassiveDef `yaml:"passive,omitempty"`

	Requires RequirementDef `yaml:"requires,omitempty"`
}

type SetupDef struct {
	Cost        int64   `yaml:"cost"`
	Days        int     `yaml:"days"`
	HoursPerDay float64 `yaml:"hoursPerDay"`
}

type MaintenanceDef struct {
	Hours float64 `yaml:"hours"`
	Cost  int64   `yaml:"cost,omitempty"`
}

type QualityLevelDef struct {
	Name      string  `yaml:"name"`
	IncomeMin int64   `yaml:"incomeMin"`
	IncomeMax int64   `yaml:"incomeMax"`
	// Requires maps quality action id -> accumulated progress needed to
	// reach this level from the previous one.
	Requires map[string]int `yaml:"requires,omitempty"`
}

type QualityActionDef struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	TimeCost   float64 `yaml:"timeCost"`
	MoneyCost  int64   `yaml:"moneyCost,omitempty"`
	Progress   int     `yaml:"progress"`
	DailyLimit int     `yaml:"dailyLimit,omitempty"`
}

type PassiveDef struct {
	// PerHour is whole currency units accrued per real-time hour at
	// quality level 0. Scales with the quality income multiplier.
	PerHour float64 `yaml:"perHour,omitempty"`
}

// EffectKind discriminates upgrade effect evaluation. Each kind has its
// own clamp band.
type EffectKind string

const (
	EffectPayoutMult          EffectKind = "payout_mult"
	EffectSetupTimeMult       EffectKind = "setup_time_mult"
	EffectMaintTimeMult       EffectKind = "maint_time_mult"
	EffectQualityProgressMult EffectKind = "quality_progress_mult"
)

type UpgradeDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Cost int64  `yaml:"cost"`

	Repeatable bool `yaml:"repeatable,omitempty"`
	MaxCount   int  `yaml:"maxCount,omitempty"`

	Effects []EffectDef `yaml:"effects,omitempty"`

	// BonusTimeHours permanently raises the daily time cap.
	BonusTimeHours float64 `yaml:"bonusTimeHours,omitempty"`
	// AssistantHours are granted per owned copy each day and offset
	// maintenance time before the player's own budget is drawn.
	AssistantHours float64 `yaml:"assistantHours,omitempty"`

	Consumable *ConsumableDef `yaml:"consumable,omitempty"`

	Requires RequirementDef `yaml:"requires,omitempty"`
}

type EffectDef struct {
	Kind  EffectKind `yaml:"kind"`
	Value float64    `yaml:"value"`
	// Target narrows the effect; empty filters match everything.
	Target TargetFilter `yaml:"target,omitempty"`
}

type TargetFilter struct {
	AssetIDs  []string `yaml:"assetIds,omitempty"`
	ActionIDs []string `yaml:"actionIds,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// Matches reports whether an entity with the given id and tags passes
// the filter. An empty filter matches everything.
func (f TargetFilter) Matches(id string, tags []string) bool {
	if len(f.AssetIDs) == 0 && len(f.ActionIDs) == 0 && len(f.Tags) == 0 {
		return true
	}
	for _, want := range f.AssetIDs {
		if want == id {
			return true
		}
	}
	for _, want := range f.ActionIDs {
		if want == id {
			return true
		}
	}
	for _, want := range f.Tags {
		for _, have := range tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

type ConsumableDef struct {
	// DailyBonusHours are added to today's budget per use.
	DailyBonusHours float64 `yaml:"dailyBonusHours"`
	UsesPerDay      int     `yaml:"usesPerDay"`
}

type NicheDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// EducationBoost grants a payout bonus to matching actions once a study
// track has been completed. Flat is added before Multiplier is applied.
type EducationBoost struct {
	TrackActionID string       `yaml:"trackActionId"`
	Label         string       `yaml:"label"`
	Flat          int64        `yaml:"flat,omitempty"`
	Multiplier    float64      `yaml:"multiplier,omitempty"`
	Target        TargetFilter `yaml:"target,omitempty"`
}

// BlueprintTrigger names the moment a blueprint is evaluated.
type BlueprintTrigger string

const (
	TriggerPayout        BlueprintTrigger = "payout"
	TriggerQualityAction BlueprintTrigger = "qualityAction"
	TriggerNicheTrend    BlueprintTrigger = "nicheTrend"
)

// EventBlueprint is a tagged-data event template. Magnitude fields are
// ranges rolled at spawn time; QualityChanceStep lets trigger odds
// scale with the instance's quality level.
type EventBlueprint struct {
	ID    string           `yaml:"id"`
	Label string           `yaml:"label"`
	Tone  string           `yaml:"tone"`
	When  BlueprintTrigger `yaml:"when"`

	Chance            float64 `yaml:"chance"`
	QualityChanceStep float64 `yaml:"qualityChanceStep,omitempty"`
	// Weight drives the niche trend draw; falls back to Chance when zero.
	Weight float64 `yaml:"weight,omitempty"`

	PercentMin float64 `yaml:"percentMin"`
	PercentMax float64 `yaml:"percentMax"`
	DaysMin    int     `yaml:"daysMin"`
	DaysMax    int     `yaml:"daysMax"`

	// DailyChange is the per-day drift of the percent. The "fade" kind
	// derives it at spawn so the modifier reaches zero as days run out.
	DailyChange     float64 `yaml:"dailyChange,omitempty"`
	DailyChangeKind string  `yaml:"dailyChangeKind,omitempty"`

	AppliesTo TargetFilter `yaml:"appliesTo,omitempty"`
}
