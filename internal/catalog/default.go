package catalog

// Default returns the built-in content set. Servers normally load a
// YAML catalog; the default keeps the sim runnable with no files and
// anchors the test suite.
func Default() *Catalog {
	c := &Catalog{
		Actions: []ActionDef{
			{
				ID:       "freelance",
				Name:     "Freelance Writing",
				Category: "hustle",
				Tags:     []string{"writing"},
				Availability: AvailabilityDef{
					Policy:     AvailabilityDailyLimit,
					DailyLimit: 3,
				},
				Progress: ProgressDef{
					Completion:    CompletionInstant,
					HoursRequired: 2,
				},
				Payout: PayoutDef{Amount: 18, LogMessage: "Freelance article delivered."},
			},
			{
				ID:       "surveys",
				Name:     "Micro Surveys",
				Category: "hustle",
				Availability: AvailabilityDef{
					Policy:     AvailabilityDailyLimit,
					DailyLimit: 5,
				},
				Progress: ProgressDef{
					Completion:    CompletionInstant,
					HoursRequired: 0.5,
				},
				Payout: PayoutDef{Amount: 3, LogMessage: "Survey batch cashed out."},
			},
			{
				ID:       "bundle-gig",
				Name:     "Weekend Bundle Gig",
				Category: "contract",
				Tags:     []string{"writing"},
				Availability: AvailabilityDef{
					Policy:     AvailabilityDailyLimit,
					DailyLimit: 1,
					ExpiryDays: 3,
				},
				Progress: ProgressDef{
					Completion:    CompletionDeferred,
					HoursRequired: 6,
					HoursPerDay:   2,
					DaysRequired:  3,
				},
				Payout: PayoutDef{Amount: 120, LogMessage: "Bundle gig paid out."},
			},
			{
				ID:       "course-writing",
				Name:     "Copywriting Course",
				Category: "study",
				Availability: AvailabilityDef{
					Policy: AvailabilityEnrollable,
				},
				Progress: ProgressDef{
					Completion:   CompletionDeferred,
					HoursPerDay:  1,
					DaysRequired: 5,
				},
				MoneyCost: 60,
				Payout:    PayoutDef{LogMessage: "Copywriting course completed."},
			},
		},
		Assets: []AssetDef{
			{
				ID:   "blog",
				Name: "Personal Blog",
				Tags: []string{"writing", "online"},
				Setup: SetupDef{
					Cost:        25,
					Days:        3,
					HoursPerDay: 3,
				},
				Maintenance: MaintenanceDef{Hours: 1},
				QualityLevels: []QualityLevelDef{
					{Name: "Fledgling", IncomeMin: 1, IncomeMax: 4},
					{Name: "Steady", IncomeMin: 4, IncomeMax: 9, Requires: map[string]int{"post": 5}},
					{Name: "Popular", IncomeMin: 10, IncomeMax: 22, Requires: map[string]int{"post": 12, "seo": 3}},
				},
				QualityActions: []QualityActionDef{
					{ID: "post", Name: "Write a Post", TimeCost: 2, Progress: 1, DailyLimit: 2},
					{ID: "seo", Name: "SEO Sprint", TimeCost: 1.5, MoneyCost: 5, Progress: 1, DailyLimit: 1},
				},
				Passive: PassiveDef{PerHour: 0.4},
			},
			{
				ID:   "vending",
				Name: "Vending Route",
				Tags: []string{"physical"},
				Setup: SetupDef{
					Cost:        180,
					Days:        2,
					HoursPerDay: 2,
				},
				Maintenance: MaintenanceDef{Hours: 1.5, Cost: 6},
				QualityLevels: []QualityLevelDef{
					{Name: "One Machine", IncomeMin: 8, IncomeMax: 14},
					{Name: "Busy Corner", IncomeMin: 14, IncomeMax: 26, Requires: map[string]int{"restock": 6}},
				},
				QualityActions: []QualityActionDef{
					{ID: "restock", Name: "Restock Run", TimeCost: 1, MoneyCost: 4, Progress: 1, DailyLimit: 2},
				},
				Requires: RequirementDef{Upgrades: []string{"used-van"}},
			},
		},
		Upgrades: []UpgradeDef{
			{
				ID:   "laptop",
				Name: "Refurbished Laptop",
				Cost: 140,
				Effects: []EffectDef{
					{Kind: EffectPayoutMult, Value: 1.25, Target: TargetFilter{Tags: []string{"writing"}}},
				},
			},
			{
				ID:   "used-van",
				Name: "Used Van",
				Cost: 450,
			},
			{
				ID:             "assistant",
				Name:           "Part-Time Assistant",
				Cost:           220,
				Repeatable:     true,
				MaxCount:       3,
				AssistantHours: 2,
			},
			{
				ID:         "coffee",
				Name:       "Strong Coffee",
				Cost:       4,
				Repeatable: true,
				Consumable: &ConsumableDef{DailyBonusHours: 1, UsesPerDay: 2},
			},
			{
				ID:             "standing-desk",
				Name:           "Standing Desk",
				Cost:           90,
				BonusTimeHours: 1,
			},
		},
		Niches: []NicheDef{
			{ID: "tech", Name: "Tech & Gadgets"},
			{ID: "food", Name: "Food & Recipes"},
			{ID: "travel", Name: "Budget Travel"},
		},
		Education: []EducationBoost{
			{
				TrackActionID: "course-writing",
				Label:         "Copywriting Course",
				Flat:          5,
				Multiplier:    1.2,
				Target:        TargetFilter{Tags: []string{"writing"}},
			},
		},
		Blueprints: []EventBlueprint{
			{
				ID:         "viral-spike",
				Label:      "%s caught a viral spike",
				Tone:       "positive",
				When:       TriggerPayout,
				Chance:     0.06,
				QualityChanceStep: 0.02,
				PercentMin: 0.4,
				PercentMax: 1.2,
				DaysMin:    2,
				DaysMax:    4,
				DailyChangeKind: "fade",
			},
			{
				ID:         "slow-week",
				Label:      "%s is having a slow week",
				Tone:       "negative",
				When:       TriggerPayout,
				Chance:     0.05,
				PercentMin: -0.45,
				PercentMax: -0.2,
				DaysMin:    2,
				DaysMax:    3,
				DailyChangeKind: "fade",
			},
			{
				ID:          "fresh-buzz",
				Label:       "Fresh buzz around %s",
				Tone:        "positive",
				When:        TriggerQualityAction,
				Chance:      0.12,
				PercentMin:  0.15,
				PercentMax:  0.35,
				DaysMin:     1,
				DaysMax:     2,
				DailyChange: -0.1,
			},
			{
				ID:         "niche-boom",
				Label:      "%s niche is booming",
				Tone:       "positive",
				When:       TriggerNicheTrend,
				Chance:     0.1,
				Weight:     3,
				PercentMin: 0.2,
				PercentMax: 0.6,
				DaysMin:    3,
				DaysMax:    5,
				DailyChangeKind: "fade",
			},
			{
				ID:         "niche-slump",
				Label:      "%s niche hit a slump",
				Tone:       "negative",
				When:       TriggerNicheTrend,
				Chance:     0.1,
				Weight:     2,
				PercentMin: -0.5,
				PercentMax: -0.25,
				DaysMin:    3,
				DaysMax:    5,
				DailyChangeKind: "fade",
			},
		},
	}
	if err := c.Finalize(); err != nil {
		panic("default catalog invalid: " + err.Error())
	}
	return c
}
