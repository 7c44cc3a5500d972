package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the full content set. Slice order is significant: the
// maintenance allocator funds assets in declaration order.
type Catalog struct {
	Actions    []ActionDef      `yaml:"actions"`
	Assets     []AssetDef       `yaml:"assets"`
	Upgrades   []UpgradeDef     `yaml:"upgrades"`
	Niches     []NicheDef       `yaml:"niches"`
	Education  []EducationBoost `yaml:"education"`
	Blueprints []EventBlueprint `yaml:"blueprints"`

	actionIdx  map[string]*ActionDef
	assetIdx   map[string]*AssetDef
	upgradeIdx map[string]*UpgradeDef
	nicheIdx   map[string]*NicheDef
}

// Load reads a catalog YAML file and validates it.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Finalize(); err != nil {
		return nil, fmt.Errorf("validate catalog %s: %w", path, err)
	}
	return &c, nil
}

// Finalize builds lookup indexes and rejects structurally broken
// content. Call once after construction; Load does this for you.
func (c *Catalog) Finalize() error {
	c.actionIdx = make(map[string]*ActionDef, len(c.Actions))
	for i := range c.Actions {
		def := &c.Actions[i]
		if def.ID == "" {
			return fmt.Errorf("action %d: missing id", i)
		}
		if _, dup := c.actionIdx[def.ID]; dup {
			return fmt.Errorf("duplicate action id %q", def.ID)
		}
		if def.Availability.Policy == "" {
			def.Availability.Policy = AvailabilityAlways
		}
		if def.Availability.Policy == AvailabilityDailyLimit && def.Availability.DailyLimit <= 0 {
			return fmt.Errorf("action %q: dailyLimit policy needs a positive limit", def.ID)
		}
		if def.Progress.Completion == "" {
			def.Progress.Completion = CompletionInstant
		}
		c.actionIdx[def.ID] = def
	}

	c.assetIdx = make(map[string]*AssetDef, len(c.Assets))
	for i := range c.Assets {
		def := &c.Assets[i]
		if def.ID == "" {
			return fmt.Errorf("asset %d: missing id", i)
		}
		if _, dup := c.assetIdx[def.ID]; dup {
			return fmt.Errorf("duplicate asset id %q", def.ID)
		}
		if len(def.QualityLevels) == 0 {
			return fmt.Errorf("asset %q: needs at least quality level 0", def.ID)
		}
		for _, lvl := range def.QualityLevels {
			if lvl.IncomeMax < lvl.IncomeMin {
				return fmt.Errorf("asset %q: quality level %q has inverted income range", def.ID, lvl.Name)
			}
		}
		c.assetIdx[def.ID] = def
	}

	c.upgradeIdx = make(map[string]*UpgradeDef, len(c.Upgrades))
	for i := range c.Upgrades {
		def := &c.Upgrades[i]
		if def.ID == "" {
			return fmt.Errorf("upgrade %d: missing id", i)
		}
		if _, dup := c.upgradeIdx[def.ID]; dup {
			return fmt.Errorf("duplicate upgrade id %q", def.ID)
		}
		c.upgradeIdx[def.ID] = def
	}

	c.nicheIdx = make(map[string]*NicheDef, len(c.Niches))
	for i := range c.Niches {
		def := &c.Niches[i]
		if def.ID == "" {
			return fmt.Errorf("niche %d: missing id", i)
		}
		c.nicheIdx[def.ID] = def
	}

	for _, bp := range c.Blueprints {
		if bp.ID == "" {
			return fmt.Errorf("blueprint: missing id")
		}
		if bp.When == "" {
			return fmt.Errorf("blueprint %q: missing trigger", bp.ID)
		}
		if bp.DaysMax < bp.DaysMin {
			return fmt.Errorf("blueprint %q: inverted day range", bp.ID)
		}
	}
	return nil
}

func (c *Catalog) Action(id string) (*ActionDef, bool) {
	def, ok := c.actionIdx[id]
	return def, ok
}

func (c *Catalog) Asset(id string) (*AssetDef, bool) {
	def, ok := c.assetIdx[id]
	return def, ok
}

func (c *Catalog) Upgrade(id string) (*UpgradeDef, bool) {
	def, ok := c.upgradeIdx[id]
	return def, ok
}

func (c *Catalog) Niche(id string) (*NicheDef, bool) {
	def, ok := c.nicheIdx[id]
	return def, ok
}

// QualityLevel returns the level definition for an index, clamping to
// the top of the ladder.
func (a *AssetDef) QualityLevel(level int) QualityLevelDef {
	if level < 0 {
		level = 0
	}
	if level >= len(a.QualityLevels) {
		level = len(a.QualityLevels) - 1
	}
	return a.QualityLevels[level]
}

// QualityIncomeScale is the ratio of a level's midpoint income to the
// level-0 midpoint. The passive trickle multiplies its base rate by
// this so real-time income tracks the quality ladder the same way the
// daily payout range does. A zero level-0 midpoint scales to 1.
func (a *AssetDef) QualityIncomeScale(level int) float64 {
	base := a.QualityLevel(0)
	mid0 := float64(base.IncomeMin+base.IncomeMax) / 2
	if mid0 <= 0 {
		return 1
	}
	lvl := a.QualityLevel(level)
	return float64(lvl.IncomeMin+lvl.IncomeMax) / 2 / mid0
}

// QualityAction finds a quality action by id.
func (a *AssetDef) QualityAction(id string) (*QualityActionDef, bool) {
	for i := range a.QualityActions {
		if a.QualityActions[i].ID == id {
			return &a.QualityActions[i], true
		}
	}
	return nil, false
}

// BlueprintsFor returns the blueprints registered for a trigger, in
// declaration order.
func (c *Catalog) BlueprintsFor(when BlueprintTrigger) []EventBlueprint {
	var out []EventBlueprint
	for _, bp := range c.Blueprints {
		if bp.When == when {
			out = append(out, bp)
		}
	}
	return out
}

// BoostsFor returns the education boosts whose study track is complete
// and whose filter matches the given action.
func (c *Catalog) BoostsFor(actionID string, tags []string, completed func(trackID string) bool) []EducationBoost {
	var out []EducationBoost
	for _, b := range c.Education {
		if !completed(b.TrackActionID) {
			continue
		}
		if !b.Target.Matches(actionID, tags) {
			continue
		}
		out = append(out, b)
	}
	return out
}
