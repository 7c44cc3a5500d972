// Package game composes the engines behind one façade and owns the day
// lifecycle. All mutation funnels through the Engine's mutex; handlers
// and the passive ticker never touch the state document directly.
package game

import (
	"log"
	"sync"

	"sidegig/internal/action"
	"sidegig/internal/asset"
	"sidegig/internal/catalog"
	"sidegig/internal/entropy"
	"sidegig/internal/event"
	"sidegig/internal/state"
	"sidegig/internal/upgrade"
)

type Options struct {
	Catalog *catalog.Catalog
	// BaseTime is the daily hour budget for a fresh state.
	BaseTime float64
	Seed     uint64
	Clock    Clock
	Rand     entropy.Source
	Logger   *log.Logger
	// State resumes an existing document instead of starting fresh.
	State *state.State
}

type Engine struct {
	mu sync.Mutex
	st *state.State

	Catalog  *catalog.Catalog
	Actions  *action.Engine
	Assets   *asset.Engine
	Events   *event.Engine
	Upgrades *upgrade.Engine

	Clock  Clock
	Rand   entropy.Source
	Dirty  *state.DirtyBus
	Logger *log.Logger

	// settling guards against re-entrant settlement; dayEndPending
	// coalesces multiple same-batch triggers into one pass.
	settling      bool
	dayEndPending bool
}

func NewEngine(opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.BaseTime <= 0 {
		opts.BaseTime = 14
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Rand == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(opts.Clock.Now().UnixNano())
		}
		opts.Rand = entropy.NewSeeded(seed)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	st := opts.State
	if st == nil {
		st = state.New(opts.BaseTime)
	}
	st.Normalize()

	dirty := state.NewDirtyBus()
	up := upgrade.NewEngine(opts.Catalog)
	ev := event.NewEngine(opts.Catalog, opts.Rand)
	return &Engine{
		st:       st,
		Catalog:  opts.Catalog,
		Actions:  action.NewEngine(opts.Catalog, up, dirty),
		Assets:   asset.NewEngine(opts.Catalog, up, ev, opts.Rand, dirty),
		Events:   ev,
		Upgrades: up,
		Clock:    opts.Clock,
		Rand:     opts.Rand,
		Dirty:    dirty,
		Logger:   opts.Logger,
	}
}

// View calls fn with the state under the engine lock. fn must not
// retain the pointer.
func (e *Engine) View(fn func(*state.State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.st)
}

// mutate runs fn under the lock and follows up with the coalescing
// day-end check, so any operation that drains the clock settles the
// day exactly once.
func (e *Engine) mutate(fn func(*state.State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.st)
	e.checkDayEndLocked()
	return err
}

// AcceptAction reserves capacity and opens an instance.
func (e *Engine) AcceptAction(id string, ov action.AcceptOverrides) (*state.ActionInstance, action.Availability, error) {
	var (
		inst  *state.ActionInstance
		avail action.Availability
	)
	err := e.mutate(func(st *state.State) error {
		var err error
		inst, avail, err = e.Actions.Accept(st, id, ov)
		return err
	})
	return inst, avail, err
}

// WorkAction logs hours against an open instance.
func (e *Engine) WorkAction(actionID, instanceID string, hours float64) (action.WorkResult, error) {
	var res action.WorkResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Actions.Work(st, actionID, instanceID, hours)
		return err
	})
	return res, err
}

// CompleteAction finalizes a manual-completion instance.
func (e *Engine) CompleteAction(actionID, instanceID string) (action.WorkResult, error) {
	var res action.WorkResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Actions.Complete(st, actionID, instanceID)
		return err
	})
	return res, err
}

// ActionAvailability is the side-effect-free gate check.
func (e *Engine) ActionAvailability(id string) (action.Availability, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	def, ok := e.Catalog.Action(id)
	if !ok {
		return action.Availability{}, false
	}
	return e.Actions.Availability(e.st, def), true
}

// LaunchAsset buys a new instance in setup phase.
func (e *Engine) LaunchAsset(assetID string) (asset.LaunchResult, error) {
	var res asset.LaunchResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Assets.Launch(st, assetID)
		return err
	})
	return res, err
}

// FundAsset retries today's funding for one instance.
func (e *Engine) FundAsset(assetID, instanceID string) (bool, error) {
	var ok bool
	err := e.mutate(func(st *state.State) error {
		var err error
		ok, err = e.Assets.FundInstance(st, assetID, instanceID)
		return err
	})
	return ok, err
}

// RunQualityAction spends effort on an instance's quality ladder.
func (e *Engine) RunQualityAction(assetID, instanceID, actionID string) (asset.QualityResult, error) {
	var res asset.QualityResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Assets.RunQualityAction(st, assetID, instanceID, actionID)
		return err
	})
	return res, err
}

// AssignNiche pins an instance to a niche.
func (e *Engine) AssignNiche(assetID, instanceID, nicheID string) error {
	return e.mutate(func(st *state.State) error {
		return e.Assets.AssignNiche(st, assetID, instanceID, nicheID)
	})
}

// SellAsset liquidates an instance.
func (e *Engine) SellAsset(assetID, instanceID string) (asset.SellResult, error) {
	var res asset.SellResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Assets.Sell(st, assetID, instanceID)
		return err
	})
	return res, err
}

// PurchaseUpgrade buys or uses an upgrade.
func (e *Engine) PurchaseUpgrade(id string) (upgrade.PurchaseResult, error) {
	var res upgrade.PurchaseResult
	err := e.mutate(func(st *state.State) error {
		var err error
		res, err = e.Upgrades.Purchase(st, id)
		return err
	})
	return res, err
}
