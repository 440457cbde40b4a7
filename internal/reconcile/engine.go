// Package reconcile brings a character's worn equipment in line with the
// outfit the assignment table says it should wear.
package reconcile

import (
	"go.uber.org/zap"

	"wardrobe/internal/cache"
	"wardrobe/internal/host"
	"wardrobe/internal/item"
	"wardrobe/internal/wardrobe"
)

// Result summarizes one pass.
type Result struct {
	Character  host.CharacterID
	Policy     Policy
	Skipped    bool
	Equipped   []item.ID
	Unequipped []item.ID
	Added      []item.ID
	Removed    []item.ID
	Failures   int
}

// Changed reports whether the pass asked the host to do anything.
func (r Result) Changed() bool {
	return len(r.Equipped)+len(r.Unequipped)+len(r.Added)+len(r.Removed) > 0
}

type Engine struct {
	host        host.Host
	assignments *wardrobe.Assignments
	cache       *cache.Cache
	logger      *zap.Logger

	Policies Policies
}

func NewEngine(h host.Host, assignments *wardrobe.Assignments, c *cache.Cache, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		host:        h,
		assignments: assignments,
		cache:       c,
		logger:      logger,
		Policies:    Policies{Player: Disabled, NPC: Disabled},
	}
}

// desired returns the item set the character should wear, or false when
// nothing should be done.
func (e *Engine) desired(c host.CharacterID, isPlayer bool) (item.Set, bool) {
	if outfit, ok := e.assignments.CurrentOutfit(c); ok {
		return outfit.Items, true
	}
	if isPlayer {
		return nil, false
	}
	defaults, ok := e.host.DefaultOutfit(c)
	if !ok {
		return nil, false
	}
	return item.NewSet(defaults...), true
}

// Reconcile runs one pass for c. It must be called on the apply context.
func (e *Engine) Reconcile(c host.CharacterID) Result {
	isPlayer := c == e.host.Player()
	policy := e.Policies.For(isPlayer)
	res := Result{Character: c, Policy: policy}

	if !e.host.Loaded(c) {
		res.Skipped = true
		return res
	}
	want, ok := e.desired(c, isPlayer)
	if !ok {
		res.Skipped = true
		return res
	}

	forced := !isPlayer
	worn := item.NewSet(e.host.Worn(c)...)
	owned := item.NewSet(e.host.Owned(c)...)
	log := e.logger.With(zap.String("character", c.String()), zap.Stringer("policy", policy))

	if want.Len() > 0 {
		for _, it := range worn.Sorted() {
			if want.Has(it) {
				continue
			}
			if err := e.host.Unequip(c, it, forced); err != nil {
				log.Error("unequip failed", zap.String("item", it.String()), zap.Error(err))
				res.Failures++
				continue
			}
			res.Unequipped = append(res.Unequipped, it)
		}
	}

	for _, it := range want.Sorted() {
		if worn.Has(it) {
			continue
		}
		if !owned.Has(it) {
			if policy != Automatic {
				continue
			}
			if err := e.host.AddItem(c, it, 1); err != nil {
				log.Error("adding item failed", zap.String("item", it.String()), zap.Error(err))
				res.Failures++
				continue
			}
			e.cache.Stash(c).Add(it)
			res.Added = append(res.Added, it)
		}
		if err := e.host.Equip(c, it, forced); err != nil {
			log.Error("equip failed", zap.String("item", it.String()), zap.Error(err))
			res.Failures++
			continue
		}
		res.Equipped = append(res.Equipped, it)
	}

	if policy == Automatic {
		stash := e.cache.Stash(c)
		for _, it := range stash.Sorted() {
			if want.Has(it) {
				continue
			}
			if err := e.host.RemoveItem(c, it, 1); err != nil {
				log.Error("removing stashed item failed", zap.String("item", it.String()), zap.Error(err))
				res.Failures++
				continue
			}
			stash.Remove(it)
			res.Removed = append(res.Removed, it)
		}
	}

	if res.Changed() {
		log.Debug("reconciled",
			zap.Int("equipped", len(res.Equipped)),
			zap.Int("unequipped", len(res.Unequipped)),
			zap.Int("added", len(res.Added)),
			zap.Int("removed", len(res.Removed)),
			zap.Int("failures", res.Failures))
	}
	return res
}

// AllowEquip decides whether an equip request coming from outside the
// engine may proceed. Tracked, loaded NPCs wearing a non-empty outfit only
// accept items from that outfit, except while in a scene.
func (e *Engine) AllowEquip(c host.CharacterID, it item.ID) bool {
	if c == e.host.Player() || !e.assignments.Tracked(c) || !e.host.Loaded(c) {
		return true
	}
	if e.cache.Scene(c) {
		return true
	}
	outfit, ok := e.assignments.CurrentOutfit(c)
	if !ok || outfit.Items.Len() == 0 {
		return true
	}
	return outfit.Items.Has(it)
}
