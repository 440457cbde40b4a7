// Package cache holds the runtime state that is owned by the outfit system
// but is not part of any outfit: each character's virtual stash and the
// scene flags pushed by other systems.
package cache

import (
	"sort"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
)

type Cache struct {
	stashes map[host.CharacterID]item.Set
	scenes  map[host.CharacterID]bool
}

func New() *Cache {
	return &Cache{
		stashes: make(map[host.CharacterID]item.Set),
		scenes:  make(map[host.CharacterID]bool),
	}
}

// Stash returns c's stash, creating it on first use. The returned set is
// live; callers mutate it in place.
func (c *Cache) Stash(character host.CharacterID) item.Set {
	stash, ok := c.stashes[character]
	if !ok {
		stash = item.NewSet()
		c.stashes[character] = stash
	}
	return stash
}

// PeekStash returns c's stash without creating it.
func (c *Cache) PeekStash(character host.CharacterID) (item.Set, bool) {
	stash, ok := c.stashes[character]
	return stash, ok
}

func (c *Cache) SetScene(character host.CharacterID, inScene bool) {
	if inScene {
		c.scenes[character] = true
		return
	}
	delete(c.scenes, character)
}

func (c *Cache) Scene(character host.CharacterID) bool {
	return c.scenes[character]
}

// Forget drops everything held for character.
func (c *Cache) Forget(character host.CharacterID) {
	delete(c.stashes, character)
	delete(c.scenes, character)
}

func (c *Cache) Reset() {
	c.stashes = make(map[host.CharacterID]item.Set)
	c.scenes = make(map[host.CharacterID]bool)
}

// Stashes returns a copy of every non-empty stash as sorted item lists.
func (c *Cache) Stashes() map[host.CharacterID][]item.ID {
	out := make(map[host.CharacterID][]item.ID, len(c.stashes))
	for character, stash := range c.stashes {
		if stash.Len() > 0 {
			out[character] = stash.Sorted()
		}
	}
	return out
}

// Scenes lists the characters currently in a scene, sorted.
func (c *Cache) Scenes() []host.CharacterID {
	out := make([]host.CharacterID, 0, len(c.scenes))
	for character := range c.scenes {
		out = append(out, character)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RestoreStash replaces character's stash.
func (c *Cache) RestoreStash(character host.CharacterID, items []item.ID) {
	c.stashes[character] = item.NewSet(items...)
}
