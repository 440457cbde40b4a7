// Package host describes the game-engine collaborators the outfit system
// drives. Implementations live outside this module; memhost provides an
// in-memory stand-in.
package host

import (
	"wardrobe/internal/item"
	"wardrobe/internal/situation"
)

// CharacterID is the stable identifier of a tracked character, normally the
// form string of its actor reference. It is resolved against the live world
// on every use and never cached as a pointer.
type CharacterID string

func (c CharacterID) String() string {
	return string(c)
}

// Location is a place in the world with its parent chain.
type Location struct {
	ID       string
	Name     string
	Keywords []string
	Interior bool
	Parent   *Location
}

func (l *Location) PlaceKeywords() []string {
	if l == nil {
		return nil
	}
	return l.Keywords
}

func (l *Location) ParentPlace() situation.Place {
	if l == nil || l.Parent == nil {
		return nil
	}
	return l.Parent
}

// Weather is the current sky state. An empty ID means the weather is unknown.
type Weather struct {
	ID    string
	Snowy bool
	Rainy bool
}

// Activity holds the per-character activity flags.
type Activity struct {
	InCombat bool
	InWater  bool
	Swimming bool
	Sleeping bool
	Mounted  bool
}

// World exposes environmental signals.
type World interface {
	Player() CharacterID
	Loaded(c CharacterID) bool
	Name(c CharacterID) string
	// Location returns the character's current location. ok is false when
	// the character has no parent cell.
	Location(c CharacterID) (loc *Location, ok bool)
	Weather() Weather
	// Hour is the in-game hour of day in [0, 24).
	Hour() float64
	Activity(c CharacterID) Activity
}

// Equipment is the equip and inventory subsystem.
type Equipment interface {
	Worn(c CharacterID) []item.ID
	Owned(c CharacterID) []item.ID
	Equip(c CharacterID, it item.ID, forced bool) error
	Unequip(c CharacterID, it item.ID, forced bool) error
	AddItem(c CharacterID, it item.ID, count int) error
	RemoveItem(c CharacterID, it item.ID, count int) error
	// DefaultOutfit is the character's intrinsic equipment set.
	DefaultOutfit(c CharacterID) ([]item.ID, bool)
}

// Catalog resolves item metadata.
type Catalog interface {
	SlotMask(it item.ID) (item.SlotMask, bool)
	ItemName(it item.ID) string
}

// Host bundles every collaborator.
type Host interface {
	World
	Equipment
	Catalog
}
