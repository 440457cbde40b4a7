package wardrobe

import (
	"fmt"
	"strings"

	"wardrobe/internal/item"
)

// NoOutfit is the sentinel name meaning "no override in effect".
const NoOutfit = ""

// MaxNameLength is the longest outfit name accepted, in bytes.
const MaxNameLength = 256

type Outfit struct {
	Name     string
	Items    item.Set
	Favorite bool
}

func newOutfit(name string) *Outfit {
	return &Outfit{Name: name, Items: item.NewSet()}
}

// Clone returns a deep copy.
func (o *Outfit) Clone() *Outfit {
	return &Outfit{Name: o.Name, Items: o.Items.Clone(), Favorite: o.Favorite}
}

// ConflictsWith reports whether any item already in the outfit shares an
// equipment slot with candidate.
func (o *Outfit) ConflictsWith(candidate item.ID, catalog SlotLookup) bool {
	if !candidate.Valid() || catalog == nil {
		return false
	}
	mask, ok := catalog.SlotMask(candidate)
	if !ok {
		return false
	}
	for id := range o.Items {
		other, ok := catalog.SlotMask(id)
		if ok && mask.Overlaps(other) {
			return true
		}
	}
	return false
}

// SlotLookup resolves an item's slot mask.
type SlotLookup interface {
	SlotMask(it item.ID) (item.SlotMask, bool)
}

func ValidateName(name string) error {
	if name == NoOutfit {
		return fmt.Errorf("outfits can't use a blank name: %w", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("outfit name is longer than %d bytes: %w", MaxNameLength, ErrInvalidName)
	}
	return nil
}

func key(name string) string {
	return strings.ToLower(name)
}

// SameName compares outfit names the way the store keys them.
func SameName(a, b string) bool {
	return key(a) == key(b)
}
