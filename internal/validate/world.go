package validate

import (
	"wardrobe/internal/host"
	"wardrobe/internal/item"
)

// World is what the checks need to know about the host.
type World interface {
	SlotMask(it item.ID) (item.SlotMask, bool)
	Characters() []host.CharacterID
}
