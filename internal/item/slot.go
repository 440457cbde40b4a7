package item

// SlotMask is the biped slot bitfield of an armor piece. Slot n (30..61) is
// bit n-30.
type SlotMask uint32

const (
	FirstSlot = 30
	LastSlot  = 61
)

const (
	SlotHead    SlotMask = 1 << (30 - FirstSlot)
	SlotHair    SlotMask = 1 << (31 - FirstSlot)
	SlotBody    SlotMask = 1 << (32 - FirstSlot)
	SlotHands   SlotMask = 1 << (33 - FirstSlot)
	SlotFeet    SlotMask = 1 << (37 - FirstSlot)
	SlotShield  SlotMask = 1 << (39 - FirstSlot)
	SlotCirclet SlotMask = 1 << (42 - FirstSlot)
)

// MaskForSlots builds a mask from slot numbers; out of range slots are ignored.
func MaskForSlots(slots ...int) SlotMask {
	var mask SlotMask
	for _, slot := range slots {
		if slot < FirstSlot || slot > LastSlot {
			continue
		}
		mask |= 1 << uint(slot-FirstSlot)
	}
	return mask
}

func (m SlotMask) Overlaps(other SlotMask) bool {
	return m&other != 0
}

// Slots lists the slot numbers set in the mask in ascending order.
func (m SlotMask) Slots() []int {
	var out []int
	for slot := FirstSlot; slot <= LastSlot; slot++ {
		if m&(1<<uint(slot-FirstSlot)) != 0 {
			out = append(out, slot)
		}
	}
	return out
}
