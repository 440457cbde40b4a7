// Package memhost is an in-memory host world. It backs the simulate and
// serve commands and the tests of every package that drives a host.
package memhost

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
)

var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrNotOwned         = errors.New("item not in inventory")
	ErrUnknownLocation  = errors.New("unknown location")
)

// Character is the mutable state of one actor.
type Character struct {
	ID         host.CharacterID
	Name       string
	Loaded     bool
	Location   string
	Activity   host.Activity
	Worn       item.Set
	Inventory  map[item.ID]int
	Default    []item.ID
	HasDefault bool
}

// ItemInfo is catalog metadata for one item.
type ItemInfo struct {
	Name  string
	Slots item.SlotMask
}

// Call records one mutating request made against the world.
type Call struct {
	Op        string
	Character host.CharacterID
	Item      item.ID
	Forced    bool
}

// World implements host.Host.
type World struct {
	mu         sync.Mutex
	player     host.CharacterID
	hour       float64
	weather    host.Weather
	characters map[host.CharacterID]*Character
	locations  map[string]*host.Location
	items      map[item.ID]ItemInfo
	calls      []Call

	// Fail makes every mutating call for the listed items return an error.
	Fail map[item.ID]error
}

var _ host.Host = (*World)(nil)

func New(player host.CharacterID) *World {
	w := &World{
		player:     player,
		hour:       12,
		characters: make(map[host.CharacterID]*Character),
		locations:  make(map[string]*host.Location),
		items:      make(map[item.ID]ItemInfo),
		Fail:       make(map[item.ID]error),
	}
	w.AddCharacter(&Character{ID: player, Name: "Player", Loaded: true})
	return w
}

// AddCharacter registers or replaces a character.
func (w *World) AddCharacter(c *Character) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c.Worn == nil {
		c.Worn = item.NewSet()
	}
	if c.Inventory == nil {
		c.Inventory = make(map[item.ID]int)
	}
	w.characters[c.ID] = c
}

func (w *World) AddLocation(loc *host.Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locations[loc.ID] = loc
}

func (w *World) AddItemInfo(it item.ID, info ItemInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[it] = info
}

func (w *World) character(c host.CharacterID) (*Character, error) {
	ch, ok := w.characters[c]
	if !ok {
		return nil, fmt.Errorf("%s: %w", c, ErrUnknownCharacter)
	}
	return ch, nil
}

func (w *World) Player() host.CharacterID {
	return w.player
}

func (w *World) Loaded(c host.CharacterID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.characters[c]
	return ok && ch.Loaded
}

func (w *World) Name(c host.CharacterID) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.characters[c]; ok {
		return ch.Name
	}
	return ""
}

func (w *World) Location(c host.CharacterID) (*host.Location, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.characters[c]
	if !ok || ch.Location == "" {
		return nil, false
	}
	loc, ok := w.locations[ch.Location]
	return loc, ok
}

func (w *World) Weather() host.Weather {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.weather
}

func (w *World) Hour() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hour
}

func (w *World) Activity(c host.CharacterID) host.Activity {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.characters[c]; ok {
		return ch.Activity
	}
	return host.Activity{}
}

func (w *World) Worn(c host.CharacterID) []item.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.characters[c]; ok {
		return ch.Worn.Sorted()
	}
	return nil
}

func (w *World) Owned(c host.CharacterID) []item.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.characters[c]
	if !ok {
		return nil
	}
	owned := item.NewSet()
	for it, count := range ch.Inventory {
		if count > 0 {
			owned.Add(it)
		}
	}
	return owned.Sorted()
}

// Equip wears it, displacing anything that shares a slot with it.
func (w *World) Equip(c host.CharacterID, it item.ID, forced bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, Call{Op: "equip", Character: c, Item: it, Forced: forced})
	if err := w.Fail[it]; err != nil {
		return err
	}
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	if ch.Inventory[it] <= 0 {
		return fmt.Errorf("equipping %s on %s: %w", it, c, ErrNotOwned)
	}
	if mask, ok := w.items[it]; ok && mask.Slots != 0 {
		for _, other := range ch.Worn.Sorted() {
			if info, ok := w.items[other]; ok && info.Slots.Overlaps(mask.Slots) {
				ch.Worn.Remove(other)
			}
		}
	}
	ch.Worn.Add(it)
	return nil
}

func (w *World) Unequip(c host.CharacterID, it item.ID, forced bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, Call{Op: "unequip", Character: c, Item: it, Forced: forced})
	if err := w.Fail[it]; err != nil {
		return err
	}
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Worn.Remove(it)
	return nil
}

func (w *World) AddItem(c host.CharacterID, it item.ID, count int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, Call{Op: "add", Character: c, Item: it})
	if err := w.Fail[it]; err != nil {
		return err
	}
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Inventory[it] += count
	return nil
}

// RemoveItem drops count units; an item with none left is no longer worn.
func (w *World) RemoveItem(c host.CharacterID, it item.ID, count int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, Call{Op: "remove", Character: c, Item: it})
	if err := w.Fail[it]; err != nil {
		return err
	}
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Inventory[it] -= count
	if ch.Inventory[it] <= 0 {
		delete(ch.Inventory, it)
		ch.Worn.Remove(it)
	}
	return nil
}

func (w *World) DefaultOutfit(c host.CharacterID) ([]item.ID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.characters[c]
	if !ok || !ch.HasDefault {
		return nil, false
	}
	return append([]item.ID(nil), ch.Default...), true
}

func (w *World) SlotMask(it item.ID) (item.SlotMask, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	info, ok := w.items[it]
	return info.Slots, ok
}

func (w *World) ItemName(it item.ID) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if info, ok := w.items[it]; ok && info.Name != "" {
		return info.Name
	}
	return it.String()
}

// Characters lists every known character ID, sorted.
func (w *World) Characters() []host.CharacterID {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]host.CharacterID, 0, len(w.characters))
	for id := range w.characters {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *World) SetHour(hour float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hour = hour
}

func (w *World) SetWeather(weather host.Weather) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.weather = weather
}

// MoveTo places c in the named location; an empty name means no cell.
func (w *World) MoveTo(c host.CharacterID, location string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	if _, ok := w.locations[location]; location != "" && !ok {
		return fmt.Errorf("%s: %w", location, ErrUnknownLocation)
	}
	ch.Location = location
	return nil
}

func (w *World) SetLoaded(c host.CharacterID, loaded bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Loaded = loaded
	return nil
}

func (w *World) SetActivity(c host.CharacterID, activity host.Activity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Activity = activity
	return nil
}

// Give puts count units of it in c's inventory without recording a call.
func (w *World) Give(c host.CharacterID, it item.ID, count int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, err := w.character(c)
	if err != nil {
		return err
	}
	ch.Inventory[it] += count
	return nil
}

// Count returns how many units of it c carries.
func (w *World) Count(c host.CharacterID, it item.ID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.characters[c]; ok {
		return ch.Inventory[it]
	}
	return 0
}

// Calls returns the mutating calls recorded since the last ResetCalls.
func (w *World) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.calls...)
}

func (w *World) ResetCalls() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = nil
}

// Sync takes the environment from next: clock, weather, locations, the item
// catalog and each character's whereabouts and activity. Worn items and
// inventories stay as they are; characters only next knows are added whole.
func (w *World) Sync(next *World) {
	next.mu.Lock()
	defer next.mu.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.hour = next.hour
	w.weather = next.weather
	w.locations = make(map[string]*host.Location, len(next.locations))
	for id, loc := range next.locations {
		w.locations[id] = loc
	}
	w.items = make(map[item.ID]ItemInfo, len(next.items))
	for id, info := range next.items {
		w.items[id] = info
	}

	for id, src := range next.characters {
		dst, ok := w.characters[id]
		if !ok {
			w.characters[id] = src
			continue
		}
		dst.Name = src.Name
		dst.Loaded = src.Loaded
		dst.Location = src.Location
		dst.Activity = src.Activity
		dst.Default = append([]item.ID(nil), src.Default...)
		dst.HasDefault = src.HasDefault
	}
}
