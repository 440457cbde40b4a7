package wardrobe

import (
	"sort"

	"go.uber.org/zap"

	"wardrobe/internal/host"
	"wardrobe/internal/situation"
)

// Assignment is one tracked character's outfit selection.
type Assignment struct {
	Current    string
	Situations map[situation.Category]string
}

func (a Assignment) clone() Assignment {
	out := Assignment{Current: a.Current, Situations: make(map[situation.Category]string, len(a.Situations))}
	for c, name := range a.Situations {
		out.Situations[c] = name
	}
	return out
}

// Assignments is the per-character assignment table.
type Assignments struct {
	records map[host.CharacterID]*Assignment
	outfits *Store
	logger  *zap.Logger
}

func newAssignments(outfits *Store, logger *zap.Logger) *Assignments {
	return &Assignments{
		records: make(map[host.CharacterID]*Assignment),
		outfits: outfits,
		logger:  logger,
	}
}

// Add starts tracking c and reports whether it was newly added.
func (a *Assignments) Add(c host.CharacterID) bool {
	if c == "" {
		return false
	}
	if _, ok := a.records[c]; ok {
		return false
	}
	a.records[c] = &Assignment{Current: NoOutfit, Situations: make(map[situation.Category]string)}
	return true
}

// Remove stops tracking c and reports whether it was tracked.
func (a *Assignments) Remove(c host.CharacterID) bool {
	if _, ok := a.records[c]; !ok {
		return false
	}
	delete(a.records, c)
	return true
}

func (a *Assignments) Tracked(c host.CharacterID) bool {
	_, ok := a.records[c]
	return ok
}

// List returns every tracked character in ID order.
func (a *Assignments) List() []host.CharacterID {
	out := make([]host.CharacterID, 0, len(a.records))
	for c := range a.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Get returns a copy of c's record.
func (a *Assignments) Get(c host.CharacterID) (Assignment, bool) {
	rec, ok := a.records[c]
	if !ok {
		return Assignment{}, false
	}
	return rec.clone(), true
}

func (a *Assignments) Current(c host.CharacterID) string {
	if rec, ok := a.records[c]; ok {
		return rec.Current
	}
	return NoOutfit
}

// CurrentOutfit resolves c's current outfit; ok is false for the sentinel or
// a name that no longer exists.
func (a *Assignments) CurrentOutfit(c host.CharacterID) (*Outfit, bool) {
	name := a.Current(c)
	if name == NoOutfit {
		return nil, false
	}
	outfit, err := a.outfits.Get(name)
	if err != nil {
		return nil, false
	}
	return outfit, true
}

// SetCurrent selects name for c. A name that does not resolve to an outfit
// switches c back to the sentinel. Untracked characters are ignored.
func (a *Assignments) SetCurrent(c host.CharacterID, name string) {
	rec, ok := a.records[c]
	if !ok {
		return
	}
	if name == NoOutfit {
		rec.Current = NoOutfit
		return
	}
	outfit, err := a.outfits.Get(name)
	if err != nil {
		a.logger.Warn("selected outfit does not exist, clearing selection",
			zap.String("character", string(c)),
			zap.String("outfit", name))
		rec.Current = NoOutfit
		return
	}
	rec.Current = outfit.Name
}

// SetSituation maps category to name for c. The sentinel name is never stored;
// use UnsetSituation instead.
func (a *Assignments) SetSituation(c host.CharacterID, category situation.Category, name string) bool {
	rec, ok := a.records[c]
	if !ok || name == NoOutfit {
		return false
	}
	rec.Situations[category] = name
	return true
}

func (a *Assignments) UnsetSituation(c host.CharacterID, category situation.Category) {
	if rec, ok := a.records[c]; ok {
		delete(rec.Situations, category)
	}
}

func (a *Assignments) Situation(c host.CharacterID, category situation.Category) (string, bool) {
	rec, ok := a.records[c]
	if !ok {
		return "", false
	}
	name, ok := rec.Situations[category]
	return name, ok
}

// Mapped returns the classifier predicate for c's situation map.
func (a *Assignments) Mapped(c host.CharacterID) situation.Mapped {
	rec, ok := a.records[c]
	if !ok {
		return nil
	}
	return func(category situation.Category) bool {
		_, ok := rec.Situations[category]
		return ok
	}
}

// Restore installs a saved record for c, dropping sentinel situation entries.
func (a *Assignments) Restore(c host.CharacterID, rec Assignment) {
	if c == "" {
		return
	}
	restored := &Assignment{Current: rec.Current, Situations: make(map[situation.Category]string, len(rec.Situations))}
	for category, name := range rec.Situations {
		if name != NoOutfit {
			restored.Situations[category] = name
		}
	}
	a.records[c] = restored
}

func (a *Assignments) scrub(name string) {
	for _, rec := range a.records {
		if rec.Current != NoOutfit && SameName(rec.Current, name) {
			rec.Current = NoOutfit
		}
		for category, mapped := range rec.Situations {
			if SameName(mapped, name) {
				delete(rec.Situations, category)
			}
		}
	}
}

func (a *Assignments) repoint(oldName, newName string) {
	for _, rec := range a.records {
		if rec.Current != NoOutfit && SameName(rec.Current, oldName) {
			rec.Current = newName
		}
		for category, mapped := range rec.Situations {
			if SameName(mapped, oldName) {
				rec.Situations[category] = newName
			}
		}
	}
}

func (a *Assignments) reset() {
	a.records = make(map[host.CharacterID]*Assignment)
}
