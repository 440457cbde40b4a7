// Package validate checks a saved outfit state for problems that would only
// surface at runtime: dangling references, items the host does not know, and
// outfits whose items fight over a body slot.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
	"wardrobe/internal/store"
	"wardrobe/internal/wardrobe"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeInvalidName       = "invalid_outfit_name"
	codeDuplicateName     = "duplicate_outfit_name"
	codeUnknownMode       = "unknown_inventory_mode"
	codeUnknownSituation  = "unknown_situation"
	codeUnknownItem       = "unknown_item"
	codeSlotOverlap       = "slot_overlap"
	codeDanglingSelection = "dangling_selection"
	codeDanglingSituation = "dangling_situation"
	codeUnknownCharacter  = "unknown_character"
)

type Issue struct {
	Severity  Severity
	Code      string
	Message   string
	Outfit    string
	Character string
}

type Report struct {
	Issues []Issue
}

// Errors reports whether any issue has error severity.
func (r *Report) Errors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run checks state. world may be nil, in which case item and character
// checks are skipped.
func Run(state *store.State, world World) (*Report, error) {
	if state == nil {
		return nil, fmt.Errorf("state is required")
	}

	issues := make([]Issue, 0)
	issues = append(issues, validateModes(state)...)

	outfits := make(map[string]store.OutfitRecord, len(state.Outfits))
	for _, rec := range state.Outfits {
		if err := wardrobe.ValidateName(rec.Name); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidName,
				Message:  err.Error(),
				Outfit:   rec.Name,
			})
			continue
		}
		key := strings.ToLower(rec.Name)
		if _, dup := outfits[key]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateName,
				Message:  "outfit name is used more than once",
				Outfit:   rec.Name,
			})
			continue
		}
		outfits[key] = rec
		if world != nil {
			issues = append(issues, validateItems(rec, world)...)
		}
	}

	var roster map[host.CharacterID]struct{}
	if world != nil {
		roster = make(map[host.CharacterID]struct{})
		for _, c := range world.Characters() {
			roster[c] = struct{}{}
		}
	}

	for _, character := range state.Characters() {
		rec := state.Assignments[character]
		if roster != nil {
			if _, ok := roster[host.CharacterID(character)]; !ok {
				issues = append(issues, Issue{
					Severity:  SeverityWarn,
					Code:      codeUnknownCharacter,
					Message:   "tracked character does not exist in the world",
					Character: character,
				})
			}
		}
		if rec.Current != wardrobe.NoOutfit {
			if _, ok := outfits[strings.ToLower(rec.Current)]; !ok {
				issues = append(issues, Issue{
					Severity:  SeverityWarn,
					Code:      codeDanglingSelection,
					Message:   "selected outfit does not exist",
					Outfit:    rec.Current,
					Character: character,
				})
			}
		}
		issues = append(issues, validateSituations(character, rec, outfits)...)
	}

	return &Report{Issues: issues}, nil
}

func validateModes(state *store.State) []Issue {
	var issues []Issue
	modes := []struct {
		name  string
		value int
	}{
		{"player", state.PlayerMode},
		{"npc", state.NPCMode},
	}
	for _, m := range modes {
		if !reconcile.Policy(m.value).Valid() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownMode,
				Message:  fmt.Sprintf("unknown %s inventory mode: %d", m.name, m.value),
			})
		}
	}
	return issues
}

func validateItems(rec store.OutfitRecord, world World) []Issue {
	var issues []Issue
	masks := make(map[string]item.SlotMask, len(rec.Items))
	for _, id := range rec.Items {
		mask, ok := world.SlotMask(item.ID(id))
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeUnknownItem,
				Message:  fmt.Sprintf("unknown item: %s", id),
				Outfit:   rec.Name,
			})
			continue
		}
		masks[id] = mask
	}

	ids := make([]string, 0, len(masks))
	for id := range masks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if masks[a]&masks[b] != 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeSlotOverlap,
					Message:  fmt.Sprintf("items %s and %s share a body slot", a, b),
					Outfit:   rec.Name,
				})
			}
		}
	}
	return issues
}

func validateSituations(character string, rec store.AssignmentRecord, outfits map[string]store.OutfitRecord) []Issue {
	values := make([]uint32, 0, len(rec.Situations))
	for value := range rec.Situations {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	var issues []Issue
	for _, value := range values {
		category := situation.Category(value)
		name := rec.Situations[value]
		if !category.Known() {
			issues = append(issues, Issue{
				Severity:  SeverityError,
				Code:      codeUnknownSituation,
				Message:   fmt.Sprintf("unknown situation: %d", value),
				Outfit:    name,
				Character: character,
			})
			continue
		}
		if _, ok := outfits[strings.ToLower(name)]; !ok {
			issues = append(issues, Issue{
				Severity:  SeverityWarn,
				Code:      codeDanglingSituation,
				Message:   fmt.Sprintf("%s maps to a missing outfit", category),
				Outfit:    name,
				Character: character,
			})
		}
	}
	return issues
}
