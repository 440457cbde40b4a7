package mcp

import (
	"fmt"

	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
	"wardrobe/internal/store"
)

func stateDocument(state *store.State) StateDocument {
	doc := StateDocument{
		Enabled:          state.Enabled,
		PlayerMode:       reconcile.Policy(state.PlayerMode).String(),
		NPCMode:          reconcile.Policy(state.NPCMode).String(),
		QuickSlotEnabled: state.QuickSlotEnabled,
		ClimatePriority:  state.ClimatePriority,
		Outfits:          make([]OutfitDocument, 0, len(state.Outfits)),
		Assignments:      make(map[string]AssignmentDocument, len(state.Assignments)),
	}
	for _, rec := range state.Outfits {
		doc.Outfits = append(doc.Outfits, OutfitDocument{
			Name:     rec.Name,
			Items:    append([]string{}, rec.Items...),
			Favorite: rec.Favorite,
		})
	}
	for character, rec := range state.Assignments {
		a := AssignmentDocument{Current: rec.Current, Situations: make(map[string]string, len(rec.Situations))}
		for category, name := range rec.Situations {
			a.Situations[situation.Category(category).String()] = name
		}
		doc.Assignments[character] = a
	}
	return doc
}

func (d StateDocument) state() (*store.State, error) {
	state := store.NewState()
	state.Enabled = d.Enabled
	state.QuickSlotEnabled = d.QuickSlotEnabled
	state.ClimatePriority = d.ClimatePriority

	modes := []struct {
		value string
		into  *int
	}{
		{d.PlayerMode, &state.PlayerMode},
		{d.NPCMode, &state.NPCMode},
	}
	for _, m := range modes {
		if m.value == "" {
			continue
		}
		p, err := reconcile.ParsePolicy(m.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrLoadFailure, err)
		}
		*m.into = int(p)
	}

	for _, o := range d.Outfits {
		state.Outfits = append(state.Outfits, store.OutfitRecord{
			Name:     o.Name,
			Items:    append([]string{}, o.Items...),
			Favorite: o.Favorite,
		})
	}
	for character, a := range d.Assignments {
		rec := store.AssignmentRecord{Current: a.Current, Situations: make(map[uint32]string, len(a.Situations))}
		for key, name := range a.Situations {
			category, err := situation.ParseCategory(key)
			if err != nil {
				return nil, fmt.Errorf("%w: character %s: %w", store.ErrLoadFailure, character, err)
			}
			rec.Situations[uint32(category)] = name
		}
		state.Assignments[character] = rec
	}
	return state, nil
}
