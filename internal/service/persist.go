package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
	"wardrobe/internal/store"
	"wardrobe/internal/wardrobe"
)

// Snapshot captures settings, outfits and assignments.
func (s *Service) Snapshot() *store.State {
	state := &store.State{
		Enabled:          s.settings.Enabled,
		PlayerMode:       int(s.settings.PlayerMode),
		NPCMode:          int(s.settings.NPCMode),
		QuickSlotEnabled: s.settings.QuickSlotEnabled,
		ClimatePriority:  s.settings.ClimatePriority,
		Assignments:      make(map[string]store.AssignmentRecord),
	}
	for _, outfit := range s.outfits.Outfits() {
		rec := store.OutfitRecord{Name: outfit.Name, Items: []string{}, Favorite: outfit.Favorite}
		for _, it := range outfit.Items.Sorted() {
			rec.Items = append(rec.Items, it.String())
		}
		state.Outfits = append(state.Outfits, rec)
	}
	for _, c := range s.assignments.List() {
		a, _ := s.assignments.Get(c)
		rec := store.AssignmentRecord{Current: a.Current, Situations: make(map[uint32]string, len(a.Situations))}
		for category, name := range a.Situations {
			rec.Situations[uint32(category)] = name
		}
		state.Assignments[c.String()] = rec
	}
	return state
}

// CacheSnapshot captures stashes and scene flags.
func (s *Service) CacheSnapshot() *store.CacheState {
	state := store.NewCacheState()
	for c, items := range s.cache.Stashes() {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.String())
		}
		state.Stashes[c.String()] = ids
	}
	for _, c := range s.cache.Scenes() {
		state.Scenes[c.String()] = true
	}
	return state
}

// ValidateState checks a state document without applying it.
func ValidateState(state *store.State) error {
	for _, mode := range []int{state.PlayerMode, state.NPCMode} {
		if !reconcile.Policy(mode).Valid() {
			return fmt.Errorf("inventory mode %d: %w", mode, reconcile.ErrUnknownPolicy)
		}
	}
	seen := make(map[string]struct{}, len(state.Outfits))
	for _, outfit := range state.Outfits {
		if err := wardrobe.ValidateName(outfit.Name); err != nil {
			return err
		}
		key := strings.ToLower(outfit.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate outfit %q: %w", outfit.Name, wardrobe.ErrNameConflict)
		}
		seen[key] = struct{}{}
	}
	for character, rec := range state.Assignments {
		if character == "" {
			return fmt.Errorf("assignment without a character")
		}
		for category := range rec.Situations {
			if !situation.Category(category).Known() {
				return fmt.Errorf("character %s: unknown situation %d", character, category)
			}
		}
	}
	return nil
}

// Restore replaces the whole state. An invalid document leaves a fresh
// session behind and reports store.ErrLoadFailure.
func (s *Service) Restore(state *store.State) error {
	if err := ValidateState(state); err != nil {
		s.logger.Error("restoring state failed, starting a fresh session", zap.Error(err))
		s.NewSession()
		return fmt.Errorf("%w: %w", store.ErrLoadFailure, err)
	}

	s.outfits.Reset()
	s.cache.Reset()
	for _, rec := range state.Outfits {
		outfit := &wardrobe.Outfit{Name: rec.Name, Items: item.NewSet(), Favorite: rec.Favorite}
		for _, id := range rec.Items {
			outfit.Items.Add(item.ID(id))
		}
		// validated above
		_ = s.outfits.Put(outfit)
	}
	for _, character := range state.Characters() {
		rec := state.Assignments[character]
		a := wardrobe.Assignment{Current: rec.Current, Situations: make(map[situation.Category]string, len(rec.Situations))}
		for category, name := range rec.Situations {
			a.Situations[situation.Category(category)] = name
		}
		s.assignments.Restore(host.CharacterID(character), a)
		if a.Current != wardrobe.NoOutfit && !s.outfits.Exists(a.Current) {
			s.assignments.SetCurrent(host.CharacterID(character), a.Current)
		}
	}
	s.applySettings(Settings{
		Enabled:          state.Enabled,
		PlayerMode:       reconcile.Policy(state.PlayerMode),
		NPCMode:          reconcile.Policy(state.NPCMode),
		QuickSlotEnabled: state.QuickSlotEnabled,
		ClimatePriority:  state.ClimatePriority,
	})
	s.assignments.Add(s.host.Player())
	s.monitor.ResetState()
	return nil
}

// RestoreCache installs saved stashes and scene flags. Entries for
// untracked characters are dropped.
func (s *Service) RestoreCache(state *store.CacheState) {
	s.cache.Reset()
	characters := make([]string, 0, len(state.Stashes))
	for c := range state.Stashes {
		characters = append(characters, c)
	}
	sort.Strings(characters)
	for _, c := range characters {
		id := host.CharacterID(c)
		if !s.assignments.Tracked(id) {
			continue
		}
		items := make([]item.ID, 0, len(state.Stashes[c]))
		for _, it := range state.Stashes[c] {
			items = append(items, item.ID(it))
		}
		s.cache.RestoreStash(id, items)
	}
	for c, inScene := range state.Scenes {
		if inScene {
			s.SetScene(host.CharacterID(c), true)
		}
	}
}

// Load reads persisted state from st. A state that fails to load leaves a
// fresh session. Stashes are optional: when they fail to load the state is
// kept and the session continues with empty stashes.
func (s *Service) Load(ctx context.Context, st store.Store) error {
	state, err := st.LoadState(ctx)
	if err != nil {
		s.logger.Error("loading state failed, starting a fresh session", zap.Error(err))
		s.NewSession()
		return err
	}
	if err := s.Restore(state); err != nil {
		return err
	}
	cache, err := st.LoadCache(ctx)
	if err != nil {
		s.logger.Warn("loading cache failed, continuing without stashes", zap.Error(err))
		cache = store.NewCacheState()
	}
	s.RestoreCache(cache)
	s.logger.Info("state loaded",
		zap.Int("outfits", len(state.Outfits)),
		zap.Int("characters", len(s.assignments.List())))
	return nil
}

func (s *Service) Save(ctx context.Context, st store.Store) error {
	if err := st.SaveState(ctx, s.Snapshot()); err != nil {
		return err
	}
	return st.SaveCache(ctx, s.CacheSnapshot())
}

// Export writes the state as JSON.
func (s *Service) Export(w io.Writer) error {
	return store.EncodeJSON(w, s.Snapshot())
}

// Import replaces the state with a JSON document. A document that does not
// decode or validate is rejected and the current state is kept.
func (s *Service) Import(r io.Reader) error {
	state, err := store.DecodeJSON(r)
	if err != nil {
		return err
	}
	return s.ImportState(state)
}

// ImportState is Import for an already decoded document.
func (s *Service) ImportState(state *store.State) error {
	if err := ValidateState(state); err != nil {
		return fmt.Errorf("importing state: %w: %w", store.ErrLoadFailure, err)
	}
	return s.Restore(state)
}
