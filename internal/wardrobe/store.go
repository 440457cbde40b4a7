package wardrobe

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"wardrobe/internal/item"
)

// Store owns every outfit, keyed by case-insensitive name, together with the
// assignment table whose references it keeps consistent on rename and delete.
type Store struct {
	outfits     map[string]*Outfit
	assignments *Assignments
	logger      *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		outfits: make(map[string]*Outfit),
		logger:  logger,
	}
	s.assignments = newAssignments(s, logger)
	return s
}

func (s *Store) Assignments() *Assignments {
	return s.assignments
}

func (s *Store) Create(name string) error {
	_, err := s.GetOrCreate(name)
	return err
}

func (s *Store) GetOrCreate(name string) (*Outfit, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if existing, ok := s.outfits[key(name)]; ok {
		return existing, nil
	}
	created := newOutfit(name)
	s.outfits[key(name)] = created
	return created, nil
}

func (s *Store) Get(name string) (*Outfit, error) {
	outfit, ok := s.outfits[key(name)]
	if !ok || name == NoOutfit {
		return nil, fmt.Errorf("getting outfit %q: %w", name, ErrNotFound)
	}
	return outfit, nil
}

func (s *Store) Exists(name string) bool {
	_, ok := s.outfits[key(name)]
	return ok && name != NoOutfit
}

// Delete removes the outfit and every assignment that points at it. Deleting
// an absent outfit is a no-op.
func (s *Store) Delete(name string) {
	if name == NoOutfit {
		return
	}
	delete(s.outfits, key(name))
	s.assignments.scrub(name)
}

func (s *Store) Rename(oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	if s.Exists(newName) {
		return fmt.Errorf("renaming %q to %q: %w", oldName, newName, ErrNameConflict)
	}
	outfit, err := s.Get(oldName)
	if err != nil {
		return err
	}
	delete(s.outfits, key(oldName))
	outfit.Name = newName
	s.outfits[key(newName)] = outfit
	s.assignments.repoint(oldName, newName)
	return nil
}

func (s *Store) SetFavorite(name string, favorite bool) {
	if outfit, err := s.Get(name); err == nil {
		outfit.Favorite = favorite
	}
}

func (s *Store) AddItems(name string, items ...item.ID) error {
	outfit, err := s.Get(name)
	if err != nil {
		return err
	}
	for _, it := range items {
		outfit.Items.Add(it)
	}
	return nil
}

func (s *Store) RemoveItems(name string, items ...item.ID) error {
	outfit, err := s.Get(name)
	if err != nil {
		return err
	}
	for _, it := range items {
		outfit.Items.Remove(it)
	}
	return nil
}

// Modify applies a batch of additions and removals. With createIfMissing the
// outfit is created first when absent.
func (s *Store) Modify(name string, add, remove []item.ID, createIfMissing bool) error {
	if !s.Exists(name) {
		if !createIfMissing {
			return fmt.Errorf("modifying outfit %q: %w", name, ErrNotFound)
		}
		if err := s.Create(name); err != nil {
			return err
		}
	}
	if err := s.AddItems(name, add...); err != nil {
		return err
	}
	return s.RemoveItems(name, remove...)
}

// Overwrite replaces the outfit's contents, creating it if needed.
func (s *Store) Overwrite(name string, items []item.ID) error {
	outfit, err := s.GetOrCreate(name)
	if err != nil {
		return err
	}
	outfit.Items = item.NewSet(items...)
	return nil
}

// Contents lists the outfit's items in a stable order.
func (s *Store) Contents(name string) ([]item.ID, error) {
	outfit, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return outfit.Items.Sorted(), nil
}

// ConflictsWith reports whether candidate shares a slot with anything already
// in the named outfit.
func (s *Store) ConflictsWith(name string, candidate item.ID, slots SlotLookup) (bool, error) {
	outfit, err := s.Get(name)
	if err != nil {
		return false, err
	}
	return outfit.ConflictsWith(candidate, slots), nil
}

// RemoveConflicting drops every item sharing a slot with candidate and
// returns what was removed.
func (s *Store) RemoveConflicting(name string, candidate item.ID, slots SlotLookup) ([]item.ID, error) {
	outfit, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	mask, ok := slots.SlotMask(candidate)
	if !candidate.Valid() || !ok {
		return nil, nil
	}
	var removed []item.ID
	for _, id := range outfit.Items.Sorted() {
		if other, ok := slots.SlotMask(id); ok && mask.Overlaps(other) {
			outfit.Items.Remove(id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// ListNames returns outfit names sorted case-insensitively.
func (s *Store) ListNames(favoritesOnly bool) []string {
	names := make([]string, 0, len(s.outfits))
	for _, outfit := range s.outfits {
		if favoritesOnly && !outfit.Favorite {
			continue
		}
		names = append(names, outfit.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Outfits returns copies of every outfit in name order.
func (s *Store) Outfits() []*Outfit {
	out := make([]*Outfit, 0, len(s.outfits))
	for _, name := range s.ListNames(false) {
		out = append(out, s.outfits[key(name)].Clone())
	}
	return out
}

// Put inserts or replaces an outfit as-is; used when restoring saved state.
func (s *Store) Put(outfit *Outfit) error {
	if err := ValidateName(outfit.Name); err != nil {
		return err
	}
	if outfit.Items == nil {
		outfit.Items = item.NewSet()
	}
	s.outfits[key(outfit.Name)] = outfit
	return nil
}

// Reset drops all outfits and assignments.
func (s *Store) Reset() {
	s.outfits = make(map[string]*Outfit)
	s.assignments.reset()
}
