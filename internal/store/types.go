package store

import "sort"

// State is the durable part of the outfit system: settings, outfits and
// assignments. It is also the import/export document.
type State struct {
	Enabled          bool                        `json:"enabled" yaml:"enabled"`
	PlayerMode       int                         `json:"playerMode" yaml:"player_mode"`
	NPCMode          int                         `json:"npcMode" yaml:"npc_mode"`
	QuickSlotEnabled bool                        `json:"quickSlotEnabled" yaml:"quick_slot_enabled"`
	ClimatePriority  bool                        `json:"climatePriority" yaml:"climate_priority"`
	Outfits          []OutfitRecord              `json:"outfits" yaml:"outfits"`
	Assignments      map[string]AssignmentRecord `json:"assignments" yaml:"assignments"`
}

type OutfitRecord struct {
	Name     string   `json:"name" yaml:"name"`
	Items    []string `json:"items" yaml:"items"`
	Favorite bool     `json:"favorite,omitempty" yaml:"favorite,omitempty"`
}

// AssignmentRecord maps situation category values to outfit names.
type AssignmentRecord struct {
	Current    string            `json:"current" yaml:"current"`
	Situations map[uint32]string `json:"situations,omitempty" yaml:"situations,omitempty"`
}

// CacheState is the runtime cache: items added to characters on the outfit
// system's behalf, and who is currently in a scene.
type CacheState struct {
	Stashes map[string][]string `json:"stashes" yaml:"stashes"`
	Scenes  map[string]bool     `json:"scenes" yaml:"scenes"`
}

// NewState returns the state of a fresh session.
func NewState() *State {
	return &State{
		Enabled:     true,
		Assignments: make(map[string]AssignmentRecord),
	}
}

func NewCacheState() *CacheState {
	return &CacheState{
		Stashes: make(map[string][]string),
		Scenes:  make(map[string]bool),
	}
}

// Characters lists the assignment keys in sorted order.
func (s *State) Characters() []string {
	out := make([]string, 0, len(s.Assignments))
	for c := range s.Assignments {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
