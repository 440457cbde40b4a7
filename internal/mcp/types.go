package mcp

type OutfitNameInput struct {
	Name string `json:"name" jsonschema:"outfit name"`
}

type ListOutfitsInput struct {
	FavoritesOnly bool `json:"favorites_only,omitempty" jsonschema:"only list favorite outfits"`
}

type RenameOutfitInput struct {
	Name    string `json:"name" jsonschema:"current outfit name"`
	NewName string `json:"new_name" jsonschema:"new outfit name"`
}

type OutfitItemsInput struct {
	Name   string   `json:"name" jsonschema:"outfit name"`
	Items  []string `json:"items" jsonschema:"item identifiers"`
	Create bool     `json:"create,omitempty" jsonschema:"create the outfit if it does not exist"`
	// ReplaceConflicting is only read by add_items.
	ReplaceConflicting bool `json:"replace_conflicting,omitempty" jsonschema:"remove outfit items that share a slot with the new items"`
}

type EquipItemInput struct {
	Character string `json:"character" jsonschema:"character identifier"`
	Item      string `json:"item" jsonschema:"item identifier"`
}

type SetFavoriteInput struct {
	Name     string `json:"name" jsonschema:"outfit name"`
	Favorite bool   `json:"favorite" jsonschema:"favorite flag"`
}

type AddWornItemsInput struct {
	Name      string `json:"name" jsonschema:"outfit name"`
	Character string `json:"character" jsonschema:"character whose worn items are copied"`
}

type CharacterInput struct {
	Character string `json:"character" jsonschema:"character identifier"`
}

type ListCharactersInput struct{}

type SelectOutfitInput struct {
	Character string `json:"character" jsonschema:"character identifier"`
	Outfit    string `json:"outfit" jsonschema:"outfit name, empty for none"`
}

type SituationOutfitInput struct {
	Character string `json:"character" jsonschema:"character identifier"`
	Situation string `json:"situation" jsonschema:"situation name or number"`
	Outfit    string `json:"outfit,omitempty" jsonschema:"outfit name, empty removes the mapping"`
}

type SetSceneInput struct {
	Character string `json:"character" jsonschema:"character identifier"`
	InScene   bool   `json:"in_scene" jsonschema:"whether the character is in a scene"`
}

type RefreshInput struct {
	Reason string `json:"reason,omitempty" jsonschema:"reason recorded in the logs"`
}

type GetSettingsInput struct{}

type UpdateSettingsInput struct {
	Enabled          *bool  `json:"enabled,omitempty" jsonschema:"enable or disable outfit management"`
	PlayerMode       string `json:"player_mode,omitempty" jsonschema:"disabled, automatic or immersive"`
	NPCMode          string `json:"npc_mode,omitempty" jsonschema:"disabled, automatic or immersive"`
	ClimatePriority  *bool  `json:"climate_priority,omitempty" jsonschema:"check weather before places"`
	QuickSlotEnabled *bool  `json:"quick_slot_enabled,omitempty" jsonschema:"quick slot menu flag"`
}

type ExportStateInput struct{}

type ImportStateInput struct {
	State StateDocument `json:"state" jsonschema:"state document as produced by export_state"`
}

type ResetMonitorInput struct{}

type StatusOutput struct {
	OK bool `json:"ok"`
}

type ItemOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OutfitOutput struct {
	Name     string       `json:"name"`
	Favorite bool         `json:"favorite"`
	Items    []ItemOutput `json:"items"`
}

type ListOutfitsOutput struct {
	Outfits []string `json:"outfits"`
}

type ConflictOutput struct {
	Removed []string `json:"removed"`
}

type AddItemsOutput struct {
	Added     []string `json:"added"`
	Conflicts []string `json:"conflicts"`
	Removed   []string `json:"removed"`
}

type ResetMonitorOutput struct {
	Restarted bool `json:"restarted"`
}

type CharacterOutput struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Current    string            `json:"current"`
	InScene    bool              `json:"in_scene"`
	Situations map[string]string `json:"situations"`
}

type ListCharactersOutput struct {
	Characters []CharacterOutput `json:"characters"`
}

type ChangedOutput struct {
	Changed bool `json:"changed"`
}

type ClassifyOutput struct {
	Situation string `json:"situation"`
	Outfit    string `json:"outfit"`
}

type ResultOutput struct {
	Character  string   `json:"character"`
	Policy     string   `json:"policy"`
	Skipped    bool     `json:"skipped,omitempty"`
	Equipped   []string `json:"equipped,omitempty"`
	Unequipped []string `json:"unequipped,omitempty"`
	Added      []string `json:"added,omitempty"`
	Removed    []string `json:"removed,omitempty"`
	Failures   int      `json:"failures,omitempty"`
}

type RefreshOutput struct {
	Pass    string         `json:"pass"`
	Results []ResultOutput `json:"results"`
}

type SettingsOutput struct {
	Enabled          bool   `json:"enabled"`
	PlayerMode       string `json:"player_mode"`
	NPCMode          string `json:"npc_mode"`
	ClimatePriority  bool   `json:"climate_priority"`
	QuickSlotEnabled bool   `json:"quick_slot_enabled"`
}

type StateOutput struct {
	State StateDocument `json:"state"`
}

// StateDocument is the bridge form of the persisted state. Modes and
// situations are spelled by name.
type StateDocument struct {
	Enabled          bool                          `json:"enabled"`
	PlayerMode       string                        `json:"player_mode"`
	NPCMode          string                        `json:"npc_mode"`
	QuickSlotEnabled bool                          `json:"quick_slot_enabled"`
	ClimatePriority  bool                          `json:"climate_priority"`
	Outfits          []OutfitDocument              `json:"outfits"`
	Assignments      map[string]AssignmentDocument `json:"assignments"`
}

type OutfitDocument struct {
	Name     string   `json:"name"`
	Items    []string `json:"items"`
	Favorite bool     `json:"favorite,omitempty"`
}

type AssignmentDocument struct {
	Current    string            `json:"current"`
	Situations map[string]string `json:"situations,omitempty"`
}
