package mcp

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/service"
	"wardrobe/internal/situation"
	"wardrobe/internal/store"
)

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_outfits",
		Description: "List outfit names",
	}, s.handleListOutfits)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_outfit",
		Description: "Return an outfit and its items",
	}, s.handleGetOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_outfit",
		Description: "Create an empty outfit",
	}, s.handleCreateOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_outfit",
		Description: "Delete an outfit and clear every reference to it",
	}, s.handleDeleteOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "rename_outfit",
		Description: "Rename an outfit and repoint every reference to it",
	}, s.handleRenameOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_items",
		Description: "Add items to an outfit. Items sharing a slot with the outfit are reported and nothing is added unless replace_conflicting is set",
	}, s.handleAddItems)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "remove_items",
		Description: "Remove items from an outfit",
	}, s.handleRemoveItems)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "remove_conflicting",
		Description: "Remove the items of an outfit that share a body slot with the given item",
	}, s.handleRemoveConflicting)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_favorite",
		Description: "Mark or unmark an outfit as favorite",
	}, s.handleSetFavorite)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_worn_items",
		Description: "Copy what a character is wearing into an outfit",
	}, s.handleAddWornItems)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_characters",
		Description: "List tracked characters with their assignments",
	}, s.handleListCharacters)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_character",
		Description: "Start managing a character's outfits",
	}, s.handleAddCharacter)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "remove_character",
		Description: "Stop managing a character's outfits",
	}, s.handleRemoveCharacter)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "select_outfit",
		Description: "Set a character's current outfit",
	}, s.handleSelectOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_situation_outfit",
		Description: "Map a situation to an outfit for a character",
	}, s.handleSetSituationOutfit)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_scene",
		Description: "Flag whether a character is inside a scene",
	}, s.handleSetScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "equip_item",
		Description: "Equip an owned item on a character. NPCs wearing an outfit only accept its items",
	}, s.handleEquipItem)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "classify",
		Description: "Classify a character's situation without changing anything",
	}, s.handleClassify)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "refresh",
		Description: "Resolve and reconcile every tracked character",
	}, s.handleRefresh)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_settings",
		Description: "Return the system switches and inventory modes",
	}, s.handleGetSettings)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_settings",
		Description: "Change system switches and inventory modes",
	}, s.handleUpdateSettings)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "export_state",
		Description: "Return the whole outfit state",
	}, s.handleExportState)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "import_state",
		Description: "Replace the whole outfit state",
	}, s.handleImportState)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "reset_monitor",
		Description: "Restart the change monitor and rebuild its snapshot of tracked characters",
	}, s.handleResetMonitor)
}

func (s *Server) handleListOutfits(ctx context.Context, req *sdk.CallToolRequest, input ListOutfitsInput) (*sdk.CallToolResult, ListOutfitsOutput, error) {
	var names []string
	err := s.do(ctx, func(svc *service.Service) error {
		names = svc.ListOutfits(input.FavoritesOnly)
		return nil
	})
	if err != nil {
		return nil, ListOutfitsOutput{}, err
	}
	return nil, ListOutfitsOutput{Outfits: append([]string{}, names...)}, nil
}

func (s *Server) handleGetOutfit(ctx context.Context, req *sdk.CallToolRequest, input OutfitNameInput) (*sdk.CallToolResult, OutfitOutput, error) {
	if input.Name == "" {
		return nil, OutfitOutput{}, fmt.Errorf("name is required")
	}
	var output OutfitOutput
	err := s.do(ctx, func(svc *service.Service) error {
		items, err := svc.OutfitContents(input.Name)
		if err != nil {
			return err
		}
		output = OutfitOutput{Name: input.Name, Favorite: svc.IsFavorite(input.Name), Items: make([]ItemOutput, 0, len(items))}
		for _, it := range items {
			output.Items = append(output.Items, ItemOutput{ID: it.String(), Name: svc.ItemName(it)})
		}
		return nil
	})
	if err != nil {
		return nil, OutfitOutput{}, err
	}
	return nil, output, nil
}

func (s *Server) handleCreateOutfit(ctx context.Context, req *sdk.CallToolRequest, input OutfitNameInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		return svc.CreateOutfit(input.Name)
	})
}

func (s *Server) handleDeleteOutfit(ctx context.Context, req *sdk.CallToolRequest, input OutfitNameInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		svc.DeleteOutfit(input.Name)
		return nil
	})
}

func (s *Server) handleRenameOutfit(ctx context.Context, req *sdk.CallToolRequest, input RenameOutfitInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		return svc.RenameOutfit(input.Name, input.NewName)
	})
}

func (s *Server) handleAddItems(ctx context.Context, req *sdk.CallToolRequest, input OutfitItemsInput) (*sdk.CallToolResult, AddItemsOutput, error) {
	items := itemIDs(input.Items)
	var report service.AddReport
	err := s.do(ctx, func(svc *service.Service) error {
		var err error
		report, err = svc.AddItemsChecked(input.Name, items, input.Create, input.ReplaceConflicting)
		return err
	})
	if err != nil {
		return nil, AddItemsOutput{}, err
	}
	return nil, AddItemsOutput{
		Added:     itemStrings(report.Added),
		Conflicts: itemStrings(report.Conflicts),
		Removed:   itemStrings(report.Removed),
	}, nil
}

func (s *Server) handleRemoveItems(ctx context.Context, req *sdk.CallToolRequest, input OutfitItemsInput) (*sdk.CallToolResult, StatusOutput, error) {
	items := itemIDs(input.Items)
	return s.status(ctx, func(svc *service.Service) error {
		return svc.RemoveItems(input.Name, items...)
	})
}

func (s *Server) handleRemoveConflicting(ctx context.Context, req *sdk.CallToolRequest, input OutfitItemsInput) (*sdk.CallToolResult, ConflictOutput, error) {
	if len(input.Items) != 1 {
		return nil, ConflictOutput{}, fmt.Errorf("exactly one item is required")
	}
	var removed []item.ID
	err := s.do(ctx, func(svc *service.Service) error {
		var err error
		removed, err = svc.RemoveConflicting(input.Name, item.ID(input.Items[0]))
		return err
	})
	if err != nil {
		return nil, ConflictOutput{}, err
	}
	return nil, ConflictOutput{Removed: itemStrings(removed)}, nil
}

func (s *Server) handleSetFavorite(ctx context.Context, req *sdk.CallToolRequest, input SetFavoriteInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		return svc.SetFavorite(input.Name, input.Favorite)
	})
}

func (s *Server) handleAddWornItems(ctx context.Context, req *sdk.CallToolRequest, input AddWornItemsInput) (*sdk.CallToolResult, StatusOutput, error) {
	if input.Character == "" {
		return nil, StatusOutput{}, fmt.Errorf("character is required")
	}
	return s.status(ctx, func(svc *service.Service) error {
		return svc.AddWornItems(input.Name, host.CharacterID(input.Character))
	})
}

func (s *Server) handleListCharacters(ctx context.Context, req *sdk.CallToolRequest, input ListCharactersInput) (*sdk.CallToolResult, ListCharactersOutput, error) {
	var output ListCharactersOutput
	err := s.do(ctx, func(svc *service.Service) error {
		tracked := svc.Tracked()
		output.Characters = make([]CharacterOutput, 0, len(tracked))
		for _, c := range tracked {
			output.Characters = append(output.Characters, characterOutput(svc, c))
		}
		return nil
	})
	if err != nil {
		return nil, ListCharactersOutput{}, err
	}
	return nil, output, nil
}

func (s *Server) handleAddCharacter(ctx context.Context, req *sdk.CallToolRequest, input CharacterInput) (*sdk.CallToolResult, ChangedOutput, error) {
	if input.Character == "" {
		return nil, ChangedOutput{}, fmt.Errorf("character is required")
	}
	var changed bool
	err := s.do(ctx, func(svc *service.Service) error {
		changed = svc.AddCharacter(host.CharacterID(input.Character))
		return nil
	})
	if err != nil {
		return nil, ChangedOutput{}, err
	}
	return nil, ChangedOutput{Changed: changed}, nil
}

func (s *Server) handleRemoveCharacter(ctx context.Context, req *sdk.CallToolRequest, input CharacterInput) (*sdk.CallToolResult, ChangedOutput, error) {
	if input.Character == "" {
		return nil, ChangedOutput{}, fmt.Errorf("character is required")
	}
	var changed bool
	err := s.do(ctx, func(svc *service.Service) error {
		var err error
		changed, err = svc.RemoveCharacter(host.CharacterID(input.Character))
		return err
	})
	if err != nil {
		return nil, ChangedOutput{}, err
	}
	return nil, ChangedOutput{Changed: changed}, nil
}

func (s *Server) handleSelectOutfit(ctx context.Context, req *sdk.CallToolRequest, input SelectOutfitInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		return svc.SelectOutfit(host.CharacterID(input.Character), input.Outfit)
	})
}

func (s *Server) handleSetSituationOutfit(ctx context.Context, req *sdk.CallToolRequest, input SituationOutfitInput) (*sdk.CallToolResult, StatusOutput, error) {
	category, err := situation.ParseCategory(input.Situation)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	c := host.CharacterID(input.Character)
	return s.status(ctx, func(svc *service.Service) error {
		if input.Outfit == "" {
			return svc.UnsetSituationOutfit(c, category)
		}
		return svc.SetSituationOutfit(c, category, input.Outfit)
	})
}

func (s *Server) handleSetScene(ctx context.Context, req *sdk.CallToolRequest, input SetSceneInput) (*sdk.CallToolResult, StatusOutput, error) {
	return s.status(ctx, func(svc *service.Service) error {
		if !svc.SetScene(host.CharacterID(input.Character), input.InScene) {
			return fmt.Errorf("%s: %w", input.Character, service.ErrUntracked)
		}
		return nil
	})
}

func (s *Server) handleEquipItem(ctx context.Context, req *sdk.CallToolRequest, input EquipItemInput) (*sdk.CallToolResult, StatusOutput, error) {
	if input.Character == "" || input.Item == "" {
		return nil, StatusOutput{}, fmt.Errorf("character and item are required")
	}
	return s.status(ctx, func(svc *service.Service) error {
		return svc.EquipItem(host.CharacterID(input.Character), item.ID(input.Item))
	})
}

func (s *Server) handleClassify(ctx context.Context, req *sdk.CallToolRequest, input CharacterInput) (*sdk.CallToolResult, ClassifyOutput, error) {
	c := host.CharacterID(input.Character)
	var output ClassifyOutput
	err := s.do(ctx, func(svc *service.Service) error {
		category, ok := svc.Classify(c)
		if !ok {
			return fmt.Errorf("%s is not tracked or not loaded", c)
		}
		output.Situation = category.String()
		output.Outfit, _ = svc.SituationOutfit(c, category)
		return nil
	})
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	return nil, output, nil
}

func (s *Server) handleRefresh(ctx context.Context, req *sdk.CallToolRequest, input RefreshInput) (*sdk.CallToolResult, RefreshOutput, error) {
	reason := input.Reason
	if reason == "" {
		reason = "bridge"
	}
	var report service.PassReport
	err := s.do(ctx, func(svc *service.Service) error {
		report = svc.Refresh(reason)
		return nil
	})
	if err != nil {
		return nil, RefreshOutput{}, err
	}
	output := RefreshOutput{Pass: report.ID, Results: make([]ResultOutput, 0, len(report.Results))}
	for _, res := range report.Results {
		output.Results = append(output.Results, resultOutput(res))
	}
	return nil, output, nil
}

func (s *Server) handleGetSettings(ctx context.Context, req *sdk.CallToolRequest, input GetSettingsInput) (*sdk.CallToolResult, SettingsOutput, error) {
	var settings service.Settings
	err := s.do(ctx, func(svc *service.Service) error {
		settings = svc.Settings()
		return nil
	})
	if err != nil {
		return nil, SettingsOutput{}, err
	}
	return nil, settingsOutput(settings), nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, req *sdk.CallToolRequest, input UpdateSettingsInput) (*sdk.CallToolResult, SettingsOutput, error) {
	var settings service.Settings
	err := s.do(ctx, func(svc *service.Service) error {
		current := svc.Settings()
		player, npc := current.PlayerMode, current.NPCMode
		var err error
		if input.PlayerMode != "" {
			if player, err = reconcile.ParsePolicy(input.PlayerMode); err != nil {
				return err
			}
		}
		if input.NPCMode != "" {
			if npc, err = reconcile.ParsePolicy(input.NPCMode); err != nil {
				return err
			}
		}
		if err := svc.SetModes(player, npc); err != nil {
			return err
		}
		if input.Enabled != nil {
			svc.SetEnabled(*input.Enabled)
		}
		if input.ClimatePriority != nil {
			svc.SetClimatePriority(*input.ClimatePriority)
		}
		if input.QuickSlotEnabled != nil {
			svc.SetQuickSlotEnabled(*input.QuickSlotEnabled)
		}
		settings = svc.Settings()
		return nil
	})
	if err != nil {
		return nil, SettingsOutput{}, err
	}
	return nil, settingsOutput(settings), nil
}

func (s *Server) handleExportState(ctx context.Context, req *sdk.CallToolRequest, input ExportStateInput) (*sdk.CallToolResult, StateOutput, error) {
	var state *store.State
	err := s.do(ctx, func(svc *service.Service) error {
		state = svc.Snapshot()
		return nil
	})
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, StateOutput{State: stateDocument(state)}, nil
}

func (s *Server) handleImportState(ctx context.Context, req *sdk.CallToolRequest, input ImportStateInput) (*sdk.CallToolResult, StatusOutput, error) {
	state, err := input.State.state()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return s.status(ctx, func(svc *service.Service) error {
		return svc.ImportState(state)
	})
}

func (s *Server) handleResetMonitor(ctx context.Context, req *sdk.CallToolRequest, input ResetMonitorInput) (*sdk.CallToolResult, ResetMonitorOutput, error) {
	var restarted bool
	err := s.do(ctx, func(svc *service.Service) error {
		restarted = svc.RestartMonitor()
		return nil
	})
	if err != nil {
		return nil, ResetMonitorOutput{}, err
	}
	return nil, ResetMonitorOutput{Restarted: restarted}, nil
}

func (s *Server) status(ctx context.Context, task func(svc *service.Service) error) (*sdk.CallToolResult, StatusOutput, error) {
	if err := s.do(ctx, task); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{OK: true}, nil
}

func characterOutput(svc *service.Service, c host.CharacterID) CharacterOutput {
	out := CharacterOutput{
		ID:         c.String(),
		Name:       svc.CharacterName(c),
		Current:    svc.CurrentOutfit(c),
		InScene:    svc.InScene(c),
		Situations: map[string]string{},
	}
	if a, ok := svc.Assignment(c); ok {
		for category, name := range a.Situations {
			out.Situations[category.String()] = name
		}
	}
	return out
}

func resultOutput(res reconcile.Result) ResultOutput {
	return ResultOutput{
		Character:  res.Character.String(),
		Policy:     res.Policy.String(),
		Skipped:    res.Skipped,
		Equipped:   itemStrings(res.Equipped),
		Unequipped: itemStrings(res.Unequipped),
		Added:      itemStrings(res.Added),
		Removed:    itemStrings(res.Removed),
		Failures:   res.Failures,
	}
}

func settingsOutput(settings service.Settings) SettingsOutput {
	return SettingsOutput{
		Enabled:          settings.Enabled,
		PlayerMode:       settings.PlayerMode.String(),
		NPCMode:          settings.NPCMode.String(),
		ClimatePriority:  settings.ClimatePriority,
		QuickSlotEnabled: settings.QuickSlotEnabled,
	}
}

func itemIDs(values []string) []item.ID {
	out := make([]item.ID, 0, len(values))
	for _, v := range values {
		out = append(out, item.ID(v))
	}
	return out
}

func itemStrings(items []item.ID) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.String())
	}
	sort.Strings(out)
	return out
}
