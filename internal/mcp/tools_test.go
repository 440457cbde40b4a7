package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/dispatch"
	"wardrobe/internal/host"
	"wardrobe/internal/host/memhost"
	"wardrobe/internal/item"
	"wardrobe/internal/service"
	"wardrobe/internal/store"
	"wardrobe/internal/wardrobe"
)

const (
	player = host.CharacterID("player")
	guard  = host.CharacterID("guard")
	helmet = item.ID("helmet")
	hood   = item.ID("hood")
)

func newTestServer(t *testing.T) (*Server, *service.Service, *memhost.World) {
	t.Helper()
	world := memhost.New(player)
	world.AddCharacter(&memhost.Character{ID: guard, Name: "Whiterun Guard", Loaded: true})
	world.AddItemInfo(helmet, memhost.ItemInfo{Name: "Iron Helmet", Slots: item.SlotHead})
	world.AddItemInfo(hood, memhost.ItemInfo{Name: "Hood", Slots: item.SlotHead | item.SlotHair})

	runner := dispatch.NewRunner(dispatch.DefaultQueueSize, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = runner.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-runner.Done()
	})

	svc := service.New(world, runner, service.Options{}, nil)
	return NewServer(svc, runner, "test"), svc, world
}

func TestOutfitTools(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, status, err := server.handleCreateOutfit(ctx, nil, OutfitNameInput{Name: "Guard"})
	require.NoError(t, err)
	assert.True(t, status.OK)

	_, _, err = server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"helmet"}})
	require.NoError(t, err)

	_, outfit, err := server.handleGetOutfit(ctx, nil, OutfitNameInput{Name: "guard"})
	require.NoError(t, err)
	assert.Equal(t, []ItemOutput{{ID: "helmet", Name: "Iron Helmet"}}, outfit.Items)

	_, _, err = server.handleCreateOutfit(ctx, nil, OutfitNameInput{Name: ""})
	assert.ErrorIs(t, err, wardrobe.ErrInvalidName)

	_, _, err = server.handleCreateOutfit(ctx, nil, OutfitNameInput{Name: "Travel"})
	require.NoError(t, err)
	_, _, err = server.handleRenameOutfit(ctx, nil, RenameOutfitInput{Name: "Travel", NewName: "GUARD"})
	assert.ErrorIs(t, err, wardrobe.ErrNameConflict)

	_, _, err = server.handleSetFavorite(ctx, nil, SetFavoriteInput{Name: "Travel", Favorite: true})
	require.NoError(t, err)
	_, list, err := server.handleListOutfits(ctx, nil, ListOutfitsInput{FavoritesOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel"}, list.Outfits)

	_, conflicts, err := server.handleRemoveConflicting(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"hood"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"helmet"}, conflicts.Removed)

	_, _, err = server.handleGetOutfit(ctx, nil, OutfitNameInput{Name: "Missing"})
	assert.ErrorIs(t, err, wardrobe.ErrNotFound)
}

func TestAddItemsReportsSlotConflicts(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, added, err := server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"helmet"}, Create: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"helmet"}, added.Added)

	_, clash, err := server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"hood"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"hood"}, clash.Conflicts)
	assert.Empty(t, clash.Added)

	_, outfit, err := server.handleGetOutfit(ctx, nil, OutfitNameInput{Name: "Guard"})
	require.NoError(t, err)
	assert.Equal(t, []ItemOutput{{ID: "helmet", Name: "Iron Helmet"}}, outfit.Items)

	_, replaced, err := server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"hood"}, ReplaceConflicting: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"helmet"}, replaced.Removed)
	assert.Equal(t, []string{"hood"}, replaced.Added)

	_, _, err = server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Missing", Items: []string{"hood"}})
	assert.ErrorIs(t, err, wardrobe.ErrNotFound)
}

func TestEquipItemTool(t *testing.T) {
	server, _, world := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, world.AddItem(guard, helmet, 1))
	require.NoError(t, world.AddItem(guard, hood, 1))

	_, _, err := server.handleAddCharacter(ctx, nil, CharacterInput{Character: "guard"})
	require.NoError(t, err)
	_, _, err = server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"helmet"}, Create: true})
	require.NoError(t, err)
	_, _, err = server.handleSelectOutfit(ctx, nil, SelectOutfitInput{Character: "guard", Outfit: "Guard"})
	require.NoError(t, err)

	_, _, err = server.handleEquipItem(ctx, nil, EquipItemInput{Character: "guard", Item: "hood"})
	assert.ErrorIs(t, err, service.ErrEquipBlocked)
	assert.NotContains(t, world.Worn(guard), hood)

	_, status, err := server.handleEquipItem(ctx, nil, EquipItemInput{Character: "guard", Item: "helmet"})
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Contains(t, world.Worn(guard), helmet)

	_, _, err = server.handleEquipItem(ctx, nil, EquipItemInput{Character: "guard"})
	assert.Error(t, err)
}

func TestResetMonitorRestartsRunningMonitor(t *testing.T) {
	server, svc, _ := newTestServer(t)
	ctx := context.Background()
	mon := svc.Monitor()
	mon.Start()
	t.Cleanup(mon.Stop)

	_, reset, err := server.handleResetMonitor(ctx, nil, ResetMonitorInput{})
	require.NoError(t, err)
	assert.True(t, reset.Restarted)

	// the restart is queued behind the tool call
	require.NoError(t, server.do(ctx, func(*service.Service) error { return nil }))
	assert.True(t, mon.Running())
}

func TestCharacterTools(t *testing.T) {
	server, svc, _ := newTestServer(t)
	ctx := context.Background()

	_, added, err := server.handleAddCharacter(ctx, nil, CharacterInput{Character: "guard"})
	require.NoError(t, err)
	assert.True(t, added.Changed)

	_, _, err = server.handleCreateOutfit(ctx, nil, OutfitNameInput{Name: "Guard"})
	require.NoError(t, err)
	_, _, err = server.handleSetSituationOutfit(ctx, nil, SituationOutfitInput{Character: "guard", Situation: "combat", Outfit: "Guard"})
	require.NoError(t, err)
	_, _, err = server.handleSetSituationOutfit(ctx, nil, SituationOutfitInput{Character: "guard", Situation: "nowhere", Outfit: "Guard"})
	assert.Error(t, err)

	_, list, err := server.handleListCharacters(ctx, nil, ListCharactersInput{})
	require.NoError(t, err)
	require.Len(t, list.Characters, 2)
	assert.Equal(t, "Whiterun Guard", list.Characters[0].Name)
	assert.Equal(t, map[string]string{"combat": "Guard"}, list.Characters[0].Situations)

	_, _, err = server.handleSetSituationOutfit(ctx, nil, SituationOutfitInput{Character: "guard", Situation: "1500"})
	require.NoError(t, err)
	_, ok := svc.SituationOutfit(guard, 1500)
	assert.False(t, ok)

	_, _, err = server.handleRemoveCharacter(ctx, nil, CharacterInput{Character: "player"})
	assert.ErrorIs(t, err, service.ErrPlayer)

	_, _, err = server.handleSelectOutfit(ctx, nil, SelectOutfitInput{Character: "nobody", Outfit: "Guard"})
	assert.ErrorIs(t, err, service.ErrUntracked)

	_, _, err = server.handleSetScene(ctx, nil, SetSceneInput{Character: "nobody", InScene: true})
	assert.ErrorIs(t, err, service.ErrUntracked)
}

func TestRefreshTool(t *testing.T) {
	server, _, world := newTestServer(t)
	ctx := context.Background()

	_, _, err := server.handleAddCharacter(ctx, nil, CharacterInput{Character: "guard"})
	require.NoError(t, err)
	_, _, err = server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"helmet"}, Create: true})
	require.NoError(t, err)
	_, _, err = server.handleSelectOutfit(ctx, nil, SelectOutfitInput{Character: "guard", Outfit: "Guard"})
	require.NoError(t, err)
	_, settings, err := server.handleUpdateSettings(ctx, nil, UpdateSettingsInput{NPCMode: "automatic"})
	require.NoError(t, err)
	assert.Equal(t, "automatic", settings.NPCMode)

	_, report, err := server.handleRefresh(ctx, nil, RefreshInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Pass)
	assert.Equal(t, []item.ID{helmet}, world.Worn(guard))

	var guardResult ResultOutput
	for _, res := range report.Results {
		if res.Character == "guard" {
			guardResult = res
		}
	}
	assert.Equal(t, []string{"helmet"}, guardResult.Added)
	assert.Equal(t, []string{"helmet"}, guardResult.Equipped)
}

func TestUpdateSettingsRejectsUnknownMode(t *testing.T) {
	server, svc, _ := newTestServer(t)

	off := false
	_, _, err := server.handleUpdateSettings(context.Background(), nil, UpdateSettingsInput{PlayerMode: "chaotic", Enabled: &off})
	require.Error(t, err)
	assert.True(t, svc.Enabled(), "a rejected update must not apply any switch")
}

func TestExportImportStateTools(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, _, err := server.handleAddItems(ctx, nil, OutfitItemsInput{Name: "Guard", Items: []string{"helmet"}, Create: true})
	require.NoError(t, err)
	_, _, err = server.handleSetSituationOutfit(ctx, nil, SituationOutfitInput{Character: "player", Situation: "city_night", Outfit: "Guard"})
	require.NoError(t, err)

	_, exported, err := server.handleExportState(ctx, nil, ExportStateInput{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"city_night": "Guard"}, exported.State.Assignments["player"].Situations)

	other, _, _ := newTestServer(t)
	_, _, err = other.handleImportState(ctx, nil, ImportStateInput{State: exported.State})
	require.NoError(t, err)
	_, roundTrip, err := other.handleExportState(ctx, nil, ExportStateInput{})
	require.NoError(t, err)
	assert.Equal(t, exported.State, roundTrip.State)

	bad := exported.State
	bad.Assignments = map[string]AssignmentDocument{"player": {Situations: map[string]string{"everywhere": "Guard"}}}
	_, _, err = other.handleImportState(ctx, nil, ImportStateInput{State: bad})
	assert.ErrorIs(t, err, store.ErrLoadFailure)

	_, reset, err := other.handleResetMonitor(ctx, nil, ResetMonitorInput{})
	require.NoError(t, err)
	assert.False(t, reset.Restarted, "a stopped monitor is only reset")
}
