package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/dispatch"
	"wardrobe/internal/host"
	"wardrobe/internal/host/memhost"
	"wardrobe/internal/item"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
	"wardrobe/internal/store"
	"wardrobe/internal/store/sqlite"
	"wardrobe/internal/wardrobe"
)

const (
	player = host.CharacterID("0x14|Skyrim.esm")
	lydia  = host.CharacterID("0xa2c94|Skyrim.esm")

	coat  = item.ID("0x10|Skyrim.esm")
	boots = item.ID("0x11|Skyrim.esm")
	rags  = item.ID("0x12|Skyrim.esm")
	robes = item.ID("0x13|Skyrim.esm")
)

const testWorld = `version: 1
player: "0x14|Skyrim.esm"
hour: 12
weather:
  id: clear
locations:
  - id: tundra
    name: Whiterun Hold
  - id: whiterun
    name: Whiterun
    keywords: [LocTypeCity]
  - id: temple
    name: Temple of Kynareth
    keywords: [LocTypeTemple]
    interior: true
    parent: whiterun
items:
  - id: "0x10|Skyrim.esm"
    name: Fur Coat
    slots: [32]
  - id: "0x11|Skyrim.esm"
    name: Fur Boots
    slots: [37]
  - id: "0x12|Skyrim.esm"
    name: Rags
    slots: [32]
  - id: "0x13|Skyrim.esm"
    name: Robes
    slots: [32]
characters:
  - id: "0x14|Skyrim.esm"
    name: Dragonborn
    location: whiterun
  - id: "0xa2c94|Skyrim.esm"
    name: Lydia
    location: tundra
    worn: ["0x12|Skyrim.esm"]
`

func newTestService(t *testing.T) (*Service, *memhost.World) {
	t.Helper()
	w, err := memhost.Parse([]byte(testWorld))
	require.NoError(t, err)
	svc := New(w, dispatch.NewRunner(0, nil), Options{}, nil)
	return svc, w
}

func TestNewSessionTracksPlayer(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, []host.CharacterID{player}, svc.Tracked())
	assert.Equal(t, DefaultSettings(), svc.Settings())
}

func TestWinterEndToEnd(t *testing.T) {
	svc, w := newTestService(t)
	require.True(t, svc.AddCharacter(lydia))
	require.NoError(t, svc.SetModes(reconcile.Disabled, reconcile.Automatic))
	svc.SetClimatePriority(true)

	require.NoError(t, svc.CreateOutfit("Winter"))
	require.NoError(t, svc.AddItems("Winter", coat, boots))
	require.NoError(t, svc.SetSituationOutfit(lydia, situation.World, "Winter"))
	w.SetWeather(host.Weather{ID: "snow", Snowy: true})

	category, ok := svc.Classify(lydia)
	require.True(t, ok)
	assert.Equal(t, situation.World, category)

	svc.UpdateAll("weather changed")

	assert.Equal(t, "Winter", svc.CurrentOutfit(lydia))
	if diff := cmp.Diff([]item.ID{coat, boots}, w.Worn(lydia)); diff != "" {
		t.Fatalf("worn mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveAndApply(t *testing.T) {
	tests := []struct {
		name       string
		situations map[situation.Category]string
		current    string
		want       string
	}{
		{
			name:       "specific mapping wins",
			situations: map[situation.Category]string{situation.Temple: "Robes", situation.World: "Travel"},
			want:       "Robes",
		},
		{
			name:       "falls back to world",
			situations: map[situation.Category]string{situation.World: "Travel"},
			want:       "Travel",
		},
		{
			name:    "nothing mapped keeps current",
			current: "Robes",
			want:    "Robes",
		},
		{
			name:       "vanished outfit clears selection",
			situations: map[situation.Category]string{situation.Temple: "Ghost"},
			current:    "Robes",
			want:       wardrobe.NoOutfit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, w := newTestService(t)
			require.NoError(t, w.MoveTo(player, "temple"))
			require.NoError(t, svc.CreateOutfit("Robes"))
			require.NoError(t, svc.CreateOutfit("Travel"))
			if tt.current != "" {
				require.NoError(t, svc.SelectOutfit(player, tt.current))
			}
			for category, name := range tt.situations {
				require.NoError(t, svc.SetSituationOutfit(player, category, name))
			}

			svc.ResolveAndApply(player)
			assert.Equal(t, tt.want, svc.CurrentOutfit(player))
		})
	}
}

func TestUpdateAllSkippedWhenDisabled(t *testing.T) {
	svc, w := newTestService(t)
	svc.AddCharacter(lydia)
	require.NoError(t, svc.OverwriteOutfit("Robes", []item.ID{robes}))
	require.NoError(t, w.Give(lydia, robes, 1))
	require.NoError(t, svc.SelectOutfit(lydia, "Robes"))
	svc.SetEnabled(false)

	report := svc.Refresh("manual")
	assert.Empty(t, report.Results)
	assert.Empty(t, w.Calls())
	assert.NotEmpty(t, report.ID)
}

func TestRefreshReconcilesEveryone(t *testing.T) {
	svc, w := newTestService(t)
	svc.AddCharacter(lydia)
	require.NoError(t, svc.OverwriteOutfit("Robes", []item.ID{robes}))
	require.NoError(t, w.Give(lydia, robes, 1))
	require.NoError(t, svc.SelectOutfit(lydia, "Robes"))

	report := svc.Refresh("manual")
	require.Len(t, report.Results, 2)
	assert.Equal(t, []item.ID{robes}, w.Worn(lydia))
}

func TestCharacterTracking(t *testing.T) {
	svc, _ := newTestService(t)

	assert.True(t, svc.AddCharacter(lydia))
	assert.False(t, svc.AddCharacter(lydia))

	_, err := svc.RemoveCharacter(player)
	assert.ErrorIs(t, err, ErrPlayer)

	removed, err := svc.RemoveCharacter(lydia)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.ErrorIs(t, svc.SelectOutfit(lydia, "Robes"), ErrUntracked)
	assert.False(t, svc.SetScene(lydia, true), "scenes are only accepted for tracked characters")
}

func TestSelectMissingOutfit(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.SelectOutfit(player, "Ghost")
	assert.ErrorIs(t, err, wardrobe.ErrNotFound)
	assert.Equal(t, wardrobe.NoOutfit, svc.CurrentOutfit(player))
}

func TestSceneOverridesSituation(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.CreateOutfit("Private"))
	require.NoError(t, svc.CreateOutfit("Court"))
	require.NoError(t, svc.SetSituationOutfit(player, situation.Scene, "Private"))
	require.NoError(t, svc.SetSituationOutfit(player, situation.City, "Court"))

	svc.ResolveAndApply(player)
	assert.Equal(t, "Court", svc.CurrentOutfit(player))

	require.True(t, svc.SetScene(player, true))
	svc.ResolveAndApply(player)
	assert.Equal(t, "Private", svc.CurrentOutfit(player))
}

func TestAllowEquipRespectsEnabled(t *testing.T) {
	svc, _ := newTestService(t)
	svc.AddCharacter(lydia)
	require.NoError(t, svc.OverwriteOutfit("Robes", []item.ID{robes}))
	require.NoError(t, svc.SelectOutfit(lydia, "Robes"))

	assert.False(t, svc.AllowEquip(lydia, coat))
	svc.SetEnabled(false)
	assert.True(t, svc.AllowEquip(lydia, coat))
}

func TestEquipItemAsksTheGate(t *testing.T) {
	svc, w := newTestService(t)
	svc.AddCharacter(lydia)
	require.NoError(t, w.AddItem(lydia, coat, 1))
	require.NoError(t, w.AddItem(lydia, robes, 1))
	require.NoError(t, svc.OverwriteOutfit("Robes", []item.ID{robes}))
	require.NoError(t, svc.SelectOutfit(lydia, "Robes"))

	require.ErrorIs(t, svc.EquipItem(lydia, coat), ErrEquipBlocked)
	assert.NotContains(t, w.Worn(lydia), coat)

	require.NoError(t, svc.EquipItem(lydia, robes))
	assert.Contains(t, w.Worn(lydia), robes)

	require.True(t, svc.SetScene(lydia, true))
	require.NoError(t, svc.EquipItem(lydia, coat))
	assert.Contains(t, w.Worn(lydia), coat)
}

func TestAddItemsCheckedReportsSlotClashes(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.OverwriteOutfit("Travel", []item.ID{rags}))

	report, err := svc.AddItemsChecked("Travel", []item.ID{coat, boots}, false, false)
	require.NoError(t, err)
	assert.Equal(t, []item.ID{coat}, report.Conflicts)
	assert.Empty(t, report.Added)
	items, err := svc.OutfitContents("Travel")
	require.NoError(t, err)
	assert.Equal(t, []item.ID{rags}, items, "nothing is added while an item clashes")

	report, err = svc.AddItemsChecked("Travel", []item.ID{coat, boots}, false, true)
	require.NoError(t, err)
	assert.Equal(t, []item.ID{rags}, report.Removed)
	assert.Equal(t, []item.ID{coat, boots}, report.Added)
	items, err = svc.OutfitContents("Travel")
	require.NoError(t, err)
	assert.Equal(t, []item.ID{coat, boots}, items)

	_, err = svc.AddItemsChecked("Missing", []item.ID{coat}, false, false)
	assert.ErrorIs(t, err, wardrobe.ErrNotFound)

	report, err = svc.AddItemsChecked("Fresh", []item.ID{coat}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []item.ID{coat}, report.Added)
}

func TestAddWornItemsAndConflicts(t *testing.T) {
	svc, w := newTestService(t)
	require.NoError(t, svc.AddWornItems("Copied", lydia))

	items, err := svc.OutfitContents("Copied")
	require.NoError(t, err)
	assert.Equal(t, []item.ID{rags}, items)

	conflict, err := svc.ConflictsWith("Copied", robes)
	require.NoError(t, err)
	assert.True(t, conflict)

	removed, err := svc.RemoveConflicting("Copied", robes)
	require.NoError(t, err)
	assert.Equal(t, []item.ID{rags}, removed)
	assert.Equal(t, "Fur Coat", w.ItemName(coat))
}

func seedState(t *testing.T, svc *Service) {
	t.Helper()
	svc.AddCharacter(lydia)
	require.NoError(t, svc.OverwriteOutfit("Winter", []item.ID{coat, boots}))
	require.NoError(t, svc.CreateOutfit("Court"))
	require.NoError(t, svc.SetFavorite("Court", true))
	require.NoError(t, svc.SelectOutfit(lydia, "Winter"))
	require.NoError(t, svc.SetSituationOutfit(lydia, situation.CitySnow, "Winter"))
	require.NoError(t, svc.SetModes(reconcile.Immersive, reconcile.Automatic))
	svc.SetClimatePriority(true)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	seedState(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf))

	other, _ := newTestService(t)
	require.NoError(t, other.Import(&buf))

	if diff := cmp.Diff(svc.Snapshot(), other.Snapshot()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, reconcile.Automatic, other.Settings().NPCMode)
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	svc, _ := newTestService(t)
	seedState(t, svc)
	before := svc.Snapshot()

	tests := []struct {
		name  string
		input string
	}{
		{name: "syntax", input: `{"outfits": [`},
		{name: "blank outfit name", input: `{"outfits": [{"name": "", "items": []}]}`},
		{name: "duplicate names", input: `{"outfits": [{"name": "a", "items": []}, {"name": "A", "items": []}]}`},
		{name: "bad mode", input: `{"npcMode": 9}`},
		{name: "unknown situation", input: `{"assignments": {"x": {"current": "", "situations": {"42": "a"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Import(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, store.ErrLoadFailure)
			if diff := cmp.Diff(before, svc.Snapshot()); diff != "" {
				t.Fatalf("import must not touch the state (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRestoreFailureLeavesFreshSession(t *testing.T) {
	svc, _ := newTestService(t)
	seedState(t, svc)

	err := svc.Restore(&store.State{Outfits: []store.OutfitRecord{{Name: ""}}})
	require.True(t, errors.Is(err, store.ErrLoadFailure))

	assert.Empty(t, svc.ListOutfits(false))
	assert.Equal(t, []host.CharacterID{player}, svc.Tracked())
	assert.Equal(t, DefaultSettings(), svc.Settings())
}

func TestRestoreRepairsDanglingCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	state := store.NewState()
	state.Assignments[string(lydia)] = store.AssignmentRecord{Current: "Gone"}

	require.NoError(t, svc.Restore(state))
	assert.Equal(t, wardrobe.NoOutfit, svc.CurrentOutfit(lydia))
	assert.True(t, svc.IsTracked(player), "the player is always tracked after a restore")
}

func TestSaveAndLoadThroughSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "wardrobe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })
	require.NoError(t, db.EnsureSchema(ctx))

	svc, w := newTestService(t)
	seedState(t, svc)
	require.NoError(t, w.MoveTo(lydia, "whiterun"))
	svc.UpdateAll("seed")
	require.True(t, svc.SetScene(lydia, true))
	require.NoError(t, svc.Save(ctx, db))

	other, _ := newTestService(t)
	require.NoError(t, other.Load(ctx, db))

	if diff := cmp.Diff(svc.Snapshot(), other.Snapshot()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(svc.CacheSnapshot(), other.CacheSnapshot()); diff != "" {
		t.Fatalf("cache mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, other.InScene(lydia))
}

type cacheFailingStore struct {
	store.Store
	state *store.State
}

func (f cacheFailingStore) LoadState(ctx context.Context) (*store.State, error) {
	return f.state, nil
}

func (f cacheFailingStore) LoadCache(ctx context.Context) (*store.CacheState, error) {
	return nil, errors.New("no such table: stashes")
}

func TestLoadContinuesWithoutCache(t *testing.T) {
	svc, _ := newTestService(t)
	seedState(t, svc)
	saved := svc.Snapshot()

	other, _ := newTestService(t)
	require.True(t, other.SetScene(player, true))
	require.NoError(t, other.Load(context.Background(), cacheFailingStore{state: saved}))

	if diff := cmp.Diff(saved, other.Snapshot()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Winter", other.CurrentOutfit(lydia))
	assert.False(t, other.InScene(player), "stale scene flags must not survive a load")
	assert.Empty(t, other.CacheSnapshot().Stashes)
}
