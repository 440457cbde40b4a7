package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"wardrobe/internal/cache"
	"wardrobe/internal/host"
	"wardrobe/internal/host/memhost"
	"wardrobe/internal/item"
	"wardrobe/internal/wardrobe"
)

const (
	player = host.CharacterID("0x14|Skyrim.esm")
	lydia  = host.CharacterID("0xa2c94|Skyrim.esm")

	hood    = item.ID("0x1|Skyrim.esm")
	cuirass = item.ID("0x2|Skyrim.esm")
	boots   = item.ID("0x3|Skyrim.esm")
	rags    = item.ID("0x4|Skyrim.esm")
)

type fixture struct {
	world   *memhost.World
	outfits *wardrobe.Store
	cache   *cache.Cache
	engine  *Engine
}

func newFixture(t *testing.T, logger *zap.Logger) *fixture {
	t.Helper()
	w := memhost.New(player)
	w.AddCharacter(&memhost.Character{ID: lydia, Name: "Lydia", Loaded: true})
	outfits := wardrobe.NewStore(logger)
	c := cache.New()
	outfits.Assignments().Add(player)
	outfits.Assignments().Add(lydia)
	return &fixture{
		world:   w,
		outfits: outfits,
		cache:   c,
		engine:  NewEngine(w, outfits.Assignments(), c, logger),
	}
}

func (f *fixture) wear(t *testing.T, c host.CharacterID, name string, items ...item.ID) {
	t.Helper()
	if err := f.outfits.Overwrite(name, items); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	f.outfits.Assignments().SetCurrent(c, name)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{input: "disabled", want: Disabled},
		{input: "Automatic", want: Automatic},
		{input: " immersive ", want: Immersive},
		{input: "2", want: Immersive},
		{input: "7", wantErr: true},
		{input: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPolicy) {
					t.Fatalf("expected ErrUnknownPolicy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestReconcileSkipsUnloaded(t *testing.T) {
	f := newFixture(t, nil)
	f.wear(t, lydia, "Guard", hood)
	_ = f.world.SetLoaded(lydia, false)

	res := f.engine.Reconcile(lydia)
	if !res.Skipped || len(f.world.Calls()) != 0 {
		t.Fatalf("expected no-op for unloaded character, got %+v", res)
	}
}

func TestReconcileAutomaticAddsAndStashes(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.Policies.NPC = Automatic
	_ = f.world.Give(lydia, rags, 1)
	_ = f.world.Equip(lydia, rags, true)
	f.world.ResetCalls()
	f.wear(t, lydia, "Guard", hood, cuirass)

	res := f.engine.Reconcile(lydia)

	if diff := cmp.Diff([]item.ID{rags}, res.Unequipped); diff != "" {
		t.Fatalf("unequipped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]item.ID{hood, cuirass}, res.Added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]item.ID{hood, cuirass}, f.world.Worn(lydia)); diff != "" {
		t.Fatalf("worn mismatch (-want +got):\n%s", diff)
	}
	if !f.cache.Stash(lydia).Equal(item.NewSet(hood, cuirass)) {
		t.Fatalf("expected stash to hold added items, got %v", f.cache.Stash(lydia).Sorted())
	}
	for _, call := range f.world.Calls() {
		if (call.Op == "equip" || call.Op == "unequip") && !call.Forced {
			t.Fatalf("expected NPC equips to be forced: %+v", call)
		}
	}
}

func TestReconcileAutomaticRemovesStaleStash(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.Policies.NPC = Automatic
	f.wear(t, lydia, "Guard", hood, cuirass)
	f.engine.Reconcile(lydia)

	f.wear(t, lydia, "Light", hood, boots)
	res := f.engine.Reconcile(lydia)

	if diff := cmp.Diff([]item.ID{cuirass}, res.Removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	if f.world.Count(lydia, cuirass) != 0 {
		t.Fatal("expected stashed cuirass to leave the inventory")
	}
	if f.cache.Stash(lydia).Has(cuirass) {
		t.Fatal("expected cuirass to leave the stash")
	}
	if !f.cache.Stash(lydia).Equal(item.NewSet(hood, boots)) {
		t.Fatalf("unexpected stash %v", f.cache.Stash(lydia).Sorted())
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	for _, policy := range []Policy{Disabled, Automatic, Immersive} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, nil)
			f.engine.Policies.NPC = policy
			_ = f.world.Give(lydia, hood, 1)
			_ = f.world.Give(lydia, rags, 1)
			_ = f.world.Equip(lydia, rags, true)
			f.wear(t, lydia, "Guard", hood, cuirass)

			f.engine.Reconcile(lydia)
			f.world.ResetCalls()
			res := f.engine.Reconcile(lydia)

			if res.Changed() {
				t.Fatalf("expected second pass to change nothing, got %+v", res)
			}
			if calls := f.world.Calls(); len(calls) != 0 {
				t.Fatalf("expected no host calls, got %+v", calls)
			}
		})
	}
}

func TestReconcileOwnedOnlyPolicies(t *testing.T) {
	for _, policy := range []Policy{Disabled, Immersive} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, nil)
			f.engine.Policies.NPC = policy
			_ = f.world.Give(lydia, hood, 1)
			f.wear(t, lydia, "Guard", hood, cuirass)

			res := f.engine.Reconcile(lydia)

			if diff := cmp.Diff([]item.ID{hood}, res.Equipped); diff != "" {
				t.Fatalf("equipped mismatch (-want +got):\n%s", diff)
			}
			for _, call := range f.world.Calls() {
				if call.Op == "add" || call.Op == "remove" {
					t.Fatalf("expected inventory to stay untouched, got %+v", call)
				}
			}
			if _, ok := f.cache.PeekStash(lydia); ok {
				t.Fatal("expected no stash")
			}
		})
	}
}

func TestReconcilePlayerNeverUsesDefault(t *testing.T) {
	f := newFixture(t, nil)
	f.world.AddCharacter(&memhost.Character{ID: player, Loaded: true, Default: []item.ID{rags}, HasDefault: true})
	_ = f.world.Give(player, rags, 1)

	res := f.engine.Reconcile(player)
	if !res.Skipped || len(f.world.Calls()) != 0 {
		t.Fatalf("expected player without outfit to be left alone, got %+v", res)
	}
}

func TestReconcilePlayerEquipsUnforced(t *testing.T) {
	f := newFixture(t, nil)
	_ = f.world.Give(player, hood, 1)
	f.wear(t, player, "Travel", hood)

	f.engine.Reconcile(player)
	calls := f.world.Calls()
	if len(calls) != 1 || calls[0].Op != "equip" || calls[0].Forced {
		t.Fatalf("expected one unforced equip, got %+v", calls)
	}
}

func TestReconcileNPCFallsBackToDefault(t *testing.T) {
	f := newFixture(t, nil)
	f.world.AddCharacter(&memhost.Character{ID: lydia, Loaded: true, Default: []item.ID{rags}, HasDefault: true})
	_ = f.world.Give(lydia, rags, 1)
	_ = f.world.Give(lydia, hood, 1)
	_ = f.world.Equip(lydia, hood, true)

	res := f.engine.Reconcile(lydia)

	if diff := cmp.Diff([]item.ID{rags}, f.world.Worn(lydia)); diff != "" {
		t.Fatalf("worn mismatch (-want +got):\n%s", diff)
	}
	if res.Skipped {
		t.Fatal("expected default outfit to be applied")
	}
}

func TestReconcileEmptyOutfitKeepsWornItems(t *testing.T) {
	f := newFixture(t, nil)
	_ = f.world.Give(lydia, hood, 1)
	_ = f.world.Equip(lydia, hood, true)
	f.wear(t, lydia, "Nothing")

	res := f.engine.Reconcile(lydia)
	if len(res.Unequipped) != 0 {
		t.Fatalf("expected empty outfit not to strip the character, got %+v", res)
	}
}

func TestReconcileContinuesAfterFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	f := newFixture(t, zap.New(core))
	_ = f.world.Give(lydia, hood, 1)
	_ = f.world.Give(lydia, boots, 1)
	f.world.Fail[hood] = errors.New("equip refused")
	f.wear(t, lydia, "Guard", hood, boots)

	res := f.engine.Reconcile(lydia)

	if res.Failures != 1 {
		t.Fatalf("expected 1 failure, got %d", res.Failures)
	}
	if diff := cmp.Diff([]item.ID{boots}, res.Equipped); diff != "" {
		t.Fatalf("equipped mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessage("equip failed").Len() != 1 {
		t.Fatalf("expected the failure to be logged, got %d entries", logs.Len())
	}
}

func TestAllowEquip(t *testing.T) {
	f := newFixture(t, nil)
	f.wear(t, lydia, "Guard", hood)

	if f.engine.AllowEquip(lydia, boots) {
		t.Fatal("expected foreign item to be blocked")
	}
	if !f.engine.AllowEquip(lydia, hood) {
		t.Fatal("expected outfit item to be allowed")
	}
	if !f.engine.AllowEquip(player, boots) {
		t.Fatal("expected the player never to be blocked")
	}

	f.cache.SetScene(lydia, true)
	if !f.engine.AllowEquip(lydia, boots) {
		t.Fatal("expected scenes to lift the block")
	}
	f.cache.SetScene(lydia, false)

	f.outfits.Assignments().SetCurrent(lydia, wardrobe.NoOutfit)
	if !f.engine.AllowEquip(lydia, boots) {
		t.Fatal("expected characters without an outfit to accept anything")
	}
}
