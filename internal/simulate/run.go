package simulate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"wardrobe/internal/dispatch"
	"wardrobe/internal/host"
	"wardrobe/internal/host/memhost"
	"wardrobe/internal/item"
	"wardrobe/internal/monitor"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/service"
	"wardrobe/internal/situation"
)

// maxChecksPerCharacter bounds how long a step may keep producing deltas.
const maxChecksPerCharacter = 16

// StepReport is the outcome of one step.
type StepReport struct {
	Name     string
	Changes  []monitor.Change
	States   []CharacterState
	Failures []string
}

type CharacterState struct {
	Character host.CharacterID
	Situation string
	Outfit    string
	Worn      []item.ID
}

type Report struct {
	Steps []StepReport
}

// Failed counts unmet expectations across all steps.
func (r *Report) Failed() int {
	n := 0
	for _, step := range r.Steps {
		n += len(step.Failures)
	}
	return n
}

// Run plays sc. The monitor loop is started but never fires on its own;
// checks are driven from here so runs are deterministic.
func Run(sc *Scenario, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	world, err := sc.world()
	if err != nil {
		return nil, err
	}

	opts := service.Options{Monitor: monitor.Options{Tick: time.Hour, Interval: 24 * time.Hour}}
	svc := service.New(world, dispatch.NewRunner(dispatch.DefaultQueueSize, logger), opts, logger)
	if err := setup(svc, sc); err != nil {
		return nil, err
	}

	svc.UpdateAll("scenario start")
	mon := svc.Monitor()
	mon.ResetState()
	mon.Start()
	defer mon.Stop()
	settle(mon, len(svc.Tracked()))

	report := &Report{}
	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		if err := apply(svc, world, step); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		sr := StepReport{Name: name, Changes: settle(mon, len(svc.Tracked()))}
		for _, c := range svc.Tracked() {
			sr.States = append(sr.States, stateOf(svc, world, c))
		}
		sr.Failures = check(svc, world, step.Expect)
		report.Steps = append(report.Steps, sr)
		logger.Debug("step finished", zap.String("step", name), zap.Int("changes", len(sr.Changes)))
	}
	return report, nil
}

func setup(svc *service.Service, sc *Scenario) error {
	settings := svc.Settings()
	player, npc := settings.PlayerMode, settings.NPCMode
	var err error
	if sc.Settings.PlayerMode != "" {
		if player, err = reconcile.ParsePolicy(sc.Settings.PlayerMode); err != nil {
			return err
		}
	}
	if sc.Settings.NPCMode != "" {
		if npc, err = reconcile.ParsePolicy(sc.Settings.NPCMode); err != nil {
			return err
		}
	}
	if err := svc.SetModes(player, npc); err != nil {
		return err
	}
	svc.SetClimatePriority(sc.Settings.ClimatePriority)
	svc.SetEnabled(!sc.Settings.Disabled)

	for _, o := range sc.Outfits {
		items := make([]item.ID, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, item.ID(it))
		}
		if err := svc.OverwriteOutfit(o.Name, items); err != nil {
			return err
		}
		if err := svc.SetFavorite(o.Name, o.Favorite); err != nil {
			return err
		}
	}

	for _, ch := range sc.Characters {
		c := host.CharacterID(ch.ID)
		svc.AddCharacter(c)
		if ch.Outfit != "" {
			if err := svc.SelectOutfit(c, ch.Outfit); err != nil {
				return err
			}
		}
		for key, name := range ch.Situations {
			category, err := situation.ParseCategory(key)
			if err != nil {
				return err
			}
			if err := svc.SetSituationOutfit(c, category, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func apply(svc *service.Service, world *memhost.World, step Step) error {
	if step.Hour != nil {
		world.SetHour(*step.Hour)
	}
	if step.Weather != nil {
		world.SetWeather(host.Weather{ID: step.Weather.ID, Snowy: step.Weather.Snowy, Rainy: step.Weather.Rainy})
	}
	for _, mv := range step.Move {
		if err := world.MoveTo(host.CharacterID(mv.Character), mv.Location); err != nil {
			return err
		}
	}
	for _, act := range step.Activity {
		if err := world.SetActivity(host.CharacterID(act.Character), act.ActivitySpec.Activity()); err != nil {
			return err
		}
	}
	for _, l := range step.Loaded {
		if err := world.SetLoaded(host.CharacterID(l.Character), l.Loaded); err != nil {
			return err
		}
	}
	for _, sc := range step.Scene {
		if !svc.SetScene(host.CharacterID(sc.Character), sc.InScene) {
			return fmt.Errorf("%s: %w", sc.Character, service.ErrUntracked)
		}
	}
	return nil
}

// settle runs checks until the monitor stops finding deltas.
func settle(mon *monitor.Monitor, tracked int) []monitor.Change {
	var changes []monitor.Change
	for i := 0; i < maxChecksPerCharacter*(tracked+1); i++ {
		change, found := mon.CheckForChanges()
		if !found {
			break
		}
		changes = append(changes, change)
	}
	return changes
}

func stateOf(svc *service.Service, world *memhost.World, c host.CharacterID) CharacterState {
	st := CharacterState{Character: c, Outfit: svc.CurrentOutfit(c), Worn: world.Worn(c)}
	if category, ok := svc.Classify(c); ok {
		st.Situation = category.String()
	}
	return st
}

func check(svc *service.Service, world *memhost.World, expectations []Expectation) []string {
	var failures []string
	for _, exp := range expectations {
		c := host.CharacterID(exp.Character)
		st := stateOf(svc, world, c)
		if exp.Situation != nil {
			want, _ := situation.ParseCategory(*exp.Situation)
			if st.Situation != want.String() {
				failures = append(failures, fmt.Sprintf("%s: expected situation %s, got %s", c, want, st.Situation))
			}
		}
		if exp.Outfit != nil && !strings.EqualFold(*exp.Outfit, st.Outfit) {
			failures = append(failures, fmt.Sprintf("%s: expected outfit %q, got %q", c, *exp.Outfit, st.Outfit))
		}
		if exp.Worn != nil {
			want := item.NewSet()
			for _, it := range *exp.Worn {
				want.Add(item.ID(it))
			}
			if diff := cmp.Diff(want.Sorted(), st.Worn); diff != "" {
				failures = append(failures, fmt.Sprintf("%s: worn items mismatch (-want +got):\n%s", c, diff))
			}
		}
	}
	return failures
}

// Print writes a human readable report.
func (r *Report) Print(w io.Writer) {
	for _, step := range r.Steps {
		fmt.Fprintf(w, "== %s\n", step.Name)
		for _, change := range step.Changes {
			fmt.Fprintf(w, "  change: %s\n", change)
		}
		for _, st := range step.States {
			outfit := st.Outfit
			if outfit == "" {
				outfit = "(none)"
			}
			fmt.Fprintf(w, "  %s [%s] %s: %s\n", st.Character, st.Situation, outfit, joinItems(st.Worn))
		}
		for _, f := range step.Failures {
			fmt.Fprintf(w, "  FAIL %s\n", f)
		}
	}
}

func joinItems(items []item.ID) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}
