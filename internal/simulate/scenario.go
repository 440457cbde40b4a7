// Package simulate replays a scripted sequence of world changes against an
// in-memory host and reports which outfit every tracked character ends up in.
package simulate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wardrobe/internal/host/memhost"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
)

// Scenario is the yaml layout of a simulation script.
type Scenario struct {
	// World is a world file path, relative to the scenario file.
	World      string             `yaml:"world"`
	Settings   Settings           `yaml:"settings"`
	Outfits    []OutfitSpec       `yaml:"outfits"`
	Characters []CharacterSpec    `yaml:"characters"`
	Steps      []Step             `yaml:"steps"`
	Inline     *memhost.WorldFile `yaml:"inline_world"`
	dir        string
}

type Settings struct {
	PlayerMode      string `yaml:"player_mode"`
	NPCMode         string `yaml:"npc_mode"`
	ClimatePriority bool   `yaml:"climate_priority"`
	Disabled        bool   `yaml:"disabled"`
}

type OutfitSpec struct {
	Name     string   `yaml:"name"`
	Items    []string `yaml:"items"`
	Favorite bool     `yaml:"favorite"`
}

type CharacterSpec struct {
	ID         string            `yaml:"id"`
	Outfit     string            `yaml:"outfit"`
	Situations map[string]string `yaml:"situations"`
}

// Step mutates the world and then lets the monitor react.
type Step struct {
	Name     string               `yaml:"name"`
	Hour     *float64             `yaml:"hour"`
	Weather  *memhost.WeatherSpec `yaml:"weather"`
	Move     []Move               `yaml:"move"`
	Activity []ActivityChange     `yaml:"activity"`
	Loaded   []LoadedChange       `yaml:"loaded"`
	Scene    []SceneChange        `yaml:"scene"`
	Expect   []Expectation        `yaml:"expect"`
}

type Move struct {
	Character string `yaml:"character"`
	Location  string `yaml:"location"`
}

type ActivityChange struct {
	Character            string `yaml:"character"`
	memhost.ActivitySpec `yaml:",inline"`
}

type LoadedChange struct {
	Character string `yaml:"character"`
	Loaded    bool   `yaml:"loaded"`
}

type SceneChange struct {
	Character string `yaml:"character"`
	InScene   bool   `yaml:"in_scene"`
}

// Expectation is checked after a step settles. Nil fields are not checked.
type Expectation struct {
	Character string    `yaml:"character"`
	Situation *string   `yaml:"situation"`
	Outfit    *string   `yaml:"outfit"`
	Worn      *[]string `yaml:"worn"`
}

// Load reads a scenario from path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(sc *Scenario) error {
	if (sc.World == "") == (sc.Inline == nil) {
		return fmt.Errorf("exactly one of world and inline_world is required")
	}
	for _, mode := range []string{sc.Settings.PlayerMode, sc.Settings.NPCMode} {
		if mode == "" {
			continue
		}
		if _, err := reconcile.ParsePolicy(mode); err != nil {
			return err
		}
	}
	for i, ch := range sc.Characters {
		if strings.TrimSpace(ch.ID) == "" {
			return fmt.Errorf("character %d id is required", i)
		}
		for key := range ch.Situations {
			if _, err := situation.ParseCategory(key); err != nil {
				return fmt.Errorf("character %s: %w", ch.ID, err)
			}
		}
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range sc.Steps {
		for _, exp := range step.Expect {
			if exp.Character == "" {
				return fmt.Errorf("step %d: expectation without character", i+1)
			}
			if exp.Situation != nil {
				if _, err := situation.ParseCategory(*exp.Situation); err != nil {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
			}
		}
	}
	return nil
}

func (sc *Scenario) world() (*memhost.World, error) {
	if sc.Inline != nil {
		data, err := yaml.Marshal(sc.Inline)
		if err != nil {
			return nil, fmt.Errorf("encoding inline world: %w", err)
		}
		return memhost.Parse(data)
	}
	path := sc.World
	if !filepath.IsAbs(path) && sc.dir != "" {
		path = filepath.Join(sc.dir, path)
	}
	return memhost.Load(path)
}
