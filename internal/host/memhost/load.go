package memhost

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wardrobe/internal/host"
	"wardrobe/internal/item"
)

// WorldFile is the yaml layout of a world description.
type WorldFile struct {
	Version    int             `yaml:"version"`
	Player     string          `yaml:"player"`
	Hour       float64         `yaml:"hour"`
	Weather    WeatherSpec     `yaml:"weather"`
	Locations  []LocationSpec  `yaml:"locations"`
	Items      []ItemSpec      `yaml:"items"`
	Characters []CharacterSpec `yaml:"characters"`
}

type WeatherSpec struct {
	ID    string `yaml:"id"`
	Snowy bool   `yaml:"snowy"`
	Rainy bool   `yaml:"rainy"`
}

type LocationSpec struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Interior bool     `yaml:"interior"`
	Parent   string   `yaml:"parent"`
}

type ItemSpec struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Slots []int  `yaml:"slots"`
}

type ActivitySpec struct {
	Combat   bool `yaml:"combat"`
	InWater  bool `yaml:"in_water"`
	Swimming bool `yaml:"swimming"`
	Sleeping bool `yaml:"sleeping"`
	Mounted  bool `yaml:"mounted"`
}

func (a ActivitySpec) Activity() host.Activity {
	return host.Activity{
		InCombat: a.Combat,
		InWater:  a.InWater,
		Swimming: a.Swimming,
		Sleeping: a.Sleeping,
		Mounted:  a.Mounted,
	}
}

type CharacterSpec struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Unloaded bool         `yaml:"unloaded"`
	Location string       `yaml:"location"`
	Activity ActivitySpec `yaml:"activity"`
	Worn     []string     `yaml:"worn"`
	Owned    []string     `yaml:"owned"`
	Default  []string     `yaml:"default"`
}

// Load reads a world description from path.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	return Parse(data)
}

// Parse builds a world from yaml.
func Parse(data []byte) (*World, error) {
	var file WorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	if err := validateWorld(&file); err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	return file.Build(), nil
}

func validateWorld(f *WorldFile) error {
	if f.Version != 1 {
		return fmt.Errorf("unsupported version: %d", f.Version)
	}
	if strings.TrimSpace(f.Player) == "" {
		return fmt.Errorf("player is required")
	}
	if f.Hour < 0 || f.Hour >= 24 {
		return fmt.Errorf("hour out of range: %v", f.Hour)
	}

	locations := make(map[string]struct{})
	for i, loc := range f.Locations {
		if strings.TrimSpace(loc.ID) == "" {
			return fmt.Errorf("location %d id is required", i)
		}
		if _, exists := locations[loc.ID]; exists {
			return fmt.Errorf("duplicate location id: %s", loc.ID)
		}
		locations[loc.ID] = struct{}{}
	}
	for _, loc := range f.Locations {
		if loc.Parent == "" {
			continue
		}
		if _, ok := locations[loc.Parent]; !ok {
			return fmt.Errorf("location %s references unknown parent: %s", loc.ID, loc.Parent)
		}
	}

	for i, it := range f.Items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("item %d id is required", i)
		}
		for _, slot := range it.Slots {
			if slot < item.FirstSlot || slot > item.LastSlot {
				return fmt.Errorf("item %s slot out of range: %d", it.ID, slot)
			}
		}
	}

	characters := make(map[string]struct{})
	for i, ch := range f.Characters {
		if strings.TrimSpace(ch.ID) == "" {
			return fmt.Errorf("character %d id is required", i)
		}
		if _, exists := characters[ch.ID]; exists {
			return fmt.Errorf("duplicate character id: %s", ch.ID)
		}
		characters[ch.ID] = struct{}{}
		if ch.Location == "" {
			continue
		}
		if _, ok := locations[ch.Location]; !ok {
			return fmt.Errorf("character %s references unknown location: %s", ch.ID, ch.Location)
		}
	}

	return nil
}

// Build materializes a validated world file.
func (f *WorldFile) Build() *World {
	w := New(host.CharacterID(f.Player))
	w.hour = f.Hour
	w.weather = host.Weather{ID: f.Weather.ID, Snowy: f.Weather.Snowy, Rainy: f.Weather.Rainy}

	built := make(map[string]*host.Location, len(f.Locations))
	for _, spec := range f.Locations {
		built[spec.ID] = &host.Location{
			ID:       spec.ID,
			Name:     spec.Name,
			Keywords: spec.Keywords,
			Interior: spec.Interior,
		}
	}
	for _, spec := range f.Locations {
		if spec.Parent != "" {
			built[spec.ID].Parent = built[spec.Parent]
		}
		w.AddLocation(built[spec.ID])
	}

	for _, spec := range f.Items {
		w.AddItemInfo(item.ID(spec.ID), ItemInfo{Name: spec.Name, Slots: item.MaskForSlots(spec.Slots...)})
	}

	for _, spec := range f.Characters {
		ch := &Character{
			ID:         host.CharacterID(spec.ID),
			Name:       spec.Name,
			Loaded:     !spec.Unloaded,
			Location:   spec.Location,
			Activity:   spec.Activity.Activity(),
			Inventory:  make(map[item.ID]int),
			Worn:       item.NewSet(),
			HasDefault: len(spec.Default) > 0,
		}
		for _, id := range spec.Owned {
			ch.Inventory[item.ID(id)]++
		}
		for _, id := range spec.Worn {
			if ch.Inventory[item.ID(id)] == 0 {
				ch.Inventory[item.ID(id)] = 1
			}
			ch.Worn.Add(item.ID(id))
		}
		for _, id := range spec.Default {
			ch.Default = append(ch.Default, item.ID(id))
		}
		w.AddCharacter(ch)
	}
	return w
}
