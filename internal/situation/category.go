package situation

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is a discrete classification of a character's circumstances.
// Values are persisted and must not be renumbered.
type Category uint32

const (
	World         Category = 0
	WorldNight    Category = 100
	WorldSnow     Category = 200
	WorldRain     Category = 300
	WorldInterior Category = 400

	Town         Category = 500
	TownNight    Category = 600
	TownSnow     Category = 700
	TownRain     Category = 800
	TownInterior Category = 900

	City         Category = 1000
	CityNight    Category = 1100
	CitySnow     Category = 1200
	CityRain     Category = 1300
	CityInterior Category = 1400

	Combat   Category = 1500
	InWater  Category = 1600
	Sleeping Category = 1700
	Swimming Category = 1800
	Mounting Category = 1900

	// Scene is the exception override for characters inside a scripted
	// interaction owned by another system.
	Scene Category = 2000

	Dungeon    Category = 5500
	PlayerHome Category = 5600
	Inn        Category = 5700
	Store      Category = 5800
	GuildHall  Category = 5900
	Castle     Category = 6000
	Temple     Category = 6100
	Farm       Category = 6200
	Jail       Category = 6300
	Military   Category = 6400
)

var categoryNames = map[Category]string{
	World:         "world",
	WorldNight:    "world_night",
	WorldSnow:     "world_snow",
	WorldRain:     "world_rain",
	WorldInterior: "world_interior",
	Town:          "town",
	TownNight:     "town_night",
	TownSnow:      "town_snow",
	TownRain:      "town_rain",
	TownInterior:  "town_interior",
	City:          "city",
	CityNight:     "city_night",
	CitySnow:      "city_snow",
	CityRain:      "city_rain",
	CityInterior:  "city_interior",
	Combat:        "combat",
	InWater:       "in_water",
	Sleeping:      "sleeping",
	Swimming:      "swimming",
	Mounting:      "mounting",
	Scene:         "scene",
	Dungeon:       "dungeon",
	PlayerHome:    "player_home",
	Inn:           "inn",
	Store:         "store",
	GuildHall:     "guild_hall",
	Castle:        "castle",
	Temple:        "temple",
	Farm:          "farm",
	Jail:          "jail",
	Military:      "military",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "category(" + strconv.FormatUint(uint64(c), 10) + ")"
}

func (c Category) Known() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory accepts either a category name ("town_night") or its
// persisted numeric value ("600").
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == key {
			return c, nil
		}
	}
	if n, err := strconv.ParseUint(key, 10, 32); err == nil {
		if c := Category(n); c.Known() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown situation %q", s)
}

// Generic lists the location/weather/time categories.
func Generic() []Category {
	return []Category{
		World, WorldNight, WorldSnow, WorldRain, WorldInterior,
		Town, TownNight, TownSnow, TownRain, TownInterior,
		City, CityNight, CitySnow, CityRain, CityInterior,
	}
}

// Specific lists the place-type categories.
func Specific() []Category {
	return []Category{Dungeon, PlayerHome, Inn, Store, GuildHall, Castle, Temple, Farm, Jail, Military}
}

// Actions lists the activity categories, including the exception override.
func Actions() []Category {
	return []Category{Combat, InWater, Sleeping, Swimming, Mounting, Scene}
}

// All lists every known category.
func All() []Category {
	out := append([]Category{}, Generic()...)
	out = append(out, Specific()...)
	return append(out, Actions()...)
}
