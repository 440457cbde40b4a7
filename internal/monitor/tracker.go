package monitor

import (
	"wardrobe/internal/host"
	"wardrobe/internal/situation"
)

// Signal names the kind of change that triggered a pass.
type Signal string

const (
	SignalInitial  Signal = "initial"
	SignalLoaded   Signal = "loaded"
	SignalLocation Signal = "location"
	SignalWeather  Signal = "weather"
	SignalDayPart  Signal = "day_part"
	SignalCombat   Signal = "combat"
	SignalInWater  Signal = "in_water"
	SignalSwimming Signal = "swimming"
	SignalSleeping Signal = "sleeping"
	SignalMounted  Signal = "mounted"
	SignalScene    Signal = "scene"
)

// Change describes the delta a check acted on.
type Change struct {
	Character host.CharacterID
	Name      string
	Signal    Signal
	Detail    string
}

func (c Change) String() string {
	name := c.Name
	if name == "" {
		name = c.Character.String()
	}
	if c.Detail == "" {
		return string(c.Signal) + " for " + name
	}
	return string(c.Signal) + " changed to " + c.Detail + " for " + name
}

// tracker is the last observed snapshot of one character.
type tracker struct {
	initialized bool
	loaded      bool
	location    string
	weather     string
	dayPart     situation.DayPart
	hasDayPart  bool
	combat      bool
	inWater     bool
	swimming    bool
	sleeping    bool
	mounted     bool
	scene       bool
}

func onOff(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
