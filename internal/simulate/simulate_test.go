package simulate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const worldYAML = `version: 1
player: player
hour: 12
weather:
  id: clear
locations:
  - {id: tundra, name: The Pale}
  - {id: whiterun, name: Whiterun, keywords: [LocTypeCity]}
items:
  - {id: coat, name: Fur Coat, slots: [32]}
  - {id: boots, name: Fur Boots, slots: [37]}
  - {id: armor, name: Steel Armor, slots: [32]}
  - {id: dress, name: Dress, slots: [32]}
characters:
  - {id: player, name: Dragonborn, location: whiterun}
  - {id: lydia, name: Lydia, location: whiterun, worn: [dress]}
`

const scenarioYAML = `world: world.yaml
settings:
  npc_mode: automatic
  climate_priority: true
outfits:
  - {name: Town, items: [dress]}
  - {name: Winter, items: [coat, boots]}
  - {name: Battle, items: [armor]}
characters:
  - id: lydia
    situations: {city: Town, world: Winter, combat: Battle}
steps:
  - name: leave the city in a blizzard
    weather: {id: blizzard, snowy: true}
    move: [{character: lydia, location: tundra}]
    expect:
      - {character: lydia, situation: world, outfit: Winter, worn: [coat, boots]}
  - name: ambush
    activity: [{character: lydia, combat: true}]
    expect:
      - {character: lydia, situation: combat, outfit: Battle, worn: [armor]}
  - name: back home
    activity: [{character: lydia, combat: false}]
    move: [{character: lydia, location: whiterun}]
    weather: {id: clear}
    expect:
      - {character: lydia, situation: city, outfit: Town, worn: [dress]}
`

func writeScenario(t *testing.T, scenario string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.yaml"), []byte(worldYAML), 0o600))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o600))
	return path
}

func TestRunScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	sc, err := Load(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	report, err := Run(sc, nil)
	require.NoError(t, err)
	require.Len(t, report.Steps, 3)
	for _, step := range report.Steps {
		assert.Empty(t, step.Failures, step.Name)
		assert.NotEmpty(t, step.Changes, step.Name)
	}

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "== ambush")
	assert.Contains(t, out.String(), "lydia [combat] Battle: armor")
}

func TestRunScenarioReportsUnmetExpectations(t *testing.T) {
	defer goleak.VerifyNone(t)

	scenario := `world: world.yaml
outfits:
  - {name: Town, items: [dress]}
characters:
  - {id: lydia, outfit: Town}
steps:
  - name: idle
    expect:
      - {character: lydia, outfit: Winter}
`
	sc, err := Load(writeScenario(t, scenario))
	require.NoError(t, err)

	report, err := Run(sc, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
	}{
		{name: "no world", scenario: "steps: [{name: a}]"},
		{name: "no steps", scenario: "world: world.yaml"},
		{name: "bad mode", scenario: "world: w.yaml\nsettings: {npc_mode: chaotic}\nsteps: [{name: a}]"},
		{name: "bad situation", scenario: "world: w.yaml\ncharacters: [{id: a, situations: {beach: X}}]\nsteps: [{name: a}]"},
		{name: "expectation without character", scenario: "world: w.yaml\nsteps: [{expect: [{outfit: X}]}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.scenario))
			assert.Error(t, err)
		})
	}
}
