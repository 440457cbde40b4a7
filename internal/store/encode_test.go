package store

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	return &State{
		Enabled:         true,
		PlayerMode:      2,
		NPCMode:         1,
		ClimatePriority: true,
		Outfits: []OutfitRecord{
			{Name: "Winter", Items: []string{"0x1|Skyrim.esm", "0x2|Skyrim.esm"}, Favorite: true},
			{Name: "Summer", Items: []string{}},
		},
		Assignments: map[string]AssignmentRecord{
			"0x14|Skyrim.esm": {Current: "Winter", Situations: map[uint32]string{0: "Summer", 1200: "Winter"}},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, sampleState()))
	assert.Contains(t, buf.String(), `"playerMode": 2`)

	got, err := DecodeJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)
}

func TestYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, sampleState()))
	assert.Contains(t, buf.String(), "climate_priority: true")

	got, err := DecodeYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)
}

func TestDecodeJSONFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "syntax", input: `{"enabled": `},
		{name: "unknown field", input: `{"wardrobe": []}`},
		{name: "wrong type", input: `{"outfits": "Winter"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoadFailure), "expected ErrLoadFailure, got %v", err)
		})
	}
}

func TestDecodeJSONDefaults(t *testing.T) {
	got, err := DecodeJSON(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.NotNil(t, got.Assignments)
}

func TestCharactersSorted(t *testing.T) {
	s := NewState()
	s.Assignments["b"] = AssignmentRecord{}
	s.Assignments["a"] = AssignmentRecord{}
	assert.Equal(t, []string{"a", "b"}, s.Characters())
}
