package store

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EncodeJSON writes state as indented JSON.
func EncodeJSON(w io.Writer, state *State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding state: %w: %w", ErrSaveFailure, err)
	}
	return nil
}

// DecodeJSON reads a state written by EncodeJSON. Unknown fields are
// rejected.
func DecodeJSON(r io.Reader) (*State, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	state := NewState()
	if err := dec.Decode(state); err != nil {
		return nil, fmt.Errorf("decoding state: %w: %w", ErrLoadFailure, err)
	}
	if state.Assignments == nil {
		state.Assignments = make(map[string]AssignmentRecord)
	}
	return state, nil
}

// EncodeYAML writes state as yaml.
func EncodeYAML(w io.Writer, state *State) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding state: %w: %w", ErrSaveFailure, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding state: %w: %w", ErrSaveFailure, err)
	}
	return nil
}

// DecodeYAML reads a yaml state document.
func DecodeYAML(r io.Reader) (*State, error) {
	state := NewState()
	if err := yaml.NewDecoder(r).Decode(state); err != nil {
		return nil, fmt.Errorf("decoding state: %w: %w", ErrLoadFailure, err)
	}
	if state.Assignments == nil {
		state.Assignments = make(map[string]AssignmentRecord)
	}
	return state, nil
}
