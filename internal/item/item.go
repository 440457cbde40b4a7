package item

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ID is a stable handle to an equippable object, written as a form string
// ("0x12E49|Skyrim.esm"). The empty ID is the null reference.
type ID string

var ErrNotFormString = errors.New("not a form string")

var pluginSuffixes = []string{".esp", ".esm", ".esl"}

func (id ID) Valid() bool {
	return id != ""
}

func (id ID) String() string {
	return string(id)
}

// IsFormString reports whether s looks like "<hex id>|<plugin file>".
func IsFormString(s string) bool {
	if len(s) < 4 || !strings.Contains(s, "|") {
		return false
	}
	for _, suffix := range pluginSuffixes {
		if strings.HasSuffix(strings.ToLower(s), suffix) {
			return true
		}
	}
	return false
}

// ParseFormString splits a form string into its base form id and plugin file.
func ParseFormString(s string) (uint32, string, error) {
	if !IsFormString(s) {
		return 0, "", fmt.Errorf("parsing %q: %w", s, ErrNotFormString)
	}
	parts := strings.SplitN(s, "|", 2)
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(parts[0])), "0x")
	value, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, "", fmt.Errorf("parsing %q: %w", s, err)
	}
	return BaseID(uint32(value)), strings.TrimSpace(parts[1]), nil
}

// FormString formats a form id relative to its plugin file.
func FormString(formID uint32, plugin string) ID {
	return ID(fmt.Sprintf("0x%x|%s", BaseID(formID), plugin))
}

// BaseID strips the load-order index from a runtime form id. Light plugins
// (0xFE prefix) keep only the low 12 bits.
func BaseID(formID uint32) uint32 {
	if formID == 0 {
		return 0
	}
	if formID>>24 == 0xFE {
		return formID & 0x00000FFF
	}
	return formID & 0x00FFFFFF
}

// Set is an unordered collection of item references without duplicates.
type Set map[ID]struct{}

func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was newly added. Invalid ids are ignored.
func (s Set) Add(id ID) bool {
	if !id.Valid() {
		return false
	}
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s Set) Remove(id ID) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
