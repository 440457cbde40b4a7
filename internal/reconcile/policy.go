package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Policy controls how a reconciliation pass treats items the character does
// not own.
type Policy int

const (
	// Disabled equips only what the character already owns.
	Disabled Policy = iota
	// Automatic adds missing items, records them in the stash, and takes
	// them back once no outfit wants them.
	Automatic
	// Immersive equips only owned items and skips the rest silently.
	Immersive
)

var ErrUnknownPolicy = errors.New("unknown inventory policy")

var policyNames = map[Policy]string{
	Disabled:  "disabled",
	Automatic: "automatic",
	Immersive: "immersive",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

func (p Policy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParsePolicy accepts a policy name or its numeric value.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Policy(n).Valid() {
		return Policy(n), nil
	}
	return 0, fmt.Errorf("parsing %q: %w", s, ErrUnknownPolicy)
}

// Policies selects a policy for the player and one for everybody else.
type Policies struct {
	Player Policy
	NPC    Policy
}

func (p Policies) For(isPlayer bool) Policy {
	if isPlayer {
		return p.Player
	}
	return p.NPC
}
