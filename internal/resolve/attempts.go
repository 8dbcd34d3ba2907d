package resolve

import (
	"fmt"
	"strings"
)

// Tier names the place a module was loaded from.
type Tier string

const (
	TierStatic  Tier = "static"
	TierDynamic Tier = "dynamic"
	TierRoot    Tier = "root"
)

// Attempt records one tier tried during a lookup.
type Attempt struct {
	Tier   Tier   `json:"tier"`
	Target string `json:"target"`
	Loaded bool   `json:"loaded"`
	Cached bool   `json:"cached,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Attempts is the ordered trail of a lookup.
type Attempts []Attempt

// Winner returns the attempt that produced the module, if any.
func (a Attempts) Winner() (Attempt, bool) {
	for _, at := range a {
		if at.Loaded {
			return at, true
		}
	}
	return Attempt{}, false
}

// Summary renders the trail on one line, e.g.
// "static bi: miss, dynamic react-icons/bi: miss, root react-icons: ok".
func (a Attempts) Summary() string {
	if len(a) == 0 {
		return "no tiers tried"
	}
	parts := make([]string, 0, len(a))
	for _, at := range a {
		state := "miss"
		switch {
		case at.Loaded && at.Cached:
			state = "ok (cached)"
		case at.Loaded:
			state = "ok"
		}
		parts = append(parts, fmt.Sprintf("%s %s: %s", at.Tier, at.Target, state))
	}
	return strings.Join(parts, ", ")
}
