package chain

import (
	"maps"
	"sort"
	"strings"

	"github.com/zero-day-ai/lateral/scenario"
)

type set map[string]struct{}

// State is the mutable world view of one search or one replay: privilege per
// system, the attacker's credential inventory, reuse bookkeeping and the set
// of systems already entered laterally.
//
// A State is owned by a single run. The finder mutates it in place and undoes
// every change on backtrack, so it is never safe to share between runs.
type State struct {
	priv      map[string]scenario.Privilege
	inventory set
	uses      map[string]int
	usedOn    map[string]set
	visited   set
}

// NewState seeds privileges from the scenario, starts with an empty
// inventory and empty reuse trackers, and marks start as visited.
func NewState(sc *scenario.Scenario, start *scenario.System) *State {
	st := &State{
		priv:      make(map[string]scenario.Privilege, len(sc.Systems())),
		inventory: make(set),
		uses:      make(map[string]int),
		usedOn:    make(map[string]set),
		visited:   make(set),
	}
	for _, s := range sc.Systems() {
		st.priv[s.Name] = s.InitialPrivilege
	}
	if start != nil {
		st.visited[start.Name] = struct{}{}
	}
	return st
}

// Privilege returns the current privilege on the named system.
func (st *State) Privilege(system string) scenario.Privilege {
	return st.priv[system]
}

// Credentials returns the attacker inventory in sorted order.
func (st *State) Credentials() []string {
	creds := make([]string, 0, len(st.inventory))
	for c := range st.inventory {
		creds = append(creds, c)
	}
	sort.Strings(creds)
	return creds
}

// HasCredential reports whether cred is in the attacker inventory.
func (st *State) HasCredential(cred string) bool {
	_, ok := st.inventory[cred]
	return ok
}

// HasCredentialPrefix reports whether some inventory credential starts with
// tag. An empty tag always matches.
func (st *State) HasCredentialPrefix(tag string) bool {
	if tag == "" {
		return true
	}
	for c := range st.inventory {
		if strings.HasPrefix(c, tag) {
			return true
		}
	}
	return false
}

// Uses returns how many times the exploit has been applied under a limited
// reuse policy.
func (st *State) Uses(exploit string) int {
	return st.uses[exploit]
}

// UsedOn reports whether a once-per-system exploit has been applied with
// system as its scope.
func (st *State) UsedOn(exploit, system string) bool {
	_, ok := st.usedOn[exploit][system]
	return ok
}

// Visited reports whether the system is the start or was entered laterally.
func (st *State) Visited(system string) bool {
	_, ok := st.visited[system]
	return ok
}

func (st *State) markVisited(system string) {
	st.visited[system] = struct{}{}
}

func (st *State) unmarkVisited(system string) {
	delete(st.visited, system)
}

// Clone returns a deep copy of the state.
func (st *State) Clone() *State {
	c := &State{
		priv:      maps.Clone(st.priv),
		inventory: maps.Clone(st.inventory),
		uses:      maps.Clone(st.uses),
		usedOn:    make(map[string]set, len(st.usedOn)),
		visited:   maps.Clone(st.visited),
	}
	for ex, systems := range st.usedOn {
		c.usedOn[ex] = maps.Clone(systems)
	}
	return c
}

// Equal reports whether two states hold identical values.
func (st *State) Equal(o *State) bool {
	if !maps.Equal(st.priv, o.priv) ||
		!maps.Equal(st.inventory, o.inventory) ||
		!maps.Equal(st.uses, o.uses) ||
		!maps.Equal(st.visited, o.visited) ||
		len(st.usedOn) != len(o.usedOn) {
		return false
	}
	for ex, systems := range st.usedOn {
		other, ok := o.usedOn[ex]
		if !ok || !maps.Equal(systems, other) {
			return false
		}
	}
	return true
}
