package scenario

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidScenario is wrapped by every error reporting an inconsistent
// scenario definition.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the read-only universe of systems and exploits shared by one
// search or validation run.
type Scenario struct {
	name     string
	systems  []*System
	exploits []*Exploit
	byName   map[string]*System
	exByName map[string]*Exploit
}

// New builds a Scenario from fully linked systems and exploits.
//
// Systems and exploits are kept sorted by name. Every route must start at the
// system that owns it and end at a member of the scenario.
func New(name string, systems []*System, exploits []*Exploit) (*Scenario, error) {
	sc := &Scenario{
		name:     name,
		systems:  make([]*System, 0, len(systems)),
		exploits: make([]*Exploit, 0, len(exploits)),
		byName:   make(map[string]*System, len(systems)),
		exByName: make(map[string]*Exploit, len(exploits)),
	}

	for _, s := range systems {
		if s == nil {
			return nil, fmt.Errorf("%w: nil system", ErrInvalidScenario)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%w: system with empty name", ErrInvalidScenario)
		}
		if _, dup := sc.byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate system %q", ErrInvalidScenario, s.Name)
		}
		if !s.InitialPrivilege.IsValid() {
			return nil, fmt.Errorf("%w: system %q has invalid privilege %d", ErrInvalidScenario, s.Name, int(s.InitialPrivilege))
		}
		sc.byName[s.Name] = s
		sc.systems = append(sc.systems, s)
	}

	for _, s := range sc.systems {
		for i, r := range s.Routes {
			if r.From != s {
				return nil, fmt.Errorf("%w: route %d of %q does not originate at it", ErrInvalidScenario, i, s.Name)
			}
			if r.To == nil || sc.byName[r.To.Name] != r.To {
				return nil, fmt.Errorf("%w: route %d of %q points outside the scenario", ErrInvalidScenario, i, s.Name)
			}
		}
	}

	for _, e := range exploits {
		if e == nil {
			return nil, fmt.Errorf("%w: nil exploit", ErrInvalidScenario)
		}
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := sc.exByName[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate exploit %q", ErrInvalidScenario, e.Name)
		}
		sc.exByName[e.Name] = e
		sc.exploits = append(sc.exploits, e)
	}

	sort.Slice(sc.systems, func(i, j int) bool { return sc.systems[i].Name < sc.systems[j].Name })
	sort.Slice(sc.exploits, func(i, j int) bool { return sc.exploits[i].Name < sc.exploits[j].Name })

	return sc, nil
}

// Name returns the scenario name.
func (sc *Scenario) Name() string {
	return sc.name
}

// System returns the system called name, or nil.
func (sc *Scenario) System(name string) *System {
	return sc.byName[name]
}

// Exploit returns the exploit called name, or nil.
func (sc *Scenario) Exploit(name string) *Exploit {
	return sc.exByName[name]
}

// Contains reports whether s is the scenario's own instance of its name.
func (sc *Scenario) Contains(s *System) bool {
	return s != nil && sc.byName[s.Name] == s
}

// Systems returns the systems sorted by name. The slice must not be modified.
func (sc *Scenario) Systems() []*System {
	return sc.systems
}

// Exploits returns the exploits sorted by name. The slice must not be modified.
func (sc *Scenario) Exploits() []*Exploit {
	return sc.exploits
}
