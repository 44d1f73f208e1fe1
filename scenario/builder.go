package scenario

import (
	"fmt"
	"slices"
	"sort"
)

// Builder assembles a Scenario by system name, resolving routes to the
// system instances they connect.
//
// The first error encountered is remembered and returned by Build; later
// calls become no-ops.
//
//	sc, err := scenario.NewBuilder("lab").
//		AddSystem(&scenario.System{Name: "A", OS: "Windows 10", InitialPrivilege: scenario.PrivUser}).
//		AddSystem(&scenario.System{Name: "B", OS: "Ubuntu 22.04", Services: []string{"SSH"}}).
//		Link("A", "B", []string{"SSH"}, nil).
//		AddExploit(&scenario.Exploit{Name: "SSH-Login", Access: scenario.Lateral("SSH")}).
//		Build()
type Builder struct {
	name     string
	systems  []*System
	byName   map[string]*System
	exploits []*Exploit
	err      error
}

// NewBuilder returns an empty builder for a scenario called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		byName: make(map[string]*System),
	}
}

// AddSystem registers a system. Any routes already on it are discarded;
// use Route or Link to connect systems.
func (b *Builder) AddSystem(s *System) *Builder {
	if b.err != nil {
		return b
	}
	if s == nil || s.Name == "" {
		b.err = fmt.Errorf("%w: system with empty name", ErrInvalidScenario)
		return b
	}
	if _, dup := b.byName[s.Name]; dup {
		b.err = fmt.Errorf("%w: duplicate system %q", ErrInvalidScenario, s.Name)
		return b
	}
	s.Routes = nil
	b.byName[s.Name] = s
	b.systems = append(b.systems, s)
	return b
}

// Route adds a one-way route from -> to permitting the given services.
// Routes are kept in the order they are added.
func (b *Builder) Route(from, to string, allow ...string) *Builder {
	b.addRoute(from, to, allow)
	return b
}

// Link connects a and b in both directions with independently chosen allow
// lists. After linking, each endpoint's routes are ordered by destination
// name and each allow list is sorted, so route order does not depend on the
// order links were declared in.
func (b *Builder) Link(a, c string, allowAC, allowCA []string) *Builder {
	b.addRoute(a, c, allowAC)
	b.addRoute(c, a, allowCA)
	if b.err == nil {
		sortRoutes(b.byName[a])
		sortRoutes(b.byName[c])
	}
	return b
}

// AddExploit registers an exploit.
func (b *Builder) AddExploit(e *Exploit) *Builder {
	if b.err != nil {
		return b
	}
	b.exploits = append(b.exploits, e)
	return b
}

// Build validates and returns the scenario.
func (b *Builder) Build() (*Scenario, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.name, b.systems, b.exploits)
}

func (b *Builder) addRoute(from, to string, allow []string) {
	if b.err != nil {
		return
	}
	src, ok := b.byName[from]
	if !ok {
		b.err = fmt.Errorf("%w: route from unknown system %q", ErrInvalidScenario, from)
		return
	}
	dst, ok := b.byName[to]
	if !ok {
		b.err = fmt.Errorf("%w: route to unknown system %q", ErrInvalidScenario, to)
		return
	}
	if src == dst {
		b.err = fmt.Errorf("%w: route from %q to itself", ErrInvalidScenario, from)
		return
	}
	src.Routes = append(src.Routes, Route{From: src, To: dst, Allow: slices.Clone(allow)})
}

func sortRoutes(s *System) {
	for _, r := range s.Routes {
		sort.Strings(r.Allow)
	}
	sort.SliceStable(s.Routes, func(i, j int) bool { return s.Routes[i].To.Name < s.Routes[j].To.Name })
}
