package chain

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/lateral/scenario"
)

// Errors returned for malformed search or validation input.
var (
	ErrNilScenario     = errors.New("scenario is nil")
	ErrNilSystem       = errors.New("system is nil")
	ErrForeignSystem   = errors.New("system is not part of the scenario")
	ErrNegativeMaxHops = errors.New("max hops is negative")
)

// Stats counts the work done by one search.
type Stats struct {
	// Nodes is the number of search states visited, including the root.
	Nodes int

	// Applied is the number of exploit applications made.
	Applied int

	// Rejected is the number of candidate applications failing a precondition.
	Rejected int

	// Solutions is the number of chains found.
	Solutions int
}

// Result is the outcome of Search.
type Result struct {
	Chains []Chain
	Stats  Stats
}

// FindChains returns every valid chain from start to target using at most
// maxHops hops, ordered by canonical key. If start is target the only chain
// is the empty one. An unsatisfiable search returns an empty list, not an error.
func FindChains(sc *scenario.Scenario, start, target *scenario.System, maxHops int) ([]Chain, error) {
	res, err := Search(sc, start, target, maxHops)
	if err != nil {
		return nil, err
	}
	return res.Chains, nil
}

// Search is FindChains with search statistics.
func Search(sc *scenario.Scenario, start, target *scenario.System, maxHops int) (*Result, error) {
	if err := checkInput(sc, start, target); err != nil {
		return nil, err
	}
	if maxHops < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeMaxHops, maxHops)
	}

	s := &search{
		exploits: sc.Exploits(),
		target:   target,
		maxHops:  maxHops,
		state:    NewState(sc, start),
		path:     make(Chain, 0, min(maxHops, 16)),
	}
	s.visit(start)

	Sort(s.found)
	s.stats.Solutions = len(s.found)

	chains := s.found
	if chains == nil {
		chains = []Chain{}
	}
	return &Result{Chains: chains, Stats: s.stats}, nil
}

func checkInput(sc *scenario.Scenario, start, target *scenario.System) error {
	if sc == nil {
		return ErrNilScenario
	}
	if start == nil {
		return fmt.Errorf("start: %w", ErrNilSystem)
	}
	if target == nil {
		return fmt.Errorf("target: %w", ErrNilSystem)
	}
	if !sc.Contains(start) {
		return fmt.Errorf("start %q: %w", start.Name, ErrForeignSystem)
	}
	if !sc.Contains(target) {
		return fmt.Errorf("target %q: %w", target.Name, ErrForeignSystem)
	}
	return nil
}

// search is the depth-first backtracking state of one FindChains call.
// Every mutation made before a recursive call is undone after it returns,
// so sibling branches always start from the same state.
type search struct {
	exploits []*scenario.Exploit
	target   *scenario.System
	maxHops  int
	state    *State
	path     Chain
	found    []Chain
	stats    Stats
}

func (s *search) visit(current *scenario.System) {
	s.stats.Nodes++

	// Target detection happens only here so each solution is recorded once
	// and nothing is explored past the target.
	if current.Name == s.target.Name {
		s.found = append(s.found, s.path.Clone())
		return
	}

	for _, ex := range s.exploits {
		if ex.Access.IsLocal() {
			s.tryLocal(ex, current)
			continue
		}
		for i, r := range current.Routes {
			if !r.Allows(ex.Access.Service) || allowedEarlier(current.Routes[:i], r.To, ex.Access.Service) {
				continue
			}
			s.tryLateral(ex, current, r.To)
		}
	}
}

// allowedEarlier reports whether one of routes already carries service to dst,
// so parallel routes yield each hop once.
func allowedEarlier(routes []scenario.Route, dst *scenario.System, service string) bool {
	for _, r := range routes {
		if r.To == dst && r.Allows(service) {
			return true
		}
	}
	return false
}

func (s *search) tryLocal(ex *scenario.Exploit, current *scenario.System) {
	if len(s.path)+1 > s.maxHops {
		return
	}
	if !Applicable(ex, current, current, s.state) {
		s.stats.Rejected++
		return
	}

	rec := Apply(ex, current, s.state)
	s.stats.Applied++
	s.path = append(s.path, Hop{
		From:    current.Name,
		To:      current.Name,
		Exploit: ex.Name,
		Service: LocalService,
	})

	s.visit(current)

	s.path = s.path[:len(s.path)-1]
	s.state.Revert(rec)
}

func (s *search) tryLateral(ex *scenario.Exploit, current, dst *scenario.System) {
	if s.state.Visited(dst.Name) {
		return
	}
	if len(s.path)+1 > s.maxHops {
		return
	}
	if !Applicable(ex, current, dst, s.state) {
		s.stats.Rejected++
		return
	}

	rec := Apply(ex, dst, s.state)
	s.stats.Applied++
	s.path = append(s.path, Hop{
		From:    current.Name,
		To:      dst.Name,
		Exploit: ex.Name,
		Service: ex.Access.Service,
	})
	s.state.markVisited(dst.Name)

	s.visit(dst)

	s.state.unmarkVisited(dst.Name)
	s.path = s.path[:len(s.path)-1]
	s.state.Revert(rec)
}
