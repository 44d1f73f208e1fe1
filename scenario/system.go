package scenario

import "slices"

// System is a host in the scenario network.
//
// Systems are never mutated once a Scenario is built. Privilege gained during
// a search lives in the search state, not here.
type System struct {
	// Name uniquely identifies the system within a scenario.
	Name string

	// OS is a free-text descriptor such as "Windows Server 2019".
	OS string

	// Services lists the service tags running on the system.
	Services []string

	// Credentials lists credential strings stored on the system. They are
	// only known to the attacker once looted.
	Credentials []string

	// InitialPrivilege is the attacker's privilege before any exploit.
	InitialPrivilege Privilege

	// Routes are the outgoing edges, in the order the search visits them.
	Routes []Route
}

// Route is a directed edge between two systems permitting a set of services.
// Bidirectional connectivity needs two routes with independent allow sets.
type Route struct {
	From  *System
	To    *System
	Allow []string
}

// Allows reports whether the route permits service.
func (r Route) Allows(service string) bool {
	return slices.Contains(r.Allow, service)
}

// Runs reports whether service is running on the system.
func (s *System) Runs(service string) bool {
	return slices.Contains(s.Services, service)
}

// RouteAllowing returns the first route from s to dst permitting service.
func (s *System) RouteAllowing(dst *System, service string) (Route, bool) {
	for _, r := range s.Routes {
		if r.To != nil && r.To.Name == dst.Name && r.Allows(service) {
			return r, true
		}
	}
	return Route{}, false
}
