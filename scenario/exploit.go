package scenario

import (
	"fmt"
	"strings"
)

// AccessKind distinguishes exploits acting on the current system from those
// crossing a route to another system.
type AccessKind int

const (
	// AccessLocal exploits act on the attacker's current system only.
	AccessLocal AccessKind = iota

	// AccessLateral exploits reach a neighbour over a route carrying a service.
	AccessLateral
)

// Access describes how an exploit reaches the system it affects.
// The zero value is local access.
type Access struct {
	Kind AccessKind

	// Service is the service tag consumed by a lateral exploit. Empty for local.
	Service string
}

// Local returns the access mode of an exploit that needs no service or route.
func Local() Access {
	return Access{Kind: AccessLocal}
}

// Lateral returns the access mode of an exploit delivered over service.
func Lateral(service string) Access {
	return Access{Kind: AccessLateral, Service: service}
}

// IsLocal reports whether the access is local.
func (a Access) IsLocal() bool {
	return a.Kind == AccessLocal
}

// String returns "local" or "lateral(<service>)".
func (a Access) String() string {
	if a.IsLocal() {
		return "local"
	}
	return fmt.Sprintf("lateral(%s)", a.Service)
}

// ReuseKind selects how often an exploit may be applied within one chain.
type ReuseKind int

const (
	// ReuseUnlimited places no restriction on reuse.
	ReuseUnlimited ReuseKind = iota

	// ReuseLimited caps the number of applications across the whole chain.
	ReuseLimited

	// ReuseOncePerSystem allows one application per scope system.
	ReuseOncePerSystem
)

// String returns the configuration name of the reuse kind.
func (k ReuseKind) String() string {
	switch k {
	case ReuseUnlimited:
		return "unlimited"
	case ReuseLimited:
		return "limited"
	case ReuseOncePerSystem:
		return "once_per_system"
	default:
		return fmt.Sprintf("reuse(%d)", int(k))
	}
}

// ParseReuseKind parses a reuse kind name. An empty string means unlimited.
func ParseReuseKind(s string) (ReuseKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unlimited":
		return ReuseUnlimited, nil
	case "limited":
		return ReuseLimited, nil
	case "once_per_system", "once-per-system":
		return ReuseOncePerSystem, nil
	default:
		return ReuseUnlimited, fmt.Errorf("%w: unknown reuse policy %q", ErrInvalidScenario, s)
	}
}

// ReusePolicy governs how many times, and where, an exploit may be applied
// within one chain. Limit is only meaningful for ReuseLimited.
type ReusePolicy struct {
	Kind  ReuseKind
	Limit int
}

// Unlimited returns a policy with no reuse restriction.
func Unlimited() ReusePolicy {
	return ReusePolicy{Kind: ReuseUnlimited}
}

// Limited returns a policy allowing at most n applications per chain.
func Limited(n int) ReusePolicy {
	return ReusePolicy{Kind: ReuseLimited, Limit: n}
}

// OncePerSystem returns a policy allowing one application per scope system.
// The scope system is the current system for local exploits and the
// destination for lateral ones.
func OncePerSystem() ReusePolicy {
	return ReusePolicy{Kind: ReuseOncePerSystem}
}

// String returns a compact description such as "limited(2)".
func (p ReusePolicy) String() string {
	if p.Kind == ReuseLimited {
		return fmt.Sprintf("limited(%d)", p.Limit)
	}
	return p.Kind.String()
}

// Exploit is a technique that moves the attacker or raises their foothold.
type Exploit struct {
	// Name uniquely identifies the exploit within a scenario.
	Name string

	// Access is local or lateral over a service.
	Access Access

	// RequiredPrivilege is the minimum privilege on the acting system.
	RequiredPrivilege Privilege

	// OSContains, when set, must be a substring of the affected system's OS.
	OSContains string

	// RequiredCredTag, when set, must prefix some credential in the attacker inventory.
	RequiredCredTag string

	// GrantsPrivilege raises the affected system's privilege to at least this
	// level. PrivNone grants nothing.
	GrantsPrivilege Privilege

	// LootsCredentials copies every credential stored on the affected system
	// into the attacker inventory.
	LootsCredentials bool

	// Reuse limits repeated application within a chain.
	Reuse ReusePolicy
}

func (e *Exploit) validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: exploit with empty name", ErrInvalidScenario)
	}
	switch e.Access.Kind {
	case AccessLocal:
		if e.Access.Service != "" {
			return fmt.Errorf("%w: local exploit %q names service %q", ErrInvalidScenario, e.Name, e.Access.Service)
		}
	case AccessLateral:
		if e.Access.Service == "" {
			return fmt.Errorf("%w: lateral exploit %q has no service", ErrInvalidScenario, e.Name)
		}
	default:
		return fmt.Errorf("%w: exploit %q has unknown access kind %d", ErrInvalidScenario, e.Name, e.Access.Kind)
	}
	if !e.RequiredPrivilege.IsValid() || !e.GrantsPrivilege.IsValid() {
		return fmt.Errorf("%w: exploit %q has an invalid privilege level", ErrInvalidScenario, e.Name)
	}
	switch e.Reuse.Kind {
	case ReuseUnlimited, ReuseOncePerSystem:
	case ReuseLimited:
		if e.Reuse.Limit < 0 {
			return fmt.Errorf("%w: exploit %q has negative reuse limit %d", ErrInvalidScenario, e.Name, e.Reuse.Limit)
		}
	default:
		return fmt.Errorf("%w: exploit %q has unknown reuse kind %d", ErrInvalidScenario, e.Name, e.Reuse.Kind)
	}
	return nil
}
