package scenario

import (
	"fmt"
	"strings"
)

// Privilege is the level of control an attacker holds on a system.
// Levels are totally ordered: PrivNone < PrivUser < PrivAdmin.
type Privilege int

const (
	// PrivNone means no foothold on the system.
	PrivNone Privilege = iota

	// PrivUser is an unprivileged interactive or service account.
	PrivUser

	// PrivAdmin is full administrative control (Administrator, root, SYSTEM).
	PrivAdmin
)

// String returns the lower-case name of the privilege level.
func (p Privilege) String() string {
	switch p {
	case PrivNone:
		return "none"
	case PrivUser:
		return "user"
	case PrivAdmin:
		return "admin"
	default:
		return fmt.Sprintf("privilege(%d)", int(p))
	}
}

// IsValid returns true if p is one of the defined privilege levels.
func (p Privilege) IsValid() bool {
	return p >= PrivNone && p <= PrivAdmin
}

// AtLeast reports whether p is greater than or equal to need.
func (p Privilege) AtLeast(need Privilege) bool {
	return p >= need
}

// MaxPrivilege returns the higher of a and b.
func MaxPrivilege(a, b Privilege) Privilege {
	if a >= b {
		return a
	}
	return b
}

// ParsePrivilege parses a privilege name. Matching is case-insensitive and an
// empty string parses as PrivNone.
func ParsePrivilege(s string) (Privilege, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PrivNone, nil
	case "user":
		return PrivUser, nil
	case "admin":
		return PrivAdmin, nil
	default:
		return PrivNone, fmt.Errorf("%w: unknown privilege %q", ErrInvalidScenario, s)
	}
}
