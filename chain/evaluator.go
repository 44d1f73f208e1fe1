package chain

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/lateral/scenario"
)

// Gate names one precondition an exploit application must pass.
type Gate string

const (
	// GateLocality covers local/lateral shape, the route and the running service.
	GateLocality Gate = "locality"

	// GatePrivilege requires enough privilege on the acting system.
	GatePrivilege Gate = "privilege"

	// GateCredential requires a credential with the exploit's tag as prefix.
	GateCredential Gate = "credential"

	// GateOS requires the affected system's OS to contain a substring.
	GateOS Gate = "os"

	// GateReuse enforces the exploit's reuse policy.
	GateReuse Gate = "reuse"
)

// GateError reports the first precondition an application failed.
type GateError struct {
	Gate   Gate
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s gate: %s", e.Gate, e.Reason)
}

func gateErr(g Gate, format string, args ...any) *GateError {
	return &GateError{Gate: g, Reason: fmt.Sprintf(format, args...)}
}

// Check evaluates every precondition of applying ex from the acting system to
// the affected system against st. Gates are tested in the order locality,
// privilege, credential, OS, reuse; the first failure is returned.
//
// For local exploits from and to must be the same system. The affected system
// is also the scope system for reuse and the one whose OS is tested.
func Check(ex *scenario.Exploit, from, to *scenario.System, st *State) *GateError {
	if ex.Access.IsLocal() {
		if from.Name != to.Name {
			return gateErr(GateLocality, "local exploit %q cannot act on %q from %q", ex.Name, to.Name, from.Name)
		}
	} else {
		svc := ex.Access.Service
		if from.Name == to.Name {
			return gateErr(GateLocality, "lateral exploit %q must target another system", ex.Name)
		}
		if _, ok := from.RouteAllowing(to, svc); !ok {
			return gateErr(GateLocality, "no route allowing service '%s' from '%s' to '%s'", svc, from.Name, to.Name)
		}
		if !to.Runs(svc) {
			return gateErr(GateLocality, "service '%s' is not running on '%s'", svc, to.Name)
		}
	}

	if !st.Privilege(from.Name).AtLeast(ex.RequiredPrivilege) {
		return gateErr(GatePrivilege, "needs %s on '%s', have %s", ex.RequiredPrivilege, from.Name, st.Privilege(from.Name))
	}

	if !st.HasCredentialPrefix(ex.RequiredCredTag) {
		return gateErr(GateCredential, "requires a credential starting with '%s' in attacker inventory", ex.RequiredCredTag)
	}

	if ex.OSContains != "" && !strings.Contains(to.OS, ex.OSContains) {
		return gateErr(GateOS, "OS of '%s' (%s) does not contain '%s'", to.Name, to.OS, ex.OSContains)
	}

	switch ex.Reuse.Kind {
	case scenario.ReuseUnlimited:
	case scenario.ReuseLimited:
		if st.Uses(ex.Name) >= ex.Reuse.Limit {
			return gateErr(GateReuse, "exceeds LIMITED(%d) for exploit '%s'", ex.Reuse.Limit, ex.Name)
		}
	case scenario.ReuseOncePerSystem:
		if st.UsedOn(ex.Name, to.Name) {
			return gateErr(GateReuse, "violates ONCE_PER_SYSTEM for exploit '%s' on system '%s'", ex.Name, to.Name)
		}
	default:
		panic(fmt.Sprintf("chain: unhandled reuse kind %v", ex.Reuse.Kind))
	}

	return nil
}

// Applicable reports whether ex can be applied from -> to in st.
func Applicable(ex *scenario.Exploit, from, to *scenario.System, st *State) bool {
	return Check(ex, from, to, st) == nil
}

// ChangeRecord holds exactly the deltas of one Apply so Revert can undo it.
type ChangeRecord struct {
	exploit  string
	scope    string
	prevPriv scenario.Privilege
	reuse    reuseDelta
	looted   []string
}

type reuseDelta struct {
	kind scenario.ReuseKind

	// prevCount is the limited-use counter before Apply.
	prevCount int

	// marked is true when Apply newly added scope to the once-per-system set.
	marked bool
}

// Looted returns the credentials this application newly added to the inventory.
func (r ChangeRecord) Looted() []string {
	return r.looted
}

// Apply performs the effects of ex on the affected system to and returns the
// record needed to undo them. It must only be called after Check passed.
//
// Effects, in order: reuse bookkeeping, privilege raise on the scope system,
// and credential looting into the attacker inventory.
func Apply(ex *scenario.Exploit, to *scenario.System, st *State) ChangeRecord {
	rec := ChangeRecord{
		exploit: ex.Name,
		scope:   to.Name,
		reuse:   reuseDelta{kind: ex.Reuse.Kind},
	}

	switch ex.Reuse.Kind {
	case scenario.ReuseUnlimited:
	case scenario.ReuseLimited:
		rec.reuse.prevCount = st.uses[ex.Name]
		st.uses[ex.Name] = rec.reuse.prevCount + 1
	case scenario.ReuseOncePerSystem:
		systems, ok := st.usedOn[ex.Name]
		if !ok {
			systems = make(set)
			st.usedOn[ex.Name] = systems
		}
		if _, seen := systems[to.Name]; !seen {
			systems[to.Name] = struct{}{}
			rec.reuse.marked = true
		}
	default:
		panic(fmt.Sprintf("chain: unhandled reuse kind %v", ex.Reuse.Kind))
	}

	rec.prevPriv = st.priv[to.Name]
	st.priv[to.Name] = scenario.MaxPrivilege(rec.prevPriv, ex.GrantsPrivilege)

	if ex.LootsCredentials {
		for _, c := range to.Credentials {
			if _, have := st.inventory[c]; have {
				continue
			}
			st.inventory[c] = struct{}{}
			rec.looted = append(rec.looted, c)
		}
	}

	return rec
}

// Revert undoes one Apply. Records must be reverted in reverse order of
// application; afterwards st equals its state before the matching Apply.
func (st *State) Revert(rec ChangeRecord) {
	for _, c := range rec.looted {
		delete(st.inventory, c)
	}

	st.priv[rec.scope] = rec.prevPriv

	switch rec.reuse.kind {
	case scenario.ReuseUnlimited:
	case scenario.ReuseLimited:
		if rec.reuse.prevCount == 0 {
			delete(st.uses, rec.exploit)
		} else {
			st.uses[rec.exploit] = rec.reuse.prevCount
		}
	case scenario.ReuseOncePerSystem:
		if rec.reuse.marked {
			systems := st.usedOn[rec.exploit]
			delete(systems, rec.scope)
			if len(systems) == 0 {
				delete(st.usedOn, rec.exploit)
			}
		}
	default:
		panic(fmt.Sprintf("chain: unhandled reuse kind %v", rec.reuse.kind))
	}
}
