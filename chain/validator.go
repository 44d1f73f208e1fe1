package chain

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/lateral/scenario"
)

// Rule names the invariant a rejected chain violated.
type Rule string

const (
	RuleEmptyAtStart  Rule = "empty_at_start"
	RuleContinuity    Rule = "continuity"
	RuleServiceShape  Rule = "service_shape"
	RuleUnknownRef    Rule = "unknown_reference"
	RuleExploitShape  Rule = "exploit_shape"
	RulePrecondition  Rule = "precondition"
	RuleRevisit       Rule = "revisit"
	RuleStopAtTarget  Rule = "stop_at_target"
	RuleTargetMissing Rule = "target_not_reached"
)

// ValidationError describes the first rule a replayed chain broke.
type ValidationError struct {
	// Hop is the index of the offending hop, or -1 for whole-chain violations.
	Hop int

	Rule Rule

	// Gate is set when Rule is RulePrecondition.
	Gate Gate

	Reason string
}

func (e *ValidationError) Error() string {
	if e.Hop < 0 {
		return e.Reason
	}
	return fmt.Sprintf("Hop %d %s", e.Hop, e.Reason)
}

func violation(hop int, rule Rule, format string, args ...any) *ValidationError {
	return &ValidationError{Hop: hop, Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// Validate replays c from start against a fresh State and returns the first
// violation as a *ValidationError, or nil if the chain is valid.
//
// The replay shares Check and Apply with the finder but owns its state, so
// it can audit chains from any source. Malformed input (nil scenario or
// systems, systems foreign to sc) is reported with a plain error instead.
func Validate(sc *scenario.Scenario, start, target *scenario.System, c Chain) error {
	if err := checkInput(sc, start, target); err != nil {
		return err
	}

	st := NewState(sc, start)
	current := start

	if current.Name == target.Name && len(c) > 0 {
		return violation(-1, RuleEmptyAtStart, "Target is already at start; chain must be empty per stop-at-target rule.")
	}

	for i, h := range c {
		if h.From != current.Name {
			return violation(i, RuleContinuity, "starts at '%s', but current system is '%s'.", h.From, current.Name)
		}

		local := h.IsLocal()
		if local && h.Service != LocalService {
			return violation(i, RuleServiceShape, "is local; service must be '%s'.", LocalService)
		}
		if !local && h.Service == LocalService {
			return violation(i, RuleServiceShape, "is lateral; service must not be '%s'.", LocalService)
		}

		ex := sc.Exploit(h.Exploit)
		if ex == nil {
			return violation(i, RuleUnknownRef, "uses unknown exploit '%s'.", h.Exploit)
		}
		if local && !ex.Access.IsLocal() {
			return violation(i, RuleExploitShape, "is local but exploit requires a service: %s", ex.Access.Service)
		}
		if !local {
			if ex.Access.IsLocal() {
				return violation(i, RuleExploitShape, "is lateral but exploit is local-only (no required service).")
			}
			if ex.Access.Service != h.Service {
				return violation(i, RuleExploitShape, "service '%s' does not match exploit required service '%s'.", h.Service, ex.Access.Service)
			}
		}

		to := sc.System(h.To)
		if to == nil {
			return violation(i, RuleUnknownRef, "references unknown system '%s'.", h.To)
		}

		if gerr := Check(ex, current, to, st); gerr != nil {
			v := violation(i, RulePrecondition, "fails %s precondition: %s.", gerr.Gate, gerr.Reason)
			v.Gate = gerr.Gate
			return v
		}

		if !local && st.Visited(to.Name) {
			return violation(i, RuleRevisit, "revisits system '%s', which is not allowed.", to.Name)
		}

		Apply(ex, to, st)

		if !local {
			st.markVisited(to.Name)
			current = to
		}

		if current.Name == target.Name && i != len(c)-1 {
			return violation(i, RuleStopAtTarget, "reaches target '%s' but chain continues. Must stop immediately upon reaching target.", target.Name)
		}
	}

	if current.Name != target.Name {
		return violation(-1, RuleTargetMissing, "Chain does not reach the target '%s'.", target.Name)
	}
	return nil
}

// ValidateChain reports whether c is a valid chain from start to target.
// Malformed input yields false.
func ValidateChain(sc *scenario.Scenario, start, target *scenario.System, c Chain) bool {
	return Validate(sc, start, target, c) == nil
}

// ValidateChainReason returns a description of the first violation and true,
// or "" and false when c is valid. Malformed input is reported as a violation
// with the input error as reason.
func ValidateChainReason(sc *scenario.Scenario, start, target *scenario.System, c Chain) (string, bool) {
	err := Validate(sc, start, target, c)
	if err == nil {
		return "", false
	}
	return err.Error(), true
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
