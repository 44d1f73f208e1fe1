// Package chain enumerates and validates lateral-movement attack chains.
//
// A chain is an ordered list of hops, each an application of one exploit
// either locally on the attacker's current system or laterally over a route
// to a neighbour. The package has three parts sharing one set of semantics:
//
//   - The evaluator: Check tests an exploit's preconditions against a State,
//     Apply performs its effects and returns a ChangeRecord, and
//     State.Revert undoes exactly that record.
//   - The finder: FindChains runs an exhaustive depth-first search with
//     in-place mutation and exact undo on backtrack, then orders the
//     solutions by canonical key.
//   - The validator: Validate replays a chain on a fresh State and reports
//     the first violated rule with its hop index.
//
// Every chain returned by FindChains passes Validate:
//
//	sc := scenario.CorpSmall()
//	start, target := sc.System("EMP-LAPTOP"), sc.System("PAYROLL-DB")
//	chains, err := chain.FindChains(sc, start, target, 3)
//	if err != nil {
//		return err
//	}
//	for _, c := range chains {
//		fmt.Println(c.Key(), chain.ValidateChain(sc, start, target, c))
//	}
//
// # Canonical order
//
// Chains are sorted by the concatenation of "from|service|exploit|to->" for
// each hop, with LocalService standing in for the service of local hops, and
// by length when keys tie. The order depends only on chain content.
//
// # Concurrency
//
// A State belongs to one search or one replay. Separate calls allocate
// separate states and may run concurrently over the same Scenario.
package chain
