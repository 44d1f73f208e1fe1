// Package scenario defines the static universe an attack-chain search runs
// over: systems, the routes between them, and the exploits an attacker can
// apply.
//
// A Scenario is immutable once built. Use Builder to assemble one by name,
// Load or Parse to read one from a YAML or JSON document, or Lookup for the
// built-in catalog:
//
//	sc, ok := scenario.Lookup(scenario.NameCorpSmall)
//	if !ok {
//		log.Fatal("unknown scenario")
//	}
//	laptop := sc.System("EMP-LAPTOP")
//
// # Exploits
//
// An exploit is either local (it acts on the attacker's current system) or
// lateral (it crosses a route carrying a named service). Each exploit carries
// a privilege requirement, optional OS and credential gates, effects
// (privilege grant, credential looting) and a reuse policy:
//
//   - Unlimited: no restriction
//   - Limited(n): at most n applications in one chain
//   - OncePerSystem: one application per scope system
package scenario
