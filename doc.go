// Package lateral discovers and audits attack chains through a modelled
// network.
//
// A scenario (package scenario) describes systems, the routes between them
// and the exploits available to an attacker. The chain finder (package chain)
// enumerates every sequence of exploit applications that carries the attacker
// from a start system to a target within a hop budget, and the validator
// replays any chain against the same rules to explain why it is or is not
// possible.
//
// # Getting Started
//
// The Engine wraps the finder and validator with name resolution, structured
// logging and OpenTelemetry instrumentation:
//
//	engine, err := lateral.New(
//		lateral.WithLogger(logger),
//		lateral.WithTracer(tp.Tracer("lateral")),
//		lateral.WithMeterProvider(mp),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sc, err := lateral.LoadScenario("corp-small")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	chains, err := engine.FindChains(ctx, sc, "EMP-LAPTOP", "PAYROLL-DB", 4)
//
// Results are always in canonical order (see chain.Sort), so identical
// inputs produce identical output.
//
// # Filtering and Reports
//
// Package query compiles CEL expressions such as `length <= 3` or
// `"PassTheHash" in exploits` into chain filters. Package report renders
// results as text, JSON or YAML and re-validates saved reports.
//
// # Errors
//
// Engine methods return *Error values carrying an operation name and a kind.
// Use errors.Is with the sentinel errors (ErrSystemNotFound, ErrInvalidInput,
// ErrScenarioNotFound, ErrScenarioLoad) or with an *Error holding only a Kind:
//
//	if errors.Is(err, &lateral.Error{Kind: lateral.KindNotFound}) {
//		// unknown system or scenario
//	}
//
// A chain that breaks the rules is not an error: Engine.Validate reports it
// as a *chain.ValidationError naming the first offending hop.
//
// # Observability
//
// With a tracer configured, searches run in a "lateral.find_chains" span and
// validations in a "lateral.validate" span. With a meter provider configured
// the engine records:
//
//   - lateral.search.duration: search duration in milliseconds
//   - lateral.search.chains: chains found
//   - lateral.search.nodes: search states visited
//   - lateral.validate.count: chains validated, with a "valid" attribute
package lateral
