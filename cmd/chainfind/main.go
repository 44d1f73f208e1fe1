// Command chainfind enumerates and validates attack chains over a scenario.
//
// Usage:
//
//	chainfind find --scenario corp-small --start EMP-LAPTOP --target PAYROLL-DB --max-hops 4
//	chainfind find --scenario lab.yaml --start WS --target DB --filter 'length <= 3' --format json
//	chainfind validate --report chains.yaml
//	chainfind scenarios
//	chainfind scenarios show corp-small --format yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
