package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/lateral"
	"github.com/zero-day-ai/lateral/report"
)

type validateOptions struct {
	report   string
	scenario string
}

func newValidateCommand(g *globalOptions) *cobra.Command {
	o := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Replay every chain of a saved JSON or YAML report",
		Long: `Replay every chain of a saved report against its scenario and print the
verdict for each. The command fails if any chain is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.report, "report", "r", "", "path to a .json or .yaml report")
	f.StringVarP(&o.scenario, "scenario", "s", "", "scenario name or file (defaults to the one named in the report)")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func runValidate(cmd *cobra.Command, g *globalOptions, o *validateOptions) error {
	rep, err := report.Load(o.report)
	if err != nil {
		return err
	}

	ref := o.scenario
	if ref == "" {
		ref = rep.Scenario
	}
	sc, err := lateral.LoadScenario(ref)
	if err != nil {
		return err
	}

	engine, _, err := g.engine(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, e := range rep.Chains {
		violation, err := engine.Validate(cmd.Context(), sc, rep.Start, rep.Target, e.Hops)
		if err != nil {
			return err
		}
		if violation != nil {
			invalid++
			fmt.Fprintf(out, "#%d INVALID: %s\n", e.Index, violation)
			continue
		}
		fmt.Fprintf(out, "#%d valid\n", e.Index)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d chains are invalid", invalid, len(rep.Chains))
	}
	fmt.Fprintf(out, "all %d chains valid\n", len(rep.Chains))
	return nil
}
