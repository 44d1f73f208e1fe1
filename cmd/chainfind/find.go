package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/lateral"
	"github.com/zero-day-ai/lateral/query"
	"github.com/zero-day-ai/lateral/report"
)

type findOptions struct {
	scenario string
	start    string
	target   string
	maxHops  int
	filter   string
	format   string
	output   string
}

func newFindCommand(g *globalOptions) *cobra.Command {
	o := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find every attack chain from a start system to a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, g, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.scenario, "scenario", "s", "", "built-in scenario name or path to a .yaml/.json scenario")
	f.StringVar(&o.start, "start", "", "name of the system the attacker starts on")
	f.StringVar(&o.target, "target", "", "name of the system to reach")
	f.IntVarP(&o.maxHops, "max-hops", "n", 4, "maximum number of hops per chain")
	f.StringVar(&o.filter, "filter", "", "CEL expression chains must satisfy, e.g. 'length <= 3'")
	f.StringVarP(&o.format, "format", "f", "text", "output format: text, json or yaml")
	f.StringVarP(&o.output, "output", "o", "", "write the report to this file instead of stdout")
	_ = cmd.MarkFlagRequired("scenario")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runFind(cmd *cobra.Command, g *globalOptions, o *findOptions) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}

	var filter *query.Filter
	if o.filter != "" {
		if filter, err = query.Compile(o.filter); err != nil {
			return err
		}
	}

	engine, logger, err := g.engine(cmd)
	if err != nil {
		return err
	}
	sc, err := lateral.LoadScenario(o.scenario)
	if err != nil {
		return err
	}

	chains, err := engine.FindChains(cmd.Context(), sc, o.start, o.target, o.maxHops)
	if err != nil {
		return err
	}
	total := len(chains)
	if chains, err = filter.Apply(chains); err != nil {
		return err
	}
	if filter != nil {
		logger.Debug("applied chain filter", "filter", o.filter, "kept", len(chains), "total", total)
	}

	rep := report.New(sc, sc.System(o.start), sc.System(o.target), o.maxHops, chains)
	rep.Filter = o.filter

	var out io.Writer = cmd.OutOrStdout()
	if o.output != "" {
		file, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer lateral.CloseWithLog(file, logger, "report file")
		out = file
	}
	return rep.Write(out, format)
}
