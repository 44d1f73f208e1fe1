package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/lateral"
	"github.com/zero-day-ai/lateral/scenario"
)

func newScenariosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range scenario.CatalogNames() {
				sc, _ := scenario.Lookup(name)
				systems := make([]string, 0, len(sc.Systems()))
				for _, s := range sc.Systems() {
					systems = append(systems, s.Name)
				}
				fmt.Fprintf(out, "%-12s  %d systems, %d exploits  (%s)\n",
					name, len(sc.Systems()), len(sc.Exploits()), strings.Join(systems, ", "))
			}
			return nil
		},
	}

	var format string
	show := &cobra.Command{
		Use:   "show <name|file>",
		Short: "Print a scenario as a YAML or JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := lateral.LoadScenario(args[0])
			if err != nil {
				return err
			}
			data, err := scenario.Marshal(sc, scenario.Format(strings.ToLower(format)))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "yaml", "document format: yaml or json")

	cmd.AddCommand(show)
	return cmd
}
