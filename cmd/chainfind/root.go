package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/lateral"
)

type globalOptions struct {
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "chainfind",
		Short:         "Enumerate and validate lateral-movement attack chains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log search progress to stderr")

	cmd.AddCommand(
		newFindCommand(opts),
		newValidateCommand(opts),
		newScenariosCommand(),
	)
	return cmd
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *globalOptions) engine(cmd *cobra.Command) (*lateral.Engine, *slog.Logger, error) {
	logger := o.logger(cmd.ErrOrStderr())
	e, err := lateral.New(lateral.WithLogger(logger))
	return e, logger, err
}
