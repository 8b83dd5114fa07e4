package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "moelect",
		Short:         "Aggregate Missouri county election results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (default $MOELECT_CONFIG or config/moelect.yaml)")

	root.AddCommand(
		newAggregateCmd(&configPath),
		newCorrectCmd(&configPath),
		newKCWeightsCmd(&configPath),
		newServeCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func ok(format string, args ...interface{}) {
	color.New(color.FgGreen).Printf("✓ "+format+"\n", args...)
}

func warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func header(format string, args ...interface{}) {
	color.New(color.Bold).Println(fmt.Sprintf(format, args...))
}
