package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"snoop/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "snoop",
	Short: "Execution trace recorder and viewer",
	Long:  `snoop records statement-level execution traces and replays them in the terminal`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off); default from snoop.toml")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("config", "", "path to snoop.toml (default: search upward from cwd)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
