package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"snoop/internal/replay"
	"snoop/internal/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui <trace-file>",
	Short: "Browse a recorded trace interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdout) {
			return fmt.Errorf("ui requires a terminal; use 'snoop view' instead")
		}

		events, err := replay.ReadFile(args[0])
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return fmt.Errorf("%s holds no events", args[0])
		}

		model := ui.NewViewer(filepath.Base(args[0]), events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}
