package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pinpoint/internal/diagfmt"
	"pinpoint/internal/driver"
	"pinpoint/internal/source"
	"pinpoint/internal/ui"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Explore a file with an interactive read cursor",
	Long:  `View opens a file in a terminal viewer where the read cursor moves byte- and line-wise through the buffer`,
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	opts := driver.Options{MaxDiagnostics: maxDiagnostics}
	res := driver.Load(filePath, opts)
	if res.Cursor == nil {
		res.Finish(opts)
		useColor, colorErr := resolveColor(cmd, os.Stderr)
		if colorErr != nil {
			return colorErr
		}
		popts := diagfmt.PrettyOpts{Color: useColor, Context: 2}
		if err := diagfmt.Pretty(os.Stderr, res.Bag, nil, res.Path, popts); err != nil {
			return err
		}
		return silentExit(cmd)
	}

	model := ui.NewViewerModel(source.DisplayPath(filePath), res.Cursor)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
