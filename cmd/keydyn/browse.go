package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keydyn/internal/config"
	"github.com/verte-zerg/keydyn/internal/statsui"
	"github.com/verte-zerg/keydyn/internal/store"
)

var browseDB string

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [run-id]",
		Short: "Browse a stored run interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowseCmd,
	}
	cmd.Flags().StringVar(&browseDB, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "db", &browseDB, fileCfg.Extract.DB)

	st, err := store.Open(browseDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	}
	program := tea.NewProgram(statsui.NewModel(st, runID), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}
