package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/datafiles/internal/cmd"
	"github.com/gravitrone/datafiles/internal/ui"
)

var errNotInteractive = errors.New("the interactive UI needs a terminal; use a subcommand instead (see --help)")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datafiles",
		Short: "Datafiles - records with file attachments on a Qore engine",
		Long:  "Datafiles lists, creates, shows and updates records with up to three attached files. Run without arguments for the terminal UI.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(c.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		cmd.InitCmd(),
		cmd.ListCmd(),
		cmd.ShowCmd(),
		cmd.CreateCmd(),
		cmd.UpdateCmd(),
		cmd.DownloadCmd(),
		cmd.ServeCmd(),
	)
	return root
}

func init() {
	// The palette is hex; lipgloss reads this once at first render.
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(ctx context.Context) error {
	if !isTerminal(os.Stdin, os.Stdout) {
		return errNotInteractive
	}
	s, err := cmd.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	app := ui.NewApp(s.Records, ui.WithDownloadDir(dir))

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func isTerminal(files ...*os.File) bool {
	for _, f := range files {
		if f == nil || !term.IsTerminal(int(f.Fd())) {
			return false
		}
	}
	return true
}
