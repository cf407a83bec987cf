package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/config"
)

// RunInteractiveInit prompts for the engine URL, admin secret and table,
// checks the engine accepts them, and persists config.
func RunInteractiveInit(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	baseURL := prompt(reader, out, "engine url: ")
	if baseURL == "" {
		return fmt.Errorf("engine url is required")
	}
	secret, err := readSecret(in, reader, out)
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	if secret == "" {
		return fmt.Errorf("admin secret is required")
	}
	table := prompt(reader, out, fmt.Sprintf("table [%s]: ", config.DefaultTable))

	cfg := &config.Config{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AdminSecret: secret,
		Table:       table,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	check := table
	if check == "" {
		check = config.DefaultTable
	}
	client := api.NewClient(cfg.BaseURL, cfg.AdminSecret, cfg.Timeout())
	if err := client.Ping(ctx, check); err != nil {
		return fmt.Errorf("engine check failed: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "connected to %s\n", client.BaseURL())
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// readSecret hides input when reading from a terminal.
func readSecret(in io.Reader, reader *bufio.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "admin secret: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return prompt(reader, out, "admin secret: "), nil
}

// InitCmd returns the `datafiles init` command.
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Connect to a Qore engine and save the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveInit(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
