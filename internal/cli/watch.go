package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mailpane/mailpane/internal/tui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch unread messages in a live terminal view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !hasTTY() {
				return fmt.Errorf("watch requires an interactive terminal")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			w, err := mountWidget(cfg)
			if err != nil {
				return err
			}
			defer w.Destroy()

			p := tea.NewProgram(tui.NewModel(w), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run terminal view: %w", err)
			}
			return nil
		},
	}
	return cmd
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
