package commands

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/campus/internal/api"
	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/notification"
	"github.com/mmcdole/campus/internal/tui"
)

var errNotConfigured = errors.New("no server configured, run 'campus login' first")

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the notification list in the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}
}

func runBrowse() error {
	if !cfg.IsConfigured() {
		return errNotConfigured
	}

	gw := api.NewClient(cfg.Server.URL, cfg.Server.Token, logger)
	cache := listcache.NewClient(cfg.ListCache(), nil, logger)
	defer cache.Reset()

	list := notification.NewList(cache, gw.Notifications())
	model := tui.NewModel(list)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI", "server", cfg.Server.URL)
	if _, err := p.Run(); err != nil {
		logger.Error("failed to run TUI", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
