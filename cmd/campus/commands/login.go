package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/campus/internal/api"
	"github.com/mmcdole/campus/internal/config"
	"github.com/mmcdole/campus/internal/domain"
)

const loginTimeout = 15 * time.Second

func loginCmd() *cobra.Command {
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the school server URL and access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println()
			fmt.Println("Campus Login")
			fmt.Println("━━━━━━━━━━━━")

			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Server URL (e.g., http://127.0.0.1:8080): ")
			input, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read server URL: %w", err)
			}
			serverURL := strings.TrimRight(strings.TrimSpace(input), "/")
			if serverURL == "" {
				return errors.New("server URL cannot be empty")
			}

			fmt.Print("Access token: ")
			tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token := strings.TrimSpace(string(tokenBytes))
			if token == "" {
				return errors.New("token cannot be empty")
			}

			if !skipCheck {
				if err := checkLogin(serverURL, token); err != nil {
					return err
				}
			}

			cfg.Server.URL = serverURL
			cfg.Server.Token = token
			if err := config.Save(configDir, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println("✓ Configuration saved!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCheck, "no-check", false, "save without contacting the server")
	return cmd
}

// checkLogin fetches one notification to prove the URL and token work
func checkLogin(serverURL, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	client := api.NewClient(serverURL, token, logger)
	_, err := client.Notifications().FetchPage(ctx, domain.Query{Page: 1, Limit: 1})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAuthFailed):
		return fmt.Errorf("server rejected the token: %w", err)
	default:
		return fmt.Errorf("could not reach %s: %w", serverURL, err)
	}
}
