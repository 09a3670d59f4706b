package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/campus/internal/devserver"
)

func serveCmd() *cobra.Command {
	var (
		addr          string
		dbPath        string
		seed          bool
		mutationStats bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference school API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.DevServer.Addr
			}
			if dbPath == "" {
				dbPath = cfg.DevServer.DBPath
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			srv, err := devserver.New(devserver.Options{
				DBPath:             dbPath,
				JWTSecret:          cfg.DevServer.JWTSecret,
				MutationStatistics: mutationStats,
				Logger:             logger,
			})
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			defer srv.Close()

			if seed {
				if err := srv.Seed(); err != nil {
					return fmt.Errorf("failed to seed database: %w", err)
				}
			}

			if cfg.DevServer.JWTSecret == "" {
				fmt.Println("Warning: devserver.jwt_secret is empty, auth is disabled")
			}
			fmt.Printf("Serving on http://%s (db %s)\n", addr, dbPath)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "bbolt database path (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "fill empty collections with demo data")
	cmd.Flags().BoolVar(&mutationStats, "mutation-stats", false, "return statistics with create, update and delete responses")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the reference server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DevServer.JWTSecret == "" {
				return fmt.Errorf("devserver.jwt_secret is not set (config or CAMPUS_DEVSERVER_JWT_SECRET)")
			}
			token, err := devserver.MintToken([]byte(cfg.DevServer.JWTSecret), subject, role, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject (user id)")
	cmd.Flags().StringVar(&role, "role", devserver.RoleAdmin, "admin, teacher or student")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
