package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pressfront"
	"github.com/eringen/pressfront/wp"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "pressfront",
		Short: "A server-rendered front end for a headless WordPress blog",
		Long: `pressfront serves a blog whose content lives in WordPress.

Settings come from an optional YAML file (--config) and environment
variables such as WORDPRESS_API_URL, SITE_URL and CACHE_BACKEND.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCheckCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pressfront.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			app, err := pressfront.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- app.Start() }()

			select {
			case err := <-errCh:
				app.Close()
				return err
			case <-ctx.Done():
			}
			app.Log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ADDR")
	return cmd
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the configuration and probe the WordPress API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pressfront.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			app, err := pressfront.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "site:       %s (%s)\n", app.Config.Name, app.Config.URL)
			fmt.Fprintf(out, "wordpress:  %s\n", orUnset(app.Config.WordPressAPIURL))
			fmt.Fprintf(out, "contact:    %s\n", configured(app.Config.ContactConfigured()))
			fmt.Fprintf(out, "cache:      %s (ttl %s)\n", app.Config.CacheBackend, app.Config.CacheTTL)

			ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.UpstreamTimeout)
			defer cancel()
			list, err := app.WP.ListPosts(ctx, wp.ListQuery{Page: 1, PerPage: 1})
			if err != nil {
				return fmt.Errorf("wordpress probe failed: %w", err)
			}
			fmt.Fprintf(out, "posts:      %d\n", list.Total)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pressfront version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pressfront %s\n", version)
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
