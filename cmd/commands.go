package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/menusync-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled reconciliation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return withApp(ctx, func(a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply the catalog feed once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app.App) error {
			report, err := a.ReconcileOnce(ctx)
			if report != nil {
				printJSON(cmd, report)
			}
			return err
		})
	},
}

var reseedCmd = &cobra.Command{
	Use:   "reseed",
	Short: "Rebuild the tree cache from the entity store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app.App) error {
			res, err := a.Reseed(ctx)
			if err != nil {
				return err
			}
			printJSON(cmd, res)
			return nil
		})
	},
}

func withApp(ctx context.Context, fn func(a *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	if err := fn(a); err != nil {
		a.Log.Error("Command failed", "error", err)
		return err
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
