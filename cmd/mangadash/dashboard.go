package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/b23bb1023/Manhwa-agent/internal/tui"
)

const debugLogFile = "mangadash-debug.log"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard (default)",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	var logOutput io.Writer = io.Discard
	if flagDebug {
		f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOutput = f
	}

	_, services, logger, err := setup(logOutput)
	if err != nil {
		return err
	}
	defer services.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services.Controller.Startup(context.WithoutCancel(ctx))

	return tui.Run(ctx, services.Controller, services.Store.Path(), logger)
}
