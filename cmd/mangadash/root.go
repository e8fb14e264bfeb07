package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/b23bb1023/Manhwa-agent/internal/app"
	"github.com/b23bb1023/Manhwa-agent/internal/config"
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:           "mangadash",
	Short:         "Track unread chapters across manga sites",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads config and wires services. Logs go to logOutput so full-screen
// commands can keep them off the terminal.
func setup(logOutput io.Writer) (config.Config, *app.Services, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	level := cfg.LogLevel
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	services, err := app.New(cfg, logger, app.Options{RemoteScrape: true})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, services, logger, nil
}
