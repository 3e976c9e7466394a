package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Nixie-Tech-LLC/informator/internal/backend"
	"github.com/Nixie-Tech-LLC/informator/internal/config"
	"github.com/Nixie-Tech-LLC/informator/internal/display"
	"github.com/Nixie-Tech-LLC/informator/internal/poller"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
)

// RootOptions holds the display's command line flags. Unset flags fall back
// to the shared configuration.
type RootOptions struct {
	PIN      string
	Interval time.Duration
	Backend  string
	Config   string
	LogFile  string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "informator-display",
		Short:        "Terminal display for an informator screen",
		Long:         "Shows a PIN until an administrator binds it, then renders the screen's modules and keeps them in sync.",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.PIN != "" && !registry.ValidPIN(opts.PIN) {
				return fmt.Errorf("invalid --pin %q: %w", opts.PIN, registry.ErrInvalidPin)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.PIN, "pin", "", "six digit pin to watch (random when empty)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "poll interval (defaults to POLL_INTERVAL)")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "store backend: memory|sqlite|postgres|redis (defaults to KV_BACKEND)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to informator.yaml")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "informator-display.log", "file receiving logs while the display owns the terminal")

	return cmd
}

func run(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("ignoring .env")
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.Backend != "" {
		cfg.KVBackend = opts.Backend
	}
	if opts.Interval > 0 {
		cfg.PollInterval = opts.Interval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// the terminal belongs to the display, logs go to a file
	logFile, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	cfg.SetupLogger()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	store, closeStore, err := backend.OpenKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	changes, closeBus, err := backend.OpenBus(cfg, "display")
	if err != nil {
		log.Warn().Err(err).Msg("change bus unavailable, relying on polling")
		changes = nil
		closeBus = func() {}
	}
	defer closeBus()

	sessionOpts := []poller.Option{poller.WithInterval(cfg.PollInterval)}
	if opts.PIN != "" {
		sessionOpts = append(sessionOpts, poller.WithPIN(opts.PIN))
	}
	if changes != nil {
		sessionOpts = append(sessionOpts, poller.WithSubscriber(changes))
	}
	session := poller.NewSession(store, sessionOpts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = session.Run(ctx) }()

	_, err = tea.NewProgram(display.New(session), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
