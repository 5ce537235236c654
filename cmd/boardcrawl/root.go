package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-scripts/boardcrawl/internal/browser"
	"github.com/go-scripts/boardcrawl/internal/config"
	"github.com/go-scripts/boardcrawl/internal/crawler"
	"github.com/go-scripts/boardcrawl/internal/progress"
	"github.com/go-scripts/boardcrawl/internal/writer"
	"github.com/go-scripts/boardcrawl/ui"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"board-url":       "board_url",
	"output":          "output.file",
	"format":          "output.format",
	"headless":        "browser.headless",
	"profile-dir":     "browser.profile_dir",
	"chrome-path":     "browser.exec_path",
	"log-level":       "log_level",
	"confirm-timeout": "timing.confirm_timeout",
	"progress":        "progress",
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "boardcrawl",
		Short:         "Crawl the posts of a login-protected community board",
		Long:          `boardcrawl opens a browser for you to log in, then visits every post listed on the board and saves its text, price and images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			v := config.NewViper(cfgFile)
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.Load(v, cfgFile != "")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}

			logger := newLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("crawl failed", "err", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "path to a YAML configuration file")
	flags.String("board-url", "", "board URL, also used when the menu link cannot be clicked")
	flags.StringP("output", "o", "", "output file (.xlsx, .csv, .db)")
	flags.String("format", "", "output format: xlsx, csv or sqlite (default: from the file extension)")
	flags.Bool("headless", false, "run Chrome without a window")
	flags.String("profile-dir", "", "Chrome profile directory reused between runs")
	flags.String("chrome-path", "", "path to the Chrome executable")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Duration("confirm-timeout", 0, "give up waiting for the login after this long (0 waits forever)")
	flags.Bool("progress", true, "show a progress spinner")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "boardcrawl",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	sink, err := writer.New(cfg.Output.File, writer.Format(cfg.Output.Format))
	if err != nil {
		return err
	}

	chrome, err := browser.NewChrome(ctx, browser.Options{
		ExecPath:   cfg.Browser.ExecPath,
		ProfileDir: cfg.Browser.ProfileDir,
		UserAgent:  cfg.Browser.UserAgent,
		Headless:   cfg.Browser.Headless,
	}, logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}

	c, err := crawler.New(crawler.Configuration{
		Config:    cfg,
		Driver:    chrome,
		Confirmer: ui.NewPrompt(os.Stdin, os.Stdout),
		Sink:      sink,
		Progress:  progress.New(os.Stderr, cfg.Progress),
		Logger:    logger,
	})
	if err != nil {
		_ = chrome.Close()
		return err
	}

	report, err := c.Run(ctx)
	ui.RenderSummary(os.Stdout, report)
	return err
}
