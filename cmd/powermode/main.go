// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"golang.org/x/sys/unix"

	"github.com/rock5c-tools/powermode/internal/config"
	"github.com/rock5c-tools/powermode/internal/logger"
	"github.com/rock5c-tools/powermode/internal/preset"
	"github.com/rock5c-tools/powermode/internal/report"
	"github.com/rock5c-tools/powermode/internal/version"
)

const statusMode = "status"

func main() {
	cfg, mode, err := parseArgsAndConfig()
	if err != nil {
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	logVersionInfo(log)
	log.Debug("Loaded configuration", "config", cfg.String())

	if mode == statusMode {
		if err := runStatus(log, cfg); err != nil {
			log.Error("Status report failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// all four presets mutate live power-management state
	if euid := unix.Geteuid(); euid != 0 {
		log.Error("Applying a preset requires root privileges", "euid", euid, "preset", mode)
		os.Exit(1)
	}

	p, err := preset.Parse(mode)
	if err != nil {
		// kingpin's enum already rejected anything unknown
		log.Error("Invalid preset", "error", err)
		os.Exit(1)
	}
	preset.NewApplier(cfg, preset.WithLogger(log)).Apply(p)
}

func parseArgsAndConfig() (*config.Config, string, error) {
	app := kingpin.New("powermode", "Power-management preset tool for the Rock 5C.")

	configFile := app.Flag("config.file", "Path to YAML configuration file").String()
	mode := app.Arg("mode", "Preset to apply, or 'status' to report the current state").
		Default(statusMode).
		Enum("low", "medium", "npu_max", "high", statusMode)
	updateConfig := config.RegisterFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log := logger.New("info", "text", os.Stderr)
	cfg := config.DefaultConfig()
	if *configFile != "" {
		loadedCfg, err := config.FromFile(*configFile)
		if err != nil {
			log.Error("Error loading config file", "path", *configFile, "error", err.Error())
			return nil, "", err
		}
		cfg = loadedCfg
	}

	// command line flags override config file settings
	if err := updateConfig(cfg); err != nil {
		log.Error("Error applying command line flags", "error", err.Error())
		return nil, "", err
	}

	return cfg, *mode, nil
}

func runStatus(log *slog.Logger, cfg *config.Config) error {
	reporter := report.New(cfg, report.WithLogger(log))
	if !cfg.Status.Watch {
		reporter.Render(os.Stdout)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(
		func() error {
			return reporter.Watch(ctx, os.Stdout)
		},
		func(error) {
			cancel()
		},
	)
	g.Add(waitForInterrupt(ctx, log, os.Interrupt))
	return g.Run()
}

func waitForInterrupt(ctx context.Context, log *slog.Logger, signals ...os.Signal) (func() error, func(error)) {
	ctxInternal, cancel := context.WithCancel(ctx)
	return func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, signals...)
			log.Info("Press Ctrl+C to stop watching")
			select {
			case <-c:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-ctxInternal.Done():
				return ctxInternal.Err()
			}
		}, func(error) {
			cancel()
		}
}

func logVersionInfo(log *slog.Logger) {
	v := version.Info()
	log.Debug("powermode version information",
		"version", v.Version,
		"buildTime", v.BuildTime,
		"gitCommit", v.GitCommit,
		"goVersion", v.GoVersion,
		"goOS", v.GoOS,
		"goArch", v.GoArch,
	)
}
