// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package preset

import (
	"log/slog"

	"github.com/rock5c-tools/powermode/internal/config"
	"github.com/rock5c-tools/powermode/internal/sysfs"
)

// Applier issues the write plan of a preset. Writes are best-effort:
// a failed write (permissions, missing node, feature disabled in the
// kernel) is logged and skipped, the rest of the plan still runs.
// There is no verification and no rollback; recovering from a partial
// apply means applying another preset or rebooting.
type Applier struct {
	logger *slog.Logger
	cfg    *config.Config
	writer sysfs.Writer
}

type OptionFn func(*Applier)

// WithLogger sets the logger for the Applier
func WithLogger(logger *slog.Logger) OptionFn {
	return func(a *Applier) {
		a.logger = logger.With("service", "applier")
	}
}

// WithWriter substitutes the sysfs writer; used by tests
func WithWriter(w sysfs.Writer) OptionFn {
	return func(a *Applier) {
		a.writer = w
	}
}

// NewApplier creates an applier for the configured paths
func NewApplier(cfg *config.Config, opts ...OptionFn) *Applier {
	a := &Applier{
		logger: slog.Default().With("service", "applier"),
		cfg:    cfg,
		writer: sysfs.FileWriter{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply issues the preset's writes in plan order
func (a *Applier) Apply(p Preset) {
	a.logger.Info("Applying preset", "preset", string(p), "description", p.Description())

	applied, skipped := 0, 0
	for _, w := range Plan(p, a.cfg) {
		a.logger.Info("Writing", "path", w.Path, "value", w.Value)
		if err := a.writer.Write(w.Path, w.Value); err != nil {
			a.logger.Debug("Write skipped", "path", w.Path, "error", err)
			skipped++
			continue
		}
		applied++
	}
	a.logger.Info("Preset applied", "preset", string(p), "writes", applied, "skipped", skipped)
}
