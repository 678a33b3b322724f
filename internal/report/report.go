// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders the read-only status report: cluster state,
// devfreq state, ISP activity and the estimated power draw.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"k8s.io/utils/clock"

	"github.com/rock5c-tools/powermode/internal/config"
	"github.com/rock5c-tools/powermode/internal/cpu"
	"github.com/rock5c-tools/powermode/internal/devfreq"
	"github.com/rock5c-tools/powermode/internal/isp"
	"github.com/rock5c-tools/powermode/internal/power"
)

// Snapshot is everything one report is rendered from
type Snapshot struct {
	CPU      *cpu.Snapshot
	NPU      devfreq.Status
	Memory   devfreq.Status
	ISP      isp.Info
	Estimate power.Power
}

// ispProbe and devfreqDevice allow tests to substitute fakes
type ispProbe interface {
	Inspect() isp.Info
}

type devfreqDevice interface {
	Status() devfreq.Status
}

type cpuReader interface {
	Snapshot() *cpu.Snapshot
}

// Reporter collects a Snapshot and renders it as text tables
type Reporter struct {
	logger   *slog.Logger
	cpu      cpuReader
	npu      devfreqDevice
	memory   devfreqDevice
	isp      ispProbe
	clock    clock.WithTicker
	interval time.Duration
}

type Opts struct {
	logger *slog.Logger
	clock  clock.WithTicker
	cpu    cpuReader
	npu    devfreqDevice
	memory devfreqDevice
	isp    ispProbe
}

// DefaultOpts returns a new Opts with defaults set
func DefaultOpts() Opts {
	return Opts{
		logger: slog.Default().With("service", "report"),
		clock:  clock.RealClock{},
	}
}

// OptionFn sets one or more options in the Opts struct
type OptionFn func(*Opts)

// WithLogger sets the logger for the Reporter
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger.With("service", "report")
	}
}

// WithClock substitutes the ticker source; used by tests
func WithClock(c clock.WithTicker) OptionFn {
	return func(o *Opts) {
		o.clock = c
	}
}

func withCPUReader(r cpuReader) OptionFn {
	return func(o *Opts) {
		o.cpu = r
	}
}

func withDevices(npu, memory devfreqDevice) OptionFn {
	return func(o *Opts) {
		o.npu = npu
		o.memory = memory
	}
}

func withISPProbe(p ispProbe) OptionFn {
	return func(o *Opts) {
		o.isp = p
	}
}

// New creates a Reporter for the configured host paths
func New(cfg *config.Config, applyOpts ...OptionFn) *Reporter {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}

	r := &Reporter{
		logger:   opts.logger,
		cpu:      opts.cpu,
		npu:      opts.npu,
		memory:   opts.memory,
		isp:      opts.isp,
		clock:    opts.clock,
		interval: cfg.Status.Interval,
	}
	if r.cpu == nil {
		r.cpu = cpu.NewReader(cfg.Host.SysFS, cfg.CPU.LittleCores, cfg.CPU.BigCores, cpu.WithLogger(opts.logger))
	}
	if r.npu == nil {
		r.npu = devfreq.NewDevice(cfg.Host.SysFS, cfg.NPU.Node)
	}
	if r.memory == nil {
		r.memory = devfreq.NewDevice(cfg.Host.SysFS, cfg.Memory.Node)
	}
	if r.isp == nil {
		r.isp = isp.NewProbe(filepath.Join(cfg.Host.DevDir, cfg.ISP.Device), cfg.Host.ProcFS, isp.WithLogger(opts.logger))
	}
	return r
}

// Collect reads the current system state. It never fails; unreadable
// values come back as zero values and render blank.
func (r *Reporter) Collect() *Snapshot {
	snap := &Snapshot{
		CPU:    r.cpu.Snapshot(),
		NPU:    r.npu.Status(),
		Memory: r.memory.Status(),
		ISP:    r.isp.Inspect(),
	}
	snap.Estimate = power.Estimate(snap.CPU.Big.OnlineCount(), snap.NPU.MaxFreq, snap.ISP.Active())
	return snap
}

// Render collects and writes one report
func (r *Reporter) Render(out io.Writer) {
	write(out, r.Collect())
}

// Watch re-renders the report on every tick until the context is done
func (r *Reporter) Watch(ctx context.Context, out io.Writer) error {
	r.Render(out)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			r.Render(out)
		case <-ctx.Done():
			r.logger.Info("Exiting status watch")
			return nil
		}
	}
}

func write(out io.Writer, snap *Snapshot) {
	writeCPU(out, snap.CPU)
	fmt.Fprintln(out)
	writeDevfreq(out, snap.NPU, snap.Memory)
	fmt.Fprintln(out)
	writeISP(out, snap.ISP)
	fmt.Fprintf(out, "Estimated power draw: %s\n", snap.Estimate)
}

func writeCPU(out io.Writer, snap *cpu.Snapshot) {
	rows := [][]string{}
	for _, cl := range []cpu.Cluster{snap.Little, snap.Big} {
		for _, core := range cl.Cores {
			online := "no"
			if core.Online {
				online = "yes"
			}
			rows = append(rows, []string{
				fmt.Sprintf("cpu%d", core.ID),
				cl.Name,
				online,
				core.Governor,
				core.CurFreq.String(),
				core.MinFreq.String(),
				core.MaxFreq.String(),
			})
		}
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header([]string{"Core", "Cluster", "Online", "Governor", "Cur", "Min", "Max"})
	_ = table.Bulk(rows)
	_ = table.Render()
}

func writeDevfreq(out io.Writer, devices ...devfreq.Status) {
	rows := [][]string{}
	for _, st := range devices {
		available := make([]string, 0, len(st.Available))
		for _, f := range st.Available {
			available = append(available, f.String())
		}
		rows = append(rows, []string{
			st.Name,
			st.Governor,
			st.CurFreq.String(),
			st.MaxFreq.String(),
			strings.Join(available, " "),
		})
	}

	table := tablewriter.NewWriter(out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.Alignment = tw.AlignRight
	})
	table.Header([]string{"Device", "Governor", "Cur", "Max", "Available"})
	_ = table.Bulk(rows)
	_ = table.Render()
}

func writeISP(out io.Writer, info isp.Info) {
	line := fmt.Sprintf("ISP %s: %s", info.Device, info.State)
	if len(info.Holders) > 0 {
		holders := make([]string, 0, len(info.Holders))
		for _, h := range info.Holders {
			holders = append(holders, fmt.Sprintf("%s(%d)", h.Comm, h.PID))
		}
		line += " held by " + strings.Join(holders, ", ")
	}
	if info.Format != "" {
		line += " format " + info.Format
	}
	fmt.Fprintln(out, line)
}
