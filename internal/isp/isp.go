// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package isp derives the state of the image signal processor pipeline
// from its V4L2 device node. The node existing means the driver is
// loaded; a process holding the node open is taken as the pipeline
// being active. The open-handle check is a heuristic: processes in
// other namespaces may be missed, which mirrors how operators already
// read this report.
package isp

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/prometheus/procfs"
)

// State is the derived tri-state of the ISP
type State int

const (
	StateNotAvailable State = iota
	StateIdle
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "not-available"
	}
}

// Holder identifies a process holding the device node open
type Holder struct {
	PID  int
	Comm string
}

// Info is the result of one probe
type Info struct {
	Device  string
	State   State
	Holders []Holder
	Format  string
}

// Active reports whether the ISP pipeline is in use
func (i Info) Active() bool {
	return i.State == StateActive
}

// procInfo wraps the methods of procfs.Proc the probe needs, so tests
// can substitute fake processes
type procInfo interface {
	PID() int
	Comm() (string, error)
	FileDescriptorTargets() ([]string, error)
}

type procWrapper struct {
	proc procfs.Proc
}

var _ procInfo = (*procWrapper)(nil)

func (p *procWrapper) PID() int {
	return p.proc.PID
}

func (p *procWrapper) Comm() (string, error) {
	return p.proc.Comm()
}

func (p *procWrapper) FileDescriptorTargets() ([]string, error) {
	return p.proc.FileDescriptorTargets()
}

type allProcReader interface {
	AllProcs() ([]procInfo, error)
}

// procFSReader is the default allProcReader backed by procfs
type procFSReader struct {
	fs procfs.FS
}

func (r *procFSReader) AllProcs() ([]procInfo, error) {
	procs, err := r.fs.AllProcs()
	if err != nil {
		return nil, err
	}
	ret := make([]procInfo, len(procs))
	for i, proc := range procs {
		ret[i] = &procWrapper{proc: proc}
	}
	return ret, nil
}

// execCommand is swapped out in tests
var execCommand = exec.Command

// Probe inspects one V4L2 device node
type Probe struct {
	logger  *slog.Logger
	devPath string
	procs   allProcReader
}

type OptionFn func(*Probe)

// WithLogger sets the logger for the Probe
func WithLogger(logger *slog.Logger) OptionFn {
	return func(p *Probe) {
		p.logger = logger.With("service", "isp")
	}
}

// withProcReader substitutes the process scanner; used by tests
func withProcReader(r allProcReader) OptionFn {
	return func(p *Probe) {
		p.procs = r
	}
}

// NewProbe creates a probe for devPath using the procfs mounted at
// procRoot for the open-handle scan
func NewProbe(devPath, procRoot string, opts ...OptionFn) *Probe {
	p := &Probe{
		logger:  slog.Default().With("service", "isp"),
		devPath: devPath,
	}
	if fs, err := procfs.NewFS(procRoot); err == nil {
		p.procs = &procFSReader{fs: fs}
	} else {
		p.logger.Debug("procfs unavailable, open-handle scan disabled", "error", err)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inspect probes the device node and derives the ISP state
func (p *Probe) Inspect() Info {
	info := Info{Device: p.devPath}

	if _, err := os.Stat(p.devPath); err != nil {
		info.State = StateNotAvailable
		return info
	}

	info.State = StateIdle
	info.Holders = p.holders()
	if len(info.Holders) > 0 {
		info.State = StateActive
	}
	info.Format = p.queryFormat()
	return info
}

// holders scans all processes for open file descriptors pointing at the
// device node. Per-process errors are ignored: processes exit between
// listing and inspection, and fd links of foreign processes are not
// readable without privilege.
func (p *Probe) holders() []Holder {
	if p.procs == nil {
		return nil
	}

	procs, err := p.procs.AllProcs()
	if err != nil {
		p.logger.Debug("failed to list processes", "error", err)
		return nil
	}

	var holders []Holder
	for _, proc := range procs {
		targets, err := proc.FileDescriptorTargets()
		if err != nil {
			continue
		}
		for _, target := range targets {
			if target != p.devPath {
				continue
			}
			comm, err := proc.Comm()
			if err != nil {
				comm = ""
			}
			holders = append(holders, Holder{PID: proc.PID(), Comm: comm})
			break
		}
	}
	return holders
}

// queryFormat asks v4l2-ctl for the configured capture format.
// Best-effort: returns "" when the tool is missing or unhappy.
func (p *Probe) queryFormat() string {
	out, err := execCommand("v4l2-ctl", "-d", p.devPath, "--get-fmt-video").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.logger.Debug("v4l2-ctl not available", "error", err)
		}
		return ""
	}

	var width, pixfmt string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Width/Height"); ok {
			width = trimFieldValue(v)
		}
		if v, ok := strings.CutPrefix(line, "Pixel Format"); ok {
			pixfmt = trimFieldValue(v)
		}
	}

	switch {
	case width != "" && pixfmt != "":
		return width + " " + pixfmt
	case width != "":
		return width
	default:
		return pixfmt
	}
}

// trimFieldValue strips the "  : " separator of v4l2-ctl field lines
func trimFieldValue(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), ":"))
}
