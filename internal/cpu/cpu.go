// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpu models the two cpufreq clusters of the RK3588S: the
// little A55 cluster (cores 0-3) and the big A76 cluster (cores 4-7).
package cpu

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	procsysfs "github.com/prometheus/procfs/sysfs"

	"github.com/rock5c-tools/powermode/internal/power"
	"github.com/rock5c-tools/powermode/internal/sysfs"
)

// Core is the observed state of a single CPU core
type Core struct {
	ID       int
	Online   bool
	Governor string
	CurFreq  power.Frequency
	MinFreq  power.Frequency
	MaxFreq  power.Frequency
}

// Cluster is an ordered, fixed set of cores
type Cluster struct {
	Name  string
	Cores []Core
}

// OnlineCount returns how many cores of the cluster are online
func (c Cluster) OnlineCount() int {
	n := 0
	for _, core := range c.Cores {
		if core.Online {
			n++
		}
	}
	return n
}

// Snapshot is the observed state of both clusters
type Snapshot struct {
	Little Cluster
	Big    Cluster
}

// OnlinePath returns the sysfs hotplug switch for a core
func OnlinePath(sysRoot string, core int) string {
	return filepath.Join(sysRoot, "devices", "system", "cpu", fmt.Sprintf("cpu%d", core), "online")
}

// GovernorPath returns the sysfs cpufreq governor file for a core
func GovernorPath(sysRoot string, core int) string {
	return filepath.Join(sysRoot, "devices", "system", "cpu", fmt.Sprintf("cpu%d", core), "cpufreq", "scaling_governor")
}

// Reader reads cluster state from sysfs. It never fails: anything
// unreadable is reported as the zero value.
type Reader struct {
	logger *slog.Logger
	sys    *sysfs.Reader
	little []int
	big    []int
}

type OptionFn func(*Reader)

// WithLogger sets the logger for the Reader
func WithLogger(logger *slog.Logger) OptionFn {
	return func(r *Reader) {
		r.logger = logger.With("service", "cpu")
	}
}

// NewReader creates a cluster reader over the given sysfs mount
func NewReader(sysRoot string, little, big []int, opts ...OptionFn) *Reader {
	r := &Reader{
		logger: slog.Default().With("service", "cpu"),
		sys:    sysfs.NewReader(sysRoot),
		little: little,
		big:    big,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot reads the current state of both clusters
func (r *Reader) Snapshot() *Snapshot {
	stats := r.cpufreqStats()
	return &Snapshot{
		Little: r.cluster("little", r.little, stats),
		Big:    r.cluster("big", r.big, stats),
	}
}

func (r *Reader) cluster(name string, cores []int, stats map[string]procsysfs.SystemCPUCpufreqStats) Cluster {
	cl := Cluster{Name: name, Cores: make([]Core, 0, len(cores))}
	for _, id := range cores {
		core := Core{ID: id, Online: r.online(id)}
		if st, ok := stats[strconv.Itoa(id)]; ok {
			core.Governor = st.Governor
			core.CurFreq = kiloHertz(st.ScalingCurrentFrequency)
			core.MinFreq = kiloHertz(st.ScalingMinimumFrequency)
			core.MaxFreq = kiloHertz(st.ScalingMaximumFrequency)
		}
		cl.Cores = append(cl.Cores, core)
	}
	return cl
}

// online reports whether a core is online. cpu0 has no hotplug switch
// on this platform and counts as online as long as its sysfs directory
// exists.
func (r *Reader) online(core int) bool {
	cpuDir := fmt.Sprintf("cpu%d", core)
	if !r.sys.Exists("devices", "system", "cpu", cpuDir) {
		return false
	}
	if !r.sys.Exists("devices", "system", "cpu", cpuDir, "online") {
		return true
	}
	return r.sys.String("devices", "system", "cpu", cpuDir, "online") == "1"
}

// cpufreqStats reads per-core cpufreq state, keyed by core number.
// Offline cores have no cpufreq directory and are simply absent.
func (r *Reader) cpufreqStats() map[string]procsysfs.SystemCPUCpufreqStats {
	fs, err := procsysfs.NewFS(r.sys.Root())
	if err != nil {
		r.logger.Debug("cpufreq state unavailable", "error", err)
		return nil
	}

	all, err := fs.SystemCpufreq()
	if err != nil {
		r.logger.Debug("failed to read cpufreq state", "error", err)
		return nil
	}

	stats := make(map[string]procsysfs.SystemCPUCpufreqStats, len(all))
	for _, st := range all {
		stats[st.Name] = st
	}
	return stats
}

// kiloHertz converts an optional cpufreq kHz value to a Frequency
func kiloHertz(v *uint64) power.Frequency {
	if v == nil {
		return 0
	}
	return power.Frequency(*v) * power.KiloHertz
}
