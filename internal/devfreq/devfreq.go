// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package devfreq reads the state of devfreq-managed devices, on this
// board the RKNPU and the memory controller (dmc). There is no devfreq
// support in prometheus/procfs, so the class nodes are read directly.
package devfreq

import (
	"path/filepath"
	"strconv"

	"github.com/rock5c-tools/powermode/internal/power"
	"github.com/rock5c-tools/powermode/internal/sysfs"
)

// Status is the observed state of one devfreq device
type Status struct {
	Name      string
	Present   bool
	Governor  string
	CurFreq   power.Frequency
	MinFreq   power.Frequency
	MaxFreq   power.Frequency
	Available []power.Frequency
}

// GovernorPath returns the governor file of a devfreq node
func GovernorPath(sysRoot, node string) string {
	return filepath.Join(sysRoot, "class", "devfreq", node, "governor")
}

// MaxFreqPath returns the max_freq cap file of a devfreq node
func MaxFreqPath(sysRoot, node string) string {
	return filepath.Join(sysRoot, "class", "devfreq", node, "max_freq")
}

// UserspaceFreqPath returns the set_freq file honored by the
// userspace governor
func UserspaceFreqPath(sysRoot, node string) string {
	return filepath.Join(sysRoot, "class", "devfreq", node, "userspace", "set_freq")
}

// Device reads one devfreq node below a sysfs mount
type Device struct {
	name string
	sys  *sysfs.Reader
}

// NewDevice creates a reader for the named node under
// <sysRoot>/class/devfreq
func NewDevice(sysRoot, name string) *Device {
	return &Device{
		name: name,
		sys:  sysfs.NewReader(sysRoot),
	}
}

// Name returns the devfreq node name
func (d *Device) Name() string {
	return d.name
}

// Status reads the current device state. A missing node yields
// Present == false with zero values, never an error.
func (d *Device) Status() Status {
	st := Status{
		Name:    d.name,
		Present: d.sys.Exists("class", "devfreq", d.name),
	}
	if !st.Present {
		return st
	}

	st.Governor = d.sys.String("class", "devfreq", d.name, "governor")
	st.CurFreq = power.Frequency(d.sys.Uint64("class", "devfreq", d.name, "cur_freq"))
	st.MinFreq = power.Frequency(d.sys.Uint64("class", "devfreq", d.name, "min_freq"))
	st.MaxFreq = power.Frequency(d.sys.Uint64("class", "devfreq", d.name, "max_freq"))

	for _, f := range d.sys.Fields("class", "devfreq", d.name, "available_frequencies") {
		hz, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			continue
		}
		st.Available = append(st.Available, power.Frequency(hz))
	}
	return st
}
