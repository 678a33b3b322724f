// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

// Package preset maps power-management presets to the fixed set of
// sysfs writes that realizes each of them.
package preset

import (
	"fmt"
	"strconv"

	"github.com/rock5c-tools/powermode/internal/config"
	"github.com/rock5c-tools/powermode/internal/cpu"
	"github.com/rock5c-tools/powermode/internal/devfreq"
	"github.com/rock5c-tools/powermode/internal/power"
)

// Preset is one of the four fixed power-management presets
type Preset string

const (
	Low    Preset = "low"
	Medium Preset = "medium"
	NPUMax Preset = "npu_max"
	High   Preset = "high"
)

// All returns the presets in escalating power order
func All() []Preset {
	return []Preset{Low, Medium, NPUMax, High}
}

// Parse validates a preset name
func Parse(s string) (Preset, error) {
	switch Preset(s) {
	case Low, Medium, NPUMax, High:
		return Preset(s), nil
	}
	return "", fmt.Errorf("unknown preset: %q", s)
}

// Description returns a one-line summary of what the preset does
func (p Preset) Description() string {
	switch p {
	case Low:
		return "big cores offline, little cores on powersave, NPU fixed at 500MHz"
	case Medium:
		return "big cores offline, little cores on ondemand, NPU capped at 700MHz"
	case NPUMax:
		return "big cores offline, little cores on ondemand, NPU up to 1GHz"
	case High:
		return "all 8 cores online on ondemand, NPU up to 1GHz"
	default:
		return ""
	}
}

// governors written by the presets
const (
	governorPowersave = "powersave"
	governorOndemand  = "ondemand"

	npuGovernorUserspace = "userspace"
	npuGovernorOndemand  = "rknpu_ondemand"
)

// NPU frequency caps written by the presets
const (
	npuFreqLow    = 500 * power.MegaHertz
	npuFreqMedium = 700 * power.MegaHertz
	npuFreqMax    = 1000 * power.MegaHertz
)

// Write is a single (path, value) instruction
type Write struct {
	Path  string
	Value string
}

// Plan returns the ordered write set realizing the preset: core
// hotplug switches first, then cpufreq governors, then the NPU
// devfreq settings. The same preset always yields the same plan, so
// re-applying is idempotent by construction.
func Plan(p Preset, cfg *config.Config) []Write {
	sys := cfg.Host.SysFS
	little, big := cfg.CPU.LittleCores, cfg.CPU.BigCores

	var writes []Write

	bigOnline := "0"
	if p == High {
		bigOnline = "1"
	}
	for _, core := range big {
		writes = append(writes, Write{cpu.OnlinePath(sys, core), bigOnline})
	}

	littleGovernor := governorOndemand
	if p == Low {
		littleGovernor = governorPowersave
	}
	for _, core := range little {
		writes = append(writes, Write{cpu.GovernorPath(sys, core), littleGovernor})
	}
	if p == High {
		// big cores were just brought online, give them a governor too
		for _, core := range big {
			writes = append(writes, Write{cpu.GovernorPath(sys, core), governorOndemand})
		}
	}

	npuGovernor := npuGovernorOndemand
	npuFreq := npuFreqMax
	switch p {
	case Low:
		npuGovernor = npuGovernorUserspace
		npuFreq = npuFreqLow
	case Medium:
		npuFreq = npuFreqMedium
	}
	writes = append(writes,
		Write{devfreq.GovernorPath(sys, cfg.NPU.Node), npuGovernor},
		Write{devfreq.MaxFreqPath(sys, cfg.NPU.Node), hertz(npuFreq)},
	)
	if p == Low {
		// the userspace governor only picks up the fixed frequency
		// through its set_freq knob
		writes = append(writes, Write{devfreq.UserspaceFreqPath(sys, cfg.NPU.Node), hertz(npuFreqLow)})
	}

	return writes
}

func hertz(f power.Frequency) string {
	return strconv.FormatUint(f.Hertz(), 10)
}
