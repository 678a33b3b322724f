// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package power

// Wattage bands measured for the Rock 5C under the four presets. The
// band is picked from the observed configuration, not from the preset
// name, so a half-applied or externally modified system still reports
// something sensible.
const (
	drawUnknown   = 2.00 * Watt // NPU devfreq not readable
	drawNPULow    = 2.25 * Watt // big cluster offline, NPU capped below 600MHz
	drawNPUMedium = 2.75 * Watt // big cluster offline, NPU capped below 1GHz
	drawNPUMax    = 3.25 * Watt // big cluster offline, NPU at full 1GHz
	drawAllCores  = 3.75 * Watt // any big core online

	drawISPActive = 1.10 * Watt // additive while the ISP pipeline is streaming
)

// Estimate returns the estimated total power draw for the observed
// configuration: number of big cores online, the NPU max frequency
// cap (0 when unreadable) and whether the ISP is actively held open.
func Estimate(bigCoresOnline int, npuMax Frequency, ispActive bool) Power {
	var draw Power
	switch {
	case bigCoresOnline > 0:
		draw = drawAllCores
	case npuMax >= 1000*MegaHertz:
		draw = drawNPUMax
	case npuMax >= 600*MegaHertz:
		draw = drawNPUMedium
	case npuMax > 0:
		draw = drawNPULow
	default:
		draw = drawUnknown
	}

	if ispActive {
		draw += drawISPActive
	}
	return draw
}
