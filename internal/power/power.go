// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package power

import "fmt"

// Power represents power draw as float64 MicroWatts.
// Use Watts, MilliWatts and MicroWatts to get the value in the
// respective unit
type Power float64

const (
	MicroWatt Power = 1.0
	MilliWatt       = 1000 * MicroWatt
	Watt            = 1000 * MilliWatt
)

func (p Power) MicroWatts() float64 {
	return float64(p)
}

func (p Power) MilliWatts() float64 {
	return float64(p / MilliWatt)
}

func (p Power) Watts() float64 {
	return float64(p / Watt)
}

func (p Power) String() string {
	return fmt.Sprintf("%.2fW", p.Watts())
}

// Frequency represents a device operating frequency as an uint64
// Hertz count, matching the unit devfreq nodes report
type Frequency uint64

const (
	Hertz     Frequency = 1
	KiloHertz           = 1000 * Hertz
	MegaHertz           = 1000 * KiloHertz
	GigaHertz           = 1000 * MegaHertz
)

func (f Frequency) Hertz() uint64 {
	return uint64(f)
}

func (f Frequency) KiloHertz() float64 {
	return float64(f) / float64(KiloHertz)
}

func (f Frequency) MegaHertz() float64 {
	return float64(f) / float64(MegaHertz)
}

func (f Frequency) String() string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%.0fMHz", f.MegaHertz())
}
