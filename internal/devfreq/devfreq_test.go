// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package devfreq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rock5c-tools/powermode/internal/power"
)

func fakeNPU(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	base := filepath.Join(root, "class", "devfreq", "fdab0000.npu")
	require.NoError(t, os.MkdirAll(base, 0o755))

	files := map[string]string{
		"governor":              "rknpu_ondemand\n",
		"cur_freq":              "300000000\n",
		"min_freq":              "300000000\n",
		"max_freq":              "700000000\n",
		"available_frequencies": "300000000 400000000 500000000 600000000 700000000 800000000 1000000000\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(base, name), []byte(content), 0o644))
	}
	return root
}

func TestDeviceStatus(t *testing.T) {
	dev := NewDevice(fakeNPU(t), "fdab0000.npu")
	st := dev.Status()

	assert.True(t, st.Present)
	assert.Equal(t, "rknpu_ondemand", st.Governor)
	assert.Equal(t, 300*power.MegaHertz, st.CurFreq)
	assert.Equal(t, 700*power.MegaHertz, st.MaxFreq)
	assert.Len(t, st.Available, 7)
	assert.Equal(t, 1000*power.MegaHertz, st.Available[6])
}

func TestDeviceStatusMissingNode(t *testing.T) {
	dev := NewDevice(t.TempDir(), "dmc")
	st := dev.Status()

	assert.False(t, st.Present)
	assert.Empty(t, st.Governor)
	assert.Zero(t, st.CurFreq)
	assert.Nil(t, st.Available)
}

func TestDeviceStatusPartialNode(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "class", "devfreq", "dmc")
	require.NoError(t, os.MkdirAll(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "governor"), []byte("dmc_ondemand\n"), 0o644))

	st := NewDevice(root, "dmc").Status()
	assert.True(t, st.Present)
	assert.Equal(t, "dmc_ondemand", st.Governor)
	assert.Zero(t, st.CurFreq, "missing files read as zero")
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/sys/class/devfreq/fdab0000.npu/governor", GovernorPath("/sys", "fdab0000.npu"))
	assert.Equal(t, "/sys/class/devfreq/fdab0000.npu/max_freq", MaxFreqPath("/sys", "fdab0000.npu"))
	assert.Equal(t, "/sys/class/devfreq/fdab0000.npu/userspace/set_freq", UserspaceFreqPath("/sys", "fdab0000.npu"))
}
