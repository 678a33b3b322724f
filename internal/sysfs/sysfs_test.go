// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, root string, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReaderString(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "class/devfreq/fdab0000.npu/governor", "rknpu_ondemand\n")

	r := NewReader(root)
	assert.Equal(t, "rknpu_ondemand", r.String("class", "devfreq", "fdab0000.npu", "governor"))
	assert.Equal(t, "", r.String("class", "devfreq", "missing", "governor"))
}

func TestReaderUint64(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "class/devfreq/dmc/cur_freq", "1056000000\n")
	writeFixture(t, root, "class/devfreq/dmc/garbage", "not-a-number\n")

	r := NewReader(root)
	assert.Equal(t, uint64(1056000000), r.Uint64("class", "devfreq", "dmc", "cur_freq"))
	assert.Equal(t, uint64(0), r.Uint64("class", "devfreq", "dmc", "garbage"))
	assert.Equal(t, uint64(0), r.Uint64("class", "devfreq", "dmc", "missing"))
}

func TestReaderFields(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "class/devfreq/npu/available_frequencies", "300000000 500000000 1000000000\n")

	r := NewReader(root)
	freqs := r.Fields("class", "devfreq", "npu", "available_frequencies")
	assert.Equal(t, []string{"300000000", "500000000", "1000000000"}, freqs)
	assert.Nil(t, r.Fields("class", "devfreq", "npu", "missing"))
}

func TestReaderExists(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "devices/system/cpu/cpu4/online", "1\n")

	r := NewReader(root)
	assert.True(t, r.Exists("devices", "system", "cpu", "cpu4", "online"))
	assert.False(t, r.Exists("devices", "system", "cpu", "cpu9", "online"))
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaling_governor")

	w := FileWriter{}
	require.NoError(t, w.Write(path, "powersave"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "powersave\n", string(data))
}

func TestFileWriterMissingDir(t *testing.T) {
	w := FileWriter{}
	err := w.Write(filepath.Join(t.TempDir(), "no", "such", "dir", "online"), "0")
	assert.Error(t, err)
}
