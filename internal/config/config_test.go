// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/sys", cfg.Host.SysFS)
	assert.Equal(t, "/proc", cfg.Host.ProcFS)
	assert.Equal(t, "/dev", cfg.Host.DevDir)
	assert.Equal(t, []int{0, 1, 2, 3}, cfg.CPU.LittleCores)
	assert.Equal(t, []int{4, 5, 6, 7}, cfg.CPU.BigCores)
	assert.Equal(t, "fdab0000.npu", cfg.NPU.Node)
	assert.Equal(t, "dmc", cfg.Memory.Node)
	assert.Equal(t, "video11", cfg.ISP.Device)
	assert.Equal(t, 2*time.Second, cfg.Status.Interval)

	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	yamlData := `
log:
  level: debug
  format: json
host:
  sysfs: /fake/sys
npu:
  node: fdab0000.npu
isp:
  device: video9
status:
  interval: 5s
`
	cfg, err := Load(strings.NewReader(yamlData))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/fake/sys", cfg.Host.SysFS)
	// unset fields keep defaults
	assert.Equal(t, "/proc", cfg.Host.ProcFS)
	assert.Equal(t, "video9", cfg.ISP.Device)
	assert.Equal(t, 5*time.Second, cfg.Status.Interval)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(strings.NewReader("log: [not a mapping"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{{
		name:   "invalid log level",
		mutate: func(c *Config) { c.Log.Level = "verbose" },
		errMsg: "invalid log level",
	}, {
		name:   "invalid log format",
		mutate: func(c *Config) { c.Log.Format = "xml" },
		errMsg: "invalid log format",
	}, {
		name:   "empty sysfs",
		mutate: func(c *Config) { c.Host.SysFS = "" },
		errMsg: "sysfs",
	}, {
		name:   "empty little cores",
		mutate: func(c *Config) { c.CPU.LittleCores = nil },
		errMsg: "little core",
	}, {
		name:   "duplicate core",
		mutate: func(c *Config) { c.CPU.BigCores = []int{3, 4} },
		errMsg: "duplicate core id: 3",
	}, {
		name:   "negative core",
		mutate: func(c *Config) { c.CPU.BigCores = []int{-1} },
		errMsg: "invalid core id",
	}, {
		name:   "empty npu node",
		mutate: func(c *Config) { c.NPU.Node = "" },
		errMsg: "npu devfreq node",
	}, {
		name:   "zero interval",
		mutate: func(c *Config) { c.Status.Interval = 0 },
		errMsg: "watch interval",
	}}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestRegisterFlagsOverridesConfig(t *testing.T) {
	app := kingpin.New("powermode-test", "")
	update := RegisterFlags(app)

	_, err := app.Parse([]string{
		"--log.level", "debug",
		"--host.sysfs", "/fixtures/sys",
		"--watch",
		"--watch.interval", "10s",
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Log.Level = "warn" // pretend the config file set this
	require.NoError(t, update(cfg))

	assert.Equal(t, "debug", cfg.Log.Level, "flag overrides config file")
	assert.Equal(t, "/fixtures/sys", cfg.Host.SysFS)
	assert.True(t, cfg.Status.Watch)
	assert.Equal(t, 10*time.Second, cfg.Status.Interval)
	assert.Equal(t, "text", cfg.Log.Format, "unset flags keep config values")
}

func TestRegisterFlagsUnsetKeepsConfig(t *testing.T) {
	app := kingpin.New("powermode-test", "")
	update := RegisterFlags(app)

	_, err := app.Parse([]string{})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Log.Level = "error"
	require.NoError(t, update(cfg))
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestConfigString(t *testing.T) {
	s := DefaultConfig().String()
	assert.Contains(t, s, "level: info")
	assert.Contains(t, s, "sysfs: /sys")
}
