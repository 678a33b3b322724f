// SPDX-FileCopyrightText: 2025 The powermode Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type (
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	// Host holds mount points of the kernel pseudo-filesystems and the
	// device directory. Overridable so tests can point at fixtures.
	Host struct {
		SysFS  string `yaml:"sysfs"`
		ProcFS string `yaml:"procfs"`
		DevDir string `yaml:"devDir"`
	}

	// CPU describes the two cpufreq clusters of the RK3588S
	CPU struct {
		LittleCores []int `yaml:"littleCores"`
		BigCores    []int `yaml:"bigCores"`
	}

	// Devfreq names a node under <sysfs>/class/devfreq
	Devfreq struct {
		Node string `yaml:"node"`
	}

	ISP struct {
		// Device is the V4L2 node name under the device directory
		Device string `yaml:"device"`
	}

	Status struct {
		Watch    bool          `yaml:"watch"`
		Interval time.Duration `yaml:"interval"`
	}

	Config struct {
		Log    Log     `yaml:"log"`
		Host   Host    `yaml:"host"`
		CPU    CPU     `yaml:"cpu"`
		NPU    Devfreq `yaml:"npu"`
		Memory Devfreq `yaml:"memory"`
		ISP    ISP     `yaml:"isp"`
		Status Status  `yaml:"status"`
	}
)

const (
	// Flags
	LogLevelFlag      = "log.level"
	LogFormatFlag     = "log.format"
	HostSysFSFlag     = "host.sysfs"
	HostProcFSFlag    = "host.procfs"
	WatchFlag         = "watch"
	WatchIntervalFlag = "watch.interval"
)

// DefaultConfig returns a Config with defaults for a Rock 5C
func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Host: Host{
			SysFS:  "/sys",
			ProcFS: "/proc",
			DevDir: "/dev",
		},
		CPU: CPU{
			LittleCores: []int{0, 1, 2, 3},
			BigCores:    []int{4, 5, 6, 7},
		},
		NPU:    Devfreq{Node: "fdab0000.npu"},
		Memory: Devfreq{Node: "dmc"},
		ISP:    ISP{Device: "video11"},
		Status: Status{
			Watch:    false,
			Interval: 2 * time.Second,
		},
	}
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromFile loads configuration from a file
func FromFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

type ConfigUpdaterFn func(*Config) error

// RegisterFlags registers command-line flags with the kingpin app and
// returns a ConfigUpdaterFn that applies parsed flags on top of the
// config, since command line arguments override config file settings
func RegisterFlags(app *kingpin.Application) ConfigUpdaterFn {
	// track flags that were explicitly set
	flagsSet := map[string]bool{}

	app.PreAction(func(ctx *kingpin.ParseContext) error {
		// Clear the map in case this function is called multiple times
		flagsSet = map[string]bool{}

		for _, element := range ctx.Elements {
			if flag, ok := element.Clause.(*kingpin.FlagClause); ok && element.Value != nil {
				flagsSet[flag.Model().Name] = true
			}
		}
		return nil
	})

	logLevel := app.Flag(LogLevelFlag, "Logging level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	logFormat := app.Flag(LogFormatFlag, "Logging format: text or json").Default("text").Enum("text", "json")
	sysFS := app.Flag(HostSysFSFlag, "Path to sysfs mount point").Default("/sys").String()
	procFS := app.Flag(HostProcFSFlag, "Path to procfs mount point").Default("/proc").String()
	watch := app.Flag(WatchFlag, "Keep re-rendering the status report").Bool()
	watchInterval := app.Flag(WatchIntervalFlag, "Interval between status reports in watch mode").Default("2s").Duration()

	return func(cfg *Config) error {
		if flagsSet[LogLevelFlag] {
			cfg.Log.Level = *logLevel
		}
		if flagsSet[LogFormatFlag] {
			cfg.Log.Format = *logFormat
		}
		if flagsSet[HostSysFSFlag] {
			cfg.Host.SysFS = *sysFS
		}
		if flagsSet[HostProcFSFlag] {
			cfg.Host.ProcFS = *procFS
		}
		if flagsSet[WatchFlag] {
			cfg.Status.Watch = *watch
		}
		if flagsSet[WatchIntervalFlag] {
			cfg.Status.Interval = *watchInterval
		}

		cfg.sanitize()
		return cfg.Validate()
	}
}

func (c *Config) sanitize() {
	c.Log.Level = strings.TrimSpace(c.Log.Level)
	c.Log.Format = strings.TrimSpace(c.Log.Format)
	c.Host.SysFS = strings.TrimSpace(c.Host.SysFS)
	c.Host.ProcFS = strings.TrimSpace(c.Host.ProcFS)
	c.Host.DevDir = strings.TrimSpace(c.Host.DevDir)
	c.NPU.Node = strings.TrimSpace(c.NPU.Node)
	c.Memory.Node = strings.TrimSpace(c.Memory.Node)
	c.ISP.Device = strings.TrimSpace(c.ISP.Device)
}

// Validate checks for configuration errors
func (c *Config) Validate() error {
	var errs []string

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s", c.Log.Level))
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s", c.Log.Format))
	}

	if c.Host.SysFS == "" {
		errs = append(errs, "host sysfs path must not be empty")
	}
	if c.Host.ProcFS == "" {
		errs = append(errs, "host procfs path must not be empty")
	}

	if len(c.CPU.LittleCores) == 0 {
		errs = append(errs, "cpu little core list must not be empty")
	}
	if len(c.CPU.BigCores) == 0 {
		errs = append(errs, "cpu big core list must not be empty")
	}
	seen := map[int]bool{}
	for _, core := range append(append([]int{}, c.CPU.LittleCores...), c.CPU.BigCores...) {
		if core < 0 {
			errs = append(errs, fmt.Sprintf("invalid core id: %d", core))
		}
		if seen[core] {
			errs = append(errs, fmt.Sprintf("duplicate core id: %d", core))
		}
		seen[core] = true
	}

	if c.NPU.Node == "" {
		errs = append(errs, "npu devfreq node must not be empty")
	}
	if c.Memory.Node == "" {
		errs = append(errs, "memory devfreq node must not be empty")
	}

	if c.Status.Interval <= 0 {
		errs = append(errs, fmt.Sprintf("watch interval must be positive: %s", c.Status.Interval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, ", "))
	}

	return nil
}

func (c *Config) String() string {
	bytes, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return string(bytes)
}
