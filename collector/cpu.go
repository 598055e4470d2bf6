package collector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Prober is a single best-effort query against one backend. Errors are
// always *ProbeError.
type Prober[T any] interface {
	Query(ctx context.Context) (T, error)
}

// CPUIdentity reports the CPU brand string from the CPUID instruction. When
// CPUID has no brand (arm64) the OS model name is used instead.
type CPUIdentity struct {
	installed bool
	brand     func() string
	info      func(ctx context.Context) ([]cpu.InfoStat, error)
}

func NewCPUIdentity(caps Capabilities) *CPUIdentity {
	return &CPUIdentity{
		installed: caps.HasCPUID,
		brand:     func() string { return cpuid.CPU.BrandName },
		info:      cpu.InfoWithContext,
	}
}

func (p *CPUIdentity) Query(ctx context.Context) (string, error) {
	if !p.installed {
		return "", notInstalled("cpu_identity")
	}
	if name := strings.TrimSpace(p.brand()); name != "" {
		return name, nil
	}
	if name := p.modelName(ctx); name != "" {
		return name, nil
	}
	return "", unavailable("cpu_identity", errors.New("brand string is empty"))
}

func (p *CPUIdentity) modelName(ctx context.Context) string {
	if p.info == nil {
		return ""
	}
	infos, err := p.info(ctx)
	if err != nil || len(infos) == 0 {
		return ""
	}
	return strings.TrimSpace(infos[0].ModelName)
}

// CPULoad samples aggregate CPU utilization. Query blocks for the whole
// sample window.
type CPULoad struct {
	window  time.Duration
	percent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
}

func NewCPULoad(window time.Duration) *CPULoad {
	return &CPULoad{window: window, percent: cpu.PercentWithContext}
}

func (p *CPULoad) Query(ctx context.Context) (float64, error) {
	percent, err := p.percent(ctx, p.window, false)
	if err != nil {
		return 0, queryFailed("cpu_load", err)
	}
	if len(percent) == 0 {
		return 0, unavailable("cpu_load", errors.New("no samples"))
	}
	return percent[0], nil
}

// CPUThermal reads the CPU temperature from the OS sensor API. Only
// supported on Linux; elsewhere the sensor function is never called.
type CPUThermal struct {
	supported bool
	groups    []string
	sensors   func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewCPUThermal(caps Capabilities, groups []string) *CPUThermal {
	return &CPUThermal{
		supported: caps.HasSensors,
		groups:    groups,
		sensors:   host.SensorsTemperaturesWithContext,
	}
}

func (p *CPUThermal) Query(ctx context.Context) (float64, error) {
	if !p.supported {
		return 0, unavailable("cpu_thermal", errors.New("sensor API not supported on this platform"))
	}

	temps, err := p.sensors(ctx)
	// gopsutil returns readings alongside warnings for unreadable hwmon
	// entries; only a call that produced nothing is a failure.
	if err != nil && len(temps) == 0 {
		return 0, queryFailed("cpu_thermal", err)
	}

	for _, group := range p.groups {
		if temp, ok := groupTemperature(temps, group); ok {
			return temp, nil
		}
	}
	return 0, unavailable("cpu_thermal", errors.New("no matching sensor group"))
}

// packageLabels name the whole-package reading of common hwmon CPU drivers
// (coretemp, k10temp), in order of preference.
var packageLabels = []string{"package_id_0", "tctl", "tdie"}

// groupTemperature picks the package reading of a group. gopsutil globs
// temp*_input, so temp10 sorts before temp1 and list order says nothing
// about which sensor is the package one. Without a package label the first
// reading of the group is used.
func groupTemperature(temps []host.TemperatureStat, group string) (float64, bool) {
	for _, label := range packageLabels {
		for _, t := range temps {
			if t.SensorKey == group+"_"+label {
				return t.Temperature, true
			}
		}
	}
	for _, t := range temps {
		if inSensorGroup(t.SensorKey, group) {
			return t.Temperature, true
		}
	}
	return 0, false
}

// inSensorGroup matches gopsutil sensor keys such as "coretemp_package_id_0"
// against a hwmon driver name such as "coretemp".
func inSensorGroup(key, group string) bool {
	return key == group || strings.HasPrefix(key, group+"_")
}
