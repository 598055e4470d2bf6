package collector

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"devmon/log"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/klauspost/cpuid/v2"
)

// Capabilities records which optional query backends exist on this host.
// Probes read these flags instead of re-detecting on every tick.
type Capabilities struct {
	HasCPUID   bool
	HasNVML    bool
	HasDRM     bool
	HasSensors bool
}

var (
	caps     Capabilities
	capsOnce sync.Once
)

// DetectCapabilities probes the host once per process and returns the
// cached result on every later call.
func DetectCapabilities() Capabilities {
	capsOnce.Do(func() {
		caps = Capabilities{
			HasCPUID:   detectCPUID(),
			HasNVML:    detectNVML(nvml.New()),
			HasDRM:     detectDRM("/sys"),
			HasSensors: sensorsSupported(runtime.GOOS),
		}

		log.Info().Msg("╭─ Monitor Capabilities ────────────────────────────────────╮")
		logCap("CPUID", caps.HasCPUID, "(cpu identity)")
		logCap("NVML", caps.HasNVML, "(nvidia management library)")
		logCap("DRM", caps.HasDRM, "(gpu device enumeration)")
		logCap("Sensors", caps.HasSensors, "(cpu temperature)")
		log.Info().Msg("╰───────────────────────────────────────────────────────────╯")
	})
	return caps
}

func logCap(name string, available bool, desc string) {
	icon := "✗"
	status := "unavailable"
	if available {
		icon = "✓"
		status = "enabled"
	}
	log.Info().Msgf("│ %s %-10s │ %-11s │ %-28s │", icon, name, status, desc)
}

func detectCPUID() bool {
	return cpuid.CPU.VendorID != cpuid.VendorUnknown || strings.TrimSpace(cpuid.CPU.BrandName) != ""
}

// detectNVML opens and immediately closes an NVML session. A missing
// libnvidia-ml fails Init.
func detectNVML(lib nvmlLibrary) bool {
	if ret := lib.Init(); ret != nvml.SUCCESS {
		log.Debug().Str("result", ret.Error()).Msg("NVML init failed")
		return false
	}
	lib.Shutdown()
	return true
}

// detectDRM reports whether the kernel exposes at least one DRM card.
func detectDRM(sysRoot string) bool {
	entries, err := os.ReadDir(filepath.Join(sysRoot, "class/drm"))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if isCardDevice(entry.Name()) {
			return true
		}
	}
	return false
}

// sensorsSupported gates the thermal probe: gopsutil's sensor readings are
// only reliable from hwmon on Linux.
func sensorsSupported(goos string) bool {
	return goos == "linux"
}
