package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DRMStrategy enumerates GPUs through the kernel's DRM class in sysfs. It
// is vendor neutral: any card whose PCI class is a display controller
// counts, which covers amdgpu, i915, nouveau and the proprietary nvidia
// driver alike.
type DRMStrategy struct {
	installed bool
	sysRoot   string
	procRoot  string
}

func NewDRMStrategy(caps Capabilities) *DRMStrategy {
	return &DRMStrategy{installed: caps.HasDRM, sysRoot: "/sys", procRoot: "/proc"}
}

// newDRMStrategyFrom points the strategy at synthetic roots for tests.
func newDRMStrategyFrom(sysRoot, procRoot string) *DRMStrategy {
	return &DRMStrategy{installed: true, sysRoot: sysRoot, procRoot: procRoot}
}

func (s *DRMStrategy) Source() string { return "drm" }

func (s *DRMStrategy) Name(ctx context.Context) (string, error) {
	devicePath, err := s.firstGPU()
	if err != nil {
		return "", err
	}

	vendor, deviceID, pciSlot := parsePCIUevent(devicePath)
	if readDriverName(devicePath) == "nvidia" && pciSlot != "" {
		if model := s.nvidiaModel(pciSlot); model != "" {
			return model, nil
		}
	}
	name := strings.TrimSpace(vendor + " " + deviceID)
	if name == "" {
		return "", unavailable(s.Source(), errors.New("no PCI identity in uevent"))
	}
	return name, nil
}

func (s *DRMStrategy) Utilization(ctx context.Context) (string, error) {
	devicePath, err := s.firstGPU()
	if err != nil {
		return "", err
	}
	busy, err := readSysfsInt(filepath.Join(devicePath, "gpu_busy_percent"))
	if err != nil {
		return "", s.readError(err)
	}
	return fmt.Sprintf("%d %%", busy), nil
}

func (s *DRMStrategy) Temperature(ctx context.Context) (string, error) {
	devicePath, err := s.firstGPU()
	if err != nil {
		return "", err
	}

	hwmonBase := filepath.Join(devicePath, "hwmon")
	entries, err := os.ReadDir(hwmonBase)
	if err != nil {
		return "", s.readError(err)
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		millidegrees, err := readSysfsInt(filepath.Join(hwmonBase, entry.Name(), "temp1_input"))
		if err != nil {
			continue
		}
		return strconv.Itoa(millidegrees / 1000), nil
	}
	return "", unavailable(s.Source(), errors.New("no hwmon temperature input"))
}

// firstGPU returns the device directory of the lowest numbered card whose
// PCI class is a display controller (0x03xxxx).
func (s *DRMStrategy) firstGPU() (string, error) {
	if !s.installed {
		return "", notInstalled(s.Source())
	}

	drmBase := filepath.Join(s.sysRoot, "class/drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		return "", s.readError(err)
	}

	var cards []string
	for _, entry := range entries {
		if isCardDevice(entry.Name()) {
			cards = append(cards, entry.Name())
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cardIndex(cards[i]) < cardIndex(cards[j]) })

	for _, card := range cards {
		devicePath := filepath.Join(drmBase, card, "device")
		class := strings.ToLower(readSysfsString(filepath.Join(devicePath, "class")))
		if strings.HasPrefix(class, "0x03") {
			return devicePath, nil
		}
	}
	return "", unavailable(s.Source(), errors.New("no display controller among DRM cards"))
}

// nvidiaModel reads the "Model:" line the proprietary driver publishes in
// /proc/driver/nvidia/gpus/<slot>/information.
func (s *DRMStrategy) nvidiaModel(pciSlot string) string {
	data, err := os.ReadFile(filepath.Join(s.procRoot, "driver/nvidia/gpus", pciSlot, "information"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "Model" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// readError maps sysfs read failures: a missing file means the driver does
// not expose the metric, anything else is a failed query.
func (s *DRMStrategy) readError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return unavailable(s.Source(), err)
	}
	return queryFailed(s.Source(), err)
}

// isCardDevice returns true for DRM card device names (card0, card1, ...)
// but not connectors (card0-DP-1) or render nodes (renderD128).
func isCardDevice(name string) bool {
	return cardIndex(name) >= 0
}

func cardIndex(name string) int {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return -1
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return -1
		}
	}
	index, err := strconv.Atoi(suffix)
	if err != nil {
		return -1
	}
	return index
}

// readDriverName returns the basename of the device's driver symlink.
func readDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

// parsePCIUevent extracts vendor name, device ID and PCI slot from the
// device's uevent file:
//
//	PCI_ID=1002:744A
//	PCI_SLOT_NAME=0000:c3:00.0
func parsePCIUevent(devicePath string) (vendor, deviceID, pciSlot string) {
	data, err := os.ReadFile(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return "", "", ""
	}

	var rawVendorID, rawDeviceID string
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "PCI_ID":
			if v, d, ok := strings.Cut(value, ":"); ok {
				rawVendorID = strings.ToLower(v)
				rawDeviceID = strings.ToLower(d)
			}
		case "PCI_SLOT_NAME":
			pciSlot = value
		}
	}

	vendor = pciVendorName(rawVendorID)
	if rawDeviceID != "" {
		deviceID = "0x" + rawDeviceID
	}
	return vendor, deviceID, pciSlot
}

func pciVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD"
	case "10de":
		return "NVIDIA"
	case "8086":
		return "Intel"
	case "":
		return ""
	default:
		return "0x" + vendorID
	}
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readSysfsInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
