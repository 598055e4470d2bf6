package collector

import (
	"context"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlLibrary is the part of nvml.Interface the strategy needs.
type nvmlLibrary interface {
	Init() nvml.Return
	Shutdown() nvml.Return
	DeviceGetHandleByIndex(index int) (nvml.Device, nvml.Return)
}

// NVMLStrategy reads GPU 0 through the NVIDIA management library. Each
// query opens and closes its own NVML session so nothing is held between
// ticks.
type NVMLStrategy struct {
	installed bool
	lib       nvmlLibrary
}

func NewNVMLStrategy(caps Capabilities) *NVMLStrategy {
	return &NVMLStrategy{installed: caps.HasNVML, lib: nvml.New()}
}

func (s *NVMLStrategy) Source() string { return "nvml" }

func (s *NVMLStrategy) Name(ctx context.Context) (string, error) {
	return s.withDevice(func(device nvml.Device) (string, nvml.Return) {
		return device.GetName()
	})
}

func (s *NVMLStrategy) Utilization(ctx context.Context) (string, error) {
	return s.withDevice(func(device nvml.Device) (string, nvml.Return) {
		rates, ret := device.GetUtilizationRates()
		if ret != nvml.SUCCESS {
			return "", ret
		}
		return fmt.Sprintf("%d %%", rates.Gpu), nvml.SUCCESS
	})
}

func (s *NVMLStrategy) Temperature(ctx context.Context) (string, error) {
	return s.withDevice(func(device nvml.Device) (string, nvml.Return) {
		temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			return "", ret
		}
		return fmt.Sprintf("%d", temp), nvml.SUCCESS
	})
}

// withDevice runs read against the first device inside one Init/Shutdown
// session.
func (s *NVMLStrategy) withDevice(read func(nvml.Device) (string, nvml.Return)) (string, error) {
	if !s.installed {
		return "", notInstalled(s.Source())
	}

	if ret := s.lib.Init(); ret != nvml.SUCCESS {
		return "", queryFailed(s.Source(), fmt.Errorf("init: %w", ret))
	}
	defer s.lib.Shutdown()

	device, ret := s.lib.DeviceGetHandleByIndex(0)
	switch {
	case ret == nvml.ERROR_NOT_FOUND || ret == nvml.ERROR_INVALID_ARGUMENT:
		return "", unavailable(s.Source(), fmt.Errorf("device 0: %w", ret))
	case ret != nvml.SUCCESS:
		return "", queryFailed(s.Source(), fmt.Errorf("device 0: %w", ret))
	}

	value, ret := read(device)
	switch {
	case ret == nvml.ERROR_NOT_SUPPORTED:
		return "", unavailable(s.Source(), ret)
	case ret != nvml.SUCCESS:
		return "", queryFailed(s.Source(), ret)
	}
	return value, nil
}
