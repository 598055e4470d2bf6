package models

import "time"

const bytesPerGiB = 1024 * 1024 * 1024

// MemoryInfo holds physical memory in gibibytes
type MemoryInfo struct {
	TotalGiB     float64 `json:"totalGiB"`
	AvailableGiB float64 `json:"availableGiB"`
}

// MemoryFromBytes converts raw byte counts to a MemoryInfo.
func MemoryFromBytes(total, available uint64) MemoryInfo {
	return MemoryInfo{
		TotalGiB:     float64(total) / bytesPerGiB,
		AvailableGiB: float64(available) / bytesPerGiB,
	}
}

// Snapshot is one complete set of sampled metrics for a single tick.
// It is built once by the collector and never modified afterwards.
type Snapshot struct {
	Timestamp       time.Time           `json:"timestamp"`
	CPUName         Reading[string]     `json:"cpuName"`
	CPUUsagePercent Reading[float64]    `json:"cpuUsagePercent"`
	CPUTempCelsius  Reading[float64]    `json:"cpuTempCelsius"`
	Memory          Reading[MemoryInfo] `json:"memory"`
	GPUName         Reading[string]     `json:"gpuName"`
	GPUUsage        Reading[string]     `json:"gpuUsage"`
	GPUTempCelsius  Reading[string]     `json:"gpuTempCelsius"`
}
