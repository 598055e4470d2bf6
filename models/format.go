package models

import (
	"fmt"
	"strings"
)

// FormatMemory renders total and available memory on two lines.
func FormatMemory(m MemoryInfo) string {
	return fmt.Sprintf("Total: %.2f GB\nAvailable: %.2f GB", m.TotalGiB, m.AvailableGiB)
}

// Format renders a snapshot as the text block shown on the display surface.
// Field order is fixed: time, CPU, memory, GPU.
func Format(s Snapshot) string {
	var b strings.Builder

	b.WriteString(s.Timestamp.Format("15:04"))
	b.WriteString("\n\nCPU\n")
	b.WriteString("Type: " + s.CPUName.String() + "\n")
	b.WriteString("Usage: " + withUnit(formatFloat(s.CPUUsagePercent), "%") + "\n")
	b.WriteString("Temperature: " + withUnit(formatFloat(s.CPUTempCelsius), "°C") + "\n")

	b.WriteString("\nMemory\n")
	if m, ok := s.Memory.Get(); ok {
		b.WriteString(FormatMemory(m))
	} else {
		b.WriteString(NotAvailable)
	}

	b.WriteString("\n\nGPU\n")
	b.WriteString("Type: " + s.GPUName.String() + "\n")
	b.WriteString("Usage: " + s.GPUUsage.String() + "\n")
	b.WriteString("Temperature: " + withUnit(s.GPUTempCelsius.String(), "°C"))

	return b.String()
}

func formatFloat(r Reading[float64]) string {
	if v, ok := r.Get(); ok {
		return fmt.Sprintf("%.1f", v)
	}
	return NotAvailable
}

// withUnit appends unit unless the value is the unavailable marker.
func withUnit(value, unit string) string {
	if value == NotAvailable {
		return value
	}
	return value + unit
}
