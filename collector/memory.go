package collector

import (
	"context"

	"devmon/models"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryStat reports total and available physical memory.
type MemoryStat struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

func NewMemoryStat() *MemoryStat {
	return &MemoryStat{virtual: mem.VirtualMemoryWithContext}
}

func (p *MemoryStat) Query(ctx context.Context) (models.MemoryInfo, error) {
	vm, err := p.virtual(ctx)
	if err != nil {
		return models.MemoryInfo{}, queryFailed("memory", err)
	}
	if vm == nil {
		return models.MemoryInfo{}, unavailable("memory", nil)
	}
	return models.MemoryFromBytes(vm.Total, vm.Available), nil
}
