package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devmon/models"
)

const gib = 1024 * 1024 * 1024

func TestMemoryStat(t *testing.T) {
	ctx := context.Background()

	t.Run("converts to GiB", func(t *testing.T) {
		p := &MemoryStat{virtual: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 * gib, Available: 8.5 * gib, Used: 7.5 * gib}, nil
		}}

		m, err := p.Query(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Total: 16.00 GB\nAvailable: 8.50 GB", models.FormatMemory(m))
	})

	t.Run("whole call fails", func(t *testing.T) {
		p := &MemoryStat{virtual: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return nil, errors.New("open /proc/meminfo: no such file or directory")
		}}

		m, err := p.Query(ctx)
		assert.ErrorIs(t, err, ErrQuery)
		assert.Zero(t, m)
	})
}
