package collector

import (
	"context"
	"time"

	"devmon/config"
	"devmon/log"
	"devmon/models"
)

// GPUSource resolves the display fields for the first GPU.
type GPUSource interface {
	ResolveName(ctx context.Context) models.Reading[string]
	ResolveUsage(ctx context.Context) models.Reading[string]
	ResolveTemp(ctx context.Context) models.Reading[string]
}

// Collector samples every probe once per call and assembles a Snapshot.
type Collector struct {
	Identity Prober[string]
	Load     Prober[float64]
	Thermal  Prober[float64]
	Memory   Prober[models.MemoryInfo]
	GPU      GPUSource

	now func() time.Time
}

// New wires the production probes for the detected capabilities.
func New(cfg *config.Config, caps Capabilities) *Collector {
	runner := ExecRunner{Timeout: cfg.CLITimeout}
	return &Collector{
		Identity: NewCPUIdentity(caps),
		Load:     NewCPULoad(cfg.CPUSampleWindow),
		Thermal:  NewCPUThermal(caps, cfg.SensorGroups),
		Memory:   NewMemoryStat(),
		GPU: NewGPUResolver(
			NewNVMLStrategy(caps),
			NewDRMStrategy(caps),
			NewSMIStrategy(cfg.NvidiaSMIPath, runner),
		),
		now: time.Now,
	}
}

// Collect never fails: a probe error only turns its field into the
// unavailable marker.
func (c *Collector) Collect(ctx context.Context) models.Snapshot {
	now := time.Now
	if c.now != nil {
		now = c.now
	}

	return models.Snapshot{
		Timestamp:       now(),
		CPUName:         sample(ctx, "cpu_identity", c.Identity),
		CPUUsagePercent: sample(ctx, "cpu_load", c.Load),
		CPUTempCelsius:  sample(ctx, "cpu_thermal", c.Thermal),
		Memory:          sample(ctx, "memory", c.Memory),
		GPUName:         c.GPU.ResolveName(ctx),
		GPUUsage:        c.GPU.ResolveUsage(ctx),
		GPUTempCelsius:  c.GPU.ResolveTemp(ctx),
	}
}

func sample[T any](ctx context.Context, name string, p Prober[T]) (reading models.Reading[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("probe", name).Interface("panic", r).Msg("probe panicked")
			reading = models.Unavailable[T]()
		}
	}()

	if p == nil {
		return models.Unavailable[T]()
	}
	value, err := p.Query(ctx)
	if err != nil {
		log.Debug().Str("probe", name).Str("kind", KindOf(err).Error()).Err(err).Msg("probe unavailable")
		return models.Unavailable[T]()
	}
	return models.Available(value)
}
