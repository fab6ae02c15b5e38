package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/pkg/models"
)

// MetricSpec describes one synthetic metric stream.
type MetricSpec struct {
	Name      string
	BaseValue float64
	Jitter    float64
	Pattern   Pattern
}

type Config struct {
	Metrics  []MetricSpec
	Interval time.Duration
}

// Generator writes synthetic samples into a sample store so the
// prediction engine has data to work against during development.
type Generator struct {
	config  Config
	store   store.SampleStore
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func New(cfg Config, st store.SampleStore) *Generator {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		config: cfg,
		store:  st,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return
	}
	g.running = true

	for _, spec := range g.config.Metrics {
		g.wg.Add(1)
		go g.generate(spec)
	}

	logger.Infof("Sample generator started for %d metrics", len(g.config.Metrics))
}

func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return
	}
	g.running = false

	g.cancel()
	g.wg.Wait()
	logger.Info("Sample generator stopped")
}

func (g *Generator) generate(spec MetricSpec) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.config.Interval)
	defer ticker.Stop()

	g.emit(spec)

	for {
		select {
		case <-g.ctx.Done():
			return
		case <-ticker.C:
			g.emit(spec)
		}
	}
}

func (g *Generator) emit(spec MetricSpec) {
	value := spec.Pattern.Apply(spec.BaseValue)
	if spec.Jitter > 0 {
		value += (rand.Float64()*2 - 1) * spec.Jitter
	}
	if value < 0 {
		value = 0
	}

	ctx, cancel := context.WithTimeout(g.ctx, 10*time.Second)
	defer cancel()

	sample := models.Sample{Value: value, Timestamp: time.Now()}
	if err := g.store.AppendSamples(ctx, spec.Name, []models.Sample{sample}); err != nil {
		logger.WithMetric(spec.Name).Errorf("Failed to write sample: %v", err)
		return
	}

	logger.WithMetric(spec.Name).Debugf("Emitted sample %.2f (%s)", value, spec.Pattern.Name())
}

// Backfill writes a historical run of samples ending now, spaced by
// the configured interval. Useful for seeding a fresh database.
func (g *Generator) Backfill(ctx context.Context, spec MetricSpec, count int) error {
	samples := make([]models.Sample, 0, count)
	now := time.Now()

	for i := count - 1; i >= 0; i-- {
		value := spec.Pattern.Apply(spec.BaseValue)
		if spec.Jitter > 0 {
			value += (rand.Float64()*2 - 1) * spec.Jitter
		}
		if value < 0 {
			value = 0
		}
		samples = append(samples, models.Sample{
			Value:     value,
			Timestamp: now.Add(-time.Duration(i) * g.config.Interval),
		})
	}

	return g.store.AppendSamples(ctx, spec.Name, samples)
}
