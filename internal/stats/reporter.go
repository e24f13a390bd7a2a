// Package stats periodically logs and exports the sizes of the in-memory stores.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var sizeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "cortex_bridge_store_items",
	Help: "Items held per in-memory store, sampled by the stats reporter",
}, []string{"store"})

// Source reports one size.
type Source func() int

// Reporter samples its sources on a cron schedule.
type Reporter struct {
	schedule string
	sources  map[string]Source
	log      zerolog.Logger
}

// NewReporter creates a Reporter. schedule accepts standard five-field cron
// expressions and descriptors such as "@every 1m".
func NewReporter(schedule string, sources map[string]Source, log zerolog.Logger) *Reporter {
	return &Reporter{schedule: schedule, sources: sources, log: log}
}

// Report samples every source once, updates the gauges and logs the result.
func (r *Reporter) Report() map[string]int {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]int, len(names))
	ev := r.log.Info()
	for _, name := range names {
		n := r.sources[name]()
		out[name] = n
		sizeGauge.WithLabelValues(name).Set(float64(n))
		ev = ev.Int(name, n)
	}
	ev.Msg("bridge stats")
	return out
}

// Run reports on schedule until ctx is canceled.
func (r *Reporter) Run(ctx context.Context) error {
	c := rcron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.Report() }); err != nil {
		return fmt.Errorf("stats schedule %q: %w", r.schedule, err)
	}
	r.log.Info().Str("schedule", r.schedule).Msg("stats reporter starting")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	r.log.Info().Msg("stats reporter stopping")
	return nil
}
