package cli

import (
	"context"
	"fmt"
	"sort"

	otelexport "github.com/dmitrijs2005/mealkeeper/internal/client/metrics/export/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func (a *App) initMetrics() error {
	a.reader = sdkmetric.NewManualReader()
	a.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(a.reader))

	exp, err := otelexport.NewExporter(a.provider.Meter("mealkeeper/cli"), a.counters)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	a.exporter = exp
	return nil
}

// collectMetrics reads every int64 sum from reader, keyed by instrument name.
func collectMetrics(ctx context.Context, reader sdkmetric.Reader) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out, nil
}

// Metrics prints the session counters as collected by the OTel reader.
func (a *App) Metrics(ctx context.Context) error {
	values, err := collectMetrics(ctx, a.reader)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(a.out, "%-40s %d\n", name, values[name])
	}
	return nil
}
