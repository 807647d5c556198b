// Package otel publishes session counters as OpenTelemetry observable
// counters. Values are read from the source on each collection; nothing is
// pushed.
package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	"go.opentelemetry.io/otel/metric"
)

// MetricPrefix is prepended to every instrument name.
const MetricPrefix = "mealkeeper_"

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	Get(id metrics.ID) uint64
}

type observedCounter struct {
	id         metrics.ID
	instrument metric.Int64ObservableCounter
}

type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
}

func NewExporter(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	ids := metrics.All()
	e := &Exporter{source: source, counters: make([]observedCounter, 0, len(ids))}
	observables := make([]metric.Observable, 0, len(ids))

	for _, id := range ids {
		name := MetricPrefix + id.String() + "_total"
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(id.Help()))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", name, err)
		}
		e.counters = append(e.counters, observedCounter{id: id, instrument: ins})
		observables = append(observables, ins)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, c := range e.counters {
			o.ObserveInt64(c.instrument, int64(e.source.Get(c.id)))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
