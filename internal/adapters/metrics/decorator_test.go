package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/mediator-go/internal/adapters/metrics"
	"github.com/andrescamacho/mediator-go/internal/application/mediator"
)

type renameCommand struct {
	mediator.Returns[mediator.Unit]
	Fail error
}

func setup(t *testing.T) (*mediator.Mediator, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector := metrics.NewDispatchMetricsCollector()
	require.NoError(t, collector.Register(reg))

	b := mediator.NewBuilder().UseDefaults(metrics.Decorator(collector))
	mediator.RegisterHandler[*renameCommand, mediator.Unit](b, mediator.HandleFunc[*renameCommand, mediator.Unit](
		func(ctx context.Context, c *renameCommand) (mediator.Unit, error) {
			return mediator.Unit{}, c.Fail
		}))
	med, err := b.Build()
	require.NoError(t, err)
	return med, reg
}

func TestDecorator_CountsByStatus(t *testing.T) {
	// Arrange
	med, reg := setup(t)
	ctx := context.Background()

	// Act
	_, _ = mediator.Dispatch(ctx, med, &renameCommand{})
	_, _ = mediator.Dispatch(ctx, med, &renameCommand{})
	_, _ = mediator.Dispatch(ctx, med, &renameCommand{Fail: &mediator.ValidationFailedError{}})
	_, _ = mediator.Dispatch(ctx, med, &renameCommand{Fail: errors.New("raw")})

	// Assert
	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "mediator_dispatch_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, "renameCommand", labels["request"])
			counts[labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		metrics.StatusSuccess:             2,
		mediator.TaxonomyValidationFailed: 1,
		metrics.StatusUnclassified:        1,
	}, counts)
}

func TestDecorator_RecordsDurationAndDrainsInFlight(t *testing.T) {
	med, reg := setup(t)

	_, err := mediator.Dispatch(context.Background(), med, &renameCommand{})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "mediator_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "mediator_dispatch_in_flight" {
			assert.Equal(t, float64(0), mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestDecorator_DisabledWithoutCollector(t *testing.T) {
	factory := metrics.Decorator(nil)

	assert.Nil(t, factory(mediator.Descriptor{Name: "renameCommand"}))
}

func TestDispatchMetricsCollector_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.NewDispatchMetricsCollector().Register(reg))

	err := metrics.NewDispatchMetricsCollector().Register(reg)

	assert.Error(t, err)
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg := metrics.NewRegistry()

	families, err := reg.Gather()

	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
