//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
)

func TestMetricsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "custom-metric:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic-endpoint:4317")
	assert.Equal(t, "custom-metric:4317", metricsEndpoint())

	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
	assert.Equal(t, "generic-endpoint:4317", metricsEndpoint())

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	assert.NotEmpty(t, metricsEndpoint())
}

func TestRecordContentPart(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	old := Meter
	Meter = provider.Meter("test")
	defer func() { Meter = old }()

	ctx := context.Background()
	RecordContentPart(ctx, "inline", "image/png", 10)
	RecordContentPart(ctx, "inline", "image/png", 20)
	RecordContentPart(ctx, "file", "application/pdf", 30)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var total int64
	var histCount uint64
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case itelemetry.MetricContentParts:
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Len(t, sum.DataPoints, 2)
		case itelemetry.MetricContentBytes:
			hist, ok := m.Data.(metricdata.Histogram[int64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				histCount += dp.Count
			}
		}
	}
	assert.Equal(t, int64(3), total)
	assert.Equal(t, uint64(3), histCount)
}

func TestStartAndClean(t *testing.T) {
	for _, protocol := range []string{itelemetry.ProtocolGRPC, itelemetry.ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			clean, err := Start(context.Background(),
				WithProtocol(protocol),
				WithEndpoint("localhost:0"),
				WithServiceName("metric-test"),
			)
			require.NoError(t, err)
			require.NotNil(t, clean)
			RecordContentPart(context.Background(), "inline", "text/plain", 1)
			_ = clean()
		})
	}
}
