//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopm "go.opentelemetry.io/otel/metric/noop"

	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/trace"
)

// TestStart checks that both providers are installed and reset. No collector
// runs in tests, so shutdown export errors are ignored.
func TestStart(t *testing.T) {
	for _, protocol := range []string{itelemetry.ProtocolGRPC, itelemetry.ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			clean, err := Start(context.Background(),
				WithProtocol(protocol),
				WithTracesEndpoint("localhost:0"),
				WithMetricsEndpoint("localhost:0"),
				WithServiceName("telemetry-test"),
			)
			require.NoError(t, err)
			require.NotNil(t, clean)
			_, ok := metric.Meter.(noopm.Meter)
			assert.False(t, ok, "Start must install a real meter")

			_, span := trace.Tracer.Start(context.Background(), itelemetry.SpanNameEmbed)
			span.End()
			_ = clean()

			_, ok = metric.Meter.(noopm.Meter)
			assert.True(t, ok, "clean must restore the no-op meter")
		})
	}
}
