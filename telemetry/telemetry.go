//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry starts trace and metric export together.
//
// Use telemetry/trace or telemetry/metric directly to enable only one of
// them. Without a call to Start, spans and metrics go to no-op providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/trace"
)

// Start installs OTLP trace and metric exporters. The returned clean func
// shuts both down.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{
		serviceName: itelemetry.ServiceName,
		protocol:    itelemetry.ProtocolGRPC,
	}
	for _, opt := range opts {
		opt(o)
	}

	traceOpts := []trace.Option{trace.WithProtocol(o.protocol), trace.WithServiceName(o.serviceName)}
	metricOpts := []metric.Option{metric.WithProtocol(o.protocol), metric.WithServiceName(o.serviceName)}
	if o.tracesEndpoint != "" {
		traceOpts = append(traceOpts, trace.WithEndpoint(o.tracesEndpoint))
	}
	if o.metricsEndpoint != "" {
		metricOpts = append(metricOpts, metric.WithEndpoint(o.metricsEndpoint))
	}

	cleanTrace, err := trace.Start(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	cleanMetric, err := metric.Start(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("start metrics: %w", err), cleanTrace())
	}
	return func() error {
		return errors.Join(cleanTrace(), cleanMetric())
	}, nil
}

// Option configures Start.
type Option func(*options)

type options struct {
	tracesEndpoint  string
	metricsEndpoint string
	serviceName     string
	protocol        string
}

// WithTracesEndpoint sets the trace collector host and port. The default
// comes from OTEL_EXPORTER_OTLP_TRACES_ENDPOINT or OTEL_EXPORTER_OTLP_ENDPOINT.
func WithTracesEndpoint(endpoint string) Option {
	return func(o *options) {
		o.tracesEndpoint = endpoint
	}
}

// WithMetricsEndpoint sets the metric collector host and port.
func WithMetricsEndpoint(endpoint string) Option {
	return func(o *options) {
		o.metricsEndpoint = endpoint
	}
}

// WithProtocol selects "grpc" (default) or "http" for both exporters.
func WithProtocol(protocol string) Option {
	return func(o *options) {
		o.protocol = protocol
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}
