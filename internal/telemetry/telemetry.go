//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds names and helpers shared by the public telemetry
// packages and the instrumented pipeline.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// telemetry service constants.
const (
	ServiceName      = "trpc-genai-go"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go"
	InstrumentName   = "trpc.genai.go"
)

// span names.
const (
	SpanNameFetch          = "genai.source.fetch"
	SpanNameUploadStart    = "genai.upload.start"
	SpanNameUploadFinalize = "genai.upload.finalize"
	SpanNameGenerate       = "genai.generate"
	SpanNameEmbed          = "genai.embed"
)

// metric names.
const (
	MetricContentParts = "genai.content.parts"
	MetricContentBytes = "genai.content.bytes"
)

// attribute keys.
const (
	KeyMIMEType   = "genai.mime_type"
	KeySizeBytes  = "genai.size_bytes"
	KeyPartKind   = "genai.part.kind"
	KeyStatusCode = "http.response.status_code"
	KeySourceHost = "genai.source.host"
	KeySessionID  = "genai.session_id"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SetStatusCode annotates span with an HTTP status code.
func SetStatusCode(span trace.Span, code int) {
	span.SetAttributes(attribute.Int(KeyStatusCode, code))
}

// NewGRPCConn creates a plaintext gRPC client connection for OTLP export.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	return grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
}
