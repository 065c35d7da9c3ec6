//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package content builds prompt parts from resolved sources.
//
// Payloads up to InlineThreshold bytes are embedded as base64 inline data.
// The whole payload is read into memory first; there is no streaming
// encoder. Larger payloads go through an Uploader and are referenced by the
// returned file URI.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"trpc.group/trpc-go/trpc-genai-go/log"
	"trpc.group/trpc-go/trpc-genai-go/source"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/metric"
)

// InlineThreshold is the largest payload, in bytes, sent inline.
const InlineThreshold int64 = 20 * 1024 * 1024

// ErrNoUploader is returned for payloads above InlineThreshold when the
// Encoder has no Uploader.
var ErrNoUploader = errors.New("content: payload exceeds inline threshold and no uploader is configured")

// Uploader stores a payload remotely and returns its file URI.
// *upload.Uploader implements it.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, mimeType string, size int64, displayName string) (string, error)
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithUploader sets the uploader used for large payloads.
func WithUploader(u Uploader) Option {
	return func(e *Encoder) {
		e.uploader = u
	}
}

// Encoder turns handles into parts.
type Encoder struct {
	uploader Uploader
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode reads h and returns an inline part when size <= InlineThreshold, or
// uploads it and returns a file part otherwise. Read and upload errors are
// returned wrapped.
func (e *Encoder) Encode(ctx context.Context, h *source.Handle, mimeType string, size int64) (Part, error) {
	mimeType = orOctetStream(mimeType)
	if size <= InlineThreshold {
		data, err := io.ReadAll(h)
		if err != nil {
			return Part{}, fmt.Errorf("read %s: %w", h.Name, err)
		}
		log.Debugf("encoding %s inline (%s, %s)", h.Name, humanize.IBytes(uint64(len(data))), mimeType)
		metric.RecordContentPart(ctx, KindInline, mimeType, int64(len(data)))
		return NewInline(mimeType, data), nil
	}

	if e.uploader == nil {
		return Part{}, ErrNoUploader
	}
	log.Debugf("uploading %s (%s > %s inline limit)", h.Name,
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(InlineThreshold)))
	uri, err := e.uploader.Upload(ctx, h, mimeType, size, DisplayName(h.Name))
	if err != nil {
		return Part{}, fmt.Errorf("upload %s: %w", h.Name, err)
	}
	metric.RecordContentPart(ctx, KindFile, mimeType, size)
	return NewFile(mimeType, uri), nil
}

// DisplayName returns name in Unicode NFC form.
func DisplayName(name string) string {
	return norm.NFC.String(name)
}
