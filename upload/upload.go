//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package upload implements the Gemini Files API resumable upload handshake.
//
// An upload is two sequential requests. The start request announces the
// size and type and returns an upload URL in the x-goog-upload-url header.
// A single PUT to that URL then sends the whole payload and finalizes the
// file. Neither request is retried.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-genai-go/errs"
	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-genai-go/log"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-genai-go/triage"
)

// DefaultBaseURL is the Gemini Files API upload endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/upload/v1beta/files"

// Upload protocol headers.
const (
	HeaderProtocol      = "X-Goog-Upload-Protocol"
	HeaderCommand       = "X-Goog-Upload-Command"
	HeaderContentLength = "X-Goog-Upload-Header-Content-Length"
	HeaderContentType   = "X-Goog-Upload-Header-Content-Type"
	HeaderOffset        = "X-Goog-Upload-Offset"
	HeaderUploadURL     = "X-Goog-Upload-URL"

	CommandStart          = "start"
	CommandUploadFinalize = "upload, finalize"
)

// Session is the state carried from the start request to the finalize
// request.
type Session struct {
	FileSize    int64
	MIMEType    string
	DisplayName string
	UploadURL   string
}

// Uploader performs resumable uploads.
type Uploader struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates an Uploader authenticated with apiKey.
func New(apiKey string, opts ...Option) *Uploader {
	u := &Uploader{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload sends size bytes from r and returns the server-issued file URI.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, mimeType string, size int64, displayName string) (string, error) {
	s := &Session{FileSize: size, MIMEType: mimeType, DisplayName: displayName}
	log.Debugf("upload %q: starting (%s, %s)", displayName, humanize.IBytes(uint64(size)), mimeType)
	if err := u.start(ctx, s); err != nil {
		log.Warnf("upload %q: start failed: %v", displayName, err)
		return "", err
	}
	uri, err := u.finalize(ctx, s, r)
	if err != nil {
		log.Warnf("upload %q: finalize failed: %v", displayName, err)
		return "", err
	}
	log.Debugf("upload %q: finalized as %s", displayName, uri)
	return uri, nil
}

type startRequest struct {
	File struct {
		DisplayName string `json:"display_name"`
	} `json:"file"`
}

func (u *Uploader) start(ctx context.Context, s *Session) (err error) {
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameUploadStart)
	defer func() { itelemetry.EndSpan(span, err) }()
	span.SetAttributes(
		attribute.String(itelemetry.KeyMIMEType, s.MIMEType),
		attribute.Int64(itelemetry.KeySizeBytes, s.FileSize),
	)

	var body startRequest
	body.File.DisplayName = s.DisplayName
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal upload start request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create upload start request: %w", err)
	}
	req.Header.Set(HeaderProtocol, "resumable")
	req.Header.Set(HeaderCommand, CommandStart)
	req.Header.Set(HeaderContentLength, strconv.FormatInt(s.FileSize, 10))
	req.Header.Set(HeaderContentType, s.MIMEType)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload start request: %w", log.SafeError(err))
	}
	resp, err := triage.Read(httpResp)
	if err != nil {
		return err
	}
	itelemetry.SetStatusCode(span, resp.StatusCode)

	s.UploadURL = resp.Header.Get(HeaderUploadURL)
	if s.UploadURL == "" {
		return &errs.UploadInitiationError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return nil
}

func (u *Uploader) finalize(ctx context.Context, s *Session, r io.Reader) (uri string, err error) {
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameUploadFinalize)
	defer func() { itelemetry.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.UploadURL, r)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = s.FileSize
	req.Header.Set(HeaderOffset, "0")
	req.Header.Set(HeaderCommand, CommandUploadFinalize)

	httpResp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload content: %w", log.SafeError(err))
	}
	resp, err := triage.Read(httpResp)
	if err != nil {
		return "", err
	}
	itelemetry.SetStatusCode(span, resp.StatusCode)
	if !resp.Success() {
		return "", &errs.UploadContentError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	uri = gjson.GetBytes(resp.Body, "file.uri").String()
	if uri == "" {
		return "", &errs.MissingFileURIError{Body: string(resp.Body)}
	}
	return uri, nil
}

func (u *Uploader) endpoint() string {
	if u.apiKey == "" {
		return u.baseURL
	}
	parsed, err := url.Parse(u.baseURL)
	if err != nil {
		return u.baseURL
	}
	q := parsed.Query()
	q.Set("key", u.apiKey)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
