//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package source resolves prompt content sources to readable local files.
//
// A source is either an http(s) URL, a URL with a registered scheme such as
// cos://, or a path to an existing local file. Remote sources are fetched
// into a temporary file that the returned Handle owns; closing the handle
// deletes it:
//
//	h, err := resolver.Resolve(ctx, "https://example.com/a.png")
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-genai-go/errs"
	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-genai-go/log"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/trace"
)

const (
	defaultUserAgent = "trpc-genai-go/1.0"
	tempPattern      = "genai-*"
)

var defaultClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher copies the content identified by a remote source into w.
// Implementations report failures as *errs.NetworkError.
type Fetcher interface {
	Fetch(ctx context.Context, src string, w io.Writer) error
}

// Handle is a resolved source opened for reading.
type Handle struct {
	// Source is the string the handle was resolved from.
	Source string
	// Path is the local file holding the content.
	Path string
	// Name is the base name used for typing and as upload display name.
	Name string
	// Size is the content length in bytes.
	Size int64
	// Remote is true when Path is a temporary file owned by the handle.
	Remote bool

	file *os.File
}

// Read implements io.Reader.
func (h *Handle) Read(p []byte) (int, error) {
	return h.file.Read(p)
}

// Seek implements io.Seeker.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	return h.file.Seek(offset, whence)
}

// Close closes the file and removes it if it was fetched.
func (h *Handle) Close() error {
	err := h.file.Close()
	if h.Remote {
		if rmErr := os.Remove(h.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warnf("remove fetched artifact %s: %v", h.Path, rmErr)
			return errors.Join(err, rmErr)
		}
	}
	return err
}

// Resolver turns source strings into Handles.
type Resolver struct {
	httpClient *http.Client
	tempDir    string
	userAgent  string
	fetchers   map[string]Fetcher
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: defaultClient,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsURL reports whether src is an http or https URL.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Resolve opens src. The caller must Close the returned handle.
func (r *Resolver) Resolve(ctx context.Context, src string) (*Handle, error) {
	if IsURL(src) {
		f := &httpFetcher{client: r.httpClient, userAgent: r.userAgent}
		return r.fetch(ctx, src, f)
	}
	for scheme, f := range r.fetchers {
		if strings.HasPrefix(src, scheme+"://") {
			return r.fetch(ctx, src, f)
		}
	}
	if isFile(src) {
		return openLocal(src)
	}
	return nil, &errs.InvalidSourceError{Source: src}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func openLocal(p string) (*Handle, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	log.Debugf("resolved local source %s (%s)", p, humanize.IBytes(uint64(info.Size())))
	return &Handle{
		Source: p,
		Path:   p,
		Name:   filepath.Base(p),
		Size:   info.Size(),
		file:   file,
	}, nil
}

// fetch downloads src into a new temp file. The temp file is removed on
// every error path.
func (r *Resolver) fetch(ctx context.Context, src string, f Fetcher) (h *Handle, err error) {
	name := nameFromURL(src)
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameFetch)
	defer func() { itelemetry.EndSpan(span, err) }()
	if u, perr := neturl.Parse(src); perr == nil {
		span.SetAttributes(attribute.String(itelemetry.KeySourceHost, u.Host))
	}

	file, err := os.CreateTemp(r.tempDir, tempPattern+path.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", log.SafeURL(src), err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err = f.Fetch(ctx, src, file); err != nil {
		return nil, err
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", file.Name(), err)
	}
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", file.Name(), err)
	}
	span.SetAttributes(attribute.Int64(itelemetry.KeySizeBytes, info.Size()))
	log.Debugf("fetched %s into %s (%s)", log.SafeURL(src), file.Name(), humanize.IBytes(uint64(info.Size())))
	return &Handle{
		Source: src,
		Path:   file.Name(),
		Name:   name,
		Size:   info.Size(),
		Remote: true,
		file:   file,
	}, nil
}

// nameFromURL returns the last path element of a URL, falling back to the
// host when the path is empty.
func nameFromURL(raw string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return "download"
	}
	if base := path.Base(u.Path); u.Path != "" && base != "/" && base != "." {
		return base
	}
	if u.Host != "" {
		return u.Host
	}
	return "download"
}

type httpFetcher struct {
	client    *http.Client
	userAgent string
}

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 64 << 10

func (f *httpFetcher) Fetch(ctx context.Context, src string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return &errs.NetworkError{URL: src, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return &errs.NetworkError{URL: src, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errs.NetworkError{
			URL:        src,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &errs.NetworkError{URL: src, Err: fmt.Errorf("read body: %w", err)}
	}
	return nil
}
