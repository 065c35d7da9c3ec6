//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package client is a Gemini REST client that accumulates multimodal
// context.
//
// Sources added with AddToContext become parts of every later
// GenerateContent request, after the prompt text:
//
//	c, err := client.New(os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	if err := c.AddToContext(ctx, "https://example.com/chart.png", "report.pdf"); err != nil {
//	    return err
//	}
//	resp, err := c.GenerateContent(ctx, "Summarize the report using the chart.", nil)
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genai-go/content"
	"trpc.group/trpc-go/trpc-genai-go/errs"
	"trpc.group/trpc-go/trpc-genai-go/log"
	"trpc.group/trpc-go/trpc-genai-go/media"
	"trpc.group/trpc-go/trpc-genai-go/source"
	"trpc.group/trpc-go/trpc-genai-go/upload"
)

// Default endpoints.
const (
	ModelsURL         = "https://generativelanguage.googleapis.com/v1beta/models/"
	DefaultModel      = "gemini-1.5-flash"
	DefaultEmbedModel = "text-embedding-004"
	DefaultBaseURL    = ModelsURL + DefaultModel
	DefaultEmbedURL   = ModelsURL + DefaultEmbedModel
	DefaultUploadURL  = upload.DefaultBaseURL
)

// ErrMissingAPIKey is returned by New for an empty API key.
var ErrMissingAPIKey = errors.New("client: api key is required")

// Client talks to the Gemini API and owns a prompt context.
// It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	embedURL   string
	embedModel string
	uploadURL  string
	httpClient *http.Client
	timeout    time.Duration
	sniff      bool
	sourceOpts []source.Option
	sessionID  string

	resolver *source.Resolver
	encoder  *content.Encoder

	mu    sync.Mutex
	parts []content.Part
}

// New creates a Client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		embedURL:   DefaultEmbedURL,
		embedModel: "models/" + DefaultEmbedModel,
		uploadURL:  DefaultUploadURL,
		sessionID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{Timeout: c.timeout}
	if c.httpClient != nil {
		copied := *c.httpClient
		if c.timeout > 0 {
			copied.Timeout = c.timeout
		}
		hc = &copied
	}
	c.httpClient = hc

	c.resolver = source.New(append([]source.Option{source.WithHTTPClient(hc)}, c.sourceOpts...)...)
	c.encoder = content.NewEncoder(content.WithUploader(
		upload.New(apiKey, upload.WithBaseURL(c.uploadURL), upload.WithHTTPClient(hc)),
	))
	log.Debugf("client %s: created for %s", c.sessionID, c.baseURL)
	return c, nil
}

// SessionID identifies this client in log lines and spans.
func (c *Client) SessionID() string {
	return c.sessionID
}

// AddToContext resolves, types and encodes each source in order and appends
// the resulting parts to the context.
//
// The batch stops at the first failing source and returns its error. Parts
// added for earlier sources in the same call are kept, and files already
// uploaded for them are not deleted.
func (c *Client) AddToContext(ctx context.Context, sources ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, src := range sources {
		part, err := c.encodeSource(ctx, src)
		if err != nil {
			log.Warnf("client %s: source %d of %d (%s) failed: %v",
				c.sessionID, i+1, len(sources), log.SafeURL(src), err)
			return err
		}
		c.parts = append(c.parts, part)
	}
	return nil
}

// encodeSource handles one source. The handle is closed, and any fetched
// temp file removed, before it returns.
func (c *Client) encodeSource(ctx context.Context, src string) (content.Part, error) {
	h, err := c.resolver.Resolve(ctx, src)
	if err != nil {
		return content.Part{}, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			log.Warnf("client %s: close %s: %v", c.sessionID, h.Path, cerr)
		}
	}()

	mimeType := media.TypeFor(h.Name)
	if c.sniff && mimeType == media.OctetStream {
		mimeType = media.Detect(h.Path)
	}
	log.Debugf("client %s: %s typed as %s", c.sessionID, h.Name, mimeType)
	return c.encoder.Encode(ctx, h, mimeType, h.Size)
}

// AddGlob adds every file under root matching the doublestar pattern, in
// lexical order.
func (c *Client) AddGlob(ctx context.Context, root, pattern string) error {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return &errs.InvalidSourceError{Source: pattern}
	}
	slices.Sort(matches)
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return c.AddToContext(ctx, paths...)
}

// Context returns a copy of the accumulated parts.
func (c *Client) Context() []content.Part {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.parts)
}

// ResetContext drops all accumulated parts.
func (c *Client) ResetContext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = nil
}

// ContextGenAI returns the context as google.golang.org/genai parts.
func (c *Client) ContextGenAI() ([]*genai.Part, error) {
	return content.ToGenAI(c.Context())
}
