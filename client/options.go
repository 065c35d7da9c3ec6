//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package client

import (
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-genai-go/source"
)

// Option represents a functional option for configuring a Client.
type Option func(*Client)

// WithModel selects the generation model, e.g. "gemini-1.5-pro". It is
// overridden by WithBaseURL.
func WithModel(model string) Option {
	return func(c *Client) {
		c.baseURL = ModelsURL + model
	}
}

// WithEmbedModel selects the embedding model. It sets both the endpoint and
// the model field of the request body.
func WithEmbedModel(model string) Option {
	return func(c *Client) {
		c.embedURL = ModelsURL + model
		c.embedModel = "models/" + model
	}
}

// WithBaseURL sets the generateContent model base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithEmbedURL sets the embedContent model base URL.
func WithEmbedURL(u string) Option {
	return func(c *Client) {
		c.embedURL = u
	}
}

// WithUploadURL sets the resumable upload endpoint.
func WithUploadURL(u string) Option {
	return func(c *Client) {
		c.uploadURL = u
	}
}

// WithHTTPClient sets the HTTP client used for every request, including
// remote source fetches and uploads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. Zero means no timeout beyond the
// context deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTempDir sets where fetched remote sources are staged.
func WithTempDir(dir string) Option {
	return func(c *Client) {
		c.sourceOpts = append(c.sourceOpts, source.WithTempDir(dir))
	}
}

// WithUserAgent sets the User-Agent for remote source fetches.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.sourceOpts = append(c.sourceOpts, source.WithUserAgent(ua))
	}
}

// WithFetcher registers a fetcher for an extra source scheme, such as the
// cos package's fetcher for cos:// sources.
func WithFetcher(scheme string, f source.Fetcher) Option {
	return func(c *Client) {
		c.sourceOpts = append(c.sourceOpts, source.WithFetcher(scheme, f))
	}
}

// WithContentSniffing enables content-based type detection for sources whose
// name does not map to a known type.
func WithContentSniffing(enabled bool) Option {
	return func(c *Client) {
		c.sniff = enabled
	}
}
