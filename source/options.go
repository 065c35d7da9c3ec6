//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package source

import "net/http"

// Option represents a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used to fetch http and https sources.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithTempDir sets the directory for fetched artifacts. The default is
// os.TempDir().
func WithTempDir(dir string) Option {
	return func(r *Resolver) {
		r.tempDir = dir
	}
}

// WithUserAgent sets the User-Agent header sent on remote fetches.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithFetcher registers f for sources starting with scheme + "://".
// The http and https schemes cannot be overridden; use WithHTTPClient.
func WithFetcher(scheme string, f Fetcher) Option {
	return func(r *Resolver) {
		if r.fetchers == nil {
			r.fetchers = make(map[string]Fetcher)
		}
		r.fetchers[scheme] = f
	}
}
