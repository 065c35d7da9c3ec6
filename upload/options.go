//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package upload

import "net/http"

// Option configures an Uploader.
type Option func(*Uploader)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(u *Uploader) {
		u.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for both upload requests.
func WithHTTPClient(client *http.Client) Option {
	return func(u *Uploader) {
		u.httpClient = client
	}
}
