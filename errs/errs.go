//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package errs defines the error taxonomy shared by source resolution,
// uploading and API calls.
//
// Every error is a pointer type so callers can match it with errors.As:
//
//	var rl *errs.RateLimitError
//	if errors.As(err, &rl) {
//	    // back off and try again later
//	}
//
// None of the packages in this module retry on these errors. Retry policy
// belongs to the caller.
package errs

import (
	"fmt"
)

// InvalidSourceError reports a source that is neither an http(s) URL nor an
// existing local file.
type InvalidSourceError struct {
	Source string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source %q: not a URL and not an existing file", e.Source)
}

// NetworkError reports a failed remote fetch. Either StatusCode is set (the
// remote answered with an error status) or Err holds the transport failure.
type NetworkError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %s", e.URL, e.Status, e.Body)
}

// Unwrap returns the transport error, if any.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UploadInitiationError reports that the resumable upload start call did not
// return an upload URL.
type UploadInitiationError struct {
	StatusCode int
	Body       string
}

func (e *UploadInitiationError) Error() string {
	return fmt.Sprintf("upload initiation failed (status %d): no upload url in response: %s", e.StatusCode, e.Body)
}

// UploadContentError reports a non-success status from the upload and
// finalize call.
type UploadContentError struct {
	StatusCode int
	Body       string
}

func (e *UploadContentError) Error() string {
	return fmt.Sprintf("upload content failed (status %d): %s", e.StatusCode, e.Body)
}

// MissingFileURIError reports a finalized upload whose response carried no
// file.uri.
type MissingFileURIError struct {
	Body string
}

func (e *MissingFileURIError) Error() string {
	return fmt.Sprintf("upload response has no file.uri: %s", e.Body)
}

// RateLimitError is returned for HTTP 429 responses. Body is the response
// text, unmodified.
type RateLimitError struct {
	Body string
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded: " + e.Body
}

// APIError is returned for any other non-2xx API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Body)
}
