//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package triage maps Gemini API HTTP responses to decoded results or to the
// errs taxonomy.
package triage

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"trpc.group/trpc-go/trpc-genai-go/errs"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Read drains and closes resp.Body.
func Read(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Triage decodes a 2xx body into out, which may be nil to only check that the
// body is JSON. A 429 yields *errs.RateLimitError and any other status yields
// *errs.APIError; both keep the body text verbatim.
func Triage(resp *Response, out any) error {
	switch {
	case resp.Success():
		if out == nil {
			if !json.Valid(resp.Body) {
				return fmt.Errorf("decode response: invalid JSON body")
			}
			return nil
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errs.RateLimitError{Body: string(resp.Body)}
	default:
		return &errs.APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
}
