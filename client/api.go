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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-genai-go/content"
	itelemetry "trpc.group/trpc-go/trpc-genai-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-genai-go/log"
	"trpc.group/trpc-go/trpc-genai-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-genai-go/triage"
)

// ErrReservedOption is returned when GenerateContent options try to set the
// contents field.
var ErrReservedOption = errors.New("client: option key \"contents\" is reserved")

const reservedKey = "contents"

type requestContent struct {
	Parts []content.Part `json:"parts"`
}

type embedRequest struct {
	Model   string         `json:"model"`
	Content requestContent `json:"content"`
}

// GenerateContent sends prompt followed by the context parts to
// generateContent. options are merged into the top level of the request
// body, for example {"generationConfig": {...}}. The decoded JSON response
// is returned.
func (c *Client) GenerateContent(ctx context.Context, prompt string, options map[string]any) (map[string]any, error) {
	body, err := c.generateBody(prompt, options)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := c.post(ctx, itelemetry.SpanNameGenerate, c.baseURL+":generateContent", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) generateBody(prompt string, options map[string]any) ([]byte, error) {
	if _, ok := options[reservedKey]; ok {
		return nil, ErrReservedOption
	}
	ctxParts := c.Context()
	parts := make([]content.Part, 0, len(ctxParts)+1)
	parts = append(parts, content.NewText(prompt))
	parts = append(parts, ctxParts...)

	req := make(map[string]any, len(options)+1)
	for k, v := range options {
		req[k] = v
	}
	req[reservedKey] = []requestContent{{Parts: parts}}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}
	return b, nil
}

// EmbedContent requests an embedding of text and returns the decoded JSON
// response.
func (c *Client) EmbedContent(ctx context.Context, text string) (map[string]any, error) {
	b, err := json.Marshal(embedRequest{
		Model:   c.embedModel,
		Content: requestContent{Parts: []content.Part{content.NewText(text)}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	var out map[string]any
	if err := c.post(ctx, itelemetry.SpanNameEmbed, c.embedURL+":embedContent", b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, spanName, endpoint string, body []byte, out any) (err error) {
	ctx, span := trace.Tracer.Start(ctx, spanName)
	defer func() { itelemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String(itelemetry.KeySessionID, c.sessionID))

	u, err := c.withKey(endpoint)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("client %s: POST %s (%d bytes)", c.sessionID, log.SafeURL(u), len(body))
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", spanName, log.SafeError(err))
	}
	resp, err := triage.Read(httpResp)
	if err != nil {
		return err
	}
	itelemetry.SetStatusCode(span, resp.StatusCode)
	if err := triage.Triage(resp, out); err != nil {
		log.Warnf("client %s: %s failed: %v", c.sessionID, spanName, err)
		return err
	}
	return nil
}

func (c *Client) withKey(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
