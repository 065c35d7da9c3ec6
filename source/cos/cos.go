//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package cos fetches cos:// sources from a Tencent Cloud Object Storage
// bucket.
//
// A source "cos://reports/q3.pdf" names the object key "reports/q3.pdf" in
// the bucket the Fetcher was built for. Register it on a resolver:
//
//	f := cos.NewFetcher("https://bucket-1250000000.cos.ap-guangzhou.myqcloud.com")
//	r := source.New(source.WithFetcher(cos.Scheme, f))
//
// Credentials come from COS_SECRETID and COS_SECRETKEY unless set with
// WithSecretID and WithSecretKey.
package cos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-genai-go/errs"
	"trpc.group/trpc-go/trpc-genai-go/log"
)

// Scheme is the source prefix handled by Fetcher, without "://".
const Scheme = "cos"

// Fetcher implements source.Fetcher for COS objects.
type Fetcher struct {
	client client
}

// NewFetcher creates a Fetcher for the bucket at bucketURL.
func NewFetcher(bucketURL string, opts ...Option) *Fetcher {
	return &Fetcher{client: buildClient(bucketURL, opts...)}
}

// Key returns the object key addressed by src.
func Key(src string) (string, bool) {
	key, ok := strings.CutPrefix(src, Scheme+"://")
	key = strings.TrimLeft(key, "/")
	return key, ok && key != ""
}

// Fetch streams the object named by src into w.
func (f *Fetcher) Fetch(ctx context.Context, src string, w io.Writer) error {
	key, ok := Key(src)
	if !ok {
		return &errs.InvalidSourceError{Source: src}
	}
	body, err := f.client.GetObject(ctx, key)
	if err != nil {
		return toNetworkError(src, err)
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return &errs.NetworkError{URL: src, Err: fmt.Errorf("read object %s: %w", key, err)}
	}
	log.Debugf("fetched cos object %s (%d bytes)", key, n)
	return nil
}

func toNetworkError(src string, err error) error {
	var respErr *cos.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return &errs.NetworkError{
			URL:        src,
			StatusCode: respErr.Response.StatusCode,
			Status:     respErr.Response.Status,
			Body:       respErr.Code + ": " + respErr.Message,
		}
	}
	return &errs.NetworkError{URL: src, Err: err}
}
