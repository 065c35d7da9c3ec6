//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package cos

import (
	"context"
	"io"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

type client interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

type cosClient struct {
	*cos.Client
}

func (c *cosClient) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := c.Client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
