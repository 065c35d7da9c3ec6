//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package content

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-genai-go/media"
)

// Part kinds, as reported by Part.Kind.
const (
	KindText   = "text"
	KindInline = "inline"
	KindFile   = "file"
)

// InlineData carries base64 encoded bytes inside the request.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Bytes decodes Data.
func (d *InlineData) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(d.Data)
}

// FileData references a file previously uploaded to the Files API.
type FileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

// Part is one element of a prompt. Exactly one of Text, InlineData or
// FileData is meaningful.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
	FileData   *FileData   `json:"file_data,omitempty"`
}

// NewText returns a text part.
func NewText(text string) Part {
	return Part{Text: text}
}

// NewInline base64 encodes data into an inline part.
func NewInline(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{
		MIMEType: orOctetStream(mimeType),
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// NewFile returns a part referencing an uploaded file.
func NewFile(mimeType, uri string) Part {
	return Part{FileData: &FileData{MIMEType: orOctetStream(mimeType), FileURI: uri}}
}

func orOctetStream(mimeType string) string {
	if mimeType == "" {
		return media.OctetStream
	}
	return mimeType
}

// Kind returns KindInline, KindFile or KindText.
func (p Part) Kind() string {
	switch {
	case p.InlineData != nil:
		return KindInline
	case p.FileData != nil:
		return KindFile
	default:
		return KindText
	}
}

// MIMEType returns the media type of an inline or file part, or "" for text.
func (p Part) MIMEType() string {
	switch {
	case p.InlineData != nil:
		return p.InlineData.MIMEType
	case p.FileData != nil:
		return p.FileData.MIMEType
	default:
		return ""
	}
}

// Validation errors.
var (
	ErrMultipleVariants = errors.New("content: part has more than one variant set")
	ErrEmptyMIMEType    = errors.New("content: part has an empty mime type")
	ErrEmptyFileURI     = errors.New("content: file part has an empty uri")
)

// Validate checks that exactly one variant is populated and that media parts
// carry a mime type.
func (p Part) Validate() error {
	set := 0
	if p.Text != "" {
		set++
	}
	if p.InlineData != nil {
		set++
	}
	if p.FileData != nil {
		set++
	}
	if set > 1 {
		return ErrMultipleVariants
	}
	switch {
	case p.InlineData != nil && p.InlineData.MIMEType == "":
		return ErrEmptyMIMEType
	case p.FileData != nil && p.FileData.MIMEType == "":
		return ErrEmptyMIMEType
	case p.FileData != nil && p.FileData.FileURI == "":
		return ErrEmptyFileURI
	}
	return nil
}

// MarshalJSON writes exactly one of the text, inline_data and file_data keys.
// A text part always carries the text key, even when empty.
func (p Part) MarshalJSON() ([]byte, error) {
	switch {
	case p.InlineData != nil:
		return json.Marshal(struct {
			InlineData *InlineData `json:"inline_data"`
		}{p.InlineData})
	case p.FileData != nil:
		return json.Marshal(struct {
			FileData *FileData `json:"file_data"`
		}{p.FileData})
	default:
		return json.Marshal(struct {
			Text string `json:"text"`
		}{p.Text})
	}
}

// ToGenAI converts parts to the google.golang.org/genai representation.
func ToGenAI(parts []Part) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		switch p.Kind() {
		case KindInline:
			data, err := p.InlineData.Bytes()
			if err != nil {
				return nil, fmt.Errorf("decode inline part %d: %w", i, err)
			}
			out = append(out, &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: p.InlineData.MIMEType}})
		case KindFile:
			out = append(out, &genai.Part{FileData: &genai.FileData{FileURI: p.FileData.FileURI, MIMEType: p.FileData.MIMEType}})
		default:
			out = append(out, &genai.Part{Text: p.Text})
		}
	}
	return out, nil
}
