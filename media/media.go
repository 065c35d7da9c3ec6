//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package media infers MIME types for prompt content.
package media

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// OctetStream is returned when no better type is known.
const OctetStream = "application/octet-stream"

// builtin covers the formats Gemini accepts so results do not depend on the
// host's mime.types files.
var builtin = map[string]string{
	// images
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".gif":  "image/gif",
	// audio
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".aiff": "audio/aiff",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	// video
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpg",
	".mov":  "video/mov",
	".avi":  "video/avi",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".wmv":  "video/wmv",
	".3gp":  "video/3gpp",
	// documents and text
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".md":   "text/md",
	".csv":  "text/csv",
	".xml":  "text/xml",
	".rtf":  "text/rtf",
	".js":   "text/javascript",
	".py":   "text/x-python",
	".json": "application/json",
}

// TypeFor returns the MIME type for a file name, path or URL path based on
// its extension. It never fails: unknown extensions yield OctetStream.
func TypeFor(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))
	if ext == "" {
		return OctetStream
	}
	if t, ok := builtin[ext]; ok {
		return t
	}
	if t := stripParams(mime.TypeByExtension(ext)); t != "" {
		return t
	}
	return OctetStream
}

// Detect sniffs the content of the file at p. It returns OctetStream when the
// file cannot be read or its format is not recognised.
func Detect(p string) string {
	m, err := mimetype.DetectFile(p)
	if err != nil || m == nil {
		return OctetStream
	}
	if t := stripParams(m.String()); t != "" {
		return t
	}
	return OctetStream
}

func stripParams(t string) string {
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.TrimSpace(strings.SplitN(t, ";", 2)[0])
	}
	return mediaType
}
