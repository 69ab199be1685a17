// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package htmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// PrioritySpecific is for format-specific converters (RSS, EPUB, DOCX,
	// PPTX).
	PrioritySpecific = 0.0
	// PriorityGeneric is for fallback converters (HTML, ZIP).
	PriorityGeneric = 10.0
)

type registeredConverter struct {
	converter DocumentConverter
	priority  float64
	name      string
}

// Engine converts HTML-bearing sources to Markdown, routing every HTML
// document through the traversal driver with the configured visitor.
type Engine struct {
	converters   []registeredConverter
	visitor      Visitor
	keepDataURIs bool
	logger       *slog.Logger
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.enableBuiltins()
	return e
}

// RegisterConverter adds a custom converter with the given priority.
// Lower priority values are tried first.
func (e *Engine) RegisterConverter(name string, c DocumentConverter, priority float64) {
	e.converters = append(e.converters, registeredConverter{
		converter: c,
		priority:  priority,
		name:      name,
	})
	sort.SliceStable(e.converters, func(i, j int) bool {
		return e.converters[i].priority < e.converters[j].priority
	})
}

// ConvertHTML converts an HTML string with the engine's visitor.
func (e *Engine) ConvertHTML(htmlStr string) (*DocumentConverterResult, error) {
	return e.ConvertReader(strings.NewReader(htmlStr), StreamInfo{Extension: ".html", MIMEType: "text/html"})
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (e *Engine) Convert(source string) (*DocumentConverterResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return e.ConvertURL(source)
	}
	return e.ConvertFile(source)
}

// ConvertFile converts a local file to markdown.
func (e *Engine) ConvertFile(path string) (*DocumentConverterResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	info := StreamInfo{
		Extension: ext,
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	info.MIMEType = detectMIMEType(f, ext)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	return e.ConvertReader(f, info)
}

// ConvertReader converts a stream to markdown using the provided StreamInfo.
func (e *Engine) ConvertReader(r io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	return e.convert(r, info)
}

// ConvertURL fetches a URL and converts the response to markdown.
func (e *Engine) ConvertURL(url string) (*DocumentConverterResult, error) {
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch URL: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	reader := bytes.NewReader(data)

	info := StreamInfo{URL: url}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		parts := strings.Split(ct, ";")
		info.MIMEType = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "charset=") {
				info.Charset = strings.Trim(strings.TrimPrefix(p, "charset="), `"'`)
			}
		}
	}

	urlPath := strings.Split(url, "?")[0]
	info.Extension = strings.ToLower(filepath.Ext(urlPath))
	if info.Extension != "" {
		info.Filename = filepath.Base(urlPath)
	}

	if info.MIMEType == "" {
		info.MIMEType = detectMIMEType(reader, info.Extension)
	}

	return e.ConvertReader(reader, info)
}

// convert tries each accepting converter in priority order. A visitor abort
// ends the conversion at once; other failures fall through to the next
// converter.
func (e *Engine) convert(r io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	var failedAttempts []FailedConversionAttempt

	for _, rc := range e.converters {
		if !rc.converter.Accepts(info) {
			continue
		}

		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}

		result, err := rc.converter.Convert(r, info)
		if err != nil {
			if IsVisitorAbort(err) {
				return nil, err
			}
			e.logger.Debug("converter failed", "converter", rc.name, "error", err)
			failedAttempts = append(failedAttempts, FailedConversionAttempt{
				Converter: rc.name,
				Err:       err,
			})
			continue
		}

		result.Markdown = normalizeOutput(result.Markdown)
		return result, nil
	}

	if len(failedAttempts) > 0 {
		return nil, &ConversionError{Attempts: failedAttempts}
	}

	return nil, &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

// traverse runs the driver over one HTML document with the engine's visitor.
func (e *Engine) traverse(htmlStr string) (string, error) {
	return Traverse(htmlStr, e.visitor)
}

func (e *Engine) enableBuiltins() {
	e.RegisterConverter("rss", NewRSSConverter(e), PrioritySpecific)
	e.RegisterConverter("epub", NewEpubConverter(e), PrioritySpecific)
	e.RegisterConverter("docx", NewDocxConverter(e), PrioritySpecific)
	e.RegisterConverter("pptx", NewPptxConverter(e), PrioritySpecific)

	e.RegisterConverter("html", NewHTMLConverter(e), PriorityGeneric)
	e.RegisterConverter("zip", NewZipConverter(e), PriorityGeneric)
}

// detectMIMEType detects the MIME type from content and extension.
func detectMIMEType(r io.ReadSeeker, ext string) string {
	defer r.Seek(0, io.SeekStart)

	mtype, err := mimetype.DetectReader(r)
	if err == nil && mtype.String() != "application/octet-stream" {
		return mtype.String()
	}
	return MIMEFromExtension(ext)
}

// MIMEFromExtension returns a MIME type for the extensions the engine
// understands.
func MIMEFromExtension(ext string) string {
	extMap := map[string]string{
		".html":  "text/html",
		".htm":   "text/html",
		".xhtml": "application/xhtml+xml",
		".xml":   "text/xml",
		".rss":   "application/rss+xml",
		".atom":  "application/atom+xml",
		".epub":  "application/epub+zip",
		".zip":   "application/zip",
		".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
	if m, ok := extMap[ext]; ok {
		return m
	}
	return "application/octet-stream"
}
