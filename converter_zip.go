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
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ZipConverter converts every supported member of a ZIP archive.
type ZipConverter struct {
	engine *Engine
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(e *Engine) *ZipConverter {
	return &ZipConverter{engine: e}
}

func (c *ZipConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".zip" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/zip")
}

func (c *ZipConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read ZIP: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}

	filename := info.Filename
	if filename == "" {
		filename = "archive"
	}
	result := &DocumentConverterResult{}
	var md strings.Builder
	fmt.Fprintf(&md, "Content from the zip file `%s`:\n\n", filename)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		member, err := readZipMember(f)
		if err != nil {
			c.engine.logger.Debug("skipping zip member", "member", f.Name, "error", err)
			continue
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		memberInfo := StreamInfo{
			Extension: ext,
			Filename:  filepath.Base(f.Name),
		}
		r := bytes.NewReader(member)
		memberInfo.MIMEType = detectMIMEType(r, ext)

		converted, err := c.engine.ConvertReader(r, memberInfo)
		if err != nil {
			if IsVisitorAbort(err) {
				return nil, err
			}
			continue
		}
		result.add(converted)

		if strings.TrimSpace(converted.Markdown) != "" {
			fmt.Fprintf(&md, "## File: %s\n\n", f.Name)
			md.WriteString(converted.Markdown)
			md.WriteString("\n\n")
		}
	}

	result.Markdown = md.String()
	return result, nil
}

func readZipMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
