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

import "io"

// StreamInfo holds metadata about the input being converted.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string
}

// DocumentConverterResult holds the output of a conversion.
type DocumentConverterResult struct {
	Markdown string
	Title    string
	// Documents counts the HTML documents the traversal driver walked to
	// produce Markdown (feed items, EPUB spine entries, archive members).
	Documents int
}

// DocumentConverter is the interface all source converters implement.
//
// Converters that carry HTML hand it to the traversal driver so the engine's
// visitor sees every document. A visitor abort must be returned unwrapped or
// wrapped with %w so the engine can stop instead of trying the next
// converter.
type DocumentConverter interface {
	// Accepts returns true if this converter can handle the given input.
	// It MUST NOT change the read position of reader.
	Accepts(info StreamInfo) bool

	// Convert performs the conversion.
	Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error)
}

func (r *DocumentConverterResult) add(o *DocumentConverterResult) {
	r.Documents += o.Documents
}
