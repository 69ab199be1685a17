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
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// chardetAliases maps detector names that are not WHATWG labels.
var chardetAliases = map[string]string{
	"gb-18030": "gb18030",
	"utf-32be": "",
	"utf-32le": "",
}

// lookupEncoding resolves a charset label, or returns nil if unknown.
func lookupEncoding(label string) encoding.Encoding {
	label = strings.ToLower(strings.TrimSpace(label))
	if alias, ok := chardetAliases[label]; ok {
		if alias == "" {
			return nil
		}
		label = alias
	}
	enc, _ := charset.Lookup(label)
	return enc
}

// decodeHTML converts raw HTML bytes to UTF-8. An explicit charset hint
// wins; then BOM and <meta> prescan; then statistical detection.
func decodeHTML(data []byte, hint string) string {
	if hint != "" {
		if enc := lookupEncoding(hint); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}

	enc, name, certain := charset.DetermineEncoding(data, "text/html")
	if certain {
		if name == "utf-8" {
			return strings.ToValidUTF8(string(data), "�")
		}
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			return string(decoded)
		}
	}

	return decodeWithDetection(data)
}

// decodeWithDetection detects the encoding of data and decodes it to UTF-8.
func decodeWithDetection(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return strings.ToValidUTF8(string(data), "�")
	}

	bestScore := -1 << 31
	best := ""
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if score := scoreDecodedText(text, r.Confidence); score > bestScore {
			bestScore = score
			best = text
		}
	}
	if best == "" {
		return strings.ToValidUTF8(string(data), "�")
	}
	return best
}

// scoreDecodedText rates how coherent a decoding looks. Detector confidence
// is the baseline; letters earn points, replacement and control characters
// lose them.
func scoreDecodedText(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == '�':
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			score += 3
		case unicode.IsLetter(r):
			score++
		}
	}
	return score
}
