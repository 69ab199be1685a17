package htmd

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// normalizeOutput applies post-processing to converter output:
// - Ensure output is valid UTF-8
// - Normalize line endings (CRLF -> LF)
// - Strip control characters (keep \n, \t)
// - Outside fenced code: strip trailing whitespace except backslash breaks,
//   collapse runs of blank lines to one
// - Trim leading/trailing blank lines from final output
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	var out []string
	fence := ""
	blank := false
	for _, line := range strings.Split(s, "\n") {
		if fence != "" {
			out = append(out, line)
			if strings.TrimSpace(line) == fence {
				fence = ""
			}
			continue
		}

		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false

		if f := openingFence(line); f != "" {
			fence = f
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// openingFence returns the backtick run that opens a fenced code block, or
// "" if line does not open one.
func openingFence(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == '`' {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}
