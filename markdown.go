package htmd

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`[ \t\n\r\f]+`)
	reBlankLines = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)*`)
	reBlankRun   = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	reBackticks  = regexp.MustCompile("`+")

	// reBlockMarker matches text that would open a heading, quote, list or
	// thematic break if it landed at the start of a line.
	reBlockMarker = regexp.MustCompile(`^\s*(?:#{1,6}(?:\s|$)|>|[-+](?:\s|$)|-{3,}\s*$|\d{1,9}[.)](?:\s|$))`)
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
)

var bracketEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

// block separates s from its neighbours by blank lines.
func block(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "\n\n" + s + "\n\n"
}

func collapseWhitespace(s string) string {
	return reWhitespace.ReplaceAllString(s, " ")
}

func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	if !reBlockMarker.MatchString(s) {
		return s
	}
	i := len(s) - len(strings.TrimLeft(s, " "))
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i] + `\` + s[i:]
}

func escapeBrackets(s string) string {
	return bracketEscaper.Replace(s)
}

// cleanInline folds rendered content onto one line.
func cleanInline(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// tighten removes blank lines so block children stay inside a list item.
func tighten(s string) string {
	return reBlankLines.ReplaceAllString(s, "\n")
}

// indent prefixes every line but the first with n spaces.
func indent(s string, n int) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func quoteLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

// joinLines joins non-empty child outputs one per line.
func joinLines(outs []rendered) string {
	var parts []string
	for _, o := range outs {
		if s := strings.Trim(o.out, "\n"); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func longestBacktickRun(s string) int {
	longest := 0
	for _, m := range reBackticks.FindAllString(s, -1) {
		if len(m) > longest {
			longest = len(m)
		}
	}
	return longest
}

func fenceCode(code, lang string) string {
	n := longestBacktickRun(code) + 1
	if n < 3 {
		n = 3
	}
	fence := strings.Repeat("`", n)
	return fence + lang + "\n" + code + "\n" + fence
}

func codeSpan(code string) string {
	if code == "" {
		return ""
	}
	code = strings.ReplaceAll(code, "\n", " ")
	delim := strings.Repeat("`", longestBacktickRun(code)+1)
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		code = " " + code + " "
	}
	return delim + code + delim
}

func destination(href string) string {
	if strings.ContainsAny(href, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(href) + ">"
	}
	return href
}

func titleSuffix(title string) string {
	if title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func linkMarkdown(text, href, title string) string {
	if href == "" {
		return text
	}
	if text == "" {
		text = escapeBrackets(href)
	}
	return "[" + text + "](" + destination(href) + titleSuffix(title) + ")"
}

func cellText(s string) string {
	s = cleanInline(s)
	return strings.ReplaceAll(s, "|", `\|`)
}

func tableSeparator(n int) string {
	return "|" + strings.Repeat(" --- |", n)
}

// finalize collapses blank-line runs and trims the document.
func finalize(s string) string {
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
