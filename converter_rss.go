package htmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSConverter handles RSS and Atom feeds. Item bodies that carry markup go
// through the traversal driver, one document per item.
type RSSConverter struct {
	engine *Engine
}

// NewRSSConverter creates a new RSSConverter.
func NewRSSConverter(e *Engine) *RSSConverter {
	return &RSSConverter{engine: e}
}

func (c *RSSConverter) Accepts(info StreamInfo) bool {
	switch info.Extension {
	case ".rss", ".atom", ".xml":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	for _, prefix := range []string{"application/rss", "application/atom", "text/xml", "application/xml"} {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}

func (c *RSSConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	feed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	result := &DocumentConverterResult{Title: feed.Title}
	var b strings.Builder

	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", feed.Title)
	}
	if feed.Description != "" {
		desc, err := c.body(feed.Description, result)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%s\n\n", desc)
	}

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", item.Title)
		}
		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		md, err := c.body(content, result)
		if err != nil {
			return nil, fmt.Errorf("feed item %q: %w", item.Title, err)
		}
		if md != "" {
			b.WriteString(md)
			b.WriteString("\n\n")
		}
	}

	result.Markdown = b.String()
	return result, nil
}

// body renders one feed field. Plain text passes through unchanged.
func (c *RSSConverter) body(content string, result *DocumentConverterResult) (string, error) {
	content = strings.TrimSpace(content)
	if !strings.Contains(content, "<") || !strings.Contains(content, ">") {
		return content, nil
	}
	md, err := c.engine.traverse(content)
	if err != nil {
		return "", err
	}
	result.Documents++
	return md, nil
}
