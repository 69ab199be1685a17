package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nicholasgasior/htmd/internal/rules"
)

// convertBatch converts every source into outputDir, at most o.jobs at a
// time. The first failure cancels the sources not yet started.
func convertBatch(ctx context.Context, o *options, set *rules.Set, logger *slog.Logger) error {
	dsts := outputPaths(o.outputDir, o.sources)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)
	for i, src := range o.sources {
		dst := dsts[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := newEngine(o, set, logger).Convert(src)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			if err := writeMarkdown(dst, result.Markdown); err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			logger.Info("Converted", "source", src, "output", dst, "documents", result.Documents)
			return nil
		})
	}
	return g.Wait()
}

// outputPaths maps each source to dir/<name>.md. A name already taken gets
// the lowest numeric suffix that is still free.
func outputPaths(dir string, sources []string) []string {
	used := make(map[string]bool, len(sources))
	out := make([]string, len(sources))
	for i, src := range sources {
		base := baseName(src)
		name := base
		for n := 2; used[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = filepath.Join(dir, name+".md")
	}
	return out
}

func baseName(src string) string {
	var base string
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if u, err := url.Parse(src); err == nil {
			base = path.Base(u.Path)
			if base == "/" || base == "." {
				return u.Hostname()
			}
		}
	} else {
		base = filepath.Base(src)
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = "index"
	}
	return base
}
