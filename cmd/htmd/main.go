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

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/internal/rules"
)

var version = "dev"

const (
	exitOK      = 0
	exitGeneral = 1
	exitUsage   = 2
	exitIO      = 3
	exitAborted = 4
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("Invalid log level, defaulting to warn", "level", level)
		return slog.LevelWarn
	}
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	case htmd.IsVisitorAbort(err):
		return exitAborted
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return exitIO
	}
	return exitGeneral
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCodeFor(err))
	}
	if o.showVersion {
		fmt.Printf("htmd %s\n", version)
		os.Exit(exitOK)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(o.logLevel),
	}))
	slog.SetDefault(logger)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	if err := run(context.Background(), o, os.Stdin, os.Stdout, logger); err != nil {
		if htmd.IsVisitorAbort(err) {
			logger.Error("Conversion aborted by rule", "reason", err)
		} else {
			logger.Error("Conversion failed", "error", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func run(ctx context.Context, o *options, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	var set *rules.Set
	if o.rules != "" {
		s, err := rules.Load(o.rules)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		logger.Debug("Loaded rules", "path", o.rules, "count", s.Len())
		set = s
	}

	if o.outputDir != "" {
		return convertBatch(ctx, o, set, logger)
	}

	e := newEngine(o, set, logger)
	var (
		result *htmd.DocumentConverterResult
		err    error
	)
	if len(o.sources) == 0 {
		data, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		info := htmd.StreamInfo{
			Extension: o.extension,
			MIMEType:  o.mimeType,
			Charset:   o.charset,
		}
		if info.MIMEType == "" && info.Extension != "" {
			info.MIMEType = htmd.MIMEFromExtension(info.Extension)
		}
		result, err = e.ConvertReader(bytes.NewReader(data), info)
	} else {
		result, err = e.Convert(o.sources[0])
	}
	if err != nil {
		return err
	}
	logger.Debug("Converted", "title", result.Title, "documents", result.Documents)

	if o.output != "" {
		return writeMarkdown(o.output, result.Markdown)
	}
	_, err = fmt.Fprintln(stdout, result.Markdown)
	return err
}

// newEngine builds one engine. Engines convert sequentially, so batch mode
// builds one per job.
func newEngine(o *options, set *rules.Set, logger *slog.Logger) *htmd.Engine {
	opts := []htmd.Option{htmd.WithLogger(logger)}
	if o.keepDataURIs {
		opts = append(opts, htmd.WithKeepDataURIs(true))
	}
	if set != nil {
		opts = append(opts, htmd.WithVisitor(set.Visitor()))
	}
	return htmd.New(opts...)
}

func writeMarkdown(path, md string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(md+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
