package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"
)

const (
	envLogLevel = "HTMD_LOG_LEVEL"
	envRules    = "HTMD_RULES"
)

var errUsage = errors.New("usage error")

type options struct {
	output       string
	extension    string
	mimeType     string
	charset      string
	showVersion  bool
	keepDataURIs bool
	rules        string
	logLevel     string
	jobs         int
	outputDir    string
	sources      []string
}

// parseFlags parses command line arguments (without the program name).
// Environment values fill in flags that were not given.
func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("htmd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&o.output, "output", "o", "", "Output file (default: stdout)")
	fs.StringVarP(&o.extension, "extension", "x", "", "File extension hint (for stdin input)")
	fs.StringVarP(&o.mimeType, "mime-type", "m", "", "MIME type hint")
	fs.StringVarP(&o.charset, "charset", "c", "", "Charset hint")
	fs.BoolVarP(&o.showVersion, "version", "v", false, "Show version")
	fs.BoolVar(&o.keepDataURIs, "keep-data-uris", false, "Keep full base64-encoded data URIs")
	fs.StringVarP(&o.rules, "rules", "r", "", "YAML rule file applied as the visitor (env "+envRules+")")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error (env "+envLogLevel+")")
	fs.IntVarP(&o.jobs, "jobs", "j", 0, "Parallel conversions in batch mode (default: GOMAXPROCS)")
	fs.StringVar(&o.outputDir, "output-dir", "", "Directory for batch output, one .md per source")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: htmd [flags] [source...]\n\n")
		fmt.Fprintf(stderr, "Convert HTML, feeds, EPUB and ZIP archives to Markdown.\n\n")
		fmt.Fprintf(stderr, "Arguments:\n")
		fmt.Fprintf(stderr, "  source    File path or URL to convert (reads stdin if omitted)\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	o.sources = fs.Args()

	if !fs.Changed("log-level") {
		if v := getenv(envLogLevel); v != "" {
			o.logLevel = v
		}
	}
	if !fs.Changed("rules") {
		o.rules = getenv(envRules)
	}

	if o.extension != "" {
		o.extension = strings.ToLower(o.extension)
		if !strings.HasPrefix(o.extension, ".") {
			o.extension = "." + o.extension
		}
	}
	if o.jobs < 1 {
		o.jobs = runtime.GOMAXPROCS(0)
	}

	if len(o.sources) > 1 {
		if o.outputDir == "" {
			return nil, fmt.Errorf("%w: several sources need --output-dir", errUsage)
		}
		if o.output != "" {
			return nil, fmt.Errorf("%w: --output takes a single source", errUsage)
		}
	}
	if o.outputDir != "" && len(o.sources) == 0 {
		return nil, fmt.Errorf("%w: --output-dir needs file or URL sources", errUsage)
	}
	return o, nil
}
