// Package rules compiles declarative YAML rule files into a visitor.
//
// A rule file looks like:
//
//	version: 1
//	rules:
//	  - name: drop-nav
//	    on: element_start
//	    tag: nav
//	    action: skip
//	  - name: nofollow-links
//	    on: link
//	    attr: {rel: nofollow}
//	    action: custom
//	    output: "{text} <{href}>"
//
// The first rule matching an operation wins; no match continues with the
// default rendering. Output and message templates may reference the
// operation's arguments as {name} and the element as {tag}.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/nicholasgasior/htmd/internal/yamlutil"
)

// Version is the only rule file version understood.
const Version = 1

var ErrVersion = errors.New("rules: unsupported version")

// Config is the decoded rule file.
type Config struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Rule matches one operation, optionally narrowed by tag and attributes.
// An attribute value of "" matches any value as long as the attribute is
// present.
type Rule struct {
	Name    string            `yaml:"name"`
	On      string            `yaml:"on"`
	Tag     string            `yaml:"tag"`
	Attr    map[string]string `yaml:"attr"`
	Action  string            `yaml:"action"`
	Output  string            `yaml:"output"`
	Message string            `yaml:"message"`
}

type compiled struct {
	name   string
	tag    string
	attr   map[string]string
	kind   htmd.ResultKind
	output *template
}

// Set is a compiled rule set. It implements htmd.Dispatcher.
type Set struct {
	byOp [htmd.NumOps][]compiled
	n    int
}

// Load reads and compiles a rule file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse compiles rule file contents. Unknown keys are rejected.
func Parse(data []byte) (*Set, error) {
	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yamlutil.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Version != 0 && probe.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, probe.Version)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}
	return Compile(cfg)
}

// Compile validates cfg and indexes its rules by operation.
func Compile(cfg Config) (*Set, error) {
	s := &Set{}
	for i, r := range cfg.Rules {
		label := r.Name
		if label == "" {
			label = "#" + strconv.Itoa(i+1)
		}
		op, c, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", label, err)
		}
		c.name = label
		s.byOp[op] = append(s.byOp[op], c)
		s.n++
	}
	return s, nil
}

func compile(r Rule) (htmd.Op, compiled, error) {
	op, ok := htmd.LookupOp(r.On)
	if !ok {
		return 0, compiled{}, fmt.Errorf("unknown operation %q", r.On)
	}
	kind, ok := bridge.ParseKind(r.Action)
	if !ok {
		return 0, compiled{}, fmt.Errorf("unknown action %q", r.Action)
	}

	c := compiled{tag: strings.ToLower(r.Tag), kind: kind}
	if len(r.Attr) > 0 {
		c.attr = make(map[string]string, len(r.Attr))
		for k, v := range r.Attr {
			c.attr[strings.ToLower(k)] = v
		}
	}

	var src string
	switch kind {
	case htmd.ResultCustom:
		src = r.Output
	case htmd.ResultError:
		src = r.Message
		if src == "" {
			return 0, compiled{}, errors.New("error action needs a message")
		}
	default:
		if r.Output != "" || r.Message != "" {
			return 0, compiled{}, fmt.Errorf("%s action takes no output or message", kind)
		}
	}
	if kind == htmd.ResultCustom || kind == htmd.ResultError {
		t, err := parseTemplate(src, op)
		if err != nil {
			return 0, compiled{}, err
		}
		c.output = t
	}
	return op, c, nil
}

// Len returns the number of rules.
func (s *Set) Len() int { return s.n }

// Handles reports whether any rule targets op.
func (s *Set) Handles(op htmd.Op) bool {
	return int(op) < htmd.NumOps && len(s.byOp[op]) > 0
}

// Dispatch applies the first matching rule.
func (s *Set) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) htmd.VisitResult {
	for i := range s.byOp[op] {
		c := &s.byOp[op][i]
		if !c.matches(ctx) {
			continue
		}
		switch c.kind {
		case htmd.ResultCustom:
			return htmd.Custom(c.output.expand(ctx, a))
		case htmd.ResultError:
			return htmd.Error(c.output.expand(ctx, a))
		case htmd.ResultSkip:
			return htmd.Skip()
		case htmd.ResultPreserveHTML:
			return htmd.PreserveHTML()
		}
		return htmd.Continue()
	}
	return htmd.Continue()
}

func (c *compiled) matches(ctx *htmd.NodeContext) bool {
	if c.tag != "" && c.tag != ctx.TagName {
		return false
	}
	for k, want := range c.attr {
		got, ok := ctx.Attr(k)
		if !ok || (want != "" && got != want) {
			return false
		}
	}
	return true
}

// Visitor returns the rule set as an htmd.Visitor.
func (s *Set) Visitor() htmd.Visitor { return htmd.Adapt(s) }

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// template is a parsed output string. Even parts are literal text, odd
// parts are placeholder names.
type template struct {
	parts []string
	op    htmd.Op
}

func parseTemplate(src string, op htmd.Op) (*template, error) {
	t := &template{op: op}
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(src, -1) {
		name := src[m[2]:m[3]]
		if name != "tag" && !hasParam(op, name) {
			return nil, fmt.Errorf("%s has no argument {%s}", op, name)
		}
		t.parts = append(t.parts, src[last:m[0]], name)
		last = m[1]
	}
	t.parts = append(t.parts, src[last:])
	return t, nil
}

func hasParam(op htmd.Op, name string) bool {
	for _, p := range op.Params() {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (t *template) expand(ctx *htmd.NodeContext, a *htmd.Args) string {
	var b strings.Builder
	for i, part := range t.parts {
		if i%2 == 0 {
			b.WriteString(part)
			continue
		}
		if part == "tag" {
			b.WriteString(ctx.TagName)
			continue
		}
		for _, p := range t.op.Params() {
			if p.Name == part {
				b.WriteString(format(a.Arg(p)))
				break
			}
		}
	}
	return b.String()
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, " | ")
	}
	return fmt.Sprint(v)
}
