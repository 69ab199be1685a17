package htmd_test

import (
	"strings"
	"testing"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge/async"
	"github.com/nicholasgasior/htmd/bridge/mailbox"
	"github.com/nicholasgasior/htmd/bridge/native"
	"github.com/nicholasgasior/htmd/bridge/reflective"
	"github.com/nicholasgasior/htmd/internal/cvisit"
	"github.com/tidwall/gjson"
)

// behavior is one visitor written once and run through every bridge.
type behavior struct {
	ops    []htmd.Op
	decide func(op htmd.Op, tag string, attrs []htmd.Attribute, args []any) htmd.VisitResult
	log    strings.Builder
}

func (b *behavior) handles(op htmd.Op) bool {
	for _, o := range b.ops {
		if o == op {
			return true
		}
	}
	return false
}

func (b *behavior) call(op htmd.Op, tag string, attrs []htmd.Attribute, args []any) htmd.VisitResult {
	if !b.handles(op) {
		return htmd.Continue()
	}
	return b.decide(op, tag, attrs, args)
}

// direct

type directVisitor struct{ b *behavior }

func (d directVisitor) Handles(op htmd.Op) bool { return d.b.handles(op) }

func (d directVisitor) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) htmd.VisitResult {
	return d.b.call(op, ctx.TagName, ctx.Attributes, a.Values(op))
}

// reflective

type reflectHost struct{ b *behavior }

func (h *reflectHost) VisitElementStart(ctx *htmd.NodeContext) htmd.VisitResult {
	return h.b.call(htmd.OpElementStart, ctx.TagName, ctx.Attributes, nil)
}

func (h *reflectHost) VisitElementEnd(ctx *htmd.NodeContext, output string) htmd.VisitResult {
	return h.b.call(htmd.OpElementEnd, ctx.TagName, ctx.Attributes, []any{output})
}

func (h *reflectHost) VisitText(ctx *htmd.NodeContext, text string) htmd.VisitResult {
	return h.b.call(htmd.OpText, ctx.TagName, ctx.Attributes, []any{text})
}

func (h *reflectHost) VisitLink(ctx *htmd.NodeContext, href string) htmd.VisitResult {
	return h.b.call(htmd.OpLink, ctx.TagName, ctx.Attributes, []any{href})
}

// async

func asyncObject(b *behavior) async.Object {
	obj := async.Object{}
	for _, op := range b.ops {
		op := op
		obj[op.CamelName()] = func(payload string) *async.Promise {
			var attrs []htmd.Attribute
			gjson.Get(payload, "context.attributes").ForEach(func(_, pair gjson.Result) bool {
				attrs = append(attrs, htmd.Attribute{Name: pair.Get("0").String(), Value: pair.Get("1").String()})
				return true
			})
			var args []any
			for _, p := range op.Params() {
				args = append(args, gjson.Get(payload, p.CamelName()).Value())
			}
			tag := gjson.Get(payload, "context.tagName").String()
			return async.Resolve(async.Result(b.call(op, tag, attrs, args)))
		}
	}
	return obj
}

// mailbox

func term(r htmd.VisitResult) any {
	switch r.Kind() {
	case htmd.ResultSkip:
		return mailbox.Atom("skip")
	case htmd.ResultPreserveHTML:
		return mailbox.Atom("preserve_html")
	case htmd.ResultCustom:
		return mailbox.Tuple{mailbox.Atom("custom"), r.Output()}
	case htmd.ResultError:
		return mailbox.Tuple{mailbox.Atom("error"), r.Message()}
	}
	return mailbox.Atom("continue")
}

type bridgeRun func(t *testing.T, b *behavior, html string) (string, error)

var bridges = map[string]bridgeRun{
	"direct": func(t *testing.T, b *behavior, html string) (string, error) {
		return htmd.Traverse(html, htmd.Adapt(directVisitor{b}))
	},
	"reflective": func(t *testing.T, b *behavior, html string) (string, error) {
		if len(b.ops) == 0 {
			return reflective.New(struct{}{}).Convert(html)
		}
		return reflective.New(&reflectHost{b}).Convert(html)
	},
	"async": func(t *testing.T, b *behavior, html string) (string, error) {
		rt := async.NewRuntime()
		defer rt.Close()
		return async.New(rt, asyncObject(b)).Convert(html)
	},
	"mailbox": func(t *testing.T, b *behavior, html string) (string, error) {
		proc := mailbox.Serve(func(name string, ctx htmd.NodeContext, args []any) any {
			op, _ := htmd.LookupOp(name)
			return term(b.call(op, ctx.TagName, ctx.Attributes, args))
		})
		defer proc.Stop()
		names := make([]string, len(b.ops))
		for i, op := range b.ops {
			names[i] = op.String()
		}
		v, err := mailbox.New(proc, names)
		if err != nil {
			t.Fatal(err)
		}
		return v.Convert(html)
	},
}

// property is one behavior and its expected outcome on every bridge. The
// native bridge runs the equivalent C table.
type property struct {
	name     string
	html     string
	behavior func() *behavior
	want     string
	// wantDefault compares against the rendering with no visitor.
	wantDefault bool
	wantErr     string
	wantLog     string
	scenario    cvisit.Scenario
	nativeLog   func() string
}

func paragraphCounter(op htmd.Op, result htmd.VisitResult) func() *behavior {
	return func() *behavior {
		n := 0
		return &behavior{
			ops: []htmd.Op{op},
			decide: func(_ htmd.Op, tag string, _ []htmd.Attribute, _ []any) htmd.VisitResult {
				if tag != "p" {
					return htmd.Continue()
				}
				n++
				if n == 2 {
					return result
				}
				return htmd.Continue()
			},
		}
	}
}

var properties = []property{
	{
		name:     "empty visitor renders the default",
		html:     `<h1>Title</h1><p>Some <em>text</em> and <a href="/x">a link</a>.</p><ul><li>one</li><li>two</li></ul>`,
		behavior: func() *behavior { return &behavior{} },
		want:     "# Title\n\nSome *text* and [a link](/x).\n\n- one\n- two",
		scenario: cvisit.Empty,
	},
	{
		name: "callback order",
		html: "<p>Hi <b>x</b></p>",
		behavior: func() *behavior {
			b := &behavior{ops: []htmd.Op{htmd.OpElementStart, htmd.OpText, htmd.OpElementEnd}}
			b.decide = func(op htmd.Op, tag string, _ []htmd.Attribute, args []any) htmd.VisitResult {
				switch op {
				case htmd.OpElementStart:
					b.log.WriteString("start:" + tag + ";")
				case htmd.OpText:
					b.log.WriteString("text:" + args[0].(string) + ";")
				case htmd.OpElementEnd:
					b.log.WriteString("end:" + tag + ";")
				}
				return htmd.Continue()
			}
			return b
		},
		want:      "Hi **x**",
		wantLog:   "start:p;text:Hi ;start:b;text:x;end:b;end:p;",
		scenario:  cvisit.Events,
		nativeLog: cvisit.EventLog,
	},
	{
		name: "skip drops the subtree",
		html: `<p>keep</p><section><p>gone</p></section><p>also</p>`,
		behavior: func() *behavior {
			return &behavior{
				ops: []htmd.Op{htmd.OpElementStart},
				decide: func(_ htmd.Op, tag string, _ []htmd.Attribute, _ []any) htmd.VisitResult {
					if tag == "section" {
						return htmd.Skip()
					}
					return htmd.Continue()
				},
			}
		},
		want:     "keep\n\nalso",
		scenario: cvisit.SkipSection,
	},
	{
		name:     "custom replaces the element",
		html:     `<p>one</p><p>two</p><p>three</p>`,
		behavior: paragraphCounter(htmd.OpElementEnd, htmd.Custom("CUSTOM")),
		want:     "one\n\nCUSTOM\n\nthree",
		scenario: cvisit.CustomSecondParagraph,
	},
	{
		name:     "error aborts with the message",
		html:     `<p>one</p><p>two</p><p>three</p>`,
		behavior: paragraphCounter(htmd.OpElementStart, htmd.Error("stop here")),
		wantErr:  "stop here",
		scenario: cvisit.ErrorSecondParagraph,
	},
	{
		name: "attributes arrive in source order",
		html: `<p><a href="x" data-empty="" title="t">l</a></p>`,
		behavior: func() *behavior {
			b := &behavior{ops: []htmd.Op{htmd.OpElementStart}}
			b.decide = func(_ htmd.Op, tag string, attrs []htmd.Attribute, _ []any) htmd.VisitResult {
				if tag == "a" {
					for _, a := range attrs {
						b.log.WriteString(a.Name + "=" + a.Value + ";")
					}
				}
				return htmd.Continue()
			}
			return b
		},
		want:     `[l](x "t")`,
		wantLog:  "href=x;data-empty=;title=t;",
		scenario: cvisit.RecordAttributes,
		nativeLog: func() string {
			s, _ := cvisit.Attributes()
			return s
		},
	},
	{
		name: "only the overridden operation changes",
		html: `<p>see <a href="u">here</a></p>`,
		behavior: func() *behavior {
			return &behavior{
				ops: []htmd.Op{htmd.OpLink},
				decide: func(_ htmd.Op, _ string, _ []htmd.Attribute, args []any) htmd.VisitResult {
					return htmd.Custom("LINK(" + args[0].(string) + ")")
				},
			}
		},
		want:     "see LINK(u)",
		scenario: cvisit.LinkOnly,
	},
	{
		name: "a continuing link callback leaves other structures alone",
		html: `<h1>T</h1><ul><li>a</li><li>b</li></ul>` +
			`<table><tr><th>A</th></tr><tr><td>1</td></tr></table><p><a href="/x" title="t">l</a></p>`,
		behavior: func() *behavior {
			return &behavior{
				ops: []htmd.Op{htmd.OpLink},
				decide: func(htmd.Op, string, []htmd.Attribute, []any) htmd.VisitResult {
					return htmd.Continue()
				},
			}
		},
		wantDefault: true,
		scenario:    cvisit.Args,
	},
	{
		name: "empty attribute values survive",
		html: `<p><a href="" title="t">l</a></p>`,
		behavior: func() *behavior {
			b := &behavior{ops: []htmd.Op{htmd.OpElementStart}}
			b.decide = func(_ htmd.Op, tag string, attrs []htmd.Attribute, _ []any) htmd.VisitResult {
				if tag == "a" {
					for _, a := range attrs {
						b.log.WriteString(a.Name + "=" + a.Value + ";")
					}
				}
				return htmd.Continue()
			}
			return b
		},
		wantDefault: true,
		wantLog:     "href=;title=t;",
		scenario:    cvisit.RecordAttributes,
		nativeLog: func() string {
			s, _ := cvisit.Attributes()
			return s
		},
	},
	{
		name: "skip drops nested content",
		html: `<div><p>keep</p><section><span>drop</span></section></div>`,
		behavior: func() *behavior {
			return &behavior{
				ops: []htmd.Op{htmd.OpElementStart},
				decide: func(_ htmd.Op, tag string, _ []htmd.Attribute, _ []any) htmd.VisitResult {
					if tag == "section" {
						return htmd.Skip()
					}
					return htmd.Continue()
				},
			}
		},
		want:     "keep",
		scenario: cvisit.SkipSection,
	},
}

func checkOutcome(t *testing.T, p property, out string, err error, log string) {
	t.Helper()
	if p.wantErr != "" {
		if out != "" {
			t.Errorf("partial output %q", out)
		}
		if !htmd.IsVisitorAbort(err) || err.Error() != p.wantErr {
			t.Errorf("error = %v, want visitor abort %q", err, p.wantErr)
		}
		return
	}
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	want := p.want
	if p.wantDefault {
		if want, err = htmd.Traverse(p.html, nil); err != nil {
			t.Fatal(err)
		}
	}
	if out != want {
		t.Errorf("Convert() = %q, want %q", out, want)
	}
	if strings.Contains(p.html, "drop") && strings.Contains(out, "drop") {
		t.Errorf("skipped content rendered: %q", out)
	}
	if p.wantLog != "" && log != p.wantLog {
		t.Errorf("log = %q, want %q", log, p.wantLog)
	}
}

func TestBridgeConformance(t *testing.T) {
	for _, p := range properties {
		t.Run(p.name, func(t *testing.T) {
			for name, run := range bridges {
				t.Run(name, func(t *testing.T) {
					b := p.behavior()
					out, err := run(t, b, p.html)
					checkOutcome(t, p, out, err, b.log.String())
				})
			}
			t.Run("native", func(t *testing.T) {
				cvisit.Reset()
				v, err := native.New(cvisit.Table(p.scenario))
				if err != nil {
					t.Fatal(err)
				}
				defer v.Close()
				out, err := v.Convert(p.html)
				var log string
				if p.nativeLog != nil {
					log = p.nativeLog()
				}
				checkOutcome(t, p, out, err, log)
			})
		})
	}
}

func TestContextNotRetained(t *testing.T) {
	var kept []*htmd.NodeContext
	v := &htmd.Funcs{
		ElementStart: func(ctx *htmd.NodeContext) htmd.VisitResult {
			kept = append(kept, ctx)
			return htmd.Continue()
		},
	}
	if _, err := htmd.Traverse(`<div><p>a</p><p>b <span>c</span></p></div>`, v); err != nil {
		t.Fatal(err)
	}
	for _, ctx := range kept {
		if ctx.Valid() || ctx.TagName != "" {
			t.Errorf("context still readable after its callback: %+v", *ctx)
		}
	}

	cvisit.Reset()
	nv, err := native.New(cvisit.Table(cvisit.RetainTag))
	if err != nil {
		t.Fatal(err)
	}
	defer nv.Close()
	if _, err := nv.Convert(`<div><p>a</p><p>b <span>c</span></p><ul><li>d</li></ul></div>`); err != nil {
		t.Fatal(err)
	}
	if n := cvisit.RetainViolations(); n != 0 {
		t.Errorf("%d retained tag names still readable after their callback", n)
	}
}
