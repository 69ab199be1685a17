package htmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// renderVector is one default-rendering case. want is compared exactly when
// set; mustInclude and mustNotInclude are checked otherwise.
type renderVector struct {
	name           string
	html           string
	want           string
	mustInclude    []string
	mustNotInclude []string
}

var renderVectors = []renderVector{
	{name: "heading and paragraph", html: "<h1>Title</h1><p>Hello <em>world</em></p>", want: "# Title\n\nHello *world*"},
	{name: "unordered list", html: "<ul>\n<li>a</li>\n<li>b</li>\n</ul>", want: "- a\n- b"},
	{name: "ordered list start", html: `<ol start="3"><li>x</li><li>y</li></ol>`, want: "3. x\n4. y"},
	{name: "nested list", html: "<ul><li>a<ul><li>b</li></ul></li></ul>", want: "- a\n  - b"},
	{name: "fenced code", html: `<pre><code class="language-go">fmt.Println("hi")</code></pre>`, want: "```go\nfmt.Println(\"hi\")\n```"},
	{name: "code keeps markdown characters", html: "<p>use <code>a*b</code></p>", want: "use `a*b`"},
	{name: "link with title", html: `<p><a href="https://x.io" title="T">x</a></p>`, want: `[x](https://x.io "T")`},
	{name: "image", html: `<p><img src="a.png" alt="A"></p>`, want: "![A](a.png)"},
	{name: "table with head", html: "<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>", want: "| A | B |\n| --- | --- |\n| 1 | 2 |"},
	{name: "table header from th row", html: "<table><tr><th>A</th></tr><tr><td>1</td></tr></table>", want: "| A |\n| --- |\n| 1 |"},
	{name: "blockquote", html: "<blockquote><p>q</p></blockquote>", want: "> q"},
	{name: "escaping", html: "<p>1*2_3 [x]</p>", want: `1\*2\_3 \[x\]`},
	{name: "escaped heading marker", html: "<p># x</p>", want: `\# x`},
	{name: "escaped ordered marker", html: "<p>1. x</p>", want: `1\. x`},
	{name: "escaped bullet marker", html: "<p>- x</p>", want: `\- x`},
	{name: "escaped quote marker", html: "<p>&gt; q</p>", want: `\> q`},
	{name: "hash inside text", html: "<p>C# is fine</p>", want: "C# is fine"},
	{name: "horizontal rule", html: "<p>a</p><hr><p>b</p>", want: "a\n\n---\n\nb"},
	{name: "line break", html: "<p>a<br>b</p>", want: "a\\\nb"},
	{name: "inline formatting", html: "<p><del>d</del> <mark>m</mark> H<sub>2</sub>O</p>", want: "~~d~~ ==m== H<sub>2</sub>O"},
	{name: "definition list", html: "<dl><dt>T</dt><dd>D</dd></dl>", want: "T\n: D"},
	{name: "details", html: "<details open><summary>S</summary><p>body</p></details>", want: "**S**\n\nbody"},
	{name: "checkbox", html: `<p><input type="checkbox" checked>done</p>`, want: "[x] done"},
	{name: "audio", html: `<audio src="/m/song.mp3"></audio>`, want: "[song.mp3](/m/song.mp3)"},
	{name: "figure", html: `<figure><img src="i.png" alt="I"><figcaption>Cap</figcaption></figure>`, want: "![I](i.png)\n\nCap"},
	{
		name: "blog page",
		html: `<html><head><title>Blog</title><style>p{}</style></head><body>
<nav><a href="/">Home</a></nav>
<article><h2 id="post">Post</h2><p>Some <strong>bold</strong> text.</p>
<script>track()</script><!-- note --></article></body></html>`,
		mustInclude:    []string{"## Post", "Some **bold** text.", "[Home](/)"},
		mustNotInclude: []string{"track()", "note", "p{}", "Blog"},
	},
}

func TestDefaultRendering(t *testing.T) {
	for _, tv := range renderVectors {
		t.Run(tv.name, func(t *testing.T) {
			md, err := Traverse(tv.html, nil)
			if err != nil {
				t.Fatalf("Traverse() error: %v", err)
			}
			if tv.want != "" && md != tv.want {
				t.Errorf("Traverse() = %q, want %q", md, tv.want)
			}
			for _, s := range tv.mustInclude {
				if !strings.Contains(md, s) {
					t.Errorf("expected output to contain %q\nGot:\n%s", s, md)
				}
			}
			for _, s := range tv.mustNotInclude {
				if strings.Contains(md, s) {
					t.Errorf("expected output NOT to contain %q", s)
				}
			}
		})
	}
}

func TestEmptyVisitorMatchesDefault(t *testing.T) {
	for _, tv := range renderVectors {
		want, _ := Traverse(tv.html, nil)
		for name, v := range map[string]Visitor{"funcs": &Funcs{}, "nop": NopVisitor{}} {
			got, err := Traverse(tv.html, v)
			if err != nil || got != want {
				t.Errorf("%s/%s: Traverse() = %q, %v; want %q", tv.name, name, got, err, want)
			}
		}
	}
}

func TestCallbackOrder(t *testing.T) {
	var log []string
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult {
			log = append(log, "start:"+ctx.TagName)
			return Continue()
		},
		ElementEnd: func(ctx *NodeContext, output string) VisitResult {
			log = append(log, "end:"+ctx.TagName)
			return Continue()
		},
		Text: func(ctx *NodeContext, text string) VisitResult {
			log = append(log, "text:"+text)
			return Continue()
		},
		Strong: func(ctx *NodeContext, text string) VisitResult {
			log = append(log, "strong:"+text)
			return Continue()
		},
	}
	if _, err := Traverse("<p>Hi <b>x</b></p>", v); err != nil {
		t.Fatal(err)
	}
	want := []string{"start:p", "text:Hi ", "start:b", "text:x", "strong:x", "end:b", "end:p"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("callback order (-want +got):\n%s", diff)
	}
}

type seenNode struct {
	Type      NodeType
	Tag       string
	Depth     int
	Index     int
	Parent    string
	HasParent bool
	Inline    bool
}

func TestNodeContext(t *testing.T) {
	var seen []seenNode
	record := func(ctx *NodeContext) {
		seen = append(seen, seenNode{ctx.NodeType, ctx.TagName, ctx.Depth, ctx.IndexInParent, ctx.ParentTag, ctx.HasParent, ctx.IsInline})
	}
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult { record(ctx); return Continue() },
		Text:         func(ctx *NodeContext, _ string) VisitResult { record(ctx); return Continue() },
	}
	if _, err := Traverse("<div><p>x<b>y</b></p></div>", v); err != nil {
		t.Fatal(err)
	}
	want := []seenNode{
		{NodeDiv, "div", 0, 0, "", false, false},
		{NodeParagraph, "p", 1, 0, "div", true, false},
		{NodeText, "", 2, 0, "p", true, true},
		{NodeStrong, "b", 2, 1, "p", true, true},
		{NodeText, "", 3, 0, "b", true, true},
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("contexts (-want +got):\n%s", diff)
	}
}

func TestAttributeFidelity(t *testing.T) {
	var got []Attribute
	v := &Funcs{
		Link: func(ctx *NodeContext, href, text, title string) VisitResult {
			got = append(got, ctx.Attributes...)
			if v, ok := ctx.Attr("data-empty"); !ok || v != "" {
				t.Errorf("Attr(data-empty) = %q, %v", v, ok)
			}
			if _, ok := ctx.Attr("rel"); ok {
				t.Error("Attr(rel) reported present")
			}
			return Continue()
		},
	}
	if _, err := Traverse(`<p><a href="x" data-empty="" title="t">l</a></p>`, v); err != nil {
		t.Fatal(err)
	}
	want := []Attribute{{"href", "x"}, {"data-empty", ""}, {"title", "t"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("attributes (-want +got):\n%s", diff)
	}
}

func TestSkipOmitsSubtree(t *testing.T) {
	var texts []string
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult {
			if ctx.TagName == "section" {
				return Skip()
			}
			return Continue()
		},
		Text: func(ctx *NodeContext, text string) VisitResult {
			texts = append(texts, text)
			return Continue()
		},
	}
	md, err := Traverse("<p>keep</p><section><p>gone</p></section><p>also</p>", v)
	if err != nil {
		t.Fatal(err)
	}
	if md != "keep\n\nalso" {
		t.Errorf("Traverse() = %q", md)
	}
	if diff := cmp.Diff([]string{"keep", "also"}, texts); diff != "" {
		t.Errorf("texts of a skipped subtree were visited (-want +got):\n%s", diff)
	}
}

func TestCustomReplacesOneNode(t *testing.T) {
	n := 0
	v := &Funcs{
		ElementEnd: func(ctx *NodeContext, output string) VisitResult {
			if ctx.TagName != "p" {
				return Continue()
			}
			n++
			if n == 2 {
				return Custom("CUSTOM")
			}
			return Continue()
		},
	}
	md, err := Traverse("<p>one</p><p>two</p><p>three</p>", v)
	if err != nil {
		t.Fatal(err)
	}
	if md != "one\n\nCUSTOM\n\nthree" {
		t.Errorf("Traverse() = %q", md)
	}
}

func TestPreserveHTML(t *testing.T) {
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult {
			if ctx.TagName == "div" {
				return PreserveHTML()
			}
			return Continue()
		},
		Text: func(ctx *NodeContext, text string) VisitResult {
			if strings.Contains(text, "<") {
				return PreserveHTML()
			}
			return Continue()
		},
	}
	md, err := Traverse(`<p>a &lt; b</p><div class="c"><p>x</p></div>`, v)
	if err != nil {
		t.Fatal(err)
	}
	if md != "a &lt; b\n\n<div class=\"c\"><p>x</p></div>" {
		t.Errorf("Traverse() = %q", md)
	}
}

func TestPreserveHTMLKeepsSource(t *testing.T) {
	v := &Funcs{ElementStart: func(ctx *NodeContext) VisitResult {
		if ctx.TagName == "div" {
			return PreserveHTML()
		}
		return Continue()
	}}
	src := `<div class="w">a<!-- note --><script>x()</script>b</div>`
	md, err := Traverse(src, v)
	if err != nil {
		t.Fatal(err)
	}
	if md != src {
		t.Errorf("Traverse() = %q, want %q", md, src)
	}

	md, _ = Traverse(src, nil)
	if md != "ab" {
		t.Errorf("default = %q, want %q", md, "ab")
	}
}

func TestSkippedFirstRowKeepsSeparator(t *testing.T) {
	rows := 0
	v := &Funcs{TableRow: func(ctx *NodeContext, cells []string, isHeader bool) VisitResult {
		rows++
		if rows == 1 {
			return Skip()
		}
		return Continue()
	}}
	md, err := Traverse(`<table><tr><th>A</th></tr><tr><td>1</td></tr><tr><td>2</td></tr></table>`, v)
	if err != nil {
		t.Fatal(err)
	}
	if want := "| 1 |\n| --- |\n| 2 |"; md != want {
		t.Errorf("Traverse() = %q, want %q", md, want)
	}
}

func TestIndexInParentIgnoresWhitespace(t *testing.T) {
	var idx []int
	v := &Funcs{ElementStart: func(ctx *NodeContext) VisitResult {
		if ctx.TagName == "li" {
			idx = append(idx, ctx.IndexInParent)
		}
		return Continue()
	}}
	if _, err := Traverse("<ul>\n<li>a</li>\n<li>b</li>\n</ul>", v); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1}, idx); diff != "" {
		t.Errorf("IndexInParent (-want +got):\n%s", diff)
	}
}

type presenceRecorder struct{ log []string }

func (p *presenceRecorder) Handles(op Op) bool { return op == OpLink || op == OpForm }

func (p *presenceRecorder) Dispatch(op Op, ctx *NodeContext, a *Args) VisitResult {
	switch op {
	case OpLink:
		p.log = append(p.log, fmt.Sprintf("title=%q:%v", a.Title, a.Present("title")))
	case OpForm:
		p.log = append(p.log, fmt.Sprintf("action:%v method:%v", a.Present("action"), a.Present("method")))
	}
	return Continue()
}

func TestOptionalArgumentPresence(t *testing.T) {
	rec := &presenceRecorder{}
	html := `<form><input></form><form action="" method="get"></form>` +
		`<p><a href="x" title="">a</a> <a href="y">b</a> <a href="z" title="t">c</a></p>`
	if _, err := Traverse(html, Adapt(rec)); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"action:false method:false",
		"action:true method:true",
		`title="":true`,
		`title="":false`,
		`title="t":true`,
	}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("presence (-want +got):\n%s", diff)
	}
	if !(&Args{}).Present("href") {
		t.Error("required argument reported absent")
	}
}

func TestErrorHaltsWithoutOutput(t *testing.T) {
	n := 0
	var after int
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult {
			if ctx.TagName == "p" {
				n++
				if n == 2 {
					return Error("stop here")
				}
			}
			return Continue()
		},
		Text: func(ctx *NodeContext, text string) VisitResult {
			if n >= 2 {
				after++
			}
			return Continue()
		},
	}
	md, err := Traverse("<p>one</p><p>two</p><p>three</p>", v)
	if md != "" {
		t.Errorf("partial output %q", md)
	}
	var ve *VisitorError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *VisitorError", err)
	}
	if ve.Op != OpElementStart || ve.Tag != "p" || ve.Error() != "stop here" {
		t.Errorf("VisitorError = %+v", ve)
	}
	if after != 0 {
		t.Errorf("%d callbacks ran after the abort", after)
	}
}

func TestPreOpOverrideStillEndsElement(t *testing.T) {
	var ended []string
	v := &Funcs{
		TableStart: func(ctx *NodeContext) VisitResult { return Skip() },
		ElementEnd: func(ctx *NodeContext, output string) VisitResult {
			if ctx.TagName == "table" {
				ended = append(ended, "table:"+output)
			}
			return Continue()
		},
	}
	md, err := Traverse("<p>a</p><table><tr><td>1</td></tr></table>", v)
	if err != nil {
		t.Fatal(err)
	}
	if md != "a" {
		t.Errorf("Traverse() = %q", md)
	}
	if diff := cmp.Diff([]string{"table:"}, ended); diff != "" {
		t.Errorf("element_end (-want +got):\n%s", diff)
	}
}

func TestWhitespaceOnlyTextIsNotVisited(t *testing.T) {
	var texts []string
	v := &Funcs{Text: func(ctx *NodeContext, text string) VisitResult {
		texts = append(texts, text)
		return Continue()
	}}
	if _, err := Traverse("<p>a</p>   \n  <p>b</p>", v); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
}

func TestContextInvalidAfterCallback(t *testing.T) {
	var kept *NodeContext
	var clone NodeContext
	v := &Funcs{ElementStart: func(ctx *NodeContext) VisitResult {
		if kept == nil {
			kept = ctx
			clone = ctx.Clone()
		}
		if !ctx.Valid() {
			t.Error("context not valid during its callback")
		}
		return Continue()
	}}
	if _, err := Traverse(`<section id="s"><p>x</p></section>`, v); err != nil {
		t.Fatal(err)
	}
	if kept.Valid() || kept.TagName != "" || kept.Attributes != nil {
		t.Errorf("retained context still readable: %+v", *kept)
	}
	if id, ok := clone.Attr("id"); clone.TagName != "section" || !ok || id != "s" {
		t.Errorf("clone = %+v", clone)
	}
}

func TestSpecializedArguments(t *testing.T) {
	var log []string
	add := func(s string) VisitResult { log = append(log, s); return Continue() }
	v := &Funcs{
		Heading: func(ctx *NodeContext, level int, text, id string) VisitResult {
			return add(strings.Join([]string{"heading", string(rune('0' + level)), text, id}, ":"))
		},
		Link: func(ctx *NodeContext, href, text, title string) VisitResult {
			return add("link:" + href + ":" + text + ":" + title)
		},
		ListItem: func(ctx *NodeContext, ordered bool, marker, text string) VisitResult {
			return add("item:" + marker + ":" + text)
		},
		TableRow: func(ctx *NodeContext, cells []string, isHeader bool) VisitResult {
			kind := "body"
			if isHeader {
				kind = "header"
			}
			return add("row:" + kind + ":" + strings.Join(cells, ","))
		},
		Blockquote: func(ctx *NodeContext, content string, depth int) VisitResult {
			return add("quote:" + string(rune('0'+depth)))
		},
		Form: func(ctx *NodeContext, action, method string) VisitResult {
			return add("form:" + action + ":" + method)
		},
		Input: func(ctx *NodeContext, inputType, name, value string) VisitResult {
			return add("input:" + inputType + ":" + name + ":" + value)
		},
		Details: func(ctx *NodeContext, open bool) VisitResult {
			if open {
				return add("details:open")
			}
			return add("details:closed")
		},
		CodeBlock: func(ctx *NodeContext, lang, code string) VisitResult {
			return add("code:" + lang + ":" + code)
		},
	}
	html := `<h2 id="top">Intro</h2>` +
		`<p><a href="/u">go</a></p>` +
		`<ol><li>one</li></ol>` +
		`<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>` +
		`<blockquote><blockquote><p>q</p></blockquote></blockquote>` +
		`<form action="/s" method="post"><input type="checkbox" name="n" value="v"></form>` +
		`<details><summary>s</summary></details>` +
		`<pre class="lang-sh">ls</pre>`
	if _, err := Traverse(html, v); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"heading:2:Intro:top",
		"link:/u:go:",
		"item:1.:one",
		"row:header:A,B",
		"row:body:1,2",
		"quote:2",
		"quote:1",
		"form:/s:post",
		"input:checkbox:n:v",
		"details:closed",
		"code:sh:ls",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("arguments (-want +got):\n%s", diff)
	}
}

func TestCustomElement(t *testing.T) {
	var gotTag, gotHTML string
	v := &Funcs{CustomElement: func(ctx *NodeContext, tagName, html string) VisitResult {
		gotTag, gotHTML = tagName, html
		if ctx.NodeType != NodeCustom {
			t.Errorf("NodeType = %v", ctx.NodeType)
		}
		return Custom("W")
	}}
	md, err := Traverse(`<p><my-widget data-a="1">hi</my-widget></p>`, v)
	if err != nil {
		t.Fatal(err)
	}
	if md != "W" || gotTag != "my-widget" || gotHTML != `<my-widget data-a="1">hi</my-widget>` {
		t.Errorf("Traverse() = %q, tag %q, html %q", md, gotTag, gotHTML)
	}

	md, _ = Traverse(`<p><my-widget>hi</my-widget></p>`, nil)
	if md != "hi" {
		t.Errorf("without callback = %q", md)
	}
}

func TestOps(t *testing.T) {
	if NumOps != 40 || len(AllOps()) != NumOps {
		t.Fatalf("NumOps = %d", NumOps)
	}
	for _, op := range AllOps() {
		got, ok := LookupOp(op.String())
		if !ok || got != op {
			t.Errorf("LookupOp(%q) = %v, %v", op.String(), got, ok)
		}
		short, ok := LookupOp(strings.TrimPrefix(op.String(), "visit_"))
		if !ok || short != op {
			t.Errorf("LookupOp(short %q) failed", op.String())
		}
	}
	if OpListItem.CamelName() != "visitListItem" || OpListItem.MethodName() != "VisitListItem" {
		t.Errorf("names = %q, %q", OpListItem.CamelName(), OpListItem.MethodName())
	}
	a := &Args{Ordered: true, Marker: "1.", Text: "x"}
	if diff := cmp.Diff([]any{true, "1.", "x"}, a.Values(OpListItem)); diff != "" {
		t.Errorf("Values (-want +got):\n%s", diff)
	}

	row := &Args{Cells: []string{"a", "b"}}
	vals := row.Values(OpTableRow)
	vals[0].([]string)[0] = "changed"
	if row.Cells[0] != "a" {
		t.Errorf("Values shares the cell slice: %q", row.Cells)
	}
}
