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
	"bytes"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Traverse converts an HTML document to Markdown, invoking v at every visit
// point. v may be nil, in which case only the default rules apply.
//
// If v returns Error the traversal stops at once and Traverse returns a
// *VisitorError and no output.
func Traverse(htmlStr string, v Visitor) (string, error) {
	return TraverseReader(strings.NewReader(htmlStr), v)
}

// TraverseReader is Traverse over a reader.
func TraverseReader(r io.Reader, v Visitor) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	w := newWalker(v)
	body := findElement(doc, "body")
	if body == nil {
		return "", nil
	}
	out, err := w.children(body, scope{})
	if err != nil {
		return "", err
	}
	return finalize(out), nil
}

type walker struct {
	v      Visitor
	filter OpFilter
}

func newWalker(v Visitor) *walker {
	w := &walker{v: v}
	if f, ok := v.(OpFilter); ok {
		w.filter = f
	}
	return w
}

// scope is the rendering state children inherit from their ancestors.
type scope struct {
	depth  int
	parent string
	pre    bool
	code   bool
	quote  int
	list   *listState
	table  *tableState
	head   bool
}

type listState struct {
	ordered bool
	next    int
}

type tableState struct {
	// separated is set once a row kept its default rendering and the
	// header separator followed it.
	separated bool
}

// frame locates one node for context construction.
type frame struct {
	n      *html.Node
	tag    string
	typ    NodeType
	depth  int
	index  int
	parent string
	inline bool
}

func (f *frame) context() *NodeContext {
	ctx := &NodeContext{
		NodeType:      f.typ,
		TagName:       f.tag,
		Depth:         f.depth,
		IndexInParent: f.index,
		ParentTag:     f.parent,
		HasParent:     f.parent != "",
		IsInline:      f.inline,
		live:          true,
	}
	if f.n.Type == html.ElementNode && len(f.n.Attr) > 0 {
		ctx.Attributes = attributes(f.n.Attr)
	}
	return ctx
}

// attributes keeps source order; a repeated name keeps its first position
// and takes the last value.
func attributes(attrs []html.Attribute) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		dup := false
		for i := range out {
			if out[i].Name == name {
				out[i].Value = a.Val
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, Attribute{Name: name, Value: a.Val})
		}
	}
	return out
}

func (w *walker) wants(op Op) bool {
	if w.v == nil {
		return false
	}
	return w.filter == nil || w.filter.Handles(op)
}

// call invokes op with a fresh context that is wiped when the callback
// returns.
func (w *walker) call(op Op, f *frame, a *Args) VisitResult {
	if !w.wants(op) {
		return Continue()
	}
	ctx := f.context()
	res := Invoke(w.v, op, ctx, a)
	ctx.release()
	return res
}

// apply resolves a result against the node's default output. done is true
// when the result replaced the default.
func (w *walker) apply(op Op, f *frame, res VisitResult, def string) (out string, done bool, err error) {
	switch res.Kind() {
	case ResultCustom:
		return res.Output(), true, nil
	case ResultSkip:
		return "", true, nil
	case ResultPreserveHTML:
		return source(f), true, nil
	case ResultError:
		return "", true, &VisitorError{Op: op, Tag: f.tag, Message: res.Message()}
	}
	return def, false, nil
}

// before runs a specialized operation that fires ahead of the children.
func (w *walker) before(op Op, f *frame, a *Args) (string, bool, error) {
	return w.apply(op, f, w.call(op, f, a), "")
}

// after runs a specialized operation over the node's default output.
func (w *walker) after(op Op, f *frame, a *Args, def string) (string, error) {
	out, _, err := w.apply(op, f, w.call(op, f, a), def)
	return out, err
}

type rendered struct {
	n   *html.Node
	out string
}

func (w *walker) childOutputs(n *html.Node, sc scope) ([]rendered, error) {
	var outs []rendered
	index := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if skipped(c) {
			continue
		}
		out, err := w.node(c, sc, index)
		if err != nil {
			return nil, err
		}
		outs = append(outs, rendered{n: c, out: out})
		if visible(c, sc) {
			index++
		}
	}
	return outs, nil
}

// skipped reports nodes the walk never enters. They stay in the tree so
// PreserveHTML can serialize them.
func skipped(n *html.Node) bool {
	switch n.Type {
	case html.ElementNode:
		return prunedTags[n.Data]
	case html.TextNode:
		return false
	}
	return true
}

// visible reports whether a walked node gets callbacks and so takes a
// sibling index.
func visible(n *html.Node, sc scope) bool {
	if n.Type != html.TextNode {
		return true
	}
	if n.Data == "" {
		return false
	}
	return sc.pre || sc.code || strings.TrimSpace(n.Data) != ""
}

func (w *walker) children(n *html.Node, sc scope) (string, error) {
	outs, err := w.childOutputs(n, sc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, o := range outs {
		b.WriteString(o.out)
	}
	return b.String(), nil
}

func (w *walker) node(n *html.Node, sc scope, index int) (string, error) {
	if n.Type == html.TextNode {
		return w.text(n, sc, index)
	}
	return w.element(n, sc, index)
}

func (w *walker) text(n *html.Node, sc scope, index int) (string, error) {
	if n.Data == "" {
		return "", nil
	}
	txt, def := n.Data, n.Data
	if !sc.pre && !sc.code {
		txt = collapseWhitespace(n.Data)
		if strings.TrimSpace(txt) == "" {
			return txt, nil
		}
		def = escapeMarkdown(txt)
	}
	f := &frame{n: n, typ: NodeText, depth: sc.depth, index: index, parent: sc.parent, inline: true}
	out, _, err := w.apply(OpText, f, w.call(OpText, f, &Args{Text: txt}), def)
	return out, err
}

func (w *walker) element(n *html.Node, sc scope, index int) (string, error) {
	f := &frame{
		n:      n,
		tag:    n.Data,
		typ:    classify(n.Data),
		depth:  sc.depth,
		index:  index,
		parent: sc.parent,
		inline: isInline(n.Data),
	}

	if out, done, err := w.before(OpElementStart, f, &Args{}); done {
		return out, err
	}

	inner := sc
	inner.depth = sc.depth + 1
	inner.parent = f.tag

	out, err := w.render(f, sc, inner)
	if err != nil {
		return "", err
	}
	out, _, err = w.apply(OpElementEnd, f, w.call(OpElementEnd, f, &Args{Output: out}), out)
	return out, err
}

// render produces the node's output after its start callback, including any
// specialized operation.
func (w *walker) render(f *frame, sc, inner scope) (string, error) {
	n := f.n
	if sc.pre || sc.code {
		if f.tag == "br" {
			return "\n", nil
		}
		return w.children(n, inner)
	}

	switch f.tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		level := int(f.tag[1] - '0')
		text := cleanInline(content)
		id, hasID := attr(n, "id")
		def := ""
		if text != "" {
			def = block(strings.Repeat("#", level) + " " + text)
		}
		a := (&Args{Level: level, Text: text, ID: id}).omit("id", hasID)
		return w.after(OpHeading, f, a, def)

	case "blockquote":
		inner.quote = sc.quote + 1
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		content = strings.TrimSpace(content)
		def := ""
		if content != "" {
			def = block(quoteLines(content))
		}
		return w.after(OpBlockquote, f, &Args{Content: content, Depth: inner.quote}, def)

	case "pre":
		inner.pre = true
		code, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		code = strings.TrimSuffix(code, "\n")
		lang := codeLanguage(n)
		def := ""
		if code != "" {
			def = block(fenceCode(code, lang))
		}
		return w.after(OpCodeBlock, f, (&Args{Lang: lang, Code: code}).omit("lang", lang != ""), def)

	case "code":
		inner.code = true
		code, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		return w.after(OpCodeInline, f, &Args{Code: code}, codeSpan(code))

	case "strong", "b":
		return w.emphasis(OpStrong, f, inner, "**", "**")
	case "em", "i":
		return w.emphasis(OpEmphasis, f, inner, "*", "*")
	case "s", "del", "strike":
		return w.emphasis(OpStrikethrough, f, inner, "~~", "~~")
	case "u", "ins":
		return w.emphasis(OpUnderline, f, inner, "", "")
	case "sub":
		return w.emphasis(OpSubscript, f, inner, "<sub>", "</sub>")
	case "sup":
		return w.emphasis(OpSuperscript, f, inner, "<sup>", "</sup>")
	case "mark":
		return w.emphasis(OpMark, f, inner, "==", "==")

	case "a":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := cleanInline(content)
		href, _ := attr(n, "href")
		title, hasTitle := attr(n, "title")
		a := (&Args{Href: href, Text: text, Title: title}).omit("title", hasTitle)
		return w.after(OpLink, f, a, linkMarkdown(text, href, title))

	case "img":
		src, _ := attr(n, "src")
		alt, _ := attr(n, "alt")
		title, hasTitle := attr(n, "title")
		def := ""
		if src != "" {
			def = "![" + escapeBrackets(alt) + "](" + destination(src) + titleSuffix(title) + ")"
		}
		return w.after(OpImage, f, (&Args{Src: src, Alt: alt, Title: title}).omit("title", hasTitle), def)

	case "br":
		return w.after(OpLineBreak, f, &Args{}, "\\\n")

	case "hr":
		return w.after(OpHorizontalRule, f, &Args{}, block("---"))

	case "ul", "ol":
		ordered := f.tag == "ol"
		if out, done, err := w.before(OpListStart, f, &Args{Ordered: ordered}); done {
			return out, err
		}
		st := &listState{ordered: ordered, next: 1}
		if s, ok := attr(n, "start"); ok && ordered {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				st.next = v
			}
		}
		inner.list = st
		outs, err := w.childOutputs(n, inner)
		if err != nil {
			return "", err
		}
		def := block(joinLines(outs))
		return w.after(OpListEnd, f, &Args{Ordered: ordered, Output: def}, def)

	case "li":
		ordered, marker := false, "-"
		if sc.list != nil && sc.list.ordered {
			ordered = true
			marker = strconv.Itoa(sc.list.next) + "."
			sc.list.next++
		}
		inner.list = nil
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := tighten(strings.TrimSpace(content))
		def := marker
		if text != "" {
			def = marker + " " + indent(text, len(marker)+1)
		}
		return w.after(OpListItem, f, &Args{Ordered: ordered, Marker: marker, Text: text}, def)

	case "table":
		if out, done, err := w.before(OpTableStart, f, &Args{}); done {
			return out, err
		}
		inner.table = &tableState{}
		inner.head = false
		outs, err := w.childOutputs(n, inner)
		if err != nil {
			return "", err
		}
		var caption string
		rows := outs[:0:0]
		for _, o := range outs {
			if o.n.Type == html.ElementNode && o.n.Data == "caption" {
				caption = strings.TrimSpace(o.out)
				continue
			}
			rows = append(rows, o)
		}
		def := block(joinLines(rows))
		if caption != "" {
			def = block(caption) + def
		}
		return w.after(OpTableEnd, f, &Args{Output: def}, def)

	case "thead", "tbody", "tfoot":
		inner.head = f.tag == "thead"
		outs, err := w.childOutputs(n, inner)
		if err != nil {
			return "", err
		}
		return joinLines(outs), nil

	case "tr":
		return w.tableRow(f, sc, inner)

	case "td", "th":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		return cellText(content), nil

	case "dl":
		if out, done, err := w.before(OpDefinitionListStart, f, &Args{}); done {
			return out, err
		}
		outs, err := w.childOutputs(n, inner)
		if err != nil {
			return "", err
		}
		def := block(joinLines(outs))
		return w.after(OpDefinitionListEnd, f, &Args{Output: def}, def)

	case "dt":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := cleanInline(content)
		return w.after(OpDefinitionTerm, f, &Args{Text: text}, text)

	case "dd":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := tighten(strings.TrimSpace(content))
		def := ""
		if text != "" {
			def = ": " + indent(text, 2)
		}
		return w.after(OpDefinitionDescription, f, &Args{Text: text}, def)

	case "form":
		action, hasAction := attr(n, "action")
		method, hasMethod := attr(n, "method")
		a := (&Args{Action: action, Method: method}).omit("action", hasAction).omit("method", hasMethod)
		if out, done, err := w.before(OpForm, f, a); done {
			return out, err
		}
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		return block(strings.TrimSpace(content)), nil

	case "input":
		typ, _ := attr(n, "type")
		typ = strings.ToLower(typ)
		if typ == "" {
			typ = "text"
		}
		name, hasName := attr(n, "name")
		value, hasValue := attr(n, "value")
		def := ""
		if typ == "checkbox" || typ == "radio" {
			def = "[ ] "
			if _, checked := attr(n, "checked"); checked {
				def = "[x] "
			}
		}
		a := (&Args{InputType: typ, Name: name, Value: value}).omit("name", hasName).omit("value", hasValue)
		return w.after(OpInput, f, a, def)

	case "button":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := cleanInline(content)
		return w.after(OpButton, f, &Args{Text: text}, text)

	case "audio", "video":
		src, hasSrc := mediaSource(n)
		// fallback content and <source>/<track> children are visited but
		// never rendered
		if _, err := w.children(n, inner); err != nil {
			return "", err
		}
		def := ""
		if src != "" {
			def = block("[" + escapeBrackets(path.Base(src)) + "](" + destination(src) + ")")
		}
		op := OpAudio
		if f.tag == "video" {
			op = OpVideo
		}
		return w.after(op, f, (&Args{Src: src}).omit("src", hasSrc), def)

	case "iframe":
		src, hasSrc := attr(n, "src")
		def := ""
		if src != "" {
			def = block("[" + escapeBrackets(src) + "](" + destination(src) + ")")
		}
		return w.after(OpIframe, f, (&Args{Src: src}).omit("src", hasSrc), def)

	case "details":
		_, open := attr(n, "open")
		if out, done, err := w.before(OpDetails, f, &Args{Open: open}); done {
			return out, err
		}
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		return block(strings.TrimSpace(content)), nil

	case "summary":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := cleanInline(content)
		def := ""
		if text != "" {
			def = block("**" + text + "**")
		}
		return w.after(OpSummary, f, &Args{Text: text}, def)

	case "figure":
		if out, done, err := w.before(OpFigureStart, f, &Args{}); done {
			return out, err
		}
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		def := block(strings.TrimSpace(content))
		return w.after(OpFigureEnd, f, &Args{Output: def}, def)

	case "figcaption":
		content, err := w.children(n, inner)
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(content)
		return w.after(OpFigcaption, f, &Args{Text: text}, block(text))
	}

	if isCustomTag(f.tag) && w.wants(OpCustomElement) {
		a := &Args{TagName: f.tag, HTML: outerHTML(n)}
		if out, done, err := w.before(OpCustomElement, f, a); done {
			return out, err
		}
	}
	content, err := w.children(n, inner)
	if err != nil {
		return "", err
	}
	if f.inline {
		return content, nil
	}
	return block(strings.TrimSpace(content)), nil
}

func (w *walker) emphasis(op Op, f *frame, inner scope, open, close string) (string, error) {
	content, err := w.children(f.n, inner)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(content)
	def := content
	if text != "" && (open != "" || close != "") {
		lead := content[:len(content)-len(strings.TrimLeft(content, " \t\n"))]
		trail := content[len(strings.TrimRight(content, " \t\n")):]
		def = lead + open + text + close + trail
	}
	return w.after(op, f, &Args{Text: text}, def)
}

func (w *walker) tableRow(f *frame, sc, inner scope) (string, error) {
	outs, err := w.childOutputs(f.n, inner)
	if err != nil {
		return "", err
	}
	var cells []string
	allTH := true
	for _, o := range outs {
		if o.n.Type != html.ElementNode || (o.n.Data != "td" && o.n.Data != "th") {
			continue
		}
		if o.n.Data != "th" {
			allTH = false
		}
		cells = append(cells, o.out)
	}
	isHeader := sc.head || (len(cells) > 0 && allTH)

	def := ""
	if len(cells) > 0 {
		def = "| " + strings.Join(cells, " | ") + " |"
	}
	res := w.call(OpTableRow, f, &Args{Cells: cells, IsHeader: isHeader})
	out, done, err := w.apply(OpTableRow, f, res, def)
	if err != nil || done || def == "" {
		return out, err
	}
	if sc.table != nil && !sc.table.separated {
		sc.table.separated = true
		out += "\n" + tableSeparator(len(cells))
	}
	return out, nil
}

// source re-serializes the node for PreserveHTML.
func source(f *frame) string {
	if f.n.Type == html.TextNode {
		return html.EscapeString(f.n.Data)
	}
	s := outerHTML(f.n)
	if f.inline {
		return s
	}
	return block(s)
}

func outerHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// mediaSource returns the element's src, or the first <source> src, and
// whether either attribute exists.
func mediaSource(n *html.Node) (string, bool) {
	src, found := attr(n, "src")
	if src != "" {
		return src, true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "source" {
			if s, ok := attr(c, "src"); ok {
				found = true
				if s != "" {
					return s, true
				}
			}
		}
	}
	return "", found
}

func codeLanguage(pre *html.Node) string {
	if lang := languageFromClass(pre); lang != "" {
		return lang
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			return languageFromClass(c)
		}
	}
	return ""
}

func languageFromClass(n *html.Node) string {
	class, _ := attr(n, "class")
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) && len(c) > len(prefix) {
				return strings.TrimPrefix(c, prefix)
			}
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
