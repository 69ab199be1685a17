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
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"

	"github.com/nicholasgasior/htmd/internal/docxmath"
	"github.com/nicholasgasior/htmd/internal/ooxml"
)

// DocxConverter handles Word documents. The document body is rebuilt as
// HTML and walked by the driver, so the visitor sees headings, lists,
// tables and links as it would in a web page.
type DocxConverter struct {
	engine *Engine
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(e *Engine) *DocxConverter {
	return &DocxConverter{engine: e}
}

func (c *DocxConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".docx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.wordprocessingml")
}

func (c *DocxConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, err
	}
	doc, err := pkg.Document("word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	result, err := NewHTMLConverter(c.engine).ConvertString(newDocxWriter(pkg).render(doc))
	if err != nil {
		if IsVisitorAbort(err) {
			return nil, err
		}
		return nil, fmt.Errorf("convert DOCX: %w", err)
	}
	return result, nil
}

type docxComment struct {
	author string
	text   string
}

// docxWriter rebuilds a WordprocessingML body as HTML.
type docxWriter struct {
	pkg      *ooxml.Package
	rels     map[string]ooxml.Relationship
	styles   map[string]string
	ordered  map[string]map[string]bool
	comments map[string]docxComment

	b       strings.Builder
	lists   []string
	pending []string
}

func newDocxWriter(pkg *ooxml.Package) *docxWriter {
	w := &docxWriter{
		pkg:      pkg,
		rels:     pkg.Relationships("word/document.xml"),
		styles:   make(map[string]string),
		ordered:  make(map[string]map[string]bool),
		comments: make(map[string]docxComment),
	}
	w.loadStyles()
	w.loadNumbering()
	w.loadComments()
	return w
}

func (w *docxWriter) loadStyles() {
	doc, err := w.pkg.Document("word/styles.xml")
	if err != nil {
		return
	}
	for _, st := range doc.FindElements("//style") {
		if name := st.SelectElement("name"); name != nil {
			w.styles[st.SelectAttrValue("styleId", "")] = name.SelectAttrValue("val", "")
		}
	}
}

// loadNumbering records, per numbering instance and level, whether items
// are numbered rather than bulleted.
func (w *docxWriter) loadNumbering() {
	doc, err := w.pkg.Document("word/numbering.xml")
	if err != nil {
		return
	}
	abstract := make(map[string]map[string]bool)
	for _, an := range doc.FindElements("//abstractNum") {
		levels := make(map[string]bool)
		for _, lvl := range an.SelectElements("lvl") {
			fmtEl := lvl.SelectElement("numFmt")
			levels[lvl.SelectAttrValue("ilvl", "0")] = fmtEl != nil && fmtEl.SelectAttrValue("val", "") != "bullet"
		}
		abstract[an.SelectAttrValue("abstractNumId", "")] = levels
	}
	for _, num := range doc.FindElements("//num") {
		if ref := num.SelectElement("abstractNumId"); ref != nil {
			w.ordered[num.SelectAttrValue("numId", "")] = abstract[ref.SelectAttrValue("val", "")]
		}
	}
}

func (w *docxWriter) loadComments() {
	doc, err := w.pkg.Document("word/comments.xml")
	if err != nil {
		return
	}
	for _, cm := range doc.FindElements("//comment") {
		var text []string
		for _, t := range cm.FindElements(".//t") {
			text = append(text, t.Text())
		}
		w.comments[cm.SelectAttrValue("id", "")] = docxComment{
			author: cm.SelectAttrValue("author", ""),
			text:   strings.TrimSpace(strings.Join(text, "")),
		}
	}
}

func (w *docxWriter) render(doc *etree.Document) string {
	w.b.WriteString("<html><head>")
	if core, err := w.pkg.Document("docProps/core.xml"); err == nil {
		if t := core.FindElement("//title"); t != nil && strings.TrimSpace(t.Text()) != "" {
			w.b.WriteString("<title>" + html.EscapeString(strings.TrimSpace(t.Text())) + "</title>")
		}
	}
	w.b.WriteString("</head><body>")
	if body := doc.FindElement("//body"); body != nil {
		w.blocks(body)
	}
	w.closeLists(0)
	w.b.WriteString("</body></html>")
	return w.b.String()
}

func (w *docxWriter) blocks(el *etree.Element) {
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "p":
			w.paragraph(c)
		case "tbl":
			w.closeLists(0)
			w.table(c)
		case "sdt":
			if content := c.SelectElement("sdtContent"); content != nil {
				w.blocks(content)
			}
		}
	}
}

func (w *docxWriter) paragraph(p *etree.Element) {
	var style, numID string
	ilvl := "0"
	if pr := p.SelectElement("pPr"); pr != nil {
		if st := pr.SelectElement("pStyle"); st != nil {
			style = st.SelectAttrValue("val", "")
		}
		if np := pr.SelectElement("numPr"); np != nil {
			if id := np.SelectElement("numId"); id != nil {
				numID = id.SelectAttrValue("val", "")
			}
			if lvl := np.SelectElement("ilvl"); lvl != nil {
				ilvl = lvl.SelectAttrValue("val", "0")
			}
		}
	}

	for _, mp := range p.SelectElements("oMathPara") {
		w.closeLists(0)
		w.b.WriteString(`<pre><code class="language-math">` + html.EscapeString(docxmath.LaTeX(mp)) + "</code></pre>")
	}

	content := w.inline(p)
	for _, id := range w.pending {
		if cm, ok := w.comments[id]; ok {
			content += html.EscapeString(fmt.Sprintf(" [comment by %s: %s]", cm.author, cm.text))
		}
	}
	w.pending = nil
	if strings.TrimSpace(content) == "" {
		return
	}

	if numID != "" && numID != "0" {
		w.listItem(w.ordered[numID][ilvl], ilvl, content)
		return
	}
	w.closeLists(0)
	if level := w.headingLevel(style); level > 0 {
		tag := "h" + strconv.Itoa(level)
		w.b.WriteString("<" + tag + ">" + content + "</" + tag + ">")
		return
	}
	w.b.WriteString("<p>" + content + "</p>")
}

// headingLevel maps a paragraph style to a heading level, or 0.
func (w *docxWriter) headingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	for _, name := range []string{styleID, w.styles[styleID]} {
		name = strings.ToLower(strings.ReplaceAll(name, " ", ""))
		if name == "title" {
			return 1
		}
		if rest, ok := strings.CutPrefix(name, "heading"); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
				return n
			}
		}
	}
	return 0
}

// listItem opens or closes nested lists until the item's level is current.
func (w *docxWriter) listItem(ordered bool, ilvl, content string) {
	depth := 1
	if n, err := strconv.Atoi(ilvl); err == nil && n > 0 {
		depth = n + 1
	}
	w.closeLists(depth)
	if len(w.lists) == depth {
		w.b.WriteString("</li>")
	}
	for len(w.lists) < depth {
		tag := "ul"
		if ordered {
			tag = "ol"
		}
		w.b.WriteString("<" + tag + ">")
		w.lists = append(w.lists, tag)
	}
	w.b.WriteString("<li>" + content)
}

// closeLists closes open lists deeper than depth.
func (w *docxWriter) closeLists(depth int) {
	for len(w.lists) > depth {
		tag := w.lists[len(w.lists)-1]
		w.lists = w.lists[:len(w.lists)-1]
		w.b.WriteString("</li></" + tag + ">")
	}
}

func (w *docxWriter) table(tbl *etree.Element) {
	w.b.WriteString("<table>")
	for i, tr := range tbl.SelectElements("tr") {
		cell := "td"
		if i == 0 {
			cell = "th"
		}
		w.b.WriteString("<tr>")
		for _, tc := range tr.SelectElements("tc") {
			var parts []string
			for _, p := range tc.SelectElements("p") {
				if s := strings.TrimSpace(w.inline(p)); s != "" {
					parts = append(parts, s)
				}
			}
			w.pending = nil
			w.b.WriteString("<" + cell + ">" + strings.Join(parts, " ") + "</" + cell + ">")
		}
		w.b.WriteString("</tr>")
	}
	w.b.WriteString("</table>")
}

func (w *docxWriter) inline(el *etree.Element) string {
	var b strings.Builder
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "r":
			b.WriteString(w.run(c))
		case "hyperlink":
			inner := w.inline(c)
			href := ""
			if rel, ok := w.rels[c.SelectAttrValue("r:id", "")]; ok {
				href = rel.Target
			} else if anchor := c.SelectAttrValue("anchor", ""); anchor != "" {
				href = "#" + anchor
			}
			if href == "" {
				b.WriteString(inner)
				continue
			}
			b.WriteString(`<a href="` + html.EscapeString(href) + `">` + inner + "</a>")
		case "oMath":
			b.WriteString("<code>" + html.EscapeString(docxmath.LaTeX(c)) + "</code>")
		case "ins", "smartTag", "fldSimple", "customXml", "sdt", "sdtContent":
			b.WriteString(w.inline(c))
		}
	}
	return b.String()
}

func (w *docxWriter) run(r *etree.Element) string {
	var text, media strings.Builder
	for _, c := range r.ChildElements() {
		switch c.Tag {
		case "t":
			text.WriteString(html.EscapeString(c.Text()))
		case "tab":
			text.WriteString(" ")
		case "br", "cr":
			text.WriteString("<br>")
		case "noBreakHyphen":
			text.WriteString("-")
		case "drawing", "pict":
			media.WriteString(w.image(c))
		case "commentReference":
			w.pending = append(w.pending, c.SelectAttrValue("id", ""))
		}
	}
	s := text.String()
	if strings.TrimSpace(s) != "" {
		pr := r.SelectElement("rPr")
		if enabled(pr, "strike") || enabled(pr, "dstrike") {
			s = "<del>" + s + "</del>"
		}
		if enabled(pr, "i") {
			s = "<em>" + s + "</em>"
		}
		if enabled(pr, "b") {
			s = "<strong>" + s + "</strong>"
		}
	}
	return s + media.String()
}

// enabled reports whether a run property toggle is on.
func enabled(pr *etree.Element, tag string) bool {
	if pr == nil {
		return false
	}
	el := pr.SelectElement(tag)
	if el == nil {
		return false
	}
	switch el.SelectAttrValue("val", "") {
	case "0", "false", "none":
		return false
	}
	return true
}

// image renders an embedded picture as an <img> with a data URI, or a
// linked one with its external target.
func (w *docxWriter) image(el *etree.Element) string {
	var id string
	if blip := el.FindElement(".//blip"); blip != nil {
		id = blip.SelectAttrValue("r:embed", "")
	} else if data := el.FindElement(".//imagedata"); data != nil {
		id = data.SelectAttrValue("r:id", "")
	}
	rel, ok := w.rels[id]
	if !ok {
		return ""
	}

	var alt string
	if pr := el.FindElement(".//docPr"); pr != nil {
		alt = pr.SelectAttrValue("descr", pr.SelectAttrValue("name", ""))
	}

	src := rel.Target
	if !rel.External() {
		data, err := w.pkg.Read(rel.Target)
		if err != nil {
			return ""
		}
		typ, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
		src = "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return `<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `">`
}
