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
	"fmt"
	"io"
	"math"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/nicholasgasior/htmd/internal/ooxml"
)

// PptxConverter handles PowerPoint decks. Every slide becomes a
// <section data-slide="N"> of one HTML document, so a visitor can skip or
// rewrite whole slides.
type PptxConverter struct {
	engine *Engine
}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter(e *Engine) *PptxConverter {
	return &PptxConverter{engine: e}
}

func (c *PptxConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".pptx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.presentationml")
}

func (c *PptxConverter) Convert(reader io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PPTX: %w", err)
	}
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<html><head>")
	if core, err := pkg.Document("docProps/core.xml"); err == nil {
		if t := core.FindElement("//title"); t != nil && strings.TrimSpace(t.Text()) != "" {
			b.WriteString("<title>" + html.EscapeString(strings.TrimSpace(t.Text())) + "</title>")
		}
	}
	b.WriteString("</head><body>")
	for i, part := range slideParts(pkg) {
		doc, err := pkg.Document(part)
		if err != nil {
			c.engine.logger.Debug("skipping slide", "part", part, "error", err)
			continue
		}
		if i > 0 {
			b.WriteString("<hr>")
		}
		fmt.Fprintf(&b, `<section data-slide="%d">`, i+1)
		s := &slideWriter{rels: pkg.Relationships(part)}
		s.slide(doc)
		b.WriteString(s.b.String())
		b.WriteString(notesHTML(pkg, s.rels))
		b.WriteString("</section>")
	}
	b.WriteString("</body></html>")

	result, err := NewHTMLConverter(c.engine).ConvertString(b.String())
	if err != nil {
		if IsVisitorAbort(err) {
			return nil, err
		}
		return nil, fmt.Errorf("convert PPTX: %w", err)
	}
	return result, nil
}

var reSlidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// slideParts lists slides in presentation order, falling back to the
// numeric order of the slide parts.
func slideParts(pkg *ooxml.Package) []string {
	var parts []string
	if doc, err := pkg.Document("ppt/presentation.xml"); err == nil {
		rels := pkg.Relationships("ppt/presentation.xml")
		for _, id := range doc.FindElements("//sldId") {
			if rel, ok := rels[id.SelectAttrValue("r:id", "")]; ok {
				parts = append(parts, rel.Target)
			}
		}
	}
	if len(parts) > 0 {
		return parts
	}

	for _, name := range pkg.Names() {
		if reSlidePart.MatchString(name) {
			parts = append(parts, name)
		}
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(reSlidePart.FindStringSubmatch(s)[1])
		return n
	}
	sort.Slice(parts, func(i, j int) bool { return num(parts[i]) < num(parts[j]) })
	return parts
}

type slideShape struct {
	top, left int64
	html      string
}

type slideWriter struct {
	rels   map[string]ooxml.Relationship
	shapes []slideShape
	b      strings.Builder
}

// slide renders shapes top to bottom, then left to right.
func (s *slideWriter) slide(doc *etree.Document) {
	if tree := doc.FindElement("//spTree"); tree != nil {
		s.collect(tree)
	}
	sort.SliceStable(s.shapes, func(i, j int) bool {
		if s.shapes[i].top != s.shapes[j].top {
			return s.shapes[i].top < s.shapes[j].top
		}
		return s.shapes[i].left < s.shapes[j].left
	})
	for _, sh := range s.shapes {
		s.b.WriteString(sh.html)
	}
}

func (s *slideWriter) collect(tree *etree.Element) {
	for _, el := range tree.ChildElements() {
		var out string
		switch el.Tag {
		case "sp":
			out = s.textShape(el)
		case "pic":
			out = s.picture(el)
		case "graphicFrame":
			if tbl := el.FindElement(".//tbl"); tbl != nil {
				out = s.table(tbl)
			}
		case "grpSp":
			s.collect(el)
		}
		if out != "" {
			top, left := position(el)
			s.shapes = append(s.shapes, slideShape{top: top, left: left, html: out})
		}
	}
}

// position reads a shape's offset. Shapes without one sort last.
func position(el *etree.Element) (top, left int64) {
	top, left = math.MaxInt64, math.MaxInt64
	for _, p := range []string{"./spPr/xfrm/off", "./xfrm/off", "./grpSpPr/xfrm/off"} {
		if off := el.FindElement(p); off != nil {
			if v, err := strconv.ParseInt(off.SelectAttrValue("y", ""), 10, 64); err == nil {
				top = v
			}
			if v, err := strconv.ParseInt(off.SelectAttrValue("x", ""), 10, 64); err == nil {
				left = v
			}
			break
		}
	}
	return top, left
}

func placeholder(el *etree.Element) string {
	if ph := el.FindElement(".//nvPr/ph"); ph != nil {
		return ph.SelectAttrValue("type", "body")
	}
	return ""
}

func (s *slideWriter) textShape(sp *etree.Element) string {
	body := sp.SelectElement("txBody")
	if body == nil {
		return ""
	}
	var paras []string
	for _, p := range body.SelectElements("p") {
		if t := strings.TrimSpace(s.paragraph(p)); t != "" {
			paras = append(paras, t)
		}
	}
	if len(paras) == 0 {
		return ""
	}
	switch placeholder(sp) {
	case "title", "ctrTitle":
		return "<h1>" + strings.Join(paras, " ") + "</h1>"
	case "subTitle":
		return "<h2>" + strings.Join(paras, " ") + "</h2>"
	}
	return "<p>" + strings.Join(paras, "</p><p>") + "</p>"
}

func (s *slideWriter) paragraph(p *etree.Element) string {
	var b strings.Builder
	for _, c := range p.ChildElements() {
		switch c.Tag {
		case "r", "fld":
			t := c.SelectElement("t")
			if t == nil || t.Text() == "" {
				continue
			}
			text := html.EscapeString(t.Text())
			pr := c.SelectElement("rPr")
			if pr != nil {
				if pr.SelectAttrValue("i", "0") == "1" {
					text = "<em>" + text + "</em>"
				}
				if pr.SelectAttrValue("b", "0") == "1" {
					text = "<strong>" + text + "</strong>"
				}
				if link := pr.SelectElement("hlinkClick"); link != nil {
					if rel, ok := s.rels[link.SelectAttrValue("r:id", "")]; ok {
						text = `<a href="` + html.EscapeString(rel.Target) + `">` + text + "</a>"
					}
				}
			}
			b.WriteString(text)
		case "br":
			b.WriteString("<br>")
		}
	}
	return b.String()
}

func (s *slideWriter) picture(pic *etree.Element) string {
	var alt string
	if pr := pic.FindElement("./nvPicPr/cNvPr"); pr != nil {
		alt = pr.SelectAttrValue("descr", "")
	}
	var src string
	if blip := pic.FindElement(".//blip"); blip != nil {
		if rel, ok := s.rels[blip.SelectAttrValue("r:embed", "")]; ok {
			src = rel.Target
			if !rel.External() {
				src = path.Base(rel.Target)
			}
		}
	}
	if alt == "" && src == "" {
		return ""
	}
	return `<p><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `"></p>`
}

// table renders a DrawingML table. The first row is the header.
func (s *slideWriter) table(tbl *etree.Element) string {
	var b strings.Builder
	b.WriteString("<table>")
	for i, tr := range tbl.SelectElements("tr") {
		cell := "td"
		if i == 0 {
			cell = "th"
		}
		b.WriteString("<tr>")
		for _, tc := range tr.SelectElements("tc") {
			var parts []string
			if body := tc.SelectElement("txBody"); body != nil {
				for _, p := range body.SelectElements("p") {
					if t := strings.TrimSpace(s.paragraph(p)); t != "" {
						parts = append(parts, t)
					}
				}
			}
			b.WriteString("<" + cell + ">" + strings.Join(parts, " ") + "</" + cell + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// notesHTML renders the speaker notes linked from a slide.
func notesHTML(pkg *ooxml.Package, rels map[string]ooxml.Relationship) string {
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		doc, err := pkg.Document(rel.Target)
		if err != nil {
			return ""
		}
		notes := &slideWriter{rels: pkg.Relationships(rel.Target)}
		var paras []string
		for _, sp := range doc.FindElements("//sp") {
			switch placeholder(sp) {
			case "sldImg", "sldNum", "hdr", "ftr", "dt":
				continue
			}
			if out := notes.textShape(sp); out != "" {
				paras = append(paras, out)
			}
		}
		if len(paras) == 0 {
			return ""
		}
		return "<h3>Notes:</h3>" + strings.Join(paras, "")
	}
	return ""
}
