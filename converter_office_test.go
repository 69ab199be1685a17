package htmd

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

const (
	nsW   = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	nsR   = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	nsM   = `xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"`
	nsP   = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsA   = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsRel = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`
	relNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
)

func wordRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func wordItem(text string) string {
	return `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>` + wordRun(text) + `</w:p>`
}

func wordCell(text string) string {
	return `<w:tc><w:p>` + wordRun(text) + `</w:p></w:tc>`
}

func testDocx(t *testing.T) []byte {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr>` + wordRun("Report") + `</w:p>` +
		`<w:p>` + wordRun("Plain ") + `<w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>` + wordRun(" and ") +
		`<w:hyperlink r:id="rId1">` + wordRun("link") + `</w:hyperlink></w:p>` +
		wordItem("one") + wordItem("two") +
		`<w:tbl><w:tr>` + wordCell("A") + wordCell("B") + `</w:tr><w:tr>` + wordCell("1") + wordCell("2") + `</w:tr></w:tbl>` +
		`<w:p><m:oMathPara><m:oMath><m:sSup><m:e><m:r><m:t>x</m:t></m:r></m:e>` +
		`<m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup></m:oMath></m:oMathPara></w:p>`
	return buildZip(t, [][2]string{
		{"word/document.xml", `<w:document ` + nsW + ` ` + nsR + ` ` + nsM + `><w:body>` + body + `</w:body></w:document>`},
		{"word/_rels/document.xml.rels", `<Relationships ` + nsRel + `>` +
			`<Relationship Id="rId1" Type="` + relNS + `hyperlink" Target="https://x.io" TargetMode="External"/></Relationships>`},
		{"word/numbering.xml", `<w:numbering ` + nsW + `>` +
			`<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>` +
			`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num></w:numbering>`},
		{"docProps/core.xml", `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
			`xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Quarterly</dc:title></cp:coreProperties>`},
	})
}

func TestDocxConverter(t *testing.T) {
	result, err := New().ConvertReader(bytes.NewReader(testDocx(t)), StreamInfo{Extension: ".docx"})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		"# Report",
		"Plain **bold** and [link](https://x.io)",
		"1. one\n2. two",
		"| A | B |\n| --- | --- |\n| 1 | 2 |",
		"```math\nx^{2}\n```",
	} {
		if !strings.Contains(result.Markdown, s) {
			t.Errorf("expected output to contain %q\nGot:\n%s", s, result.Markdown)
		}
	}
	if result.Title != "Quarterly" || result.Documents != 1 {
		t.Errorf("Title = %q, Documents = %d", result.Title, result.Documents)
	}
}

func TestDocxConverterVisitor(t *testing.T) {
	var langs []string
	v := &Funcs{
		Link: func(ctx *NodeContext, href, text, title string) VisitResult {
			return Custom("<" + href + ">")
		},
		CodeBlock: func(ctx *NodeContext, lang, code string) VisitResult {
			langs = append(langs, lang)
			return Continue()
		},
	}
	result, err := New(WithVisitor(v)).ConvertReader(bytes.NewReader(testDocx(t)), StreamInfo{Extension: ".docx"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Markdown, "and <https://x.io>") {
		t.Errorf("link callback not applied:\n%s", result.Markdown)
	}
	if len(langs) != 1 || langs[0] != "math" {
		t.Errorf("code block languages = %q", langs)
	}

	abort := &Funcs{TableRow: func(*NodeContext, []string, bool) VisitResult { return Error("no tables") }}
	_, err = New(WithVisitor(abort)).ConvertReader(bytes.NewReader(testDocx(t)), StreamInfo{Extension: ".docx"})
	if !IsVisitorAbort(err) || err.Error() != "no tables" {
		t.Errorf("error = %v, want visitor abort", err)
	}
}

func slideXML(shapes string) string {
	return `<p:sld ` + nsP + ` ` + nsA + ` ` + nsR + `><p:cSld><p:spTree>` + shapes + `</p:spTree></p:cSld></p:sld>`
}

func slideText(ph string, y int, text string) string {
	nv := `<p:nvSpPr><p:cNvPr id="1" name="s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`
	if ph != "" {
		nv = `<p:nvSpPr><p:cNvPr id="1" name="s"/><p:cNvSpPr/><p:nvPr><p:ph type="` + ph + `"/></p:nvPr></p:nvSpPr>`
	}
	return `<p:sp>` + nv + `<p:spPr><a:xfrm><a:off x="0" y="` + strconv.Itoa(y) + `"/></a:xfrm></p:spPr>` +
		`<p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp>`
}

func slideCell(text string) string {
	return `<a:tc><a:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></a:txBody></a:tc>`
}

func testPptx(t *testing.T) []byte {
	table := `<p:graphicFrame><p:xfrm><a:off x="0" y="500"/></p:xfrm><a:graphic><a:graphicData><a:tbl>` +
		`<a:tr>` + slideCell("A") + `</a:tr><a:tr>` + slideCell("1") + `</a:tr></a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
	return buildZip(t, [][2]string{
		{"ppt/presentation.xml", `<p:presentation ` + nsP + ` ` + nsR + `><p:sldIdLst>` +
			`<p:sldId id="256" r:id="rId2"/><p:sldId id="257" r:id="rId1"/></p:sldIdLst></p:presentation>`},
		{"ppt/_rels/presentation.xml.rels", `<Relationships ` + nsRel + `>` +
			`<Relationship Id="rId1" Type="` + relNS + `slide" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId2" Type="` + relNS + `slide" Target="slides/slide2.xml"/></Relationships>`},
		{"ppt/slides/slide2.xml", slideXML(slideText("", 200, "Hello") + slideText("title", 0, "Intro"))},
		{"ppt/slides/slide1.xml", slideXML(slideText("title", 0, "Data") + table)},
		{"ppt/slides/_rels/slide1.xml.rels", `<Relationships ` + nsRel + `>` +
			`<Relationship Id="rId1" Type="` + relNS + `notesSlide" Target="../notesSlides/notesSlide1.xml"/></Relationships>`},
		{"ppt/notesSlides/notesSlide1.xml", `<p:notes ` + nsP + ` ` + nsA + `><p:cSld><p:spTree>` +
			slideText("sldImg", 0, "") + slideText("body", 100, "Remember") + `</p:spTree></p:cSld></p:notes>`},
	})
}

func TestPptxConverter(t *testing.T) {
	result, err := New().ConvertReader(bytes.NewReader(testPptx(t)), StreamInfo{Extension: ".pptx"})
	if err != nil {
		t.Fatal(err)
	}
	md := result.Markdown
	for _, s := range []string{"# Intro\n\nHello", "# Data", "| A |\n| --- |\n| 1 |", "### Notes:\n\nRemember"} {
		if !strings.Contains(md, s) {
			t.Errorf("expected output to contain %q\nGot:\n%s", s, md)
		}
	}
	if strings.Index(md, "Intro") > strings.Index(md, "Data") {
		t.Errorf("slides out of presentation order:\n%s", md)
	}
}

func TestPptxConverterVisitor(t *testing.T) {
	rows := 0
	v := &Funcs{
		ElementStart: func(ctx *NodeContext) VisitResult {
			if n, ok := ctx.Attr("data-slide"); ok && n == "1" {
				return Skip()
			}
			return Continue()
		},
		TableRow: func(*NodeContext, []string, bool) VisitResult {
			rows++
			return Continue()
		},
	}
	result, err := New(WithVisitor(v)).ConvertReader(bytes.NewReader(testPptx(t)), StreamInfo{Extension: ".pptx"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(result.Markdown, "Intro") || !strings.Contains(result.Markdown, "# Data") {
		t.Errorf("skipped slide rendered:\n%s", result.Markdown)
	}
	if rows != 2 {
		t.Errorf("table rows visited = %d, want 2", rows)
	}
}
