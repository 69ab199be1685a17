package docxmath

import (
	"testing"

	"github.com/beevik/etree"
)

func parse(t *testing.T, body string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	src := `<m:oMath xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">` + body + `</m:oMath>`
	if err := doc.ReadFromString(src); err != nil {
		t.Fatal(err)
	}
	return doc.Root()
}

func TestLaTeX(t *testing.T) {
	tests := []struct {
		name string
		omml string
		want string
	}{
		{"run", `<m:r><m:t>x+1</m:t></m:r>`, "x+1"},
		{"fraction", `<m:f><m:num><m:r><m:t>a</m:t></m:r></m:num><m:den><m:r><m:t>b</m:t></m:r></m:den></m:f>`, `\frac{a}{b}`},
		{"linear fraction", `<m:f><m:fPr><m:type m:val="lin"/></m:fPr><m:num><m:r><m:t>a</m:t></m:r></m:num><m:den><m:r><m:t>b</m:t></m:r></m:den></m:f>`, "a/b"},
		{"superscript", `<m:sSup><m:e><m:r><m:t>x</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup>`, "x^{2}"},
		{"subscript", `<m:sSub><m:e><m:r><m:t>a</m:t></m:r></m:e><m:sub><m:r><m:t>i</m:t></m:r></m:sub></m:sSub>`, "a_{i}"},
		{"square root", `<m:rad><m:radPr><m:degHide m:val="1"/></m:radPr><m:deg/><m:e><m:r><m:t>x</m:t></m:r></m:e></m:rad>`, `\sqrt{x}`},
		{"cube root", `<m:rad><m:deg><m:r><m:t>3</m:t></m:r></m:deg><m:e><m:r><m:t>x</m:t></m:r></m:e></m:rad>`, `\sqrt[3]{x}`},
		{"sum", `<m:nary><m:naryPr><m:chr m:val="∑"/></m:naryPr><m:sub><m:r><m:t>i=1</m:t></m:r></m:sub><m:sup><m:r><m:t>n</m:t></m:r></m:sup><m:e><m:r><m:t>i</m:t></m:r></m:e></m:nary>`, `\sum_{i=1}^{n}{i}`},
		{"delimiters", `<m:d><m:e><m:r><m:t>a</m:t></m:r></m:e></m:d>`, `\left(a\right)`},
		{"function", `<m:func><m:fName><m:r><m:t>sin</m:t></m:r></m:fName><m:e><m:r><m:t>x</m:t></m:r></m:e></m:func>`, `\sin{x}`},
		{"greek and specials", `<m:r><m:t>α_%</m:t></m:r>`, `\alpha \_\%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LaTeX(parse(t, tt.omml)); got != tt.want {
				t.Errorf("LaTeX() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLaTeXParagraph(t *testing.T) {
	doc := etree.NewDocument()
	src := `<m:oMathPara xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">` +
		`<m:oMath><m:r><m:t>a</m:t></m:r></m:oMath><m:oMath><m:r><m:t>b</m:t></m:r></m:oMath></m:oMathPara>`
	if err := doc.ReadFromString(src); err != nil {
		t.Fatal(err)
	}
	if got := LaTeX(doc.Root()); got != `a \\ b` {
		t.Errorf("LaTeX() = %q", got)
	}
}
