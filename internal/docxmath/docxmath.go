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

// Package docxmath renders Office Math (OMML) as LaTeX.
package docxmath

import (
	"strings"

	"github.com/beevik/etree"
)

// LaTeX renders an m:oMath or m:oMathPara element. Paragraphs holding
// several equations are joined with a line break.
func LaTeX(el *etree.Element) string {
	if el.Tag == "oMathPara" {
		var eqs []string
		for _, m := range el.SelectElements("oMath") {
			if s := LaTeX(m); s != "" {
				eqs = append(eqs, s)
			}
		}
		return strings.Join(eqs, ` \\ `)
	}
	return strings.TrimSpace(children(el))
}

func children(el *etree.Element) string {
	var b strings.Builder
	for _, c := range el.ChildElements() {
		b.WriteString(render(c))
	}
	return b.String()
}

// part renders the named child, or "" if it is missing.
func part(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return children(c)
	}
	return ""
}

// prop reads m:val of a property inside the element's *Pr child.
func prop(el *etree.Element, pr, name string) (string, bool) {
	p := el.SelectElement(pr)
	if p == nil {
		return "", false
	}
	c := p.SelectElement(name)
	if c == nil {
		return "", false
	}
	return c.SelectAttrValue("val", ""), true
}

func render(el *etree.Element) string {
	switch el.Tag {
	case "r":
		var b strings.Builder
		for _, t := range el.SelectElements("t") {
			b.WriteString(text(t.Text()))
		}
		return b.String()
	case "f":
		num, den := part(el, "num"), part(el, "den")
		if typ, _ := prop(el, "fPr", "type"); typ == "lin" {
			return num + "/" + den
		}
		return `\frac{` + num + "}{" + den + "}"
	case "sSub":
		return part(el, "e") + "_{" + part(el, "sub") + "}"
	case "sSup":
		return part(el, "e") + "^{" + part(el, "sup") + "}"
	case "sSubSup":
		return part(el, "e") + "_{" + part(el, "sub") + "}^{" + part(el, "sup") + "}"
	case "sPre":
		return "{}_{" + part(el, "sub") + "}^{" + part(el, "sup") + "}" + part(el, "e")
	case "rad":
		deg := part(el, "deg")
		if hide, _ := prop(el, "radPr", "degHide"); hide == "1" || hide == "on" || deg == "" {
			return `\sqrt{` + part(el, "e") + "}"
		}
		return `\sqrt[` + deg + "]{" + part(el, "e") + "}"
	case "nary":
		return nary(el)
	case "d":
		return delimited(el)
	case "func":
		name := strings.TrimSpace(part(el, "fName"))
		if functions[name] {
			name = `\` + name
		}
		return name + "{" + part(el, "e") + "}"
	case "acc":
		chr, ok := prop(el, "accPr", "chr")
		if !ok {
			chr = "\u0302"
		}
		cmd, known := accents[chr]
		if !known {
			cmd = `\hat`
		}
		return cmd + "{" + part(el, "e") + "}"
	case "bar":
		if pos, _ := prop(el, "barPr", "pos"); pos == "top" {
			return `\overline{` + part(el, "e") + "}"
		}
		return `\underline{` + part(el, "e") + "}"
	case "limLow":
		return part(el, "e") + "_{" + part(el, "lim") + "}"
	case "limUpp":
		return part(el, "e") + "^{" + part(el, "lim") + "}"
	case "groupChr":
		return part(el, "e")
	case "eqArr":
		var rows []string
		for _, e := range el.SelectElements("e") {
			rows = append(rows, children(e))
		}
		return `\begin{array}{c}` + strings.Join(rows, ` \\ `) + `\end{array}`
	case "m":
		var rows []string
		for _, mr := range el.SelectElements("mr") {
			var cells []string
			for _, e := range mr.SelectElements("e") {
				cells = append(cells, children(e))
			}
			rows = append(rows, strings.Join(cells, " & "))
		}
		return `\begin{matrix}` + strings.Join(rows, ` \\ `) + `\end{matrix}`
	case "oMath", "e", "num", "den", "sub", "sup", "deg", "lim", "fName", "box", "borderBox", "phant":
		return children(el)
	}
	return ""
}

func nary(el *etree.Element) string {
	chr, ok := prop(el, "naryPr", "chr")
	if !ok {
		chr = "∫"
	}
	op, known := naryOps[chr]
	if !known {
		op = text(chr)
	}
	var b strings.Builder
	b.WriteString(op)
	if sub := part(el, "sub"); sub != "" {
		b.WriteString("_{" + sub + "}")
	}
	if sup := part(el, "sup"); sup != "" {
		b.WriteString("^{" + sup + "}")
	}
	b.WriteString("{" + part(el, "e") + "}")
	return b.String()
}

func delimited(el *etree.Element) string {
	beg, ok := prop(el, "dPr", "begChr")
	if !ok {
		beg = "("
	}
	end, ok := prop(el, "dPr", "endChr")
	if !ok {
		end = ")"
	}
	sep, ok := prop(el, "dPr", "sepChr")
	if !ok {
		sep = "|"
	}
	var parts []string
	for _, e := range el.SelectElements("e") {
		parts = append(parts, children(e))
	}
	return `\left` + fence(beg) + strings.Join(parts, text(sep)) + `\right` + fence(end)
}

func fence(s string) string {
	switch s {
	case "":
		return "."
	case "{", "}":
		return `\` + s
	}
	if cmd, ok := symbols[s]; ok {
		return cmd
	}
	return s
}

// text escapes LaTeX specials and maps math symbols to commands.
func text(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`{}_^#&$%~`, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		case symbols[string(r)] != "":
			b.WriteString(symbols[string(r)] + " ")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var naryOps = map[string]string{
	"∑": `\sum`,
	"∏": `\prod`,
	"∐": `\coprod`,
	"∫": `\int`,
	"∬": `\iint`,
	"∭": `\iiint`,
	"∮": `\oint`,
	"⋀": `\bigwedge`,
	"⋁": `\bigvee`,
	"⋂": `\bigcap`,
	"⋃": `\bigcup`,
}

var accents = map[string]string{
	"\u0300": `\grave`,
	"\u0301": `\acute`,
	"\u0302": `\hat`,
	"\u0303": `\tilde`,
	"\u0304": `\bar`,
	"\u0306": `\breve`,
	"\u0307": `\dot`,
	"\u0308": `\ddot`,
	"\u20d7": `\vec`,
}

var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true, "tanh": true,
	"log": true, "ln": true, "exp": true, "lim": true, "max": true, "min": true, "det": true,
}

var symbols = map[string]string{
	"α": `\alpha`, "β": `\beta`, "γ": `\gamma`, "δ": `\delta`,
	"ε": `\epsilon`, "ζ": `\zeta`, "η": `\eta`, "θ": `\theta`,
	"λ": `\lambda`, "μ": `\mu`, "π": `\pi`, "ρ": `\rho`,
	"σ": `\sigma`, "τ": `\tau`, "φ": `\phi`, "χ": `\chi`,
	"ψ": `\psi`, "ω": `\omega`, "Γ": `\Gamma`, "Δ": `\Delta`,
	"Θ": `\Theta`, "Λ": `\Lambda`, "Π": `\Pi`, "Σ": `\Sigma`,
	"Φ": `\Phi`, "Ψ": `\Psi`, "Ω": `\Omega`,
	"∂": `\partial`, "∞": `\infty`, "∇": `\nabla`,
	"±": `\pm`, "∓": `\mp`, "×": `\times`, "÷": `\div`, "⋅": `\cdot`,
	"≠": `\neq`, "≤": `\leq`, "≥": `\geq`, "≈": `\approx`, "≡": `\equiv`,
	"∈": `\in`, "∉": `\notin`, "⊂": `\subset`, "⊆": `\subseteq`,
	"∪": `\cup`, "∩": `\cap`, "∀": `\forall`, "∃": `\exists`,
	"→": `\rightarrow`, "←": `\leftarrow`, "⇒": `\Rightarrow`, "⇔": `\Leftrightarrow`,
	"⋯": `\cdots`, "…": `\ldots`,
	"⟨": `\langle`, "⟩": `\rangle`, "‖": `\|`,
}
