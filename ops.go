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
	"slices"
	"strings"
)

// Op names one operation of the visitor contract.
type Op uint8

const (
	OpText Op = iota
	OpElementStart
	OpElementEnd
	OpLink
	OpImage
	OpHeading
	OpCodeBlock
	OpCodeInline
	OpListItem
	OpListStart
	OpListEnd
	OpTableStart
	OpTableRow
	OpTableEnd
	OpBlockquote
	OpStrong
	OpEmphasis
	OpStrikethrough
	OpUnderline
	OpSubscript
	OpSuperscript
	OpMark
	OpLineBreak
	OpHorizontalRule
	OpCustomElement
	OpDefinitionListStart
	OpDefinitionTerm
	OpDefinitionDescription
	OpDefinitionListEnd
	OpForm
	OpInput
	OpButton
	OpAudio
	OpVideo
	OpIframe
	OpDetails
	OpSummary
	OpFigureStart
	OpFigcaption
	OpFigureEnd

	// NumOps is the number of operations in the contract.
	NumOps = int(OpFigureEnd) + 1
)

// ParamKind is the Go type an operation argument is carried as.
type ParamKind uint8

const (
	ParamString ParamKind = iota
	ParamBool
	ParamInt
	ParamStrings
)

// Param describes one operation argument. Name is snake_case.
type Param struct {
	Name string
	Kind ParamKind
}

// CamelName returns the lowerCamelCase spelling of the parameter name.
func (p Param) CamelName() string { return camel(p.Name, false) }

var (
	pText    = Param{"text", ParamString}
	pOutput  = Param{"output", ParamString}
	pTitle   = Param{"title", ParamString}
	pSrc     = Param{"src", ParamString}
	pOrdered = Param{"ordered", ParamBool}
)

type opInfo struct {
	name   string
	params []Param
}

var ops = [NumOps]opInfo{
	OpText:                  {"visit_text", []Param{pText}},
	OpElementStart:          {"visit_element_start", nil},
	OpElementEnd:            {"visit_element_end", []Param{pOutput}},
	OpLink:                  {"visit_link", []Param{{"href", ParamString}, pText, pTitle}},
	OpImage:                 {"visit_image", []Param{pSrc, {"alt", ParamString}, pTitle}},
	OpHeading:               {"visit_heading", []Param{{"level", ParamInt}, pText, {"id", ParamString}}},
	OpCodeBlock:             {"visit_code_block", []Param{{"lang", ParamString}, {"code", ParamString}}},
	OpCodeInline:            {"visit_code_inline", []Param{{"code", ParamString}}},
	OpListItem:              {"visit_list_item", []Param{pOrdered, {"marker", ParamString}, pText}},
	OpListStart:             {"visit_list_start", []Param{pOrdered}},
	OpListEnd:               {"visit_list_end", []Param{pOrdered, pOutput}},
	OpTableStart:            {"visit_table_start", nil},
	OpTableRow:              {"visit_table_row", []Param{{"cells", ParamStrings}, {"is_header", ParamBool}}},
	OpTableEnd:              {"visit_table_end", []Param{pOutput}},
	OpBlockquote:            {"visit_blockquote", []Param{{"content", ParamString}, {"depth", ParamInt}}},
	OpStrong:                {"visit_strong", []Param{pText}},
	OpEmphasis:              {"visit_emphasis", []Param{pText}},
	OpStrikethrough:         {"visit_strikethrough", []Param{pText}},
	OpUnderline:             {"visit_underline", []Param{pText}},
	OpSubscript:             {"visit_subscript", []Param{pText}},
	OpSuperscript:           {"visit_superscript", []Param{pText}},
	OpMark:                  {"visit_mark", []Param{pText}},
	OpLineBreak:             {"visit_line_break", nil},
	OpHorizontalRule:        {"visit_horizontal_rule", nil},
	OpCustomElement:         {"visit_custom_element", []Param{{"tag_name", ParamString}, {"html", ParamString}}},
	OpDefinitionListStart:   {"visit_definition_list_start", nil},
	OpDefinitionTerm:        {"visit_definition_term", []Param{pText}},
	OpDefinitionDescription: {"visit_definition_description", []Param{pText}},
	OpDefinitionListEnd:     {"visit_definition_list_end", []Param{pOutput}},
	OpForm:                  {"visit_form", []Param{{"action", ParamString}, {"method", ParamString}}},
	OpInput:                 {"visit_input", []Param{{"input_type", ParamString}, {"name", ParamString}, {"value", ParamString}}},
	OpButton:                {"visit_button", []Param{pText}},
	OpAudio:                 {"visit_audio", []Param{pSrc}},
	OpVideo:                 {"visit_video", []Param{pSrc}},
	OpIframe:                {"visit_iframe", []Param{pSrc}},
	OpDetails:               {"visit_details", []Param{{"open", ParamBool}}},
	OpSummary:               {"visit_summary", []Param{pText}},
	OpFigureStart:           {"visit_figure_start", nil},
	OpFigcaption:            {"visit_figcaption", []Param{pText}},
	OpFigureEnd:             {"visit_figure_end", []Param{pOutput}},
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, NumOps*2)
	for i := range ops {
		op := Op(i)
		m[ops[i].name] = op
		m[strings.TrimPrefix(ops[i].name, "visit_")] = op
	}
	return m
}()

// AllOps returns every operation in declaration order.
func AllOps() []Op {
	all := make([]Op, NumOps)
	for i := range all {
		all[i] = Op(i)
	}
	return all
}

// LookupOp resolves a snake_case operation name, with or without the
// "visit_" prefix.
func LookupOp(name string) (Op, bool) {
	op, ok := opsByName[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// String returns the snake_case name, e.g. "visit_list_item".
func (o Op) String() string {
	if int(o) < NumOps {
		return ops[o].name
	}
	return "visit_unknown"
}

// CamelName returns the lowerCamelCase name, e.g. "visitListItem".
func (o Op) CamelName() string { return camel(o.String(), false) }

// MethodName returns the Visitor method name, e.g. "VisitListItem".
func (o Op) MethodName() string { return camel(o.String(), true) }

// Params returns the ordered argument schema passed after the context.
func (o Op) Params() []Param {
	if int(o) < NumOps {
		return ops[o].params
	}
	return nil
}

func camel(s string, upper bool) string {
	var b strings.Builder
	b.Grow(len(s))
	next := upper
	for _, r := range s {
		if r == '_' {
			next = true
			continue
		}
		if next && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		next = false
		b.WriteRune(r)
	}
	return b.String()
}

// Args carries the arguments of any operation. Only the fields named by the
// operation's Params are meaningful.
type Args struct {
	Text      string
	Output    string
	Href      string
	Title     string
	Src       string
	Alt       string
	ID        string
	Lang      string
	Code      string
	Marker    string
	Content   string
	TagName   string
	HTML      string
	Action    string
	Method    string
	InputType string
	Name      string
	Value     string
	Level     int
	Depth     int
	Ordered   bool
	IsHeader  bool
	Open      bool
	Cells     []string

	absent uint8
}

// optionalBits are the arguments the source can leave out.
var optionalBits = map[string]uint8{
	"title":  1 << 0,
	"id":     1 << 1,
	"lang":   1 << 2,
	"action": 1 << 3,
	"method": 1 << 4,
	"name":   1 << 5,
	"value":  1 << 6,
	"src":    1 << 7,
}

// Present reports whether the named argument came from the source document.
// An absent optional argument reads as "". Arguments that are not optional
// are always present.
func (a *Args) Present(name string) bool {
	return a.absent&optionalBits[name] == 0
}

// omit records whether an optional argument was found in the source.
func (a *Args) omit(name string, present bool) *Args {
	if !present {
		a.absent |= optionalBits[name]
	}
	return a
}

// Arg returns the argument described by p.
func (a *Args) Arg(p Param) any {
	switch p.Name {
	case "text":
		return a.Text
	case "output":
		return a.Output
	case "href":
		return a.Href
	case "title":
		return a.Title
	case "src":
		return a.Src
	case "alt":
		return a.Alt
	case "id":
		return a.ID
	case "lang":
		return a.Lang
	case "code":
		return a.Code
	case "marker":
		return a.Marker
	case "content":
		return a.Content
	case "tag_name":
		return a.TagName
	case "html":
		return a.HTML
	case "action":
		return a.Action
	case "method":
		return a.Method
	case "input_type":
		return a.InputType
	case "name":
		return a.Name
	case "value":
		return a.Value
	case "level":
		return a.Level
	case "depth":
		return a.Depth
	case "ordered":
		return a.Ordered
	case "is_header":
		return a.IsHeader
	case "open":
		return a.Open
	case "cells":
		return slices.Clone(a.Cells)
	}
	return nil
}

// Values returns the operation's arguments in schema order. Slices are
// copied.
func (a *Args) Values(op Op) []any {
	params := op.Params()
	vals := make([]any, len(params))
	for i, p := range params {
		vals[i] = a.Arg(p)
	}
	return vals
}

// Invoke calls the Visitor method for op. A visitor built by Adapt receives
// a itself, so argument presence reaches its Dispatcher.
func Invoke(v Visitor, op Op, ctx *NodeContext, a *Args) VisitResult {
	if dv, ok := v.(dispatchVisitor); ok {
		return dv.call(op, ctx, a)
	}
	switch op {
	case OpText:
		return v.VisitText(ctx, a.Text)
	case OpElementStart:
		return v.VisitElementStart(ctx)
	case OpElementEnd:
		return v.VisitElementEnd(ctx, a.Output)
	case OpLink:
		return v.VisitLink(ctx, a.Href, a.Text, a.Title)
	case OpImage:
		return v.VisitImage(ctx, a.Src, a.Alt, a.Title)
	case OpHeading:
		return v.VisitHeading(ctx, a.Level, a.Text, a.ID)
	case OpCodeBlock:
		return v.VisitCodeBlock(ctx, a.Lang, a.Code)
	case OpCodeInline:
		return v.VisitCodeInline(ctx, a.Code)
	case OpListItem:
		return v.VisitListItem(ctx, a.Ordered, a.Marker, a.Text)
	case OpListStart:
		return v.VisitListStart(ctx, a.Ordered)
	case OpListEnd:
		return v.VisitListEnd(ctx, a.Ordered, a.Output)
	case OpTableStart:
		return v.VisitTableStart(ctx)
	case OpTableRow:
		return v.VisitTableRow(ctx, slices.Clone(a.Cells), a.IsHeader)
	case OpTableEnd:
		return v.VisitTableEnd(ctx, a.Output)
	case OpBlockquote:
		return v.VisitBlockquote(ctx, a.Content, a.Depth)
	case OpStrong:
		return v.VisitStrong(ctx, a.Text)
	case OpEmphasis:
		return v.VisitEmphasis(ctx, a.Text)
	case OpStrikethrough:
		return v.VisitStrikethrough(ctx, a.Text)
	case OpUnderline:
		return v.VisitUnderline(ctx, a.Text)
	case OpSubscript:
		return v.VisitSubscript(ctx, a.Text)
	case OpSuperscript:
		return v.VisitSuperscript(ctx, a.Text)
	case OpMark:
		return v.VisitMark(ctx, a.Text)
	case OpLineBreak:
		return v.VisitLineBreak(ctx)
	case OpHorizontalRule:
		return v.VisitHorizontalRule(ctx)
	case OpCustomElement:
		return v.VisitCustomElement(ctx, a.TagName, a.HTML)
	case OpDefinitionListStart:
		return v.VisitDefinitionListStart(ctx)
	case OpDefinitionTerm:
		return v.VisitDefinitionTerm(ctx, a.Text)
	case OpDefinitionDescription:
		return v.VisitDefinitionDescription(ctx, a.Text)
	case OpDefinitionListEnd:
		return v.VisitDefinitionListEnd(ctx, a.Output)
	case OpForm:
		return v.VisitForm(ctx, a.Action, a.Method)
	case OpInput:
		return v.VisitInput(ctx, a.InputType, a.Name, a.Value)
	case OpButton:
		return v.VisitButton(ctx, a.Text)
	case OpAudio:
		return v.VisitAudio(ctx, a.Src)
	case OpVideo:
		return v.VisitVideo(ctx, a.Src)
	case OpIframe:
		return v.VisitIframe(ctx, a.Src)
	case OpDetails:
		return v.VisitDetails(ctx, a.Open)
	case OpSummary:
		return v.VisitSummary(ctx, a.Text)
	case OpFigureStart:
		return v.VisitFigureStart(ctx)
	case OpFigcaption:
		return v.VisitFigcaption(ctx, a.Text)
	case OpFigureEnd:
		return v.VisitFigureEnd(ctx, a.Output)
	}
	return Continue()
}
