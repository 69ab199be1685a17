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

// Visitor is the set of callbacks the traversal driver invokes while
// converting a document. Every method returns a VisitResult that steers the
// rendering of the current node.
//
// The generic pair VisitElementStart / VisitElementEnd fires for every
// element. Specialized methods fire in addition to the pair, once the
// driver has rendered enough child content to hand over.
//
// A Visitor is used by at most one conversion at a time.
type Visitor interface {
	VisitText(ctx *NodeContext, text string) VisitResult
	VisitElementStart(ctx *NodeContext) VisitResult
	VisitElementEnd(ctx *NodeContext, output string) VisitResult

	VisitLink(ctx *NodeContext, href, text, title string) VisitResult
	VisitImage(ctx *NodeContext, src, alt, title string) VisitResult
	VisitHeading(ctx *NodeContext, level int, text, id string) VisitResult

	VisitCodeBlock(ctx *NodeContext, lang, code string) VisitResult
	VisitCodeInline(ctx *NodeContext, code string) VisitResult

	VisitListItem(ctx *NodeContext, ordered bool, marker, text string) VisitResult
	VisitListStart(ctx *NodeContext, ordered bool) VisitResult
	VisitListEnd(ctx *NodeContext, ordered bool, output string) VisitResult

	VisitTableStart(ctx *NodeContext) VisitResult
	VisitTableRow(ctx *NodeContext, cells []string, isHeader bool) VisitResult
	VisitTableEnd(ctx *NodeContext, output string) VisitResult

	VisitBlockquote(ctx *NodeContext, content string, depth int) VisitResult

	VisitStrong(ctx *NodeContext, text string) VisitResult
	VisitEmphasis(ctx *NodeContext, text string) VisitResult
	VisitStrikethrough(ctx *NodeContext, text string) VisitResult
	VisitUnderline(ctx *NodeContext, text string) VisitResult
	VisitSubscript(ctx *NodeContext, text string) VisitResult
	VisitSuperscript(ctx *NodeContext, text string) VisitResult
	VisitMark(ctx *NodeContext, text string) VisitResult

	VisitLineBreak(ctx *NodeContext) VisitResult
	VisitHorizontalRule(ctx *NodeContext) VisitResult
	VisitCustomElement(ctx *NodeContext, tagName, html string) VisitResult

	VisitDefinitionListStart(ctx *NodeContext) VisitResult
	VisitDefinitionTerm(ctx *NodeContext, text string) VisitResult
	VisitDefinitionDescription(ctx *NodeContext, text string) VisitResult
	VisitDefinitionListEnd(ctx *NodeContext, output string) VisitResult

	VisitForm(ctx *NodeContext, action, method string) VisitResult
	VisitInput(ctx *NodeContext, inputType, name, value string) VisitResult
	VisitButton(ctx *NodeContext, text string) VisitResult

	VisitAudio(ctx *NodeContext, src string) VisitResult
	VisitVideo(ctx *NodeContext, src string) VisitResult
	VisitIframe(ctx *NodeContext, src string) VisitResult

	VisitDetails(ctx *NodeContext, open bool) VisitResult
	VisitSummary(ctx *NodeContext, text string) VisitResult

	VisitFigureStart(ctx *NodeContext) VisitResult
	VisitFigcaption(ctx *NodeContext, text string) VisitResult
	VisitFigureEnd(ctx *NodeContext, output string) VisitResult
}

// OpFilter is implemented by visitors that know which operations they
// handle. The driver does not build a context for an operation the filter
// rejects, and treats it as Continue.
type OpFilter interface {
	Handles(op Op) bool
}

// Dispatcher is the generic form of a Visitor used by host bridges: one
// entry point for every operation, with arguments packed into Args.
type Dispatcher interface {
	OpFilter
	Dispatch(op Op, ctx *NodeContext, args *Args) VisitResult
}

// Adapt turns a Dispatcher into a Visitor.
func Adapt(d Dispatcher) Visitor {
	return dispatchVisitor{d}
}

type dispatchVisitor struct {
	d Dispatcher
}

func (v dispatchVisitor) Handles(op Op) bool { return v.d.Handles(op) }

func (v dispatchVisitor) call(op Op, ctx *NodeContext, a *Args) VisitResult {
	if !v.d.Handles(op) {
		return Continue()
	}
	return v.d.Dispatch(op, ctx, a)
}

func (v dispatchVisitor) VisitText(ctx *NodeContext, text string) VisitResult {
	return v.call(OpText, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitElementStart(ctx *NodeContext) VisitResult {
	return v.call(OpElementStart, ctx, &Args{})
}

func (v dispatchVisitor) VisitElementEnd(ctx *NodeContext, output string) VisitResult {
	return v.call(OpElementEnd, ctx, &Args{Output: output})
}

func (v dispatchVisitor) VisitLink(ctx *NodeContext, href, text, title string) VisitResult {
	return v.call(OpLink, ctx, &Args{Href: href, Text: text, Title: title})
}

func (v dispatchVisitor) VisitImage(ctx *NodeContext, src, alt, title string) VisitResult {
	return v.call(OpImage, ctx, &Args{Src: src, Alt: alt, Title: title})
}

func (v dispatchVisitor) VisitHeading(ctx *NodeContext, level int, text, id string) VisitResult {
	return v.call(OpHeading, ctx, &Args{Level: level, Text: text, ID: id})
}

func (v dispatchVisitor) VisitCodeBlock(ctx *NodeContext, lang, code string) VisitResult {
	return v.call(OpCodeBlock, ctx, &Args{Lang: lang, Code: code})
}

func (v dispatchVisitor) VisitCodeInline(ctx *NodeContext, code string) VisitResult {
	return v.call(OpCodeInline, ctx, &Args{Code: code})
}

func (v dispatchVisitor) VisitListItem(ctx *NodeContext, ordered bool, marker, text string) VisitResult {
	return v.call(OpListItem, ctx, &Args{Ordered: ordered, Marker: marker, Text: text})
}

func (v dispatchVisitor) VisitListStart(ctx *NodeContext, ordered bool) VisitResult {
	return v.call(OpListStart, ctx, &Args{Ordered: ordered})
}

func (v dispatchVisitor) VisitListEnd(ctx *NodeContext, ordered bool, output string) VisitResult {
	return v.call(OpListEnd, ctx, &Args{Ordered: ordered, Output: output})
}

func (v dispatchVisitor) VisitTableStart(ctx *NodeContext) VisitResult {
	return v.call(OpTableStart, ctx, &Args{})
}

func (v dispatchVisitor) VisitTableRow(ctx *NodeContext, cells []string, isHeader bool) VisitResult {
	return v.call(OpTableRow, ctx, &Args{Cells: cells, IsHeader: isHeader})
}

func (v dispatchVisitor) VisitTableEnd(ctx *NodeContext, output string) VisitResult {
	return v.call(OpTableEnd, ctx, &Args{Output: output})
}

func (v dispatchVisitor) VisitBlockquote(ctx *NodeContext, content string, depth int) VisitResult {
	return v.call(OpBlockquote, ctx, &Args{Content: content, Depth: depth})
}

func (v dispatchVisitor) VisitStrong(ctx *NodeContext, text string) VisitResult {
	return v.call(OpStrong, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitEmphasis(ctx *NodeContext, text string) VisitResult {
	return v.call(OpEmphasis, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitStrikethrough(ctx *NodeContext, text string) VisitResult {
	return v.call(OpStrikethrough, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitUnderline(ctx *NodeContext, text string) VisitResult {
	return v.call(OpUnderline, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitSubscript(ctx *NodeContext, text string) VisitResult {
	return v.call(OpSubscript, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitSuperscript(ctx *NodeContext, text string) VisitResult {
	return v.call(OpSuperscript, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitMark(ctx *NodeContext, text string) VisitResult {
	return v.call(OpMark, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitLineBreak(ctx *NodeContext) VisitResult {
	return v.call(OpLineBreak, ctx, &Args{})
}

func (v dispatchVisitor) VisitHorizontalRule(ctx *NodeContext) VisitResult {
	return v.call(OpHorizontalRule, ctx, &Args{})
}

func (v dispatchVisitor) VisitCustomElement(ctx *NodeContext, tagName, html string) VisitResult {
	return v.call(OpCustomElement, ctx, &Args{TagName: tagName, HTML: html})
}

func (v dispatchVisitor) VisitDefinitionListStart(ctx *NodeContext) VisitResult {
	return v.call(OpDefinitionListStart, ctx, &Args{})
}

func (v dispatchVisitor) VisitDefinitionTerm(ctx *NodeContext, text string) VisitResult {
	return v.call(OpDefinitionTerm, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitDefinitionDescription(ctx *NodeContext, text string) VisitResult {
	return v.call(OpDefinitionDescription, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitDefinitionListEnd(ctx *NodeContext, output string) VisitResult {
	return v.call(OpDefinitionListEnd, ctx, &Args{Output: output})
}

func (v dispatchVisitor) VisitForm(ctx *NodeContext, action, method string) VisitResult {
	return v.call(OpForm, ctx, &Args{Action: action, Method: method})
}

func (v dispatchVisitor) VisitInput(ctx *NodeContext, inputType, name, value string) VisitResult {
	return v.call(OpInput, ctx, &Args{InputType: inputType, Name: name, Value: value})
}

func (v dispatchVisitor) VisitButton(ctx *NodeContext, text string) VisitResult {
	return v.call(OpButton, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitAudio(ctx *NodeContext, src string) VisitResult {
	return v.call(OpAudio, ctx, &Args{Src: src})
}

func (v dispatchVisitor) VisitVideo(ctx *NodeContext, src string) VisitResult {
	return v.call(OpVideo, ctx, &Args{Src: src})
}

func (v dispatchVisitor) VisitIframe(ctx *NodeContext, src string) VisitResult {
	return v.call(OpIframe, ctx, &Args{Src: src})
}

func (v dispatchVisitor) VisitDetails(ctx *NodeContext, open bool) VisitResult {
	return v.call(OpDetails, ctx, &Args{Open: open})
}

func (v dispatchVisitor) VisitSummary(ctx *NodeContext, text string) VisitResult {
	return v.call(OpSummary, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitFigureStart(ctx *NodeContext) VisitResult {
	return v.call(OpFigureStart, ctx, &Args{})
}

func (v dispatchVisitor) VisitFigcaption(ctx *NodeContext, text string) VisitResult {
	return v.call(OpFigcaption, ctx, &Args{Text: text})
}

func (v dispatchVisitor) VisitFigureEnd(ctx *NodeContext, output string) VisitResult {
	return v.call(OpFigureEnd, ctx, &Args{Output: output})
}
