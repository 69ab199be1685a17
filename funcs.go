package htmd

// Funcs is a Visitor built from optional callbacks. A nil field behaves as
// Continue and the driver skips it entirely.
type Funcs struct {
	Text         func(ctx *NodeContext, text string) VisitResult
	ElementStart func(ctx *NodeContext) VisitResult
	ElementEnd   func(ctx *NodeContext, output string) VisitResult

	Link    func(ctx *NodeContext, href, text, title string) VisitResult
	Image   func(ctx *NodeContext, src, alt, title string) VisitResult
	Heading func(ctx *NodeContext, level int, text, id string) VisitResult

	CodeBlock  func(ctx *NodeContext, lang, code string) VisitResult
	CodeInline func(ctx *NodeContext, code string) VisitResult

	ListItem  func(ctx *NodeContext, ordered bool, marker, text string) VisitResult
	ListStart func(ctx *NodeContext, ordered bool) VisitResult
	ListEnd   func(ctx *NodeContext, ordered bool, output string) VisitResult

	TableStart func(ctx *NodeContext) VisitResult
	TableRow   func(ctx *NodeContext, cells []string, isHeader bool) VisitResult
	TableEnd   func(ctx *NodeContext, output string) VisitResult

	Blockquote func(ctx *NodeContext, content string, depth int) VisitResult

	Strong        func(ctx *NodeContext, text string) VisitResult
	Emphasis      func(ctx *NodeContext, text string) VisitResult
	Strikethrough func(ctx *NodeContext, text string) VisitResult
	Underline     func(ctx *NodeContext, text string) VisitResult
	Subscript     func(ctx *NodeContext, text string) VisitResult
	Superscript   func(ctx *NodeContext, text string) VisitResult
	Mark          func(ctx *NodeContext, text string) VisitResult

	LineBreak      func(ctx *NodeContext) VisitResult
	HorizontalRule func(ctx *NodeContext) VisitResult
	CustomElement  func(ctx *NodeContext, tagName, html string) VisitResult

	DefinitionListStart   func(ctx *NodeContext) VisitResult
	DefinitionTerm        func(ctx *NodeContext, text string) VisitResult
	DefinitionDescription func(ctx *NodeContext, text string) VisitResult
	DefinitionListEnd     func(ctx *NodeContext, output string) VisitResult

	Form   func(ctx *NodeContext, action, method string) VisitResult
	Input  func(ctx *NodeContext, inputType, name, value string) VisitResult
	Button func(ctx *NodeContext, text string) VisitResult

	Audio  func(ctx *NodeContext, src string) VisitResult
	Video  func(ctx *NodeContext, src string) VisitResult
	Iframe func(ctx *NodeContext, src string) VisitResult

	Details func(ctx *NodeContext, open bool) VisitResult
	Summary func(ctx *NodeContext, text string) VisitResult

	FigureStart func(ctx *NodeContext) VisitResult
	Figcaption  func(ctx *NodeContext, text string) VisitResult
	FigureEnd   func(ctx *NodeContext, output string) VisitResult
}

var _ Visitor = (*Funcs)(nil)

// Handles reports whether the callback for op is set.
func (f *Funcs) Handles(op Op) bool {
	switch op {
	case OpText:
		return f.Text != nil
	case OpElementStart:
		return f.ElementStart != nil
	case OpElementEnd:
		return f.ElementEnd != nil
	case OpLink:
		return f.Link != nil
	case OpImage:
		return f.Image != nil
	case OpHeading:
		return f.Heading != nil
	case OpCodeBlock:
		return f.CodeBlock != nil
	case OpCodeInline:
		return f.CodeInline != nil
	case OpListItem:
		return f.ListItem != nil
	case OpListStart:
		return f.ListStart != nil
	case OpListEnd:
		return f.ListEnd != nil
	case OpTableStart:
		return f.TableStart != nil
	case OpTableRow:
		return f.TableRow != nil
	case OpTableEnd:
		return f.TableEnd != nil
	case OpBlockquote:
		return f.Blockquote != nil
	case OpStrong:
		return f.Strong != nil
	case OpEmphasis:
		return f.Emphasis != nil
	case OpStrikethrough:
		return f.Strikethrough != nil
	case OpUnderline:
		return f.Underline != nil
	case OpSubscript:
		return f.Subscript != nil
	case OpSuperscript:
		return f.Superscript != nil
	case OpMark:
		return f.Mark != nil
	case OpLineBreak:
		return f.LineBreak != nil
	case OpHorizontalRule:
		return f.HorizontalRule != nil
	case OpCustomElement:
		return f.CustomElement != nil
	case OpDefinitionListStart:
		return f.DefinitionListStart != nil
	case OpDefinitionTerm:
		return f.DefinitionTerm != nil
	case OpDefinitionDescription:
		return f.DefinitionDescription != nil
	case OpDefinitionListEnd:
		return f.DefinitionListEnd != nil
	case OpForm:
		return f.Form != nil
	case OpInput:
		return f.Input != nil
	case OpButton:
		return f.Button != nil
	case OpAudio:
		return f.Audio != nil
	case OpVideo:
		return f.Video != nil
	case OpIframe:
		return f.Iframe != nil
	case OpDetails:
		return f.Details != nil
	case OpSummary:
		return f.Summary != nil
	case OpFigureStart:
		return f.FigureStart != nil
	case OpFigcaption:
		return f.Figcaption != nil
	case OpFigureEnd:
		return f.FigureEnd != nil
	}
	return false
}

func (f *Funcs) VisitText(ctx *NodeContext, text string) VisitResult {
	if f.Text == nil {
		return Continue()
	}
	return f.Text(ctx, text)
}

func (f *Funcs) VisitElementStart(ctx *NodeContext) VisitResult {
	if f.ElementStart == nil {
		return Continue()
	}
	return f.ElementStart(ctx)
}

func (f *Funcs) VisitElementEnd(ctx *NodeContext, output string) VisitResult {
	if f.ElementEnd == nil {
		return Continue()
	}
	return f.ElementEnd(ctx, output)
}

func (f *Funcs) VisitLink(ctx *NodeContext, href, text, title string) VisitResult {
	if f.Link == nil {
		return Continue()
	}
	return f.Link(ctx, href, text, title)
}

func (f *Funcs) VisitImage(ctx *NodeContext, src, alt, title string) VisitResult {
	if f.Image == nil {
		return Continue()
	}
	return f.Image(ctx, src, alt, title)
}

func (f *Funcs) VisitHeading(ctx *NodeContext, level int, text, id string) VisitResult {
	if f.Heading == nil {
		return Continue()
	}
	return f.Heading(ctx, level, text, id)
}

func (f *Funcs) VisitCodeBlock(ctx *NodeContext, lang, code string) VisitResult {
	if f.CodeBlock == nil {
		return Continue()
	}
	return f.CodeBlock(ctx, lang, code)
}

func (f *Funcs) VisitCodeInline(ctx *NodeContext, code string) VisitResult {
	if f.CodeInline == nil {
		return Continue()
	}
	return f.CodeInline(ctx, code)
}

func (f *Funcs) VisitListItem(ctx *NodeContext, ordered bool, marker, text string) VisitResult {
	if f.ListItem == nil {
		return Continue()
	}
	return f.ListItem(ctx, ordered, marker, text)
}

func (f *Funcs) VisitListStart(ctx *NodeContext, ordered bool) VisitResult {
	if f.ListStart == nil {
		return Continue()
	}
	return f.ListStart(ctx, ordered)
}

func (f *Funcs) VisitListEnd(ctx *NodeContext, ordered bool, output string) VisitResult {
	if f.ListEnd == nil {
		return Continue()
	}
	return f.ListEnd(ctx, ordered, output)
}

func (f *Funcs) VisitTableStart(ctx *NodeContext) VisitResult {
	if f.TableStart == nil {
		return Continue()
	}
	return f.TableStart(ctx)
}

func (f *Funcs) VisitTableRow(ctx *NodeContext, cells []string, isHeader bool) VisitResult {
	if f.TableRow == nil {
		return Continue()
	}
	return f.TableRow(ctx, cells, isHeader)
}

func (f *Funcs) VisitTableEnd(ctx *NodeContext, output string) VisitResult {
	if f.TableEnd == nil {
		return Continue()
	}
	return f.TableEnd(ctx, output)
}

func (f *Funcs) VisitBlockquote(ctx *NodeContext, content string, depth int) VisitResult {
	if f.Blockquote == nil {
		return Continue()
	}
	return f.Blockquote(ctx, content, depth)
}

func (f *Funcs) VisitStrong(ctx *NodeContext, text string) VisitResult {
	if f.Strong == nil {
		return Continue()
	}
	return f.Strong(ctx, text)
}

func (f *Funcs) VisitEmphasis(ctx *NodeContext, text string) VisitResult {
	if f.Emphasis == nil {
		return Continue()
	}
	return f.Emphasis(ctx, text)
}

func (f *Funcs) VisitStrikethrough(ctx *NodeContext, text string) VisitResult {
	if f.Strikethrough == nil {
		return Continue()
	}
	return f.Strikethrough(ctx, text)
}

func (f *Funcs) VisitUnderline(ctx *NodeContext, text string) VisitResult {
	if f.Underline == nil {
		return Continue()
	}
	return f.Underline(ctx, text)
}

func (f *Funcs) VisitSubscript(ctx *NodeContext, text string) VisitResult {
	if f.Subscript == nil {
		return Continue()
	}
	return f.Subscript(ctx, text)
}

func (f *Funcs) VisitSuperscript(ctx *NodeContext, text string) VisitResult {
	if f.Superscript == nil {
		return Continue()
	}
	return f.Superscript(ctx, text)
}

func (f *Funcs) VisitMark(ctx *NodeContext, text string) VisitResult {
	if f.Mark == nil {
		return Continue()
	}
	return f.Mark(ctx, text)
}

func (f *Funcs) VisitLineBreak(ctx *NodeContext) VisitResult {
	if f.LineBreak == nil {
		return Continue()
	}
	return f.LineBreak(ctx)
}

func (f *Funcs) VisitHorizontalRule(ctx *NodeContext) VisitResult {
	if f.HorizontalRule == nil {
		return Continue()
	}
	return f.HorizontalRule(ctx)
}

func (f *Funcs) VisitCustomElement(ctx *NodeContext, tagName, html string) VisitResult {
	if f.CustomElement == nil {
		return Continue()
	}
	return f.CustomElement(ctx, tagName, html)
}

func (f *Funcs) VisitDefinitionListStart(ctx *NodeContext) VisitResult {
	if f.DefinitionListStart == nil {
		return Continue()
	}
	return f.DefinitionListStart(ctx)
}

func (f *Funcs) VisitDefinitionTerm(ctx *NodeContext, text string) VisitResult {
	if f.DefinitionTerm == nil {
		return Continue()
	}
	return f.DefinitionTerm(ctx, text)
}

func (f *Funcs) VisitDefinitionDescription(ctx *NodeContext, text string) VisitResult {
	if f.DefinitionDescription == nil {
		return Continue()
	}
	return f.DefinitionDescription(ctx, text)
}

func (f *Funcs) VisitDefinitionListEnd(ctx *NodeContext, output string) VisitResult {
	if f.DefinitionListEnd == nil {
		return Continue()
	}
	return f.DefinitionListEnd(ctx, output)
}

func (f *Funcs) VisitForm(ctx *NodeContext, action, method string) VisitResult {
	if f.Form == nil {
		return Continue()
	}
	return f.Form(ctx, action, method)
}

func (f *Funcs) VisitInput(ctx *NodeContext, inputType, name, value string) VisitResult {
	if f.Input == nil {
		return Continue()
	}
	return f.Input(ctx, inputType, name, value)
}

func (f *Funcs) VisitButton(ctx *NodeContext, text string) VisitResult {
	if f.Button == nil {
		return Continue()
	}
	return f.Button(ctx, text)
}

func (f *Funcs) VisitAudio(ctx *NodeContext, src string) VisitResult {
	if f.Audio == nil {
		return Continue()
	}
	return f.Audio(ctx, src)
}

func (f *Funcs) VisitVideo(ctx *NodeContext, src string) VisitResult {
	if f.Video == nil {
		return Continue()
	}
	return f.Video(ctx, src)
}

func (f *Funcs) VisitIframe(ctx *NodeContext, src string) VisitResult {
	if f.Iframe == nil {
		return Continue()
	}
	return f.Iframe(ctx, src)
}

func (f *Funcs) VisitDetails(ctx *NodeContext, open bool) VisitResult {
	if f.Details == nil {
		return Continue()
	}
	return f.Details(ctx, open)
}

func (f *Funcs) VisitSummary(ctx *NodeContext, text string) VisitResult {
	if f.Summary == nil {
		return Continue()
	}
	return f.Summary(ctx, text)
}

func (f *Funcs) VisitFigureStart(ctx *NodeContext) VisitResult {
	if f.FigureStart == nil {
		return Continue()
	}
	return f.FigureStart(ctx)
}

func (f *Funcs) VisitFigcaption(ctx *NodeContext, text string) VisitResult {
	if f.Figcaption == nil {
		return Continue()
	}
	return f.Figcaption(ctx, text)
}

func (f *Funcs) VisitFigureEnd(ctx *NodeContext, output string) VisitResult {
	if f.FigureEnd == nil {
		return Continue()
	}
	return f.FigureEnd(ctx, output)
}

// NopVisitor returns Continue from every operation. Embed it to implement
// only the operations of interest.
type NopVisitor struct{}

var _ Visitor = NopVisitor{}

func (NopVisitor) VisitText(*NodeContext, string) VisitResult                   { return Continue() }
func (NopVisitor) VisitElementStart(*NodeContext) VisitResult                   { return Continue() }
func (NopVisitor) VisitElementEnd(*NodeContext, string) VisitResult             { return Continue() }
func (NopVisitor) VisitLink(*NodeContext, string, string, string) VisitResult   { return Continue() }
func (NopVisitor) VisitImage(*NodeContext, string, string, string) VisitResult  { return Continue() }
func (NopVisitor) VisitHeading(*NodeContext, int, string, string) VisitResult   { return Continue() }
func (NopVisitor) VisitCodeBlock(*NodeContext, string, string) VisitResult      { return Continue() }
func (NopVisitor) VisitCodeInline(*NodeContext, string) VisitResult             { return Continue() }
func (NopVisitor) VisitListItem(*NodeContext, bool, string, string) VisitResult { return Continue() }
func (NopVisitor) VisitListStart(*NodeContext, bool) VisitResult                { return Continue() }
func (NopVisitor) VisitListEnd(*NodeContext, bool, string) VisitResult          { return Continue() }
func (NopVisitor) VisitTableStart(*NodeContext) VisitResult                     { return Continue() }
func (NopVisitor) VisitTableRow(*NodeContext, []string, bool) VisitResult       { return Continue() }
func (NopVisitor) VisitTableEnd(*NodeContext, string) VisitResult               { return Continue() }
func (NopVisitor) VisitBlockquote(*NodeContext, string, int) VisitResult        { return Continue() }
func (NopVisitor) VisitStrong(*NodeContext, string) VisitResult                 { return Continue() }
func (NopVisitor) VisitEmphasis(*NodeContext, string) VisitResult               { return Continue() }
func (NopVisitor) VisitStrikethrough(*NodeContext, string) VisitResult          { return Continue() }
func (NopVisitor) VisitUnderline(*NodeContext, string) VisitResult              { return Continue() }
func (NopVisitor) VisitSubscript(*NodeContext, string) VisitResult              { return Continue() }
func (NopVisitor) VisitSuperscript(*NodeContext, string) VisitResult            { return Continue() }
func (NopVisitor) VisitMark(*NodeContext, string) VisitResult                   { return Continue() }
func (NopVisitor) VisitLineBreak(*NodeContext) VisitResult                      { return Continue() }
func (NopVisitor) VisitHorizontalRule(*NodeContext) VisitResult                 { return Continue() }
func (NopVisitor) VisitCustomElement(*NodeContext, string, string) VisitResult  { return Continue() }
func (NopVisitor) VisitDefinitionListStart(*NodeContext) VisitResult            { return Continue() }
func (NopVisitor) VisitDefinitionTerm(*NodeContext, string) VisitResult         { return Continue() }
func (NopVisitor) VisitDefinitionDescription(*NodeContext, string) VisitResult  { return Continue() }
func (NopVisitor) VisitDefinitionListEnd(*NodeContext, string) VisitResult      { return Continue() }
func (NopVisitor) VisitForm(*NodeContext, string, string) VisitResult           { return Continue() }
func (NopVisitor) VisitInput(*NodeContext, string, string, string) VisitResult  { return Continue() }
func (NopVisitor) VisitButton(*NodeContext, string) VisitResult                 { return Continue() }
func (NopVisitor) VisitAudio(*NodeContext, string) VisitResult                  { return Continue() }
func (NopVisitor) VisitVideo(*NodeContext, string) VisitResult                  { return Continue() }
func (NopVisitor) VisitIframe(*NodeContext, string) VisitResult                 { return Continue() }
func (NopVisitor) VisitDetails(*NodeContext, bool) VisitResult                  { return Continue() }
func (NopVisitor) VisitSummary(*NodeContext, string) VisitResult                { return Continue() }
func (NopVisitor) VisitFigureStart(*NodeContext) VisitResult                    { return Continue() }
func (NopVisitor) VisitFigcaption(*NodeContext, string) VisitResult             { return Continue() }
func (NopVisitor) VisitFigureEnd(*NodeContext, string) VisitResult              { return Continue() }
