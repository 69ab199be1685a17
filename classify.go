package htmd

import "strings"

var tagTypes = map[string]NodeType{
	"h1": NodeHeading, "h2": NodeHeading, "h3": NodeHeading,
	"h4": NodeHeading, "h5": NodeHeading, "h6": NodeHeading,
	"p":          NodeParagraph,
	"div":        NodeDiv,
	"blockquote": NodeBlockquote,
	"pre":        NodePre,
	"hr":         NodeHr,
	"ul":         NodeList,
	"ol":         NodeList,
	"li":         NodeListItem,
	"table":      NodeTable,
	"tr":         NodeTableRow,
	"td":         NodeTableCell,
	"th":         NodeTableCell,
	"a":          NodeLink,
	"img":        NodeImage,
	"code":       NodeCode,
	"strong":     NodeStrong,
	"b":          NodeStrong,
	"em":         NodeEm,
	"i":          NodeEm,
	"s":          NodeStrikethrough,
	"del":        NodeStrikethrough,
	"strike":     NodeStrikethrough,
	"u":          NodeUnderline,
	"ins":        NodeUnderline,
	"sub":        NodeSubscript,
	"sup":        NodeSuperscript,
	"mark":       NodeMark,
	"br":         NodeLineBreak,
	"dl":         NodeDefinitionList,
	"dt":         NodeDefinitionTerm,
	"dd":         NodeDefinitionDescription,
	"form":       NodeForm,
	"input":      NodeInput,
	"button":     NodeButton,
	"audio":      NodeAudio,
	"video":      NodeVideo,
	"iframe":     NodeIframe,
	"details":    NodeDetails,
	"summary":    NodeSummary,
	"figure":     NodeFigure,
	"figcaption": NodeFigcaption,
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "big": true,
	"br": true, "button": true, "cite": true, "code": true, "data": true,
	"del": true, "dfn": true, "em": true, "font": true, "i": true, "img": true,
	"input": true, "ins": true, "kbd": true, "label": true, "mark": true,
	"output": true, "q": true, "rp": true, "rt": true, "ruby": true, "s": true,
	"samp": true, "select": true, "small": true, "span": true, "strike": true,
	"strong": true, "sub": true, "sup": true, "textarea": true, "time": true,
	"tt": true, "u": true, "var": true, "wbr": true,
}

// prunedTags are never walked; none of their content renders.
var prunedTags = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

func classify(tag string) NodeType {
	if t, ok := tagTypes[tag]; ok {
		return t
	}
	if isCustomTag(tag) {
		return NodeCustom
	}
	return NodeElement
}

func isInline(tag string) bool {
	return inlineTags[tag] || isCustomTag(tag)
}

// isCustomTag reports whether tag is an autonomous custom element name.
func isCustomTag(tag string) bool {
	return strings.Contains(tag, "-")
}
