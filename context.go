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

// NodeType is the coarse classification of a visited node. The numeric values
// are part of the C ABI and must not be reordered.
type NodeType uint32

const (
	NodeText                  NodeType = 0
	NodeElement               NodeType = 1
	NodeHeading               NodeType = 2
	NodeParagraph             NodeType = 3
	NodeDiv                   NodeType = 4
	NodeBlockquote            NodeType = 5
	NodePre                   NodeType = 6
	NodeHr                    NodeType = 7
	NodeList                  NodeType = 8
	NodeListItem              NodeType = 9
	NodeTable                 NodeType = 10
	NodeTableRow              NodeType = 11
	NodeTableCell             NodeType = 12
	NodeLink                  NodeType = 13
	NodeImage                 NodeType = 14
	NodeCode                  NodeType = 15
	NodeStrong                NodeType = 16
	NodeEm                    NodeType = 17
	NodeStrikethrough         NodeType = 18
	NodeUnderline             NodeType = 19
	NodeSubscript             NodeType = 20
	NodeSuperscript           NodeType = 21
	NodeMark                  NodeType = 22
	NodeLineBreak             NodeType = 23
	NodeDefinitionList        NodeType = 24
	NodeDefinitionTerm        NodeType = 25
	NodeDefinitionDescription NodeType = 26
	NodeForm                  NodeType = 27
	NodeInput                 NodeType = 28
	NodeButton                NodeType = 29
	NodeAudio                 NodeType = 30
	NodeVideo                 NodeType = 31
	NodeIframe                NodeType = 32
	NodeDetails               NodeType = 33
	NodeSummary               NodeType = 34
	NodeFigure                NodeType = 35
	NodeFigcaption            NodeType = 36
	NodeCustom                NodeType = 255
)

var nodeTypeNames = map[NodeType]string{
	NodeText:                  "text",
	NodeElement:               "element",
	NodeHeading:               "heading",
	NodeParagraph:             "paragraph",
	NodeDiv:                   "div",
	NodeBlockquote:            "blockquote",
	NodePre:                   "pre",
	NodeHr:                    "hr",
	NodeList:                  "list",
	NodeListItem:              "list_item",
	NodeTable:                 "table",
	NodeTableRow:              "table_row",
	NodeTableCell:             "table_cell",
	NodeLink:                  "link",
	NodeImage:                 "image",
	NodeCode:                  "code",
	NodeStrong:                "strong",
	NodeEm:                    "em",
	NodeStrikethrough:         "strikethrough",
	NodeUnderline:             "underline",
	NodeSubscript:             "subscript",
	NodeSuperscript:           "superscript",
	NodeMark:                  "mark",
	NodeLineBreak:             "line_break",
	NodeDefinitionList:        "definition_list",
	NodeDefinitionTerm:        "definition_term",
	NodeDefinitionDescription: "definition_description",
	NodeForm:                  "form",
	NodeInput:                 "input",
	NodeButton:                "button",
	NodeAudio:                 "audio",
	NodeVideo:                 "video",
	NodeIframe:                "iframe",
	NodeDetails:               "details",
	NodeSummary:               "summary",
	NodeFigure:                "figure",
	NodeFigcaption:            "figcaption",
	NodeCustom:                "custom",
}

func (t NodeType) String() string {
	if s, ok := nodeTypeNames[t]; ok {
		return s
	}
	return "element"
}

// Attribute is one name/value pair of an element, in source order.
type Attribute struct {
	Name  string
	Value string
}

// NodeContext describes the node a callback is being invoked for.
//
// A NodeContext is built immediately before a callback and cleared as soon as
// the callback returns. Code that needs any of its data afterwards must copy
// it (see Clone) before returning.
//
// IndexInParent counts only siblings that receive callbacks: elements and
// text that is not whitespace-only.
type NodeContext struct {
	NodeType      NodeType
	TagName       string
	Attributes    []Attribute
	Depth         int
	IndexInParent int
	ParentTag     string
	HasParent     bool
	IsInline      bool

	live bool
}

// Attr returns the value of the named attribute. The boolean distinguishes an
// attribute present with an empty value from one that is absent.
func (c *NodeContext) Attr(name string) (string, bool) {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parent returns the parent tag name, or false at the document root.
func (c *NodeContext) Parent() (string, bool) {
	return c.ParentTag, c.HasParent
}

// Valid reports whether the context still belongs to a running callback.
func (c *NodeContext) Valid() bool {
	return c != nil && c.live
}

// Clone returns a detached copy that stays valid after the callback returns.
func (c *NodeContext) Clone() NodeContext {
	cp := *c
	cp.Attributes = append([]Attribute(nil), c.Attributes...)
	cp.live = true
	return cp
}

// release wipes the context, including the attribute table it handed out.
func (c *NodeContext) release() {
	for i := range c.Attributes {
		c.Attributes[i] = Attribute{}
	}
	*c = NodeContext{}
}
