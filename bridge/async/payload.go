package async

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/tidwall/gjson"
)

type jsonContext struct {
	NodeType      uint32      `json:"nodeType"`
	TagName       string      `json:"tagName"`
	Attributes    [][2]string `json:"attributes"`
	Depth         int         `json:"depth"`
	IndexInParent int         `json:"indexInParent"`
	ParentTag     *string     `json:"parentTag"`
	IsInline      bool        `json:"isInline"`
}

// encodePayload builds {"context": {...}, <camelCase params>}.
func encodePayload(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) ([]byte, error) {
	jc := jsonContext{
		NodeType:      uint32(ctx.NodeType),
		TagName:       ctx.TagName,
		Attributes:    make([][2]string, 0, len(ctx.Attributes)),
		Depth:         ctx.Depth,
		IndexInParent: ctx.IndexInParent,
		IsInline:      ctx.IsInline,
	}
	for _, attr := range ctx.Attributes {
		jc.Attributes = append(jc.Attributes, [2]string{attr.Name, attr.Value})
	}
	if ctx.HasParent {
		parent := ctx.ParentTag
		jc.ParentTag = &parent
	}

	params := op.Params()
	payload := make(map[string]any, len(params)+1)
	payload["context"] = jc
	for _, p := range params {
		v := a.Arg(p)
		if cells, ok := v.([]string); ok && cells == nil {
			v = []string{}
		}
		payload[p.CamelName()] = v
	}
	return json.Marshal(payload)
}

// decodeResult parses {"type": ..., "output": ..., "message": ...}. An
// empty or null reply means Continue.
func decodeResult(s string) (htmd.VisitResult, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return htmd.Continue(), nil
	}
	if !gjson.Valid(s) {
		return htmd.Continue(), bridge.Decodef("result is not JSON")
	}
	r := gjson.Parse(s)
	if !r.IsObject() {
		return htmd.Continue(), bridge.Decodef("result is %s, want object", r.Type)
	}

	t := r.Get("type")
	if t.Type != gjson.String {
		return htmd.Continue(), bridge.Decodef("result type missing")
	}
	kind, ok := bridge.ParseKind(t.String())
	if !ok {
		return htmd.Continue(), bridge.Decodef("unknown result type %q", t.String())
	}

	payload := r.Get("output")
	if kind == htmd.ResultError {
		if msg := r.Get("message"); msg.Exists() {
			payload = msg
		}
	}
	return bridge.Build(kind, payload.String(), payload.Type == gjson.String)
}
