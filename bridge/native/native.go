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

// Package native drives a C visitor table (include/htmd.h).
//
// Every string and struct a callback receives lives in a C arena that is
// zeroed as soon as the callback returns. Result payloads are malloc'd by
// the callback and freed here exactly once.
package native

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define HTMD_INTERNAL
#include <stdlib.h>
#include "htmd.h"
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/nicholasgasior/htmd/internal/arena"
)

const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// ErrNilTable is returned by New when no callback table is given.
var ErrNilTable = errors.New("native: nil visitor table")

// cAllocator backs the arena with C memory so the structs built in it may
// hold pointers handed to C.
type cAllocator struct{}

func (cAllocator) Alloc(n int) []byte {
	p := C.calloc(C.size_t(n), 1)
	if p == nil {
		panic("native: out of memory")
	}
	return unsafe.Slice((*byte)(p), n)
}

func (cAllocator) Free(b []byte) {
	if len(b) > 0 {
		C.free(unsafe.Pointer(&b[0]))
	}
}

// Visitor adapts a C htmd_visitor table.
type Visitor struct {
	table  C.htmd_visitor
	guard  *bridge.Guard
	arena  *arena.Arena
	closed bool
}

// New copies the htmd_visitor table pointed to by table.
func New(table unsafe.Pointer, opts ...bridge.Option) (*Visitor, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	return &Visitor{
		table: *(*C.htmd_visitor)(table),
		guard: bridge.NewGuard("native", opts...),
		arena: arena.New(cAllocator{}, 0),
	}, nil
}

// Convert converts html, dispatching to the C callbacks.
func (v *Visitor) Convert(html string) (string, error) {
	if v.closed {
		return "", &bridge.Fault{Bridge: "native", Kind: bridge.Internal, Err: bridge.ErrClosed}
	}
	return v.guard.Run(htmd.Adapt(v), html)
}

// Absorbed returns the number of failures the last conversion degraded to
// Continue.
func (v *Visitor) Absorbed() int { return v.guard.Absorbed() }

// Close releases the arena. The table itself belongs to the caller.
func (v *Visitor) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.arena.Release()
	return nil
}

// Handles reports whether the table has a callback for op.
func (v *Visitor) Handles(op htmd.Op) bool {
	return v.fn(op) != nil
}

func (v *Visitor) fn(op htmd.Op) unsafe.Pointer {
	t := &v.table
	switch op {
	case htmd.OpText:
		return unsafe.Pointer(t.visit_text)
	case htmd.OpElementStart:
		return unsafe.Pointer(t.visit_element_start)
	case htmd.OpElementEnd:
		return unsafe.Pointer(t.visit_element_end)
	case htmd.OpLink:
		return unsafe.Pointer(t.visit_link)
	case htmd.OpImage:
		return unsafe.Pointer(t.visit_image)
	case htmd.OpHeading:
		return unsafe.Pointer(t.visit_heading)
	case htmd.OpCodeBlock:
		return unsafe.Pointer(t.visit_code_block)
	case htmd.OpCodeInline:
		return unsafe.Pointer(t.visit_code_inline)
	case htmd.OpListItem:
		return unsafe.Pointer(t.visit_list_item)
	case htmd.OpListStart:
		return unsafe.Pointer(t.visit_list_start)
	case htmd.OpListEnd:
		return unsafe.Pointer(t.visit_list_end)
	case htmd.OpTableStart:
		return unsafe.Pointer(t.visit_table_start)
	case htmd.OpTableRow:
		return unsafe.Pointer(t.visit_table_row)
	case htmd.OpTableEnd:
		return unsafe.Pointer(t.visit_table_end)
	case htmd.OpBlockquote:
		return unsafe.Pointer(t.visit_blockquote)
	case htmd.OpStrong:
		return unsafe.Pointer(t.visit_strong)
	case htmd.OpEmphasis:
		return unsafe.Pointer(t.visit_emphasis)
	case htmd.OpStrikethrough:
		return unsafe.Pointer(t.visit_strikethrough)
	case htmd.OpUnderline:
		return unsafe.Pointer(t.visit_underline)
	case htmd.OpSubscript:
		return unsafe.Pointer(t.visit_subscript)
	case htmd.OpSuperscript:
		return unsafe.Pointer(t.visit_superscript)
	case htmd.OpMark:
		return unsafe.Pointer(t.visit_mark)
	case htmd.OpLineBreak:
		return unsafe.Pointer(t.visit_line_break)
	case htmd.OpHorizontalRule:
		return unsafe.Pointer(t.visit_horizontal_rule)
	case htmd.OpCustomElement:
		return unsafe.Pointer(t.visit_custom_element)
	case htmd.OpDefinitionListStart:
		return unsafe.Pointer(t.visit_definition_list_start)
	case htmd.OpDefinitionTerm:
		return unsafe.Pointer(t.visit_definition_term)
	case htmd.OpDefinitionDescription:
		return unsafe.Pointer(t.visit_definition_description)
	case htmd.OpDefinitionListEnd:
		return unsafe.Pointer(t.visit_definition_list_end)
	case htmd.OpForm:
		return unsafe.Pointer(t.visit_form)
	case htmd.OpInput:
		return unsafe.Pointer(t.visit_input)
	case htmd.OpButton:
		return unsafe.Pointer(t.visit_button)
	case htmd.OpAudio:
		return unsafe.Pointer(t.visit_audio)
	case htmd.OpVideo:
		return unsafe.Pointer(t.visit_video)
	case htmd.OpIframe:
		return unsafe.Pointer(t.visit_iframe)
	case htmd.OpDetails:
		return unsafe.Pointer(t.visit_details)
	case htmd.OpSummary:
		return unsafe.Pointer(t.visit_summary)
	case htmd.OpFigureStart:
		return unsafe.Pointer(t.visit_figure_start)
	case htmd.OpFigcaption:
		return unsafe.Pointer(t.visit_figcaption)
	case htmd.OpFigureEnd:
		return unsafe.Pointer(t.visit_figure_end)
	}
	return nil
}

// Dispatch marshals one call into the arena, invokes the C callback and
// decodes its result. The arena is reset before returning.
func (v *Visitor) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) htmd.VisitResult {
	p := v.fn(op)
	if p == nil {
		return htmd.Continue()
	}
	defer v.arena.Reset()

	cctx := v.context(ctx)
	ud := v.table.user_data

	var res C.htmd_visit_result
	switch op {
	case htmd.OpElementStart, htmd.OpTableStart, htmd.OpLineBreak, htmd.OpHorizontalRule,
		htmd.OpDefinitionListStart, htmd.OpFigureStart:
		res = C.htmd_invoke_ctx(C.htmd_visit_ctx_fn(p), cctx, ud)
	case htmd.OpLink:
		res = C.htmd_invoke_str3(C.htmd_visit_str3_fn(p), cctx, ud, v.str(a.Href), v.str(a.Text), v.optional(a, "title", a.Title))
	case htmd.OpImage:
		res = C.htmd_invoke_str3(C.htmd_visit_str3_fn(p), cctx, ud, v.str(a.Src), v.str(a.Alt), v.optional(a, "title", a.Title))
	case htmd.OpInput:
		res = C.htmd_invoke_str3(C.htmd_visit_str3_fn(p), cctx, ud, v.str(a.InputType), v.optional(a, "name", a.Name), v.optional(a, "value", a.Value))
	case htmd.OpHeading:
		res = C.htmd_invoke_heading(C.htmd_visit_heading_fn(p), cctx, ud, C.uint32_t(a.Level), v.str(a.Text), v.optional(a, "id", a.ID))
	case htmd.OpCodeBlock:
		res = C.htmd_invoke_str2(C.htmd_visit_str2_fn(p), cctx, ud, v.optional(a, "lang", a.Lang), v.str(a.Code))
	case htmd.OpCustomElement:
		res = C.htmd_invoke_str2(C.htmd_visit_str2_fn(p), cctx, ud, v.str(a.TagName), v.str(a.HTML))
	case htmd.OpForm:
		res = C.htmd_invoke_str2(C.htmd_visit_str2_fn(p), cctx, ud, v.optional(a, "action", a.Action), v.optional(a, "method", a.Method))
	case htmd.OpListStart:
		res = C.htmd_invoke_bool(C.htmd_visit_bool_fn(p), cctx, ud, C.bool(a.Ordered))
	case htmd.OpDetails:
		res = C.htmd_invoke_bool(C.htmd_visit_bool_fn(p), cctx, ud, C.bool(a.Open))
	case htmd.OpListItem:
		res = C.htmd_invoke_list_item(C.htmd_visit_list_item_fn(p), cctx, ud, C.bool(a.Ordered), v.str(a.Marker), v.str(a.Text))
	case htmd.OpListEnd:
		res = C.htmd_invoke_list_end(C.htmd_visit_list_end_fn(p), cctx, ud, C.bool(a.Ordered), v.str(a.Output))
	case htmd.OpTableRow:
		cells := v.strings(a.Cells)
		res = C.htmd_invoke_table_row(C.htmd_visit_table_row_fn(p), cctx, ud, cells, C.size_t(len(a.Cells)), C.bool(a.IsHeader))
	case htmd.OpBlockquote:
		res = C.htmd_invoke_blockquote(C.htmd_visit_blockquote_fn(p), cctx, ud, v.str(a.Content), C.size_t(a.Depth))
	case htmd.OpAudio, htmd.OpVideo, htmd.OpIframe:
		res = C.htmd_invoke_str(C.htmd_visit_str_fn(p), cctx, ud, v.optional(a, "src", a.Src))
	default:
		// every remaining operation takes a single string
		s, _ := a.Arg(op.Params()[0]).(string)
		res = C.htmd_invoke_str(C.htmd_visit_str_fn(p), cctx, ud, v.str(s))
	}

	return v.decode(op, res)
}

// decode converts a C result and frees its payloads.
func (v *Visitor) decode(op htmd.Op, res C.htmd_visit_result) htmd.VisitResult {
	output, message := res.custom_output, res.error_message
	defer func() {
		if output != nil {
			C.free(unsafe.Pointer(output))
		}
		if message != nil {
			C.free(unsafe.Pointer(message))
		}
	}()

	if res.result_type < 0 {
		return v.guard.Fail(op, bridge.DecodeFailure, bridge.Decodef("unknown result type %d", int32(res.result_type)))
	}
	kind := htmd.ResultKind(res.result_type)
	payload := output
	if kind == htmd.ResultError {
		payload = message
	}
	var s string
	if payload != nil {
		s = C.GoString(payload)
	}
	result, err := bridge.Build(kind, s, payload != nil)
	if err != nil {
		return v.guard.Fail(op, bridge.DecodeFailure, err)
	}
	return result
}

func (v *Visitor) alloc(n int) unsafe.Pointer {
	return unsafe.Pointer(&v.arena.Bytes(n)[0])
}

func (v *Visitor) str(s string) *C.char {
	return (*C.char)(unsafe.Pointer(&v.arena.String(s)[0]))
}

// optional passes NULL for an argument the source did not have.
func (v *Visitor) optional(a *htmd.Args, name, s string) *C.char {
	if !a.Present(name) {
		return nil
	}
	return v.str(s)
}

// strings builds a NULL-terminated array of C strings.
func (v *Visitor) strings(ss []string) **C.char {
	arr := unsafe.Slice((**C.char)(v.alloc(ptrSize*(len(ss)+1))), len(ss)+1)
	for i, s := range ss {
		arr[i] = v.str(s)
	}
	return &arr[0]
}

func (v *Visitor) context(ctx *htmd.NodeContext) *C.htmd_node_context {
	c := (*C.htmd_node_context)(v.alloc(int(C.sizeof_htmd_node_context)))
	c.node_type = C.uint32_t(ctx.NodeType)
	c.tag_name = v.str(ctx.TagName)
	c.depth = C.size_t(ctx.Depth)
	c.index_in_parent = C.size_t(ctx.IndexInParent)
	c.is_inline = C.bool(ctx.IsInline)
	if ctx.HasParent {
		c.parent_tag = v.str(ctx.ParentTag)
	}

	n := len(ctx.Attributes)
	attrs := unsafe.Slice((*C.htmd_attribute)(v.alloc(int(C.sizeof_htmd_attribute)*(n+1))), n+1)
	for i, a := range ctx.Attributes {
		attrs[i].key = v.str(a.Name)
		attrs[i].value = v.str(a.Value)
	}
	c.attributes = &attrs[0]
	c.attribute_count = C.size_t(n)
	return c
}
