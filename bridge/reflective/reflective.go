// Package reflective bridges an arbitrary Go value whose methods are named
// after the visitor operations (VisitText, VisitLink, ...). Signatures are
// flexible: a method may take fewer arguments than the operation offers,
// receive the context as a pointer, a copy or a snake_case record, and
// return a VisitResult, a discriminant string, a result map, or nothing.
package reflective

import (
	"reflect"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
)

type contextShape int

const (
	noContext contextShape = iota
	contextPointer
	contextValue
	contextRecord
)

var (
	ctxPtrType   = reflect.TypeOf((*htmd.NodeContext)(nil))
	ctxValueType = ctxPtrType.Elem()
	recordType   = reflect.TypeOf(map[string]any(nil))
	resultType   = reflect.TypeOf(htmd.VisitResult{})
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

type method struct {
	fn    reflect.Value
	shape contextShape
	args  []reflect.Type
	err   bool // last result is an error
}

// Visitor dispatches to the methods of a host value.
type Visitor struct {
	methods [htmd.NumOps]*method
	guard   *bridge.Guard
}

// New resolves host's methods once.
func New(host any, opts ...bridge.Option) *Visitor {
	v := &Visitor{guard: bridge.NewGuard("reflective", opts...)}
	hv := reflect.ValueOf(host)
	if !hv.IsValid() {
		return v
	}
	for _, op := range htmd.AllOps() {
		fn := hv.MethodByName(op.MethodName())
		if !fn.IsValid() {
			continue
		}
		v.methods[op] = resolve(fn)
	}
	return v
}

func resolve(fn reflect.Value) *method {
	t := fn.Type()
	m := &method{fn: fn}
	first := 0
	if t.NumIn() > 0 {
		switch t.In(0) {
		case ctxPtrType:
			m.shape, first = contextPointer, 1
		case ctxValueType:
			m.shape, first = contextValue, 1
		case recordType:
			m.shape, first = contextRecord, 1
		}
	}
	for i := first; i < t.NumIn(); i++ {
		m.args = append(m.args, t.In(i))
	}
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		m.err = true
	}
	return m
}

// Convert converts html with the host's methods.
func (v *Visitor) Convert(html string) (string, error) {
	return v.guard.Run(htmd.Adapt(v), html)
}

// Absorbed returns the number of failures the last conversion degraded to
// Continue.
func (v *Visitor) Absorbed() int { return v.guard.Absorbed() }

// Handles reports whether the host defines the operation's method.
func (v *Visitor) Handles(op htmd.Op) bool {
	return int(op) < htmd.NumOps && v.methods[op] != nil
}

// Dispatch calls the host method.
func (v *Visitor) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) (res htmd.VisitResult) {
	m := v.methods[op]
	if m == nil {
		return htmd.Continue()
	}

	in, err := m.inputs(op, ctx, a)
	if err != nil {
		return v.guard.Fail(op, bridge.DecodeFailure, err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = v.guard.Fail(op, bridge.HostFault, bridge.Recover(r))
		}
	}()
	out := m.fn.Call(in)

	if m.err {
		if e := out[len(out)-1]; !e.IsNil() {
			return v.guard.Fail(op, bridge.HostFault, e.Interface().(error))
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return htmd.Continue()
	}
	res, err = decode(out[0])
	if err != nil {
		return v.guard.Fail(op, bridge.DecodeFailure, err)
	}
	return res
}

func (m *method) inputs(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) ([]reflect.Value, error) {
	if m.fn.Type().IsVariadic() {
		return nil, bridge.Decodef("variadic method %s", op.MethodName())
	}
	params := op.Params()
	if len(m.args) > len(params) {
		return nil, bridge.Decodef("%s takes %d arguments, %s provides %d",
			op.MethodName(), len(m.args), op, len(params))
	}

	in := make([]reflect.Value, 0, len(m.args)+1)
	switch m.shape {
	case contextPointer:
		in = append(in, reflect.ValueOf(ctx))
	case contextValue:
		in = append(in, reflect.ValueOf(ctx.Clone()))
	case contextRecord:
		in = append(in, reflect.ValueOf(Record(ctx)))
	}
	for i, t := range m.args {
		val, ok := coerce(reflect.ValueOf(a.Arg(params[i])), t)
		if !ok {
			return nil, bridge.Decodef("argument %s of %s cannot be passed as %s", params[i].Name, op, t)
		}
		in = append(in, val)
	}
	return in, nil
}

// Record returns the snake_case map form of a context. The attribute list
// is copied.
func Record(ctx *htmd.NodeContext) map[string]any {
	var parent any
	if ctx.HasParent {
		parent = ctx.ParentTag
	}
	return map[string]any{
		"node_type":       ctx.NodeType.String(),
		"node_type_id":    uint32(ctx.NodeType),
		"tag_name":        ctx.TagName,
		"attributes":      append([]htmd.Attribute(nil), ctx.Attributes...),
		"depth":           ctx.Depth,
		"index_in_parent": ctx.IndexInParent,
		"parent_tag":      parent,
		"is_inline":       ctx.IsInline,
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// coerce adapts an argument to a parameter type. Conversions stay within a
// kind family so an int never becomes a rune string. Slices are always
// copied.
func coerce(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if v.Type().AssignableTo(t) {
		if v.Kind() == reflect.Slice && !v.IsNil() {
			out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
			reflect.Copy(out, v)
			return out, true
		}
		return v, true
	}
	switch {
	case isNumber(v.Kind()) && isNumber(t.Kind()),
		v.Kind() == reflect.String && t.Kind() == reflect.String,
		v.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return v.Convert(t), true
	case v.Kind() == reflect.Slice && t.Kind() == reflect.Slice &&
		v.Type().Elem().Kind() == reflect.String && t.Elem().Kind() == reflect.String:
		out := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(v.Index(i).Convert(t.Elem()))
		}
		return out, true
	}
	return reflect.Value{}, false
}

// decode interprets a host return value.
func decode(v reflect.Value) (htmd.VisitResult, error) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return htmd.Continue(), nil
		}
		v = v.Elem()
	}

	switch {
	case v.Type() == resultType:
		return v.Interface().(htmd.VisitResult), nil
	case v.Kind() == reflect.String:
		kind, ok := bridge.ParseKind(v.String())
		if !ok {
			return htmd.Continue(), bridge.Decodef("unknown result %q", v.String())
		}
		if kind == htmd.ResultCustom || kind == htmd.ResultError {
			return htmd.Continue(), bridge.Decodef("%s result needs a payload", kind)
		}
		return bridge.Build(kind, "", false)
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		if v.IsNil() {
			return htmd.Continue(), nil
		}
		return decodeMap(v)
	}
	return htmd.Continue(), bridge.Decodef("unsupported result type %s", v.Type())
}

func decodeMap(m reflect.Value) (htmd.VisitResult, error) {
	get := func(key string) (string, bool) {
		e := m.MapIndex(reflect.ValueOf(key).Convert(m.Type().Key()))
		if !e.IsValid() {
			return "", false
		}
		for e.Kind() == reflect.Interface {
			if e.IsNil() {
				return "", false
			}
			e = e.Elem()
		}
		if e.Kind() != reflect.String {
			return "", false
		}
		return e.String(), true
	}

	typ, ok := get("type")
	if !ok {
		return htmd.Continue(), bridge.Decodef("result map without type")
	}
	kind, ok := bridge.ParseKind(typ)
	if !ok {
		return htmd.Continue(), bridge.Decodef("unknown result type %q", typ)
	}
	payload, has := get("output")
	if kind == htmd.ResultError {
		if msg, ok := get("message"); ok {
			payload, has = msg, true
		}
	}
	return bridge.Build(kind, payload, has)
}
