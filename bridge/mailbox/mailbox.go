package mailbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/oklog/ulid/v2"
)

// DefaultTimeout bounds one call when no timeout option is given.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is the cause of a host fault raised by a call that got no
// reply in time.
var ErrTimeout = errors.New("call timed out")

// Visitor sends the registered operations to a process.
type Visitor struct {
	proc    *Process
	handles [htmd.NumOps]bool
	mailbox chan reply
	guard   *bridge.Guard
}

// New registers the operations proc handles, by snake_case name with or
// without the "visit_" prefix.
func New(proc *Process, ops []string, opts ...bridge.Option) (*Visitor, error) {
	v := &Visitor{
		proc:    proc,
		mailbox: make(chan reply, 64),
		guard:   bridge.NewGuard("mailbox", opts...),
	}
	for _, name := range ops {
		op, ok := htmd.LookupOp(name)
		if !ok {
			return nil, fmt.Errorf("mailbox: unknown operation %q", name)
		}
		v.handles[op] = true
	}
	return v, nil
}

// Convert converts html, calling the process for every registered
// operation.
func (v *Visitor) Convert(html string) (string, error) {
	return v.guard.Run(htmd.Adapt(v), html)
}

// Absorbed returns the number of failures the last conversion degraded to
// Continue.
func (v *Visitor) Absorbed() int { return v.guard.Absorbed() }

// Handles reports whether op was registered.
func (v *Visitor) Handles(op htmd.Op) bool {
	return int(op) < htmd.NumOps && v.handles[op]
}

// Dispatch sends one call and waits for the matching reply.
func (v *Visitor) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) htmd.VisitResult {
	ref := ulid.Make()
	msg := Message{
		Ref:     ref,
		Op:      op.String(),
		Context: ctx.Clone(),
		Args:    a.Values(op),
		from:    v.mailbox,
	}
	if err := v.proc.Send(msg); err != nil {
		return v.guard.Fail(op, bridge.HostFault, fmt.Errorf("process down: %w", err))
	}

	timer := time.NewTimer(v.guard.Timeout(DefaultTimeout))
	defer timer.Stop()

	for {
		select {
		case r := <-v.mailbox:
			if r.ref != ref {
				v.guard.Logger().Debug("dropping stale reply", "ref", r.ref.String())
				continue
			}
			res, err := decodeTerm(r.term)
			if err != nil {
				return v.guard.Fail(op, bridge.DecodeFailure, err)
			}
			return res
		case <-v.proc.Done():
			return v.guard.Fail(op, bridge.HostFault, fmt.Errorf("process down: %w", v.proc.Err()))
		case <-timer.C:
			return v.guard.Fail(op, bridge.HostFault, ErrTimeout)
		}
	}
}

// decodeTerm accepts continue, skip and preserve_html atoms and
// {custom, Output} / {error, Message} tuples.
func decodeTerm(term any) (htmd.VisitResult, error) {
	switch t := term.(type) {
	case Atom:
		kind, ok := bridge.ParseKind(string(t))
		if !ok {
			return htmd.Continue(), bridge.Decodef("unknown atom %q", string(t))
		}
		if kind == htmd.ResultCustom || kind == htmd.ResultError {
			return htmd.Continue(), bridge.Decodef("atom %q needs a payload tuple", string(t))
		}
		return bridge.Build(kind, "", false)
	case Tuple:
		if len(t) != 2 {
			return htmd.Continue(), bridge.Decodef("tuple of arity %d", len(t))
		}
		tag, ok := t[0].(Atom)
		if !ok {
			return htmd.Continue(), bridge.Decodef("tuple tag is %T, want atom", t[0])
		}
		kind, ok := bridge.ParseKind(string(tag))
		if !ok || (kind != htmd.ResultCustom && kind != htmd.ResultError) {
			return htmd.Continue(), bridge.Decodef("unexpected tuple tag %q", string(tag))
		}
		payload, ok := t[1].(string)
		if !ok {
			return htmd.Continue(), bridge.Decodef("tuple payload is %T, want string", t[1])
		}
		return bridge.Build(kind, payload, true)
	}
	return htmd.Continue(), bridge.Decodef("unsupported term %T", term)
}
