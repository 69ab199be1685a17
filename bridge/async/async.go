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

package async

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
)

// Handler receives the JSON payload of one call and returns a promise for
// the JSON result.
type Handler func(payload string) *Promise

// Object maps camelCase operation names ("visitLink") to handlers.
type Object map[string]Handler

var errNoPromise = errors.New("handler returned no promise")

// Visitor dispatches operations to an Object's handlers on a Runtime.
type Visitor struct {
	rt       *Runtime
	handlers [htmd.NumOps]Handler
	guard    *bridge.Guard
}

// New binds obj to rt. Handler names may also be snake_case
// ("visit_link").
func New(rt *Runtime, obj Object, opts ...bridge.Option) *Visitor {
	v := &Visitor{rt: rt, guard: bridge.NewGuard("async", opts...)}
	for _, op := range htmd.AllOps() {
		h := obj[op.CamelName()]
		if h == nil {
			h = obj[op.String()]
		}
		v.handlers[op] = h
	}
	return v
}

// Convert converts html and blocks until it is done. It must not be called
// from a handler; use ConvertAsync there.
func (v *Visitor) Convert(html string) (string, error) {
	select {
	case <-v.rt.Done():
		return "", &bridge.Fault{Bridge: "async", Kind: bridge.Internal, Err: bridge.ErrClosed}
	default:
	}
	return v.guard.Run(htmd.Adapt(v), html)
}

// ConvertAsync runs the conversion on its own goroutine and returns a
// promise for the Markdown output.
func (v *Visitor) ConvertAsync(html string) *Promise {
	p, resolve, reject := NewPromise()
	go func() {
		out, err := v.Convert(html)
		if err != nil {
			reject(err)
			return
		}
		resolve(out)
	}()
	return p
}

// Absorbed returns the number of failures the last conversion degraded to
// Continue.
func (v *Visitor) Absorbed() int { return v.guard.Absorbed() }

// Handles reports whether obj has a handler for op.
func (v *Visitor) Handles(op htmd.Op) bool {
	return int(op) < htmd.NumOps && v.handlers[op] != nil
}

// Dispatch runs the handler on the loop and waits for its promise.
func (v *Visitor) Dispatch(op htmd.Op, ctx *htmd.NodeContext, a *htmd.Args) htmd.VisitResult {
	h := v.handlers[op]
	if h == nil {
		return htmd.Continue()
	}

	payload, err := encodePayload(op, ctx, a)
	if err != nil {
		return v.guard.Fail(op, bridge.Internal, fmt.Errorf("encode payload: %w", err))
	}

	reply := make(chan *Promise, 1)
	err = v.rt.Schedule(func() {
		defer func() {
			if r := recover(); r != nil {
				reply <- Reject(bridge.Recover(r))
			}
		}()
		reply <- h(string(payload))
	})
	if err != nil {
		return v.guard.Fail(op, bridge.Internal, err)
	}

	callCtx := context.Background()
	if d := v.guard.Timeout(0); d > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, d)
		defer cancel()
	}

	var p *Promise
	select {
	case p = <-reply:
	case <-v.rt.Done():
		return v.guard.Fail(op, bridge.Internal, bridge.ErrClosed)
	case <-callCtx.Done():
		return v.guard.Fail(op, bridge.HostFault, callCtx.Err())
	}
	if p == nil {
		return v.guard.Fail(op, bridge.DecodeFailure, errNoPromise)
	}

	select {
	case <-p.Done():
	case <-v.rt.Done():
		return v.guard.Fail(op, bridge.Internal, bridge.ErrClosed)
	case <-callCtx.Done():
		return v.guard.Fail(op, bridge.HostFault, callCtx.Err())
	}
	value, err := p.Await(context.Background())
	if err != nil {
		return v.guard.Fail(op, bridge.HostFault, err)
	}
	res, err := decodeResult(value)
	if err != nil {
		return v.guard.Fail(op, bridge.DecodeFailure, err)
	}
	return res
}

// Result encodes a result object for handlers to resolve with.
func Result(r htmd.VisitResult) string {
	m := map[string]string{"type": r.Kind().String()}
	switch r.Kind() {
	case htmd.ResultCustom:
		m["output"] = r.Output()
	case htmd.ResultError:
		m["message"] = r.Message()
	}
	b, _ := json.Marshal(m)
	return string(b)
}
