package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/cgo"
	"unsafe"

	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/nicholasgasior/htmd/bridge/native"
)

var (
	errNilHTML     = errors.New("html is NULL")
	errBadHandle   = errors.New("invalid visitor handle")
	errFreedHandle = errors.New("visitor handle already freed")
)

// open wraps a C table in a native visitor and returns its handle, or 0 for
// a NULL table.
func open(table unsafe.Pointer) uintptr {
	v, err := native.New(table, settings()...)
	if err != nil {
		return 0
	}
	return uintptr(cgo.NewHandle(v))
}

func settings() []bridge.Option {
	var opts []bridge.Option
	if s := os.Getenv("HTMD_POLICY"); s != "" {
		if p, ok := bridge.ParsePolicy(s); ok {
			opts = append(opts, bridge.WithPolicy(p))
		} else {
			slog.Warn("Invalid HTMD_POLICY, using degrade", "value", s)
		}
	}
	return opts
}

func lookup(h uintptr) (v *native.Visitor, err error) {
	if h == 0 {
		return nil, errBadHandle
	}
	// cgo.Handle.Value panics on a handle that was deleted
	defer func() {
		if recover() != nil {
			v, err = nil, errFreedHandle
		}
	}()
	v, ok := cgo.Handle(h).Value().(*native.Visitor)
	if !ok {
		return nil, errBadHandle
	}
	return v, nil
}

func release(h uintptr) {
	v, err := lookup(h)
	if err != nil {
		return
	}
	v.Close()
	cgo.Handle(h).Delete()
}

func convert(html string) (string, error) {
	return htmd.Traverse(html, nil)
}

func convertWith(html string, h uintptr) (string, error) {
	v, err := lookup(h)
	if err != nil {
		return "", err
	}
	out, err := v.Convert(html)
	if err != nil && !htmd.IsVisitorAbort(err) {
		return "", fmt.Errorf("htmd: %w", err)
	}
	return out, err
}
