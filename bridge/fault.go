package bridge

import (
	"errors"
	"fmt"

	"github.com/nicholasgasior/htmd"
)

// FaultKind classifies a bridge failure.
type FaultKind int

const (
	// DecodeFailure: the host returned something that is not a valid result.
	DecodeFailure FaultKind = iota
	// HostFault: the host callback raised, panicked, rejected or timed out.
	HostFault
	// Internal: the bridge itself can no longer dispatch. Always terminal.
	Internal
)

func (k FaultKind) String() string {
	switch k {
	case DecodeFailure:
		return "decode failure"
	case HostFault:
		return "host fault"
	case Internal:
		return "internal fault"
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fault is returned by a conversion that a bridge failure aborted.
type Fault struct {
	Bridge string
	Op     htmd.Op
	Kind   FaultKind
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s bridge: %s in %s: %v", f.Bridge, f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// IsFault reports whether err carries a bridge fault of the given kind.
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}

// ErrClosed is the cause of an Internal fault raised by a closed bridge.
var ErrClosed = errors.New("bridge closed")
