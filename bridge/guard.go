package bridge

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nicholasgasior/htmd"
)

// Guard is the scratch state one bridge instance carries across a
// conversion: the busy flag, the first terminal fault and the count of
// absorbed failures. It is reset at the start of every conversion.
type Guard struct {
	name     string
	settings Settings

	busy     atomic.Bool
	fault    *Fault
	absorbed int
}

// NewGuard returns a guard for the bridge called name.
func NewGuard(name string, opts ...Option) *Guard {
	return &Guard{name: name, settings: newSettings(opts)}
}

// Policy returns the configured failure policy.
func (g *Guard) Policy() Policy { return g.settings.Policy }

// Logger returns the bridge logger.
func (g *Guard) Logger() *slog.Logger { return g.settings.Logger }

// Timeout returns the configured round-trip bound, or def if none was set.
func (g *Guard) Timeout(def time.Duration) time.Duration {
	if g.settings.Timeout > 0 {
		return g.settings.Timeout
	}
	return def
}

// Begin claims the guard for one conversion.
func (g *Guard) Begin() error {
	if !g.busy.CompareAndSwap(false, true) {
		return htmd.ErrVisitorBusy
	}
	g.fault = nil
	g.absorbed = 0
	return nil
}

// End releases the guard.
func (g *Guard) End() {
	g.busy.Store(false)
}

// Absorbed returns the number of failures the last conversion treated as
// Continue.
func (g *Guard) Absorbed() int { return g.absorbed }

// Fail reports a failure raised while dispatching op and returns the result
// the driver should see. Under Degrade a decode failure or host fault is
// logged and becomes Continue; otherwise the fault is recorded and the
// traversal is stopped with an Error result.
func (g *Guard) Fail(op htmd.Op, kind FaultKind, err error) htmd.VisitResult {
	f := &Fault{Bridge: g.name, Op: op, Kind: kind, Err: err}
	if kind != Internal && g.settings.Policy == Degrade {
		g.absorbed++
		g.settings.Logger.Debug("visitor callback absorbed",
			"bridge", g.name, "op", op.String(), "kind", kind.String(), "error", err)
		return htmd.Continue()
	}
	if g.fault == nil {
		g.fault = f
	}
	return htmd.Error(f.Error())
}

// Run converts html with v, which must dispatch through this guard. A
// recorded fault replaces the driver's error.
func (g *Guard) Run(v htmd.Visitor, html string) (string, error) {
	if err := g.Begin(); err != nil {
		return "", err
	}
	defer g.End()

	out, err := htmd.Traverse(html, v)
	if g.fault != nil {
		return "", g.fault
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// Err returns the fault recorded by the last conversion, if any.
func (g *Guard) Err() error {
	if g.fault == nil {
		return nil
	}
	return g.fault
}

// Recover converts a panic value into an error.
func Recover(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &PanicError{Value: v}
}

// PanicError wraps a non-error panic value raised by a host callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("host callback panicked: %v", e.Value)
}
