// Package mailbox bridges a visitor that runs as a process with a mailbox.
// Each call is a message tagged with a unique ref; the caller waits for the
// reply carrying that ref and discards any other.
package mailbox

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nicholasgasior/htmd"
	"github.com/oklog/ulid/v2"
)

// Atom is a symbolic term such as Atom("skip").
type Atom string

// Tuple is a fixed-size compound term such as Tuple{Atom("custom"), "x"}.
type Tuple []any

// ErrNormal is the exit reason of a stopped process.
var ErrNormal = errors.New("normal")

// Message is one visitor call delivered to a process.
type Message struct {
	Ref     ulid.ULID
	Op      string
	Context htmd.NodeContext
	Args    []any

	from chan<- reply
}

type reply struct {
	ref  ulid.ULID
	term any
}

// Reply answers the message. It may be called later and from any goroutine;
// a reply nobody waits for any more is dropped.
func (m Message) Reply(term any) {
	if m.from == nil {
		return
	}
	select {
	case m.from <- reply{ref: m.Ref, term: term}:
	default:
	}
}

// Process is a goroutine that handles messages one at a time.
type Process struct {
	inbox chan Message
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	reason error
}

// Spawn starts a process running fn for every message. A panic in fn kills
// the process.
func Spawn(fn func(Message)) *Process {
	p := &Process{
		inbox: make(chan Message, 16),
		done:  make(chan struct{}),
	}
	go p.run(fn)
	return p
}

// Serve spawns a process that replies synchronously with fn's return term.
func Serve(fn func(op string, ctx htmd.NodeContext, args []any) any) *Process {
	return Spawn(func(m Message) {
		m.Reply(fn(m.Op, m.Context, m.Args))
	})
}

func (p *Process) run(fn func(Message)) {
	for {
		select {
		case <-p.done:
			return
		case m := <-p.inbox:
			if err := p.handle(fn, m); err != nil {
				p.exit(err)
				return
			}
		}
	}
}

func (p *Process) handle(fn func(Message), m Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process crashed: %v", r)
		}
	}()
	fn(m)
	return nil
}

func (p *Process) exit(reason error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.reason = reason
		p.mu.Unlock()
		close(p.done)
	})
}

// Send delivers m, or fails if the process is dead.
func (p *Process) Send(m Message) error {
	select {
	case <-p.done:
		return p.Err()
	default:
	}
	select {
	case p.inbox <- m:
		return nil
	case <-p.done:
		return p.Err()
	}
}

// Stop terminates the process with reason ErrNormal.
func (p *Process) Stop() { p.exit(ErrNormal) }

// Done is closed when the process exits.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err returns the exit reason, or nil while the process is alive.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}
