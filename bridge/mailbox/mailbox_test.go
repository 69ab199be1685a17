package mailbox

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nicholasgasior/htmd"
	"github.com/nicholasgasior/htmd/bridge"
	"github.com/oklog/ulid/v2"
)

func newVisitor(t *testing.T, proc *Process, ops []string, opts ...bridge.Option) *Visitor {
	t.Helper()
	t.Cleanup(proc.Stop)
	v, err := New(proc, ops, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return v
}

func TestUnknownOperation(t *testing.T) {
	proc := Serve(func(string, htmd.NodeContext, []any) any { return Atom("continue") })
	defer proc.Stop()
	if _, err := New(proc, []string{"visit_marquee"}); err == nil {
		t.Error("New() accepted an unknown operation")
	}
}

func TestServeResults(t *testing.T) {
	proc := Serve(func(op string, ctx htmd.NodeContext, args []any) any {
		switch {
		case op == "visit_element_start" && ctx.TagName == "nav":
			return Atom("skip")
		case op == "visit_strong":
			return Tuple{Atom("custom"), "<<" + args[0].(string) + ">>"}
		case op == "visit_element_start" && ctx.TagName == "kbd":
			return Atom("preserve_html")
		}
		return Atom("continue")
	})
	v := newVisitor(t, proc, []string{"element_start", "visit_strong"})

	out, err := v.Convert("<nav>menu</nav><p><b>bold</b> and <kbd>k</kbd></p>")
	if err != nil {
		t.Fatal(err)
	}
	if out != "<<bold>> and <kbd>k</kbd>" {
		t.Errorf("Convert() = %q", out)
	}
}

func TestArgsInSchemaOrder(t *testing.T) {
	var got [][]any
	proc := Serve(func(op string, ctx htmd.NodeContext, args []any) any {
		got = append(got, args)
		return Atom("continue")
	})
	v := newVisitor(t, proc, []string{"list_item"})
	if _, err := v.Convert(`<ol start="3"><li>x</li></ol>`); err != nil {
		t.Fatal(err)
	}
	want := [][]any{{true, "3.", "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
}

func TestDeferredReplyFromAnotherGoroutine(t *testing.T) {
	proc := Spawn(func(m Message) {
		go func() {
			time.Sleep(5 * time.Millisecond)
			m.Reply(Tuple{Atom("custom"), strings.ToUpper(m.Args[0].(string))})
		}()
	})
	v := newVisitor(t, proc, []string{"text"})
	out, err := v.Convert("<p>quiet</p>")
	if err != nil || out != "QUIET" {
		t.Errorf("Convert() = %q, %v", out, err)
	}
}

func TestStaleRepliesDropped(t *testing.T) {
	proc := Spawn(func(m Message) {
		stale := m
		stale.Ref = ulid.Make()
		stale.Reply(Tuple{Atom("custom"), "WRONG"})
		m.Reply(Tuple{Atom("custom"), "RIGHT"})
	})
	v := newVisitor(t, proc, []string{"text"})
	out, err := v.Convert("<p>a</p>")
	if err != nil || out != "RIGHT" {
		t.Errorf("Convert() = %q, %v", out, err)
	}
}

func TestErrorTupleAborts(t *testing.T) {
	proc := Serve(func(string, htmd.NodeContext, []any) any {
		return Tuple{Atom("error"), "refused"}
	})
	v := newVisitor(t, proc, []string{"text"})
	out, err := v.Convert("<p>a</p>")
	if out != "" || !htmd.IsVisitorAbort(err) || err.Error() != "refused" {
		t.Errorf("Convert() = %q, %v", out, err)
	}
}

func TestBadTerms(t *testing.T) {
	terms := []any{
		Atom("custom"),
		Atom("rewrite"),
		Tuple{Atom("custom")},
		Tuple{"custom", "x"},
		Tuple{Atom("skip"), "x"},
		Tuple{Atom("custom"), 42},
		"continue",
		nil,
	}
	for _, term := range terms {
		proc := Serve(func(string, htmd.NodeContext, []any) any { return term })
		v := newVisitor(t, proc, []string{"text"}, bridge.WithPolicy(bridge.Propagate))
		if _, err := v.Convert("<p>a</p>"); !bridge.IsFault(err, bridge.DecodeFailure) {
			t.Errorf("term %#v: error = %v, want decode failure", term, err)
		}
	}
}

func TestTimeout(t *testing.T) {
	proc := Spawn(func(Message) {})
	v := newVisitor(t, proc, []string{"text"}, bridge.WithTimeout(20*time.Millisecond))
	out, err := v.Convert("<p>a</p>")
	if err != nil || out != "a" || v.Absorbed() != 1 {
		t.Errorf("degrade: %q, %v, absorbed %d", out, err, v.Absorbed())
	}

	strict := newVisitor(t, proc, []string{"text"},
		bridge.WithTimeout(20*time.Millisecond), bridge.WithPolicy(bridge.Propagate))
	if _, err := strict.Convert("<p>a</p>"); !bridge.IsFault(err, bridge.HostFault) {
		t.Errorf("propagate: error = %v, want host fault", err)
	}
}

func TestCrashedProcess(t *testing.T) {
	proc := Spawn(func(m Message) { panic("bad state") })
	v := newVisitor(t, proc, []string{"text"}, bridge.WithPolicy(bridge.Propagate))
	_, err := v.Convert("<p>a</p>")
	if !bridge.IsFault(err, bridge.HostFault) {
		t.Fatalf("error = %v, want host fault", err)
	}
	if proc.Err() == nil || !strings.Contains(proc.Err().Error(), "bad state") {
		t.Errorf("exit reason = %v", proc.Err())
	}

	// later calls fail fast on the dead process
	if _, err := v.Convert("<p>b</p>"); !bridge.IsFault(err, bridge.HostFault) {
		t.Errorf("second Convert() error = %v", err)
	}
}

func TestContextIsACopy(t *testing.T) {
	var kept []htmd.NodeContext
	proc := Serve(func(op string, ctx htmd.NodeContext, args []any) any {
		kept = append(kept, ctx)
		return Atom("continue")
	})
	v := newVisitor(t, proc, []string{"element_start"})
	if _, err := v.Convert(`<p class="c">a</p>`); err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 || kept[0].TagName != "p" {
		t.Fatalf("kept = %+v", kept)
	}
	if c, ok := kept[0].Attr("class"); !ok || c != "c" {
		t.Errorf("copied attribute = %q, %v", c, ok)
	}
}
