package symtab

import (
	"testing"

	"github.com/oisee/rvasm/pkg/token"
)

func TestDefineLabelRejectsRedefinition(t *testing.T) {
	tr := New()
	if err := tr.DefineLabel("loop", 0, token.Position{Line: 1}); err != nil {
		t.Fatalf("first DefineLabel: %v", err)
	}
	if err := tr.DefineLabel("loop", 4, token.Position{Line: 2}); err == nil {
		t.Fatal("DefineLabel: expected error redefining \"loop\", got nil")
	}
}

func TestLookupLabelReturnsDefinedOffset(t *testing.T) {
	tr := New()
	if err := tr.DefineLabel("later", 8, token.Position{}); err != nil {
		t.Fatalf("DefineLabel: %v", err)
	}
	off, ok := tr.LookupLabel("later")
	if !ok || off != 8 {
		t.Fatalf("LookupLabel(\"later\") = (%d, %v), want (8, true)", off, ok)
	}
}

func TestDeclareGlobalIsIdempotent(t *testing.T) {
	tr := New()
	tr.DeclareGlobal("main", SectionText)
	tr.DeclareGlobal("main", SectionData) // should not overwrite or duplicate
	sec, ok := tr.LookupGlobal("main")
	if !ok || sec != SectionText {
		t.Fatalf("LookupGlobal(\"main\") = (%v, %v), want (SectionText, true)", sec, ok)
	}
	if order := tr.GlobalOrder(); len(order) != 1 {
		t.Fatalf("GlobalOrder() = %v, want exactly one entry", order)
	}
}

func TestPendingPreservesInsertionOrder(t *testing.T) {
	tr := New()
	tr.AddPending(0, "a")
	tr.AddPending(1, "b")
	tr.AddPending(2, "a")

	pending := tr.Pending()
	if len(pending) != 3 {
		t.Fatalf("Pending() len = %d, want 3", len(pending))
	}
	wantSyms := []string{"a", "b", "a"}
	for i, want := range wantSyms {
		if pending[i].Symbol != want {
			t.Errorf("pending[%d].Symbol = %q, want %q", i, pending[i].Symbol, want)
		}
	}
}

func TestLabelOrderMatchesDefinitionOrder(t *testing.T) {
	tr := New()
	tr.DefineLabel("first", 0, token.Position{})
	tr.DefineLabel("second", 4, token.Position{})
	tr.DefineLabel("third", 8, token.Position{})

	order := tr.LabelOrder()
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("LabelOrder() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("LabelOrder()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
