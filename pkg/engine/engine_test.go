package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

const squareSource = `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
`

func TestEvaluateSquare(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate(squareSource)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if p == nil {
		t.Fatal("expected non-nil polygon")
	}
	if p.Len() != 4 {
		t.Errorf("polygon has %d vertices, want 4", p.Len())
	}
}

func TestEvaluateEmptySource(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate("   \n\t  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if p != nil {
		t.Fatal("empty source cannot define a polygon")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for empty source")
	}
}

func TestEvaluateMissingPolygon(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if p != nil {
		t.Fatal("source without a polygon form must not yield one")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error when no polygon is defined")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	p, evalErrs, err := eng.Evaluate("(polygon (pt 0 0")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil polygon on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateBuiltinError(t *testing.T) {
	eng := NewEngine()

	// Too few points is a runtime error from the polygon builtin.
	p, evalErrs, err := eng.Evaluate("(polygon (pt 0 0) (pt 1 1))")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil polygon")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for a 2-point polygon")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	for i := 0; i < 5; i++ {
		p, evalErrs, err := eng.Evaluate(squareSource)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if p == nil || p.Len() != 4 {
			t.Fatalf("iteration %d: bad polygon", i)
		}
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() = %q", s)
	}
	e2 := EvalError{Message: "no location"}
	if s := e2.Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line info = %q", s)
	}
}

func TestWaitWithTimeoutTimesOut(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalOutcome) // never sends

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil || !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestWaitWithTimeoutDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // current generation

	ch := make(chan evalOutcome, 1)
	ch <- evalOutcome{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygoError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"no line info", "some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygoError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
