package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(KindCollaborator, "quote provider", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped cause must survive errors.Is")
	}
	if !IsKind(err, KindCollaborator) {
		t.Fatalf("kind lost in wrapping: %v", err)
	}
	if got := err.Error(); got != "quote provider: connection refused" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(New(KindBound, "over cap")); got != KindBound {
		t.Fatalf("KindOf = %v, want bound", got)
	}
	if got := KindOf(stderrors.New("plain")); got != KindInternal {
		t.Fatalf("untyped error should default to internal, got %v", got)
	}
	// A typed error buried under fmt wrapping is still found.
	deep := fmt.Errorf("outer: %w", Newf(KindValidation, "bad tick %d", 7))
	if !IsKind(deep, KindValidation) {
		t.Fatalf("kind not recovered through wrapping: %v", deep)
	}
}

func TestIsKindNil(t *testing.T) {
	if IsKind(nil, KindValidation) {
		t.Fatal("nil carries no kind")
	}
}

func TestKindStrings(t *testing.T) {
	kinds := []Kind{KindInternal, KindValidation, KindPrecondition, KindBound, KindCollaborator}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if seen[s] {
			t.Fatalf("duplicate kind rendering %q", s)
		}
		seen[s] = true
	}
}
