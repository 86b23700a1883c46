package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestDispositionCode(t *testing.T) {
	t.Parallel()

	cases := map[string]int64{
		"en orden":    1,
		"reparación":  2,
		"dañado":      3,
		"perdido":     4,
		"  Dañado ":   3,
		"???":         4,
		"":            4,
		"desconocido": 4,
	}
	for status, want := range cases {
		if got := DispositionCode(status); got != want {
			t.Fatalf("DispositionCode(%q) = %d, want %d", status, got, want)
		}
	}
}

func TestCorrectionsFollowMissingOrderAndDefaultToLost(t *testing.T) {
	t.Parallel()

	missing := []MissingItem{{ItemID: 7}, {ItemID: 9}, {ItemID: 11}}
	got := Corrections(missing, []Disposition{{ItemID: 9, Status: "???"}, {ItemID: 7, Status: "dañado"}, {ItemID: 99, Status: "en orden"}})
	want := []ManualScanEntry{{ItemID: 7, StateItemID: 3}, {ItemID: 9, StateItemID: 4}, {ItemID: 11, StateItemID: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("corrections = %+v, want %+v", got, want)
	}
}

func TestCheckCompletion(t *testing.T) {
	t.Parallel()

	got := CheckCompletion([]Category{{Count: 10}, {Count: 5}}, 12)
	want := Completion{IsComplete: false, Expected: 15, Scanned: 12, Missing: 3}
	if got != want {
		t.Fatalf("completion = %+v, want %+v", got, want)
	}
	if done := CheckCompletion([]Category{{Count: 2}}, 2); !done.IsComplete || done.Missing != 0 {
		t.Fatalf("expected complete, got %+v", done)
	}
}

func TestLifecycleErrorMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := error(&LifecycleError{Op: "finish", Message: "Sin conexión", Kind: ErrFinish, Cause: cause})
	if !errors.Is(err, ErrFinish) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause to match, got %v", err)
	}
	if errors.Is(err, ErrStart) {
		t.Fatalf("finish error must not match ErrStart")
	}
	if msg := UserMessage(err); msg != "Sin conexión" {
		t.Fatalf("user message = %q", msg)
	}
	if msg := UserMessage(cause); msg != MsgUnknownError {
		t.Fatalf("expected fallback message, got %q", msg)
	}
}
