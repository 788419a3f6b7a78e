package stage_test

import (
	"errors"
	"testing"

	"cinelake/internal/stage"
)

func TestWrapTagsMarker(t *testing.T) {
	err := stage.Wrap(stage.ErrConfiguration, "silver", "resolve mapping", "provider imdb", nil)
	if !errors.Is(err, stage.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	want := "configuration error: silver: resolve mapping: provider imdb"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := stage.Wrap(stage.ErrParse, "bronze", "read csv", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if !errors.Is(err, stage.ErrParse) {
		t.Fatalf("expected parse marker, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := stage.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, stage.ErrIO) {
		t.Fatalf("expected io marker fallback, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !stage.IsFatal(stage.Wrap(stage.ErrConfiguration, "registry", "load", "", nil)) {
		t.Fatal("configuration errors must be fatal")
	}
	if stage.IsFatal(stage.Wrap(stage.ErrIO, "batch", "scan", "", nil)) {
		t.Fatal("io errors must not be fatal")
	}
}
