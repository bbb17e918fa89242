package services_test

import (
	"errors"
	"testing"

	"ptforge/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "validate", "audio", "file missing", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if got := services.Details(err); got != "validate: audio: file missing" {
		t.Fatalf("unexpected details %q", got)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := services.Wrap(nil, "save", "", "", errors.New("boom"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		marker   error
		terminal bool
	}{
		{services.ErrValidation, true},
		{services.ErrConfiguration, true},
		{services.ErrNotFound, true},
		{services.ErrExternalTool, false},
		{services.ErrTimeout, false},
		{services.ErrTransient, false},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "step", "op", "msg", nil)
		if got := services.IsTerminal(err); got != tc.terminal {
			t.Errorf("IsTerminal(%v) = %v, want %v", tc.marker, got, tc.terminal)
		}
	}
}
