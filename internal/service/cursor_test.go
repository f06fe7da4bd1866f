package service

import (
	"errors"
	"testing"
	"time"

	"waypost/internal/model"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPageSize},
		{-5, DefaultPageSize},
		{1, 1},
		{50, 50},
		{MaxPageSize, MaxPageSize},
		{MaxPageSize + 1, MaxPageSize},
		{100000, MaxPageSize},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 7, 4, 16, 30, 0, 123456789, time.UTC)

	encoded := encodeCursor(&at)
	if encoded == nil {
		t.Fatal("encodeCursor returned nil for a real timestamp")
	}
	decoded, err := parseCursor(*encoded)
	if err != nil {
		t.Fatalf("parseCursor() error = %v", err)
	}
	if !decoded.Equal(at) {
		t.Errorf("round trip = %v, want %v (nanoseconds must survive)", decoded, at)
	}
}

func TestParseCursor_Empty(t *testing.T) {
	cursor, err := parseCursor("")
	if err != nil {
		t.Fatalf("parseCursor(\"\") error = %v", err)
	}
	if cursor != nil {
		t.Error("empty cursor decodes to nil")
	}
}

func TestParseCursor_Malformed(t *testing.T) {
	for _, raw := range []string{"yesterday", "1693526400", "2026-13-99"} {
		if _, err := parseCursor(raw); !errors.Is(err, model.ErrValidation) {
			t.Errorf("parseCursor(%q) error = %v, want ErrValidation", raw, err)
		}
	}
}

func TestEncodeCursor_Nil(t *testing.T) {
	if encodeCursor(nil) != nil {
		t.Error("nil time encodes to nil cursor")
	}
}
