package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 50, MaxLimit},
	}
	for _, c := range cases {
		if got := NormalizeLimit(c.in); got != c.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Errorf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	orig := Cursor{
		CreatedAt: time.Date(2024, time.March, 3, 12, 30, 45, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	token := EncodeCursor(orig)
	parsed, err := ParseCursor(token)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("created at mismatch: got %v, want %v", parsed.CreatedAt, orig.CreatedAt)
	}
	if parsed.ID != orig.ID {
		t.Errorf("id mismatch: got %s, want %s", parsed.ID, orig.ID)
	}
}

func TestParseCursorEdgeCases(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Errorf("blank cursor: got (%v, %v), want (nil, nil)", c, err)
	}
	if _, err := ParseCursor("!!not-base64!!"); err == nil {
		t.Error("expected error for malformed encoding")
	}
	if _, err := ParseCursor("bm8tc2VwYXJhdG9y"); err == nil {
		t.Error("expected error for missing separator")
	}
}
