package history

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conversions := []Conversion{
		{Kind: "image", SourcePath: "/uploads/a.png", OutputPath: "/outputs/a_ascii.txt", Width: 80},
		{Kind: "video", SourcePath: "/uploads/b.mp4", OutputPath: "/outputs/b_howto.txt", Width: 120, Color: true},
		{Kind: "image", SourcePath: "/uploads/c.jpg", OutputPath: "/outputs/c_ascii.txt", Width: 40},
	}
	for _, c := range conversions {
		if err := s.Record(ctx, c); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d conversions, want 3", len(recent))
	}

	// Newest first.
	if recent[0].SourcePath != "/uploads/c.jpg" {
		t.Errorf("first entry = %s, want newest", recent[0].SourcePath)
	}
	if !recent[1].Color {
		t.Error("video entry lost its color flag")
	}
	if recent[2].Width != 80 {
		t.Errorf("oldest entry width = %d, want 80", recent[2].Width)
	}
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, Conversion{Kind: "image", SourcePath: "x", OutputPath: "y", Width: 10}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d conversions, want 2", len(recent))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := newTestStore(t)

	recent, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("got %d conversions from empty store", len(recent))
	}
}
