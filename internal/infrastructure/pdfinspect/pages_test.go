package pdfinspect

import (
	"context"
	"strings"
	"testing"
)

func TestReconcileFallsBackToFormFeedSplit(t *testing.T) {
	reconciler := NewReconciler()
	raw := []byte("%PDF-1.7\nnot parseable")

	pages := reconciler.Reconcile(context.Background(), raw, 3, "first page\fsecond page\fthird page")
	if len(pages) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(pages))
	}
	for i, page := range pages {
		if page.PageNum != i+1 {
			t.Fatalf("entry %d has page number %d", i, page.PageNum)
		}
		if !page.HasContent {
			t.Fatalf("page %d should have content", page.PageNum)
		}
	}
}

func TestReconcileAlwaysMatchesDeclaredPageCount(t *testing.T) {
	reconciler := NewReconciler()
	raw := []byte("garbage bytes")

	cases := []struct {
		fullText string
		numPages int
	}{
		{"", 1},
		{"only one segment", 4},
		{"a\fb\fc\fd\fe\ff", 2},
		{strings.Repeat("x\f", 30), 5},
	}
	for _, tc := range cases {
		pages := reconciler.Reconcile(context.Background(), raw, tc.numPages, tc.fullText)
		if len(pages) != tc.numPages {
			t.Fatalf("numPages=%d text=%q: got %d entries", tc.numPages, tc.fullText, len(pages))
		}
	}
}

func TestReconcileZeroPages(t *testing.T) {
	pages := NewReconciler().Reconcile(context.Background(), nil, 0, "text")
	if len(pages) != 0 {
		t.Fatalf("expected empty slice, got %d entries", len(pages))
	}
}

func TestSplitByFormFeedPadsAndFolds(t *testing.T) {
	pages := splitByFormFeed("one\ftwo", 4)
	if len(pages) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(pages))
	}
	if !pages[0].HasContent || !pages[1].HasContent {
		t.Fatalf("first two pages must have content")
	}
	if pages[2].HasContent || pages[3].HasContent {
		t.Fatalf("padded pages must be empty")
	}

	pages = splitByFormFeed("a\fb\fc\fd", 2)
	if len(pages) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(pages))
	}
	if pages[1].TextLength < 3 {
		t.Fatalf("extra segments must fold into the last page, got length %d", pages[1].TextLength)
	}
}

func TestTextLengthCountsRunes(t *testing.T) {
	if got := textLength("  olá  "); got != 3 {
		t.Fatalf("expected 3 runes, got %d", got)
	}
	if got := textLength(" \t\n "); got != 0 {
		t.Fatalf("whitespace-only text must count as empty, got %d", got)
	}
}
