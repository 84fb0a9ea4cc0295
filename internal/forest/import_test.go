package forest

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildSingleThread(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "a"},
		{ID: "2", Content: "b", ParentID: "1"},
	}

	f := Build(rows, testNow)

	if len(f) != 1 {
		t.Fatalf("Expected 1 top-level comment, got %d", len(f))
	}
	if f[0].ID != "default_0" {
		t.Errorf("Expected generated id default_0, got %s", f[0].ID)
	}
	if f[0].Content != "a" {
		t.Errorf("Expected content 'a', got %q", f[0].Content)
	}
	if len(f[0].Replies) != 1 {
		t.Fatalf("Expected 1 reply, got %d", len(f[0].Replies))
	}
	reply := f[0].Replies[0]
	if reply.ID != "default_0_0" {
		t.Errorf("Expected generated id default_0_0, got %s", reply.ID)
	}
	if reply.Content != "b" {
		t.Errorf("Expected content 'b', got %q", reply.Content)
	}
	if reply.ParentID != "default_0" {
		t.Errorf("Expected parentId to reference generated parent id, got %q", reply.ParentID)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	rows := []Row{
		{ID: "10", Content: "root a", WrittenAt: "2 days ago"},
		{ID: "20", Content: "root b", WrittenAt: "1 hour ago"},
		{ID: "11", ParentID: "10", Content: "reply", WrittenAt: "1 day ago"},
		{ID: "12", ParentID: "11", Content: "sub", WrittenAt: "today"},
	}

	first, _ := json.Marshal(Build(rows, testNow))
	second, _ := json.Marshal(Build(rows, testNow))

	if string(first) != string(second) {
		t.Errorf("Expected identical forests on re-import of the same rows")
	}
}

func TestBuildCapsDepthAtThreeLevels(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "level0"},
		{ID: "2", ParentID: "1", Content: "level1"},
		{ID: "3", ParentID: "2", Content: "level2"},
		{ID: "4", ParentID: "3", Content: "level3 dropped"},
	}

	f := Build(rows, testNow)

	if Count(f) != 3 {
		t.Errorf("Expected 3 nodes after depth capping, got %d", Count(f))
	}
	sub, ok := Find(f, "default_0_0_0")
	if !ok {
		t.Fatalf("Expected sub-reply present")
	}
	if len(sub.Replies) != 0 {
		t.Errorf("Expected 4th level dropped, sub-reply has %d replies", len(sub.Replies))
	}
}

func TestBuildSkipsEmptyRows(t *testing.T) {
	rows := []Row{
		{},
		{ID: " ", Content: "  ", WrittenAt: " "},
		{ID: "1", Content: "kept"},
	}

	f := Build(rows, testNow)

	if len(f) != 1 {
		t.Errorf("Expected only the non-empty row imported, got %d roots", len(f))
	}
}

func TestBuildMissingContentImportsEmptyBody(t *testing.T) {
	rows := []Row{
		{ID: "1", Name: "Ada", WrittenAt: "1 day ago"},
	}

	f := Build(rows, testNow)

	if len(f) != 1 {
		t.Fatalf("Expected row with missing content to import, got %d roots", len(f))
	}
	if f[0].Content != "" {
		t.Errorf("Expected empty body, got %q", f[0].Content)
	}
}

func TestBuildDanglingParentIsDropped(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "root"},
		{ID: "2", ParentID: "999", Content: "orphan"},
	}

	f := Build(rows, testNow)

	if Count(f) != 1 {
		t.Errorf("Expected orphan row not attached, got %d nodes", Count(f))
	}
}

func TestBuildNormalizesRelativeDates(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "a", WrittenAt: "2 days ago"},
	}

	f := Build(rows, testNow)

	want := testNow.Add(-48 * time.Hour)
	diff := f[0].CreatedAt.Sub(want)
	if diff < -time.Second || diff > time.Second {
		t.Errorf("Expected createdAt within 1s of now-48h, got %v", f[0].CreatedAt)
	}
	if f[0].DatePosted != "2 days ago" {
		t.Errorf("Expected literal label preserved, got %q", f[0].DatePosted)
	}
}

func TestNormalizeWrittenAt(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", testNow},
		{"today", testNow},
		{"Today", testNow},
		{"1 hour ago", testNow.Add(-time.Hour)},
		{"5 hours ago", testNow.Add(-5 * time.Hour)},
		{"1 day ago", testNow.Add(-24 * time.Hour)},
		{"3 days ago", testNow.Add(-72 * time.Hour)},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00Z", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"not a date at all", testNow},
	}

	for _, tt := range tests {
		got := normalizeWrittenAt(tt.in, testNow)
		if !got.Equal(tt.want) {
			t.Errorf("normalizeWrittenAt(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildParsesVoteCounts(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "a", RanksUp: "12", RanksDown: "3"},
		{ID: "2", Content: "b", RanksUp: "-4", RanksDown: "junk"},
	}

	f := Build(rows, testNow)

	up, _ := Find(f, "default_0")
	if up.Upvotes != 12 || up.Downvotes != 3 {
		t.Errorf("Expected 12/3 counters, got %d/%d", up.Upvotes, up.Downvotes)
	}
	bad, _ := Find(f, "default_1")
	if bad.Upvotes != 0 || bad.Downvotes != 0 {
		t.Errorf("Expected bad counters defaulted to zero, got %d/%d", bad.Upvotes, bad.Downvotes)
	}
}

func TestBuildSortsNewestFirstRecursively(t *testing.T) {
	rows := []Row{
		{ID: "1", Content: "old root", WrittenAt: "3 days ago"},
		{ID: "2", Content: "new root", WrittenAt: "1 hour ago"},
		{ID: "3", ParentID: "1", Content: "old reply", WrittenAt: "2 days ago"},
		{ID: "4", ParentID: "1", Content: "new reply", WrittenAt: "1 day ago"},
	}

	f := Build(rows, testNow)

	if f[0].Content != "new root" {
		t.Errorf("Expected newest root first, got %q", f[0].Content)
	}
	old := f[1]
	if len(old.Replies) != 2 {
		t.Fatalf("Expected 2 replies on old root, got %d", len(old.Replies))
	}
	if old.Replies[0].Content != "new reply" {
		t.Errorf("Expected newest reply first, got %q", old.Replies[0].Content)
	}
	// Invariant: each element's createdAt >= the next element's
	for i := 0; i+1 < len(old.Replies); i++ {
		if old.Replies[i].CreatedAt.Before(old.Replies[i+1].CreatedAt) {
			t.Errorf("Reply list not sorted descending at index %d", i)
		}
	}
}
