package forest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Row is one flat record from a default-comment CSV file. All fields are
// kept as strings; normalization happens during Build.
type Row struct {
	ID        string
	ParentID  string
	Name      string
	Content   string
	WrittenAt string
	RanksUp   string
	RanksDown string
}

// IsEmpty reports whether every field of the row is blank after trimming.
// Fully empty rows are skipped during import.
func (r Row) IsEmpty() bool {
	return strings.TrimSpace(r.ID) == "" &&
		strings.TrimSpace(r.ParentID) == "" &&
		strings.TrimSpace(r.Name) == "" &&
		strings.TrimSpace(r.Content) == "" &&
		strings.TrimSpace(r.WrittenAt) == "" &&
		strings.TrimSpace(r.RanksUp) == "" &&
		strings.TrimSpace(r.RanksDown) == ""
}

// DefaultIDPrefix is the prefix of every generated default-comment ID.
const DefaultIDPrefix = "default"

var relativeDateRe = regexp.MustCompile(`^(\d+)\s+(hour|day)s?\s+ago$`)

// dateLayouts are tried in order when a written_at value is neither
// relative nor empty.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
}

// Build constructs a comment forest from flat tabular rows.
//
// Rows with an empty parent_id become top-level comments; the rest are
// grouped by parent_id and attached beneath the row carrying that source
// id, to at most MaxDepth levels. Rows that would land deeper are dropped.
// Every accepted row gets a deterministic generated ID encoding its
// sibling path from the root ("default_3", "default_3_1", ...), so
// re-importing the same file reproduces the same IDs. Relative written_at
// labels are converted to absolute timestamps against now while the raw
// label is kept for display. The result is sorted newest-first at every
// level. Build never fails: malformed individual values fall back to
// defaults rather than erroring.
func Build(rows []Row, now time.Time) []Comment {
	var roots []Row
	children := make(map[string][]Row)
	for _, r := range rows {
		if r.IsEmpty() {
			continue
		}
		if strings.TrimSpace(r.ParentID) == "" {
			roots = append(roots, r)
		} else {
			pid := strings.TrimSpace(r.ParentID)
			children[pid] = append(children[pid], r)
		}
	}

	out := make([]Comment, 0, len(roots))
	for i, r := range roots {
		out = append(out, buildNode(r, children, 0, strconv.Itoa(i), "", now))
	}
	return SortByNewest(out)
}

// buildNode converts one row into a comment and recursively attaches the
// rows that reference its source id, as long as the next level still fits
// within MaxDepth.
func buildNode(r Row, children map[string][]Row, level int, path, parentID string, now time.Time) Comment {
	id := DefaultIDPrefix + "_" + path
	c := Comment{
		ID:         id,
		Name:       displayName(r.Name),
		Content:    strings.TrimSpace(r.Content),
		DatePosted: postedLabel(r.WrittenAt),
		CreatedAt:  normalizeWrittenAt(r.WrittenAt, now),
		Upvotes:    parseCount(r.RanksUp),
		Downvotes:  parseCount(r.RanksDown),
		ParentID:   parentID,
		Replies:    []Comment{},
	}

	if level+1 < MaxDepth {
		for i, child := range children[strings.TrimSpace(r.ID)] {
			c.Replies = append(c.Replies, buildNode(child, children, level+1, path+"_"+strconv.Itoa(i), id, now))
		}
	}
	return c
}

func displayName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnonymousName
	}
	return s
}

// postedLabel preserves the raw written_at label for display, decoupled
// from the normalized timestamp used for sorting.
func postedLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "today"
	}
	return s
}

// normalizeWrittenAt converts a written_at value to an absolute timestamp.
// "N hour(s)/day(s) ago" subtracts from now, "today" and blank map to now,
// anything else is tried against known date layouts, and unparseable
// values fall back to now.
func normalizeWrittenAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if lower == "" || lower == "today" {
		return now
	}

	if m := relativeDateRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return now
		}
		switch m[2] {
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour)
		case "day":
			return now.Add(-time.Duration(n) * 24 * time.Hour)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// parseCount parses a vote counter; bad or negative input counts as zero.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
