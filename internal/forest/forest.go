// Package forest implements the nested comment model used to render and
// mutate an article's comment section. A forest is an ordered list of
// top-level comments, each carrying up to two further levels of replies
// (comment, reply, sub-reply). All mutations return a structural copy so
// callers can treat forests as immutable values.
package forest

import (
	"sort"
	"time"
)

// MaxDepth is the total number of nesting levels a forest may hold.
// Level 0 is a top-level comment, level 1 a reply, level 2 a sub-reply.
const MaxDepth = 3

// AnonymousName is the display name used when a commenter gives none.
const AnonymousName = "Anonymous"

// Comment is a single node in an article's comment forest.
type Comment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	DatePosted string    `json:"datePosted"`
	CreatedAt  time.Time `json:"createdAt"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	ParentID   string    `json:"parentId,omitempty"`
	Replies    []Comment `json:"replies"`
}

// VoteKind selects which counter a vote increments.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

// New builds a comment with defaults applied once at construction:
// blank names become Anonymous and the posted label defaults to "Just now".
// Counters start at zero and the reply list starts empty.
func New(id, name, content string, now time.Time) Comment {
	if name == "" {
		name = AnonymousName
	}
	return Comment{
		ID:         id,
		Name:       name,
		Content:    content,
		DatePosted: "Just now",
		CreatedAt:  now,
		Replies:    []Comment{},
	}
}

// Prepend adds a top-level comment at the head of the forest so the
// newest comment renders first. It always succeeds.
func Prepend(f []Comment, c Comment) []Comment {
	out := make([]Comment, 0, len(f)+1)
	out = append(out, c)
	out = append(out, f...)
	return out
}

// AddReply attaches reply to the head of the replies of the node whose ID
// matches parentID, wherever that node lives in the forest. The first match
// in depth-first order wins. If no node matches, the forest is returned
// unchanged; an unmatched parent is not an error.
func AddReply(f []Comment, parentID string, reply Comment) []Comment {
	out, _ := addReply(f, parentID, reply)
	return out
}

func addReply(f []Comment, parentID string, reply Comment) ([]Comment, bool) {
	out := make([]Comment, 0, len(f))
	attached := false
	for _, node := range f {
		if !attached && node.ID == parentID {
			reply.ParentID = node.ID
			node.Replies = Prepend(node.Replies, reply)
			attached = true
		} else if !attached {
			node.Replies, attached = addReply(node.Replies, parentID, reply)
		}
		out = append(out, node)
	}
	return out, attached
}

// Remove filters out the node whose ID matches id at whatever depth it
// lives. The node's entire reply subtree travels with it. A missing id is
// a no-op.
func Remove(f []Comment, id string) []Comment {
	out := make([]Comment, 0, len(f))
	for _, node := range f {
		if node.ID == id {
			continue
		}
		node.Replies = Remove(node.Replies, id)
		out = append(out, node)
	}
	return out
}

// Vote increments the up or down counter of the node whose ID matches id.
// Counters only ever grow; repeat votes from the same visitor all count.
// A missing id is a no-op.
func Vote(f []Comment, id string, kind VoteKind) []Comment {
	out := make([]Comment, 0, len(f))
	for _, node := range f {
		if node.ID == id {
			switch kind {
			case VoteDown:
				node.Downvotes++
			default:
				node.Upvotes++
			}
		} else {
			node.Replies = Vote(node.Replies, id, kind)
		}
		out = append(out, node)
	}
	return out
}

// Find returns the first node in depth-first order whose ID matches id.
func Find(f []Comment, id string) (*Comment, bool) {
	for i := range f {
		if f[i].ID == id {
			return &f[i], true
		}
		if c, ok := Find(f[i].Replies, id); ok {
			return c, true
		}
	}
	return nil, false
}

// Count returns the total number of nodes in the forest, replies included.
func Count(f []Comment) int {
	n := 0
	for i := range f {
		n += 1 + Count(f[i].Replies)
	}
	return n
}

// SortByNewest orders the forest, and every reply list within it,
// descending by CreatedAt. The sort is stable so equal timestamps keep
// their input order.
func SortByNewest(f []Comment) []Comment {
	out := make([]Comment, len(f))
	copy(out, f)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	for i := range out {
		out[i].Replies = SortByNewest(out[i].Replies)
	}
	return out
}
