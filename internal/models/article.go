package models

import (
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/bridge"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
)

// Article represents a simulated news article shown to study participants
type Article struct {
	ID              string           `json:"id" db:"id"`
	Slug            string           `json:"slug" db:"slug"`
	Title           string           `json:"title" db:"title"`
	Content         string           `json:"content" db:"content"`
	Author          string           `json:"author" db:"author"`
	PubDate         string           `json:"pub_date" db:"pub_date"`
	SiteName        string           `json:"site_name" db:"site_name"`
	Annotations     []Annotation     `json:"annotations" db:"-"`
	CommentsDisplay bool             `json:"comments_display" db:"comments_display"`
	DefaultComments []forest.Comment `json:"default_comments" db:"-"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// Annotation is a theme or summary note attached to an article
type Annotation struct {
	Type string `json:"type"` // "theme" or "summary"
	Text string `json:"text"`
}

// ValidAnnotationTypes defines allowed annotation types
var ValidAnnotationTypes = map[string]bool{
	"theme":   true,
	"summary": true,
}

// ArticleRequest is the admin payload for creating or updating an article
type ArticleRequest struct {
	Slug            string       `json:"slug"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	Author          string       `json:"author"`
	PubDate         string       `json:"pub_date"`
	SiteName        string       `json:"site_name"`
	Annotations     []Annotation `json:"annotations"`
	CommentsDisplay bool         `json:"comments_display"`
}

// ArticleView is the public rendering payload: the article plus its merged
// comment forest (default comments seeded by an admin and participant
// comments, newest first). Comments is empty when comments_display is off.
// Emit carries the bridge message the front-end should post to the
// embedding survey page on load.
type ArticleView struct {
	Article
	Comments []forest.Comment `json:"comments"`
	Emit     bridge.Message   `json:"emit"`
}
