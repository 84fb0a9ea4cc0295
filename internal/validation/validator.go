package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// MaxCommentWords is the maximum allowed words in a submitted comment body
const MaxCommentWords = 500

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error renders all errors in a list as one message
func Errors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateArticle validates an admin article payload
func ValidateArticle(req *models.ArticleRequest) []ValidationError {
	var errors []ValidationError

	if req.Slug == "" {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(req.Slug) {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: req.Slug})
	}

	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	for i, a := range req.Annotations {
		if !models.ValidAnnotationTypes[a.Type] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("annotations[%d].type", i),
				Message: "annotation type must be one of: theme, summary",
				Value:   a.Type,
			})
		}
		if strings.TrimSpace(a.Text) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("annotations[%d].text", i),
				Message: "annotation text is required",
			})
		}
	}

	return errors
}

// ValidateStudy validates an admin study payload
func ValidateStudy(req *models.StudyRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}

	for i, id := range req.ArticleIDs {
		if strings.TrimSpace(id) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("article_ids[%d]", i),
				Message: "article id must not be empty",
			})
		}
	}

	return errors
}

// ValidateEvent validates a public interaction event payload
func ValidateEvent(req *models.EventRequest) []ValidationError {
	var errors []ValidationError

	if req.EventType == "" {
		errors = append(errors, ValidationError{Field: "event_type", Message: "event_type is required"})
	} else if !models.ValidEventTypes[req.EventType] {
		errors = append(errors, ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of: click, vote, comment, reply, page_view, time_spent",
			Value:   string(req.EventType),
		})
	}

	return errors
}

// ValidateCommentBody validates a visitor comment submission. The body is
// required and non-empty after trimming; the display name is optional and
// defaults elsewhere.
func ValidateCommentBody(content string) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
		return errors
	}

	wordCount := len(strings.Fields(content))
	if wordCount > MaxCommentWords {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d words (has %d)", MaxCommentWords, wordCount),
		})
	}

	return errors
}

// RequiredCSVColumns are the headers a default-comment CSV must carry.
// "comment" and "content" are interchangeable for the body column.
var RequiredCSVColumns = []string{"id", "parent_id", "user_id", "written_at"}

// ValidateCSVHeader checks that a default-comment CSV header carries every
// required column plus a body column. The header map is lowercased
// column name -> index.
func ValidateCSVHeader(header map[string]int) error {
	for _, col := range RequiredCSVColumns {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}
	if _, ok := header["comment"]; !ok {
		if _, ok := header["content"]; !ok {
			return fmt.Errorf("missing required column %q (or %q)", "comment", "content")
		}
	}
	return nil
}
