package models

import (
	"encoding/json"
	"time"
)

// EventType classifies a recorded participant interaction
type EventType string

const (
	EventClick     EventType = "click"
	EventVote      EventType = "vote"
	EventComment   EventType = "comment"
	EventReply     EventType = "reply"
	EventPageView  EventType = "page_view"
	EventTimeSpent EventType = "time_spent"
)

// ValidEventTypes defines allowed interaction event types
var ValidEventTypes = map[EventType]bool{
	EventClick:     true,
	EventVote:      true,
	EventComment:   true,
	EventReply:     true,
	EventPageView:  true,
	EventTimeSpent: true,
}

// InteractionEvent is one logged participant interaction. ResponseID is
// the Qualtrics response identifier handed over by the embedding survey
// page; it is how exported events are joined back to survey responses.
type InteractionEvent struct {
	ID         string          `json:"id" db:"id"`
	StudyID    string          `json:"study_id,omitempty" db:"study_id"`
	ArticleID  string          `json:"article_id,omitempty" db:"article_id"`
	ResponseID string          `json:"response_id,omitempty" db:"response_id"`
	EventType  EventType       `json:"event_type" db:"event_type"`
	Payload    json.RawMessage `json:"payload,omitempty" db:"payload"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// EventRequest is the public payload for logging an interaction
type EventRequest struct {
	StudyID    string          `json:"study_id"`
	ArticleID  string          `json:"article_id"`
	ResponseID string          `json:"response_id"`
	EventType  EventType       `json:"event_type"`
	Payload    json.RawMessage `json:"payload"`
}
