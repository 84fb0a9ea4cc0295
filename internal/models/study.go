package models

import (
	"encoding/json"
	"time"
)

// Study represents one research study: a Qualtrics survey embedding a set
// of articles under some condition configuration
type Study struct {
	ID                string          `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Description       string          `json:"description" db:"description"`
	QualtricsSurveyID string          `json:"qualtrics_survey_id" db:"qualtrics_survey_id"`
	ArticleIDs        []string        `json:"article_ids" db:"-"`
	ConditionConfig   json.RawMessage `json:"condition_config" db:"condition_config"`
	Active            bool            `json:"active" db:"active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// StudyRequest is the admin payload for creating or updating a study
type StudyRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	QualtricsSurveyID string          `json:"qualtrics_survey_id"`
	ArticleIDs        []string        `json:"article_ids"`
	ConditionConfig   json.RawMessage `json:"condition_config"`
	Active            bool            `json:"active"`
}
