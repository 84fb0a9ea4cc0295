package repository

import (
	"context"
	"database/sql"

	"github.com/engagingnewsproject/article-experiment-api/internal/database"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

// eventRepo is the concrete implementation of EventRepository
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new interaction event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

const eventColumns = `id, study_id, article_id, response_id, event_type, payload, created_at`

// Append inserts one interaction event. Events are append-only.
func (r *eventRepo) Append(ctx context.Context, event *models.InteractionEvent) error {
	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	query := `
		INSERT INTO interaction_events (id, study_id, article_id, response_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, nullable(event.StudyID), nullable(event.ArticleID),
		event.ResponseID, string(event.EventType), []byte(payload), event.CreatedAt,
	)
	return err
}

// Count returns the total number of logged events
func (r *eventRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interaction_events`).Scan(&count)
	return count, err
}

// CountByType returns event counts grouped by event type
func (r *eventRepo) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_type, COUNT(*) FROM interaction_events GROUP BY event_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		counts[eventType] = count
	}
	return counts, rows.Err()
}

// Stream walks events oldest-first for export. An empty studyID streams
// every event.
func (r *eventRepo) Stream(ctx context.Context, studyID string, callback func(*models.InteractionEvent) error) error {
	query := `SELECT ` + eventColumns + ` FROM interaction_events ORDER BY created_at`
	args := []interface{}{}
	if studyID != "" {
		query = `SELECT ` + eventColumns + ` FROM interaction_events WHERE study_id = $1 ORDER BY created_at`
		args = append(args, studyID)
	}
	return r.stream(ctx, query, args, callback)
}

// StreamByResponse walks one participant's events oldest-first
func (r *eventRepo) StreamByResponse(ctx context.Context, responseID string, callback func(*models.InteractionEvent) error) error {
	query := `SELECT ` + eventColumns + ` FROM interaction_events WHERE response_id = $1 ORDER BY created_at`
	return r.stream(ctx, query, []interface{}{responseID}, callback)
}

func (r *eventRepo) stream(ctx context.Context, query string, args []interface{}, callback func(*models.InteractionEvent) error) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.InteractionEvent
		var studyID, articleID sql.NullString
		var eventType string
		var payload []byte

		err := rows.Scan(
			&event.ID, &studyID, &articleID, &event.ResponseID,
			&eventType, &payload, &event.CreatedAt,
		)
		if err != nil {
			return err
		}
		event.StudyID = studyID.String
		event.ArticleID = articleID.String
		event.EventType = models.EventType(eventType)
		event.Payload = payload

		if err := callback(&event); err != nil {
			return err
		}
	}
	return rows.Err()
}

// nullable maps empty strings to SQL NULL for optional UUID columns
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
