package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// eventService is the concrete implementation of EventService. The
// initialized flag is explicit state on the service, set once at
// construction, rather than an ambient global; LogPageViewOnce uses it
// together with the seen set to record each session's first page view
// exactly once.
type eventService struct {
	repo        repository.EventRepository
	log         zerolog.Logger
	initialized bool

	mu   sync.Mutex
	seen map[string]bool // response_id+article_id pairs already page-view logged
}

// newEventService creates a new EventService
func newEventService(repo repository.EventRepository, log zerolog.Logger) *eventService {
	return &eventService{
		repo:        repo,
		log:         log.With().Str("service", "event").Logger(),
		initialized: true,
		seen:        make(map[string]bool),
	}
}

// Log appends one interaction event
func (s *eventService) Log(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, error) {
	if !s.initialized {
		return nil, fmt.Errorf("event service not initialized")
	}
	if errs := validation.ValidateEvent(req); len(errs) > 0 {
		return nil, fmt.Errorf("invalid event: %s", validation.Errors(errs))
	}

	event := &models.InteractionEvent{
		ID:         uuid.New().String(),
		StudyID:    req.StudyID,
		ArticleID:  req.ArticleID,
		ResponseID: req.ResponseID,
		EventType:  req.EventType,
		Payload:    req.Payload,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	s.log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("article_id", event.ArticleID).
		Msg("Interaction logged")
	return event, nil
}

// LogPageViewOnce records a page view for a participant/article pair at
// most once per service lifetime. The bool reports whether an event was
// actually written.
func (s *eventService) LogPageViewOnce(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, bool, error) {
	key := req.ResponseID + "|" + req.ArticleID

	s.mu.Lock()
	if s.seen[key] {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.seen[key] = true
	s.mu.Unlock()

	req.EventType = models.EventPageView
	event, err := s.Log(ctx, req)
	if err != nil {
		// Allow a retry after a failed write
		s.mu.Lock()
		delete(s.seen, key)
		s.mu.Unlock()
		return nil, false, err
	}
	return event, true, nil
}
