package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/bridge"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommentResult is the outcome of a visitor comment operation. The forest
// reflects the operation even when persistence failed: the comment section
// is updated optimistically and a failed write becomes a non-blocking
// Notice instead of rolling the operation back.
type CommentResult struct {
	Forest  []forest.Comment `json:"forest"`
	Comment *forest.Comment  `json:"comment,omitempty"`
	Emit    bridge.Message   `json:"emit"`
	Notice  string           `json:"notice,omitempty"`
}

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos  *repository.Repositories
	events EventService
	log    zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, events EventService, log zerolog.Logger) *commentService {
	return &commentService{
		repos:  repos,
		events: events,
		log:    log.With().Str("service", "comment").Logger(),
	}
}

// PostComment adds a top-level visitor comment to an article's forest
func (s *commentService) PostComment(ctx context.Context, articleID, name, content string) (*CommentResult, error) {
	if errs := validation.ValidateCommentBody(content); len(errs) > 0 {
		return nil, fmt.Errorf("invalid comment: %s", validation.Errors(errs))
	}

	f, err := s.repos.Comment.GetForest(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment forest: %w", err)
	}

	c := forest.New(uuid.New().String(), name, content, time.Now())
	updated := forest.Prepend(f, c)

	result := &CommentResult{
		Forest:  updated,
		Comment: &c,
		Emit:    bridge.Interaction("comment"),
	}
	s.persist(ctx, articleID, updated, result)
	s.logEvent(ctx, articleID, models.EventComment, map[string]string{"comment_id": c.ID})
	return result, nil
}

// PostReply attaches a visitor reply beneath the comment whose ID matches
// parentID. An unmatched parent leaves the forest unchanged; the original
// treats that as a silent no-op, not an error.
func (s *commentService) PostReply(ctx context.Context, articleID, parentID, name, content string) (*CommentResult, error) {
	if errs := validation.ValidateCommentBody(content); len(errs) > 0 {
		return nil, fmt.Errorf("invalid reply: %s", validation.Errors(errs))
	}

	f, err := s.repos.Comment.GetForest(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment forest: %w", err)
	}

	reply := forest.New(uuid.New().String(), name, content, time.Now())
	updated := forest.AddReply(f, parentID, reply)

	result := &CommentResult{
		Forest:  updated,
		Comment: &reply,
		Emit:    bridge.Interaction("reply"),
	}
	if forest.Count(updated) == forest.Count(f) {
		s.log.Warn().
			Str("article_id", articleID).
			Str("parent_id", parentID).
			Msg("Reply parent not found, forest unchanged")
		result.Comment = nil
	}

	s.persist(ctx, articleID, updated, result)
	s.logEvent(ctx, articleID, models.EventReply, map[string]string{
		"comment_id": reply.ID,
		"parent_id":  parentID,
	})
	return result, nil
}

// Vote increments a comment's up or down counter. Repeat votes all count;
// the platform deliberately carries no per-participant vote tracking.
func (s *commentService) Vote(ctx context.Context, articleID, commentID string, kind forest.VoteKind) (*CommentResult, error) {
	f, err := s.repos.Comment.GetForest(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment forest: %w", err)
	}

	updated := forest.Vote(f, commentID, kind)

	result := &CommentResult{
		Forest: updated,
		Emit:   bridge.Interaction("vote"),
	}
	s.persist(ctx, articleID, updated, result)
	s.logEvent(ctx, articleID, models.EventVote, map[string]string{
		"comment_id": commentID,
		"direction":  string(kind),
	})
	return result, nil
}

// Remove deletes a comment and its reply subtree at any depth. Used by
// admin tooling only; the public flow never hard-deletes.
func (s *commentService) Remove(ctx context.Context, articleID, commentID string) error {
	f, err := s.repos.Comment.GetForest(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to load comment forest: %w", err)
	}

	updated := forest.Remove(f, commentID)
	if err := s.repos.Comment.SaveForest(ctx, articleID, updated); err != nil {
		return fmt.Errorf("failed to save comment forest: %w", err)
	}

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", commentID).
		Int("removed", forest.Count(f)-forest.Count(updated)).
		Msg("Comment removed")
	return nil
}

// persist writes the updated forest; a failure is downgraded to a notice
// on the result so the caller keeps the optimistic update
func (s *commentService) persist(ctx context.Context, articleID string, f []forest.Comment, result *CommentResult) {
	if err := s.repos.Comment.SaveForest(ctx, articleID, f); err != nil {
		s.log.Error().Err(err).Str("article_id", articleID).Msg("Failed to persist comment forest")
		result.Notice = "your comment could not be saved to the server"
	}
}

// logEvent appends an interaction event; logging failures never affect the
// comment operation itself
func (s *commentService) logEvent(ctx context.Context, articleID string, eventType models.EventType, payload map[string]string) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if _, err := s.events.Log(ctx, &models.EventRequest{
		ArticleID: articleID,
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		s.log.Warn().Err(err).Str("article_id", articleID).Msg("Failed to log interaction event")
	}
}
