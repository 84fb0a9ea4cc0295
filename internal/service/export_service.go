package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/rs/zerolog"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// eventCSVHeader is the column order for interaction event exports
var eventCSVHeader = []string{"id", "study_id", "article_id", "response_id", "event_type", "payload", "created_at"}

// StreamEvents streams interaction events in the specified format. With
// both filters empty every event is exported; a responseID narrows the
// export to one participant, a studyID to one study.
func (s *exportService) StreamEvents(ctx context.Context, w http.ResponseWriter, studyID, responseID, format string) error {
	s.log.Info().
		Str("study_id", studyID).
		Str("response_id", responseID).
		Str("format", format).
		Msg("Starting events export")

	switch format {
	case "csv":
		return s.streamEventsCSV(ctx, w, studyID, responseID)
	case "ndjson":
		return s.streamEventsNDJSON(ctx, w, studyID, responseID)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// stream selects the event source for the requested filter
func (s *exportService) stream(ctx context.Context, studyID, responseID string, callback func(*models.InteractionEvent) error) error {
	if responseID != "" {
		return s.repos.Event.StreamByResponse(ctx, responseID, callback)
	}
	return s.repos.Event.Stream(ctx, studyID, callback)
}

func (s *exportService) streamEventsCSV(ctx context.Context, w http.ResponseWriter, studyID, responseID string) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=events.csv")

	writer := csv.NewWriter(w)
	if err := writer.Write(eventCSVHeader); err != nil {
		return err
	}

	count := 0
	err := s.stream(ctx, studyID, responseID, func(event *models.InteractionEvent) error {
		record := []string{
			event.ID, event.StudyID, event.ArticleID, event.ResponseID,
			string(event.EventType), string(event.Payload),
			event.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		count++
		if count%100 == 0 {
			writer.Flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	s.log.Info().Int("count", count).Msg("Events export completed")
	return writer.Error()
}

func (s *exportService) streamEventsNDJSON(ctx context.Context, w http.ResponseWriter, studyID, responseID string) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=events.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.stream(ctx, studyID, responseID, func(event *models.InteractionEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Events export completed")
	return err
}

// MergeQualtrics joins an uploaded Qualtrics responses CSV with the stored
// interaction events by response ID and streams the merged CSV. Each event
// row gains the matching survey response's columns under a qualtrics_
// prefix plus a _match_status column (matched, no_qualtrics_id,
// qualtrics_id_not_found).
func (s *exportService) MergeQualtrics(ctx context.Context, w http.ResponseWriter, responsesCSV io.Reader) error {
	headers, responses, err := readQualtricsCSV(responsesCSV)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrImportFailed, err)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=events_merged.csv")

	writer := csv.NewWriter(w)

	merged := make([]string, 0, len(eventCSVHeader)+len(headers)+1)
	merged = append(merged, eventCSVHeader...)
	for _, h := range headers {
		merged = append(merged, "qualtrics_"+h)
	}
	merged = append(merged, "_match_status")
	if err := writer.Write(merged); err != nil {
		return err
	}

	matched, unmatched := 0, 0
	err = s.repos.Event.Stream(ctx, "", func(event *models.InteractionEvent) error {
		record := []string{
			event.ID, event.StudyID, event.ArticleID, event.ResponseID,
			string(event.EventType), string(event.Payload),
			event.CreatedAt.Format(time.RFC3339),
		}

		status := "matched"
		response, ok := responses[event.ResponseID]
		switch {
		case event.ResponseID == "":
			status = "no_qualtrics_id"
		case !ok:
			status = "qualtrics_id_not_found"
		}
		if status == "matched" {
			matched++
		} else {
			unmatched++
			response = make([]string, len(headers))
		}

		record = append(record, response...)
		record = append(record, status)
		return writer.Write(record)
	})
	if err != nil {
		return err
	}

	writer.Flush()
	s.log.Info().
		Int("matched", matched).
		Int("unmatched", unmatched).
		Msg("Qualtrics merge export completed")
	return writer.Error()
}

// readQualtricsCSV reads a Qualtrics responses export. These files carry
// three header rows (column names, human-readable labels, import IDs)
// before the data; only the first names the columns. Returns the column
// names and a map of ResponseId to row, rows padded to the header width.
func readQualtricsCSV(r io.Reader) ([]string, map[string][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Qualtrics header: %w", err)
	}

	responseIdx := -1
	for i, h := range headers {
		if strings.TrimSpace(h) == "ResponseId" {
			responseIdx = i
			break
		}
	}
	if responseIdx < 0 {
		return nil, nil, fmt.Errorf("ResponseId column not found in Qualtrics CSV")
	}

	// Skip the label and import-ID header rows
	for i := 0; i < 2; i++ {
		if _, err := reader.Read(); err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("failed to read Qualtrics header rows: %w", err)
		}
	}

	responses := make(map[string][]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read Qualtrics record: %w", err)
		}
		if len(row) <= responseIdx {
			continue
		}
		id := strings.TrimSpace(row[responseIdx])
		if id == "" {
			continue
		}

		padded := make([]string, len(headers))
		copy(padded, row)
		responses[id] = padded
	}
	return headers, responses, nil
}

// GetCounts returns entity counts for the metrics endpoint
func (s *exportService) GetCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	articles, err := s.repos.Article.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["articles"] = articles

	studies, err := s.repos.Study.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["studies"] = studies

	events, err := s.repos.Event.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["events"] = events

	byType, err := s.repos.Event.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	for eventType, n := range byType {
		counts["events_"+eventType] = n
	}

	return counts, nil
}
