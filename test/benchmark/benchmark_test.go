package benchmark

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/mocks"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

// wideForest builds n top-level comments, each with one reply
func wideForest(n int) []forest.Comment {
	now := time.Now()
	f := make([]forest.Comment, 0, n)
	for i := 0; i < n; i++ {
		id := "c" + strconv.Itoa(i)
		c := forest.New(id, "User "+strconv.Itoa(i), "Comment body.", now)
		c.Replies = []forest.Comment{forest.New(id+"-r", "Replier", "Reply body.", now)}
		f = append(f, c)
	}
	return f
}

// BenchmarkAddReply measures reply attachment against a worst-case parent
// at the far end of the forest
func BenchmarkAddReply(b *testing.B) {
	f := wideForest(1000)
	reply := forest.New("new-reply", "Bench", "Benchmark reply.", time.Now())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		forest.AddReply(f, "c999", reply)
	}
}

// BenchmarkRemove measures subtree removal from a large forest
func BenchmarkRemove(b *testing.B) {
	f := wideForest(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		forest.Remove(f, "c500")
	}
}

// BenchmarkBuildFromRows measures CSV-row forest construction
func BenchmarkBuildFromRows(b *testing.B) {
	rows := make([]forest.Row, 0, 1000)
	for i := 0; i < 1000; i++ {
		rows = append(rows, forest.Row{
			ID:        strconv.Itoa(i),
			Name:      "User " + strconv.Itoa(i),
			Content:   "Imported comment body.",
			WrittenAt: "2 hours ago",
		})
	}
	// Every tenth row replies to the one before it
	for i := 1; i < 1000; i += 10 {
		rows[i].ParentID = strconv.Itoa(i - 1)
	}
	now := time.Now()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		forest.Build(rows, now)
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkSortByNewest measures recursive forest sorting
func BenchmarkSortByNewest(b *testing.B) {
	f := wideForest(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		forest.SortByNewest(f)
	}
}

// BenchmarkStreamEvents measures event export streaming throughput
func BenchmarkStreamEvents(b *testing.B) {
	repo := mocks.NewMockEventRepo()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		repo.Append(context.Background(), &models.InteractionEvent{
			ID:         "evt-" + strconv.Itoa(i),
			ArticleID:  "article-1",
			ResponseID: "R_" + strconv.Itoa(i),
			EventType:  models.EventClick,
			CreatedAt:  now,
		})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		count := 0
		repo.Stream(context.Background(), "", func(event *models.InteractionEvent) error {
			count++
			return nil
		})
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
