package music

import (
	"context"
	"fmt"
	"strings"
)

// Mock implements Recommender without network access. Used when
// Spotify credentials are absent and in tests.
type Mock struct {
	// RecommendFunc overrides the canned response when set.
	RecommendFunc func(ctx context.Context, emotion string, limit int) ([]Track, error)

	// SearchFunc overrides the canned response when set.
	SearchFunc func(ctx context.Context, query string, limit int) ([]Track, error)
}

// NewMock creates a mock recommender with canned responses.
func NewMock() *Mock {
	return &Mock{}
}

// RecommendByEmotion returns placeholder tracks for the emotion.
func (m *Mock) RecommendByEmotion(ctx context.Context, emotion string, limit int) ([]Track, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, emotion, limit)
	}

	if emotion == "" {
		emotion = "neutral"
	}
	title := strings.ToUpper(emotion[:1]) + emotion[1:]
	tracks := make([]Track, 0, limit)
	for i := 0; i < limit; i++ {
		tracks = append(tracks, Track{
			Name:        fmt.Sprintf("Sample %s Song %d", title, i+1),
			Artists:     []string{"Sample Artist"},
			Album:       "Sample Album",
			ExternalURL: "https://open.spotify.com",
		})
	}
	return tracks, nil
}

// Search returns placeholder tracks for the query.
func (m *Mock) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}

	if limit > 5 {
		limit = 5
	}
	tracks := make([]Track, 0, limit)
	for i := 0; i < limit; i++ {
		tracks = append(tracks, Track{
			Name:        fmt.Sprintf("Search Result for %q", query),
			Artists:     []string{"Various Artists"},
			Album:       "Search Results",
			ExternalURL: "https://open.spotify.com",
		})
	}
	return tracks, nil
}

// Verify Mock implements Recommender at compile time.
var _ Recommender = (*Mock)(nil)
