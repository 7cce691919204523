// Package music provides emotion-driven music recommendations backed
// by the Spotify Web API, with a mock recommender for credential-less
// operation.
package music

import (
	"context"
	"errors"
)

// Sentinel errors for common conditions.
var (
	// ErrNoCredentials is returned when Spotify credentials are missing.
	ErrNoCredentials = errors.New("music: Spotify credentials not configured")

	// ErrNoTracks is returned when no tracks could be retrieved.
	ErrNoTracks = errors.New("music: no tracks found")
)

// Track is a single recommendation.
type Track struct {
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	ExternalURL string   `json:"external_url"`
	AlbumImage  string   `json:"album_image,omitempty"`
}

// Recommender looks up music for an emotion or a free-text query.
type Recommender interface {
	// RecommendByEmotion returns tracks matching the emotional tone.
	RecommendByEmotion(ctx context.Context, emotion string, limit int) ([]Track, error)

	// Search returns tracks matching a free-text query.
	Search(ctx context.Context, query string, limit int) ([]Track, error)
}

// seedParams maps each canonical emotion to Spotify recommendation
// parameters.
type seedParams struct {
	Genres       []string
	Danceability float64
	Energy       float64
	Valence      float64
}

var emotionSeeds = map[string]seedParams{
	"happy":    {Genres: []string{"pop", "dance", "electronic"}, Danceability: 0.8, Energy: 0.8, Valence: 0.9},
	"sad":      {Genres: []string{"acoustic", "sad", "piano"}, Danceability: 0.3, Energy: 0.3, Valence: 0.2},
	"angry":    {Genres: []string{"rock", "metal", "hard-rock"}, Danceability: 0.6, Energy: 0.9, Valence: 0.3},
	"surprise": {Genres: []string{"indie", "alternative", "experimental"}, Danceability: 0.7, Energy: 0.7, Valence: 0.7},
	"fear":     {Genres: []string{"ambient", "cinematic", "soundtrack"}, Danceability: 0.2, Energy: 0.3, Valence: 0.3},
	"disgust":  {Genres: []string{"industrial", "experimental", "noise"}, Danceability: 0.4, Energy: 0.6, Valence: 0.3},
	"neutral":  {Genres: []string{"chill", "ambient", "indie"}, Danceability: 0.5, Energy: 0.5, Valence: 0.5},
}

// searchQueries are the free-text fallbacks when the recommendation
// endpoint fails.
var searchQueries = map[string]string{
	"happy":    "happy upbeat pop dance",
	"sad":      "sad acoustic emotional",
	"angry":    "angry rock metal aggressive",
	"surprise": "surprising experimental indie",
	"fear":     "scary ambient cinematic",
	"disgust":  "industrial experimental noise",
	"neutral":  "chill ambient lo-fi",
}

func seedsFor(emotion string) seedParams {
	if p, ok := emotionSeeds[emotion]; ok {
		return p
	}
	return emotionSeeds["neutral"]
}

func queryFor(emotion string) string {
	if q, ok := searchQueries[emotion]; ok {
		return q
	}
	return searchQueries["neutral"]
}
