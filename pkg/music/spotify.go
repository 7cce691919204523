package music

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/emotunes/emotunes/internal/httpc"
)

// Spotify API endpoints.
const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"
)

// SpotifyClient talks to the Spotify Web API using the
// client-credentials flow. Token refresh is handled by oauth2.
type SpotifyClient struct {
	http    *http.Client
	apiBase string
	logger  *slog.Logger
}

// NewSpotifyClient authenticates with the client-credentials flow.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret string) (*SpotifyClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNoCredentials
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	// Route token and API traffic through the shared client so
	// timeouts apply everywhere
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpc.Client)

	return &SpotifyClient{
		http:    conf.Client(ctx),
		apiBase: spotifyAPIBase,
		logger:  slog.Default().With("component", "music.spotify"),
	}, nil
}

// RecommendByEmotion maps the emotion to seed genres and audio-feature
// targets. When the recommendation endpoint fails it degrades to a
// text search instead of erroring.
func (c *SpotifyClient) RecommendByEmotion(ctx context.Context, emotion string, limit int) ([]Track, error) {
	seeds := seedsFor(emotion)

	q := url.Values{}
	q.Set("seed_genres", strings.Join(seeds.Genres, ","))
	q.Set("target_danceability", formatFloat(seeds.Danceability))
	q.Set("target_energy", formatFloat(seeds.Energy))
	q.Set("target_valence", formatFloat(seeds.Valence))
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := c.get(ctx, "/recommendations", q, &resp); err != nil {
		c.logger.Warn("recommendations failed, falling back to search",
			"emotion", emotion,
			"error", err,
		)
		return c.Search(ctx, queryFor(emotion), limit)
	}

	tracks := convertTracks(resp.Tracks)
	if len(tracks) == 0 {
		return c.Search(ctx, queryFor(emotion), limit)
	}
	return tracks, nil
}

// Search finds tracks matching a free-text query.
func (c *SpotifyClient) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}

	tracks := convertTracks(resp.Tracks.Items)
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	return tracks, nil
}

func (c *SpotifyClient) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("music: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("music: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("music: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("music: decode %s response: %w", path, err)
	}
	return nil
}

// spotifyTrack is the wire shape of a track object.
type spotifyTrack struct {
	Name         string `json:"name"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func convertTracks(in []spotifyTrack) []Track {
	tracks := make([]Track, 0, len(in))
	for _, t := range in {
		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}
		track := Track{
			Name:        t.Name,
			Artists:     artists,
			Album:       t.Album.Name,
			PreviewURL:  t.PreviewURL,
			ExternalURL: t.ExternalURLs.Spotify,
		}
		if len(t.Album.Images) > 0 {
			track.AlbumImage = t.Album.Images[0].URL
		}
		tracks = append(tracks, track)
	}
	return tracks
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Verify SpotifyClient implements Recommender at compile time.
var _ Recommender = (*SpotifyClient)(nil)
