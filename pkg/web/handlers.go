package web

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/emotunes/emotunes/internal/log"
	"github.com/emotunes/emotunes/pkg/emotion"
	"github.com/emotunes/emotunes/pkg/music"
)

const recommendLimit = 10

// analyzeResponse is an emotion result plus matching tracks.
type analyzeResponse struct {
	*emotion.Result
	Tracks []music.Track `json:"tracks"`
	Note   string        `json:"note,omitempty"`
}

// imageRequirements is surfaced on admission failures so clients can
// show remediation text.
var imageRequirements = fiber.Map{
	"min_size":      "100x100 pixels",
	"max_size":      "5000x5000 pixels",
	"max_file_size": "20MB",
	"formats":       "JPG, JPEG, PNG, BMP, WEBP, TIFF",
	"recommended":   "Clear front-facing face, good lighting, 300x300+ pixels",
}

// handleHealth reports component availability.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	degraded := !s.caps.Primary || !s.caps.Secondary
	status := "healthy"
	if degraded {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":            status,
		"primary_backend":   s.caps.Primary,
		"secondary_backend": s.caps.Secondary,
		"heuristic_backend": s.caps.Heuristic,
	})
}

// handleRequirements returns the image admission limits.
func (s *Server) handleRequirements(c *fiber.Ctx) error {
	return c.JSON(imageRequirements)
}

// handleAnalyzeImage analyzes an uploaded image. Only admission
// failures produce a 400; every admitted image yields a result.
func (s *Server) handleAnalyzeImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":        "no image provided",
			"requirements": imageRequirements,
		})
	}

	// Admission decides format from the extension, so a name without
	// one can only produce a confusing rejection later
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":        "uploaded filename has no extension",
			"requirements": imageRequirements,
		})
	}

	// Persist the upload under a request-unique name; admission and
	// the cascade read it from disk
	tmpPath := filepath.Join(s.tempDir, "upload_"+uuid.NewString()+ext)
	if err := c.SaveFile(file, tmpPath); err != nil {
		log.Error("could not persist upload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":        "could not read uploaded image",
			"requirements": imageRequirements,
		})
	}
	defer os.Remove(tmpPath)

	result, err := s.detector.DetectFromImage(c.UserContext(), tmpPath)
	if err != nil {
		if ae, ok := emotion.AsAdmissionError(err); ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":        ae.Message,
				"code":         ae.Code,
				"requirements": imageRequirements,
			})
		}
		// The pipeline contract says this cannot happen; answer anyway
		log.Error("unexpected pipeline error", "error", err)
		result = emotion.Fallback("unexpected pipeline error")
	}

	return c.JSON(s.withTracks(c, result))
}

// webcamRequest carries a base64 data-URL frame.
type webcamRequest struct {
	Image string `json:"image"`
}

// handleAnalyzeWebcam analyzes a single webcam frame.
func (s *Server) handleAnalyzeWebcam(c *fiber.Ctx) error {
	var req webcamRequest
	if err := c.BodyParser(&req); err != nil || req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no image data provided"})
	}

	frame, err := decodeDataURL(req.Image)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid image data"})
	}
	defer frame.Close()
	if frame.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not decode image data"})
	}

	result, err := s.detector.DetectFromFrame(c.UserContext(), frame)
	if err != nil {
		log.Error("unexpected frame pipeline error", "error", err)
		result = emotion.Fallback("unexpected pipeline error")
	}

	return c.JSON(s.withTracks(c, result))
}

// textRequest carries free text to analyze.
type textRequest struct {
	Text string `json:"text"`
}

// handleAnalyzeText analyzes emotion in text.
func (s *Server) handleAnalyzeText(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no text provided"})
	}

	result := s.text.Analyze(req.Text)
	return c.JSON(s.withTracks(c, result))
}

// searchRequest carries a music search query.
type searchRequest struct {
	Query string `json:"query"`
}

// handleSearchMusic searches tracks directly.
func (s *Server) handleSearchMusic(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no search query provided"})
	}

	tracks, err := s.music.Search(c.UserContext(), req.Query, recommendLimit)
	if err != nil {
		log.Warn("music search failed", "query", req.Query, "error", err)
		tracks = nil
	}

	return c.JSON(fiber.Map{
		"tracks":       tracks,
		"search_query": req.Query,
	})
}

// withTracks attaches recommendations to a result. A recommender
// failure degrades to an empty track list, never an error response.
func (s *Server) withTracks(c *fiber.Ctx, result *emotion.Result) analyzeResponse {
	resp := analyzeResponse{Result: result}

	tracks, err := s.music.RecommendByEmotion(c.UserContext(), result.Emotion, recommendLimit)
	if err != nil {
		log.Warn("recommendations unavailable", "emotion", result.Emotion, "error", err)
		resp.Note = "music recommendations unavailable"
		return resp
	}
	resp.Tracks = tracks
	return resp
}

// decodeDataURL decodes a base64 image payload, with or without the
// data-URL header, into a BGR Mat. The caller closes the Mat.
func decodeDataURL(payload string) (gocv.Mat, error) {
	encoded := payload
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		encoded = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return gocv.Mat{}, err
	}

	return gocv.IMDecode(data, gocv.IMReadColor)
}
