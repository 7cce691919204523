// Package web exposes the emotion pipeline and music recommendations
// over HTTP and WebSocket.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"gocv.io/x/gocv"

	"github.com/emotunes/emotunes/pkg/emotion"
	"github.com/emotunes/emotunes/pkg/emotion/detect"
	"github.com/emotunes/emotunes/pkg/music"
	"github.com/emotunes/emotunes/pkg/text"
)

// Detector is the pipeline surface the server consumes.
type Detector interface {
	DetectFromImage(ctx context.Context, path string) (*emotion.Result, error)
	DetectFromFrame(ctx context.Context, frame gocv.Mat) (*emotion.Result, error)
}

// Server is the emotunes HTTP server.
type Server struct {
	app     *fiber.App
	port    string
	tempDir string

	detector Detector
	text     *text.Analyzer
	music    music.Recommender
	caps     detect.Capabilities
}

// NewServer wires routes over the given components.
func NewServer(port, tempDir string, detector Detector, textAnalyzer *text.Analyzer, recommender music.Recommender, caps detect.Capabilities) *Server {
	s := &Server{
		port:     port,
		tempDir:  tempDir,
		detector: detector,
		text:     textAnalyzer,
		music:    recommender,
		caps:     caps,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Emotunes",
		DisableStartupMessage: true,
		BodyLimit:             25 * 1024 * 1024, // admission rejects >20MiB with a real message
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Get("/requirements", s.handleRequirements)
	api.Post("/analyze/image", s.handleAnalyzeImage)
	api.Post("/analyze/webcam", s.handleAnalyzeWebcam)
	api.Post("/analyze/text", s.handleAnalyzeText)
	api.Post("/music/search", s.handleSearchMusic)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/webcam", websocket.New(s.handleWebcamWS))

	s.app = app
	return s
}

// Start starts the server and blocks.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}
