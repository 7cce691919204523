package web

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"gocv.io/x/gocv"

	"github.com/emotunes/emotunes/internal/log"
	"github.com/emotunes/emotunes/pkg/emotion"
)

// handleWebcamWS streams live-frame analysis: binary JPEG frames in,
// JSON results out. Each frame is analyzed independently; a frame that
// cannot be decoded gets a fallback result rather than closing the
// socket.
func (s *Server) handleWebcamWS(c *websocket.Conn) {
	defer c.Close()

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		result := s.analyzeFrameBytes(data)
		if err := c.WriteJSON(result); err != nil {
			log.Warn("webcam socket write failed", "error", err)
			return
		}
	}
}

func (s *Server) analyzeFrameBytes(data []byte) *emotion.Result {
	frame, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return emotion.Fallback("could not decode frame")
	}
	defer frame.Close()

	result, err := s.detector.DetectFromFrame(context.Background(), frame)
	if err != nil {
		return emotion.Fallback("unexpected pipeline error")
	}
	log.Debug("webcam frame analyzed", "emotion", result.Emotion, "method", result.Method)
	return result
}
