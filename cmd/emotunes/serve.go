package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emotunes/emotunes/internal/log"
	"github.com/emotunes/emotunes/pkg/emotion"
	"github.com/emotunes/emotunes/pkg/emotion/detect"
	"github.com/emotunes/emotunes/pkg/music"
	"github.com/emotunes/emotunes/pkg/text"
	"github.com/emotunes/emotunes/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emotunes API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	pipeline, caps := emotion.Build(detectorConfig(), cfg.TempDir)

	recommender := buildRecommender()

	server := web.NewServer(cfg.Port, cfg.TempDir, pipeline, text.NewAnalyzer(), recommender, caps)

	// Graceful shutdown on SIGINT/SIGTERM
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		_ = server.Shutdown()
	}()

	log.Info("emotunes server listening", "port", cfg.Port)
	return server.Start()
}

func detectorConfig() detect.Config {
	dc := detect.DefaultConfig()
	dc.YuNetModelPath = cfg.Models.YuNet
	dc.EmotionModelPath = cfg.Models.Emotion
	dc.HaarCascadePath = cfg.Models.Haar
	return dc
}

func buildRecommender() music.Recommender {
	client, err := music.NewSpotifyClient(context.Background(), cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		log.Warn("Spotify unavailable, using mock recommender", "error", err)
		return music.NewMock()
	}
	return client
}
