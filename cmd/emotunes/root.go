package main

import (
	"github.com/spf13/cobra"

	"github.com/emotunes/emotunes/internal/config"
	"github.com/emotunes/emotunes/internal/log"
)

// Version is the application version.
const Version = "0.1.0"

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "emotunes",
	Short:   "Emotion detection with music recommendations",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		log.Init(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
}
