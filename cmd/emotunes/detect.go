package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emotunes/emotunes/pkg/emotion"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Analyze a single image and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, _ := emotion.Build(detectorConfig(), cfg.TempDir)

		result, err := pipeline.DetectFromImage(cmd.Context(), args[0])
		if err != nil {
			// Admission failures are user errors, not crashes
			if ae, ok := emotion.AsAdmissionError(err); ok {
				fmt.Fprintln(os.Stderr, "rejected:", ae.Message)
				os.Exit(1)
			}
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
