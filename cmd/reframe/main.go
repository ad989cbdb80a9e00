package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"reframe/internal/config"
	"reframe/internal/pipeline"
	"reframe/internal/services/diarize"
	"reframe/internal/services/face"
	"reframe/internal/services/ffmpeg"
	"reframe/internal/smartcrop"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "reframe",
		Short:         "Virtual-camera path analysis for vertical clip reframing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.AddCommand(runCommand(), renderCommand())

	if err := root.Execute(); err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(1)
	}
}

// runCommand mirrors the sidecar contract: analyze one clip, write
// <tmpDir>/<clipId>_coords.json, exit non-zero on failure.
func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <videoUrl> <clipId> <tmpDir>",
		Short: "Analyze a clip and write its coords artifact",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoURL, clipID, tmpDir := args[0], args[1], args[2]

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			detector, err := face.New(face.Options{
				Backend:     cfg.Detector.Backend,
				CascadePath: cfg.Detector.CascadePath,
				ModelPath:   cfg.Detector.ModelPath,
				SocketPath:  cfg.Detector.SocketPath,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize %s detector: %w", cfg.Detector.Backend, err)
			}
			defer detector.Close()

			pipe := pipeline.New(detector, diarize.NewClient(cfg.Diarize.URL), cfg.Smartcrop())
			result, coordsPath, err := pipe.AnalyzeClip(videoURL, clipID, tmpDir)
			if err != nil {
				return err
			}

			log.Printf("Done. mode=%s coords=%s", result.Mode(), coordsPath)
			return nil
		},
	}
}

// renderCommand applies an existing coords artifact to a local video.
func renderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render <videoPath> <coordsPath> <outputPath>",
		Short: "Render a reframed video from a coords artifact",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath, coordsPath, outputPath := args[0], args[1], args[2]

			data, err := os.ReadFile(coordsPath)
			if err != nil {
				return fmt.Errorf("read coords artifact: %w", err)
			}
			result, err := smartcrop.DecodeResult(data)
			if err != nil {
				return err
			}
			if err := ffmpeg.Render(videoPath, outputPath, result); err != nil {
				return err
			}

			log.Printf("Done. mode=%s output=%s", result.Mode(), outputPath)
			return nil
		},
	}
}
