package main

import (
	"log"

	"reframe/internal/api"
	"reframe/internal/api/handlers"
	"reframe/internal/config"
	"reframe/internal/pipeline"
	"reframe/internal/services/diarize"
	"reframe/internal/services/face"
	"reframe/internal/store"
	"reframe/internal/workers"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	detector, err := face.New(face.Options{
		Backend:     cfg.Detector.Backend,
		CascadePath: cfg.Detector.CascadePath,
		ModelPath:   cfg.Detector.ModelPath,
		SocketPath:  cfg.Detector.SocketPath,
	})
	if err != nil {
		log.Fatalf("failed to initialize %s detector: %v", cfg.Detector.Backend, err)
	}
	defer detector.Close()
	log.Printf("%s face detection initialized", cfg.Detector.Backend)

	diarizer := diarize.NewClient(cfg.Diarize.URL)
	if diarizer == nil {
		log.Println("diarization disabled (no service URL configured)")
	}

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	pipe := pipeline.New(detector, diarizer, cfg.Smartcrop())

	processor := workers.NewProcessor(st, pipe, cfg.Server.TmpDir)
	if err := processor.Start(cfg.Server.Workers); err != nil {
		log.Fatal(err)
	}

	server := api.NewServer(&handlers.ReframeHandler{
		Pipeline:  pipe,
		Processor: processor,
		Store:     st,
		TmpDir:    cfg.Server.TmpDir,
	})

	log.Println("Server running on http://localhost:" + cfg.Server.Port)
	if err := server.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
