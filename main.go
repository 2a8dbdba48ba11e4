package main

import (
	"log"
	"net/http"

	"videoTranscribe/config"
	"videoTranscribe/metrics"
	"videoTranscribe/processors"
	"videoTranscribe/server"
	"videoTranscribe/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	m := metrics.NewMetrics()

	media, err := storage.NewMediaStore(cfg)
	if err != nil {
		log.Fatalf("failed to init media store: %v", err)
	}
	log.Printf("Media store initialized: %s", cfg.StorageType)

	vectors := storage.NewVectorStore(cfg)
	log.Printf("Vector store initialized: %s", cfg.VectorStore)

	transcripts, err := storage.NewTranscriptFiles(cfg.TranscriptDir)
	if err != nil {
		log.Fatalf("failed to init transcript store: %v", err)
	}

	cache := processors.NewModelCache(processors.RecognitionConfig{
		Provider:    cfg.ASRProvider,
		RunnerURL:   cfg.RunnerURL,
		Model:       cfg.ASRModel,
		Device:      cfg.Device,
		ComputeType: cfg.ComputeType,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
	}, cfg.AlignVariant, m)
	log.Printf("Model cache initialized (asr=%s device=%s compute=%s)", cfg.ASRModel, cfg.Device, cfg.ComputeType)

	pipeline := processors.NewPipeline(cache, m)

	srv := server.New(cfg, media, vectors, transcripts, pipeline, cache, m)
	mux := http.NewServeMux()
	srv.Routes(mux)

	log.Printf("Server listening on %s", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, mux))
}
