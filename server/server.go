// Package server wires the HTTP boundary to the pipeline and stores.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"videoTranscribe/config"
	"videoTranscribe/core"
	"videoTranscribe/metrics"
	"videoTranscribe/processors"
	"videoTranscribe/storage"
)

// Transcriber is the pipeline surface the handlers depend on.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *core.AudioBuffer, opts processors.TranscribeOptions) (*core.TranscriptionResult, error)
}

// Server holds every dependency the handlers need. All fields are set
// once at startup.
type Server struct {
	cfg         *config.Config
	media       storage.MediaStore
	vectors     storage.VectorStore
	transcripts *storage.TranscriptFiles
	pipeline    Transcriber
	cache       *processors.ModelCache
	metrics     *metrics.Metrics

	// Seams for tests; default to the real implementations.
	loadAudio     func(ctx context.Context, path string) (*core.AudioBuffer, error)
	probeDuration func(path string) (float64, error)
}

// New creates a Server over the given collaborators.
func New(cfg *config.Config, media storage.MediaStore, vectors storage.VectorStore, transcripts *storage.TranscriptFiles, pipeline Transcriber, cache *processors.ModelCache, m *metrics.Metrics) *Server {
	return &Server{
		cfg:           cfg,
		media:         media,
		vectors:       vectors,
		transcripts:   transcripts,
		pipeline:      pipeline,
		cache:         cache,
		metrics:       m,
		loadAudio:     processors.LoadAudio,
		probeDuration: processors.ProbeDuration,
	}
}

// Routes registers every handler on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/upload", s.uploadHandler)
	mux.HandleFunc("/video/", s.videoHandler)
	mux.HandleFunc("/transcribe/", s.transcribeHandler)
	mux.HandleFunc("/transcribe-file/", s.transcribeFileHandler)
	mux.HandleFunc("/transcript/", s.transcriptHandler)
	mux.HandleFunc("/search", s.searchHandler)
	mux.HandleFunc("/silences/", s.silencesHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
