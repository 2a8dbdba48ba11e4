package server

import (
	"net/http"
	"runtime"
	"time"

	"videoTranscribe/core"
)

// healthHandler reports liveness plus which model handles are
// resident.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	recognitionLoaded, alignmentLanguages := s.cache.Stats()
	if alignmentLanguages == nil {
		alignmentLanguages = []string{}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"storage":   s.cfg.StorageType,
		"models": map[string]any{
			"recognition_loaded":  recognitionLoaded,
			"alignment_languages": alignmentLanguages,
		},
		"memory": map[string]any{
			"alloc":      m.Alloc,
			"sys":        m.Sys,
			"num_gc":     m.NumGC,
			"goroutines": runtime.NumGoroutine(),
		},
	}
	core.WriteJSON(w, http.StatusOK, health)
}
