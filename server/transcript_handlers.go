package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"videoTranscribe/core"
	"videoTranscribe/processors"
)

// transcriptHandler returns the stored transcript for a video.
func (s *Server) transcriptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	videoID := strings.TrimPrefix(r.URL.Path, "/transcript/")
	if videoID == "" || strings.Contains(videoID, "/") {
		core.WriteError(w, http.StatusBadRequest, "video id required")
		return
	}

	result, err := s.transcripts.Load(videoID)
	if errors.Is(err, core.ErrVideoNotFound) {
		core.WriteError(w, http.StatusNotFound, "transcript not found")
		return
	}
	if err != nil {
		log.Printf("Error loading transcript %s: %v", videoID, err)
		core.WriteError(w, http.StatusInternalServerError, "could not load transcript")
		return
	}
	core.WriteJSON(w, http.StatusOK, result)
}

type searchRequest struct {
	VideoID string `json:"video_id"`
	Query   string `json:"query"`
	TopK    int    `json:"top_k"`
}

type searchResponse struct {
	VideoID string     `json:"video_id"`
	Query   string     `json:"query"`
	Hits    []core.Hit `json:"hits"`
}

// searchHandler runs semantic search over one video's indexed
// transcript segments.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VideoID == "" || strings.TrimSpace(req.Query) == "" {
		core.WriteError(w, http.StatusBadRequest, "video_id and query required")
		return
	}

	hits := s.vectors.Search(req.VideoID, req.Query, req.TopK)
	if hits == nil {
		hits = []core.Hit{}
	}
	core.WriteJSON(w, http.StatusOK, searchResponse{VideoID: req.VideoID, Query: req.Query, Hits: hits})
}

// silencesHandler reports silent gaps in a stored transcript.
// threshold is the minimum gap in seconds; padding optionally shrinks
// each region to avoid clipping words.
func (s *Server) silencesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	videoID := strings.TrimPrefix(r.URL.Path, "/silences/")
	if videoID == "" || strings.Contains(videoID, "/") {
		core.WriteError(w, http.StatusBadRequest, "video id required")
		return
	}

	threshold := 0.5
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			core.WriteError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = f
	}
	padding := 0.0
	if v := r.URL.Query().Get("padding"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			padding = f
		}
	}

	result, err := s.transcripts.Load(videoID)
	if errors.Is(err, core.ErrVideoNotFound) {
		core.WriteError(w, http.StatusNotFound, "transcript not found")
		return
	}
	if err != nil {
		core.WriteError(w, http.StatusInternalServerError, "could not load transcript")
		return
	}

	duration := transcriptEnd(result)
	if obj, err := s.media.Get(r.Context(), videoID); err == nil {
		if d, err := s.probeDuration(obj.Path); err == nil && d > duration {
			duration = d
		}
		obj.Close()
	}

	silences := processors.DetectSilences(result, duration, threshold)
	if padding > 0 {
		silences = processors.AdjustSilences(silences, padding, 0)
	}
	if silences == nil {
		silences = []core.SilenceRegion{}
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"video_id":  videoID,
		"threshold": threshold,
		"silences":  silences,
	})
}

func transcriptEnd(result *core.TranscriptionResult) float64 {
	var end float64
	for _, seg := range result.Segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}
