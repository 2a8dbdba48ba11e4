package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"videoTranscribe/core"
	"videoTranscribe/processors"
)

// transcriptionResponse is the wire shape of a finished transcription.
type transcriptionResponse struct {
	VideoID string `json:"video_id,omitempty"`
	core.TranscriptionResult
	Warning string `json:"warning,omitempty"`
}

// transcribeHandler uploads and transcribes a media file in one
// request. An optional video_id form field links the transcript to a
// previously uploaded video.
func (s *Server) transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	// Stage the upload so ffmpeg can decode it.
	tmp, err := os.CreateTemp("", "transcribe-*"+filepath.Ext(header.Filename))
	if err != nil {
		core.WriteError(w, http.StatusInternalServerError, "could not stage upload")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		core.WriteError(w, http.StatusInternalServerError, "could not stage upload")
		return
	}
	tmp.Close()

	opts := processors.TranscribeOptions{
		Language:      r.FormValue("language"),
		BatchSize:     s.cfg.BatchSize,
		AlignVariant:  r.FormValue("align_variant"),
		VADOnset:      formFloat(r, "vad_onset"),
		VADOffset:     formFloat(r, "vad_offset"),
		InitialPrompt: r.FormValue("initial_prompt"),
	}
	if n, err := strconv.Atoi(r.FormValue("batch_size")); err == nil && n > 0 {
		opts.BatchSize = n
	}
	if t := formFloat(r, "temperature"); t != nil {
		f := float32(*t)
		opts.Temperature = &f
	}

	s.runTranscription(w, r, tmpPath, opts, r.FormValue("video_id"), r.FormValue("strict") == "true")
}

type transcribeFileRequest struct {
	FilePath     string `json:"file_path"`
	VideoID      string `json:"video_id"`
	Language     string `json:"language"`
	BatchSize    int    `json:"batch_size"`
	AlignVariant string `json:"align_variant"`
	Strict       bool   `json:"strict"`
}

// transcribeFileHandler transcribes a file already on the server.
func (s *Server) transcribeFileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transcribeFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.FilePath == "" {
		core.WriteError(w, http.StatusBadRequest, "file_path is required")
		return
	}
	if _, err := os.Stat(req.FilePath); os.IsNotExist(err) {
		core.WriteError(w, http.StatusBadRequest, "file not found: "+req.FilePath)
		return
	}

	opts := processors.TranscribeOptions{
		Language:     req.Language,
		BatchSize:    s.cfg.BatchSize,
		AlignVariant: req.AlignVariant,
	}
	if req.BatchSize > 0 {
		opts.BatchSize = req.BatchSize
	}
	s.runTranscription(w, r, req.FilePath, opts, req.VideoID, req.Strict)
}

// runTranscription decodes the audio, drives the pipeline and writes
// the response. When videoID is set the transcript is persisted and
// indexed under that id.
func (s *Server) runTranscription(w http.ResponseWriter, r *http.Request, path string, opts processors.TranscribeOptions, videoID string, strict bool) {
	if s.metrics != nil {
		s.metrics.TranscriptionRequests.Inc()
	}

	audio, err := s.loadAudio(r.Context(), path)
	if err != nil {
		log.Printf("Error decoding audio from %s: %v", path, err)
		s.countFailure("audio")
		core.WriteError(w, http.StatusBadRequest, "could not decode audio")
		return
	}

	result, err := s.pipeline.Transcribe(r.Context(), audio, opts)
	if err != nil {
		var unsup *core.AlignmentUnsupportedError
		if errors.As(err, &unsup) {
			if strict {
				s.countFailure("alignment_unsupported")
				core.WriteError(w, http.StatusUnprocessableEntity, unsup.Error())
				return
			}
			// Segment-only fallback: the coarse recognition output is
			// still a usable transcript.
			log.Printf("Warning: %v, returning segment-only transcript", unsup)
			result = &core.TranscriptionResult{
				Text:     core.JoinSegmentTexts(unsup.Segments),
				Segments: unsup.Segments,
				Language: unsup.Language,
			}
			s.finishTranscription(w, result, videoID, unsup.Error())
			return
		}
		log.Printf("Error during transcription: %v", err)
		s.countFailure(failureKind(err))
		core.WriteError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	if s.metrics != nil {
		s.metrics.TranscriptionSuccesses.Inc()
	}
	s.finishTranscription(w, result, videoID, "")
}

func (s *Server) finishTranscription(w http.ResponseWriter, result *core.TranscriptionResult, videoID, warning string) {
	if videoID != "" {
		if err := s.transcripts.Save(videoID, result); err != nil {
			log.Printf("Warning: could not persist transcript for %s: %v", videoID, err)
		}
		if n := s.vectors.Upsert(videoID, result.Language, result.Segments); n > 0 {
			log.Printf("Indexed %d transcript segments for %s", n, videoID)
		}
	}
	core.WriteJSON(w, http.StatusOK, transcriptionResponse{
		VideoID:             videoID,
		TranscriptionResult: *result,
		Warning:             warning,
	})
}

func (s *Server) countFailure(kind string) {
	if s.metrics != nil {
		s.metrics.TranscriptionFailures.WithLabelValues(kind).Inc()
	}
}

func failureKind(err error) string {
	var recErr *core.RecognitionError
	var alignErr *core.AlignmentError
	var buildErr *core.ModelConstructionError
	switch {
	case errors.As(err, &recErr):
		return "recognition"
	case errors.As(err, &alignErr):
		return "alignment"
	case errors.As(err, &buildErr):
		return "model_construction"
	default:
		return "other"
	}
}

func formFloat(r *http.Request, key string) *float64 {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
