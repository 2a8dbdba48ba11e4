package server

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"videoTranscribe/core"
)

// uploadHandler receives a media file and returns a unique video id.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
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

	videoID, err := s.media.Save(r.Context(), file, header.Filename)
	if err != nil {
		log.Printf("Could not save upload %q: %v", header.Filename, err)
		core.WriteError(w, http.StatusInternalServerError, "could not process uploaded file")
		return
	}

	if s.metrics != nil {
		s.metrics.UploadsTotal.Inc()
		s.metrics.UploadBytes.Add(float64(header.Size))
	}
	log.Printf("File %q uploaded as video_id=%s", header.Filename, videoID)
	core.WriteJSON(w, http.StatusOK, map[string]string{"videoId": videoID})
}

// videoHandler serves a stored media file by id.
func (s *Server) videoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		core.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	videoID := strings.TrimPrefix(r.URL.Path, "/video/")
	if videoID == "" || strings.Contains(videoID, "/") {
		core.WriteError(w, http.StatusBadRequest, "video id required")
		return
	}

	obj, err := s.media.Get(r.Context(), videoID)
	if errors.Is(err, core.ErrVideoNotFound) {
		if s.metrics != nil {
			s.metrics.VideosNotFound.Inc()
		}
		core.WriteError(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		log.Printf("Error retrieving video %s: %v", videoID, err)
		core.WriteError(w, http.StatusInternalServerError, "could not retrieve video")
		return
	}
	defer obj.Close()

	f, err := os.Open(obj.Path)
	if err != nil {
		log.Printf("Error opening staged video %s: %v", videoID, err)
		core.WriteError(w, http.StatusInternalServerError, "could not retrieve video")
		return
	}
	defer f.Close()

	if s.metrics != nil {
		s.metrics.VideosServed.Inc()
	}
	w.Header().Set("Content-Type", obj.ContentType)
	// ServeContent gives range support so players can seek.
	http.ServeContent(w, r, obj.OriginalFilename, time.Time{}, f)
}
