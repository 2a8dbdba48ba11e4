package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"videoTranscribe/core"
)

// TranscriptFiles persists finished transcripts as JSON files keyed by
// video id, one file per video.
type TranscriptFiles struct {
	dir string
}

func NewTranscriptFiles(dir string) (*TranscriptFiles, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir %s: %w", dir, err)
	}
	return &TranscriptFiles{dir: dir}, nil
}

func (t *TranscriptFiles) path(videoID string) string {
	// Ids are generated UUIDs; sanitize anyway since the id arrives
	// from the request path on reads.
	return filepath.Join(t.dir, sanitizeFilename(videoID)+".json")
}

// Save writes the transcript for a video, replacing any previous one.
func (t *TranscriptFiles) Save(videoID string, result *core.TranscriptionResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.path(videoID), data, 0644)
}

// Load reads the transcript for a video. Unknown ids return
// core.ErrVideoNotFound.
func (t *TranscriptFiles) Load(videoID string) (*core.TranscriptionResult, error) {
	data, err := os.ReadFile(t.path(videoID))
	if os.IsNotExist(err) {
		return nil, core.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	var result core.TranscriptionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse transcript for %s: %w", videoID, err)
	}
	return &result, nil
}
