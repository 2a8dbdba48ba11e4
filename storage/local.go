package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"videoTranscribe/core"
)

// LocalMediaStore keeps media files in a directory on disk.
type LocalMediaStore struct {
	dir string
}

func newLocalMediaStore(dir string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	log.Printf("Local media store initialized: %s", dir)
	return &LocalMediaStore{dir: dir}, nil
}

func (s *LocalMediaStore) Save(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	videoID := uuid.NewString()
	name := storedName(videoID, originalFilename)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	log.Printf("File %q saved locally as %q", originalFilename, name)
	return videoID, nil
}

func (s *LocalMediaStore) Get(ctx context.Context, videoID string) (*MediaObject, error) {
	prefix := storedPrefix + videoID + "_"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		return &MediaObject{
			VideoRecord: core.VideoRecord{
				VideoID:          videoID,
				Location:         path,
				OriginalFilename: originalFromStored(e.Name(), videoID),
				ContentType:      contentTypeFor(e.Name()),
			},
			Path: path,
		}, nil
	}
	return nil, core.ErrVideoNotFound
}
