// Package storage persists uploaded media and finished transcripts.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"videoTranscribe/config"
	"videoTranscribe/core"
)

// storedPrefix is the fixed lead of every stored object name. The
// video id directly follows it, so retrieval is a prefix scan with no
// separate index.
const storedPrefix = "video_"

// maxNameLen caps the sanitized original-filename part of a stored
// name.
const maxNameLen = 50

// MediaObject is one retrieved media blob staged at a local path.
// Close releases any temporary copy a remote backend created; the
// object must not be read after Close.
type MediaObject struct {
	core.VideoRecord
	Path    string
	cleanup func() error
}

// Close releases backend resources held for this object.
func (o *MediaObject) Close() error {
	if o.cleanup == nil {
		return nil
	}
	return o.cleanup()
}

// MediaStore stores and retrieves raw media blobs by generated
// identifier. Exactly one implementation is active per process.
type MediaStore interface {
	// Save writes the full byte stream and returns a fresh video id.
	Save(ctx context.Context, r io.Reader, originalFilename string) (string, error)
	// Get locates the object whose stored name starts with the id.
	// Unknown ids return core.ErrVideoNotFound.
	Get(ctx context.Context, videoID string) (*MediaObject, error)
}

// NewMediaStore selects the backend from configuration, once at
// startup. Callers never branch on backend type after this.
func NewMediaStore(cfg *config.Config) (MediaStore, error) {
	switch cfg.StorageType {
	case config.StorageGCS:
		return newGCSMediaStore(cfg.GCSBucket)
	case config.StorageLocal:
		return newLocalMediaStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// storedName derives the collision-resistant object name:
// video_<id>_<sanitized original base, capped><original extension>.
func storedName(videoID, originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	base := strings.TrimSuffix(filepath.Base(originalFilename), ext)
	return storedPrefix + videoID + "_" + sanitizeFilename(base) + ext
}

// sanitizeFilename keeps alphanumerics plus '.', '-', '_' and replaces
// everything else with '_', then caps the length.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}

// originalFromStored recovers the (sanitized) original filename from a
// stored name, for the record handed back on retrieval.
func originalFromStored(name, videoID string) string {
	rest := strings.TrimPrefix(name, storedPrefix+videoID+"_")
	if rest == name || rest == "" {
		return name
	}
	return rest
}

var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
}

// contentTypeFor infers the content type from the file extension,
// defaulting to video/mp4 like the upload contract assumes.
func contentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "video/mp4"
}
