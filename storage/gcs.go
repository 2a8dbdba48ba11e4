package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"videoTranscribe/core"
)

// gcsFolder is the object-name prefix inside the bucket.
const gcsFolder = "videos/"

// GCSMediaStore keeps media objects in a Google Cloud Storage bucket.
// Retrieval stages the object to a local temporary file whose lifetime
// is the returned MediaObject.
type GCSMediaStore struct {
	bucket *gcs.BucketHandle
	name   string
}

func newGCSMediaStore(bucketName string) (*GCSMediaStore, error) {
	client, err := gcs.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	log.Printf("GCS media store initialized: bucket %s", bucketName)
	return &GCSMediaStore{bucket: client.Bucket(bucketName), name: bucketName}, nil
}

func (s *GCSMediaStore) Save(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	videoID := uuid.NewString()
	objectName := gcsFolder + storedName(videoID, originalFilename)

	w := s.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentTypeFor(originalFilename)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload gs://%s/%s: %w", s.name, objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gs://%s/%s: %w", s.name, objectName, err)
	}

	log.Printf("File %q saved to gs://%s/%s", originalFilename, s.name, objectName)
	return videoID, nil
}

func (s *GCSMediaStore) Get(ctx context.Context, videoID string) (*MediaObject, error) {
	prefix := gcsFolder + storedPrefix + videoID + "_"
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	attrs, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, core.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("list gs://%s/%s*: %w", s.name, prefix, err)
	}

	r, err := s.bucket.Object(attrs.Name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, core.ErrVideoNotFound
		}
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.name, attrs.Name, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp("", "videoTranscribe-*"+path.Ext(attrs.Name))
	if err != nil {
		return nil, fmt.Errorf("stage temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("stage gs://%s/%s: %w", s.name, attrs.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("stage gs://%s/%s: %w", s.name, attrs.Name, err)
	}

	baseName := path.Base(attrs.Name)
	contentType := attrs.ContentType
	if contentType == "" {
		contentType = contentTypeFor(baseName)
	}
	tmpPath := tmp.Name()
	return &MediaObject{
		VideoRecord: core.VideoRecord{
			VideoID:          videoID,
			Location:         fmt.Sprintf("gs://%s/%s", s.name, attrs.Name),
			OriginalFilename: originalFromStored(baseName, videoID),
			ContentType:      contentType,
		},
		Path:    tmpPath,
		cleanup: func() error { return os.Remove(tmpPath) },
	}, nil
}
