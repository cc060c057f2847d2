// Package gcs stores uploaded statements in Google Cloud Storage so import jobs
// can fetch them later.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// DefaultUploadTimeout bounds a single upload.
const DefaultUploadTimeout = 2 * time.Minute

// Storage reads and writes statement objects in one bucket.
type Storage struct {
	client        *storage.Client
	bucket        string
	uploadTimeout time.Duration
}

// New creates a Storage with its own client. It assumes Application Default
// Credentials are configured.
func New(ctx context.Context, bucket string) (*Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs.New: empty bucket name")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs.New: create storage client: %w", err)
	}
	return NewWithClient(client, bucket), nil
}

func NewWithClient(client *storage.Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket, uploadTimeout: DefaultUploadTimeout}
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// Upload streams r into objectName and returns its gs:// URI.
func (s *Storage) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return URI(s.bucket, objectName), nil
}

// Fetch downloads the object at a gs:// URI. The bucket in the URI may differ
// from the configured one.
func (s *Storage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read object: %w", err)
	}
	return data, nil
}

// ParseURI splits gs://bucket/path/to/file into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// IsURI reports whether s looks like a gs:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// URI builds a gs:// URI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// FilenameFromURI returns the last path element, e.g. "file.pdf".
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// ObjectName lays out uploads as statements/<household>/<yyyy-mm>/<uuid>-<filename>.
func ObjectName(household, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "statement"
	}
	return path.Join("statements", household, now.Format("2006-01"), uuid.NewString()+"-"+name)
}
