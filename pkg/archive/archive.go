// Package archive persists postmortem artifacts from migration runs: the
// serialized payloads of failed write chunks and the final run report.
// Artifacts land in a MinIO/S3 bucket when one is configured, or on local
// disk otherwise. Archiving is best-effort and never affects run outcome.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore abstracts the minimal object operations the archive needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Archive writes run artifacts under a per-run prefix.
type Archive struct {
	store      ObjectStore
	bucket     string
	basePrefix string
}

// New creates an archive over the given object store.
func New(store ObjectStore, bucket, basePrefix string) *Archive {
	if basePrefix == "" {
		basePrefix = "runs"
	}
	return &Archive{store: store, bucket: bucket, basePrefix: basePrefix}
}

// NewFromEnv builds an archive using MINIO_* credentials, or a local store
// under the OS temp dir when none are configured.
func NewFromEnv(bucket string) (*Archive, error) {
	if bucket == "" {
		bucket = "fieldlift"
	}
	prefix := getenv("FIELDLIFT_ARCHIVE_PREFIX", "runs")

	endpoint := getenv("MINIO_ENDPOINT", "")
	access := getenv("MINIO_ACCESS_KEY", "")
	secret := getenv("MINIO_SECRET_KEY", "")
	useSSL := getenv("MINIO_USE_SSL", "false") == "true"

	var store ObjectStore
	if endpoint != "" && access != "" && secret != "" {
		client, err := NewS3Store(&S3Config{
			EndpointURL:     endpoint,
			AccessKeyID:     access,
			SecretAccessKey: secret,
			UseSSL:          useSSL,
		})
		if err != nil {
			return nil, err
		}
		store = client
	} else {
		// local fallback for dev/tests
		root := filepath.Join(os.TempDir(), "fieldlift-archive")
		store = NewLocalStore(root)
	}
	return New(store, bucket, prefix), nil
}

// SaveChunkPayload stores the serialized payload of one failed chunk and
// returns a reference to the stored object.
func (a *Archive) SaveChunkPayload(ctx context.Context, runID string, chunk int, payload []byte) (string, error) {
	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return "", err
	}
	key := a.path(runID, fmt.Sprintf("chunk-%03d.json", chunk))
	if err := a.store.PutObject(ctx, a.bucket, key, payload); err != nil {
		return "", err
	}
	return a.ref(key), nil
}

// SaveReport stores the final run report snapshot.
func (a *Archive) SaveReport(ctx context.Context, runID string, report []byte) (string, error) {
	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return "", err
	}
	key := a.path(runID, "report.json")
	if err := a.store.PutObject(ctx, a.bucket, key, report); err != nil {
		return "", err
	}
	return a.ref(key), nil
}

// ListRun lists the artifact keys stored for one run.
func (a *Archive) ListRun(ctx context.Context, runID string) ([]string, error) {
	return a.store.ListPrefix(ctx, a.bucket, a.path(runID, ""))
}

func (a *Archive) path(runID, file string) string {
	return strings.Trim(strings.Join([]string{a.basePrefix, runID, file}, "/"), "/")
}

func (a *Archive) ref(key string) string {
	return fmt.Sprintf("archive://%s/%s", a.bucket, key)
}

func getenv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
