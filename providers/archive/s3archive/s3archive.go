package s3archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/internal/camera"
)

const defaultRegion = "us-east-1"

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Entry is one archived model response.
type Entry struct {
	Status  parse.Status  `json:"status"`
	Kind    parse.Kind    `json:"kind,omitempty"`
	Warning parse.Warning `json:"warning,omitempty"`
	Query   camera.Query  `json:"query"`
	Raw     string        `json:"raw"`
}

// EntryFromOutcome builds the archive entry for an extraction outcome.
func EntryFromOutcome(q camera.Query, outcome parse.Outcome) Entry {
	entry := Entry{Status: outcome.Status(), Query: q, Raw: outcome.RawText()}
	switch o := outcome.(type) {
	case *parse.PartialSuccess:
		entry.Warning = o.Warning
	case *parse.Failure:
		entry.Kind = o.Kind
	}
	return entry
}

// objectStore is the subset of *minio.Client used by the archive.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive writes entries to a bucket. The bucket is created on first use.
type Archive struct {
	client objectStore
	bucket string
	region string
	now    func() time.Time

	initOnce sync.Once
	initErr  error
}

// New connects to the S3-compatible endpoint described by cfg.
func New(cfg Config) (*Archive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3archive: endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3archive: access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3archive: bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3archive: init client: %w", err)
	}
	return newArchive(client, bucket, region), nil
}

func newArchive(client objectStore, bucket, region string) *Archive {
	return &Archive{client: client, bucket: bucket, region: region, now: time.Now}
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// Put stores entry and returns its object key.
func (a *Archive) Put(ctx context.Context, entry Entry) (string, error) {
	if entry.Status == "" {
		return "", errors.New("s3archive: entry status is required")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("s3archive: ensure bucket: %w", err)
	}

	id := uuid.New()
	archivedAt := a.now().UTC()
	document := struct {
		ID         string    `json:"id"`
		ArchivedAt time.Time `json:"archived_at"`
		Entry
	}{id.String(), archivedAt, entry}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document); err != nil {
		return "", fmt.Errorf("s3archive: encode entry: %w", err)
	}

	key := objectKey(entry.Status, archivedAt, id)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body.Bytes()), int64(body.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("s3archive: put %s: %w", key, err)
	}
	return key, nil
}

func objectKey(status parse.Status, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s.json", status, at.Format("2006/01/02"), id)
}
