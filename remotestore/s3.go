package remotestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible (including MinIO) remote source.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Key       string // object key of the mapping document
	UseSSL    bool
}

// S3Source fetches the mapping document from an S3-compatible object
// store, using StatObject's ETag as the metadata-probe entity tag.
type S3Source struct {
	client     *minio.Client
	bucketName string
	key        string

	initOnce sync.Once
	initErr  error
}

// NewS3Source constructs an S3Source. The client is long-lived and must
// be released with Close at host teardown.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("remotestore: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("remotestore: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("remotestore: s3 bucket is required")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, fmt.Errorf("remotestore: s3 object key is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("remotestore: init s3 client: %w", err)
	}

	return &S3Source{client: client, bucketName: bucket, key: key}, nil
}

func (s *S3Source) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = fmt.Errorf("remotestore: bucket %q does not exist", s.bucketName)
		}
	})
	return s.initErr
}

// Stat probes the object's metadata and returns its ETag.
func (s *S3Source) Stat(ctx context.Context) (Metadata, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return Metadata{}, err
	}
	info, err := s.client.StatObject(ctx, s.bucketName, s.key, minio.StatObjectOptions{})
	if err != nil {
		return Metadata{}, fmt.Errorf("remotestore: stat %s/%s: %w", s.bucketName, s.key, err)
	}
	return Metadata{ETag: strings.Trim(info.ETag, `"`)}, nil
}

// Fetch retrieves the object body.
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("remotestore: get %s/%s: %w", s.bucketName, s.key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, fmt.Errorf("remotestore: object not found: %s/%s", s.bucketName, s.key)
		}
		return nil, fmt.Errorf("remotestore: read %s/%s: %w", s.bucketName, s.key, err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying client. minio.Client has no explicit
// close; it owns only an HTTP transport.
func (s *S3Source) Close() error { return nil }
