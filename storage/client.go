// Package storage keeps listing images in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned by every operation when storage is not configured.
var ErrDisabled = errors.New("storage: not configured")

// Config holds the object store connection settings.
type Config struct {
	Endpoint        string // e.g. "minio:9000" or "s3.amazonaws.com"
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Region skips the bucket location lookup when set.
	Region string
	UseSSL bool
	// PresignExpiry bounds the lifetime of URLs from PresignedURL.
	// Defaults to 24h.
	PresignExpiry time.Duration
}

// Client uploads images to one bucket. An empty Endpoint yields a disabled
// client whose operations return ErrDisabled.
type Client struct {
	mc  *minio.Client
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	bucketReady bool
}

// Object describes a stored upload.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// NewClient creates a storage client. It does not contact the server.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{cfg: cfg, now: time.Now}, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 24 * time.Hour
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}
	return &Client{mc: mc, cfg: cfg, now: time.Now}, nil
}

// Enabled reports whether the client is configured.
func (c *Client) Enabled() bool { return c.mc != nil }

// Upload stores r under a fresh key derived from filename and returns the
// object with a presigned URL. The object is served inline so browsers
// display it instead of downloading.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (Object, error) {
	if !c.Enabled() {
		return Object{}, ErrDisabled
	}
	if err := c.ensureBucket(ctx); err != nil {
		return Object{}, err
	}

	key := ObjectKey(c.now(), filename)
	info, err := c.mc.PutObject(ctx, c.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "inline",
	})
	if err != nil {
		return Object{}, fmt.Errorf("storage: put %s: %w", key, err)
	}

	u, err := c.PresignedURL(ctx, key)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, Size: info.Size, ContentType: contentType, URL: u}, nil
}

// PresignedURL returns a time-limited GET URL for key.
func (c *Client) PresignedURL(ctx context.Context, key string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	u, err := c.mc.PresignedGetObject(ctx, c.cfg.Bucket, key, c.cfg.PresignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return u.String(), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if err := c.mc.RemoveObject(ctx, c.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// ensureBucket creates the bucket on first use. Failures are retried on the
// next upload.
func (c *Client) ensureBucket(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bucketReady {
		return nil
	}
	exists, err := c.mc.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("storage: bucket %s: %w", c.cfg.Bucket, err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.cfg.Bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
			return fmt.Errorf("storage: make bucket %s: %w", c.cfg.Bucket, err)
		}
	}
	c.bucketReady = true
	return nil
}

// ObjectKey returns "<unix millis>_<uuid>_<base name>". Directory components
// of filename are dropped and whitespace becomes '-'.
func ObjectKey(now time.Time, filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return fmt.Sprintf("%d_%s_%s", now.UnixMilli(), uuid.NewString(), base)
}
