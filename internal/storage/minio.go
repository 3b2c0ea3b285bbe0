package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docgate/internal/config"
)

const bucketCheckTimeout = 10 * time.Second

// bucketStorage keeps schema files as objects in an S3-compatible bucket,
// optionally below a key prefix shared with other data.
type bucketStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIO connects to the bucket described by cfg, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (Storage, error) {
	switch {
	case cfg.Endpoint == "":
		return nil, errors.New("minio endpoint is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("minio credentials are required")
	case cfg.Bucket == "":
		return nil, errors.New("minio bucket is required")
	}

	transport, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(transport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return newBucketStorage(cli, cfg.Bucket, cfg.Prefix), nil
}

func newBucketStorage(cli *minio.Client, bucket, prefix string) *bucketStorage {
	return &bucketStorage{client: cli, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// objectName maps a storage key to the object name inside the bucket.
func (b *bucketStorage) objectName(key string) string {
	if b.prefix == "" {
		return key
	}
	return path.Join(b.prefix, key)
}

// storageKey is the inverse of objectName.
func (b *bucketStorage) storageKey(object string) string {
	if b.prefix == "" {
		return object
	}
	return strings.TrimPrefix(object, b.prefix+"/")
}

// Put uploads an object. S3 PUTs replace objects atomically.
func (b *bucketStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := b.client.PutObject(ctx, b.bucket, b.objectName(key), r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: info.LastModified,
		Metadata:     opt.Metadata,
	}, nil
}

func (b *bucketStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translateMinIOError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, translateMinIOError(err)
	}
	return obj, b.toInfo(st), nil
}

// Delete removes an object. S3 deletes are idempotent, so existence is checked first.
func (b *bucketStorage) Delete(ctx context.Context, key string) error {
	name := b.objectName(key)
	if _, err := b.client.StatObject(ctx, b.bucket, name, minio.StatObjectOptions{}); err != nil {
		return translateMinIOError(err)
	}
	return b.client.RemoveObject(ctx, b.bucket, name, minio.RemoveObjectOptions{})
}

func (b *bucketStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    b.objectName(strings.TrimSuffix(prefix, "/")) + "/",
		Recursive: false,
	}
	var out []ObjectInfo
	for obj := range b.client.ListObjects(ctx, b.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// common prefixes
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, b.toInfo(obj))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (b *bucketStorage) toInfo(obj minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          b.storageKey(obj.Key),
		Size:         obj.Size,
		ETag:         obj.ETag,
		ContentType:  obj.ContentType,
		LastModified: obj.LastModified,
		Metadata:     obj.UserMetadata,
	}
}

func translateMinIOError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
