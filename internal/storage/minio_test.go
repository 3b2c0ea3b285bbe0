package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgate/internal/config"
)

func TestNewMinIO_RequiresSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{name: "endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, want: "endpoint"},
		{name: "credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", Bucket: "b"}, want: "credentials"},
		{name: "bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, want: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, s)
		})
	}
}

func TestBucketStorage_KeyMapping(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		object string
	}{
		{prefix: "", key: "shop/people/p.yaml", object: "shop/people/p.yaml"},
		{prefix: "schemas", key: "shop/people/p.yaml", object: "schemas/shop/people/p.yaml"},
		{prefix: "/tenant-a/", key: "shop/people/p.yaml", object: "tenant-a/shop/people/p.yaml"},
	}
	for _, tt := range tests {
		b := newBucketStorage(nil, "bucket", tt.prefix)
		assert.Equal(t, tt.object, b.objectName(tt.key))
		assert.Equal(t, tt.key, b.storageKey(tt.object))
	}
}

func TestTranslateMinIOError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, translateMinIOError(missing), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	err := translateMinIOError(denied)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, denied, err)
}
