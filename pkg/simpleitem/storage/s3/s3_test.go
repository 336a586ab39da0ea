package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

// TestS3AccessPoint_Configuration tests configuration and creation of the
// S3 access point
func TestS3AccessPoint_Configuration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("Defaults", func(t *testing.T) {
		point, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, point)

		assert.Equal(t, "us-east-1", point.cfg.Region)
		assert.Equal(t, simpleitem.FormatBinary, point.FormatTag())
		assert.Equal(t, "utf-8", point.DefaultEncoding())
		assert.Equal(t, []string{"size", "modified", "etag", "content_type"}, point.StorageProperties())
	})

	t.Run("ServerSideEncryption_AES256", func(t *testing.T) {
		point, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			EnableSSE:       true,
			SSEAlgorithm:    "AES256",
		})
		require.NoError(t, err)
		assert.NotNil(t, point)
	})

	t.Run("ServerSideEncryption_KMS_WithKeyID", func(t *testing.T) {
		point, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			EnableSSE:       true,
			SSEAlgorithm:    "aws:kms",
			SSEKMSKeyID:     "arn:aws:kms:us-east-1:123456789012:key/12345678-1234-1234-1234-123456789012",
		})
		require.NoError(t, err)
		assert.NotNil(t, point)
	})

	t.Run("KeyPrefix", func(t *testing.T) {
		point, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			KeyPrefix:       "items/",
		})
		require.NoError(t, err)
		assert.Equal(t, "items/data.txt", point.objectKey("data.txt"))
	})
}

// TestS3AccessPoint_MinIOConfiguration tests MinIO-specific configuration
func TestS3AccessPoint_MinIOConfiguration(t *testing.T) {
	t.Run("CustomEndpoint", func(t *testing.T) {
		point, err := New(Config{
			Bucket:          "test-bucket",
			Region:          "us-east-1",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000", point.cfg.Endpoint)
		assert.True(t, point.cfg.UsePathStyle)
	})
}

// TestS3AccessPoint_Integration tests actual S3/MinIO operations.
// This test requires a running MinIO instance or S3 credentials.
func TestS3AccessPoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	bucket := os.Getenv("AWS_S3_BUCKET")

	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		t.Skip("Skipping integration test: S3/MinIO environment variables not set")
	}

	point, err := New(Config{
		Bucket:                 bucket,
		Region:                 "us-east-1",
		AccessKeyID:            accessKey,
		SecretAccessKey:        secretKey,
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err, "Failed to create S3 access point")
	require.NotNil(t, point)

	ctx := context.Background()
	key := fmt.Sprintf("test/integration/%d/item.txt", time.Now().Unix())
	content := "Hello from the S3 integration test!"

	t.Run("SaveAndLoad", func(t *testing.T) {
		item, err := point.NewItem(map[string]any{simpleitem.ContentKey: content})
		require.NoError(t, err)
		require.NoError(t, point.Save(ctx, key, item))

		loaded, err := point.Load(ctx, key)
		require.NoError(t, err)

		snapshot := loaded.StorageSnapshot()
		assert.Equal(t, int64(len(content)), snapshot["size"])
		assert.NotEmpty(t, snapshot["etag"])

		got, err := loaded.Read(simpleitem.ContentKey)
		require.NoError(t, err)
		assert.Equal(t, []byte(content), got)
	})

	t.Run("CleanSaveIsNoop", func(t *testing.T) {
		loaded, err := point.Load(ctx, key)
		require.NoError(t, err)

		require.NoError(t, point.Save(ctx, key, loaded))
		assert.False(t, loaded.Loaded(), "a clean save needs no serialization")
	})

	t.Run("List", func(t *testing.T) {
		keys, err := point.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := point.Load(ctx, "nonexistent/item.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, simpleitem.ErrItemNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, point.Delete(ctx, key))

		_, err := point.Load(ctx, key)
		require.Error(t, err, "Should error when loading a deleted item")
	})

	t.Run("DeleteNonExistent", func(t *testing.T) {
		// S3 deletes are idempotent, so this does not error
		err := point.Delete(ctx, "nonexistent/item.txt")
		assert.NoError(t, err)
	})
}
