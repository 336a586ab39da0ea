package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

// Config options for the S3 access point.
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	KeyPrefix       string // Optional key prefix for every stored object

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist

	Format         string            // item format tag (default: "binary")
	Encoding       string            // default content encoding (default: "utf-8")
	StorageAliases map[string]string // alias -> canonical storage key
	ParserAliases  map[string]string // alias -> canonical parser key
	Registry       *simpleitem.Registry
}

// AccessPoint is an S3-compatible implementation of the
// simpleitem.AccessPoint interface. Storage properties come from object
// metadata; content is fetched lazily from the object body.
type AccessPoint struct {
	client   *s3.Client
	bucket   string
	cfg      Config
	registry *simpleitem.Registry
}

// New creates a new S3-compatible access point.
func New(cfg Config) (*AccessPoint, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Format == "" {
		cfg.Format = simpleitem.FormatBinary
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}

	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	registry := cfg.Registry
	if registry == nil {
		registry = simpleitem.DefaultRegistry()
	}

	point := &AccessPoint{
		client:   s3.NewFromConfig(awsCfg, s3Options...),
		bucket:   cfg.Bucket,
		cfg:      cfg,
		registry: registry,
	}

	if cfg.CreateBucketIfNotExist {
		if err := point.createBucketIfNotExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return point, nil
}

// createBucketIfNotExists creates the bucket if it doesn't exist.
func (p *AccessPoint) createBucketIfNotExists(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err == nil {
		return nil
	}

	// Multiple error shapes cover MinIO and AWS responses
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "BadRequest") &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(p.bucket),
	}
	if p.cfg.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.cfg.Region),
		}
	}

	_, err = p.client.CreateBucket(ctx, createInput)
	if err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// AccessDescriptor implementation

func (p *AccessPoint) FormatTag() string { return p.cfg.Format }

func (p *AccessPoint) StorageAliases() map[string]string { return p.cfg.StorageAliases }

func (p *AccessPoint) ParserAliases() map[string]string { return p.cfg.ParserAliases }

func (p *AccessPoint) DefaultEncoding() string { return p.cfg.Encoding }

// StorageProperties lists the object-metadata properties populated on
// load.
func (p *AccessPoint) StorageProperties() []string {
	return []string{"size", "modified", "etag", "content_type"}
}

// NewItem builds a new, never-stored item for this access point.
func (p *AccessPoint) NewItem(properties map[string]any) (simpleitem.Item, error) {
	return p.registry.NewFresh(p, properties)
}

// Load materializes the item stored under key. A HeadObject call supplies
// the storage properties; the object body is only fetched when the item
// first parses its content.
func (p *AccessPoint) Load(ctx context.Context, key string) (simpleitem.Item, error) {
	objectKey := p.objectKey(key)

	result, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, &simpleitem.StoreError{Backend: "s3", Key: key, Op: "load", Err: simpleitem.ErrItemNotFound}
		}
		return nil, &simpleitem.StoreError{Backend: "s3", Key: key, Op: "load", Err: err}
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	props := map[string]any{
		"size":         aws.ToInt64(result.ContentLength),
		"modified":     aws.ToTime(result.LastModified),
		"etag":         strings.Trim(aws.ToString(result.ETag), "\""),
		"content_type": contentType,
	}

	stream := func() (io.ReadCloser, error) {
		result, err := p.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			var noSuchKey *types.NoSuchKey
			if errors.As(err, &noSuchKey) {
				return nil, &simpleitem.StoreError{Backend: "s3", Key: key, Op: "open", Err: simpleitem.ErrItemNotFound}
			}
			return nil, err
		}
		return result.Body, nil
	}

	item, err := p.registry.New(p, stream, props)
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "s3", Key: key, Op: "load", Err: err}
	}
	return item, nil
}

// Save persists item under key. Storage properties are derived from
// object metadata, so a dirty item is serialized and uploaded whole; a
// clean item is left untouched.
func (p *AccessPoint) Save(ctx context.Context, key string, item simpleitem.Item) error {
	if !item.ContentModified() && !item.ParserModified() {
		if p.exists(ctx, key) {
			return nil
		}
	}

	data, err := item.Serialize()
	if err != nil {
		return &simpleitem.StoreError{Backend: "s3", Key: key, Op: "save", Err: err}
	}

	uploader := manager.NewUploader(p.client)
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
		Body:   bytes.NewReader(data),
	}
	if p.cfg.EnableSSE {
		switch p.cfg.SSEAlgorithm {
		case "AES256":
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if p.cfg.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(p.cfg.SSEKMSKeyID)
			}
		}
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return &simpleitem.StoreError{Backend: "s3", Key: key, Op: "save", Err: err}
	}
	return nil
}

// Delete removes the item stored under key. S3 deletes are idempotent;
// deleting a missing key is not an error.
func (p *AccessPoint) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
	})
	if err != nil {
		return &simpleitem.StoreError{Backend: "s3", Key: key, Op: "delete", Err: err}
	}
	return nil
}

// List enumerates the keys of every stored item under the configured
// prefix.
func (p *AccessPoint) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
	}
	if p.cfg.KeyPrefix != "" {
		input.Prefix = aws.String(p.cfg.KeyPrefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &simpleitem.StoreError{Backend: "s3", Op: "list", Err: err}
		}
		for _, object := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(object.Key), p.cfg.KeyPrefix))
		}
	}
	return keys, nil
}

func (p *AccessPoint) exists(ctx context.Context, key string) bool {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(key)),
	})
	return err == nil
}

func (p *AccessPoint) objectKey(key string) string {
	return p.cfg.KeyPrefix + key
}
