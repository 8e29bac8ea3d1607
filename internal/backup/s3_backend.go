package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client used by s3Backend.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// s3Backend implements Backend on an S3 bucket. Object keys are prefix + name.
type s3Backend struct {
	client s3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Backend creates a new S3-based snapshot backend using the default AWS
// credential chain.
func NewS3Backend(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Backend, error) {
	logger = logger.With().Str("component", "s3-backup").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 backup backend initialised")

	return newS3Backend(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Backend(client s3API, bucket, prefix string, logger zerolog.Logger) *s3Backend {
	return &s3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Put uploads data to prefix + name.
func (b *s3Backend) Put(ctx context.Context, name string, data []byte) error {
	key := b.prefix + name

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", b.bucket, key, err)
	}

	b.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("snapshot uploaded to S3")
	return nil
}

// Get downloads prefix + name.
func (b *s3Backend) Get(ctx context.Context, name string) ([]byte, error) {
	key := b.prefix + name

	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", b.bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object %s: %w", key, err)
	}

	return data, nil
}

// List returns snapshot names found under the prefix.
func (b *s3Backend) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})

	names := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			b.logger.Error().Err(err).Str("bucket", b.bucket).Msg("failed to list S3 objects")
			return nil, fmt.Errorf("failed to list S3 objects (bucket=%s): %w", b.bucket, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), b.prefix)
			if isSnapshotName(name) {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	return names, nil
}

// fallbackBackend tries the primary backend first and falls back to the secondary one.
type fallbackBackend struct {
	primary   Backend
	secondary Backend
	logger    zerolog.Logger
}

// NewFallbackBackend creates a backend that uses primary when it works and
// secondary otherwise. If primary is nil, only secondary is used.
func NewFallbackBackend(primary, secondary Backend, logger zerolog.Logger) Backend {
	return &fallbackBackend{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-backup").Logger(),
	}
}

// Put stores to primary, or to secondary when primary fails.
func (b *fallbackBackend) Put(ctx context.Context, name string, data []byte) error {
	if b.primary != nil {
		err := b.primary.Put(ctx, name, data)
		if err == nil {
			return nil
		}
		b.logger.Warn().
			Err(err).
			Str("snapshot", name).
			Msg("failed to store snapshot in primary backend, falling back")
	}

	return b.secondary.Put(ctx, name, data)
}

// Get reads from primary, or from secondary when primary fails.
func (b *fallbackBackend) Get(ctx context.Context, name string) ([]byte, error) {
	if b.primary != nil {
		data, err := b.primary.Get(ctx, name)
		if err == nil {
			return data, nil
		}
		b.logger.Warn().
			Err(err).
			Str("snapshot", name).
			Msg("failed to fetch snapshot from primary backend, falling back")
	}

	return b.secondary.Get(ctx, name)
}

// List merges snapshot names from both backends.
func (b *fallbackBackend) List(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	names := []string{}

	add := func(list []string) {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	if b.primary != nil {
		list, err := b.primary.List(ctx)
		if err != nil {
			b.logger.Warn().Err(err).Msg("failed to list primary backend")
		} else {
			add(list)
		}
	}

	list, err := b.secondary.List(ctx)
	if err != nil {
		return nil, err
	}
	add(list)
	sort.Strings(names)

	return names, nil
}
