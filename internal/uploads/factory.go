package uploads

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads/drivers"
)

// NewStorageFromConfig builds the blob store for CoA PDFs and template XML.
func NewStorageFromConfig(ctx context.Context, cfg config.StorageConfig) (StorageDriver, error) {
	switch cfg.Type {
	case config.StorageLocal:
		slog.Info("initializing local storage", "dir", cfg.LocalBaseDir)
		return drivers.NewLocalFSDriver(cfg.LocalBaseDir, cfg.LocalPublicURL)
	case config.StorageS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("STORAGE_S3_BUCKET is required for s3 storage")
		}
		slog.Info("initializing S3 storage",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
			"prefix", cfg.S3Prefix,
		)
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return drivers.NewS3Driver(client, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// newS3Client uses the static keys when both are set and the default AWS
// credential chain otherwise.
func newS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3PathStyle
	}), nil
}
