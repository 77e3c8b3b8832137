package drivers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultPresignExpiry = time.Hour

// S3API is the subset of the S3 client the driver calls.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Driver keeps blobs in an S3-compatible bucket.
type S3Driver struct {
	Client        S3API
	PresignClient *s3.PresignClient
	Bucket        string
	PublicURL     string // set when the bucket is publicly readable
	// Prefix namespaces the objects when the bucket is shared.
	Prefix string
}

func NewS3Driver(client *s3.Client, bucket, prefix, publicURL string) *S3Driver {
	return &S3Driver{
		Client:        client,
		PresignClient: s3.NewPresignClient(client),
		Bucket:        bucket,
		PublicURL:     strings.TrimSuffix(publicURL, "/"),
		Prefix:        prefix,
	}
}

func (d *S3Driver) objectKey(key string) string {
	if d.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(d.Prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

func (d *S3Driver) Save(ctx context.Context, key string, content io.Reader, contentType string) error {
	_, err := d.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(d.objectKey(key)),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

func (d *S3Driver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	resp, err := d.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(d.objectKey(key)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, "", fmt.Errorf("%s: %w", key, fs.ErrNotExist)
		}
		return nil, "", fmt.Errorf("failed to get %s from S3: %w", key, err)
	}
	return resp.Body, aws.ToString(resp.ContentType), nil
}

func (d *S3Driver) Delete(ctx context.Context, key string) error {
	_, err := d.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(d.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}

// GenerateURL returns the public object URL when configured, else a presigned GET URL.
func (d *S3Driver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.PublicURL != "" {
		return d.PublicURL + "/" + d.objectKey(key), nil
	}
	if d.PresignClient == nil {
		return "", fmt.Errorf("no public URL or presigner configured for bucket %s", d.Bucket)
	}
	if expires <= 0 {
		expires = defaultPresignExpiry
	}
	req, err := d.PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(d.objectKey(key)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return req.URL, nil
}
