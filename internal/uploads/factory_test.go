package uploads

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads/drivers"
)

func TestNewStorageFromConfig_Local(t *testing.T) {
	ctx := context.Background()
	d, err := NewStorageFromConfig(ctx, config.StorageConfig{
		Type:           config.StorageLocal,
		LocalBaseDir:   t.TempDir(),
		LocalPublicURL: "/api/files",
	})
	require.NoError(t, err)
	assert.IsType(t, &drivers.LocalFSDriver{}, d)

	require.NoError(t, d.Save(ctx, "templates/t.xml", bytes.NewReader([]byte("<t/>")), "application/xml"))
	rc, _, err := d.Get(ctx, "templates/t.xml")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "<t/>", string(data))
}

func TestNewStorageFromConfig_S3(t *testing.T) {
	d, err := NewStorageFromConfig(context.Background(), config.StorageConfig{
		Type:        config.StorageS3,
		S3Endpoint:  "http://localhost:9000",
		S3Bucket:    "ecoa-documents",
		S3Region:    "us-east-1",
		S3AccessKey: "minio",
		S3SecretKey: "minio-secret",
		S3Prefix:    "ecoa",
		S3PathStyle: true,
	})
	require.NoError(t, err)
	s3d, ok := d.(*drivers.S3Driver)
	require.True(t, ok)
	assert.Equal(t, "ecoa-documents", s3d.Bucket)
	assert.Equal(t, "ecoa", s3d.Prefix)
}

func TestNewStorageFromConfig_Invalid(t *testing.T) {
	_, err := NewStorageFromConfig(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage type")

	_, err = NewStorageFromConfig(context.Background(), config.StorageConfig{Type: config.StorageS3})
	assert.ErrorContains(t, err, "STORAGE_S3_BUCKET")
}
