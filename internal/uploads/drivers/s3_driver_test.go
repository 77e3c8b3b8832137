package drivers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Driver_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	d := &S3Driver{Client: fake, Bucket: "ecoa", PublicURL: "https://cdn.example.com/ecoa"}
	ctx := context.Background()

	require.NoError(t, d.Save(ctx, "templates/a.xml", bytes.NewReader([]byte("<a/>")), "application/xml"))

	rc, ct, err := d.Get(ctx, "templates/a.xml")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "<a/>", string(body))
	assert.Equal(t, "application/xml", ct)

	url, err := d.GenerateURL(ctx, "templates/a.xml", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ecoa/templates/a.xml", url)

	require.NoError(t, d.Delete(ctx, "templates/a.xml"))
	_, _, err = d.Get(ctx, "templates/a.xml")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3Driver_SaveError(t *testing.T) {
	fake := newFakeS3()
	fake.fail = errors.New("access denied")
	d := &S3Driver{Client: fake, Bucket: "ecoa"}
	err := d.Save(context.Background(), "k", bytes.NewReader(nil), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Driver_NoURLSource(t *testing.T) {
	d := &S3Driver{Client: newFakeS3(), Bucket: "ecoa"}
	_, err := d.GenerateURL(context.Background(), "k", 0)
	assert.Error(t, err)
}

func TestS3Driver_Prefix(t *testing.T) {
	fake := newFakeS3()
	d := &S3Driver{Client: fake, Bucket: "shared", Prefix: "ecoa/", PublicURL: "https://cdn.example.com"}
	ctx := context.Background()

	require.NoError(t, d.Save(ctx, "documents/x.pdf", bytes.NewReader([]byte("%PDF")), "application/pdf"))
	assert.Contains(t, fake.objects, "ecoa/documents/x.pdf")

	rc, _, err := d.Get(ctx, "documents/x.pdf")
	require.NoError(t, err)
	rc.Close()

	url, err := d.GenerateURL(ctx, "documents/x.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ecoa/documents/x.pdf", url)
}
