package media

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	minioSDK "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket, object, file string
	contentType          string
	err                  error
}

func (f *fakePutter) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minioSDK.PutObjectOptions) (minioSDK.UploadInfo, error) {
	f.bucket, f.object, f.file, f.contentType = bucketName, objectName, filePath, opts.ContentType
	if f.err != nil {
		return minioSDK.UploadInfo{}, f.err
	}
	return minioSDK.UploadInfo{Bucket: bucketName, Key: objectName, Size: 10}, nil
}

func (f *fakePutter) EndpointURL() *url.URL {
	return &url.URL{Scheme: "http", Host: "localhost:9000"}
}

func newTestMinioUploader(p *fakePutter, publicURL string) *MinioUploader {
	cfg := config.Default()
	cfg.Minio.Bucket = "covers"
	cfg.Minio.PublicURL = publicURL
	u := NewMinioUploader(p, cfg.Minio, cfg.Media)
	u.newKey = func() string { return "fixed" }
	return u
}

func TestMinioUpload_Success(t *testing.T) {
	p := &fakePutter{}
	u := newTestMinioUploader(p, "https://cdn.example/")

	res, err := u.Upload(context.Background(), "file:///tmp/staging/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "covers", p.bucket)
	assert.Equal(t, "fund_requests/fixed.jpg", p.object)
	assert.Equal(t, "/tmp/staging/a.jpg", p.file)
	assert.Equal(t, "image/jpeg", p.contentType)
	assert.Equal(t, "https://cdn.example/covers/fund_requests/fixed.jpg", res.URL)
}

func TestMinioUpload_EndpointFallback(t *testing.T) {
	u := newTestMinioUploader(&fakePutter{}, "")
	assert.Equal(t, "http://localhost:9000/covers/x.jpg", u.ObjectURL("x.jpg"))
}

func TestMinioUpload_Failure(t *testing.T) {
	u := newTestMinioUploader(&fakePutter{err: errors.New("connection refused")}, "")

	_, err := u.Upload(context.Background(), "file:///tmp/staging/a.jpg")
	assert.ErrorIs(t, err, fundraise.ErrUploadFailed)
	assert.Contains(t, err.Error(), "connection refused")
}
