package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/pkg/logger"
	minioSDK "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// NewMinioClient connects to the object store and makes sure the bucket exists.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig) (*minioSDK.Client, error) {
	client, err := minioSDK.New(cfg.Endpoint, &minioSDK.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minioSDK.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.WithFields(logrus.Fields{"bucket": cfg.Bucket}).Info("Bucket created")
	}
	return client, nil
}

// ObjectPutter is the part of the MinIO client used for uploads.
type ObjectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minioSDK.PutObjectOptions) (minioSDK.UploadInfo, error)
	EndpointURL() *url.URL
}

// MinioUploader stores picked images in an S3-compatible bucket.
type MinioUploader struct {
	client    ObjectPutter
	bucket    string
	folder    string
	mimeType  string
	publicURL string
	newKey    func() string
}

func NewMinioUploader(client ObjectPutter, cfg config.MinioConfig, media config.MediaConfig) *MinioUploader {
	return &MinioUploader{
		client:    client,
		bucket:    cfg.Bucket,
		folder:    media.Folder,
		mimeType:  media.MimeType,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		newKey:    uuid.NewString,
	}
}

func (u *MinioUploader) objectName() string {
	return path.Join(u.folder, u.newKey()+".jpg")
}

// ObjectURL builds the public URL of an object in the bucket.
func (u *MinioUploader) ObjectURL(objectName string) string {
	base := u.publicURL
	if base == "" {
		base = strings.TrimRight(u.client.EndpointURL().String(), "/")
	}
	return fmt.Sprintf("%s/%s/%s", base, u.bucket, objectName)
}

func (u *MinioUploader) Upload(ctx context.Context, localURI string) (Result, error) {
	filePath, err := LocalPath(localURI)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}

	objectName := u.objectName()
	info, err := u.client.FPutObject(ctx, u.bucket, objectName, filePath, minioSDK.PutObjectOptions{
		ContentType: u.mimeType,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}

	return Result{
		URL:      u.ObjectURL(objectName),
		PublicID: info.Key,
		Format:   "jpg",
		Bytes:    info.Size,
	}, nil
}
