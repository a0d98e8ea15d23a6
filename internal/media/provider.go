package media

import (
	"context"
	"fmt"
	"net/http"

	"github.com/linskybing/fundraise-go/internal/config"
)

// New builds the uploader selected by MEDIA_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.Media.Provider {
	case config.MediaProviderCloudinary:
		return NewCloudinaryUploader(cfg.Media, &http.Client{Timeout: cfg.Media.HTTPTimeout}), nil
	case config.MediaProviderMinio:
		client, err := NewMinioClient(ctx, cfg.Minio)
		if err != nil {
			return nil, err
		}
		return NewMinioUploader(client, cfg.Minio, cfg.Media), nil
	default:
		return nil, fmt.Errorf("unsupported media provider %q", cfg.Media.Provider)
	}
}
