package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
)

const maxResponseBytes = 1 << 20

// CloudinaryUploader posts unsigned uploads to a Cloudinary-compatible
// endpoint: {endpoint}/{cloud_name}/image/upload.
type CloudinaryUploader struct {
	httpClient   *http.Client
	endpoint     string
	cloudName    string
	uploadPreset string
	folder       string
	fileName     string
	mimeType     string
}

func NewCloudinaryUploader(cfg config.MediaConfig, httpClient *http.Client) *CloudinaryUploader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &CloudinaryUploader{
		httpClient:   httpClient,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		folder:       cfg.Folder,
		fileName:     cfg.FileName,
		mimeType:     cfg.MimeType,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int64  `json:"bytes"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *CloudinaryUploader) uploadURL() string {
	return fmt.Sprintf("%s/%s/image/upload", u.endpoint, u.cloudName)
}

func (u *CloudinaryUploader) Upload(ctx context.Context, localURI string) (Result, error) {
	body, contentType, err := u.buildBody(localURI)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL(), body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %w", fundraise.ErrUploadFailed, err)
	}

	var parsed cloudinaryResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return Result{}, fmt.Errorf("%w: media host returned %d: %s", fundraise.ErrUploadFailed, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return Result{}, fmt.Errorf("%w: decode response: %w", fundraise.ErrUploadFailed, decodeErr)
	}
	if parsed.SecureURL == "" {
		return Result{}, fmt.Errorf("%w: response has no secure_url", fundraise.ErrUploadFailed)
	}

	return Result{
		URL:      parsed.SecureURL,
		PublicID: parsed.PublicID,
		Format:   parsed.Format,
		Width:    parsed.Width,
		Height:   parsed.Height,
		Bytes:    parsed.Bytes,
	}, nil
}

func (u *CloudinaryUploader) buildBody(localURI string) (*bytes.Buffer, string, error) {
	path, err := LocalPath(localURI)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open picked image: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, u.fileName))
	header.Set("Content-Type", u.mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy picked image: %w", err)
	}

	fields := [][2]string{
		{"upload_preset", u.uploadPreset},
		{"cloud_name", u.cloudName},
	}
	if u.folder != "" {
		fields = append(fields, [2]string{"folder", u.folder})
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", kv[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
