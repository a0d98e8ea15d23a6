package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePicked(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "picked.jpg")
	require.NoError(t, os.WriteFile(p, []byte("jpeg-bytes"), 0o600))
	return FileURI(p)
}

func newTestUploader(serverURL string) *CloudinaryUploader {
	cfg := config.Default().Media
	cfg.Endpoint = serverURL
	return NewCloudinaryUploader(cfg, nil)
}

func TestCloudinaryUpload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/do8y0zgci/image/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "react-native", r.FormValue("upload_preset"))
		assert.Equal(t, "do8y0zgci", r.FormValue("cloud_name"))
		assert.Equal(t, "fund_requests", r.FormValue("folder"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "blog.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		content, _ := io.ReadAll(file)
		assert.Equal(t, "jpeg-bytes", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://host/img.jpg","public_id":"fund_requests/abc","width":640,"height":480,"format":"jpg","bytes":10}`))
	}))
	defer srv.Close()

	res, err := newTestUploader(srv.URL).Upload(context.Background(), writePicked(t))
	require.NoError(t, err)
	assert.Equal(t, "https://host/img.jpg", res.URL)
	assert.Equal(t, "fund_requests/abc", res.PublicID)
	assert.Equal(t, 640, res.Width)
}

func TestCloudinaryUpload_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "non 2xx", status: http.StatusBadRequest, body: `{"error":{"message":"Upload preset not found"}}`, wantMsg: "Upload preset not found"},
		{name: "missing secure_url", status: http.StatusOK, body: `{"public_id":"x"}`, wantMsg: "no secure_url"},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantMsg: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestUploader(srv.URL).Upload(context.Background(), writePicked(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, fundraise.ErrUploadFailed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCloudinaryUpload_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestUploader(url).Upload(context.Background(), writePicked(t))
	assert.ErrorIs(t, err, fundraise.ErrUploadFailed)
}

func TestCloudinaryUpload_MissingFile(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := newTestUploader(srv.URL).Upload(context.Background(), FileURI(filepath.Join(t.TempDir(), "gone.jpg")))
	assert.ErrorIs(t, err, fundraise.ErrUploadFailed)
	assert.Equal(t, 0, calls)
}

func TestLocalPath(t *testing.T) {
	p, err := LocalPath("file:///tmp/staging/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/staging/a.jpg"), p)

	p, err = LocalPath("/tmp/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/tmp/b.jpg"), p)

	_, err = LocalPath("https://host/a.jpg")
	assert.Error(t, err)

	_, err = LocalPath("")
	assert.Error(t, err)
}
