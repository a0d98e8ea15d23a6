package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/internal/api/handlers"
	"github.com/linskybing/fundraise-go/internal/api/middleware"
	"github.com/linskybing/fundraise-go/internal/api/routes"
	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/media"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/repository"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"gorm.io/gorm"
)

const (
	TestJWTSecret = "test-secret-key"
	TestIssuer    = "fundraise-test"
	TestKYCRoute  = "/kycVerify"
)

var TestOrigins = []string{"http://localhost:*"}

// MediaHost is a fake Cloudinary upload endpoint.
type MediaHost struct {
	Server *httptest.Server

	mu      sync.Mutex
	status  int
	uploads []upload
	block   chan struct{}
}

type upload struct {
	Preset   string
	Cloud    string
	Folder   string
	FileName string
	MimeType string
}

func newMediaHost() *MediaHost {
	h := &MediaHost{status: http.StatusOK}
	h.Server = httptest.NewServer(http.HandlerFunc(h.serve))
	return h
}

func (h *MediaHost) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	u := upload{
		Preset: r.FormValue("upload_preset"),
		Cloud:  r.FormValue("cloud_name"),
		Folder: r.FormValue("folder"),
	}
	if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
		u.FileName = fhs[0].Filename
		u.MimeType = fhs[0].Header.Get("Content-Type")
	}

	h.mu.Lock()
	h.uploads = append(h.uploads, u)
	n := len(h.uploads)
	status, block := h.status, h.block
	h.mu.Unlock()

	if block != nil {
		<-block
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upload rejected"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"secure_url": fmt.Sprintf("https://res.example.com/%s/image/upload/v1/fund_requests/blog-%d.jpg", u.Cloud, n),
		"public_id":  fmt.Sprintf("fund_requests/blog-%d", n),
		"format":     "jpg",
	})
}

// SetStatus makes the next uploads answer with status.
func (h *MediaHost) SetStatus(status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
}

// Block holds every upload until the returned func is called.
func (h *MediaHost) Block() func() {
	ch := make(chan struct{})
	h.mu.Lock()
	h.block = ch
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.block = nil
		h.mu.Unlock()
		close(ch)
	}
}

func (h *MediaHost) Uploads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.uploads)
}

// LastUpload reports the form fields of the most recent upload.
func (h *MediaHost) LastUpload() (preset, cloud, folder, fileName, mimeType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.uploads) == 0 {
		return
	}
	u := h.uploads[len(h.uploads)-1]
	return u.Preset, u.Cloud, u.Folder, u.FileName, u.MimeType
}

// API is a fully wired router backed by conn and a fake media host.
type API struct {
	Router   *gin.Engine
	Media    *MediaHost
	Repos    *repository.Repos
	Services *application.Services
	Stage    *picker.Stage
}

func NewAPI(t testing.TB, conn *gorm.DB) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Discard()
	middleware.Init(TestJWTSecret, TestIssuer)

	host := newMediaHost()
	t.Cleanup(host.Server.Close)

	cfg := config.Default().Media
	cfg.Endpoint = host.Server.URL
	uploader := media.NewCloudinaryUploader(cfg, host.Server.Client())

	stage, err := picker.NewStage(t.TempDir(), 1<<20, 1<<20)
	if err != nil {
		t.Fatalf("staging: %v", err)
	}

	repos := repository.NewRepositories(conn)
	services := application.New(repos, uploader, application.Options{
		KYCRoute:   TestKYCRoute,
		IdleTTL:    time.Hour,
		DiscardImg: func(uri string) { _ = stage.Remove(uri) },
	})

	router := gin.New()
	router.Use(middleware.CORSMiddleware(TestOrigins))
	routes.RegisterRoutes(router, handlers.New(services, stage, router, TestOrigins))

	return &API{Router: router, Media: host, Repos: repos, Services: services, Stage: stage}
}

// Token signs a bearer token for uid.
func Token(t testing.TB, uid string) string {
	t.Helper()
	tok, err := middleware.GenerateToken(uid, uid, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}
