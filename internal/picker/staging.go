package picker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/linskybing/fundraise-go/internal/media"
	_ "golang.org/x/image/webp"
)

// Stage keeps picked images on local disk until they are uploaded.
// Accepted input formats are JPEG, PNG, GIF and WebP.
type Stage struct {
	dir       string
	maxBytes  int64
	maxPixels int64
}

// NewStage bounds both the upload size and the decoded width*height.
func NewStage(dir string, maxBytes, maxPixels int64) (*Stage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stage{dir: dir, maxBytes: maxBytes, maxPixels: maxPixels}, nil
}

func (s *Stage) Dir() string {
	return s.dir
}

// Crop is the rectangle the user confirmed in the editor. A zero Crop keeps
// the whole image.
type Crop struct {
	X, Y, W, H int
}

func (c Crop) empty() bool {
	return c.W <= 0 || c.H <= 0
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Save validates r as an image, applies crop and quality, and stores it as JPEG.
func (s *Stage) Save(r io.Reader, crop Crop, opts Options) (Asset, error) {
	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read picked image: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return Asset{}, ErrTooLarge
	}

	mt := mimetype.Detect(raw)
	if opts.MediaTypes == MediaTypeImages && !strings.HasPrefix(mt.String(), "image/") {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotAnImage, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		return Asset{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	if opts.AllowsEditing && !crop.empty() {
		rect := image.Rect(crop.X, crop.Y, crop.X+crop.W, crop.Y+crop.H).
			Add(img.Bounds().Min).
			Intersect(img.Bounds())
		if rect.Empty() {
			return Asset{}, fmt.Errorf("crop rectangle outside image bounds")
		}
		if si, ok := img.(subImager); ok {
			img = si.SubImage(rect)
		}
	}

	path := filepath.Join(s.dir, uuid.NewString()+".jpg")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return Asset{}, fmt.Errorf("create staged image: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		_ = os.Remove(path)
		return Asset{}, fmt.Errorf("encode staged image: %w", err)
	}

	b := img.Bounds()
	return Asset{URI: media.FileURI(path), Width: b.Dx(), Height: b.Dy()}, nil
}

func jpegQuality(q float64) int {
	v := int(q * 100)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// Remove deletes a staged image. URIs outside the staging dir are ignored.
func (s *Stage) Remove(uri string) error {
	path, err := media.LocalPath(uri)
	if err != nil {
		return err
	}
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Sweep removes staged images older than ttl and reports how many it removed.
func (s *Stage) Sweep(ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < ttl {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// UploadLibrary is the Library backed by a file the client sent along with
// the pick request. A nil reader means the user cancelled.
type UploadLibrary struct {
	stage *Stage
	file  io.Reader
	crop  Crop
}

func NewUploadLibrary(stage *Stage, file io.Reader, crop Crop) *UploadLibrary {
	return &UploadLibrary{stage: stage, file: file, crop: crop}
}

func (l *UploadLibrary) Launch(ctx context.Context, opts Options) (Result, error) {
	if l.file == nil {
		return Result{Canceled: true}, nil
	}
	asset, err := l.stage.Save(l.file, l.crop, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Assets: []Asset{asset}}, nil
}
