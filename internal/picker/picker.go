// Package picker lets a user choose one image from their media library.
package picker

import (
	"context"
	"errors"
	"fmt"

	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
)

// PermissionMessage is shown when media-library access is refused.
const PermissionMessage = "Permission to access media library is required!"

var (
	ErrPermissionDenied = errors.New("media library permission denied")
	ErrNotAnImage       = errors.New("selected file is not an image")
	ErrTooLarge         = errors.New("selected image is too large")
)

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

type MediaType string

const MediaTypeImages MediaType = "images"

// Options mirror the knobs of the platform image picker.
type Options struct {
	MediaTypes    MediaType
	AllowsEditing bool
	// Quality is the JPEG compression quality in (0, 1].
	Quality float64
}

func DefaultOptions() Options {
	return Options{
		MediaTypes:    MediaTypeImages,
		AllowsEditing: true,
		Quality:       1,
	}
}

type Asset struct {
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Result struct {
	Canceled bool
	Assets   []Asset
}

// Permissions asks the host platform for media-library access.
type Permissions interface {
	RequestMediaLibrary(ctx context.Context) (PermissionStatus, error)
}

// Library opens the platform picker and waits for the user.
type Library interface {
	Launch(ctx context.Context, opts Options) (Result, error)
}

type Selector struct {
	perms Permissions
	lib   Library
	opts  Options
}

func NewSelector(perms Permissions, lib Library, opts Options) *Selector {
	return &Selector{perms: perms, lib: lib, opts: opts}
}

// PickImage returns the chosen image, or ok=false when the user cancels.
// A refused permission yields ErrPermissionDenied before the picker opens.
func (s *Selector) PickImage(ctx context.Context) (ref fundraise.ImageRef, ok bool, err error) {
	status, err := s.perms.RequestMediaLibrary(ctx)
	if err != nil {
		return fundraise.ImageRef{}, false, fmt.Errorf("request media library permission: %w", err)
	}
	if status != PermissionGranted {
		return fundraise.ImageRef{}, false, ErrPermissionDenied
	}

	res, err := s.lib.Launch(ctx, s.opts)
	if err != nil {
		return fundraise.ImageRef{}, false, err
	}
	if res.Canceled || len(res.Assets) == 0 {
		return fundraise.ImageRef{}, false, nil
	}
	return fundraise.ImageRef{URI: res.Assets[0].URI}, true, nil
}

// StaticPermission reports a decision already taken by the client device.
type StaticPermission PermissionStatus

func (p StaticPermission) RequestMediaLibrary(ctx context.Context) (PermissionStatus, error) {
	switch PermissionStatus(p) {
	case PermissionGranted, PermissionDenied:
		return PermissionStatus(p), nil
	default:
		return PermissionUndetermined, nil
	}
}
