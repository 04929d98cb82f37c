// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation for rlottie and the selected WebP encoder backend.
package check

import (
	"errors"
	"fmt"

	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/render"
	"github.com/backmassage/stickerpress/internal/webp"
)

// Sentinel errors returned by CheckDeps when a required library or tool is
// missing.
var (
	ErrRlottieNotFound  = errors.New("librlottie not found")
	ErrLibwebpNotFound  = errors.New("libwebp/libwebpmux not found")
	ErrImg2webpNotFound = errors.New("img2webp not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// RunCheck runs the interactive --check flow: prints availability of
// librlottie and both WebP encoder backends. This is informational only,
// it does not stop on failure.
func RunCheck(log Logger) {
	log.Info("=== System Check ===")

	if err := render.Available(); err != nil {
		log.Error("librlottie: %v", err)
		log.Warn("  set STICKERPRESS_RLOTTIE_LIB to point at the shared library")
	} else {
		log.Success("librlottie: OK")
	}

	if version, err := webp.NativeAvailable(); err != nil {
		log.Error("libwebp (native encoder): %v", err)
		log.Warn("  set STICKERPRESS_LIBWEBP_LIB / STICKERPRESS_LIBWEBPMUX_LIB to override lookup")
	} else {
		log.Success("libwebp (native encoder): %s", version)
	}

	if path, err := webp.Img2webpAvailable(); err != nil {
		log.Warn("img2webp (fallback encoder): %v", err)
	} else {
		log.Success("img2webp (fallback encoder): %s", path)
	}
}

// CheckDeps validates that the renderer and the configured encoder backend
// are usable before any file is touched. Fails fast with a sentinel error.
func CheckDeps(cfg *config.Config) error {
	if err := render.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrRlottieNotFound, err)
	}
	switch cfg.Encoder {
	case config.EncoderNative:
		if _, err := webp.NativeAvailable(); err != nil {
			return fmt.Errorf("%w: %v", ErrLibwebpNotFound, err)
		}
	case config.EncoderImg2webp:
		if _, err := webp.Img2webpAvailable(); err != nil {
			return fmt.Errorf("%w: %v", ErrImg2webpNotFound, err)
		}
	}
	return nil
}
