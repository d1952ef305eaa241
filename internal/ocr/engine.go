// Package ocr abstracts the external text recognition collaborator. The
// rest of the system only sees a single newline-delimited text blob.
package ocr

import (
	"context"
	"fmt"

	"github.com/attendly/attendly-api/pkg/config"
)

// Engine converts a timetable image into a raw text blob. A failed
// recognition yields an error and no partial result.
type Engine interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// New builds the engine selected by configuration.
func New(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGemini(cfg.APIKey, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown ocr provider %q", cfg.Provider)
	}
}
