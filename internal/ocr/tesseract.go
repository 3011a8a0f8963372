// Package ocr wraps the Tesseract engine behind the TextRecognizer
// port. It is the single per-page unit of work: one image in, plain
// text out, no retry. Retry policy, if ever wanted, belongs to the
// pipeline, not here.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"papyr/internal/port"
)

// Config holds Tesseract settings.
type Config struct {
	Language string // tesseract language pack; empty -> engine default
	DPI      int    // hint for images without DPI metadata; 0 -> unset
}

// TesseractRecognizer implements port.TextRecognizer with gosseract.
// A fresh client per call keeps the adapter stateless; gosseract
// clients are not safe for concurrent reuse.
type TesseractRecognizer struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

var _ port.TextRecognizer = (*TesseractRecognizer)(nil)

// NewTesseract constructs a Tesseract-backed text recognizer.
func NewTesseract(cfg Config) *TesseractRecognizer {
	return &TesseractRecognizer{cfg: cfg, clientFactory: gosseract.NewClient}
}

// ExtractText runs OCR over a single image and returns its plain text.
func (r *TesseractRecognizer) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer func() { _ = c.Close() }()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if r.cfg.Language != "" {
		if err := c.SetLanguage(r.cfg.Language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if r.cfg.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(r.cfg.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
