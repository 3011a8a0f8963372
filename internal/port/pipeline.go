package port

import (
	"context"

	"papyr/internal/domain"
)

// TextRecognizer extracts plain text from a single image. It is the
// per-page unit of work: stateless, no built-in retry, errors are
// fatal for the page.
type TextRecognizer interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Rasterizer converts PDF bytes into JPEG-encoded page images in
// 1-indexed page order. dpi <= 0 selects the default resolution.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, dpi int) ([][]byte, error)
}

// DocumentProcessor runs the full extraction pipeline over one
// document's raw bytes.
type DocumentProcessor interface {
	Process(ctx context.Context, data []byte, contentType, fileName string) (*domain.ExtractionResult, error)
}
