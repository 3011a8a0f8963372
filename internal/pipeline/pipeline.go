// Package pipeline orchestrates document extraction: classification,
// format dispatch, rasterization, per-page OCR and key-value
// extraction, producing one ExtractionResult per run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"papyr/internal/classify"
	"papyr/internal/domain"
	"papyr/internal/extract"
	"papyr/internal/port"
)

// pageMarkerPrefix is the literal prefix of every page delimiter;
// pages-processed is computed by counting its occurrences.
const pageMarkerPrefix = "--- PAGE"

// PageDelimiter returns the marker inserted before page n's text.
func PageDelimiter(n int) string {
	return fmt.Sprintf("--- PAGE %d ---", n)
}

// Config holds pipeline settings.
type Config struct {
	DPI             int    // rasterization resolution; <= 0 -> rasterizer default
	PageConcurrency int    // max pages OCR'd in parallel; <= 0 -> 1
	TempDir         string // staging directory; empty -> system default
}

// Pipeline implements port.DocumentProcessor.
type Pipeline struct {
	rasterizer port.Rasterizer
	recognizer port.TextRecognizer
	cfg        Config
}

var _ port.DocumentProcessor = (*Pipeline)(nil)

// New creates a Pipeline with the given stage implementations.
func New(rasterizer port.Rasterizer, recognizer port.TextRecognizer, cfg Config) *Pipeline {
	if cfg.PageConcurrency <= 0 {
		cfg.PageConcurrency = 1
	}
	return &Pipeline{rasterizer: rasterizer, recognizer: recognizer, cfg: cfg}
}

// Process runs the extraction pipeline over one document. Dispatch is
// by the declared content type; classification cross-checks it but a
// mismatch is only logged. Any stage error aborts the run; partial
// results are never returned.
func (p *Pipeline) Process(ctx context.Context, data []byte, contentType, fileName string) (*domain.ExtractionResult, error) {
	meta, err := classify.Classify(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("classifying document: %w", err)
	}
	if meta.MIMEType != contentType {
		log.Printf("pipeline.Process: declared type %q but sniffed %q for %s",
			contentType, meta.MIMEType, fileName)
	}

	tmpPath, err := p.stageTempFile(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("staging temp file: %w", err)
	}
	defer cleanupTempFile(tmpPath)

	var fullText string
	var fields domain.FieldMap

	switch contentType {
	case domain.ContentTypeJPEG, domain.ContentTypePNG:
		text, err := p.recognizer.ExtractText(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		fullText = text
		fields = extract.Fields(text)

	case domain.ContentTypePDF:
		fullText, fields, err = p.processPDF(ctx, data)
		if err != nil {
			return nil, err
		}

	case domain.ContentTypeText, domain.ContentTypeDoc, domain.ContentTypeDocX:
		// Word documents are decoded the same way as plain text; real
		// .doc/.docx containers that are not valid UTF-8 fail here.
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("decoding text: %w", domain.ErrInvalidTextEncoding)
		}
		fullText = string(data)
		fields = extract.Fields(fullText)

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}

	pagesProcessed := 1
	if strings.Contains(fullText, pageMarkerPrefix) {
		pagesProcessed = strings.Count(fullText, pageMarkerPrefix)
	}

	return &domain.ExtractionResult{
		FullText:  fullText,
		KeyValues: fields,
		Metadata: domain.ExtractionMetadata{
			ProcessedAt:    time.Now().UTC(),
			PagesProcessed: pagesProcessed,
		},
	}, nil
}

// processPDF rasterizes the document and OCRs each page, bounded by
// the page concurrency limit. Results are reassembled in page order
// before delimiters are inserted; key-value extraction runs on page
// 1's raw text only, since field headers are assumed to live there.
func (p *Pipeline) processPDF(ctx context.Context, data []byte) (string, domain.FieldMap, error) {
	pages, err := p.rasterizer.Rasterize(ctx, data, p.cfg.DPI)
	if err != nil {
		return "", nil, fmt.Errorf("rasterizing pdf: %w", err)
	}
	if len(pages) == 0 {
		return "", nil, fmt.Errorf("rasterizing pdf: document has no pages")
	}

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.PageConcurrency)
	for i := range pages {
		g.Go(func() error {
			text, err := p.recognizer.ExtractText(gctx, pages[i])
			if err != nil {
				return fmt.Errorf("ocr page %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&b, "\n%s\n%s\n", PageDelimiter(i+1), text)
	}
	return b.String(), extract.Fields(texts[0]), nil
}

// stageTempFile writes the document to a scoped temp file for stages
// that need filesystem staging. The caller removes it via
// cleanupTempFile on every exit path.
func (p *Pipeline) stageTempFile(data []byte, contentType string) (string, error) {
	suffix := domain.SupportedContentTypes[contentType]
	f, err := os.CreateTemp(p.cfg.TempDir, "papyr-doc-*"+suffix)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func cleanupTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("pipeline.cleanupTempFile: failed to remove %s: %v", path, err)
	}
}
