// Package raster converts PDF documents into per-page JPEG images for
// OCR. Rendering is delegated to poppler's pdftoppm; pdfcpu validates
// the document and supplies the expected page count up front so a
// malformed PDF fails the whole document rather than yielding a
// partial page set.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"papyr/internal/port"
)

// DefaultDPI balances OCR accuracy against rendering time.
const DefaultDPI = 300

// Config holds rasterizer settings.
type Config struct {
	Pdftoppm string // binary name or absolute path; empty -> "pdftoppm"
	TempDir  string // staging directory for page renders; empty -> system default
}

// PopplerRasterizer renders PDF pages with pdftoppm.
type PopplerRasterizer struct {
	cfg    Config
	runner Runner
}

var _ port.Rasterizer = (*PopplerRasterizer)(nil)

// New creates a pdftoppm-backed rasterizer.
func New(cfg Config) *PopplerRasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	return &PopplerRasterizer{cfg: cfg, runner: execRunner{}}
}

// Rasterize renders every page of pdf at the given DPI and returns the
// JPEG-encoded pages in 1-indexed page order. The per-run staging
// directory is removed on every exit path.
func (r *PopplerRasterizer) Rasterize(ctx context.Context, pdf []byte, dpi int) ([][]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	pageCount, err := r.pageCount(pdf)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	tmpDir, err := os.MkdirTemp(r.cfg.TempDir, "papyr-raster-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	inPath := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(inPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("staging pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -jpeg <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", strconv.Itoa(dpi), "-jpeg", inPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 1<<10))
	}

	// collect generated pages (page-1.jpg, page-2.jpg, ...)
	matches, _ := filepath.Glob(prefix + "-*.jpg")
	sortByPage(matches)
	if len(matches) != pageCount {
		return nil, fmt.Errorf("pdftoppm rendered %d of %d pages", len(matches), pageCount)
	}

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		img, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", filepath.Base(m), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// pageCount validates the PDF and returns its page count.
func (r *PopplerRasterizer) pageCount(pdf []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(pdf), conf)
}

var pageNumPattern = regexp.MustCompile(`-(\d+)\.jpg$`)

// sortByPage orders rendered page files numerically. pdftoppm does not
// zero-pad page numbers consistently across versions, so a plain
// lexical sort would put page-10 before page-2.
func sortByPage(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return pageNum(paths[i]) < pageNum(paths[j])
	})
}

func pageNum(path string) int {
	m := pageNumPattern.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
