package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

const (
	BackendPoppler = "pdftoppm"
	BackendFitz    = "fitz"

	DefaultPopplerCommand = "pdftoppm"
	DefaultTimeout        = 5 * time.Minute
)

// Page is one rasterized page. Bitmap may be called from any goroutine.
type Page interface {
	Number() int
	Bitmap() (*models.PageBitmap, error)
}

type Rasterizer interface {
	// Rasterize renders every page of the document at the configured
	// resolution. Pages are returned in ascending page order.
	Rasterize(ctx context.Context, pdfPath string) ([]Page, error)
	// Cleanup releases everything Rasterize created. It is safe to call
	// after a failed Rasterize and more than once.
	Cleanup() error
	String() string
}

type Options struct {
	Backend    string
	Command    string
	Resolution models.Resolution
	Timeout    time.Duration
	TempDir    string
}

func Backends() []string {
	return []string{BackendPoppler, BackendFitz}
}

func NewRasterizer(opts Options, log *logger.Logger) (Rasterizer, error) {
	if err := opts.Resolution.Validate(); err != nil {
		return nil, err
	}
	switch opts.Backend {
	case BackendPoppler, "":
		return NewPoppler(opts, log), nil
	case BackendFitz:
		return NewFitz(opts, log), nil
	}
	return nil, fmt.Errorf("%w: unknown rasterizer backend %q", models.ErrUsage, opts.Backend)
}
