package scanner

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// Page is a page whose bitmap can be loaded on demand.
type Page interface {
	Number() int
	Bitmap() (*models.PageBitmap, error)
}

type Checker struct {
	margins    models.MarginSpec
	resolution models.Resolution
	workers    int
	logger     *logger.Logger
}

// New returns a Checker scanning up to workers pages at once. A non-positive
// workers value means one per CPU.
func New(margins models.MarginSpec, res models.Resolution, workers int, log *logger.Logger) (*Checker, error) {
	if err := margins.Validate(); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Checker{
		margins:    margins,
		resolution: res,
		workers:    workers,
		logger:     log,
	}, nil
}

// Check scans every page and returns the results in ascending page order.
// A page that cannot be loaded is recorded in its result and does not stop
// the others.
func (c *Checker) Check(ctx context.Context, pages []Page) (*models.Report, error) {
	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number() < sorted[j].Number()
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Number() == sorted[i-1].Number() {
			return nil, fmt.Errorf("duplicate page %d", sorted[i].Number())
		}
	}

	c.logger.Debug("Checking %d pages with %d workers (%s at %.0f dpi)", len(sorted), c.workers, c.margins, float64(c.resolution))

	results := make([]models.PageResult, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, page := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkPage(page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.Report{Pages: results}, nil
}

func (c *Checker) checkPage(page Page) models.PageResult {
	result := models.PageResult{Page: page.Number()}
	log := c.logger.With(zap.Int("page", result.Page))

	bm, err := page.Bitmap()
	if err != nil {
		log.Debug("Could not load bitmap: %v", err)
		result.Err = err
		return result
	}
	bm.PageNumber = result.Page

	sides, err := Scan(bm, c.margins, c.resolution)
	if err != nil {
		result.Err = err
		return result
	}
	result.Sides = sides
	log.Trace("Scanned %dx%d page (white %d): %d violations", bm.Width, bm.Height, bm.WhiteLevel, len(sides))
	return result
}
