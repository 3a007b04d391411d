// Package runner checks one PDF document: it validates the input, rasterizes
// the pages, scans their margins and reports the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/kpauljoseph/pdfmargins/internal/config"
	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/internal/scanner"
	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// RasterizerFactory builds the rasterizer for one run.
type RasterizerFactory func(opts pdf.Options, log *logger.Logger) (pdf.Rasterizer, error)

type Runner struct {
	cfg           *config.Config
	logger        *logger.Logger
	stdout        io.Writer
	stderr        io.Writer
	newRasterizer RasterizerFactory
}

type Option func(*Runner)

func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

func WithRasterizerFactory(f RasterizerFactory) Option {
	return func(r *Runner) {
		r.newRasterizer = f
	}
}

func New(cfg *config.Config, log *logger.Logger, options ...Option) *Runner {
	r := &Runner{
		cfg:           cfg,
		logger:        log,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		newRasterizer: pdf.NewRasterizer,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Run checks pdfPath against margins. Violations go to stdout and pages that
// could not be checked to stderr, both in page order. The returned error is
// set only for failures that prevented the check; the report tells whether
// the document passed.
func (r *Runner) Run(ctx context.Context, pdfPath string, margins models.MarginSpec) (report *models.Report, err error) {
	if err := r.validate(pdfPath, margins); err != nil {
		return nil, err
	}

	checker, err := scanner.New(margins, models.Resolution(r.cfg.Resolution), r.cfg.Workers, r.logger)
	if err != nil {
		return nil, err
	}

	rasterizer, err := r.newRasterizer(r.cfg.RasterizerOptions(), r.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rasterizer.Cleanup(); cerr != nil {
			err = multierr.Append(err, cerr)
		}
	}()

	r.logger.Debug("Rasterizing %s with %s at %.0f dpi", pdfPath, rasterizer, r.cfg.Resolution)
	pages, err := rasterizer.Rasterize(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s produced no page bitmaps for %s", rasterizer, pdfPath)
	}
	r.crossCheckPageCount(pdfPath, len(pages))

	scanPages := make([]scanner.Page, len(pages))
	for i, p := range pages {
		scanPages[i] = p
	}
	report, err = checker.Check(ctx, scanPages)
	if err != nil {
		return nil, err
	}

	if err := r.write(report); err != nil {
		return report, err
	}
	r.logger.Debug("Checked %d pages: %d violations", report.PageCount(), len(report.Violations()))
	return report, nil
}

func (r *Runner) validate(pdfPath string, margins models.MarginSpec) error {
	if pdfPath == "" {
		return fmt.Errorf("%w: missing input PDF file", models.ErrUsage)
	}
	if err := margins.Validate(); err != nil {
		return err
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: input file does not exist: %s", models.ErrUsage, pdfPath)
		}
		return fmt.Errorf("%w: %v", models.ErrUsage, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input is a directory: %s", models.ErrUsage, pdfPath)
	}
	ok, err := pdf.IsPDF(pdfPath)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUsage, err)
	}
	if !ok {
		return fmt.Errorf("%w: input is not a PDF file: %s", models.ErrUsage, pdfPath)
	}

	if margins.IsZero() {
		r.logger.Warn("No margins requested, every page will pass")
	}
	return nil
}

// crossCheckPageCount compares the number of bitmaps with the page count the
// document declares. A document pdfcpu cannot read is only logged.
func (r *Runner) crossCheckPageCount(pdfPath string, bitmaps int) {
	count, err := pdf.PageCount(pdfPath)
	if err != nil {
		r.logger.Debug("Skipping page count check: %v", err)
		return
	}
	if count != bitmaps {
		r.logger.Warn("Document has %d pages but %d page bitmaps were produced", count, bitmaps)
	}
}

func (r *Runner) write(report *models.Report) error {
	for _, page := range report.Pages {
		if page.Err != nil {
			if _, err := fmt.Fprintf(r.stderr, "error: page %d: %v\n", page.Page, page.Err); err != nil {
				return err
			}
			continue
		}
		for _, side := range page.Sides {
			v := models.Violation{Page: page.Page, Side: side}
			if _, err := fmt.Fprintln(r.stdout, v); err != nil {
				return err
			}
		}
	}
	return nil
}
