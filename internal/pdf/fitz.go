package pdf

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// Fitz rasterizes in-process with MuPDF. It needs no external tool and no
// temporary files.
type Fitz struct {
	resolution models.Resolution
	doc        *fitz.Document
	logger     *logger.Logger
}

func NewFitz(opts Options, log *logger.Logger) *Fitz {
	return &Fitz{
		resolution: opts.Resolution,
		logger:     log,
	}
}

func (f *Fitz) String() string {
	return BackendFitz
}

func (f *Fitz) Rasterize(ctx context.Context, pdfPath string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.doc != nil {
		return nil, fmt.Errorf("document already open, call Cleanup first")
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	f.doc = doc

	//Page numbers are zero indexed in the fitz package.
	pages := make([]Page, doc.NumPage())
	for i := range pages {
		pages[i] = &fitzPage{
			doc:    doc,
			index:  i,
			dpi:    float64(f.resolution),
			logger: f.logger,
		}
	}
	f.logger.Debug("Opened %s with %d pages", pdfPath, len(pages))
	return pages, nil
}

func (f *Fitz) Cleanup() error {
	if f.doc == nil {
		return nil
	}
	doc := f.doc
	f.doc = nil
	return doc.Close()
}

type fitzPage struct {
	doc    *fitz.Document
	index  int
	dpi    float64
	logger *logger.Logger
}

func (p *fitzPage) Number() int {
	return p.index + 1
}

func (p *fitzPage) Bitmap() (*models.PageBitmap, error) {
	img, err := p.doc.ImageDPI(p.index, p.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", p.Number(), err)
	}
	p.logger.Trace("Rendered page %d at %.0f dpi: %dx%d", p.Number(), p.dpi, img.Bounds().Dx(), img.Bounds().Dy())
	return GrayBitmap(p.Number(), img), nil
}

// GrayBitmap flattens img onto a white background and converts it to an 8-bit
// grayscale page bitmap with white level 255.
func GrayBitmap(page int, img image.Image) *models.PageBitmap {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	gray := imaging.Grayscale(imaging.Overlay(bg, img, image.Pt(0, 0), 1.0))

	bm := &models.PageBitmap{
		PageNumber: page,
		Width:      b.Dx(),
		Height:     b.Dy(),
		WhiteLevel: 0xff,
		Samples:    make([]uint16, b.Dx()*b.Dy()),
	}
	for y := 0; y < bm.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < bm.Width; x++ {
			bm.Samples[y*bm.Width+x] = uint16(row[x*4])
		}
	}
	return bm
}
