package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	cli "github.com/urfave/cli/v3"

	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/internal/scanner"
	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
	"github.com/kpauljoseph/pdfmargins/pkg/utils"
)

var bandColor = color.NRGBA{R: 0xff, A: 0xff}

func main() {
	cmd := &cli.Command{
		Name:      "debug_pdf",
		Usage:     "render a PDF with every rasterizer backend and compare the margin scans",
		ArgsUsage: "file.pdf",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "margin", Aliases: []string{"m"}, Value: "1in", Usage: "margin `DIM` on every side"},
			&cli.FloatFlag{Name: "dpi", Value: float64(models.DefaultResolution), Usage: "rasterization resolution"},
			&cli.StringFlag{Name: "pdftoppm", Value: pdf.DefaultPopplerCommand, Usage: "`PATH` of the pdftoppm executable"},
			&cli.StringFlag{Name: "out", Usage: "directory for page previews (default: new temp directory)"},
		},
		Action: debugPDF,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.New(logger.WithPrefix("[debug_pdf] ")).Fatal("%v", err)
	}
}

func debugPDF(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: usage: debug_pdf [options] file.pdf", models.ErrUsage)
	}
	pdfPath := cmd.Args().First()

	margin, err := utils.ParseDimension(cmd.String("margin"))
	if err != nil {
		return err
	}
	margins := models.ResolveMargins(margin, models.MarginSpec{})
	res := models.Resolution(cmd.Float("dpi"))

	outDir := cmd.String("out")
	if outDir == "" {
		outDir = utils.GetDefaultOutputDir()
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log := logger.New(logger.WithPrefix("[debug_pdf] "))
	log.SetVerbose(true)

	rendered := make(map[string][]*models.PageBitmap)
	for _, backend := range pdf.Backends() {
		bitmaps, err := render(ctx, pdf.Options{
			Backend:    backend,
			Command:    cmd.String("pdftoppm"),
			Resolution: res,
			Timeout:    pdf.DefaultTimeout,
		}, pdfPath, log)
		if err != nil {
			log.Error("Backend %s failed: %v", backend, err)
			continue
		}
		rendered[backend] = bitmaps
	}

	fmt.Printf("\nBasic Properties:\n")
	for _, backend := range pdf.Backends() {
		fmt.Printf("%s pages: %d\n", backend, len(rendered[backend]))
	}

	for _, backend := range pdf.Backends() {
		for _, bm := range rendered[backend] {
			fmt.Printf("\nPage %d (%s):\n", bm.PageNumber, backend)
			fmt.Printf("Bitmap: %d x %d, white level %d\n", bm.Width, bm.Height, bm.WhiteLevel)
			fmt.Printf("Hash: %s\n", utils.GenerateBitmapHash(bm))

			for _, side := range models.Sides {
				band := scanner.Band(side, scanner.BandSize(margins.Get(side), res), bm.Width, bm.Height)
				if p, found := scanner.FirstInk(bm, band); found {
					fmt.Printf("Exceeds %s margin: first ink at (%d, %d)\n", side, p.X, p.Y)
				}
			}

			path := filepath.Join(outDir, fmt.Sprintf("page%d_%s.png", bm.PageNumber, backend))
			if err := imaging.Save(preview(bm, margins, res), path); err != nil {
				return fmt.Errorf("failed to save preview: %w", err)
			}
			fmt.Printf("Saved preview to: %s\n", path)
		}
	}

	compare(rendered[pdf.BackendPoppler], rendered[pdf.BackendFitz])
	return nil
}

func render(ctx context.Context, opts pdf.Options, pdfPath string, log *logger.Logger) ([]*models.PageBitmap, error) {
	rasterizer, err := pdf.NewRasterizer(opts, log)
	if err != nil {
		return nil, err
	}
	defer rasterizer.Cleanup()

	pages, err := rasterizer.Rasterize(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	bitmaps := make([]*models.PageBitmap, 0, len(pages))
	for _, p := range pages {
		bm, err := p.Bitmap()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number(), err)
		}
		bitmaps = append(bitmaps, bm)
	}
	return bitmaps, nil
}

// preview draws the page with its margin bands tinted.
func preview(bm *models.PageBitmap, margins models.MarginSpec, res models.Resolution) image.Image {
	img := imaging.Clone(bm.Gray())
	for _, side := range models.Sides {
		band := scanner.Band(side, scanner.BandSize(margins.Get(side), res), bm.Width, bm.Height)
		if band.Empty() {
			continue
		}
		tint := imaging.New(band.Dx(), band.Dy(), bandColor)
		img = imaging.Overlay(img, tint, band.Min, 0.2)
	}
	return img
}

func compare(a, b []*models.PageBitmap) {
	if len(a) == 0 || len(b) == 0 {
		return
	}
	fmt.Printf("\nBackend comparison:\n")
	for i := 0; i < min(len(a), len(b)); i++ {
		sameSize := a[i].Width == b[i].Width && a[i].Height == b[i].Height
		same := sameSize && utils.GenerateBitmapHash(a[i]) == utils.GenerateBitmapHash(b[i])
		fmt.Printf("Page %d: same size %v, identical %v\n", a[i].PageNumber, sameSize, same)
	}
}
