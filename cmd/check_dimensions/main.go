package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/internal/scanner"
	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
	"github.com/kpauljoseph/pdfmargins/pkg/utils"
)

func main() {
	cmd := &cli.Command{
		Name:  "check_dimensions",
		Usage: "print page sizes and the margin bands they get at a resolution",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "path to PDF file", Required: true},
			&cli.StringFlag{Name: "margin", Aliases: []string{"m"}, Value: "1in", Usage: "margin `DIM` to convert to pixels"},
			&cli.FloatFlag{Name: "dpi", Value: float64(models.DefaultResolution), Usage: "rasterization resolution"},
		},
		Action: checkDimensions,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.New(logger.WithPrefix("[check_dimensions] ")).Fatal("%v", err)
	}
}

func checkDimensions(_ context.Context, cmd *cli.Command) error {
	pdfPath := cmd.String("file")
	margin, err := utils.ParseDimension(cmd.String("margin"))
	if err != nil {
		return err
	}
	res := models.Resolution(cmd.Float("dpi"))
	if err := res.Validate(); err != nil {
		return err
	}

	fmt.Printf("Analyzing PDF: %s\n", pdfPath)

	dims, err := pdf.PageDimensions(pdfPath)
	if err != nil {
		return err
	}

	band := scanner.BandSize(margin, res)
	for i, dim := range dims {
		w, h := dim.Inches()
		fmt.Printf("\nPage %d:\n", i+1)
		fmt.Printf("Dimensions (Width x Height): %.3f x %.3f points\n", dim.Width, dim.Height)
		fmt.Printf("Dimensions (Width x Height): %s x %s\n", utils.FormatInches(w), utils.FormatInches(h))
		fmt.Printf("Bitmap at %.0f dpi: %d x %d pixels\n", float64(res), int(w*float64(res)), int(h*float64(res)))
		fmt.Printf("Margin %s: %d pixel band on every side\n", utils.FormatInches(margin), band)
	}
	return nil
}
