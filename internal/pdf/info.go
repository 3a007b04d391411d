package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// sniffLen is how much of a file filetype needs to recognize it.
const sniffLen = 262

// IsPDF reports whether the file at path starts like a PDF document.
func IsPDF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "pdf"), nil
}

func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

func PageDimensions(path string) ([]models.PageDimensions, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dimensions: %w", err)
	}

	out := make([]models.PageDimensions, len(dims))
	for i, d := range dims {
		out[i] = models.PageDimensions{Width: d.Width, Height: d.Height}
	}
	return out, nil
}
