package models

import (
	"fmt"
	"image"
)

// PageBitmap is a decoded grayscale page. Samples are row-major, one per pixel,
// and WhiteLevel is the sample value that means background.
type PageBitmap struct {
	PageNumber int
	Width      int
	Height     int
	WhiteLevel uint16
	Samples    []uint16
}

func NewPageBitmap(page, width, height int, white uint16) *PageBitmap {
	bm := &PageBitmap{
		PageNumber: page,
		Width:      width,
		Height:     height,
		WhiteLevel: white,
	}
	if width > 0 && height > 0 {
		bm.Samples = make([]uint16, width*height)
		bm.Fill(white)
	}
	return bm
}

func (b *PageBitmap) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil bitmap", ErrMalformedBitmap)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: page %d has size %dx%d", ErrMalformedBitmap, b.PageNumber, b.Width, b.Height)
	}
	if len(b.Samples) != b.Width*b.Height {
		return fmt.Errorf("%w: page %d has %d samples, expected %d",
			ErrMalformedBitmap, b.PageNumber, len(b.Samples), b.Width*b.Height)
	}
	return nil
}

func (b *PageBitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Row returns the samples of row y. The slice aliases the bitmap.
func (b *PageBitmap) Row(y int) []uint16 {
	return b.Samples[y*b.Width : (y+1)*b.Width]
}

func (b *PageBitmap) At(x, y int) uint16 {
	return b.Samples[y*b.Width+x]
}

func (b *PageBitmap) Set(x, y int, v uint16) {
	b.Samples[y*b.Width+x] = v
}

func (b *PageBitmap) Fill(v uint16) {
	for i := range b.Samples {
		b.Samples[i] = v
	}
}

// Gray returns an 8-bit copy of the bitmap scaled so WhiteLevel maps to 255.
func (b *PageBitmap) Gray() *image.Gray {
	img := image.NewGray(b.Bounds())
	white := uint32(b.WhiteLevel)
	for i, v := range b.Samples {
		if white == 0 {
			img.Pix[i] = 0xff
			continue
		}
		s := uint32(v)
		if s > white {
			s = white
		}
		img.Pix[i] = uint8(s * 0xff / white)
	}
	return img
}
