// Package scanner decides whether the ink on a rasterized page reaches into
// the margin bands along its edges.
package scanner

import (
	"image"
	"math"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// BandSize converts a margin distance in inches to a band width in pixels,
// rounding down. Non-positive distances map to an empty band.
func BandSize(distance float64, res models.Resolution) int {
	if distance <= 0 || res <= 0 {
		return 0
	}
	return int(math.Floor(distance * float64(res)))
}

// Band returns the rectangle covered by an n pixel band along side of a
// width x height page. n is clamped to the page extent on that axis.
func Band(side models.Side, n, width, height int) image.Rectangle {
	if n < 0 {
		n = 0
	}
	switch side {
	case models.SideTop:
		return image.Rect(0, 0, width, min(n, height))
	case models.SideBottom:
		return image.Rect(0, height-min(n, height), width, height)
	case models.SideLeft:
		return image.Rect(0, 0, min(n, width), height)
	case models.SideRight:
		return image.Rect(width-min(n, width), 0, width, height)
	}
	return image.Rectangle{}
}

// Scan returns the sides whose margin band holds at least one sample darker
// than the page's white level. Sides with a zero margin are not checked.
func Scan(bm *models.PageBitmap, margins models.MarginSpec, res models.Resolution) ([]models.Side, error) {
	if err := margins.Validate(); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := bm.Validate(); err != nil {
		return nil, err
	}

	var violated []models.Side
	for _, side := range models.Sides {
		distance := margins.Get(side)
		if distance <= 0 {
			continue
		}
		band := Band(side, BandSize(distance, res), bm.Width, bm.Height)
		if HasInk(bm, band) {
			violated = append(violated, side)
		}
	}
	return violated, nil
}

// HasInk reports whether any sample inside r is below the white level.
func HasInk(bm *models.PageBitmap, r image.Rectangle) bool {
	_, found := FirstInk(bm, r)
	return found
}

// FirstInk returns the first sample inside r, in row-major order, that is
// below the white level.
func FirstInk(bm *models.PageBitmap, r image.Rectangle) (image.Point, bool) {
	r = r.Intersect(bm.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := bm.Row(y)[r.Min.X:r.Max.X]
		for i, v := range row {
			if v < bm.WhiteLevel {
				return image.Pt(r.Min.X+i, y), true
			}
		}
	}
	return image.Point{}, false
}
