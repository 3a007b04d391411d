package models

import (
	"fmt"
	"math"
)

const (
	DefaultResolution Resolution = 75

	PointsPerInch      = 72.0
	CentimetersPerInch = 2.54
)

type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

// Sides lists the sides in the order they are checked and reported.
var Sides = []Side{SideTop, SideBottom, SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// MarginSpec holds the minimum margin for each side, in inches.
// A zero side means no constraint on that side.
type MarginSpec struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// ResolveMargins applies the overall margin as a floor to every side. Per-side
// values can only raise their side above that floor.
func ResolveMargins(overall float64, sides MarginSpec) MarginSpec {
	floor := math.Max(overall, 0)
	return MarginSpec{
		Top:    math.Max(floor, sides.Top),
		Right:  math.Max(floor, sides.Right),
		Bottom: math.Max(floor, sides.Bottom),
		Left:   math.Max(floor, sides.Left),
	}
}

func (m MarginSpec) Get(side Side) float64 {
	switch side {
	case SideTop:
		return m.Top
	case SideRight:
		return m.Right
	case SideBottom:
		return m.Bottom
	case SideLeft:
		return m.Left
	}
	return 0
}

func (m MarginSpec) IsZero() bool {
	return m.Top <= 0 && m.Right <= 0 && m.Bottom <= 0 && m.Left <= 0
}

func (m MarginSpec) Validate() error {
	for _, side := range Sides {
		d := m.Get(side)
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: %s margin is %v", ErrInvalidMargin, side, d)
		}
	}
	return nil
}

func (m MarginSpec) String() string {
	return fmt.Sprintf("top=%.4fin right=%.4fin bottom=%.4fin left=%.4fin", m.Top, m.Right, m.Bottom, m.Left)
}

// Resolution is the rasterization density in dots per inch.
type Resolution float64

func (r Resolution) Validate() error {
	if r <= 0 || math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) {
		return fmt.Errorf("%w: %v dpi", ErrInvalidResolution, float64(r))
	}
	return nil
}

// PageDimensions is a page size in PDF points.
type PageDimensions struct {
	Width  float64
	Height float64
}

func (d PageDimensions) Inches() (float64, float64) {
	return d.Width / PointsPerInch, d.Height / PointsPerInch
}
