package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

const (
	UnitCentimeters = "cm"
	UnitInches      = "in"
)

// ParseDimension converts a DIM string such as "0.5in" or "1.2cm" to inches.
func ParseDimension(s string) (float64, error) {
	dim := strings.TrimSpace(s)

	var (
		number  string
		divisor float64
	)
	switch {
	case strings.HasSuffix(dim, UnitCentimeters):
		number = strings.TrimSuffix(dim, UnitCentimeters)
		divisor = models.CentimetersPerInch
	case strings.HasSuffix(dim, UnitInches):
		number = strings.TrimSuffix(dim, UnitInches)
		divisor = 1
	default:
		return 0, fmt.Errorf("%w: unknown units in %q (expected %s or %s)", models.ErrUsage, s, UnitCentimeters, UnitInches)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid dimension %q", models.ErrUsage, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: dimension %q must be a non-negative number", models.ErrUsage, s)
	}

	return v / divisor, nil
}

// FormatInches renders a distance in inches the way ParseDimension accepts it.
func FormatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + UnitInches
}
