package models

import "errors"

var (
	ErrUsage             = errors.New("usage error")
	ErrInvalidMargin     = errors.New("invalid margin")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrMalformedBitmap   = errors.New("malformed bitmap")
	ErrUnsupportedFormat = errors.New("unsupported bitmap format")
)
