// Package pgm reads and writes binary portable graymap (P5) images, the format
// pdftoppm produces in grayscale mode.
package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

const (
	Magic = "P5"

	MaxWhiteLevel = 65535

	// maxSamples guards against allocating for a corrupt header.
	maxSamples = 1 << 28
	maxDigits  = 10
)

// DecodeFile decodes the PGM file at path as the given page.
func DecodeFile(path string, page int) (*models.PageBitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bitmap: %w", err)
	}
	defer f.Close()

	bm, err := Decode(f)
	if err != nil {
		return nil, err
	}
	bm.PageNumber = page
	return bm, nil
}

// Decode reads one P5 image. The returned bitmap has no page number set.
func Decode(r io.Reader) (*models.PageBitmap, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", models.ErrMalformedBitmap, err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: magic %q, expected %q", models.ErrUnsupportedFormat, magic, Magic)
	}

	width, err := readField(br, "width")
	if err != nil {
		return nil, err
	}
	height, err := readField(br, "height")
	if err != nil {
		return nil, err
	}
	white, err := readField(br, "maxval")
	if err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 || width > maxSamples/height {
		return nil, fmt.Errorf("%w: invalid size %dx%d", models.ErrMalformedBitmap, width, height)
	}
	if white <= 0 || white > MaxWhiteLevel {
		return nil, fmt.Errorf("%w: maxval %d out of range", models.ErrMalformedBitmap, white)
	}

	bytesPerSample := 1
	if white > 0xff {
		bytesPerSample = 2
	}

	raster := make([]byte, width*height*bytesPerSample)
	if _, err := io.ReadFull(br, raster); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: raster shorter than %dx%d", models.ErrMalformedBitmap, width, height)
		}
		return nil, fmt.Errorf("failed to read raster: %w", err)
	}
	if _, err := br.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after %dx%d raster", models.ErrMalformedBitmap, width, height)
	}

	bm := &models.PageBitmap{
		Width:      width,
		Height:     height,
		WhiteLevel: uint16(white),
		Samples:    make([]uint16, width*height),
	}
	for i := range bm.Samples {
		var v uint16
		if bytesPerSample == 1 {
			v = uint16(raster[i])
		} else {
			v = uint16(raster[2*i])<<8 | uint16(raster[2*i+1])
		}
		if v > bm.WhiteLevel {
			return nil, fmt.Errorf("%w: sample %d exceeds maxval %d", models.ErrMalformedBitmap, v, white)
		}
		bm.Samples[i] = v
	}

	return bm, nil
}

// readField reads one ASCII decimal header field, skipping leading whitespace
// and comments, and consumes the single whitespace byte that terminates it.
func readField(br *bufio.Reader, name string) (int, error) {
	var b byte
	var err error
	for {
		if b, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: missing %s", models.ErrMalformedBitmap, name)
		}
		if b == '#' {
			if _, err = br.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("%w: unterminated comment before %s", models.ErrMalformedBitmap, name)
			}
			continue
		}
		if !isSpace(b) {
			break
		}
	}

	v, digits := 0, 0
	for isDigit(b) {
		if digits++; digits > maxDigits {
			return 0, fmt.Errorf("%w: %s too large", models.ErrMalformedBitmap, name)
		}
		v = v*10 + int(b-'0')
		if b, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: header ends inside %s", models.ErrMalformedBitmap, name)
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: %s is not a number", models.ErrMalformedBitmap, name)
	}
	if !isSpace(b) {
		return 0, fmt.Errorf("%w: %s not followed by whitespace", models.ErrMalformedBitmap, name)
	}
	return v, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Encode writes bm as a P5 image using its white level as maxval.
func Encode(w io.Writer, bm *models.PageBitmap) error {
	if err := bm.Validate(); err != nil {
		return err
	}
	if bm.WhiteLevel == 0 {
		return fmt.Errorf("%w: maxval must be positive", models.ErrMalformedBitmap)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, bm.Width, bm.Height, bm.WhiteLevel); err != nil {
		return err
	}
	wide := bm.WhiteLevel > 0xff
	for _, v := range bm.Samples {
		if wide {
			if err := bw.WriteByte(byte(v >> 8)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte(byte(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeFile writes bm to path.
func EncodeFile(path string, bm *models.PageBitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bitmap: %w", err)
	}
	if err := Encode(f, bm); err != nil {
		f.Close()
		return fmt.Errorf("failed to write bitmap: %w", err)
	}
	return f.Close()
}
