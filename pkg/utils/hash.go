package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

// GenerateBitmapHash hashes the geometry, white level and samples of a page
// bitmap. Two renders of the same page hash equal only if every pixel matches.
func GenerateBitmapHash(bm *models.PageBitmap) string {
	hasher := sha256.New()
	var hdr [10]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(bm.Width))
	binary.BigEndian.PutUint32(hdr[4:], uint32(bm.Height))
	binary.BigEndian.PutUint16(hdr[8:], bm.WhiteLevel)
	hasher.Write(hdr[:])

	buf := make([]byte, 2*bm.Width)
	for y := 0; y < bm.Height; y++ {
		for x, v := range bm.Row(y) {
			binary.BigEndian.PutUint16(buf[2*x:], v)
		}
		hasher.Write(buf)
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
