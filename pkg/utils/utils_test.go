package utils_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
	"github.com/kpauljoseph/pdfmargins/pkg/utils"
)

var _ = Describe("Utils", func() {
	Context("Dimension parsing", func() {
		DescribeTable("ParseDimension",
			func(input string, expected float64) {
				v, err := utils.ParseDimension(input)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(BeNumerically("~", expected, 1e-9))
			},
			Entry("inches", "0.5in", 0.5),
			Entry("whole inches", "1in", 1.0),
			Entry("centimeters", "1cm", 1/2.54),
			Entry("exact inch in centimeters", "2.54cm", 1.0),
			Entry("trailing whitespace", "0.75in \n", 0.75),
			Entry("zero", "0cm", 0.0),
			Entry("space before the unit", "1 cm", 1/2.54),
			Entry("space before inches", "0.5 in", 0.5),
		)

		DescribeTable("rejects bad dimensions",
			func(input string) {
				_, err := utils.ParseDimension(input)
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, models.ErrUsage)).To(BeTrue())
			},
			Entry("millimeters", "10mm"),
			Entry("points", "72pt"),
			Entry("no unit", "1"),
			Entry("no number", "cm"),
			Entry("garbage number", "abcin"),
			Entry("negative", "-1in"),
			Entry("infinite", "infin"),
			Entry("empty", ""),
		)

		It("should format inches so they parse back", func() {
			v, err := utils.ParseDimension(utils.FormatInches(0.3937))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(0.3937))
		})
	})

	Context("Bitmap hashing", func() {
		It("should hash identical bitmaps equally", func() {
			a := models.NewPageBitmap(1, 10, 5, 255)
			b := models.NewPageBitmap(2, 10, 5, 255)
			Expect(utils.GenerateBitmapHash(a)).To(Equal(utils.GenerateBitmapHash(b)))
		})

		It("should change when a single pixel changes", func() {
			a := models.NewPageBitmap(1, 10, 5, 255)
			b := models.NewPageBitmap(1, 10, 5, 255)
			b.Set(9, 4, 254)
			Expect(utils.GenerateBitmapHash(a)).NotTo(Equal(utils.GenerateBitmapHash(b)))
		})

		It("should distinguish geometry with the same sample count", func() {
			a := models.NewPageBitmap(1, 10, 5, 255)
			b := models.NewPageBitmap(1, 5, 10, 255)
			Expect(utils.GenerateBitmapHash(a)).NotTo(Equal(utils.GenerateBitmapHash(b)))
		})
	})
})
