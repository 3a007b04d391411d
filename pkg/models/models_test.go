package models_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

var _ = Describe("Margin Models", func() {
	Context("ResolveMargins", func() {
		It("should apply the overall margin to every side", func() {
			m := models.ResolveMargins(1/models.CentimetersPerInch, models.MarginSpec{})
			Expect(m.Top).To(BeNumerically("~", 0.3937, 1e-4))
			Expect(m).To(Equal(models.MarginSpec{
				Top:    1 / models.CentimetersPerInch,
				Right:  1 / models.CentimetersPerInch,
				Bottom: 1 / models.CentimetersPerInch,
				Left:   1 / models.CentimetersPerInch,
			}))
		})

		It("should let per-side values raise but never lower the floor", func() {
			m := models.ResolveMargins(0.5, models.MarginSpec{Top: 1, Left: 0.25})
			Expect(m.Top).To(Equal(1.0))
			Expect(m.Left).To(Equal(0.5))
			Expect(m.Right).To(Equal(0.5))
			Expect(m.Bottom).To(Equal(0.5))
		})

		It("should leave unset sides unconstrained without an overall margin", func() {
			m := models.ResolveMargins(0, models.MarginSpec{Right: 0.75})
			Expect(m).To(Equal(models.MarginSpec{Right: 0.75}))
			Expect(m.IsZero()).To(BeFalse())
			Expect(models.MarginSpec{}.IsZero()).To(BeTrue())
		})
	})

	Context("Validation", func() {
		DescribeTable("MarginSpec.Validate",
			func(m models.MarginSpec, valid bool) {
				err := m.Validate()
				if valid {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(errors.Is(err, models.ErrInvalidMargin)).To(BeTrue())
				}
			},
			Entry("all zero", models.MarginSpec{}, true),
			Entry("positive", models.MarginSpec{Top: 1, Right: 2, Bottom: 3, Left: 4}, true),
			Entry("negative left", models.MarginSpec{Left: -0.1}, false),
			Entry("NaN top", models.MarginSpec{Top: math.NaN()}, false),
			Entry("infinite bottom", models.MarginSpec{Bottom: math.Inf(1)}, false),
		)

		It("should reject non-positive resolutions", func() {
			Expect(models.DefaultResolution.Validate()).To(Succeed())
			Expect(errors.Is(models.Resolution(0).Validate(), models.ErrInvalidResolution)).To(BeTrue())
			Expect(errors.Is(models.Resolution(-75).Validate(), models.ErrInvalidResolution)).To(BeTrue())
		})
	})

	Context("PageBitmap", func() {
		It("should start uniformly white", func() {
			bm := models.NewPageBitmap(3, 4, 2, 200)
			Expect(bm.Validate()).To(Succeed())
			Expect(bm.Samples).To(HaveLen(8))
			for _, v := range bm.Samples {
				Expect(v).To(Equal(uint16(200)))
			}
		})

		It("should expose rows of the row-major samples", func() {
			bm := models.NewPageBitmap(1, 3, 2, 255)
			bm.Set(2, 1, 7)
			Expect(bm.Row(1)).To(Equal([]uint16{255, 255, 7}))
			Expect(bm.At(2, 1)).To(Equal(uint16(7)))
		})

		It("should scale the white level to 255 when converted", func() {
			bm := models.NewPageBitmap(1, 2, 1, 1000)
			bm.Set(0, 0, 0)
			img := bm.Gray()
			Expect(img.Pix).To(Equal([]uint8{0, 255}))
		})

		It("should reject sample counts that do not match the size", func() {
			bm := &models.PageBitmap{PageNumber: 2, Width: 3, Height: 3, WhiteLevel: 255, Samples: make([]uint16, 8)}
			Expect(errors.Is(bm.Validate(), models.ErrMalformedBitmap)).To(BeTrue())

			bm = &models.PageBitmap{PageNumber: 2, Width: 0, Height: 3, WhiteLevel: 255}
			Expect(errors.Is(bm.Validate(), models.ErrMalformedBitmap)).To(BeTrue())
		})
	})

	Context("Report", func() {
		It("should reflect a violation on any page, not just the last", func() {
			report := &models.Report{Pages: []models.PageResult{
				{Page: 1, Sides: []models.Side{models.SideTop}},
				{Page: 2},
				{Page: 3},
			}}
			Expect(report.HasViolations()).To(BeTrue())
			Expect(report.Failed()).To(BeTrue())
			Expect(report.Violations()).To(Equal([]models.Violation{{Page: 1, Side: models.SideTop}}))
			Expect(report.Violations()[0].String()).To(Equal("page 1 exceeds top margin"))
		})

		It("should fail on page errors even without violations", func() {
			report := &models.Report{Pages: []models.PageResult{
				{Page: 1},
				{Page: 2, Err: models.ErrUnsupportedFormat},
			}}
			Expect(report.HasViolations()).To(BeFalse())
			Expect(report.Failed()).To(BeTrue())
			Expect(errors.Is(report.Err(), models.ErrUnsupportedFormat)).To(BeTrue())
			Expect(report.Err().Error()).To(ContainSubstring("page 2"))
		})

		It("should be clean when every page passes", func() {
			report := &models.Report{Pages: []models.PageResult{{Page: 1}, {Page: 2}}}
			Expect(report.Failed()).To(BeFalse())
			Expect(report.Err()).To(BeNil())
			Expect(report.Violations()).To(BeEmpty())
		})
	})
})
