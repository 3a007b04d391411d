package pdf_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdfmargins/internal/pdf"
)

func ctx() context.Context {
	return context.Background()
}

var _ = Describe("Document inspection", func() {
	var workDir string

	BeforeEach(func() {
		var err error
		workDir, err = os.MkdirTemp("", "info-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(workDir)
	})

	It("should recognize a PDF header", func() {
		ok, err := pdf.IsPDF(writeFakePDF(workDir))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("should reject other content", func() {
		path := filepath.Join(workDir, "notes.txt")
		Expect(os.WriteFile(path, []byte("just text"), 0644)).To(Succeed())
		ok, err := pdf.IsPDF(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		empty := filepath.Join(workDir, "empty.pdf")
		Expect(os.WriteFile(empty, nil, 0644)).To(Succeed())
		ok, err = pdf.IsPDF(empty)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should fail for a missing file", func() {
		_, err := pdf.IsPDF(filepath.Join(workDir, "missing.pdf"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail to count pages of a truncated document", func() {
		_, err := pdf.PageCount(writeFakePDF(workDir))
		Expect(err).To(HaveOccurred())

		_, err = pdf.PageDimensions(writeFakePDF(workDir))
		Expect(err).To(HaveOccurred())
	})
})
