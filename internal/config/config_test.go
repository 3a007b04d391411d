package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdfmargins/internal/config"
	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "pdfmargins.yaml")
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	It("should return defaults without a file", func() {
		cfg, err := config.Load("")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Resolution).To(Equal(75.0))
		Expect(cfg.Rasterizer.Backend).To(Equal(pdf.BackendPoppler))
		Expect(cfg.Rasterizer.Command).To(Equal("pdftoppm"))
		Expect(cfg.Rasterizer.Timeout).To(Equal(5 * time.Minute))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should overlay file values on the defaults", func() {
		cfg, err := config.Load(writeConfig(`
resolution: 150
workers: 3
rasterizer:
  backend: fitz
  timeout: 30s
margins:
  margin: 1cm
  top: 1in
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Resolution).To(Equal(150.0))
		Expect(cfg.Workers).To(Equal(3))
		Expect(cfg.Rasterizer.Backend).To(Equal(pdf.BackendFitz))
		Expect(cfg.Rasterizer.Command).To(Equal("pdftoppm"))
		Expect(cfg.Rasterizer.Timeout).To(Equal(30 * time.Second))

		m, err := cfg.Margins.Resolved()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Top).To(Equal(1.0))
		Expect(m.Left).To(BeNumerically("~", 1/models.CentimetersPerInch, 1e-12))

		opts := cfg.RasterizerOptions()
		Expect(opts.Resolution).To(Equal(models.Resolution(150)))
		Expect(opts.Backend).To(Equal(pdf.BackendFitz))
	})

	It("should accept an empty file", func() {
		cfg, err := config.Load(writeConfig(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Resolution).To(Equal(75.0))
	})

	DescribeTable("invalid files",
		func(content string) {
			_, err := config.Load(writeConfig(content))
			Expect(err).To(HaveOccurred())
		},
		Entry("unknown key", "resolutoin: 75\n"),
		Entry("zero resolution", "resolution: 0\n"),
		Entry("negative workers", "workers: -2\n"),
		Entry("unknown backend", "rasterizer:\n  backend: ghostscript\n"),
		Entry("bad margin unit", "margins:\n  left: 3mm\n"),
		Entry("not yaml", "resolution: [\n"),
	)

	It("should report a missing file", func() {
		_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("should name the offending margin field", func() {
		_, _, err := config.MarginsConfig{Bottom: "2pt"}.Parse()
		Expect(errors.Is(err, models.ErrUsage)).To(BeTrue())
		Expect(err.Error()).To(HavePrefix("bottom:"))
	})

	It("should dump a configuration that loads back", func() {
		cfg := config.Default()
		cfg.Margins.Margin = "0.5in"
		data, err := config.Dump(cfg)
		Expect(err).NotTo(HaveOccurred())

		loaded, err := config.Load(writeConfig(string(data)))
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})
})
