package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpauljoseph/pdfmargins/internal/pgm"
	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
)

const (
	artifactPrefix = "page"

	// how long to wait for output pipes after the process was killed
	waitDelay = 2 * time.Second
)

// pdftoppm names its output <prefix>-<page>.pgm, zero padding the page number
// to the width of the last page number.
var artifactPattern = regexp.MustCompile(`^` + artifactPrefix + `-(\d+)\.pgm$`)

// SubprocessError reports a rasterizer process that could not be started,
// was killed, or exited with a nonzero status.
type SubprocessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *SubprocessError) Error() string {
	var sb strings.Builder
	if e.ExitCode > 0 {
		fmt.Fprintf(&sb, "%s returned nonzero exit code %d", e.Command, e.ExitCode)
	} else {
		fmt.Fprintf(&sb, "could not run %s", e.Command)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&sb, ": %s", msg)
	}
	return sb.String()
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// Poppler rasterizes with the pdftoppm tool into a temporary directory.
type Poppler struct {
	command    string
	resolution models.Resolution
	timeout    time.Duration
	tempParent string
	tempDir    string
	logger     *logger.Logger
}

func NewPoppler(opts Options, log *logger.Logger) *Poppler {
	command := opts.Command
	if command == "" {
		command = DefaultPopplerCommand
	}
	return &Poppler{
		command:    command,
		resolution: opts.Resolution,
		timeout:    opts.Timeout,
		tempParent: opts.TempDir,
		logger:     log,
	}
}

func (p *Poppler) String() string {
	return BackendPoppler
}

// TempDir returns the directory holding the current bitmaps, if any.
func (p *Poppler) TempDir() string {
	return p.tempDir
}

func (p *Poppler) Rasterize(ctx context.Context, pdfPath string) ([]Page, error) {
	if p.tempDir != "" {
		return nil, errors.New("previous bitmaps were not cleaned up")
	}

	bin, err := exec.LookPath(p.command)
	if err != nil {
		return nil, &SubprocessError{Command: p.command, ExitCode: -1, Err: err}
	}

	if p.tempParent != "" {
		if err := os.MkdirAll(p.tempParent, 0755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}
	dir, err := os.MkdirTemp(p.tempParent, "pdfmargins-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	p.tempDir = dir

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := []string{
		"-gray",
		"-r", strconv.FormatFloat(float64(p.resolution), 'f', -1, 64),
		pdfPath,
		filepath.Join(dir, artifactPrefix),
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	p.logger.Debug("Running %s %s", bin, strings.Join(args, " "))
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, p.subprocessError(ctx, err, stderr.String())
	}
	p.logger.Zap().Debug("Rasterizer finished", zap.String("command", p.command), zap.Duration("elapsed", time.Since(start)))

	return p.discover(dir)
}

func (p *Poppler) subprocessError(ctx context.Context, err error, stderr string) error {
	serr := &SubprocessError{Command: p.command, ExitCode: -1, Stderr: stderr, Err: err}
	if ctxErr := ctx.Err(); ctxErr != nil {
		serr.Err = ctxErr
		return serr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		serr.ExitCode = exitErr.ExitCode()
		serr.Err = nil
	}
	return serr
}

func (p *Poppler) discover(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rasterizer output: %w", err)
	}

	pages := make([]Page, 0, len(entries))
	for _, entry := range entries {
		number, ok := parseArtifactName(entry.Name())
		if entry.IsDir() || !ok {
			p.logger.Warn("Ignoring unexpected rasterizer output: %s", entry.Name())
			continue
		}
		pages = append(pages, &pgmPage{number: number, path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Number() < pages[j].Number()
	})
	p.logger.Debug("Found %d page bitmaps in %s", len(pages), dir)
	return pages, nil
}

// parseArtifactName extracts the page number from a pdftoppm output name.
func parseArtifactName(name string) (int, bool) {
	m := artifactPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (p *Poppler) Cleanup() error {
	if p.tempDir == "" {
		return nil
	}
	dir := p.tempDir
	p.tempDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	p.logger.Debug("Removed %s", dir)
	return nil
}

type pgmPage struct {
	number int
	path   string
}

func (p *pgmPage) Number() int {
	return p.number
}

func (p *pgmPage) Bitmap() (*models.PageBitmap, error) {
	return pgm.DecodeFile(p.path, p.number)
}
