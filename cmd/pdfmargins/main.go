package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/kpauljoseph/pdfmargins/internal/config"
	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/internal/runner"
	"github.com/kpauljoseph/pdfmargins/pkg/logger"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
	"github.com/kpauljoseph/pdfmargins/pkg/utils"
	"github.com/kpauljoseph/pdfmargins/pkg/version"
)

// errViolations is returned when the check ran but the document failed it.
// Details are already on stdout/stderr, so main only sets the exit code.
var errViolations = errors.New("margin check failed")

func printVersion(cmd *cli.Command) {
	fmt.Fprint(cmd.Root().Writer, version.GetDetailedVersionInfo())
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	cli.VersionPrinter = printVersion
	return &cli.Command{
		Name:      version.AppName,
		Usage:     "check that the printed content of a PDF stays out of its margins",
		Version:   version.GetVersionInfo(),
		ArgsUsage: "INFILE",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "margin", Aliases: []string{"m"}, Usage: "minimum margin on all sides as `DIM` (e.g. 1cm, 0.5in)"},
			&cli.StringFlag{Name: "top", Aliases: []string{"t"}, Usage: "minimum top margin as `DIM`"},
			&cli.StringFlag{Name: "right", Aliases: []string{"r"}, Usage: "minimum right margin as `DIM`"},
			&cli.StringFlag{Name: "bottom", Aliases: []string{"b"}, Usage: "minimum bottom margin as `DIM`"},
			&cli.StringFlag{Name: "left", Aliases: []string{"l"}, Usage: "minimum left margin as `DIM`"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.FloatFlag{Name: "dpi", Usage: "rasterization resolution in dots per inch (default 75)"},
			&cli.StringFlag{Name: "rasterizer", Usage: "rasterizer `BACKEND` (" + strings.Join(pdf.Backends(), ", ") + ")"},
			&cli.StringFlag{Name: "pdftoppm", Usage: "`PATH` of the pdftoppm executable"},
			&cli.DurationFlag{Name: "timeout", Usage: "maximum time the rasterizer may take"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "number of pages scanned in parallel (default: number of CPUs)"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable verbose logging"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug mode with trace logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, stdout, stderr)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, stdout, stderr io.Writer) error {
	log := logger.New(
		logger.WithOutput(stderr),
		logger.WithPrefix("["+version.AppName+"] "),
	)
	log.SetVerbose(cmd.Bool("verbose") || cmd.Bool("debug"))
	if cmd.Bool("debug") {
		log.SetLevel(logger.LevelTrace)
	}
	defer log.Sync()

	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: expected exactly one input PDF file, got %d arguments", models.ErrUsage, cmd.NArg())
	}
	pdfPath := cmd.Args().First()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	margins, err := cfg.Margins.Resolved()
	if err != nil {
		return err
	}
	log.Debug("Resolved margins: %s", margins)
	if data, err := config.Dump(cfg); err == nil {
		log.Trace("Effective configuration:\n%s", data)
	}

	report, err := runner.New(cfg, log, runner.WithOutput(stdout, stderr)).Run(ctx, pdfPath, margins)
	if err != nil {
		return err
	}
	if runner.ExitCode(report, nil) != runner.ExitClean {
		return errViolations
	}
	return nil
}

// loadConfig reads the configuration file and applies command line flags on
// top of it. A margin flag replaces the configured value for its field.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("unable to prepare configuration: %w", err)
	}

	dims := []struct {
		flag string
		dst  *string
	}{
		{"margin", &cfg.Margins.Margin},
		{"top", &cfg.Margins.Top},
		{"right", &cfg.Margins.Right},
		{"bottom", &cfg.Margins.Bottom},
		{"left", &cfg.Margins.Left},
	}
	for _, d := range dims {
		if !cmd.IsSet(d.flag) {
			continue
		}
		v := cmd.String(d.flag)
		if _, err := utils.ParseDimension(v); err != nil {
			return nil, fmt.Errorf("--%s: %w", d.flag, err)
		}
		*d.dst = v
	}

	if cmd.IsSet("dpi") {
		cfg.Resolution = cmd.Float("dpi")
	}
	if cmd.IsSet("rasterizer") {
		cfg.Rasterizer.Backend = cmd.String("rasterizer")
	}
	if cmd.IsSet("pdftoppm") {
		cfg.Rasterizer.Command = cmd.String("pdftoppm")
	}
	if cmd.IsSet("timeout") {
		cfg.Rasterizer.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("jobs") {
		cfg.Workers = int(cmd.Int("jobs"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute runs the command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newCommand(stdout, stderr).Run(ctx, args)
	switch {
	case err == nil:
		return runner.ExitClean
	case errors.Is(err, errViolations):
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return runner.ExitFailed
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	// NOTE: os.Exit skips deferred calls, everything is cleaned up by now
	os.Exit(code)
}
