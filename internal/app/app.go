// Package app runs one EFW2 filing end to end: read the wage file, encode,
// write the output atomically, and optionally render the PDF summary and
// archive the run.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/adapters/pdf"
	"github.com/mminer237/efw2-maker/internal/adapters/sqlite"
	"github.com/mminer237/efw2-maker/internal/adapters/wagefile"
	"github.com/mminer237/efw2-maker/internal/config"
	"github.com/mminer237/efw2-maker/internal/domain"
)

// Options are the per-invocation settings from the command line.
type Options struct {
	WageFile  string
	TaxYear   int // zero means the previous calendar year
	ResubWFID string
	FinalYear bool
	Out       string // empty or "-" writes to stdout
	PDF       string
	Archive   string // overrides the config archive path
	Notes     string
}

type App struct {
	conf   *config.Config
	logger *zap.Logger
	now    func() time.Time
}

func New(conf *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{conf: conf, logger: logger, now: time.Now}
}

// Run executes one filing. Nothing is written to the output, the PDF or the
// archive unless the whole file encoded successfully.
func (a *App) Run(ctx context.Context, opts Options, stdout io.Writer) (*domain.Submission, error) {
	employees, err := wagefile.ReadFile(opts.WageFile)
	if err != nil {
		return nil, err
	}
	a.logger.Info("read wage file",
		zap.String("op", "app.Run"),
		zap.String("file", opts.WageFile),
		zap.Int("employees", len(employees)),
	)

	year := opts.TaxYear
	if year == 0 {
		year = domain.DefaultTaxYear(a.now())
	}
	sub := &domain.Submission{
		Employer:  a.conf.EmployerConfig(),
		Run:       domain.RunParameters{TaxYear: year, ResubWFID: strings.TrimSpace(opts.ResubWFID), FinalYear: opts.FinalYear},
		Employees: employees,
		Notes:     opts.Notes,
	}

	data, err := a.Encode(ctx, sub)
	if err != nil {
		return nil, err
	}

	if opts.Out == "" || opts.Out == "-" {
		if _, err := stdout.Write(data); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	} else if err := WriteFileAtomic(opts.Out, data); err != nil {
		return nil, err
	}

	if opts.PDF != "" {
		var report bytes.Buffer
		if err := pdf.GeneratePDF(sub, &report); err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		if err := WriteFileAtomic(opts.PDF, report.Bytes()); err != nil {
			return nil, err
		}
	}

	archive := opts.Archive
	if archive == "" {
		archive = a.conf.Archive.Path
	}
	if archive != "" {
		if err := a.archive(ctx, archive, sub); err != nil {
			return nil, err
		}
	}

	a.logger.Info("wrote EFW2 file",
		zap.String("op", "app.Run"),
		zap.String("out", displayPath(opts.Out)),
		zap.Int("tax_year", year),
		zap.Int("bytes", len(data)),
		zap.String("sha256", sub.Digest),
	)
	return sub, nil
}

// Encode produces the EFW2 bytes for sub with the configured layout variant
// and records the file digest on sub.
func (a *App) Encode(ctx context.Context, sub *domain.Submission) ([]byte, error) {
	variant, err := a.conf.Variant()
	if err != nil {
		return nil, err
	}
	gen, err := efw2.New(sub.Run.TaxYear, efw2.WithVariant(variant), efw2.WithLogger(a.logger))
	if err != nil {
		a.logger.Warn(err.Error(), zap.String("op", "app.Encode"))
	}

	var buf bytes.Buffer
	if err := gen.Generate(ctx, sub, &buf); err != nil {
		return nil, err
	}
	sub.Digest = efw2.Digest(buf.Bytes())
	return buf.Bytes(), nil
}

func (a *App) archive(ctx context.Context, path string, sub *domain.Submission) error {
	repo, err := sqlite.New(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer repo.Close()
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	if err := repo.CreateSubmission(ctx, sub); err != nil {
		return fmt.Errorf("archive submission: %w", err)
	}
	a.logger.Debug("archived submission",
		zap.String("op", "app.archive"),
		zap.String("db", path),
		zap.Int64("id", sub.ID),
	)
	return nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it
// into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func displayPath(out string) string {
	if out == "" || out == "-" {
		return "stdout"
	}
	return out
}
