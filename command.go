package westgard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/BTBurke/westgard/pkg/ingest"
)

// Command is a single analysis run over a workbook or a Google Sheet
type Command struct {
	Config   Config
	Results  []Result
	Start    time.Time
	Duration time.Duration

	logger *slog.Logger
	loader *ingest.Loader
	errors ErrorReporter
	out    io.Writer
}

// New validates the options and prepares the command
func New(options ...ConfigOption) (*Command, []error) {
	cfg, errs := newConfig(options...)
	if len(errs) > 0 {
		return nil, errs
	}
	logger := NewLogger(os.Stderr, cfg.LogLevel)
	client, err := ingest.NewSheetsClient(ingest.WithSheetsLogger(logger))
	if err != nil {
		return nil, []error{err}
	}
	return &Command{
		Config: cfg,
		logger: logger,
		loader: ingest.NewLoader(client, logger),
		errors: NewErrorReporter(cfg),
		out:    os.Stdout,
	}, nil
}

// NewLogger returns the text logger used by the command line and the service
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger is the command's structured logger
func (c *Command) Logger() *slog.Logger {
	return c.logger
}

// Loader is the cached QC source loader, shared with the HTTP service
func (c *Command) Loader() *ingest.Loader {
	return c.loader
}

// Reporter is the unexpected error reporter
func (c *Command) Reporter() ErrorReporter {
	return c.errors
}

// Exec loads the QC source, evaluates the requested parameters and writes the report
func (c *Command) Exec(ctx context.Context) error {
	c.Start = time.Now()
	defer func() { c.Duration = time.Since(c.Start) }()

	ds, err := c.load(ctx)
	if err != nil {
		return err
	}
	results, err := Analyze(ctx, ds, c.Config.Request())
	if err != nil {
		return err
	}
	c.Results = results

	for _, r := range results {
		if r.Warning != "" {
			c.logger.Warn("parameter skipped", "series", r.Series, "reason", r.Warning)
			continue
		}
		c.logger.Debug("parameter evaluated", "series", r.Series, "points", r.Points, "violations", r.Violations.Total())
	}
	c.logger.Info("analysis complete", "parameters", len(results), "flagged", Flagged(results), "limits", c.Config.Limits)

	out := c.out
	if len(c.Config.Output) > 0 {
		f, err := os.Create(c.Config.Output)
		if err != nil {
			return fmt.Errorf("could not create report file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := WriteReport(out, c.Config.Format, ds, results); err != nil {
		c.errors.ReportError(err)
		return fmt.Errorf("could not write report: %v", err)
	}
	return nil
}

func (c *Command) load(ctx context.Context) (*ingest.Dataset, error) {
	if len(c.Config.SheetURL) > 0 {
		return c.loader.Sheet(ctx, c.Config.SheetURL, false)
	}
	data, err := os.ReadFile(c.Config.File)
	if err != nil {
		return nil, fmt.Errorf("could not read workbook: %v", err)
	}
	return c.loader.Workbook(data)
}
