package westgard

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/BTBurke/westgard/pkg/ingest"
	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
)

// Output formats of the report
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds the options of one analysis run or of the HTTP service
type Config struct {
	File           string
	SheetURL       string
	Parameters     []string
	Limits         stat.Source
	Rules          []rules.RuleID
	Format         string
	Output         string
	Listen         string
	LogLevel       slog.Level
	NoErrorReports bool
	RollbarToken   string
}

type ConfigOption func(c *Config) error

func newConfig(options ...ConfigOption) (Config, []error) {
	c := Config{
		Limits:   stat.FromData,
		Format:   FormatTable,
		LogLevel: slog.LevelInfo,
	}

	var errors []error
	for _, option := range options {
		err := option(&c)
		if err != nil {
			errors = append(errors, err)
		}
	}
	if len(c.File) > 0 && len(c.SheetURL) > 0 {
		errors = append(errors, fmt.Errorf("use either --file or --sheet-url, not both"))
	}
	if len(c.Listen) == 0 && len(c.File) == 0 && len(c.SheetURL) == 0 {
		errors = append(errors, fmt.Errorf("a QC source is required, use westgard -f <workbook.xlsx> or --sheet-url <url>; to run the service use --listen <addr>"))
	}

	if len(errors) > 0 {
		return Config{}, errors
	}
	return c, nil
}

// Request returns the analysis request described by the configuration
func (c Config) Request() Request {
	return Request{
		Parameters: c.Parameters,
		Limits:     c.Limits,
		Rules:      c.Rules,
	}
}

func File(path string) ConfigOption {
	return func(c *Config) error {
		c.File = path
		return nil
	}
}

func SheetURL(url string) ConfigOption {
	return func(c *Config) error {
		if _, err := ingest.SheetID(url); err != nil {
			return err
		}
		c.SheetURL = url
		return nil
	}
}

func Parameter(name string) ConfigOption {
	return func(c *Config) error {
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			return fmt.Errorf("parameter name must not be empty")
		}
		c.Parameters = append(c.Parameters, name)
		return nil
	}
}

func Limits(source string) ConfigOption {
	return func(c *Config) error {
		s, err := stat.ParseSource(source)
		if err != nil {
			return fmt.Errorf("limits must be one of data, historical or specification: %w", err)
		}
		c.Limits = s
		return nil
	}
}

func Rule(id string) ConfigOption {
	return func(c *Config) error {
		r, err := rules.ParseRule(id)
		if err != nil {
			return err
		}
		c.Rules = append(c.Rules, r)
		return nil
	}
}

func Format(format string) ConfigOption {
	return func(c *Config) error {
		switch f := strings.ToLower(format); f {
		case FormatTable, FormatJSON:
			c.Format = f
			return nil
		default:
			return fmt.Errorf("unknown output format %q, use table or json", format)
		}
	}
}

func Output(path string) ConfigOption {
	return func(c *Config) error {
		c.Output = path
		return nil
	}
}

func Listen(addr string) ConfigOption {
	return func(c *Config) error {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("listen address should be host:port or :port: %v", err)
		}
		c.Listen = addr
		return nil
	}
}

func LogLevel(level string) ConfigOption {
	return func(c *Config) error {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("unknown log level %q, use debug, info, warn or error", level)
		}
		c.LogLevel = l
		return nil
	}
}

func NoErrorReports() ConfigOption {
	return func(c *Config) error {
		c.NoErrorReports = true
		return nil
	}
}

func RollbarToken(token string) ConfigOption {
	return func(c *Config) error {
		c.RollbarToken = token
		return nil
	}
}
