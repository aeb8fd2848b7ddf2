package westgard

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	err     error
}

// ParseCommandLine configures the analysis from command line options or from
// a YAML configuration file passed with the -c flag.  Returns a slice of
// functional options that can be applied to the configuration.
func ParseCommandLine() ([]ConfigOption, error) {
	pf := createFlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) ([]ConfigOption, error) {
	options := options{}
	if err := pf.ParseAll(args, parseFlag(&options)); err != nil {
		return options.options, err
	}
	if pf.NArg() > 0 {
		return options.options, fmt.Errorf("unexpected arguments: %v", pf.Args())
	}
	return options.options, options.err
}

func createFlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("westgard", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of westgard:\nwestgard -f <workbook.xlsx> <options>\nwestgard --sheet-url <url> <options>\nwestgard --listen :8080\n")
		fmt.Printf("\n%s", pf.FlagUsagesWrapped(10))
	}

	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.StringP("file", "f", "", "Excel workbook with the sheets 'QC data', 'Historical limits' and 'Specification limits'")
	pf.String("sheet-url", "", "Public Google Sheets link with the same three sheets")
	pf.StringP("parameter", "p", "", "Parameter to analyze.  Repeat for more than one.  Defaults to every parameter in the QC data.")
	pf.String("limits", "data", "Source of the control limits: data, historical or specification")
	pf.StringP("rule", "r", "", "Westgard rule to apply (1-3s, 2-2s, R-4s, 4-1s, 10-x, 7-T).  Repeat for more than one.  Defaults to all rules.")
	pf.String("format", "table", "Report format: table or json")
	pf.StringP("output", "o", "", "Write the report to a file instead of stdout")
	pf.String("listen", "", "Serve the HTTP API on this address (e.g. :8080) instead of running a single analysis")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.Bool("no-error-reports", false, "Do not send reports when there are unexpected errors")
	pf.String("rollbar-token", "", "Rollbar access token used for unexpected error reports")

	return pf
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		switch flag.Name {
		case "config":
			opts, err := parseFromFile(value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, opts...)
		default:
			option, err := handleOption(flag.Name, value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, option)
		}
		return nil
	}
}

func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "file":
		return File(value), nil
	case "sheet-url":
		return SheetURL(value), nil
	case "parameter":
		return Parameter(value), nil
	case "limits":
		return Limits(value), nil
	case "rule":
		return Rule(value), nil
	case "format":
		return Format(value), nil
	case "output":
		return Output(value), nil
	case "listen":
		return Listen(value), nil
	case "log-level":
		return LogLevel(value), nil
	case "no-error-reports":
		return NoErrorReports(), nil
	case "rollbar-token":
		return RollbarToken(value), nil
	default:
		return nil, fmt.Errorf("Unknown option: %s", name)
	}
}

func parseFromFile(fpath string) ([]ConfigOption, error) {
	var options []ConfigOption
	data, err := os.ReadFile(fpath)
	if err != nil {
		return options, err
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return options, err
	}
	for k, v := range cfg {

		switch v.(type) {
		case string:
			opt, err := handleOption(k, v.(string))
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		case int:
			opt, err := handleOption(k, strconv.Itoa(v.(int)))
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		case bool:
			if !v.(bool) {
				continue
			}
			opt, err := handleOption(k, "")
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		// handles the case of a list of parameters or rules
		case []interface{}:
			alt := listFieldsYAML{}
			if err := yaml.Unmarshal(data, &alt); err != nil {
				return options, fmt.Errorf("Could not unmarshal config value for key: %s", k)
			}
			var vals []string
			switch k {
			case "parameter":
				vals = alt.Parameter
			case "rule":
				vals = alt.Rule
			default:
				return options, fmt.Errorf("Unknown option: %s", k)
			}
			for _, val := range vals {
				opt, err := handleOption(k, val)
				if err != nil {
					return options, err
				}
				options = append(options, opt)
			}
		default:
			return options, fmt.Errorf("Could not process config key %s, unknown type", k)
		}
	}
	return options, nil
}

type listFieldsYAML struct {
	Parameter []string `yaml:"parameter"`
	Rule      []string `yaml:"rule"`
}
