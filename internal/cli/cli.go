package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/ZetoOfficial/engagement-analytics/internal/config"
	"github.com/ZetoOfficial/engagement-analytics/internal/reports"
)

// Args are the parsed command line arguments.
type Args struct {
	Report   string
	Options  reports.Options
	LogLevel string
	LogFile  string
	Seed     string
	Dump     string
	List     bool
}

// ParseArgs parses the command line. Values from -config are applied first
// and explicitly set flags override them.
func ParseArgs(name string, args []string, output io.Writer) (*Args, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	report := fs.String("report", "", "Name of the report to run (see -list).")
	limit := fs.Int("limit", 0, "Top-N cutoff of ranked reports (default 10).")
	window := fs.String("window", "", "Trailing window of windowed reports, e.g. 7d, 1mo, 72h (default 1mo).")
	thresholdSet := fs.String("threshold_set", "", "Segmentation thresholds: standard or loyalty.")
	weights := fs.String("weights", "", "Activity score weights as posts,likes,comments.")
	strict := fs.Bool("strict", false, "Abort on dangling references instead of reporting them.")
	configFile := fs.String("config", "", "Optional YAML file with report defaults.")
	seed := fs.String("seed", "", "Fixture file to write into Neo4j instead of running a report.")
	dump := fs.String("dump", "", "Write the loaded snapshot to this fixture file instead of running a report.")
	list := fs.Bool("list", false, "List available reports.")
	logLevel := fs.String("log_level", "INFO", "Set the logging level (DEBUG, INFO, WARNING, ERROR).")
	logFile := fs.String("log_file", "", "Set the log file path. If not set, logs will be printed to console.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	out := &Args{
		Report:   *report,
		LogLevel: *logLevel,
		LogFile:  *logFile,
		Seed:     *seed,
		Dump:     *dump,
		List:     *list,
	}

	if *configFile != "" {
		f, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		if out.Options, err = f.Defaults.Options(); err != nil {
			return nil, err
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "limit":
			out.Options.Limit = *limit
		case "window":
			out.Options.Window, err = config.ParseWindow(*window)
		case "threshold_set":
			out.Options.ThresholdSet = *thresholdSet
		case "weights":
			out.Options.Weights, err = config.ParseWeights(*weights)
		case "strict":
			out.Options.Strict = *strict
		}
	})
	if err != nil {
		return nil, err
	}

	if out.List || out.Seed != "" || out.Dump != "" {
		return out, nil
	}
	if out.Report == "" {
		fs.Usage()
		return nil, fmt.Errorf("-report is required")
	}
	if _, ok := reports.Lookup(out.Report); !ok {
		return nil, fmt.Errorf("report %s not found", out.Report)
	}
	return out, nil
}
