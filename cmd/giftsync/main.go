// Command giftsync imports a gift page dataset and optionally warms the catalog cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gifthub/engine/config"
	"github.com/gifthub/engine/internal/app"
	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/usecase"
	"github.com/jessevdk/go-flags"
)

// Options are the global flags
type Options struct {
	Config  string `long:"config" env:"GIFTHUB_CONFIG" description:"Path to a config file (default: search ./config.yaml, ./config/, /etc/gifthub/)"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

// SyncCommand imports the dataset
type SyncCommand struct {
	Dataset   string `long:"dataset" required:"true" description:"Path to the JSON dataset"`
	WarmCache bool   `long:"warm-cache" description:"Warm the catalog cache for every imported top pick"`
	BatchSize int    `long:"batch-size" default:"5" description:"Identifiers per warm batch (1-10)"`
	SleepMs   int    `long:"sleep-ms" default:"500" description:"Pause between warm batches in milliseconds (0-5000)"`

	opts *Options
	out  io.Writer
}

// errValidationFailed marks a sync whose imported pages did not all render
var errValidationFailed = errors.New("one or more pages failed validation")

// Execute runs the sync command
func (c *SyncCommand) Execute(args []string) error {
	cfg, err := config.LoadFile(c.opts.Config)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if c.opts.Verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Output: os.Stderr})

	engine, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.Importer.Sync(ctx, c.Dataset)
	if err != nil {
		return err
	}
	printReport(c.out, report)

	if c.WarmCache {
		ids := engine.Importer.CollectIdentifiers(ctx, report.PageIDs)
		summary := engine.Warmer.Warm(ctx, ids, c.BatchSize, c.SleepMs)
		printWarmSummary(c.out, summary, engine.Catalog.Enabled())
	}

	if report.ValidationFailures > 0 {
		return errValidationFailed
	}
	return nil
}

func printReport(w io.Writer, report *domain.SyncReport) {
	fmt.Fprintf(w, "Created: %d\n", report.Created)
	fmt.Fprintf(w, "Updated: %d\n", report.Updated)
	fmt.Fprintf(w, "Skipped: %d\n", report.Skipped)
	fmt.Fprintf(w, "Validated: %d\n", report.Validated)
	fmt.Fprintf(w, "Validation failures: %d\n", report.ValidationFailures)
	for _, msg := range report.Errors {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

func printWarmSummary(w io.Writer, summary domain.WarmSummary, enabled bool) {
	if !enabled {
		fmt.Fprintln(w, "Warning: catalog enrichment is disabled; cache not warmed")
		return
	}
	fmt.Fprintf(w, "Warm attempted: %d, warmed: %d, missing: %d\n", summary.Attempted, summary.Warmed, summary.Missing)
	if summary.Missing > 0 {
		fmt.Fprintf(w, "Warning: %d identifiers could not be resolved\n", summary.Missing)
	}
}

func newParser(opts *Options, out io.Writer) *flags.Parser {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	sync := &SyncCommand{
		BatchSize: usecase.DefaultWarmBatchSize,
		SleepMs:   usecase.DefaultWarmDelayMs,
		opts:      opts,
		out:       out,
	}
	if _, err := parser.AddCommand("sync", "Import the gift page dataset", "Create or update gift pages from a JSON dataset, validate each page, and optionally warm the catalog cache.", sync); err != nil {
		panic(err)
	}
	return parser
}

func run(args []string, out, errOut io.Writer) int {
	var opts Options
	parser := newParser(&opts, out)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(out, flagsErr.Message)
			return 0
		}
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
