// Command transform cleans a vehicle telemetry CSV: tolerant type coercion,
// removal of rows without a usable event timestamp, per-signal median
// imputation, derived date/hour columns, and deterministic ordering. The
// result is written to a CSV file and optionally mirrored to a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/rupendra-bukke/test-vehicle-analytics/internal/config"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/datasource/file"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/metrics"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/metrics/prompush"
	csvparser "github.com/rupendra-bukke/test-vehicle-analytics/internal/parser/csv"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/pipeline"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/storage"
	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// main loads the pipeline config, optionally initializes a metrics backend,
// and executes the cleaning run.
func main() {
	var (
		cfgPath           string
		inputFlg          string
		outputFlg         string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/vehicle_signals.json", "pipeline config JSON path")
	flag.StringVar(&inputFlg, "input", "", "input CSV path (overrides source.file.path)")
	flag.StringVar(&outputFlg, "output", "", "output CSV path (overrides output.path)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p, err := loadPipeline(cfgPath, inputFlg, outputFlg)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidatePipeline(*p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(p.Job, metricsBackendFlg, pushGatewayURLFlg, *verbose)

	ctx := context.Background()
	start := time.Now()

	if err := run(ctx, *p); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// loadPipeline decodes the config file when present and applies flag
// overrides and defaults. A missing config file is tolerated when both paths
// are provided on the command line.
func loadPipeline(cfgPath, input, output string) (*config.Pipeline, error) {
	var p config.Pipeline

	f, err := os.Open(cfgPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", cfgPath, err)
		}
	case os.IsNotExist(err) && input != "" && output != "":
		// Paths on the command line are a complete configuration.
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	if input != "" {
		p.Source.File.Path = input
	}
	if output != "" {
		p.Output.Path = output
	}
	config.ApplyDefaults(&p)
	return &p, nil
}

// initMetrics decides the metrics backend: flag → env → none.
func initMetrics(job, backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// run executes source → parse → clean → sinks and prints the summary.
func run(ctx context.Context, p config.Pipeline) error {
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	log.Printf("loading data from: %s", p.Source.File.Path)

	src, err := openSource(ctx, p)
	if err != nil {
		return err
	}
	defer src.Close()

	parser := csvparser.NewParser(csvparser.Options{
		HasHeader:        p.Parser.Options.Bool("has_header", true),
		Comma:            p.Parser.Options.Rune("comma", ','),
		TrimSpace:        p.Parser.Options.Bool("trim_space", true),
		HeaderMap:        p.Parser.Options.StringMap("header_map"),
		ScrubPattern:     p.Parser.Options.String("scrub_pattern", ""),
		ScrubReplacement: p.Parser.Options.String("scrub_replacement", ""),
	})

	parseStart := time.Now()
	columns, rows, skipped, err := parser.Parse(src)
	metrics.RecordStep(p.Job, "parse", err, time.Since(parseStart))
	if err != nil {
		return fmt.Errorf("parse %s: %w", p.Source.File.Path, err)
	}
	metrics.RecordRow(p.Job, "parse_skipped", int64(skipped))

	log.Printf("original data shape: %s rows x %d columns", humanize.Comma(int64(len(rows))), len(columns))
	if skipped > 0 {
		log.Printf("  - malformed rows skipped by parser: %d", skipped)
	}

	log.Printf("applying transformations...")
	outCols, outRows, rep, err := pipeline.New(p.Job, p.Clean).Run(columns, rows)
	if err != nil {
		return err
	}
	logReport(p.Clean, rep)

	if err := writeSinks(ctx, p, outCols, outRows); err != nil {
		return err
	}

	logSummary(p, rep)
	return nil
}

// openSource maps source configuration onto a byte stream.
func openSource(ctx context.Context, p config.Pipeline) (io.ReadCloser, error) {
	switch p.Source.Kind {
	case "file":
		return file.NewLocal(p.Source.File.Path).Open(ctx)
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
}

// writeSinks writes the cleaned table to the output CSV and, when
// configured, mirrors it to the database — concurrently, since the sinks are
// independent.
func writeSinks(ctx context.Context, p config.Pipeline, columns []string, rows []records.Record) error {
	log.Printf("saving transformed data to: %s", p.Output.Path)

	sinks := []storage.Config{{Kind: "csv", Path: p.Output.Path}}
	if p.Storage.Kind != "" && p.Storage.Kind != "none" {
		sinks = append(sinks, storage.Config{
			Kind:  p.Storage.Kind,
			DSN:   p.Storage.DB.DSN,
			Table: p.Storage.DB.Table,
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range sinks {
		cfg := cfg
		g.Go(func() error {
			start := time.Now()
			repo, err := storage.New(ctx, cfg)
			if err != nil {
				metrics.RecordStep(p.Job, "write_"+cfg.Kind, err, time.Since(start))
				return fmt.Errorf("init %s sink: %w", cfg.Kind, err)
			}
			defer repo.Close()

			n, err := repo.WriteAll(ctx, columns, rows)
			metrics.RecordStep(p.Job, "write_"+cfg.Kind, err, time.Since(start))
			if err != nil {
				return fmt.Errorf("write %s sink: %w", cfg.Kind, err)
			}
			if cfg.Kind != "csv" {
				log.Printf("mirrored %s rows to %s (%s)", humanize.Comma(n), cfg.Kind, p.Storage.DB.Table)
			}
			return nil
		})
	}
	return g.Wait()
}

// logReport prints the per-stage diagnostics in coercion order.
func logReport(c config.Clean, rep *pipeline.Report) {
	for _, col := range c.TimeColumns {
		log.Printf("  - invalid %s values: %d", col, rep.MissingTimes[col])
	}
	log.Printf("  - missing/invalid %s: %d", c.ValueColumn, rep.MissingValues)
	log.Printf("  - rows removed due to invalid %s: %d", c.FilterColumn, rep.RowsDropped)
	if rep.Deduped > 0 {
		log.Printf("  - duplicate rows removed: %d", rep.Deduped)
	}
	for _, imp := range rep.Imputations {
		log.Printf("  - filled missing %s values with median: %s",
			imp.Signal, strconv.FormatFloat(imp.Median, 'f', -1, 64))
	}
	if !rep.RowAccountingOK() {
		log.Printf("WARNING: row accounting mismatch: in=%d out=%d dropped=%d deduped=%d",
			rep.RowsIn, rep.RowsOut, rep.RowsDropped, rep.Deduped)
	}
}

// logSummary prints the end-of-run summary block.
func logSummary(p config.Pipeline, rep *pipeline.Report) {
	log.Printf("transformed data shape: %s rows x %d columns", humanize.Comma(int64(rep.RowsOut)), len(rep.Columns))
	log.Printf("summary:")
	log.Printf("  input file:        %s", p.Source.File.Path)
	log.Printf("  output file:       %s", p.Output.Path)
	log.Printf("  records processed: %s", humanize.Comma(int64(rep.RowsIn)))
	log.Printf("  records saved:     %s", humanize.Comma(int64(rep.RowsOut)))
	log.Printf("  records removed:   %s", humanize.Comma(int64(rep.RowsDropped+rep.Deduped)))
	log.Printf("  columns:           %s", strings.Join(rep.Columns, ", "))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
