// Command csvload loads a CSV file into a new relational table.
//
//	csvload [flags] <csv-path|url> <table>
//
// Settings resolve flag → environment → config file → default. Exit codes:
// 0 success, 2 usage or configuration, 3 IO, 4 table already exists,
// 5 validation, 6 store, 1 anything else.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/joho/godotenv"

	"csvload/internal/config"
	"csvload/internal/datasource/httpds"
	"csvload/internal/etl"
	"csvload/internal/loaderr"
	csvparser "csvload/internal/parser/csv"
	"csvload/internal/storage"
	"csvload/internal/transformer/builtin"

	// register all backends with the storage factory.
	_ "csvload/internal/storage/all"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitIO         = 3
	exitExists     = 4
	exitValidation = 5
	exitStore      = 6
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds the parsed command line.
type flags struct {
	cfgPath        string
	storageKind    string
	dsn            string
	infer          bool
	dedupe         bool
	comma          string
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
	validate       bool
	verbose        bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	var f flags
	fs := flag.NewFlagSet("csvload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: csvload [flags] <csv-path|url> <table>")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.cfgPath, "config", "", "load config file (.json, .yaml or .yml)")
	fs.StringVar(&f.storageKind, "storage", "", "storage kind: sqlite, postgres, mssql, mysql (env CSVLOAD_STORAGE)")
	fs.StringVar(&f.dsn, "dsn", "", "store DSN; sqlite defaults to db.sqlite next to the CSV (env CSVLOAD_DSN)")
	fs.BoolVar(&f.infer, "infer", false, "infer integer/float/string types for undeclared columns")
	fs.BoolVar(&f.dedupe, "dedupe", false, "drop exact duplicate rows, keeping the first")
	fs.StringVar(&f.comma, "comma", "", "field delimiter (default \",\")")
	fs.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: none, prometheus, datadog (env METRICS_BACKEND)")
	fs.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&f.datadogAddr, "datadog-addr", "", "DogStatsD address (env DD_AGENT_ADDR)")
	fs.BoolVar(&f.validate, "validate", false, "validate the config file and exit")
	fs.BoolVar(&f.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &f, fs.Args(), nil
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// run is main without the process plumbing; it returns the exit code.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := &config.Load{}
	if f.cfgPath != "" {
		if cfg, err = config.LoadFile(f.cfgPath); err != nil {
			fmt.Fprintf(stderr, "csvload: %v\n", err)
			return exitUsage
		}
	}

	issues := config.ValidateLoad(*cfg)
	if f.validate || config.HasErrors(issues) {
		for _, iss := range issues {
			fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		}
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "csvload: configuration is invalid: %s\n", f.cfgPath)
		return exitUsage
	}
	if f.validate {
		fmt.Fprintf(stdout, "configuration is valid: %s\n", f.cfgPath)
		return exitOK
	}

	if len(rest) != 2 {
		fmt.Fprintln(stderr, "usage: csvload [flags] <csv-path|url> <table>")
		return exitUsage
	}
	csvPath, table := rest[0], rest[1]

	comma := cfg.Parser.Options.Rune("comma", ',')
	if f.comma != "" {
		if utf8.RuneCountInString(f.comma) != 1 {
			fmt.Fprintf(stderr, "csvload: -comma must be a single character, got %q\n", f.comma)
			return exitUsage
		}
		comma, _ = utf8.DecodeRuneInString(f.comma)
	}

	// A local CSV must exist before the store is opened, or a default
	// db.sqlite would be created next to a file that is not there.
	if !httpds.IsURL(csvPath) {
		if _, err := os.Stat(csvPath); err != nil {
			fmt.Fprintf(stderr, "csvload: %v\n", loaderr.IOf("open csv", err))
			return exitIO
		}
	}

	kind := firstNonEmpty(f.storageKind, getenv("CSVLOAD_STORAGE"), cfg.Storage.Kind, "sqlite")
	dsn := firstNonEmpty(f.dsn, getenv("CSVLOAD_DSN"), cfg.Storage.DB.DSN)
	if dsn == "" {
		if kind != "sqlite" {
			fmt.Fprintf(stderr, "csvload: storage %q needs -dsn or CSVLOAD_DSN\n", kind)
			return exitUsage
		}
		dsn = "db.sqlite"
		if !httpds.IsURL(csvPath) {
			dsn = filepath.Join(filepath.Dir(csvPath), "db.sqlite")
		}
	}

	job := firstNonEmpty(cfg.Job, "csvload")

	flush, err := setupMetrics(metricsSettings{
		backend:        firstNonEmpty(f.metricsBackend, getenv("METRICS_BACKEND"), cfg.Metrics.Backend, "none"),
		pushgatewayURL: firstNonEmpty(f.pushgatewayURL, getenv("PUSHGATEWAY_URL"), cfg.Metrics.PushgatewayURL),
		datadogAddr:    firstNonEmpty(f.datadogAddr, getenv("DD_AGENT_ADDR"), cfg.Metrics.DatadogAddr),
		job:            job,
		verbose:        f.verbose,
	})
	if err != nil {
		fmt.Fprintf(stderr, "csvload: %v\n", err)
		return exitUsage
	}
	defer flush()

	opt := etl.Options{
		Path:  csvPath,
		Table: table,
		Job:   job,
		Parser: csvparser.Options{
			Comma:      comma,
			TrimSpace:  cfg.Parser.Options.Bool("trim_space", false),
			LazyQuotes: cfg.Parser.Options.Bool("lazy_quotes", false),
		},
		Columns:   cfg.Descriptors(),
		Infer:     f.infer || cfg.HasTransform("infer"),
		Normalize: cfg.HasTransform("normalize"),
		Verbose:   f.verbose,
	}
	if t, ok := cfg.FindTransform("dedupe"); ok {
		opt.Dedupe = &builtin.DeDup{
			Keys:   t.Options.StringSlice("keys"),
			Policy: t.Options.String("policy", ""),
		}
	} else if f.dedupe {
		opt.Dedupe = &builtin.DeDup{}
	}

	if f.verbose {
		log.Printf("csvload: file=%s table=%s storage=%s job=%s", csvPath, table, kind, job)
	}

	repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn})
	if err != nil {
		fmt.Fprintf(stderr, "csvload: open %s store: %v\n", kind, err)
		if !contains(storage.ListKinds(), kind) {
			return exitUsage
		}
		return exitStore
	}
	defer repo.Close()

	sum, err := etl.Run(ctx, repo, opt)
	if err != nil {
		fmt.Fprintf(stderr, "csvload: %v\n", err)
		return exitCode(err)
	}

	fmt.Fprintln(stdout, sum.String())
	return exitOK
}

// exitCode maps a load error to the process exit code.
func exitCode(err error) int {
	switch loaderr.KindOf(err) {
	case loaderr.IO:
		return exitIO
	case loaderr.AlreadyExists:
		return exitExists
	case loaderr.Validation:
		return exitValidation
	case loaderr.Store:
		return exitStore
	default:
		return exitFailure
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
