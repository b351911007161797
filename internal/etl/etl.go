// Package etl wires one CSV load end to end: parse the file, map rows onto
// headers, derive column descriptors, drop fully-null rows, apply the
// optional transforms, create the table and insert the rows.
package etl

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"csvload/internal/datasource"
	"csvload/internal/ddl"
	"csvload/internal/loaderr"
	"csvload/internal/metrics"
	csvparser "csvload/internal/parser/csv"
	"csvload/internal/record"
	"csvload/internal/schema"
	"csvload/internal/storage"
	"csvload/internal/transformer"
	"csvload/internal/transformer/builtin"
)

// Options configures a single Run.
type Options struct {
	// Path is the CSV file or http(s) URL to load.
	Path string

	// Source overrides how Path is opened. When nil it is resolved from Path.
	Source datasource.Source

	// Table is the destination table; it is upper-cased before use.
	Table string

	// Job labels logs and metrics. Defaults to "csvload".
	Job string

	Parser csvparser.Options

	// Columns declares types for headers by name. Undeclared headers are
	// strings unless Infer is set.
	Columns []ddl.ColumnDescriptor

	// Infer derives integer/float/string types for undeclared headers.
	Infer bool

	// Normalize trims cell text and replaces non-breaking spaces.
	Normalize bool

	// Dedupe, when non-nil, removes duplicate rows after null-row removal.
	Dedupe *builtin.DeDup

	Verbose bool
}

// Summary reports what a Run did.
type Summary struct {
	RunID             string
	Table             string
	Columns           []ddl.ColumnDescriptor
	Parsed            int
	NullDropped       int
	DuplicatesDropped int
	Inserted          int64
	Duration          time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("run=%s table=%s columns=%d parsed=%d null_dropped=%d duplicates_dropped=%d inserted=%d elapsed=%s",
		s.RunID, s.Table, len(s.Columns), s.Parsed, s.NullDropped, s.DuplicatesDropped, s.Inserted,
		s.Duration.Truncate(time.Millisecond))
}

// Run loads opt.Path into opt.Table through repo. The table must not exist
// yet; on any error after creation the table stays, but no rows are written
// unless the whole insert committed.
func Run(ctx context.Context, repo storage.Repository, opt Options) (sum Summary, err error) {
	start := time.Now()
	job := opt.Job
	if job == "" {
		job = "csvload"
	}
	sum.RunID = uuid.NewString()
	sum.Table = strings.ToUpper(strings.TrimSpace(opt.Table))
	defer func() {
		sum.Duration = time.Since(start)
		metrics.RecordRun(job, err)
	}()

	logf := func(format string, args ...any) {
		if opt.Verbose {
			log.Printf("etl: run=%s "+format, append([]any{sum.RunID}, args...)...)
		}
	}

	if sum.Table == "" {
		return sum, loaderr.Validationf("load", "table name must not be empty")
	}

	// 1) Parse and map.
	stepStart := time.Now()
	var (
		res    *csvparser.Result
		mapped []record.Row
	)
	src := opt.Source
	if src == nil {
		src = datasource.Resolve(opt.Path)
	}
	res, err = parse(ctx, src, opt.Parser)
	if err == nil {
		mapped, err = record.MapRows(res.Headers, res.Rows)
	}
	metrics.RecordStep(job, "parse", err, time.Since(stepStart))
	if err != nil {
		return sum, err
	}
	sum.Parsed = len(mapped)
	metrics.RecordRow(job, "parsed", int64(sum.Parsed))
	logf("parsed source=%s headers=%v rows=%d", src.Location(), res.Headers, sum.Parsed)

	if err := ctx.Err(); err != nil {
		return sum, err
	}

	// 2) Transform.
	stepStart = time.Now()
	chain := transformer.Chain{}
	if opt.Normalize {
		chain = append(chain, builtin.Normalize{})
	}
	chain = append(chain, builtin.DropNullRows{})
	if opt.Dedupe != nil {
		dd := *opt.Dedupe
		dd.Keys = make([]string, len(opt.Dedupe.Keys))
		for i, k := range opt.Dedupe.Keys {
			dd.Keys[i] = csvparser.NormalizeHeader(k)
		}
		if missing := dd.MissingKeys(res.Headers); len(missing) > 0 {
			return sum, loaderr.Validationf("dedupe", "keys %v match no CSV header %v", missing, res.Headers)
		}
		chain = append(chain, dd)
	}
	out := chain.Apply(transformer.Table{Headers: res.Headers, Rows: record.Matrix(mapped)}, func(name string, before, after int) {
		dropped := before - after
		switch name {
		case "drop_null_rows":
			sum.NullDropped += dropped
			metrics.RecordRow(job, "null_dropped", int64(dropped))
		case "dedupe":
			sum.DuplicatesDropped += dropped
			metrics.RecordRow(job, "duplicate_dropped", int64(dropped))
		}
		logf("transform=%s rows_in=%d rows_out=%d", name, before, after)
	})
	metrics.RecordStep(job, "transform", nil, time.Since(stepStart))

	// 3) Columns.
	sum.Columns, err = schema.Columns(out.Headers, opt.Columns, out.Rows, opt.Infer)
	if err != nil {
		return sum, err
	}

	// 4) Create.
	loader := storage.NewLoader(repo, opt.Verbose)
	stepStart = time.Now()
	err = loader.CreateTable(ctx, sum.Table, sum.Columns)
	metrics.RecordStep(job, "create_table", err, time.Since(stepStart))
	if err != nil {
		return sum, err
	}

	// 5) Insert.
	stepStart = time.Now()
	sum.Inserted, err = loader.InsertData(ctx, sum.Table, out.Rows)
	metrics.RecordStep(job, "insert", err, time.Since(stepStart))
	if err != nil {
		return sum, err
	}
	metrics.RecordRow(job, "inserted", sum.Inserted)

	sum.Duration = time.Since(start)
	logf("done %s", sum)
	return sum, nil
}

func parse(ctx context.Context, src datasource.Source, opt csvparser.Options) (*csvparser.Result, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return csvparser.NewParser(opt).Parse(rc)
}
