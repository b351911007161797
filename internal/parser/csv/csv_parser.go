// Package csv reads a delimited file fully into memory, normalizes its header
// row into SQL-safe identifiers and converts every cell into a best-guess
// scalar (int64, float64, string or nil).
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"csvload/internal/loaderr"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each cell before typing.
	TrimSpace bool

	// LazyQuotes tolerates a quote appearing in an unquoted field.
	LazyQuotes bool
}

// Result holds the normalized header row and the typed data rows. Rows keep
// the width they had in the file; rejecting ragged rows is left to the caller.
type Result struct {
	Headers []string
	Rows    [][]any
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ReadFile opens path and parses it. A missing or unreadable file is an IO
// error; the handle is closed on every path.
func (p *Parser) ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loaderr.IOf("open csv", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse consumes the whole input. The first record is the header row. An
// empty input yields a Result with no headers and no rows.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is enforced against the header by the row mapper.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Result{Headers: []string{}, Rows: [][]any{}}, nil
	}
	if err != nil {
		return nil, readErr("read csv header", err)
	}

	res := &Result{
		Headers: NormalizeHeaders(StripHeaderBOM(header)),
		Rows:    [][]any{},
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readErr("read csv row", err)
		}

		line, _ := cr.FieldPos(0)
		row := make([]any, len(rec))
		for i, cell := range rec {
			if p.opt.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			v, err := ConvertValue(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

// readErr classifies a csv.Reader failure. Syntax problems are validation
// errors; anything else came from the underlying reader.
func readErr(op string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return loaderr.Validationf(op, "%v", pe)
	}
	return loaderr.IOf(op, err)
}
