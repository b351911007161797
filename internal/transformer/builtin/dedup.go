// Package builtin contains the reusable row transformers.
//
// DeDup collapses duplicate rows by a key and chooses a winner according to
// a policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-empty values; ties
//     break by "keep-last"
//
// Keys: the key is the listed columns, or every column when Keys is empty
// (exact-duplicate removal). Rows are identified by a 128-bit xxh3 hash of
// their key values, so no key strings are retained.
package builtin

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"csvload/internal/transformer"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the column names that form the key. Empty means all columns.
	Keys []string

	// Policy selects the winner among duplicates. Default is "keep-first".
	Policy string
}

func (DeDup) Name() string { return "dedupe" }

// Apply returns a table holding only the winning row of each key, in input
// order. Rows missing a key column pass through untouched.
func (d DeDup) Apply(in transformer.Table) transformer.Table {
	if len(in.Rows) == 0 {
		return in
	}

	idx, ok := d.keyIndexes(in.Headers)
	if !ok {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-first"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[xxh3.Uint128]slot, len(in.Rows))
	var passthrough []int

	for i, row := range in.Rows {
		fp, ok := fingerprint(row, idx)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		switch policy {
		case "keep-last":
			winners[fp] = slot{index: i}
		case "most-complete":
			s := slot{index: i, score: completeness(row)}
			if prev, exists := winners[fp]; !exists || s.score >= prev.score {
				winners[fp] = s
			}
		default:
			if _, exists := winners[fp]; !exists {
				winners[fp] = slot{index: i}
			}
		}
	}

	keep := make([]int, 0, len(winners)+len(passthrough))
	for _, s := range winners {
		keep = append(keep, s.index)
	}
	keep = append(keep, passthrough...)
	sort.Ints(keep)

	out := make([][]any, 0, len(keep))
	for _, i := range keep {
		out = append(out, in.Rows[i])
	}
	return transformer.Table{Headers: in.Headers, Rows: out}
}

// keyIndexes resolves Keys to column positions. It reports false when a key
// names a column the table does not have.
func (d DeDup) keyIndexes(headers []string) ([]int, bool) {
	if len(d.Keys) == 0 {
		return nil, true
	}
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		pos[h] = i
	}
	idx := make([]int, 0, len(d.Keys))
	for _, k := range d.Keys {
		i, ok := pos[k]
		if !ok {
			return nil, false
		}
		idx = append(idx, i)
	}
	return idx, true
}

// MissingKeys returns the keys that name no column in headers, in Keys order.
func (d DeDup) MissingKeys(headers []string) []string {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[h] = struct{}{}
	}
	var missing []string
	for _, k := range d.Keys {
		if _, ok := have[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// fingerprint hashes the key cells of row. Each value is written with a type
// tag so that int64(1), float64(1) and "1" hash differently. A nil idx means
// the whole row.
func fingerprint(row []any, idx []int) (xxh3.Uint128, bool) {
	h := xxh3.New()
	var buf [9]byte
	write := func(v any) {
		switch x := v.(type) {
		case nil:
			_, _ = h.Write([]byte{0})
		case int64:
			buf[0] = 1
			binary.LittleEndian.PutUint64(buf[1:], uint64(x))
			_, _ = h.Write(buf[:])
		case float64:
			buf[0] = 2
			binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(x))
			_, _ = h.Write(buf[:])
		case string:
			buf[0] = 3
			binary.LittleEndian.PutUint64(buf[1:], uint64(len(x)))
			_, _ = h.Write(buf[:])
			_, _ = h.WriteString(x)
		default:
			buf[0] = 4
			_, _ = h.Write(buf[:1])
			_, _ = h.WriteString(fmt.Sprint(x))
		}
	}

	if idx == nil {
		for _, v := range row {
			write(v)
		}
		return h.Sum128(), true
	}
	for _, i := range idx {
		if i >= len(row) {
			return xxh3.Uint128{}, false
		}
		write(row[i])
	}
	return h.Sum128(), true
}

// completeness counts non-nil, non-empty values.
func completeness(row []any) int {
	n := 0
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		n++
	}
	return n
}
