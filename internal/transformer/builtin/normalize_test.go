package builtin

import (
	"reflect"
	"testing"

	"csvload/internal/transformer"
)

/*
TestNormalizeApply_TableDriven verifies the core normalization semantics of
Normalize.Apply:

  - Replaces U+00A0 NO-BREAK SPACE (NBSP) with ASCII space.
  - Trims leading/trailing whitespace.
  - Turns strings that end up empty into nil.
  - Leaves non-string values unchanged.
  - Types trimmed numeric text as int64 or float64.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   [][]any
		want [][]any
	}{
		{
			name: "no_strings_no_change",
			in:   [][]any{{int64(1), 2.5, nil}},
			want: [][]any{{int64(1), 2.5, nil}},
		},
		{
			name: "simple_trim_spaces",
			in:   [][]any{{" foo ", "\tbar\n"}},
			want: [][]any{{"foo", "bar"}},
		},
		{
			name: "nbsp_replaced_and_trimmed",
			in:   [][]any{{" " + nbspace + "foo" + nbspace + " "}},
			want: [][]any{{"foo"}},
		},
		{
			name: "nbsp_internal_becomes_space",
			in:   [][]any{{"foo" + nbspace + "bar"}},
			want: [][]any{{"foo bar"}},
		},
		{
			name: "blank_becomes_nil",
			in:   [][]any{{"   ", nbspace}},
			want: [][]any{{nil, nil}},
		},
		{
			name: "trimmed_numbers_typed",
			in:   [][]any{{" 42 ", nbspace + "3.14", "1 2"}},
			want: [][]any{{int64(42), 3.14, "1 2"}},
		},
		{
			name: "trimmed_overflow_stays_string",
			in:   [][]any{{" 99999999999999999999 "}},
			want: [][]any{{"99999999999999999999"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize{}.Apply(transformer.Table{Rows: tt.in})
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Fatalf("Normalize.Apply() = %#v, want %#v", got.Rows, tt.want)
			}
		})
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := [][]any{{" a "}}
	_ = Normalize{}.Apply(transformer.Table{Rows: in})
	if in[0][0] != " a " {
		t.Fatalf("input modified: %#v", in)
	}
}

func TestDropNullRows(t *testing.T) {
	t.Parallel()

	in := transformer.Table{
		Headers: []string{"a", "b"},
		Rows:    [][]any{{nil, nil}, {"x", nil}, {nil, nil}},
	}
	got := DropNullRows{}.Apply(in)
	if want := [][]any{{"x", nil}}; !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("DropNullRows.Apply() = %#v, want %#v", got.Rows, want)
	}
	if len(in.Rows) != 3 {
		t.Fatalf("input modified")
	}
}
