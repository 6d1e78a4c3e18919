package service

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseLegacyAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want LegacyAnswer
	}{
		{
			name: "empty",
			in:   "",
			want: LegacyAnswer{},
		},
		{
			name: "full answer",
			in:   "Answer here\nSQL:\nSELECT 1\n\nDATA\na | b\n1 | 2\n3 | 4",
			want: LegacyAnswer{
				AnswerText: "Answer here",
				SQL:        "SELECT 1",
				Columns:    []string{"a", "b"},
				Rows:       [][]string{{"1", "2"}, {"3", "4"}},
			},
		},
		{
			name: "sql without data",
			in:   "  Total revenue is 10.\nSQL:\n  SELECT sum(x) FROM t;  \n",
			want: LegacyAnswer{
				AnswerText: "Total revenue is 10.",
				SQL:        "SELECT sum(x) FROM t;",
			},
		},
		{
			name: "data caption and stray lines",
			in:   "Top customers\nSQL: SELECT name, total FROM c\n\nDATA (top 2):\n\nname | total\n--- \nacme | 10\nnot a row\n  globex  |  7  \n",
			want: LegacyAnswer{
				AnswerText: "Top customers",
				SQL:        "SELECT name, total FROM c",
				Columns:    []string{"name", "total"},
				Rows:       [][]string{{"acme", "10"}, {"globex", "7"}},
			},
		},
		{
			name: "data block without header",
			in:   "x\nSQL:\nSELECT 1\n\nDATA\nnothing tabular here",
			want: LegacyAnswer{
				AnswerText: "x",
				SQL:        "SELECT 1",
			},
		},
		{
			name: "header only",
			in:   "SQL:\nSELECT a, b FROM t\n\nDATA\na | b",
			want: LegacyAnswer{
				SQL:     "SELECT a, b FROM t",
				Columns: []string{"a", "b"},
			},
		},
		{
			name: "ragged rows kept as parsed",
			in:   "SQL:\nq\n\nDATA\na | b | c\n1 | 2",
			want: LegacyAnswer{
				SQL:     "q",
				Columns: []string{"a", "b", "c"},
				Rows:    [][]string{{"1", "2"}},
			},
		},
		{
			name: "data marker before sql",
			in:   "intro\n\nDATA\na | b\nSQL:\nSELECT 2",
			want: LegacyAnswer{
				AnswerText: "intro\n\nDATA\na | b",
				SQL:        "SELECT 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLegacyAnswer(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLegacyAnswer(%q)\n got  %#v\n want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLegacyAnswerWithoutSQLMarker(t *testing.T) {
	inputs := []string{
		"hi",
		"  padded answer \n",
		"a | b\n1 | 2",
		"\n\nDATA\na | b\n1 | 2",
		"sql: lowercase does not count",
	}
	for _, in := range inputs {
		got := ParseLegacyAnswer(in)
		want := LegacyAnswer{AnswerText: strings.TrimSpace(in)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ParseLegacyAnswer(%q) = %#v, want %#v", in, got, want)
		}
	}
}
