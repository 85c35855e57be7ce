package batch

import (
	"reflect"
	"testing"
)

func TestParseCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  []string
	}{
		{"  abc , def\nghi  ", []string{"ABC", "DEF", "GHI"}},
		{"one,two,three", []string{"ONE", "TWO", "THREE"}},
		{"single", []string{"SINGLE"}},
		{"a\n\nb,,c  ,\n", []string{"A", "B", "C"}},
		{"", nil},
		{" , \n ", nil},
	}
	for _, tc := range cases {
		got := ParseCodes(tc.input)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseCodes(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
