package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenizeBoundaries(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"helloWorld", []string{"hello", "world"}},
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"kebab-case-name", []string{"kebab", "case", "name"}},
		{"HTTPServerConfig", []string{"http", "server", "config"}},
		{"a bb ccc", []string{"bb", "ccc"}},
		{"", nil},
		{"x!!y", nil},
	}
	for _, c := range cases {
		got := Tokenize(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
