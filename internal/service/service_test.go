package service

import (
	"reflect"
	"testing"
)

func TestCleanSeeds(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{" a ", "", "b", "a", "\t"}, []string{"a", "b"}},
		{[]string{"", "  "}, []string{}},
		{nil, []string{}},
		{[]string{"Graph Theory", "graph  theory", "graph/theory", "graphs"}, []string{"Graph Theory", "graphs"}},
	}
	for _, tt := range tests {
		if got := CleanSeeds(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CleanSeeds(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
