package retrieval

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, []string{}},
		{"empty input", []string{}, []string{}},
		{"all blank", []string{"", "   ", "\t"}, []string{}},
		{"case and whitespace", []string{"B", "a", " A "}, []string{"a", "b"}},
		{"duplicates collapse", []string{"Nausea", "nausea", " FATIGUE "}, []string{"fatigue", "nausea"}},
		{"already normalized", []string{"fatigue", "nausea"}, []string{"fatigue", "nausea"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeOrderInsensitive(t *testing.T) {
	a := Normalize([]string{"B", "a", " A "})
	b := Normalize([]string{"a", "b"})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("order/case variants must normalize identically: %v vs %v", a, b)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize([]string{"Rash", " fever", "rash"})
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization must be idempotent: %v vs %v", once, twice)
	}
}
