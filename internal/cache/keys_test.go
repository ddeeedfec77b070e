package cache

import (
	"strings"
	"testing"
)

func TestCombinedKeyDeterministic(t *testing.T) {
	a := CombinedKey([]string{"fatigue", "nausea"})
	b := CombinedKey([]string{"fatigue", "nausea"})
	if a != b {
		t.Fatalf("identical sets produced different keys: %q vs %q", a, b)
	}

	if !strings.HasPrefix(a, "rag:both:") || !strings.HasSuffix(a, ":v2") {
		t.Fatalf("unexpected key shape: %q", a)
	}

	c := CombinedKey([]string{"nausea"})
	if a == c {
		t.Fatalf("different sets must produce different keys")
	}
}

func TestPerSymptomKeyShape(t *testing.T) {
	k := PerSymptomKey("nausea")
	if !strings.HasPrefix(k, "rag:per:both:") || !strings.HasSuffix(k, ":v2") {
		t.Fatalf("unexpected key shape: %q", k)
	}
	if k == PerSymptomKey("fatigue") {
		t.Fatalf("different symptoms must produce different keys")
	}
}

func TestParseKey(t *testing.T) {
	parts, ok := parseKey(CombinedKey([]string{"rash"}))
	if !ok {
		t.Fatalf("combined key did not parse")
	}
	if parts.tier != "combined" || parts.corpusTag != "both" || parts.version != "v2" {
		t.Fatalf("unexpected parts: %+v", parts)
	}

	parts, ok = parseKey(PerSymptomKey("rash"))
	if !ok {
		t.Fatalf("per-symptom key did not parse")
	}
	if parts.tier != "per_symptom" {
		t.Fatalf("unexpected tier: %q", parts.tier)
	}

	if _, ok := parseKey("unrelated:key"); ok {
		t.Fatalf("foreign key must not parse")
	}
}
