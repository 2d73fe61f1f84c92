package phone

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := Normalizer{}

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "+919876543210", true},
		{"919876543210", "+919876543210", true},
		{"+91 98765 43210", "+919876543210", true},
		{"98765-43210", "+919876543210", true},
		{"14155551234", "+14155551234", true},
		{"+1 (415) 555-1234", "+14155551234", true},
		// Garbage with too many digits falls back to the last ten.
		{"0098765432109", "+918765432109", true},
		{"0009876543210", "+919876543210", true},
		{"call me", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := n.Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeCustomCountryCode(t *testing.T) {
	n := Normalizer{CountryCode: "44"}

	got, ok := n.Normalize("7911123456")
	if !ok || got != "+447911123456" {
		t.Fatalf("Normalize = %q, %v; want +447911123456, true", got, ok)
	}
}

func TestLocal10(t *testing.T) {
	if got := Local10("+919876543210"); got != "9876543210" {
		t.Errorf("Local10 = %q; want 9876543210", got)
	}
	if got := Local10("12345"); got != "12345" {
		t.Errorf("Local10 short = %q; want 12345", got)
	}
}

func TestVariations(t *testing.T) {
	n := Normalizer{}

	got := n.Variations("919876543210")
	want := []string{"+919876543210", "9876543210", "+1919876543210"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Variations = %v; want %v", got, want)
	}

	got = n.Variations("9876543210")
	want = []string{"+9876543210", "9876543210", "+919876543210", "+19876543210"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Variations bare = %v; want %v", got, want)
	}

	if n.Variations("nope") != nil {
		t.Errorf("Variations on digitless input should be nil")
	}
}
