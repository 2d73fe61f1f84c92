package dialogue

import "testing"

func TestParseIndex(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"3", 3, true},
		{"two", 2, true},
		{"TEN", 10, true},
		{"pizza", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIndex(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseIndex(%q) = (%d, %v), want (%d, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"two please", 2},
		{"I'd like three of those", 3},
		{"give me 4", 4},
		{"just the one", 1},
		{"I'd like some", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := ExtractQuantity(tt.text); got != tt.want {
			t.Errorf("ExtractQuantity(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestIsAffirmative(t *testing.T) {
	yes := []Input{
		{Digits: "1"},
		{Speech: "yes please"},
		{Speech: "I'd like to hear the menu"},
		{Speech: "I want to order"},
	}
	for _, in := range yes {
		if !isAffirmative(in) {
			t.Errorf("expected affirmative for %+v", in)
		}
	}

	no := []Input{
		{Digits: "2"},
		{Speech: "goodbye"},
		{},
	}
	for _, in := range no {
		if isAffirmative(in) {
			t.Errorf("expected non-affirmative for %+v", in)
		}
	}
}

func TestIsNoInstructions(t *testing.T) {
	skip := []Input{
		{Digits: "1"},
		{Speech: "no"},
		{Speech: "none"},
		{Speech: " Skip "},
	}
	for _, in := range skip {
		if !isNoInstructions(in) {
			t.Errorf("expected skip for %+v", in)
		}
	}

	// Longer utterances are real instructions, even ones containing a
	// skip token.
	keep := []Input{
		{Speech: "extra cheese"},
		{Speech: "skip the onions"},
	}
	for _, in := range keep {
		if isNoInstructions(in) {
			t.Errorf("expected instructions to be kept for %+v", in)
		}
	}
}
