package dialogue

import (
	"regexp"
	"strconv"
	"strings"
)

// numberWords lists the spoken number words the speech recognizer produces
// for small counts, lowest first so "one or two" resolves to one.
// Quantities beyond ten arrive as digits.
var numberWords = []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

var wordNumbers = func() map[string]int {
	m := make(map[string]int, len(numberWords))
	for i, w := range numberWords {
		m[w] = i + 1
	}
	return m
}()

var digitRun = regexp.MustCompile(`\d+`)

// parseIndex interprets caller input as a menu index: plain digits first,
// then a spoken number word.
func parseIndex(text string) (int, bool) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	if n, ok := wordNumbers[text]; ok {
		return n, true
	}
	return 0, false
}

// ExtractQuantity pulls an order quantity out of free-form speech: a
// number word anywhere in the utterance wins, then the first embedded
// digit run, then a default of one.
func ExtractQuantity(text string) int {
	lower := strings.ToLower(text)

	for i, word := range numberWords {
		if strings.Contains(lower, word) {
			return i + 1
		}
	}

	if m := digitRun.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}

	return 1
}

// isAffirmative recognizes the ways callers accept the welcome prompt.
func isAffirmative(in Input) bool {
	if in.Digits == "1" {
		return true
	}
	speech := strings.ToLower(in.Speech)
	for _, word := range []string{"yes", "menu", "order"} {
		if strings.Contains(speech, word) {
			return true
		}
	}
	return false
}

// isNoInstructions recognizes "no special instructions" answers.
func isNoInstructions(in Input) bool {
	if in.Digits == "1" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(in.Speech)) {
	case "no", "none", "skip":
		return true
	}
	return false
}
