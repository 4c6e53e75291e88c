// Package tokens sizes answers so runs can be checked against the word
// limit in the system prompt and costed before a rerun.
package tokens

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const charsPerToken = 4

// Counter counts units of text.
type Counter interface {
	Count(text string) int
}

// Kind selects a Counter.
type Kind string

const (
	KindEstimate Kind = "estimate"
	KindWords    Kind = "words"
)

// NewCounter returns the Counter for kind.
func NewCounter(kind Kind) (Counter, error) {
	switch kind {
	case KindEstimate:
		return estimatingCounter{}, nil
	case KindWords:
		return wordCounter{}, nil
	default:
		return nil, fmt.Errorf("unknown counter %q", kind)
	}
}

// estimatingCounter approximates token count as ~4 characters per token.
type estimatingCounter struct{}

func (estimatingCounter) Count(text string) int {
	return Estimate(text)
}

// Estimate counts characters rather than bytes, so Σ or ‖x‖ cost one
// character each.
func Estimate(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(charsPerToken)))
}

type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return Words(text)
}

// Words counts whitespace-separated words. Step numbers such as "1." count
// as words.
func Words(text string) int {
	return len(strings.Fields(text))
}
