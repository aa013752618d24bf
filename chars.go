package linecsv

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// NullCharacter disables the quote or escape character when used in their place.
	NullCharacter rune = 0

	DefaultSeparator rune = ','
	DefaultQuote     rune = '"'
	DefaultEscape    rune = '\\'
)

// ParseRune converts a configuration value into a special character. Besides a single character it accepts
// "tab", "space" and "none" (or an empty string) for NullCharacter.
func ParseRune(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "none", "null":
		return NullCharacter, nil
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return NullCharacter, fmt.Errorf("linecsv: %q is not a single character", s)
	}
	return r, nil
}

// sameCharacter reports whether two special characters collide. Two NullCharacter values never collide.
func sameCharacter(a, b rune) bool {
	return a != NullCharacter && a == b
}

func anyCharactersAreTheSame(separator, quote, escape rune) bool {
	return sameCharacter(separator, quote) || sameCharacter(separator, escape) || sameCharacter(quote, escape)
}

func isWhitespace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// runeAt decodes the rune starting at byte offset i. ok is false past the end of s.
func runeAt(s string, i int) (r rune, size int, ok bool) {
	if i < 0 || i >= len(s) {
		return 0, 0, false
	}
	r, size = utf8.DecodeRuneInString(s[i:])
	return r, size, true
}

// runeBefore decodes the rune ending at byte offset i.
func runeBefore(s string, i int) (rune, bool) {
	if i <= 0 || i > len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r, true
}

// indexRuneFrom returns the absolute byte offset of the first r at or after from, or -1.
func indexRuneFrom(s string, r rune, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.IndexRune(s[from:], r)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// lastRunes returns at most n trailing runes of s.
func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == n {
			return s[i:]
		}
	}
	return s
}
