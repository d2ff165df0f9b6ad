// Package isbn validates ISBN-10 and ISBN-13 check digits.
package isbn

import "strings"

// IsValid reports whether raw holds a valid ISBN-10 or ISBN-13 once
// separators and other decoration are stripped. It never panics.
func IsValid(raw string) bool {
	return Normalize(raw) != ""
}

// Normalize returns the canonical form of raw (digits only, with an
// uppercase X check character for ISBN-10) or "" when raw is not valid.
func Normalize(raw string) string {
	cleaned := clean(raw)
	switch len(cleaned) {
	case 10:
		if validISBN10(cleaned) {
			return cleaned
		}
	case 13:
		if validISBN13(cleaned) {
			return cleaned
		}
	}
	return ""
}

// clean keeps ASCII digits. A trailing x/X is kept as the ISBN-10 check
// character; an X anywhere else is dropped like any other character.
func clean(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case (c == 'X' || c == 'x') && i == len(raw)-1 && b.Len() == 9:
			b.WriteByte('X')
		}
	}
	return b.String()
}

// validISBN10 weights positions 10 down to 1; the sum must divide by 11.
func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		var d int
		switch {
		case s[i] >= '0' && s[i] <= '9':
			d = int(s[i] - '0')
		case s[i] == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 alternates weights 1 and 3 starting at position 0; the sum
// must divide by 10.
func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		d := int(s[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return sum%10 == 0
}
