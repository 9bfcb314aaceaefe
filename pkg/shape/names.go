package shape

import "strings"

// SnakeCase lower-cases ASCII letters and inserts '_' before every uppercase
// letter except at position 0, mapping any other non-alphanumeric rune to
// '_'. Runs of '_' are never collapsed: the naive encoding is intentionally
// lossy, so that two different original keys can still land on the same
// emitted identifier and be disambiguated by signature-based dedup instead.
//
// Note this inserts a separator before every uppercase letter, not just at
// a lowercase->uppercase transition, so "HTTPServer" becomes
// "h_t_t_p_server" rather than "http_server".
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range []rune(s) {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		case isAlphaNumASCII(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// UpperCamel splits s on runs of non-alphanumeric characters and joins the
// upper-cased-first, lower-cased-rest form of each non-empty piece.
func UpperCamel(s string) string {
	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start < 0 || start == end {
			return
		}
		piece := s[start:end]
		b.WriteString(capitalizeASCII(piece))
		start = -1
	}
	for i, r := range s {
		if isAlphaNumASCII(r) {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(s))
	return b.String()
}

// Capitalize upper-cases the first rune of s and appends the rest verbatim.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	return string(runes)
}

func isAlphaNumASCII(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// capitalizeASCII lower-cases every rune of piece except the first, which is
// upper-cased. Used only by UpperCamel, which has already verified piece is
// non-empty and alphanumeric.
func capitalizeASCII(piece string) string {
	var b strings.Builder
	b.Grow(len(piece))
	for i, r := range piece {
		if i == 0 {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
		} else if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
