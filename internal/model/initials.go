package model

import "strings"

// TitleInitials derives the 3-character initialism used in screening and
// ticket keys. Punctuation is stripped, then the first letter of up to the
// first three whitespace-delimited words is taken and upper-cased. Short
// results are padded with 'X' to exactly three characters, so "Up" becomes
// "UXX" and an empty title becomes "XXX".
func TitleInitials(title string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '\t':
			return ' '
		}
		return -1
	}, title)

	var b strings.Builder
	for _, word := range strings.Fields(clean) {
		b.WriteByte(word[0])
		if b.Len() == 3 {
			break
		}
	}
	initials := strings.ToUpper(b.String())
	for len(initials) < 3 {
		initials += "X"
	}
	return initials
}

// stripSpaces removes every whitespace run from a room identifier so that
// "Sala A" contributes "SalaA" to an identifier.
func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
