// Package heuristic holds the pure text predicates used to recognize invoice
// sections in loosely structured exports. Nothing here keeps state.
package heuristic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text, strips diacritics and collapses whitespace
func Fold(text string) string {
	return strings.ToLower(CollapseSpaces(stripAccents(text)))
}

// CollapseSpaces trims text and replaces every whitespace run with one space
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Canonicalize maps a column label to camel case: "Fecha Emisión" becomes
// "fechaEmision" and "RUT-Emisor" becomes "rutEmisor". Each word is case
// folded, so "TipoDTE" becomes "tipodte".
func Canonicalize(label string) string {
	words := strings.FieldsFunc(stripAccents(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			r := []rune(w)
			r[0] = unicode.ToUpper(r[0])
			w = string(r)
		}
		b.WriteString(w)
	}
	return b.String()
}

// Key is the case-insensitive form of Canonicalize used for synonym lookups
func Key(label string) string {
	return strings.ToLower(Canonicalize(label))
}

func stripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
