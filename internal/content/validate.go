package content

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minTextLength     = 10
	signatureWindow   = 100
	minPrintableRatio = 0.7
)

// binarySignatures are file-format magic numbers that mark a payload as binary.
// Both the raw byte form and the Latin-1 decoded form are listed, since exports
// may arrive either way.
var binarySignatures = []string{
	"%PDF",
	"PK\x03\x04",
	"\x89PNG",
	"GIF8",
	"JFIF",
	"BM\x00\x00",
	"\xFF\xD8\xFF",
	"\u0089PNG",
	"ÿØÿ",
}

// IsValid reports whether text looks like human-readable content rather than
// an empty, binary or garbled payload.
func IsValid(text string) bool {
	total := utf8.RuneCountInString(text)
	if total < minTextLength {
		return false
	}

	head := runePrefix(text, signatureWindow)
	for _, sig := range binarySignatures {
		if strings.Contains(head, sig) {
			return false
		}
	}

	return printableRatio(text, total) >= minPrintableRatio
}

// printableRatio counts printable ASCII and whitespace runes. Invalid UTF-8
// bytes decode as utf8.RuneError and count as non-printable.
func printableRatio(text string, total int) float64 {
	printable := 0
	for _, r := range text {
		if (r >= 0x20 && r <= 0x7E) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// runePrefix returns the first n runes of s, treating invalid bytes as one rune each.
func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
