package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DecodeGreek turns statement bytes into UTF-8 text. Raw ISO-8859-7 bytes are
// decoded directly; UTF-8 text that is really ISO-8859-7 read as Latin-1
// ("ÐÏÓÏ" for "ΠΟΣΟ") is remapped.
func DecodeGreek(b []byte) string {
	if !utf8.Valid(b) {
		out, err := charmap.ISO8859_7.NewDecoder().Bytes(b)
		if err != nil {
			return string(b)
		}
		return string(out)
	}
	return RemapLatinGreek(string(b))
}

// RemapLatinGreek fixes Greek text that was decoded as Latin-1.
// Text already containing Greek letters is returned unchanged.
func RemapLatinGreek(s string) string {
	if !looksMisdecoded(s) {
		return s
	}
	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	out, err := charmap.ISO8859_7.NewDecoder().String(raw)
	if err != nil {
		return s
	}
	return out
}

func looksMisdecoded(s string) bool {
	latin := false
	for _, r := range s {
		if unicode.Is(unicode.Greek, r) {
			return false
		}
		if r >= 0xC0 && r <= 0xFE {
			latin = true
		}
	}
	return latin
}

// FoldHeader lowercases s and strips diacritics so "Ποσό" matches "ποσο".
func FoldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
