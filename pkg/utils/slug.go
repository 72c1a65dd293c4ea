package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile("[^a-z0-9]+")

// GenerateSlug turns a title into a URL slug. German umlauts are spelled out
// ("Max Böck" becomes "max-boeck") before the remaining diacritics are
// stripped.
func GenerateSlug(text string) string {
	text = transliterate(text)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	text, _, _ = transform.String(t, text)

	text = strings.ToLower(text)
	text = nonSlugChars.ReplaceAllString(text, "-")

	return strings.Trim(text, "-")
}

func transliterate(text string) string {
	translitMap := map[rune]string{
		'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
		'Ä': "Ae", 'Ö': "Oe", 'Ü': "Ue",
		'&': " und ",
	}

	var result strings.Builder
	for _, char := range text {
		if replacement, ok := translitMap[char]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(char)
		}
	}

	return result.String()
}
