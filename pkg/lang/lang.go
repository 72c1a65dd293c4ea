package lang

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

var errEmptyCode = errors.New("language code cannot be empty")

// Metadata is the static per-language display information rendered next to a
// language switcher entry.
type Metadata struct {
	DisplayName string `json:"display_name"`
	FlagCode    string `json:"flag_code"`
	// ISO15897 uses de_DE for German because Facebook does not recognise de_AT
	// in OpenGraph locale tags.
	ISO15897 string `json:"iso15897"`
}

// I18NMetadata maps every supported language code to its display metadata.
var I18NMetadata = map[string]Metadata{
	"de": {DisplayName: "Deutsch", FlagCode: "at", ISO15897: "de_DE"},
	"en": {DisplayName: "English", FlagCode: "gb", ISO15897: "en_US"},
}

// Lookup returns the metadata registered for code.
func Lookup(code string) (Metadata, bool) {
	meta, ok := I18NMetadata[strings.ToLower(strings.TrimSpace(code))]
	return meta, ok
}

// Codes returns the registered language codes in alphabetical order.
func Codes() []string {
	codes := make([]string, 0, len(I18NMetadata))
	for code := range I18NMetadata {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Normalize validates the provided language code and returns it in a
// canonicalised form (lowercase language, uppercase region). Supported formats
// follow the common `ll` or `ll-RR` pattern.
func Normalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", errEmptyCode
	}

	parts := strings.Split(strings.ReplaceAll(trimmed, "_", "-"), "-")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid language code %q", code)
	}

	lang := strings.ToLower(parts[0])
	if len(lang) < 2 || len(lang) > 8 || !isLetters(lang) {
		return "", fmt.Errorf("invalid language code %q", code)
	}

	if len(parts) == 1 {
		return lang, nil
	}

	region := parts[1]
	if len(region) < 2 || len(region) > 3 || !isLetters(region) {
		return "", fmt.Errorf("invalid language region in %q", code)
	}

	return lang + "-" + strings.ToUpper(region), nil
}

// Base normalises code and drops its region, so "en_GB" becomes "en".
func Base(code string) (string, error) {
	normalized, err := Normalize(code)
	if err != nil {
		return "", err
	}
	if idx := strings.Index(normalized, "-"); idx >= 0 {
		normalized = normalized[:idx]
	}
	return normalized, nil
}

func isLetters(value string) bool {
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Match picks the best entry of supported for the given Accept-Language
// header. It returns fallback when nothing in the header matches.
func Match(acceptHeader string, supported []string, fallback string) string {
	if len(supported) == 0 {
		return fallback
	}

	tags := make([]language.Tag, 0, len(supported))
	codes := make([]string, 0, len(supported))
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		codes = append(codes, code)
	}
	if len(tags) == 0 {
		return fallback
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptHeader)
	if err != nil || len(prefs) == 0 {
		return fallback
	}

	_, index, confidence := language.NewMatcher(tags).Match(prefs...)
	if confidence == language.No || index < 0 || index >= len(codes) {
		return fallback
	}
	return codes[index]
}
