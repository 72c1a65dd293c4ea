package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codista-cms/pkg/lang"
)

const (
	languageKey           = "language"
	supportedLanguagesKey = "supported_languages"
)

// LanguageSet is the pair of languages the site is published in.
type LanguageSet interface {
	Primary() string
	Languages() []string
	Supports(code string) bool
}

// pathLanguage returns the first segment of path when it names a supported
// language, as in "/de/team/".
func pathLanguage(languages LanguageSet, path string) string {
	segment := strings.TrimPrefix(path, "/")
	if idx := strings.Index(segment, "/"); idx >= 0 {
		segment = segment[:idx]
	}
	if segment == "" {
		return ""
	}

	normalized, err := lang.Normalize(segment)
	if err != nil || !languages.Supports(normalized) {
		return ""
	}
	return normalized
}

func resolveLanguage(languages LanguageSet, path, explicit, acceptHeader string) string {
	if code := pathLanguage(languages, path); code != "" {
		return code
	}

	if base, err := lang.Base(explicit); err == nil && languages.Supports(base) {
		return base
	}

	return lang.Match(acceptHeader, languages.Languages(), languages.Primary())
}

// LanguageNegotiationMiddleware resolves the language of the request. A
// supported language prefix in the URL wins, then an explicit "lang" query
// parameter, then the Accept-Language header. The primary language is the
// fallback. The result is stored in the request context under "language".
func LanguageNegotiationMiddleware(languages LanguageSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		language := resolveLanguage(languages, c.Request.URL.Path, c.Query("lang"), c.GetHeader("Accept-Language"))

		c.Set(languageKey, language)
		c.Set(supportedLanguagesKey, languages.Languages())
		c.Writer.Header().Set("Content-Language", language)

		c.Next()
	}
}

// Language returns the language negotiated for the request.
func Language(c *gin.Context) string {
	return c.GetString(languageKey)
}
