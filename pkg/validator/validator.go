package validator

import (
	"bytes"
	"mime"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"codista-cms/pkg/lang"
)

var (
	once      sync.Once
	validate  *validator.Validate
	sanitizer *bluemonday.Policy

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Init sets up the shared validator and registers the custom tags on gin's
// binding engine as well. It is safe to call more than once.
func Init() {
	once.Do(func() {
		validate = validator.New()
		sanitizer = bluemonday.UGCPolicy()

		registerCustomValidations(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidations(engine)
		}
	})
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("slug", validateSlug)
	v.RegisterValidation("no_html", validateNoHTML)
	v.RegisterValidation("language", validateLanguage)
}

func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// SanitizeHTML strips markup that is not allowed in user generated rich text.
func SanitizeHTML(html string) string {
	Init()
	return sanitizer.Sanitize(html)
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

func validateLanguage(fl validator.FieldLevel) bool {
	_, ok := lang.Lookup(fl.Field().String())
	return ok
}

// ValidateContentType validates that the provided MIME type is in the allowed list
func ValidateContentType(contentType string, allowedMimeTypes []string) bool {
	if contentType == "" || len(allowedMimeTypes) == 0 {
		return false
	}

	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	for _, allowed := range allowedMimeTypes {
		allowed = strings.ToLower(strings.TrimSpace(allowed))

		if mimeType == allowed {
			return true
		}

		// "image/*" matches "image/png"
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "/*")
			if strings.HasPrefix(mimeType, prefix+"/") {
				return true
			}
		}
	}

	return false
}

// DetectImageType returns the MIME type of an image from its leading bytes,
// or an empty string for anything that is not a known image format.
func DetectImageType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x47, 0x49, 0x46, 0x38}):
		return "image/gif"
	case bytes.HasPrefix(data, []byte{0x52, 0x49, 0x46, 0x46}) && len(data) > 12 &&
		bytes.HasPrefix(data[8:], []byte{0x57, 0x45, 0x42, 0x50}):
		return "image/webp"
	}
	return ""
}

// ValidateImageContentType validates image MIME types
func ValidateImageContentType(contentType string) bool {
	allowedMimeTypes := []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	}
	return ValidateContentType(contentType, allowedMimeTypes)
}
