package translation

import (
	"errors"
	"fmt"

	"codista-cms/internal/models"
)

// Validate resolves both variants of every page at or below the language
// homes and returns all structural problems found, joined. Shallower pages
// are skipped.
func (r *Resolver) Validate(pages []models.Page) error {
	scope := r.Scope(r.primary)

	var problems []error
	for i := range pages {
		page := &pages[i]
		if page.Depth < LanguageHomeDepth {
			continue
		}

		if _, err := scope.Language(page); err != nil {
			problems = append(problems, fmt.Errorf("page %d (%s): %w", page.ID, page.URLPath, err))
			continue
		}
		if _, err := scope.SecondaryVariant(page); err != nil {
			problems = append(problems, fmt.Errorf("page %d (%s): %w", page.ID, page.URLPath, err))
		}
	}

	return errors.Join(problems...)
}
