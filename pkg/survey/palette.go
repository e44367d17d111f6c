package survey

import (
	"errors"
	"fmt"
)

// Color is a CSS hex colour such as "#008fd3".
type Color string

// ErrUnknownCategory is matched by UnknownCategoryError.
var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError reports a category that has neither an override nor
// a palette entry.
type UnknownCategoryError struct {
	Category Category
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: %q has no palette colour and no override", ErrUnknownCategory, string(e.Category))
}

// Is makes errors.Is(err, ErrUnknownCategory) hold.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// PaletteColor returns the fixed colour of a canonical category.
func PaletteColor(c Category) (Color, bool) {
	e, ok := byCategory[c]
	if !ok {
		return "", false
	}

	return e.color, true
}

// ResolveColor returns the colour for a category, preferring an explicit
// entry in overrides over the fixed palette. overrides is only read.
func ResolveColor(c Category, overrides map[Category]Color) (Color, error) {
	if color, ok := overrides[c]; ok {
		return color, nil
	}

	if color, ok := PaletteColor(c); ok {
		return color, nil
	}

	return "", &UnknownCategoryError{Category: c}
}
