package boxplot

import (
	"errors"
	"fmt"

	"github.com/mpedy/myboxplot/pkg/survey"
)

// ErrInsufficientData is matched by InsufficientDataError.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError reports a category that has values in the unfiltered
// view but none left after a privacy filter.
type InsufficientDataError struct {
	Category survey.Category
	View     View
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: category %q has no values in the %s view", ErrInsufficientData, string(e.Category), e.View)
}

// Is makes errors.Is(err, ErrInsufficientData) hold.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
