package survey_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpedy/myboxplot/pkg/survey"
)

func TestResolveColor_Palette(t *testing.T) {
	t.Parallel()

	color, err := survey.ResolveColor(survey.Conoscenze, nil)
	require.NoError(t, err)
	assert.Equal(t, survey.Color("#008fd3"), color)

	color, err = survey.ResolveColor(survey.Interesse, map[survey.Category]survey.Color{})
	require.NoError(t, err)
	assert.Equal(t, survey.Color("#6cdedc"), color)
}

func TestResolveColor_PaletteIsDistinct(t *testing.T) {
	t.Parallel()

	seen := make(map[survey.Color]survey.Category)

	for _, c := range survey.Categories() {
		color, err := survey.ResolveColor(c, nil)
		require.NoError(t, err)

		prev, dup := seen[color]
		assert.False(t, dup, "%q and %q share %s", prev, c, color)

		seen[color] = c
	}
}

func TestResolveColor_OverrideWins(t *testing.T) {
	t.Parallel()

	overrides := map[survey.Category]survey.Color{
		survey.Orari:  "#000000",
		"LABORATORIO": "#123456",
	}

	color, err := survey.ResolveColor(survey.Orari, overrides)
	require.NoError(t, err)
	assert.Equal(t, survey.Color("#000000"), color)

	color, err = survey.ResolveColor("LABORATORIO", overrides)
	require.NoError(t, err)
	assert.Equal(t, survey.Color("#123456"), color)

	assert.Len(t, overrides, 2)
}

func TestResolveColor_Unknown(t *testing.T) {
	t.Parallel()

	_, err := survey.ResolveColor("LABORATORIO", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, survey.ErrUnknownCategory)

	var unknownErr *survey.UnknownCategoryError

	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, survey.Category("LABORATORIO"), unknownErr.Category)
	assert.Contains(t, err.Error(), "LABORATORIO")
}
