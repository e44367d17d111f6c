package survey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpedy/myboxplot/pkg/survey"
)

const expectedCategoryCount = 12

func TestCategories_OrderAndCount(t *testing.T) {
	t.Parallel()

	cats := survey.Categories()
	require.Len(t, cats, expectedCategoryCount)
	assert.Equal(t, survey.Conoscenze, cats[0])
	assert.Equal(t, survey.Interesse, cats[len(cats)-1])
}

func TestToDisplay_KnownLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category survey.Category
		display  string
	}{
		{survey.Conoscenze, "CONOSCENZE"},
		{survey.ModEsame, "MODALITA' ESAME"},
		{survey.DocStimola, "DOCENTE STIMOLA"},
		{survey.DocEspone, "DOCENTE ESPONE"},
		{survey.AttIntegrative, "ATTIVITA' INTEGRATIVE"},
		{survey.DocReperibile, "DOCENTE REPERIBILE"},
		{survey.Orari, "ORARI"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.display, survey.ToDisplay(tt.category))
			assert.Equal(t, tt.category, survey.ToCanonical(tt.display))
		})
	}
}

func TestLabels_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range survey.Categories() {
		assert.Equal(t, c, survey.ToCanonical(survey.ToDisplay(c)), "canonical %q", c)

		display := survey.ToDisplay(c)
		assert.Equal(t, display, survey.ToDisplay(survey.ToCanonical(display)), "display %q", display)
	}
}

func TestLabels_UnknownIsIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LABORATORIO", survey.ToDisplay("LABORATORIO"))
	assert.Equal(t, survey.Category("Custom area"), survey.ToCanonical("Custom area"))
	assert.Equal(t, survey.Category(""), survey.ToCanonical(""))
	assert.False(t, survey.IsKnown("LABORATORIO"))
	assert.True(t, survey.IsKnown(survey.Coerenza))
}

func TestDescription(t *testing.T) {
	t.Parallel()

	for _, c := range survey.Categories() {
		desc, ok := survey.Description(c)
		assert.True(t, ok, "category %q", c)
		assert.NotEmpty(t, desc)
	}

	desc, ok := survey.DescriptionForDisplay("DOCENTE ESPONE")
	require.True(t, ok)
	assert.Equal(t, "Il docente espone gli argomenti in modo chiaro?", desc)

	_, ok = survey.Description("LABORATORIO")
	assert.False(t, ok)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog := survey.Catalog()
	require.Len(t, catalog, len(survey.Categories()))

	for i, info := range catalog {
		assert.Equal(t, survey.Categories()[i], info.Category)
		assert.Equal(t, survey.ToDisplay(info.Category), info.Display)

		color, ok := survey.PaletteColor(info.Category)
		require.True(t, ok)
		assert.Equal(t, color, info.Color)
	}

	assert.Equal(t, "MODALITA' ESAME", catalog[3].Display)
}
