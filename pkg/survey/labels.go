// Package survey holds the fixed vocabulary of the course evaluation
// questionnaire: the twelve evaluation categories, their display labels,
// the question text behind each one and the colour assigned to it.
package survey

// Category is the canonical (internal) name of an evaluation category as it
// appears in the source data.
type Category string

// Canonical evaluation categories, in questionnaire order.
const (
	Conoscenze         Category = "CONOSCENZE"
	CaricoDiStudio     Category = "CARICO DI STUDIO"
	MaterialeDidattico Category = "MATERIALE DIDATTICO"
	ModEsame           Category = "MOD ESAME"
	Soddisfazione      Category = "SODDISFAZIONE"
	Orari              Category = "ORARI"
	DocStimola         Category = "DOC STIMOLA"
	DocEspone          Category = "DOC ESPONE"
	AttIntegrative     Category = "ATT. INTEGRATIVE"
	Coerenza           Category = "COERENZA"
	DocReperibile      Category = "DOC REPERIBILE"
	Interesse          Category = "INTERESSE"
)

// entry is one row of the category table.
type entry struct {
	category    Category
	display     string
	description string
	color       Color
}

// table is the single source for labels, descriptions and palette.
var table = [...]entry{
	{
		Conoscenze, "CONOSCENZE",
		"Le conoscenze preliminari possedute sono risultate sufficienti per la comprensione " +
			"degli argomenti previsti nel programma d'esame?",
		"#008fd3",
	},
	{
		CaricoDiStudio, "CARICO DI STUDIO",
		"Il carico di studio dell'insegnamento è proporzionato ai crediti assegnati?",
		"#99d101",
	},
	{
		MaterialeDidattico, "MATERIALE DIDATTICO",
		"Il materiale didattico (indicato e disponibile) è adeguato per lo studio della materia?",
		"#f39b02",
	},
	{
		ModEsame, "MODALITA' ESAME",
		"Le modalità di esame sono state definite in modo chiaro?",
		"#9fcfec",
	},
	{
		Soddisfazione, "SODDISFAZIONE",
		"E' complessivamente soddisfattə di com'è stato svolto questo insegnamento?",
		"#4ba707",
	},
	{
		Orari, "ORARI",
		"Sono rispettati gli orari di svolgimento di lezioni, esercitazioni e altre attività didattiche?",
		"#f6d133",
	},
	{
		DocStimola, "DOCENTE STIMOLA",
		"Il docente stimola / motiva l'interesse verso la disciplina?",
		"#cb4d2c",
	},
	{
		DocEspone, "DOCENTE ESPONE",
		"Il docente espone gli argomenti in modo chiaro?",
		"#cac7ba",
	},
	{
		AttIntegrative, "ATTIVITA' INTEGRATIVE",
		"Le attività didattiche integrative (esercitazioni, tutorati, laboratori ...) sono utili " +
			"all'apprendimento della materia?",
		"#0d869c",
	},
	{
		Coerenza, "COERENZA",
		"L'insegnamento è stato svolto in modo coerente con quanto dichiarato sul sito Web del corso di studio?",
		"#cdd72e",
	},
	{
		DocReperibile, "DOCENTE REPERIBILE",
		"Il docente è reperibile per chiarimenti e spiegazioni?",
		"#247230",
	},
	{
		Interesse, "INTERESSE",
		"E' interessatə agli argomenti trattati nell'insegnamento?",
		"#6cdedc",
	},
}

var (
	byCategory = make(map[Category]*entry, len(table))
	byDisplay  = make(map[string]*entry, len(table))
)

func init() {
	for i := range table {
		e := &table[i]
		byCategory[e.category] = e
		byDisplay[e.display] = e
	}
}

// Categories returns the canonical categories in questionnaire order.
func Categories() []Category {
	result := make([]Category, len(table))

	for i := range table {
		result[i] = table[i].category
	}

	return result
}

// IsKnown reports whether c is one of the canonical categories.
func IsKnown(c Category) bool {
	_, ok := byCategory[c]

	return ok
}

// ToDisplay returns the display label for a canonical category.
// Unknown categories are returned unchanged.
func ToDisplay(c Category) string {
	if e, ok := byCategory[c]; ok {
		return e.display
	}

	return string(c)
}

// ToCanonical returns the canonical category for a display label.
// Unknown labels are returned unchanged.
func ToCanonical(display string) Category {
	if e, ok := byDisplay[display]; ok {
		return e.category
	}

	return Category(display)
}

// Description returns the questionnaire question behind a canonical category.
func Description(c Category) (string, bool) {
	e, ok := byCategory[c]
	if !ok {
		return "", false
	}

	return e.description, true
}

// DescriptionForDisplay returns the questionnaire question behind a display label.
func DescriptionForDisplay(display string) (string, bool) {
	return Description(ToCanonical(display))
}

// Info describes one category for listings.
type Info struct {
	Category    Category `json:"category"    yaml:"category"`
	Display     string   `json:"display"     yaml:"display"`
	Description string   `json:"description" yaml:"description"`
	Color       Color    `json:"color"       yaml:"color"`
}

// Catalog returns every category in questionnaire order.
func Catalog() []Info {
	result := make([]Info, len(table))

	for i, e := range table {
		result[i] = Info{Category: e.category, Display: e.display, Description: e.description, Color: e.color}
	}

	return result
}
