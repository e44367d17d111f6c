package plotpage

import (
	"strconv"

	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// Page texts.
const (
	DefaultTitle        = "Valutazione della didattica"
	EvaluatedCoursesKey = "NUMERO DI INSEGNAMENTI VALUTATI"
	hintTitle           = "Domande del questionario"
)

// PageOptions configures NewSurveyPage.
type PageOptions struct {
	Title          string
	Theme          Theme
	ShowLogo       bool
	LogoSize       int
	ThresholdLines []ThresholdLine
}

// ViewLabel returns the tab label of a view.
func ViewLabel(v boxplot.View) string {
	switch v {
	case boxplot.ViewAll:
		return "Tutti gli insegnamenti"
	case boxplot.ViewDept:
		return "Dipartimento"
	case boxplot.ViewProgram:
		return "Corso di studio"
	default:
		return v.String()
	}
}

// NewSurveyPage builds the survey page: header figures, then one tab per
// view with its chart and a summary table.
func NewSurveyPage(views boxplot.ViewSet, counts dataset.RespondentCounts, options PageOptions) *Page {
	title := options.Title
	if title == "" {
		title = DefaultTitle
	}

	page := NewPage(title, "")
	page.Theme = options.Theme
	page.ShowLogo = options.ShowLogo
	page.LogoSize = options.LogoSize
	page.Stats = []Stat{
		{Label: EvaluatedCoursesKey, Value: strconv.Itoa(counts.TotalRespondents)},
		{Label: "Questionari compilati", Value: strconv.Itoa(counts.CompletedQuestionnaires)},
		{Label: "Questionari in bianco", Value: strconv.Itoa(counts.BlankQuestionnaires)},
	}

	cOpts := NewChartOpts(options.Theme)
	items := make([]TabItem, 0, len(boxplot.Views()))

	for _, v := range boxplot.Views() {
		summaries := views.View(v)
		items = append(items, TabItem{
			ID:    "view-" + v.String(),
			Label: ViewLabel(v),
			Content: Stack{
				WrapChart(BuildBoxPlotChart(cOpts, summaries, options.ThresholdLines)),
				SummaryTable(summaries),
			},
		})
	}

	page.Add(Section{
		Title:    "Distribuzione dei punteggi per categoria",
		Subtitle: "Punteggi in percentuale. I baffi terminano ai limiti 1,5 IQR ristretti a 0-100.",
		Hint:     QuestionHint(views.All),
		Chart:    NewTabs("views", items...),
	})

	return page
}

// SummaryTable tabulates the figures behind each box.
func SummaryTable(summaries []boxplot.Summary) *Table {
	table := NewTable("Categoria", "N", "Min", "Q1", "Mediana", "Media", "Q3", "Max", "Outlier")

	for _, s := range summaries {
		table.AddRow(string(s.Identity.Color),
			s.DisplayLabel,
			strconv.Itoa(s.Count()),
			FormatPercent(s.Min),
			FormatPercent(s.Q1),
			FormatPercent(s.Median),
			FormatPercent(s.Mean),
			FormatPercent(s.Q3),
			FormatPercent(s.Max),
			strconv.Itoa(s.OutlierCount()),
		)
	}

	return table
}

// QuestionHint lists the questionnaire question of every known category.
func QuestionHint(summaries []boxplot.Summary) Hint {
	hint := Hint{Title: hintTitle}

	for _, s := range summaries {
		if text, ok := survey.Description(s.Category); ok {
			hint.Items = append(hint.Items, s.DisplayLabel+": "+text)
		}
	}

	return hint
}
