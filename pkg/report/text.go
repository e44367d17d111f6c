package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// EvaluatedCoursesLabel heads every report.
const EvaluatedCoursesLabel = "NUMERO DI INSEGNAMENTI VALUTATI"

var textHeader = table.Row{"Categoria", "N", "Min", "P5", "Q1", "Mediana", "Media", "Dev.std", "Q3", "P95", "Max", "Outlier"}

type palette struct {
	title   *color.Color
	heading *color.Color
	alert   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title:   color.New(color.Bold, color.FgCyan),
		heading: color.New(color.Bold),
		alert:   color.New(color.FgRed),
	}

	if noColor {
		p.title.DisableColor()
		p.heading.DisableColor()
		p.alert.DisableColor()
	}

	return p
}

// WriteText writes one table per view, preceded by the respondent counts.
func WriteText(w io.Writer, doc Document, options Options) error {
	p := newPalette(options.NoColor)

	var b strings.Builder

	if doc.Title != "" {
		b.WriteString(p.title.Sprint(doc.Title))
		b.WriteString("\n")
	}

	b.WriteString(p.heading.Sprintf("%s: %s", EvaluatedCoursesLabel, humanize.Comma(int64(doc.EvaluatedCourses))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Questionari compilati: %s | in bianco: %s | risposte: %s\n",
		humanize.Comma(int64(doc.CompletedQuestionnaires)),
		humanize.Comma(int64(doc.BlankQuestionnaires)),
		humanize.Comma(int64(doc.Observations)),
	)

	for _, view := range doc.Views {
		b.WriteString("\n")
		b.WriteString(p.heading.Sprintf("=== %s ===", strings.ToUpper(view.View)))
		b.WriteString("\n")
		b.WriteString(viewTable(view, p))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func viewTable(view ViewReport, p palette) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(textHeader)

	for _, r := range view.Rows {
		outliers := strconv.Itoa(len(r.OutliersBelow) + len(r.OutliersAbove))
		if outliers != "0" {
			outliers = p.alert.Sprint(outliers)
		}

		tbl.AppendRow(table.Row{
			r.DisplayLabel,
			humanize.Comma(int64(r.Count)),
			fixed(r.Min), fixed(r.P5), fixed(r.Q1), fixed(r.Median), fixed(r.Mean),
			fixed(r.StdDev), fixed(r.Q3), fixed(r.P95), fixed(r.Max),
			outliers,
		})
	}

	return tbl.Render()
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
