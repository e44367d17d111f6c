package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/mpedy/myboxplot/pkg/boxplot"
)

// Page geometry in millimetres, A4 landscape.
const (
	pdfMargin      = 15.0
	pdfPlotTop     = 40.0
	pdfPlotHeight  = 80.0
	pdfAxisWidth   = 12.0
	pdfRowHeight   = 5.0
	pdfBoxFraction = 0.5
	pdfOutlierR    = 0.8
	pdfFont        = "Helvetica"
	pdfTickStep    = 25.0
)

type rgb [3]int

var (
	inkBlack = rgb{0, 0, 0}
	inkMuted = rgb{120, 113, 108}
	inkGrid  = rgb{231, 229, 228}
	inkWhite = rgb{255, 255, 255}
	inkHead  = rgb{0, 143, 211}
)

var namedColors = map[string]rgb{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"navy":   {0, 0, 128},
	"yellow": {255, 255, 0},
	"orange": {255, 165, 0},
	"purple": {128, 0, 128},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
}

// parseColor turns "#rgb", "#rrggbb" or a basic colour name into RGB.
// Anything else is grey.
func parseColor(s string) rgb {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 || !strings.HasPrefix(s, "#") {
		return namedColors["gray"]
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return namedColors["gray"]
	}

	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c[0], c[1], c[2]) }
func setDraw(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c[0], c[1], c[2]) }
func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c[0], c[1], c[2]) }

// WritePDF writes one landscape page per view: a box plot with threshold
// lines followed by the figures table. Boxes are numbered in table order.
func WritePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreator("myboxplot", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}

	for _, view := range doc.Views {
		pdf.AddPage()
		pdfHeader(pdf, tr, doc, view)
		pdfPlot(pdf, view, doc.Thresholds)
		pdfTable(pdf, tr, view)
	}

	err := pdf.Output(w)
	if err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}

	return nil
}

func pdfHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc Document, view ViewReport) {
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	setText(pdf, inkHead)
	pdf.SetFont(pdfFont, "B", 16)

	title := doc.Title
	if title == "" {
		title = "Box plot"
	}

	pdf.CellFormat(contentW, 8, tr(title), "", 1, "L", false, 0, "")

	setText(pdf, inkBlack)
	pdf.SetFont(pdfFont, "B", 10)
	pdf.CellFormat(contentW/2, 6, tr(fmt.Sprintf("%s: %d", EvaluatedCoursesLabel, doc.EvaluatedCourses)), "", 0, "L", false, 0, "")

	setText(pdf, inkMuted)
	pdf.SetFont(pdfFont, "", 9)
	pdf.CellFormat(contentW/2, 6, tr("Vista: "+view.View), "", 1, "R", false, 0, "")
}

func pdfPlot(pdf *gofpdf.Fpdf, view ViewReport, thresholds []ThresholdLine) {
	pageW, _ := pdf.GetPageSize()
	left := pdfMargin + pdfAxisWidth
	width := pageW - pdfMargin - left
	bottom := pdfPlotTop + pdfPlotHeight

	y := func(v float64) float64 {
		return bottom - (v-boxplot.DomainMin)/(boxplot.DomainMax-boxplot.DomainMin)*pdfPlotHeight
	}

	pdf.SetFont(pdfFont, "", 7)
	setText(pdf, inkMuted)
	pdf.SetLineWidth(0.1)
	setDraw(pdf, inkGrid)

	for tick := boxplot.DomainMin; tick <= boxplot.DomainMax; tick += pdfTickStep {
		pdf.Line(left, y(tick), left+width, y(tick))
		pdf.SetXY(pdfMargin, y(tick)-2)
		pdf.CellFormat(pdfAxisWidth-1, 4, strconv.Itoa(int(tick)), "", 0, "R", false, 0, "")
	}

	for _, t := range thresholds {
		setDraw(pdf, parseColor(t.Color))
		pdf.SetLineWidth(0.3)
		pdf.SetDashPattern([]float64{2, 1.5}, 0)
		pdf.Line(left, y(t.Value), left+width, y(t.Value))
		pdf.SetDashPattern([]float64{}, 0)
	}

	if len(view.Rows) == 0 {
		return
	}

	slot := width / float64(len(view.Rows))
	boxW := slot * pdfBoxFraction

	for i, r := range view.Rows {
		center := left + slot*(float64(i)+0.5)
		x0 := center - boxW/2

		setDraw(pdf, inkBlack)
		pdf.SetLineWidth(0.2)
		pdf.Line(center, y(r.WhiskerHigh), center, y(r.Q3))
		pdf.Line(center, y(r.Q1), center, y(r.WhiskerLow))
		pdf.Line(x0+boxW/4, y(r.WhiskerHigh), x0+boxW*3/4, y(r.WhiskerHigh))
		pdf.Line(x0+boxW/4, y(r.WhiskerLow), x0+boxW*3/4, y(r.WhiskerLow))

		setFill(pdf, parseColor(string(r.Color)))
		pdf.Rect(x0, y(r.Q3), boxW, y(r.Q1)-y(r.Q3), "FD")
		pdf.SetLineWidth(0.5)
		pdf.Line(x0, y(r.Median), x0+boxW, y(r.Median))

		pdf.SetLineWidth(0.2)
		setFill(pdf, inkWhite)

		for _, v := range r.OutliersBelow {
			pdf.Circle(center, y(v), pdfOutlierR, "FD")
		}

		for _, v := range r.OutliersAbove {
			pdf.Circle(center, y(v), pdfOutlierR, "FD")
		}

		setText(pdf, inkBlack)
		pdf.SetXY(center-slot/2, bottom+1)
		pdf.CellFormat(slot, 4, strconv.Itoa(i+1), "", 0, "C", false, 0, "")
	}
}

var pdfColumns = []struct {
	title string
	width float64
	value func(i int, r Row) string
}{
	{"#", 8, func(i int, _ Row) string { return strconv.Itoa(i + 1) }},
	{"Categoria", 52, func(_ int, r Row) string { return r.DisplayLabel }},
	{"N", 14, func(_ int, r Row) string { return strconv.Itoa(r.Count) }},
	{"Min", 18, func(_ int, r Row) string { return fixed(r.Min) }},
	{"P5", 18, func(_ int, r Row) string { return fixed(r.P5) }},
	{"Q1", 18, func(_ int, r Row) string { return fixed(r.Q1) }},
	{"Mediana", 18, func(_ int, r Row) string { return fixed(r.Median) }},
	{"Media", 18, func(_ int, r Row) string { return fixed(r.Mean) }},
	{"Dev.std", 18, func(_ int, r Row) string { return fixed(r.StdDev) }},
	{"Q3", 18, func(_ int, r Row) string { return fixed(r.Q3) }},
	{"P95", 18, func(_ int, r Row) string { return fixed(r.P95) }},
	{"Max", 18, func(_ int, r Row) string { return fixed(r.Max) }},
	{"Outlier", 18, func(_ int, r Row) string { return strconv.Itoa(len(r.OutliersBelow) + len(r.OutliersAbove)) }},
}

func pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, view ViewReport) {
	pdf.SetXY(pdfMargin, pdfPlotTop+pdfPlotHeight+8)
	pdf.SetFont(pdfFont, "B", 8)
	setFill(pdf, inkHead)
	setText(pdf, inkWhite)
	setDraw(pdf, inkGrid)
	pdf.SetLineWidth(0.1)

	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "C", true, 0, "")
	}

	pdf.Ln(pdfRowHeight)
	pdf.SetFont(pdfFont, "", 8)
	setText(pdf, inkBlack)

	for i, r := range view.Rows {
		for j, col := range pdfColumns {
			align := "R"
			if j == 1 {
				align = "L"
			}

			pdf.CellFormat(col.width, pdfRowHeight, tr(col.value(i, r)), "1", 0, align, false, 0, "")
		}

		pdf.Ln(pdfRowHeight)
	}
}
