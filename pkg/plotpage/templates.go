package plotpage

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/logo.svg
var logoSVG []byte

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template.
}

// LogoDataURI returns the logo as a data URI for embedding in HTML.
func LogoDataURI() template.URL {
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(logoSVG)) //nolint:gosec // embedded asset.
}

// pageData holds data for the page template.
type pageData struct {
	Title     string
	DarkClass string
	Theme     ThemeConfig
	Header    template.HTML
	Content   template.HTML
	Scripts   template.HTML
}

// headerData holds data for the header template.
type headerData struct {
	Title       string
	Description string
	ShowLogo    bool
	LogoWidth   int
	LogoHeight  int
	LogoDataURI template.URL
	Stats       []statData
}

// sectionData holds data for the section template.
type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
	Hint     *hintData
}

// hintData holds data for hints within sections.
type hintData struct {
	Title string
	Items []string
}

// tabsData holds data for the tabs template.
type tabsData struct {
	ID    string
	Items []tabItemData
}

// tabItemData holds data for individual tab items.
type tabItemData struct {
	ID      string
	Label   string
	Active  bool
	Content template.HTML
}

// statData holds data for one header statistic.
type statData struct {
	Label string
	Value string
}

// tableData holds data for the table template.
type tableData struct {
	Headers []string
	Rows    []tableRowData
}

// tableRowData is one table row with an optional color swatch.
type tableRowData struct {
	Swatch string
	Cells  []string
}
