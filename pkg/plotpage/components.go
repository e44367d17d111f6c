package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

// TabItem represents a single tab in a tab group.
type TabItem struct {
	ID      string
	Label   string
	Content Renderable
}

// Tabs renders a tabbed interface. The first tab starts active.
type Tabs struct {
	ID    string
	Items []TabItem
}

// NewTabs creates a new tab group.
func NewTabs(id string, items ...TabItem) *Tabs {
	return &Tabs{ID: id, Items: items}
}

// Render writes the tabs HTML.
func (t *Tabs) Render(w io.Writer) error {
	if len(t.Items) == 0 {
		return nil
	}

	items := make([]tabItemData, len(t.Items))

	for i, item := range t.Items {
		var content template.HTML

		if item.Content != nil {
			var buf bytes.Buffer

			err := item.Content.Render(&buf)
			if err != nil {
				return fmt.Errorf("rendering tab %s: %w", item.ID, err)
			}

			content = template.HTML(buf.String()) //nolint:gosec // rendered component.
		}

		items[i] = tabItemData{ID: item.ID, Label: item.Label, Active: i == 0, Content: content}
	}

	html, err := renderTemplate("tabs.html", tabsData{ID: t.ID, Items: items})
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing tabs: %w", err)
	}

	return nil
}

// Stack renders components one after another.
type Stack []Renderable

// Render writes every component in order.
func (s Stack) Render(w io.Writer) error {
	for _, item := range s {
		if item == nil {
			continue
		}

		err := item.Render(w)
		if err != nil {
			return err
		}
	}

	return nil
}

// TableRow is one row of a Table. Swatch is an optional CSS color shown
// before the first cell.
type TableRow struct {
	Swatch string
	Cells  []string
}

// Table renders an HTML table. Cells are escaped.
type Table struct {
	Headers []string
	Rows    []TableRow
}

// NewTable creates a new table.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(swatch string, cells ...string) *Table {
	t.Rows = append(t.Rows, TableRow{Swatch: swatch, Cells: cells})

	return t
}

// Render writes the table HTML.
func (t *Table) Render(w io.Writer) error {
	rows := make([]tableRowData, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = tableRowData(row)
	}

	html, err := renderTemplate("table.html", tableData{Headers: t.Headers, Rows: rows})
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	return nil
}
