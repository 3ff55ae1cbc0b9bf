package layout

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	DefaultPrecision = 2
	DefaultWidth     = 100
	maxPrecision     = 10
	numericCellStyle = "text-align:right;padding-right:0.7rem"
	rowHeaderStyle   = "font-weight:bold;border-right-width:0.1rem;border-right-color:var(--bs-dark)"
)

var (
	captionMarkdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	captionPolicy   = bluemonday.UGCPolicy()
)

// CSVTable renders comma separated data as an HTML table.
type CSVTable struct {
	Title            string `json:"title,omitempty"`
	Data             string `json:"data"`
	Precision        *int   `json:"precision,omitempty"`
	ColumnHeaders    *bool  `json:"column_headers,omitempty"`
	RowHeaders       bool   `json:"row_headers,omitempty"`
	Compact          bool   `json:"compact,omitempty"`
	Caption          string `json:"caption,omitempty"`
	CaptionAlignment string `json:"caption_alignment,omitempty"`
	Width            *int   `json:"width,omitempty"`
	MaxWidth         *int   `json:"max_width,omitempty"`
}

func DecodeCSVTable(raw json.RawMessage) (*CSVTable, error) {
	table := &CSVTable{}
	if err := unmarshalValue(raw, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *CSVTable) precision() int {
	if t.Precision == nil {
		return DefaultPrecision
	}
	return *t.Precision
}

func (t *CSVTable) columnHeaders() bool {
	return t.ColumnHeaders == nil || *t.ColumnHeaders
}

func (t *CSVTable) width() int {
	if t.Width == nil {
		return DefaultWidth
	}
	return *t.Width
}

func (t *CSVTable) captionAlignment() string {
	if t.CaptionAlignment == "" {
		return "end"
	}
	return t.CaptionAlignment
}

func (t *CSVTable) Validate() validation.Errors {
	errs := validation.Errors{}
	if strings.TrimSpace(t.Data) == "" {
		errs["data"] = validation.NewError("validation_required", "cannot be blank")
	} else if _, err := t.records(); err != nil {
		errs["data"] = validation.NewError("validation_csv_invalid", err.Error())
	}
	if p := t.precision(); p < 0 || p > maxPrecision {
		errs["precision"] = validation.NewError("validation_out_of_range", fmt.Sprintf("must be between 0 and %d", maxPrecision))
	}
	if w := t.width(); w < 1 || w > 100 {
		errs["width"] = validation.NewError("validation_out_of_range", "must be between 1 and 100")
	}
	if t.MaxWidth != nil && *t.MaxWidth < 0 {
		errs["max_width"] = validation.NewError("validation_min_greater_equal_than_required", "must be no less than 0")
	}
	switch t.captionAlignment() {
	case "start", "center", "end":
	default:
		errs["caption_alignment"] = validation.NewError("validation_in_invalid", "must be start, center or end")
	}
	return errs
}

func validateCSVTable(raw json.RawMessage) validation.Errors {
	table, err := DecodeCSVTable(raw)
	if err != nil {
		return validation.Errors{"value": validation.NewError("validation_block_decode", err.Error())}
	}
	return table.Validate()
}

func (t *CSVTable) records() ([][]string, error) {
	r := csv.NewReader(strings.NewReader(t.Data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

type columnKind int

const (
	columnText columnKind = iota
	columnInt
	columnFloat
)

// classify types each column from its non-empty body cells. A column is
// numeric only when every such cell parses.
func classify(rows [][]string, width int) []columnKind {
	kinds := make([]columnKind, width)
	for col := 0; col < width; col++ {
		seen, ints, floats := 0, 0, 0
		for _, row := range rows {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			cell := strings.TrimSpace(row[col])
			seen++
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				ints++
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				floats++
			}
		}
		switch {
		case seen == 0:
			kinds[col] = columnText
		case ints == seen:
			kinds[col] = columnInt
		case ints+floats == seen:
			kinds[col] = columnFloat
		}
	}
	return kinds
}

// Render returns the table markup. Cell text is escaped; the caption is
// rendered from markdown and sanitized.
func (t *CSVTable) Render() (string, error) {
	rows, err := t.records()
	if err != nil {
		return "", fmt.Errorf("layout: csv table: %w", err)
	}
	var header []string
	if t.columnHeaders() && len(rows) > 0 {
		header, rows = rows[0], rows[1:]
	}
	width := len(header)
	for _, row := range rows {
		width = max(width, len(row))
	}
	kinds := classify(rows, width)

	var b strings.Builder
	style := fmt.Sprintf("width:%d%%", t.width())
	if t.MaxWidth != nil && *t.MaxWidth > 0 {
		style += fmt.Sprintf(";max-width:%dpx", *t.MaxWidth)
	}
	fmt.Fprintf(&b, `<div class="csv-table" style="%s">`, style)
	if title := strings.TrimSpace(t.Title); title != "" {
		fmt.Fprintf(&b, `<h3 class="csv-table-title">%s</h3>`, html.EscapeString(title))
	}
	class := "table table-striped table-hover mb-0"
	if t.Compact {
		class += " table-sm"
	}
	fmt.Fprintf(&b, `<table class="%s">`, class)

	if caption, err := t.renderCaption(); err != nil {
		return "", err
	} else if caption != "" {
		fmt.Fprintf(&b, `<caption class="text-%s">%s</caption>`, t.captionAlignment(), caption)
	}

	if header != nil {
		b.WriteString("<thead><tr>")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(header) {
				cell = header[col]
			}
			if kinds[col] != columnText {
				fmt.Fprintf(&b, `<th style="%s">%s</th>`, numericCellStyle, html.EscapeString(cell))
				continue
			}
			fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(cell))
		}
		b.WriteString("</tr></thead>")
	}

	b.WriteString("<tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(row) {
				cell = t.formatCell(strings.TrimSpace(row[col]), kinds[col])
			}
			var styles []string
			if kinds[col] != columnText {
				styles = append(styles, numericCellStyle)
			}
			if t.RowHeaders && col == 0 {
				styles = append(styles, rowHeaderStyle)
			}
			attr := ""
			if len(styles) > 0 {
				attr = fmt.Sprintf(` style="%s"`, strings.Join(styles, ";"))
			}
			fmt.Fprintf(&b, "<td%s>%s</td>", attr, html.EscapeString(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")
	return b.String(), nil
}

func (t *CSVTable) formatCell(cell string, kind columnKind) string {
	if cell == "" || kind != columnFloat {
		return cell
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return strconv.FormatFloat(f, 'f', t.precision(), 64)
}

func (t *CSVTable) renderCaption() (string, error) {
	if strings.TrimSpace(t.Caption) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := captionMarkdown.Convert([]byte(t.Caption), &buf); err != nil {
		return "", fmt.Errorf("layout: csv caption: %w", err)
	}
	clean := captionPolicy.SanitizeBytes(buf.Bytes())
	return strings.TrimSpace(string(clean)), nil
}
