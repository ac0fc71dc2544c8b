// Package output renders pages and tables for the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"launcher/internal/page"
)

// Format selects how pages are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: use text, json or yaml", s)
	}
}

const defaultWidth = 80

// Formatter formats command output
type Formatter struct {
	w      io.Writer
	format Format
	plain  bool
	width  int
	styles styles
}

// NewFormatter creates a formatter writing to w. Text output is styled and
// markdown is rendered only when plain is false.
func NewFormatter(w io.Writer, format Format, plain bool) *Formatter {
	return &Formatter{
		w:      w,
		format: format,
		plain:  plain,
		width:  defaultWidth,
		styles: newStyles(plain),
	}
}

// ForStdout creates a formatter for os.Stdout, plain unless it is a terminal.
func ForStdout(format Format) *Formatter {
	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)
	f := NewFormatter(os.Stdout, format, !isTTY)
	if isTTY {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			f.width = width
		}
	}
	return f
}

// Page writes a page in the configured format
func (f *Formatter) Page(p page.Page) error {
	switch f.format {
	case FormatJSON:
		return f.JSON(p)
	case FormatYAML:
		return f.YAML(p)
	}

	switch pg := p.(type) {
	case *page.List:
		return f.list(pg)
	case *page.Detail:
		return f.detail(pg)
	case *page.Form:
		return f.form(pg)
	default:
		return fmt.Errorf("unsupported page %T", p)
	}
}

// JSON writes v as indented JSON. Pages keep their type discriminant.
func (f *Formatter) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.w, string(data))
	return err
}

// YAML writes v as YAML, going through its JSON form so wire names are kept.
func (f *Formatter) YAML(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	// JSON is valid YAML; drop its flow and quoting styles.
	clearStyle(&node)
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func (f *Formatter) list(l *page.List) error {
	if l.Title != "" {
		fmt.Fprintln(f.w, f.styles.title.Render(l.Title))
	}
	if len(l.Items) == 0 {
		_, err := fmt.Fprintln(f.w, "No items found")
		return err
	}

	rows := make([][]string, len(l.Items))
	for i, item := range l.Items {
		action := ""
		if a, ok := page.DefaultAction(item.Actions); ok {
			action = a.Title
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.Title,
			item.Subtitle,
			strings.Join(item.Accessories, "  "),
			action,
		}
	}
	return f.Table([]string{"#", "TITLE", "SUBTITLE", "ACCESSORIES", "ACTION"}, rows)
}

// Table writes aligned columns. Empty trailing columns are dropped.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	used := len(headers)
	for used > 0 && columnEmpty(rows, used-1) {
		used--
	}

	widths := make([]int, used)
	for i := 0; i < used; i++ {
		widths[i] = lipgloss.Width(headers[i])
		for _, row := range rows {
			if w := lipgloss.Width(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i := 0; i < used; i++ {
		b.WriteString(pad(f.styles.header.Render(headers[i]), widths[i], i == used-1))
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i := 0; i < used; i++ {
			b.WriteString(pad(cell(row, i), widths[i], i == used-1))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(f.w, b.String())
	return err
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func columnEmpty(rows [][]string, i int) bool {
	for _, row := range rows {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s)+2)
}

func (f *Formatter) detail(d *page.Detail) error {
	if d.Title != "" {
		fmt.Fprintln(f.w, f.styles.title.Render(d.Title))
	}

	body, err := f.markdown(d.Markdown)
	if err != nil {
		return err
	}
	fmt.Fprint(f.w, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(f.w)
	}

	return f.actions(d.Actions)
}

func (f *Formatter) markdown(md string) (string, error) {
	if f.plain {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(f.width-4),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}

func (f *Formatter) actions(actions []page.Action) error {
	if len(actions) == 0 {
		return nil
	}
	var b bytes.Buffer
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, f.styles.header.Render("Actions"))
	for i, a := range actions {
		line := fmt.Sprintf("  %d. %s", i+1, a.Title)
		if a.Key != "" {
			line += " " + f.styles.key.Render("["+a.Key+"]")
		}
		line += " " + f.styles.muted.Render(string(a.OnAction.CommandType()))
		fmt.Fprintln(&b, line)
	}
	_, err := f.w.Write(b.Bytes())
	return err
}

func (f *Formatter) form(form *page.Form) error {
	if form.Title != "" {
		fmt.Fprintln(f.w, f.styles.title.Render(form.Title))
	}

	rows := make([][]string, len(form.Fields))
	for i, field := range form.Fields {
		rows[i] = []string{field.FieldName(), field.FieldTitle(), string(field.FieldType()), fieldDefault(field)}
	}
	return f.Table([]string{"NAME", "TITLE", "TYPE", "DEFAULT"}, rows)
}

func fieldDefault(field page.Field) string {
	switch fd := field.(type) {
	case *page.TextField:
		if fd.Secure && fd.Default != "" {
			return "******"
		}
		return fd.Default
	case *page.TextAreaField:
		return fd.Default
	case *page.CheckboxField:
		return strconv.FormatBool(fd.Default)
	case *page.SelectField:
		if fd.Default != nil {
			return fd.Default.String()
		}
	}
	return ""
}
