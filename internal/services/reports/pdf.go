package reports

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// renderPDF converts report markdown into PDF bytes. The markdown is parsed
// with goldmark and the AST walked straight into fpdf draw calls.
func renderPDF(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &reportRenderer{pdf: pdf, source: source}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// reportRenderer draws a markdown AST onto an fpdf page. It covers what the
// report emits: headings, paragraphs, emphasis, lists and pipe tables.
type reportRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	bold   bool
	italic bool
	inList bool
}

func (r *reportRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(6)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.applyFont()
	case *ast.List:
		r.inList = entering
		if !entering {
			r.pdf.Ln(4)
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(16)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.Line(12, r.pdf.GetY(), 198, r.pdf.GetY())
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *reportRenderer) applyFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Helvetica", style, 10)
}

func (r *reportRenderer) heading(n *ast.Heading, entering bool) {
	if entering {
		r.pdf.Ln(5)
		size := 16.0 - 2.0*float64(n.Level)
		if size < 10 {
			size = 10
		}
		r.pdf.SetFont("Helvetica", "B", size)
		return
	}
	r.pdf.Ln(7)
	r.applyFont()
}

// table draws a pipe table with content-sized columns. Cells are single
// line; anything too wide is cut with an ellipsis, report cells are short.
func (r *reportRenderer) table(n *extast.Table) {
	rows := r.collectRows(n)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	const (
		fontSize   = 8.5
		rowHeight  = 6.0
		cellPad    = 3.0
		tableWidth = 186.0
	)

	widths := r.columnWidths(rows, fontSize, cellPad, tableWidth)

	r.pdf.Ln(2)
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont("Helvetica", "B", fontSize)
			r.pdf.SetFillColor(235, 235, 235)
		} else {
			r.pdf.SetFont("Helvetica", "", fontSize)
			r.pdf.SetFillColor(255, 255, 255)
		}

		// Keep a row from straddling the page break.
		if r.pdf.GetY()+rowHeight > 285 {
			r.pdf.AddPage()
		}

		r.pdf.SetX(12)
		for j, cell := range row {
			if j >= len(widths) {
				break
			}
			r.pdf.CellFormat(widths[j], rowHeight, r.fitCell(cell, widths[j]-cellPad), "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(rowHeight)
	}
	r.pdf.Ln(3)
	r.applyFont()
}

// collectRows flattens the table into cell text. TableHeader and TableRow
// both hold TableCell children, so one pass covers the header row too.
func (r *reportRenderer) collectRows(n *extast.Table) [][]string {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader, *extast.TableRow:
			rows = append(rows, r.cells(child))
		}
	}
	return rows
}

func (r *reportRenderer) cells(row ast.Node) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		out = append(out, string(cell.Text(r.source)))
	}
	return out
}

// columnWidths sizes columns to their widest cell, then scales the set to
// the table width.
func (r *reportRenderer) columnWidths(rows [][]string, fontSize, pad, tableWidth float64) []float64 {
	cols := len(rows[0])
	widths := make([]float64, cols)

	r.pdf.SetFont("Helvetica", "B", fontSize)
	for _, row := range rows {
		for j, cell := range row {
			if j >= cols {
				break
			}
			if w := r.pdf.GetStringWidth(cell) + pad*2; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total <= 0 {
		return widths
	}
	scale := tableWidth / total
	for j := range widths {
		widths[j] *= scale
	}
	return widths
}

func (r *reportRenderer) fitCell(cell string, width float64) string {
	if r.pdf.GetStringWidth(cell) <= width {
		return cell
	}
	for len(cell) > 1 && r.pdf.GetStringWidth(cell+"...") > width {
		cell = cell[:len(cell)-1]
	}
	return cell + "..."
}
