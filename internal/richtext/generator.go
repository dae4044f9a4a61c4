// Package richtext renders editor HTML as a word-processing (.docx) document.
package richtext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls page layout of generated documents.
type Options struct {
	TableSplit  bool // allow table rows to break across pages
	Footer      bool
	PageNumbers bool // "Page N of M" in the footer; needs Footer
}

// Generator holds no per-document state; one value can serve concurrent requests.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// SetLicense registers the unioffice license for the process. Without one every
// saved document gets an "unlicensed" banner and a notice is printed to stdout.
func SetLicense(key, customer string) error {
	return license.SetLicenseKey(key, customer)
}

// Generate parses src and writes the resulting .docx to w.
func (g *Generator) Generate(w io.Writer, src string) error {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("richtext: parse html: %w", err)
	}
	doc := document.New()
	b := &builder{doc: doc, opts: g.opts}
	b.blocks(bodyOf(root), 0)
	if g.opts.Footer {
		b.footer()
	}
	if err := doc.Save(w); err != nil {
		return fmt.Errorf("richtext: save: %w", err)
	}
	return nil
}

type format struct {
	bold, italic, underline, strike bool
	size                            measurement.Distance
}

type builder struct {
	doc  *document.Document
	opts Options
	cur  *document.Paragraph // open paragraph for loose inline content
}

var headingSizes = map[atom.Atom]measurement.Distance{
	atom.H1: 24, atom.H2: 20, atom.H3: 16, atom.H4: 14, atom.H5: 12, atom.H6: 11,
}

func bodyOf(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := bodyOf(c); b != nil {
			return b
		}
	}
	if n.Type == html.DocumentNode {
		return n
	}
	return nil
}

func (b *builder) paragraph() document.Paragraph {
	b.cur = nil
	return b.doc.AddParagraph()
}

func (b *builder) blocks(n *html.Node, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			if b.cur == nil {
				p := b.doc.AddParagraph()
				b.cur = &p
			}
			b.inline(*b.cur, c, format{})
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			p := b.paragraph()
			p.SetStyle("Heading" + c.Data[1:])
			b.inline(p, c, format{bold: true, size: headingSizes[c.DataAtom] * measurement.Point})
		case atom.Ul, atom.Ol:
			b.list(c, depth)
		case atom.Table:
			b.table(c)
		case atom.Hr:
			b.paragraph()
		case atom.Br:
			if b.cur == nil {
				b.paragraph()
			}
			b.cur = nil
		case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
			atom.Blockquote, atom.Pre, atom.Main, atom.Figure:
			if hasBlocks(c) {
				b.cur = nil
				b.blocks(c, depth)
				b.cur = nil
				continue
			}
			b.inline(b.paragraph(), c, format{})
		case atom.Script, atom.Style, atom.Head:
		default:
			if b.cur == nil {
				p := b.doc.AddParagraph()
				b.cur = &p
			}
			b.inline(*b.cur, c, format{})
		}
	}
}

func (b *builder) list(n *html.Node, depth int) {
	ordered := n.DataAtom == atom.Ol
	num := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		num++
		p := b.paragraph()
		p.Properties().SetStartIndent(measurement.Distance(depth+1) * 0.25 * measurement.Inch)
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
		}
		p.AddRun().AddText(marker)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				b.list(c, depth+1)
				continue
			}
			b.inline(p, c, format{})
		}
	}
	b.cur = nil
}

func (b *builder) table(n *html.Node) {
	b.cur = nil
	tbl := b.doc.AddTable()
	tbl.Properties().SetWidthPercent(100)
	tbl.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 1*measurement.Point)
	for _, tr := range tableRows(n) {
		row := tbl.AddRow()
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
				continue
			}
			p := row.AddCell().AddParagraph()
			if !b.opts.TableSplit {
				p.Properties().SetKeepWithNext(true)
				p.Properties().SetKeepOnOnePage(true)
			}
			b.inline(p, c, format{bold: c.DataAtom == atom.Th})
		}
	}
	// a table must not be the last body element
	b.paragraph()
}

func tableRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			rows = append(rows, tableRows(c)...)
		}
	}
	return rows
}

func (b *builder) inline(p document.Paragraph, n *html.Node, f format) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			return
		}
		r := p.AddRun()
		props := r.Properties()
		if f.bold {
			props.SetBold(true)
		}
		if f.italic {
			props.SetItalic(true)
		}
		if f.underline {
			props.SetUnderline(wml.ST_UnderlineSingle, color.Auto)
		}
		if f.strike {
			props.SetStrikeThrough(true)
		}
		if f.size > 0 {
			props.SetSize(f.size)
		}
		r.AddText(text)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Br:
		p.AddRun().AddBreak()
		return
	case atom.Script, atom.Style:
		return
	case atom.B, atom.Strong, atom.Th:
		f.bold = true
	case atom.I, atom.Em:
		f.italic = true
	case atom.U, atom.Ins:
		f.underline = true
	case atom.S, atom.Strike, atom.Del:
		f.strike = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.inline(p, c, f)
	}
}

func (b *builder) footer() {
	ftr := b.doc.AddFooter()
	p := ftr.AddParagraph()
	p.Properties().SetAlignment(wml.ST_JcCenter)
	if b.opts.PageNumbers {
		p.AddRun().AddText("Page ")
		p.AddRun().AddField(document.FieldCurrentPage)
		p.AddRun().AddText(" of ")
		p.AddRun().AddField(document.FieldNumberOfPages)
	}
	b.doc.BodySection().SetFooter(ftr, wml.ST_HdrFtrDefault)
}

func hasBlocks(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Table, atom.H1, atom.H2, atom.H3,
			atom.H4, atom.H5, atom.H6, atom.Section, atom.Article, atom.Blockquote, atom.Hr:
			return true
		}
	}
	return false
}

// collapseSpace folds whitespace runs to one space, as a browser would.
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}
