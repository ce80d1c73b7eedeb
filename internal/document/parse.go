package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// parseSections walks the goldmark AST and flattens the document into the
// minimal block structure narration needs. No document-object model is
// retained beyond this.
func parseSections(source []byte) []Section {
	reader := text.NewReader(source)
	root := markdown.Parser().Parse(reader)

	var sections []Section
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			sections = append(sections, Section{
				Type:    SectionHeading,
				Content: textOf(n, source),
				Level:   n.Level,
			})
		case *ast.FencedCodeBlock:
			lang := ""
			if l := n.Language(source); l != nil {
				lang = string(l)
			}
			sections = append(sections, Section{
				Type:     SectionCodeBlock,
				Content:  linesOf(n, source),
				Language: lang,
			})
		case *ast.CodeBlock:
			sections = append(sections, Section{
				Type:    SectionCodeBlock,
				Content: linesOf(n, source),
			})
		case *east.Table:
			sections = append(sections, tableSection(n, source))
		case *ast.List:
			sections = append(sections, Section{
				Type:    SectionList,
				Content: listItems(n, source),
			})
		case *ast.Blockquote:
			sections = append(sections, Section{
				Type:    SectionBlockquote,
				Content: textOf(n, source),
			})
		case *ast.Paragraph:
			if t := textOf(n, source); strings.TrimSpace(t) != "" {
				sections = append(sections, Section{
					Type:    SectionParagraph,
					Content: t,
				})
			}
		}
	}
	return sections
}

// textOf extracts plain text from a node by walking its Text leaves,
// dropping inline formatting.
func textOf(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.AutoLink:
			buf.Write(t.URL(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// linesOf joins a code block's raw lines.
func linesOf(node ast.Node, source []byte) string {
	var buf strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func tableSection(table *east.Table, source []byte) Section {
	sec := Section{Type: SectionTable}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		switch r := row.(type) {
		case *east.TableHeader:
			for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
				sec.Headers = append(sec.Headers, textOf(cell, source))
			}
			sec.Columns = len(sec.Headers)
		case *east.TableRow:
			sec.Rows++
			if sec.Columns == 0 {
				cols := 0
				for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cols++
				}
				sec.Columns = cols
			}
		}
	}
	sec.Content = strings.Join(sec.Headers, " | ")
	return sec
}

func listItems(list *ast.List, source []byte) string {
	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if t := textOf(item, source); t != "" {
			items = append(items, t)
		}
	}
	return strings.Join(items, "\n")
}
