package extraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var errNoDocument = errors.New("no document loaded")

// DOM is the query surface the engine needs from a loaded page.
// Results are in document order.
type DOM interface {
	Texts(selector string) ([]string, error)
	Attrs(selector string, attr string) ([]string, error)
}

type documentDOM struct {
	doc *goquery.Document
}

func FromDocument(doc *goquery.Document) DOM {
	return documentDOM{doc: doc}
}

func FromHTML(markup string) (DOM, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromDocument(doc), nil
}

func (d documentDOM) find(selector string) (*goquery.Selection, error) {
	if d.doc == nil {
		return nil, errNoDocument
	}

	// goquery swallows selector errors; compile first so a bad selector is
	// reported instead of silently matching nothing.
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	return d.doc.FindMatcher(matcher), nil
}

func (d documentDOM) Texts(selector string) ([]string, error) {
	selection, err := d.find(selector)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, selection.Length())
	selection.Each(func(_ int, item *goquery.Selection) {
		texts = append(texts, renderedText(item))
	})
	return texts, nil
}

func (d documentDOM) Attrs(selector string, attr string) ([]string, error) {
	selection, err := d.find(selector)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, selection.Length())
	selection.Each(func(_ int, item *goquery.Selection) {
		values = append(values, item.AttrOr(attr, ""))
	})
	return values, nil
}

// Elements a browser lays out on their own line.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Table: true, atom.Td: true, atom.Th: true, atom.Tr: true,
	atom.Ul: true,
}

// renderedText approximates innerText: block elements are separated by a
// newline so neighbouring numbers do not run together. Script and style
// contents are skipped.
func renderedText(selection *goquery.Selection) string {
	var b strings.Builder
	for _, node := range selection.Nodes {
		writeRenderedText(&b, node)
	}
	return strings.TrimSpace(b.String())
}

func writeRenderedText(b *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
	}

	block := node.Type == html.ElementNode && blockElements[node.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeRenderedText(b, child)
	}
	if block {
		b.WriteByte('\n')
	}
}
