package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/toastd/internal/errors"
)

// Parse parses page markup into a document. Missing <html>, <head> and
// <body> elements are synthesized the way a browser would. Comments and
// the doctype are dropped.
func Parse(r io.Reader) (*Document, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return nil, errors.New("T003").Wrap(err)
	}

	var htmlNode *html.Node
	for c := tree.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			htmlNode = c
			break
		}
	}

	d := &Document{}
	if htmlNode == nil {
		root := &Node{Kind: KindElement, Tag: "html", Attrs: make(Attrs)}
		d.setRoot(root)
		root.AppendChild(d.CreateElement("head"))
		root.AppendChild(d.CreateElement("body"))
		return d, nil
	}

	d.setRoot(convert(htmlNode))
	return d, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// parseFragment parses markup as the children of an element with tag.
func parseFragment(tag, markup string) ([]*Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, errors.New("T003").Wrap(err)
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if c := convert(n); c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// convert turns an x/net/html subtree into a detached dom subtree.
func convert(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		el := &Node{Kind: KindElement, Tag: n.Data, Attrs: make(Attrs, len(n.Attr))}
		for _, a := range n.Attr {
			el.Attrs[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				el.Children = append(el.Children, child)
				child.parent = el
			}
		}
		return el
	default:
		return nil
	}
}
