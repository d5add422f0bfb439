package dom

import "strings"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Attr is a single attribute passed to an element factory.
type Attr struct {
	Key   string
	Value string
}

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return Attr{Key: "class", Value: strings.Join(classes, " ")} }

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Raw creates a node whose text is written to HTML verbatim.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// El creates a detached element.
// Arguments can be: nil, Attr, []Attr, *Node, []*Node, string (text child).
func El(tag string, args ...any) *Node {
	node := &Node{
		Kind:  KindElement,
		Tag:   tag,
		Attrs: make(Attrs),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if v.Key != "" {
				node.Attrs[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					node.Attrs[a.Key] = a.Value
				}
			}
		case *Node:
			if v != nil {
				node.AppendChild(v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					node.AppendChild(c)
				}
			}
		case string:
			node.AppendChild(Text(v))
		}
	}

	return node
}

// Div creates a <div> element.
func Div(args ...any) *Node { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *Node { return El("span", args...) }

// I creates an <i> element.
func I(args ...any) *Node { return El("i", args...) }

// P creates a <p> element.
func P(args ...any) *Node { return El("p", args...) }

// Main creates a <main> element.
func Main(args ...any) *Node { return El("main", args...) }

// Script creates a <script> element.
func Script(args ...any) *Node { return El("script", args...) }
