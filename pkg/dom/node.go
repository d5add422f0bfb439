package dom

import (
	"slices"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <i>, etc.
	KindText                // Plain text node
	KindRaw                 // Raw HTML written verbatim
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Attrs holds element attributes.
type Attrs map[string]string

// Node is a node in a document tree.
type Node struct {
	Kind     Kind
	Tag      string  // Element tag name (e.g., "div")
	Attrs    Attrs   // Element attributes
	Children []*Node // Child nodes, in document order
	Text     string  // For KindText and KindRaw
	HID      string  // Hydration ID, assigned when attached to a document

	parent *Node
	doc    *Document
}

// Parent returns the parent node, or nil if the node is detached.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// OwnerDocument returns the document the node belongs to, if any.
func (n *Node) OwnerDocument() *Document {
	if n == nil {
		return nil
	}
	return n.doc
}

// IsConnected reports whether the node is reachable from its document root.
func (n *Node) IsConnected() bool {
	if n == nil || n.doc == nil {
		return false
	}
	top := n
	for top.parent != nil {
		top = top.parent
	}
	return top == n.doc.root
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// SetAttr sets an attribute on an element.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(Attrs)
	}
	n.Attrs[key] = value
}

// ClassList returns the element's classes in attribute order.
func (n *Node) ClassList() []string {
	class, _ := n.Attr("class")
	return strings.Fields(class)
}

// HasClass reports whether the element carries class.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.ClassList(), class)
}

// SetClass replaces the class attribute with the given classes.
func (n *Node) SetClass(classes ...string) {
	n.SetAttr("class", strings.Join(classes, " "))
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindText, KindRaw:
		return n.Text
	}
	var b strings.Builder
	n.walk(func(c *Node) bool {
		if c.Kind == KindText {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// walk visits descendants of n in document order, excluding n itself.
// Returning false from fn stops the walk.
func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// QuerySelector returns the first descendant matching selector.
// An invalid selector matches nothing.
func (n *Node) QuerySelector(selector string) *Node {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	var found *Node
	n.walk(func(c *Node) bool {
		if sel.Matches(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// QuerySelectorAll returns every descendant matching selector in document order.
// The result is a snapshot; later mutations do not change it.
func (n *Node) QuerySelectorAll(selector string) []*Node {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	var found []*Node
	n.walk(func(c *Node) bool {
		if sel.Matches(c) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// AppendChild appends child as the last child of n and returns it.
// A child that already has a parent is detached from it first.
// AppendChild panics if child is n or one of its ancestors.
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil {
		return nil
	}
	if n.Kind != KindElement {
		panic("dom: AppendChild called on a " + n.Kind.String() + " node")
	}
	if child.Contains(n) {
		panic("dom: AppendChild would create a cycle")
	}
	if child.parent != nil {
		child.Remove()
	}

	n.Children = append(n.Children, child)
	child.parent = n

	doc := n.doc
	if doc == nil {
		return child
	}
	doc.adopt(child)
	if n.IsConnected() {
		doc.notify(Mutation{
			Op:       PatchInsertNode,
			HID:      child.HID,
			ParentID: n.HID,
			Index:    len(n.Children) - 1,
			Node:     child,
		})
	}
	return child
}

// Remove detaches the node from its parent.
// Removing a detached node is a no-op and returns false.
func (n *Node) Remove() bool {
	if n == nil || n.parent == nil {
		return false
	}
	parent := n.parent
	connected := n.IsConnected()

	index := slices.Index(parent.Children, n)
	if index >= 0 {
		parent.Children = slices.Delete(parent.Children, index, index+1)
	}
	n.parent = nil

	if connected && n.doc != nil {
		n.doc.notify(Mutation{
			Op:       PatchRemoveNode,
			HID:      n.HID,
			ParentID: parent.HID,
			Index:    index,
			Node:     n,
		})
	}
	return true
}

// SetInnerHTML replaces the element's children with the parsed markup.
// The markup is not sanitized.
func (n *Node) SetInnerHTML(markup string) error {
	children, err := parseFragment(n.Tag, markup)
	if err != nil {
		return err
	}
	for len(n.Children) > 0 {
		n.Children[len(n.Children)-1].Remove()
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return nil
}
