package dom

import (
	"fmt"
	"strings"
)

// Selector is a parsed simple compound selector such as "div.toast#a".
type Selector struct {
	Tag     string // empty or "*" matches any tag
	ID      string
	Classes []string
}

// ParseSelector parses a compound selector made of an optional tag (or
// "*") followed by any number of ".class" and "#id" parts.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	s = strings.TrimSpace(s)
	if s == "" {
		return sel, fmt.Errorf("dom: empty selector")
	}
	if strings.ContainsAny(s, " \t\n>+~,[]:") {
		return sel, fmt.Errorf("dom: unsupported selector %q", s)
	}

	end := strings.IndexAny(s, ".#")
	if end < 0 {
		end = len(s)
	}
	sel.Tag = strings.ToLower(s[:end])
	rest := s[end:]

	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, ".#")
		if next < 0 {
			next = len(rest)
		}
		name := rest[:next]
		rest = rest[next:]
		if name == "" {
			return Selector{}, fmt.Errorf("dom: empty name after %q in %q", marker, s)
		}
		if marker == '.' {
			sel.Classes = append(sel.Classes, name)
		} else {
			if sel.ID != "" && sel.ID != name {
				return Selector{}, fmt.Errorf("dom: conflicting ids in %q", s)
			}
			sel.ID = name
		}
	}
	return sel, nil
}

// Matches reports whether n is an element matching the selector.
func (s Selector) Matches(n *Node) bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	if s.Tag != "" && s.Tag != "*" && s.Tag != n.Tag {
		return false
	}
	if s.ID != "" {
		if id, _ := n.Attr("id"); id != s.ID {
			return false
		}
	}
	if len(s.Classes) > 0 {
		classes := n.ClassList()
		for _, want := range s.Classes {
			found := false
			for _, c := range classes {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// String returns the selector in CSS syntax.
func (s Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	if s.ID != "" {
		b.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	return b.String()
}
