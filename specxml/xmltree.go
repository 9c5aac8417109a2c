// specxml/xmltree.go
package specxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// elem is one in-construction node of the streaming XML reader. The loader
// keeps a small explicit stack of these (spec.md §4.2 "streaming
// constraint"): StartElement pushes a new elem as a child of the current
// stack top, text accumulates into it, and EndElement pops it off the
// stack.
type elem struct {
	Name     string
	Attrs    map[string]string
	Text     strings.Builder
	Children []*elem
	Line     int
}

func (e *elem) attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

func (e *elem) child(name string) (*elem, bool) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (e *elem) childrenNamed(name string) []*elem {
	var out []*elem
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *elem) text() string { return strings.TrimSpace(e.Text.String()) }

// parseXMLTree reads one <Category> document from r, event-driven
// (StartElement/EndElement/CharData), and returns its root element. It does
// not yet validate any spec-model invariant — that happens in loader.go, one
// layer up, which is where ErrStructural belongs (vs. ErrXMLSyntax here).
func parseXMLTree(file string, r io.Reader) (*elem, error) {
	dec := xml.NewDecoder(r)
	var stack []*elem
	var root *elem

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if len(stack) > 0 {
				line = stack[len(stack)-1].Line
			}
			return nil, &PositionError{File: file, Line: line, Element: "?", Err: fmt.Errorf("%w: %v", ErrXMLSyntax, err)}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			node := &elem{Name: t.Name.Local, Attrs: make(map[string]string), Line: line}
			for _, a := range t.Attr {
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, node)
			}
			stack = append(stack, node)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &PositionError{File: file, Element: t.Name.Local, Err: fmt.Errorf("%w: unbalanced end element", ErrXMLSyntax)}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = top
			}
		}
	}

	if root == nil {
		return nil, &PositionError{File: file, Element: "Category", Err: fmt.Errorf("%w: empty document", ErrXMLSyntax)}
	}
	return root, nil
}
