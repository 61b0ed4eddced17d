package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// element is a parsed XML element keyed by local name. Namespace prefixes are
// discarded because the publishers change them between revisions.
type element struct {
	name     string
	attrs    map[string]string
	text     []byte
	children []*element
}

// parseTree reads a whole XML document into an element tree. Declared
// non-UTF-8 encodings are transcoded and HTML entities are accepted.
func parseTree(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var root *element
	var stack []*element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(t)
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text = append(top.text, t...)
			}
		}
	}

	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func newElement(start xml.StartElement) *element {
	el := &element{name: start.Name.Local}
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		if el.attrs == nil {
			el.attrs = make(map[string]string, len(start.Attr))
		}
		el.attrs[a.Name.Local] = a.Value
	}
	return el
}

// Text returns the element's character data, trimmed.
func (e *element) Text() string {
	return strings.TrimSpace(string(e.text))
}

// child returns the first direct child with the given local name.
func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childFold is child with case-insensitive matching.
func (e *element) childFold(name string) *element {
	for _, c := range e.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

// childrenNamed returns every direct child whose local name is one of names.
// A single child and many children come back the same way.
func (e *element) childrenNamed(names ...string) []*element {
	var out []*element
	for _, c := range e.children {
		for _, n := range names {
			if c.name == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// find returns the first element named name in a depth-first walk, e included.
func (e *element) find(name string) *element {
	if e.name == name {
		return e
	}
	for _, c := range e.children {
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// flatten maps every leaf below e to its dotted local-name path, e.g.
// "pointLocation.tpegPointLocation.point.pointCoordinates.latitude".
// Attributes are keyed "@name" under their element's path. When a path
// repeats, the first non-empty value wins.
func (e *element) flatten() map[string]string {
	fields := make(map[string]string)
	e.flattenInto(fields, "")
	return fields
}

func (e *element) flattenInto(fields map[string]string, prefix string) {
	for k, v := range e.attrs {
		setFirst(fields, prefix+"@"+k, v)
	}
	for _, c := range e.children {
		key := prefix + c.name
		if len(c.children) == 0 {
			setFirst(fields, key, c.Text())
		}
		c.flattenInto(fields, key+".")
	}
}

func setFirst(fields map[string]string, key, value string) {
	if fields[key] == "" {
		fields[key] = value
	}
}
