// Package dom implements a small in-memory HTML element tree. The widget
// owns one such tree per container and mutates it on every render pass;
// the HTTP host serializes it on demand.
package dom

import (
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// rawPolicy sanitizes raw markup handed to the builder. Text content is
// entity-escaped at render time and does not go through the policy.
var rawPolicy = bluemonday.UGCPolicy()

// Spec declaratively describes one element. Children are built
// recursively in the given order. Setting Parent appends the built
// element into it; that append is the builder's only side effect.
type Spec struct {
	Tag       string
	ClassName string
	ID        string
	Text      string
	HTML      string
	Attrs     map[string]string
	Children  []Spec
	Parent    *Element
}

// Element is one node of the tree. Elements are not safe for concurrent
// mutation; the owning widget serializes access.
type Element struct {
	tag      string
	attrs    map[string]string
	text     string
	raw      string
	children []*Element
}

// voidTags render without a closing tag and never carry children.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// New builds an element from its spec.
func New(spec Spec) *Element {
	tag := spec.Tag
	if tag == "" {
		tag = "div"
	}

	el := &Element{
		tag:   tag,
		attrs: make(map[string]string, len(spec.Attrs)+2),
		text:  spec.Text,
	}
	if spec.HTML != "" {
		el.raw = rawPolicy.Sanitize(spec.HTML)
	}
	if spec.ClassName != "" {
		el.attrs["class"] = spec.ClassName
	}
	if spec.ID != "" {
		el.attrs["id"] = spec.ID
	}
	for k, v := range spec.Attrs {
		el.attrs[k] = v
	}

	for _, child := range spec.Children {
		el.Append(New(child))
	}

	if spec.Parent != nil {
		spec.Parent.Append(el)
	}
	return el
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Text returns the element's own text content.
func (e *Element) Text() string { return e.text }

// SetText replaces the element's text content in place.
func (e *Element) SetText(text string) { e.text = text }

// Append adds child at the tail of the child list.
func (e *Element) Append(child *Element) {
	e.children = append(e.children, child)
}

// Prepend inserts child at the head of the child list, pushing prior
// children down.
func (e *Element) Prepend(child *Element) {
	e.children = append([]*Element{child}, e.children...)
}

// RemoveChildren drops all children.
func (e *Element) RemoveChildren() {
	e.children = nil
}

// Children returns the child list in order.
func (e *Element) Children() []*Element { return e.children }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) string { return e.attrs[name] }

// SetAttr sets an attribute, replacing any prior value.
func (e *Element) SetAttr(name, value string) { e.attrs[name] = value }

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) { delete(e.attrs, name) }

// classList returns the class attribute split into tokens.
func (e *Element) classList() []string {
	return strings.Fields(e.attrs["class"])
}

// HasClass reports whether the element carries the class token.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classList() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds a class token if not already present.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	if cur := e.attrs["class"]; cur != "" {
		e.attrs["class"] = cur + " " + name
	} else {
		e.attrs["class"] = name
	}
}

// RemoveClass removes a class token, leaving other tokens intact.
func (e *Element) RemoveClass(name string) {
	kept := make([]string, 0, 4)
	for _, c := range e.classList() {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(e.attrs, "class")
		return
	}
	e.attrs["class"] = strings.Join(kept, " ")
}

// FindByClass returns the first element in document order (depth-first,
// self included) carrying the class token, or nil.
func (e *Element) FindByClass(name string) *Element {
	if e.HasClass(name) {
		return e
	}
	for _, child := range e.children {
		if found := child.FindByClass(name); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the first element with the given id attribute, or nil.
func (e *Element) FindByID(id string) *Element {
	if e.attrs["id"] == id {
		return e
	}
	for _, child := range e.children {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Render serializes the subtree to HTML. Attributes are emitted in
// sorted order so output is deterministic.
func (e *Element) Render() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (e *Element) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)

	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(e.attrs[k]))
		b.WriteByte('"')
	}

	if voidTags[e.tag] {
		b.WriteString(">")
		return
	}
	b.WriteByte('>')

	if e.text != "" {
		b.WriteString(html.EscapeString(e.text))
	}
	if e.raw != "" {
		b.WriteString(e.raw)
	}
	for _, child := range e.children {
		child.render(b)
	}

	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}
