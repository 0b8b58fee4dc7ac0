package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	el := New(Spec{})
	assert.Equal(t, "div", el.Tag())
	assert.Empty(t, el.Children())
	assert.Equal(t, "<div></div>", el.Render())
}

func TestNew_RecursiveChildrenInOrder(t *testing.T) {
	el := New(Spec{
		Tag:       "ul",
		ClassName: "list",
		Children: []Spec{
			{Tag: "li", Text: "first"},
			{Tag: "li", Text: "second"},
		},
	})

	require.Len(t, el.Children(), 2)
	assert.Equal(t, "first", el.Children()[0].Text())
	assert.Equal(t, "second", el.Children()[1].Text())
	assert.Equal(t, `<ul class="list"><li>first</li><li>second</li></ul>`, el.Render())
}

func TestNew_ParentAppend(t *testing.T) {
	parent := New(Spec{Tag: "div"})
	child := New(Spec{Tag: "span", Parent: parent, Text: "x"})

	require.Len(t, parent.Children(), 1)
	assert.Same(t, child, parent.Children()[0])
}

func TestNew_AttrsAndID(t *testing.T) {
	el := New(Spec{
		Tag:   "img",
		ID:    "avatar-1",
		Attrs: map[string]string{"src": "http://example.com/a.png", "alt": "Anna"},
	})

	assert.Equal(t, "avatar-1", el.Attr("id"))
	assert.Equal(t, "Anna", el.Attr("alt"))
	// img is a void element: no closing tag, attrs sorted.
	assert.Equal(t, `<img alt="Anna" id="avatar-1" src="http://example.com/a.png">`, el.Render())
}

func TestRender_EscapesTextAndAttrs(t *testing.T) {
	el := New(Spec{
		Tag:   "span",
		Text:  `<b>&"bold"</b>`,
		Attrs: map[string]string{"title": `a "quoted" <value>`},
	})

	out := el.Render()
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, "&#34;quoted&#34;")
}

func TestNew_SanitizesRawHTML(t *testing.T) {
	el := New(Spec{Tag: "div", HTML: `<p>ok</p><script>alert(1)</script>`})

	out := el.Render()
	assert.Contains(t, out, "<p>ok</p>")
	assert.NotContains(t, out, "script")
}

func TestPrepend_ReversesInsertionOrder(t *testing.T) {
	list := New(Spec{Tag: "ul"})
	for _, id := range []string{"1", "2", "3"} {
		list.Prepend(New(Spec{Tag: "li", ID: id}))
	}

	ids := make([]string, 0, 3)
	for _, child := range list.Children() {
		ids = append(ids, child.Attr("id"))
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestClassOperations(t *testing.T) {
	el := New(Spec{Tag: "li", ClassName: "item"})

	el.AddClass("item--entering")
	assert.True(t, el.HasClass("item"))
	assert.True(t, el.HasClass("item--entering"))

	// Adding twice must not duplicate the token.
	el.AddClass("item--entering")
	assert.Equal(t, "item item--entering", el.Attr("class"))

	el.RemoveClass("item--entering")
	assert.False(t, el.HasClass("item--entering"))
	assert.Equal(t, "item", el.Attr("class"))

	el.RemoveClass("item")
	assert.Equal(t, "", el.Attr("class"))
}

func TestFindByClassAndID(t *testing.T) {
	doc := New(Spec{
		Tag: "body",
		Children: []Spec{
			{Tag: "div", ClassName: "sidebar"},
			{Tag: "div", ClassName: "content", Children: []Spec{
				{Tag: "div", ClassName: "widget-email__unread", ID: "w1"},
			}},
		},
	})

	found := doc.FindByClass("widget-email__unread")
	require.NotNil(t, found)
	assert.Equal(t, "w1", found.Attr("id"))

	assert.Nil(t, doc.FindByClass("missing"))
	assert.Same(t, found, doc.FindByID("w1"))
}

func TestSetText_UpdatesInPlace(t *testing.T) {
	counter := New(Spec{Tag: "span", Text: "0"})
	counter.SetText("7")
	assert.Equal(t, "<span>7</span>", counter.Render())
}

func TestRemoveChildren(t *testing.T) {
	list := New(Spec{Tag: "ul", Children: []Spec{{Tag: "li"}, {Tag: "li"}}})
	list.RemoveChildren()
	assert.Empty(t, list.Children())
	assert.Equal(t, "<ul></ul>", list.Render())
}
