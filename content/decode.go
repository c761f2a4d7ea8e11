package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// element is an open/close pair found in the source. start and end bound
// the inner markup, so src[start:end] is the element's innerHTML exactly as
// it was written.
type element struct {
	tag      atom.Atom
	name     string
	start    int
	end      int
	parent   *element
	children []*element
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// closesParagraph lists start tags that end an open p element.
var closesParagraph = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true,
	atom.Blockquote: true, atom.Div: true, atom.Dl: true, atom.Fieldset: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Ul: true, atom.Li: true,
}

// Decode parses stored HTML back into a Document. Only top-level h2-h4, p,
// ul, ol and blockquote elements produce blocks; anything else is skipped.
// Decode never fails: malformed markup yields whatever blocks could be
// recognized.
func Decode(src string) Document {
	root := scan(src)
	doc := Document{}
	for _, el := range root.children {
		switch el.tag {
		case atom.H2, atom.H3, atom.H4:
			doc = append(doc, Heading{Level: int(el.name[1] - '0'), Text: el.inner(src)})
		case atom.P:
			doc = append(doc, Paragraph{Text: el.inner(src)})
		case atom.Ul, atom.Ol:
			items := []string{}
			for _, child := range el.children {
				if child.tag == atom.Li {
					items = append(items, child.inner(src))
				}
			}
			doc = append(doc, List{Ordered: el.tag == atom.Ol, Items: items})
		case atom.Blockquote:
			q := Quote{}
			if p := el.first(atom.P); p != nil {
				q.Text = p.inner(src)
			}
			if cite := el.first(atom.Cite); cite != nil {
				q.Caption = cite.inner(src)
			}
			doc = append(doc, q)
		}
	}
	return doc
}

// scan tokenizes src into an element tree, tracking byte offsets so inner
// markup can be sliced from the source instead of re-rendered.
func scan(src string) *element {
	root := &element{}
	cur := root
	offset := 0

	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		width := len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			// A self-closing slash on a non-void element is ignored, so <p/>
			// opens a paragraph.
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if voidElements[a] {
				break
			}
			cur = closeImplied(cur, a, offset)
			el := &element{tag: a, name: string(name), start: offset + width, parent: cur}
			cur.children = append(cur.children, el)
			cur = el
		case html.EndTagToken:
			name, _ := z.TagName()
			for open := cur; open != root; open = open.parent {
				if open.name != string(name) {
					continue
				}
				for c := cur; c != open; c = c.parent {
					c.end = offset
				}
				open.end = offset
				cur = open.parent
				break
			}
		}
		offset += width
	}

	for c := cur; c != root; c = c.parent {
		c.end = offset
	}
	return root
}

// closeImplied applies the two implicit end tag rules the editor's markup
// can rely on: block starts close an open paragraph, and a new list item
// closes the previous one.
func closeImplied(cur *element, next atom.Atom, at int) *element {
	if cur.tag == atom.P && closesParagraph[next] {
		cur.end = at
		cur = cur.parent
	}
	if next != atom.Li {
		return cur
	}
	for open := cur; open.parent != nil; open = open.parent {
		switch open.tag {
		case atom.Ul, atom.Ol:
			return cur
		case atom.Li:
			for c := cur; c != open; c = c.parent {
				c.end = at
			}
			open.end = at
			return open.parent
		}
	}
	return cur
}

func (e *element) inner(src string) string {
	if e.end < e.start {
		return ""
	}
	return src[e.start:e.end]
}

// first returns the first descendant with the given tag in document order.
func (e *element) first(tag atom.Atom) *element {
	for _, child := range e.children {
		if child.tag == tag {
			return child
		}
		if found := child.first(tag); found != nil {
			return found
		}
	}
	return nil
}
