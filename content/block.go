// Package content converts between the block documents produced by the
// browser editor and the HTML stored with each post.
//
// A Document is an ordered list of blocks. Encode renders it to HTML and
// Decode recovers it from stored HTML for re-editing. Inline markup inside
// a block (bold, italic, links) is opaque to both directions: it is copied,
// never interpreted, so Decode(Encode(d)) returns the same text byte for
// byte.
package content

import "encoding/json"

// Kind is the editor's name for a block type.
type Kind string

const (
	KindHeading   Kind = "header"
	KindParagraph Kind = "paragraph"
	KindList      Kind = "list"
	KindQuote     Kind = "quote"
)

// Block is one structural unit of a post. The set of implementations is
// closed; anything the editor sends that is not recognized becomes Unknown.
type Block interface {
	Kind() Kind
	block()
}

// Heading is rendered as h2, h3 or h4.
type Heading struct {
	Level int
	Text  string
}

type Paragraph struct {
	Text string
}

type List struct {
	Ordered bool
	Items   []string
}

// Quote renders its caption as a cite element only when it is non-empty.
type Quote struct {
	Text    string
	Caption string
}

// Unknown keeps a block of an unrecognized type so it can be handed back to
// the editor unchanged. It always encodes to the empty string.
type Unknown struct {
	Type string
	Data json.RawMessage
}

func (Heading) Kind() Kind   { return KindHeading }
func (Paragraph) Kind() Kind { return KindParagraph }
func (List) Kind() Kind      { return KindList }
func (Quote) Kind() Kind     { return KindQuote }
func (u Unknown) Kind() Kind { return Kind(u.Type) }

func (Heading) block()   {}
func (Paragraph) block() {}
func (List) block()      {}
func (Quote) block()     {}
func (Unknown) block()   {}

// Document is the ordered block sequence of a post. Order is reading order.
type Document []Block

// Known reports the number of blocks that produce output when encoded.
func (d Document) Known() int {
	n := 0
	for _, b := range d {
		switch b.(type) {
		case Heading, Paragraph, List, Quote:
			n++
		}
	}
	return n
}
