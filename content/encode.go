package content

import (
	"strconv"
	"strings"
)

// Encode renders doc as one HTML element per block with no separators.
// Unknown blocks are dropped. The output depends only on doc.
func Encode(doc Document) string {
	var b strings.Builder
	for _, blk := range doc {
		writeBlock(&b, blk)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block) {
	switch v := blk.(type) {
	case Heading:
		level := strconv.Itoa(v.Level)
		b.WriteString("<h" + level + ">")
		b.WriteString(v.Text)
		b.WriteString("</h" + level + ">")
	case Paragraph:
		b.WriteString("<p>")
		b.WriteString(v.Text)
		b.WriteString("</p>")
	case List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, item := range v.Items {
			b.WriteString("<li>")
			b.WriteString(item)
			b.WriteString("</li>")
		}
		b.WriteString("</" + tag + ">")
	case Quote:
		b.WriteString("<blockquote><p>")
		b.WriteString(v.Text)
		b.WriteString("</p>")
		if v.Caption != "" {
			b.WriteString("<cite>")
			b.WriteString(v.Caption)
			b.WriteString("</cite>")
		}
		b.WriteString("</blockquote>")
	default:
		// Unknown and nil blocks have no HTML form.
	}
}
