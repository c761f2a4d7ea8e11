package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type wireDocument struct {
	Blocks []wireBlock `json:"blocks"`
}

type wireBlock struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type headingData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type paragraphData struct {
	Text string `json:"text"`
}

type listData struct {
	Style string            `json:"style"`
	Items []json.RawMessage `json:"items"`
}

type quoteData struct {
	Text    string `json:"text"`
	Caption string `json:"caption"`
}

// listItem is the object form of a list entry used by newer editor
// versions.
type listItem struct {
	Content string `json:"content"`
	Text    string `json:"text"`
}

// ParseDocument reads the editor's saved output, either {"blocks": [...]}
// or a bare array of blocks. It fails only on malformed JSON; blocks with an
// unrecognized type or an unexpected data shape are kept as Unknown.
func ParseDocument(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Document{}, nil
	}

	var blocks []wireBlock
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return nil, fmt.Errorf("parse blocks: %w", err)
		}
	} else {
		var wd wireDocument
		if err := json.Unmarshal(raw, &wd); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		blocks = wd.Blocks
	}

	doc := make(Document, 0, len(blocks))
	for _, wb := range blocks {
		doc = append(doc, fromWire(wb))
	}
	return doc, nil
}

func fromWire(wb wireBlock) Block {
	unknown := Unknown{Type: wb.Type, Data: wb.Data}
	switch Kind(wb.Type) {
	case KindHeading:
		var d headingData
		if json.Unmarshal(wb.Data, &d) != nil {
			return unknown
		}
		return Heading{Level: d.Level, Text: d.Text}
	case KindParagraph:
		var d paragraphData
		if json.Unmarshal(wb.Data, &d) != nil {
			return unknown
		}
		return Paragraph{Text: d.Text}
	case KindList:
		var d listData
		if json.Unmarshal(wb.Data, &d) != nil {
			return unknown
		}
		items := make([]string, 0, len(d.Items))
		for _, item := range d.Items {
			items = append(items, itemText(item))
		}
		return List{Ordered: d.Style == "ordered", Items: items}
	case KindQuote:
		var d quoteData
		if json.Unmarshal(wb.Data, &d) != nil {
			return unknown
		}
		return Quote{Text: d.Text, Caption: d.Caption}
	default:
		return unknown
	}
}

// itemText accepts a plain string or an object with content or text,
// preferring content. Any other shape yields "".
func itemText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj listItem
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	if obj.Content != "" {
		return obj.Content
	}
	return obj.Text
}

// MarshalJSON writes the document in the shape the editor loads.
func (d Document) MarshalJSON() ([]byte, error) {
	out := wireDocument{Blocks: make([]wireBlock, 0, len(d))}
	for _, blk := range d {
		wb, err := toWire(blk)
		if err != nil {
			return nil, err
		}
		if wb.Type == "" {
			continue
		}
		out.Blocks = append(out.Blocks, wb)
	}
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(raw []byte) error {
	doc, err := ParseDocument(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func toWire(blk Block) (wireBlock, error) {
	var data any
	switch v := blk.(type) {
	case Heading:
		data = headingData{Text: v.Text, Level: v.Level}
	case Paragraph:
		data = paragraphData{Text: v.Text}
	case List:
		style := "unordered"
		if v.Ordered {
			style = "ordered"
		}
		items := v.Items
		if items == nil {
			items = []string{}
		}
		data = struct {
			Style string   `json:"style"`
			Items []string `json:"items"`
		}{style, items}
	case Quote:
		data = quoteData{Text: v.Text, Caption: v.Caption}
	case Unknown:
		raw := v.Data
		if len(raw) == 0 {
			raw = json.RawMessage(`{}`)
		}
		return wireBlock{Type: v.Type, Data: raw}, nil
	default:
		return wireBlock{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return wireBlock{}, err
	}
	return wireBlock{Type: string(blk.Kind()), Data: raw}, nil
}
