package pubmed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/openlitdb/litbridge/internal/model"
)

// inlineTags are formatting elements that stay embedded in element text
// instead of becoming child records. Abstract heading detection depends on
// the <b> markup surviving the decode.
var inlineTags = map[string]bool{
	"b": true, "i": true, "u": true, "sup": true, "sub": true,
}

// ParseRecords decodes an efetch result document and returns one record per
// citation in it.
func ParseRecords(r io.Reader) ([]*model.Record, error) {
	d := xml.NewDecoder(r)
	d.Strict = false
	var root *model.Record
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse records: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			root, err = decodeElement(d, start)
			if err != nil {
				return nil, fmt.Errorf("parse records: %w", err)
			}
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse records: no root element")
	}

	var out []*model.Record
	for _, article := range root.Items("PubmedArticle") {
		if citation := article.Child("MedlineCitation"); citation != nil {
			out = append(out, citation)
		}
	}
	// A document that is itself a citation (offline record files).
	if len(out) == 0 && root.Name == "MedlineCitation" {
		out = append(out, root)
	}
	return out, nil
}

// decodeElement reads one element and its subtree. Attributes are kept,
// inline formatting tags are folded back into the text content, and
// everything else becomes a child record.
func decodeElement(d *xml.Decoder, start xml.StartElement) (*model.Record, error) {
	rec := &model.Record{Name: start.Name.Local}
	if len(start.Attr) > 0 {
		rec.Attrs = make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			rec.Attrs[a.Name.Local] = a.Value
		}
	}
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if inlineTags[t.Name.Local] {
				inner, err := decodeInline(d, t)
				if err != nil {
					return nil, err
				}
				text.WriteString(inner)
				continue
			}
			child, err := decodeElement(d, t)
			if err != nil {
				return nil, err
			}
			rec.Children = append(rec.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			rec.Value = strings.TrimSpace(text.String())
			return rec, nil
		}
	}
}

// decodeInline re-serializes an inline formatting element as text.
func decodeInline(d *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	b.WriteString("<" + start.Name.Local + ">")
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inner, err := decodeInline(d, t)
			if err != nil {
				return "", err
			}
			b.WriteString(inner)
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			b.WriteString("</" + start.Name.Local + ">")
			return b.String(), nil
		}
	}
}
