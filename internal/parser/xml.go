package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"datamigrator/internal/core"
)

// xmlTextKey holds the text of an element that also has attributes or
// children.
const xmlTextKey = "value"

// XMLParser reads an XML document. Elements with only text become strings,
// other elements become records whose fields are the attributes and child
// elements; repeated children become arrays. Records are the first
// repeated child of the root, or the root itself.
type XMLParser struct{}

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

func (p *XMLParser) Parse(r io.Reader) ([]*core.RawRecord, error) {
	root, err := readXMLTree(xml.NewDecoder(r))
	if err != nil {
		return nil, fmt.Errorf("xml: %w", err)
	}

	rootRec, ok := xmlValue(root).(*core.RawRecord)
	if !ok {
		return nil, nil
	}

	keys := rootRec.Keys()
	if len(keys) == 0 {
		return nil, nil
	}
	primary := keys[0]
	for _, k := range keys {
		if v, _ := rootRec.Get(k); isArray(v) {
			primary = k
			break
		}
	}

	v, _ := rootRec.Get(primary)
	items, ok := v.([]any)
	if !ok {
		return []*core.RawRecord{rootRec}, nil
	}

	out := make([]*core.RawRecord, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case *core.RawRecord:
			out = append(out, x)
		default:
			rec := core.NewRawRecord()
			rec.Set(primary, x)
			out = append(out, rec)
		}
	}
	return out, nil
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func readXMLTree(dec *xml.Decoder) (*xmlNode, error) {
	var stack []*xmlNode
	var root *xmlNode

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
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func xmlValue(n *xmlNode) any {
	text := strings.TrimSpace(n.text.String())
	if len(n.attrs) == 0 && len(n.children) == 0 {
		return text
	}

	rec := core.NewRawRecord()
	for _, a := range n.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		rec.Set(a.Name.Local, a.Value)
	}
	for _, c := range n.children {
		v := xmlValue(c)
		existing, ok := rec.Get(c.name)
		switch {
		case !ok:
			rec.Set(c.name, v)
		case isArray(existing):
			rec.Set(c.name, append(existing.([]any), v))
		default:
			rec.Set(c.name, []any{existing, v})
		}
	}
	if text != "" {
		rec.Set(xmlTextKey, text)
	}
	return rec
}
