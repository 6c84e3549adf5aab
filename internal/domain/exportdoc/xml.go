package exportdoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

// ToXML serializa el documento:
//
//	<invoice_data>
//	  <invoice><INVOICE_NR>00007</INVOICE_NR>...</invoice>
//	  <customer>...</customer>
//	  <service_provider>...</service_provider>
//	  <ceos><ceo>...</ceo></ceos>
//	  <positions><position>...</position></positions>
//	  <accounts><account>...</account></accounts>
//	</invoice_data>
func (d *Document) ToXML() ([]byte, error) {
	doc := d.etreeDocument()
	doc.Indent(2)
	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("exportdoc: escribir XML: %w", err)
	}
	return b, nil
}

func (d *Document) etreeDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(RootElement)

	for _, s := range d.records() {
		writeFields(root.CreateElement(s.name), *s.rec)
	}
	for _, l := range d.lists() {
		sec := root.CreateElement(l.name)
		item := singular(l.name)
		for _, r := range *l.items {
			writeFields(sec.CreateElement(item), r)
		}
	}
	return doc
}

func writeFields(parent *etree.Element, r Record) {
	for _, f := range r.Fields {
		parent.CreateElement(f.Name).SetText(f.Value)
	}
}

// ParseXML reconstruye un Document desde el XML de intercambio.
// Secciones desconocidas se ignoran; secciones ausentes quedan vacías.
func ParseXML(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("exportdoc: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != RootElement {
		return nil, fmt.Errorf("exportdoc: se esperaba raíz <%s>", RootElement)
	}

	out := &Document{}
	records := map[string]*Record{}
	for _, s := range out.records() {
		records[s.name] = s.rec
	}
	lists := map[string]*[]Record{}
	for _, l := range out.lists() {
		lists[l.name] = l.items
	}

	for _, sec := range root.ChildElements() {
		if rec, ok := records[sec.Tag]; ok {
			*rec = readFields(sec)
			continue
		}
		if items, ok := lists[sec.Tag]; ok {
			*items = []Record{}
			item := singular(sec.Tag)
			for _, el := range sec.ChildElements() {
				if el.Tag != item {
					return nil, fmt.Errorf("exportdoc: <%s> dentro de <%s>, se esperaba <%s>", el.Tag, sec.Tag, item)
				}
				*items = append(*items, readFields(el))
			}
		}
	}
	return out, nil
}

func readFields(el *etree.Element) Record {
	var r Record
	for _, f := range el.ChildElements() {
		r.Fields = append(r.Fields, Field{Name: f.Tag, Value: f.Text()})
	}
	return r
}

// singular ceos → ceo, positions → position, accounts → account.
func singular(section string) string {
	return strings.TrimSuffix(section, "s")
}

// Digest SHA-256 (hex) de la forma canónica C14N del documento. Dos documentos con
// los mismos valores producen el mismo digest aunque cambie la declaración XML.
func (d *Document) Digest() (string, error) {
	raw, err := d.ToXML()
	if err != nil {
		return "", err
	}
	return DigestXML(raw)
}

// DigestXML calcula el digest canónico de un XML ya serializado.
func DigestXML(data []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("exportdoc: parsear XML: %w", err)
	}
	if doc.Root() == nil {
		return "", fmt.Errorf("exportdoc: documento sin raíz")
	}
	// Solo el elemento raíz: la declaración XML no forma parte de la forma canónica.
	bare := etree.NewDocument()
	bare.SetRoot(doc.Root().Copy())
	rootOnly, err := bare.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("exportdoc: escribir raíz: %w", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(rootOnly))
	dec.Entity = map[string]string{}
	canon, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("exportdoc: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
