// Package render serializes normalized records into the feed XML document.
//
// Two schemas are available: "attribute" writes one Stok element per record
// with every field as an attribute, "element" writes one Product element per
// record with a child element per field. Both share the error document.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"penta-xml-feed/internal/normalize"
)

// Schema names accepted by New.
const (
	SchemaAttribute = "attribute"
	SchemaElement   = "element"
)

// Document is one complete rendered feed. It is never modified after it has
// been built.
type Document struct {
	Body        []byte
	GeneratedAt time.Time
	Valid       bool
	Items       int
}

// Size returns the body length in bytes.
func (d Document) Size() int {
	return len(d.Body)
}

// Renderer turns a record sequence into a document.
type Renderer interface {
	// Schema returns the schema name.
	Schema() string

	// Render serializes all records. The body depends on records only, so
	// the same input always yields the same bytes.
	Render(records []normalize.Record) (Document, error)

	// RenderError builds the error variant carrying message.
	RenderError(message string) Document
}

// New returns the renderer for schema.
func New(schema string) (Renderer, error) {
	switch schema {
	case SchemaAttribute, "":
		return NewAttributeRenderer(), nil
	case SchemaElement:
		return NewElementRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown feed schema %q", schema)
	}
}

// clock is shared by both renderers so tests can pin timestamps.
type clock struct {
	now func() time.Time
}

func (c clock) time() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}

// RenderError builds the error variant carrying message.
func (c clock) RenderError(message string) Document {
	at := c.time()
	return Document{
		Body:        ErrorDocument(message, at),
		GeneratedAt: at,
		Valid:       false,
	}
}

type errorFeed struct {
	XMLName     xml.Name `xml:"Products"`
	Error       string   `xml:"error,attr"`
	GeneratedAt string   `xml:"generatedAt,attr"`
	Message     string   `xml:"Error"`
}

// ErrorDocument renders a Products root flagged with error="true" that holds
// a single Error element and no products.
func ErrorDocument(message string, at time.Time) []byte {
	body, err := encode(errorFeed{
		Error:       "true",
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Message:     message,
	})
	if err != nil {
		// Only reachable if encoding/xml rejects a plain string struct.
		return []byte(xml.Header + `<Products error="true"><Error>render failure</Error></Products>` + "\n")
	}
	return body
}

// encode writes the XML declaration followed by v, indented.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush feed: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
