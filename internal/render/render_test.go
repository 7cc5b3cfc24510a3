package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penta-xml-feed/internal/normalize"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() clock {
	return clock{now: func() time.Time { return fixedTime }}
}

func sampleRecords() []normalize.Record {
	return []normalize.Record{
		{
			TopGroupCode: "01", TopGroupName: "Bilgisayar",
			MainGroupCode: "0101", MainGroupName: "Notebook",
			SubGroupCode: "010101", SubGroupName: "Oyun",
			Code: "NB-1", Name: "Laptop & Co <Pro>",
			ProductGroup: "Notebook", ProductGroupCode: "MG-1",
			Currency: "USD", EndUserPrice: "10.00", DealerPrice: "8.50", SpecialPrice: "",
			Quantity: "200+", Warranty: "24", BrandCode: "ACM", BrandName: "Acme",
			TaxRate: "20", Barcode: "869",
			Dimensions: "10h x 20w", DimensionUnit: "cm",
		},
		{Code: "NB-2", Name: `Quote " and ]]> end`, Currency: "EUR", Quantity: "0"},
	}
}

func TestNew(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	assert.Equal(t, SchemaAttribute, r.Schema())

	r, err = New(SchemaElement)
	require.NoError(t, err)
	assert.Equal(t, SchemaElement, r.Schema())

	_, err = New("json")
	assert.Error(t, err)
}

func TestAttributeRenderer_Render(t *testing.T) {
	// Arrange
	r := &AttributeRenderer{clock: fixedClock()}
	records := sampleRecords()

	// Act
	doc, err := r.Render(records)

	// Assert
	require.NoError(t, err)
	assert.True(t, doc.Valid)
	assert.Equal(t, 2, doc.Items)
	assert.Equal(t, fixedTime, doc.GeneratedAt)
	assert.Equal(t, len(doc.Body), doc.Size())
	assert.True(t, strings.HasPrefix(string(doc.Body), xml.Header))

	var parsed attributeFeed
	require.NoError(t, xml.Unmarshal(doc.Body, &parsed))
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "Laptop & Co <Pro>", parsed.Items[0].Ad)
	assert.Equal(t, "200+", parsed.Items[0].Miktar)
	assert.Equal(t, "10h x 20w", parsed.Items[0].Boyut)
	assert.Equal(t, `Quote " and ]]> end`, parsed.Items[1].Ad)
	assert.Equal(t, "EUR", parsed.Items[1].Doviz)
}

func TestAttributeRenderer_Render_EmitsEveryAttribute(t *testing.T) {
	r := NewAttributeRenderer()

	doc, err := r.Render([]normalize.Record{{}})
	require.NoError(t, err)

	body := string(doc.Body)
	attrs := []string{
		"UstGrup_Kod", "UstGrup_Ad", "AnaGrup_Kod", "AnaGrup_Ad", "AltGrup_Kod", "AltGrup_Ad",
		"Kod", "Ad", "UrunGrubu", "UrunGrubuKodu", "Doviz", "Fiyat_SKullanici", "Fiyat_Bayi",
		"Fiyat_Ozel", "Miktar", "Garanti", "Marka", "MarkaIsim", "Vergi", "Desi", "UreticiKod",
		"UreticiBarkodNo", "Eski_Kod", "Boyut", "Boyut_Birim", "Net_Agirlik", "Brut_Agirlik",
		"Mensei", "OzelKategori", "Ozel_Stok", "IskontoYuzde",
	}
	for _, a := range attrs {
		assert.Contains(t, body, " "+a+`=""`, a)
	}
}

func TestRenderers_EmptyInput(t *testing.T) {
	for _, r := range []Renderer{NewAttributeRenderer(), NewElementRenderer()} {
		t.Run(r.Schema(), func(t *testing.T) {
			doc, err := r.Render(nil)
			require.NoError(t, err)
			assert.True(t, doc.Valid)
			assert.Equal(t, 0, doc.Items)
			assert.Contains(t, string(doc.Body), "<Products></Products>")
		})
	}
}

func TestRenderers_Deterministic(t *testing.T) {
	for _, r := range []Renderer{NewAttributeRenderer(), NewElementRenderer()} {
		t.Run(r.Schema(), func(t *testing.T) {
			first, err := r.Render(sampleRecords())
			require.NoError(t, err)
			second, err := r.Render(sampleRecords())
			require.NoError(t, err)
			assert.Equal(t, first.Body, second.Body)
		})
	}
}

func TestElementRenderer_Render(t *testing.T) {
	r := &ElementRenderer{clock: fixedClock()}

	doc, err := r.Render(sampleRecords())
	require.NoError(t, err)
	assert.True(t, doc.Valid)
	assert.Equal(t, 2, doc.Items)

	body := string(doc.Body)
	assert.Contains(t, body, "<Ad><![CDATA[Laptop & Co <Pro>]]></Ad>")
	assert.Contains(t, body, "<Miktar>200+</Miktar>")
	assert.Contains(t, body, "<Fiyat_Ozel></Fiyat_Ozel>")
	assert.NotContains(t, body, "<Boyut>")

	var parsed elementFeed
	require.NoError(t, xml.Unmarshal(doc.Body, &parsed))
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "Laptop & Co <Pro>", parsed.Items[0].Ad.Text)
	assert.Equal(t, `Quote " and ]]> end`, parsed.Items[1].Ad.Text)
	assert.Equal(t, "NB-2", parsed.Items[1].Kod)
}

// tokenize reads body to EOF and fails on the first syntax error.
func tokenize(t *testing.T, body []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}

func TestRenderers_ControlCharactersStayWellFormed(t *testing.T) {
	records := []normalize.Record{
		{Code: "C-1", Name: "bad\x01name\x0b"},
		{Code: "C-2", Name: "tab\tkept, ]]> split, \xffbyte"},
	}

	for _, r := range []Renderer{
		&AttributeRenderer{clock: fixedClock()},
		&ElementRenderer{clock: fixedClock()},
	} {
		t.Run(r.Schema(), func(t *testing.T) {
			doc, err := r.Render(records)
			require.NoError(t, err)
			tokenize(t, doc.Body)
		})
	}

	doc, err := (&ElementRenderer{clock: fixedClock()}).Render(records)
	require.NoError(t, err)
	var parsed elementFeed
	require.NoError(t, xml.Unmarshal(doc.Body, &parsed))
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "bad\uFFFDname\uFFFD", parsed.Items[0].Ad.Text)
	assert.Equal(t, "tab\tkept, ]]> split, \uFFFDbyte", parsed.Items[1].Ad.Text)
}

func TestXMLChars(t *testing.T) {
	tests := map[string]string{
		"plain":            "plain",
		"a\x00b":           "a\uFFFDb",
		"line\r\nbreak":    "line\r\nbreak",
		"\uFFFE":           "\uFFFD",
		"emoji \U0001F600": "emoji \U0001F600",
	}

	for in, expected := range tests {
		assert.Equal(t, expected, xmlChars(in), "input %q", in)
	}
}

func TestRenderError(t *testing.T) {
	for _, r := range []Renderer{
		&AttributeRenderer{clock: fixedClock()},
		&ElementRenderer{clock: fixedClock()},
	} {
		t.Run(r.Schema(), func(t *testing.T) {
			doc := r.RenderError("upstream returned 500 & <died>")

			assert.False(t, doc.Valid)
			assert.Equal(t, fixedTime, doc.GeneratedAt)

			var parsed errorFeed
			require.NoError(t, xml.Unmarshal(doc.Body, &parsed))
			assert.Equal(t, "true", parsed.Error)
			assert.Equal(t, "2026-03-01T12:00:00Z", parsed.GeneratedAt)
			assert.Equal(t, "upstream returned 500 & <died>", parsed.Message)
			assert.NotContains(t, string(doc.Body), "<Stok")
			assert.NotContains(t, string(doc.Body), "<Product>")
		})
	}
}
