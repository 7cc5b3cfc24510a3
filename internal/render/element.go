package render

import (
	"encoding/xml"
	"strings"
	"unicode/utf8"

	"penta-xml-feed/internal/normalize"
)

type elementFeed struct {
	XMLName xml.Name  `xml:"Products"`
	Items   []product `xml:"Product"`
}

// cdata wraps free text in a character-data block. The encoder splits any
// "]]>" in the text across two blocks but copies every other character
// verbatim, so the text must already be valid XML character data.
type cdata struct {
	Text string `xml:",cdata"`
}

func newCDATA(s string) cdata {
	return cdata{Text: xmlChars(s)}
}

// xmlChars replaces runes outside the XML 1.0 Char production with U+FFFD,
// the same substitution the encoder applies to escaped text. Invalid UTF-8
// bytes are replaced too.
func xmlChars(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, notXMLChar) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if notXMLChar(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}

func notXMLChar(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return false
	case r >= 0x20 && r <= 0xD7FF:
		return false
	case r >= 0xE000 && r <= 0xFFFD:
		return false
	case r >= 0x10000 && r <= 0x10FFFF:
		return false
	}
	return true
}

type product struct {
	UstGrupAd       string `xml:"UstGrup_Ad"`
	AnaGrupAd       string `xml:"AnaGrup_Ad"`
	AltGrupAd       string `xml:"AltGrup_Ad"`
	Kod             string `xml:"Kod"`
	Ad              cdata  `xml:"Ad"`
	UrunGrubu       string `xml:"UrunGrubu"`
	UrunGrubuKodu   string `xml:"UrunGrubuKodu"`
	Doviz           string `xml:"Doviz"`
	FiyatSKullanici string `xml:"Fiyat_SKullanici"`
	FiyatBayi       string `xml:"Fiyat_Bayi"`
	FiyatOzel       string `xml:"Fiyat_Ozel"`
	Miktar          string `xml:"Miktar"`
	Marka           string `xml:"Marka"`
	MarkaIsim       string `xml:"MarkaIsim"`
	Vergi           string `xml:"Vergi"`
	UreticiBarkodNo string `xml:"UreticiBarkodNo"`
}

// ElementRenderer writes the Product schema. The product name is always a
// CDATA block; every other field is escaped text.
type ElementRenderer struct {
	clock
}

// NewElementRenderer creates the Product schema renderer.
func NewElementRenderer() *ElementRenderer {
	return &ElementRenderer{}
}

// Schema implements Renderer.
func (r *ElementRenderer) Schema() string { return SchemaElement }

// Render implements Renderer.
func (r *ElementRenderer) Render(records []normalize.Record) (Document, error) {
	feed := elementFeed{Items: make([]product, len(records))}
	for i, rec := range records {
		feed.Items[i] = product{
			UstGrupAd:       rec.TopGroupName,
			AnaGrupAd:       rec.MainGroupName,
			AltGrupAd:       rec.SubGroupName,
			Kod:             rec.Code,
			Ad:              newCDATA(rec.Name),
			UrunGrubu:       rec.ProductGroup,
			UrunGrubuKodu:   rec.ProductGroupCode,
			Doviz:           rec.Currency,
			FiyatSKullanici: rec.EndUserPrice,
			FiyatBayi:       rec.DealerPrice,
			FiyatOzel:       rec.SpecialPrice,
			Miktar:          rec.Quantity,
			Marka:           rec.BrandCode,
			MarkaIsim:       rec.BrandName,
			Vergi:           rec.TaxRate,
			UreticiBarkodNo: rec.Barcode,
		}
	}

	body, err := encode(feed)
	if err != nil {
		return Document{}, err
	}
	return Document{Body: body, GeneratedAt: r.time(), Valid: true, Items: len(records)}, nil
}
