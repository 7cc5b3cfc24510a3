package render

import (
	"encoding/xml"

	"penta-xml-feed/internal/normalize"
)

type attributeFeed struct {
	XMLName xml.Name `xml:"Products"`
	Items   []stok   `xml:"Stok"`
}

type stok struct {
	UstGrupKod      string `xml:"UstGrup_Kod,attr"`
	UstGrupAd       string `xml:"UstGrup_Ad,attr"`
	AnaGrupKod      string `xml:"AnaGrup_Kod,attr"`
	AnaGrupAd       string `xml:"AnaGrup_Ad,attr"`
	AltGrupKod      string `xml:"AltGrup_Kod,attr"`
	AltGrupAd       string `xml:"AltGrup_Ad,attr"`
	Kod             string `xml:"Kod,attr"`
	Ad              string `xml:"Ad,attr"`
	UrunGrubu       string `xml:"UrunGrubu,attr"`
	UrunGrubuKodu   string `xml:"UrunGrubuKodu,attr"`
	Doviz           string `xml:"Doviz,attr"`
	FiyatSKullanici string `xml:"Fiyat_SKullanici,attr"`
	FiyatBayi       string `xml:"Fiyat_Bayi,attr"`
	FiyatOzel       string `xml:"Fiyat_Ozel,attr"`
	Miktar          string `xml:"Miktar,attr"`
	Garanti         string `xml:"Garanti,attr"`
	Marka           string `xml:"Marka,attr"`
	MarkaIsim       string `xml:"MarkaIsim,attr"`
	Vergi           string `xml:"Vergi,attr"`
	Desi            string `xml:"Desi,attr"`
	UreticiKod      string `xml:"UreticiKod,attr"`
	UreticiBarkodNo string `xml:"UreticiBarkodNo,attr"`
	EskiKod         string `xml:"Eski_Kod,attr"`
	Boyut           string `xml:"Boyut,attr"`
	BoyutBirim      string `xml:"Boyut_Birim,attr"`
	NetAgirlik      string `xml:"Net_Agirlik,attr"`
	BrutAgirlik     string `xml:"Brut_Agirlik,attr"`
	Mensei          string `xml:"Mensei,attr"`
	OzelKategori    string `xml:"OzelKategori,attr"`
	OzelStok        string `xml:"Ozel_Stok,attr"`
	IskontoYuzde    string `xml:"IskontoYuzde,attr"`
}

// AttributeRenderer writes the Stok schema: every field is an attribute and
// is escaped by the encoder.
type AttributeRenderer struct {
	clock
}

// NewAttributeRenderer creates the Stok schema renderer.
func NewAttributeRenderer() *AttributeRenderer {
	return &AttributeRenderer{}
}

// Schema implements Renderer.
func (r *AttributeRenderer) Schema() string { return SchemaAttribute }

// Render implements Renderer.
func (r *AttributeRenderer) Render(records []normalize.Record) (Document, error) {
	feed := attributeFeed{Items: make([]stok, len(records))}
	for i, rec := range records {
		feed.Items[i] = stok{
			UstGrupKod:      rec.TopGroupCode,
			UstGrupAd:       rec.TopGroupName,
			AnaGrupKod:      rec.MainGroupCode,
			AnaGrupAd:       rec.MainGroupName,
			AltGrupKod:      rec.SubGroupCode,
			AltGrupAd:       rec.SubGroupName,
			Kod:             rec.Code,
			Ad:              rec.Name,
			UrunGrubu:       rec.ProductGroup,
			UrunGrubuKodu:   rec.ProductGroupCode,
			Doviz:           rec.Currency,
			FiyatSKullanici: rec.EndUserPrice,
			FiyatBayi:       rec.DealerPrice,
			FiyatOzel:       rec.SpecialPrice,
			Miktar:          rec.Quantity,
			Garanti:         rec.Warranty,
			Marka:           rec.BrandCode,
			MarkaIsim:       rec.BrandName,
			Vergi:           rec.TaxRate,
			Desi:            rec.Volume,
			UreticiKod:      rec.ManufacturerPartNo,
			UreticiBarkodNo: rec.Barcode,
			EskiKod:         rec.OldCode,
			Boyut:           rec.Dimensions,
			BoyutBirim:      rec.DimensionUnit,
			NetAgirlik:      rec.NetWeight,
			BrutAgirlik:     rec.GrossWeight,
			Mensei:          rec.Origin,
			OzelKategori:    rec.ShopCategories,
			OzelStok:        rec.SpecialStock,
			IskontoYuzde:    rec.DiscountPercent,
		}
	}

	body, err := encode(feed)
	if err != nil {
		return Document{}, err
	}
	return Document{Body: body, GeneratedAt: r.time(), Valid: true, Items: len(records)}, nil
}
