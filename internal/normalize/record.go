package normalize

// Record is one catalog item reshaped into the feed's fixed field set.
// Every field is already a display string; escaping is left to the renderer.
// The comment on each field names the feed attribute it is written to.
type Record struct {
	TopGroupCode  string // UstGrup_Kod
	TopGroupName  string // UstGrup_Ad
	MainGroupCode string // AnaGrup_Kod
	MainGroupName string // AnaGrup_Ad
	SubGroupCode  string // AltGrup_Kod
	SubGroupName  string // AltGrup_Ad

	Code             string // Kod
	Name             string // Ad
	ProductGroup     string // UrunGrubu
	ProductGroupCode string // UrunGrubuKodu

	Currency     string // Doviz
	EndUserPrice string // Fiyat_SKullanici
	DealerPrice  string // Fiyat_Bayi
	SpecialPrice string // Fiyat_Ozel
	Quantity     string // Miktar

	Warranty           string // Garanti
	BrandCode          string // Marka
	BrandName          string // MarkaIsim
	TaxRate            string // Vergi
	Volume             string // Desi
	ManufacturerPartNo string // UreticiKod
	Barcode            string // UreticiBarkodNo
	OldCode            string // Eski_Kod
	Dimensions         string // Boyut
	DimensionUnit      string // Boyut_Birim
	NetWeight          string // Net_Agirlik
	GrossWeight        string // Brut_Agirlik
	Origin             string // Mensei
	ShopCategories     string // OzelKategori
	SpecialStock       string // Ozel_Stok
	DiscountPercent    string // IskontoYuzde
}
