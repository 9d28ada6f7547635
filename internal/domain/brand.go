package domain

// Brand is one of the legal entities a quotation can be issued under
type Brand string

const (
	BrandEcoshift    Brand = "ecoshift"
	BrandDisruptive  Brand = "disruptive"
	BrandBuildchem   Brand = "buildchem"
	BrandProgressive Brand = "progressive"
)

type brandInfo struct {
	prefix    string
	legalName string
}

var brands = map[Brand]brandInfo{
	BrandEcoshift:    {prefix: "EC", legalName: "Ecoshift Corporation"},
	BrandDisruptive:  {prefix: "DS", legalName: "Disruptive Solutions Inc."},
	BrandBuildchem:   {prefix: "BC", legalName: "Buildchem Solutions Inc."},
	BrandProgressive: {prefix: "PS", legalName: "Progressive Dynamics Inc."},
}

// AllBrands returns every brand in a stable order
func AllBrands() []Brand {
	return []Brand{BrandEcoshift, BrandDisruptive, BrandBuildchem, BrandProgressive}
}

// IsValidBrand checks if the given string is a known brand
func IsValidBrand(s string) bool {
	_, ok := brands[Brand(s)]
	return ok
}

// GetBrandPrefix returns the quotation number prefix for a brand.
// Unknown brands return an empty string.
func GetBrandPrefix(b Brand) string {
	return brands[b].prefix
}

// LegalName returns the registered name printed on documents
func (b Brand) LegalName() string {
	if info, ok := brands[b]; ok {
		return info.legalName
	}
	return string(b)
}
