package document

import (
	"fmt"
	"strings"

	"github.com/straye-as/salesops-api/internal/config"
)

// PageSize is a physical paper size in millimetres
type PageSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	Letter = PageSize{Name: "letter", WidthMM: 215.9, HeightMM: 279.4}
	Legal  = PageSize{Name: "legal", WidthMM: 215.9, HeightMM: 355.6}
)

// PageSizeByName resolves "letter" or "legal"
func PageSizeByName(name string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Letter.Name:
		return Letter, nil
	case Legal.Name:
		return Legal, nil
	}
	return PageSize{}, fmt.Errorf("unsupported page size %q", name)
}

// Geometry describes the printable area of a page
type Geometry struct {
	Size         PageSize
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	// Footer is reserved below the content for the page number
	Footer float64
}

// GeometryFromConfig builds the page geometry from document configuration
func GeometryFromConfig(cfg *config.DocumentConfig) (Geometry, error) {
	size, err := PageSizeByName(cfg.PageSize)
	if err != nil {
		return Geometry{}, err
	}
	g := Geometry{
		Size:         size,
		MarginTop:    cfg.MarginTop,
		MarginBottom: cfg.MarginBottom,
		MarginLeft:   cfg.MarginLeft,
		MarginRight:  cfg.MarginRight,
		Footer:       cfg.FooterHeight,
	}
	if g.PrintableHeight() <= 0 || g.PrintableWidth() <= 0 {
		return Geometry{}, fmt.Errorf("margins leave no printable area on %s", size.Name)
	}
	return g, nil
}

// PrintableHeight is the page height less margins and footer
func (g Geometry) PrintableHeight() float64 {
	return g.Size.HeightMM - g.MarginTop - g.MarginBottom - g.Footer
}

// PrintableWidth is the page width less side margins
func (g Geometry) PrintableWidth() float64 {
	return g.Size.WidthMM - g.MarginLeft - g.MarginRight
}
