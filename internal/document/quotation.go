package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/pricing"
)

// DefaultTerms are printed above the signature block
var DefaultTerms = []string{
	"Prices are valid for 30 days from the date of this quotation.",
	"Delivery lead time is subject to stock availability upon confirmation.",
	"Payment terms: 50% down payment, balance upon delivery.",
	"Warranty covers manufacturing defects only and excludes improper installation.",
}

// Line is one priced row of the quotation table
type Line struct {
	Number      int
	Title       string
	SKUs        []string
	Description string // HTML fragment
	Image       string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	Discounted  bool
}

// Summary is the pricing block under the table
type Summary struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountTotal   decimal.Decimal
	Total           decimal.Decimal
	VATLabel        string
}

// Signature is one signing role at the bottom of the document
type Signature struct {
	Role string
	Name string
}

// Quotation is the fully priced content of a quotation document
type Quotation struct {
	Reference      string
	Date           time.Time
	Brand          domain.Brand
	LegalName      string
	Client         domain.ClientBlock
	Lines          []Line
	Summary        Summary
	LogisticsNotes []string
	Terms          []string
	Signatures     []Signature
}

// NewQuotation prices a document request. now supplies the date when the request has none.
func NewQuotation(req *domain.QuotationDocumentRequest, now time.Time) (*Quotation, error) {
	if !domain.IsValidBrand(string(req.Brand)) {
		return nil, fmt.Errorf("unknown brand %q", req.Brand)
	}
	ref := strings.TrimSpace(req.QuotationNumber)
	if ref == "" {
		return nil, fmt.Errorf("quotation number is required")
	}

	pc := pricing.ResolveContext(req.VATType, req.DiscountPercent)
	products := pricing.FromInputs(req.Products)
	totals := pc.Totals(products)

	date := now
	if req.Date != nil {
		date = *req.Date
	}

	q := &Quotation{
		Reference: ref,
		Date:      date,
		Brand:     req.Brand,
		LegalName: req.Brand.LegalName(),
		Client:    req.Client,
		Summary: Summary{
			Subtotal:        totals.Subtotal,
			DiscountPercent: pc.Discount(),
			DiscountTotal:   totals.DiscountTotal,
			Total:           totals.Total,
			VATLabel:        pc.VATLabel(),
		},
		LogisticsNotes: nonEmpty(req.LogisticsNotes),
		Terms:          DefaultTerms,
		Signatures: []Signature{
			{Role: "Prepared by", Name: req.PreparedBy},
			{Role: "Approved by", Name: req.ApprovedBy},
			{Role: "Conforme", Name: req.Client.ContactPerson},
		},
	}

	q.Lines = make([]Line, len(products))
	for i, p := range products {
		lb := totals.Lines[i]
		q.Lines[i] = Line{
			Number:      i + 1,
			Title:       p.Title,
			SKUs:        p.SKUs,
			Description: p.Description,
			Image:       p.Image,
			Quantity:    lb.Quantity,
			UnitPrice:   lb.UnitPrice,
			Discount:    lb.Discount,
			Total:       lb.Total,
			Discounted:  lb.Discounted,
		}
	}
	return q, nil
}

// PDFFilename is the attachment name of the PDF export
func PDFFilename(ref string) string {
	return "QUOTATION_" + safeFilenamePart(ref) + ".pdf"
}

// SpreadsheetFilename is the attachment name of the XLSX export
func SpreadsheetFilename(ref string) string {
	return "Quotation_" + safeFilenamePart(ref) + ".xlsx"
}

// safeFilenamePart keeps letters, digits, dash and underscore
func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "draft"
	}
	return b.String()
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
