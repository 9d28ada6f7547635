package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	headerBg   = &props.Color{Red: 33, Green: 37, Blue: 41}
	summaryBg  = &props.Color{Red: 240, Green: 240, Blue: 240}
	mutedColor = &props.Color{Red: 90, Green: 90, Blue: 90}
	white      = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// PDFRenderer renders the layout natively with maroto, one maroto page per layout page
type PDFRenderer struct {
	builder config.Builder
}

// NewPDFRenderer creates a native PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// ContentType implements Renderer
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer
func (r *PDFRenderer) Extension() string { return "pdf" }

// Begin implements Renderer
func (r *PDFRenderer) Begin(ctx context.Context, q *Quotation, g Geometry) error {
	size, err := marotoPageSize(g.Size)
	if err != nil {
		return err
	}
	if g.PrintableHeight() <= 0 {
		return fmt.Errorf("no printable height on %s", g.Size.Name)
	}
	b := config.NewBuilder().
		WithPageSize(size).
		WithTopMargin(g.MarginTop).
		WithLeftMargin(g.MarginLeft).
		WithRightMargin(g.MarginRight).
		WithBottomMargin(g.MarginBottom).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   mutedColor,
		})
	r.builder = b
	return nil
}

// Finish implements Renderer
func (r *PDFRenderer) Finish(ctx context.Context, q *Quotation, pages []Page) ([]byte, error) {
	if r.builder == nil {
		return nil, fmt.Errorf("renderer not started")
	}
	m := maroto.New(r.builder.Build())

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pg := page.New()
		for _, pl := range p.Placements {
			pg.Add(r.blockRows(q, pl.Block)...)
		}
		m.AddPages(pg)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func marotoPageSize(s PageSize) (pagesize.Type, error) {
	switch s.Name {
	case Letter.Name:
		return pagesize.Letter, nil
	case Legal.Name:
		return pagesize.Legal, nil
	}
	return "", fmt.Errorf("unsupported page size %q", s.Name)
}

func (r *PDFRenderer) blockRows(q *Quotation, b Block) []core.Row {
	switch b.Kind {
	case BlockBanner:
		return []core.Row{bannerRow(q, b.Height)}
	case BlockClient:
		return []core.Row{clientRow(q, b.Height)}
	case BlockTableHeader:
		return []core.Row{tableHeaderRow(b.Height)}
	case BlockRow:
		return []core.Row{lineRow(q.Lines[b.Index], b.Height)}
	case BlockSummary:
		return summaryRows(q.Summary, b.Height)
	case BlockLogisticsNotes:
		return []core.Row{listRow("Logistics Notes", q.LogisticsNotes, b.Height)}
	case BlockTermsAndSignatures:
		return termsRows(q, b.Height)
	}
	return nil
}

func bannerRow(q *Quotation, h float64) core.Row {
	return row.New(h).Add(
		col.New(8).Add(
			text.New(q.LegalName, props.Text{Size: 14, Style: fontstyle.Bold, Top: 4}),
			text.New("QUOTATION", props.Text{Size: 10, Style: fontstyle.Bold, Top: 13, Color: mutedColor}),
		),
		col.New(4).Add(
			text.New("Ref: "+q.Reference, props.Text{Size: 9, Align: align.Right, Top: 5}),
			text.New("Date: "+FormatDate(q.Date), props.Text{Size: 9, Align: align.Right, Top: 11}),
		),
	)
}

func clientRow(q *Quotation, h float64) core.Row {
	c := q.Client
	left := []core.Component{text.New("Client", props.Text{Size: 9, Style: fontstyle.Bold})}
	top := 6.0
	for _, s := range []string{c.CompanyName, c.ContactPerson, c.ContactNumber, c.EmailAddress} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		left = append(left, text.New(s, props.Text{Size: 9, Top: top}))
		top += 4.5
	}
	right := []core.Component{text.New("Address", props.Text{Size: 9, Style: fontstyle.Bold})}
	if c.Address != "" {
		right = append(right, text.New(c.Address, props.Text{Size: 9, Top: 6}))
	}
	return row.New(h).Add(col.New(6).Add(left...), col.New(6).Add(right...))
}

func tableHeaderRow(h float64) core.Row {
	ht := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: white, Top: 2.5}
	hl := ht
	hl.Align = align.Left
	cell := &props.Cell{BackgroundColor: headerBg}
	return row.New(h).Add(
		col.New(1).Add(text.New("#", ht)).WithStyle(cell),
		col.New(5).Add(text.New("Product", hl)).WithStyle(cell),
		col.New(1).Add(text.New("Qty", ht)).WithStyle(cell),
		col.New(2).Add(text.New("Unit Price", ht)).WithStyle(cell),
		col.New(1).Add(text.New("Disc.", ht)).WithStyle(cell),
		col.New(2).Add(text.New("Amount", ht)).WithStyle(cell),
	)
}

func lineRow(l Line, h float64) core.Row {
	base := props.Text{Size: 8, Align: align.Center, Top: 2}
	right := base
	right.Align = align.Right

	product := []core.Component{text.New(l.Title, props.Text{Size: 8, Style: fontstyle.Bold, Top: 2})}
	top := 6.5
	if len(l.SKUs) > 0 {
		product = append(product, text.New(strings.Join(l.SKUs, ", "), props.Text{Size: 7, Top: top, Color: mutedColor}))
		top += 4.5
	}
	if desc := PlainText(l.Description); len(desc) > 0 {
		product = append(product, text.New(strings.Join(desc, "; "), props.Text{Size: 7, Top: top}))
	}

	discount := "-"
	if l.Discounted {
		discount = FormatMoney(l.Discount)
	}

	return row.New(h).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", l.Number), base)),
		col.New(5).Add(product...),
		col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), base)),
		col.New(2).Add(text.New(FormatMoney(l.UnitPrice), right)),
		col.New(1).Add(text.New(discount, right)),
		col.New(2).Add(text.New(FormatMoney(l.Total), right)),
	)
}

func summaryRows(s Summary, h float64) []core.Row {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 1}
	value := props.Text{Size: 9, Align: align.Right, Top: 1}
	cell := &props.Cell{BackgroundColor: summaryBg}

	entry := func(l, v string, height float64) core.Row {
		return row.New(height).Add(
			col.New(8).Add(text.New(l, label)).WithStyle(cell),
			col.New(4).Add(text.New(v, value)).WithStyle(cell),
		)
	}
	rh := (h - blockPadding) / 4
	return []core.Row{
		row.New(blockPadding),
		entry("Subtotal", "PHP "+FormatMoney(s.Subtotal), rh),
		entry("Discount ("+FormatPercent(s.DiscountPercent)+")", "PHP "+FormatMoney(s.DiscountTotal.Neg()), rh),
		entry("Total", "PHP "+FormatMoney(s.Total), rh),
		entry("", s.VATLabel, rh),
	}
}

func listRow(title string, items []string, h float64) core.Row {
	comps := []core.Component{text.New(title, props.Text{Size: 9, Style: fontstyle.Bold, Top: 2})}
	top := sectionTitle
	for _, item := range items {
		comps = append(comps, text.New("• "+item, props.Text{Size: 8, Top: top}))
		top += 4.5
	}
	return row.New(h).Add(col.New(12).Add(comps...))
}

func termsRows(q *Quotation, h float64) []core.Row {
	termsHeight := h - SignatureHeight
	rows := []core.Row{listRow("Terms and Conditions", q.Terms, termsHeight)}

	cols := make([]core.Col, 0, len(q.Signatures))
	size := 12 / max(len(q.Signatures), 1)
	for _, sig := range q.Signatures {
		cols = append(cols, col.New(size).Add(
			text.New(sig.Name, props.Text{Size: 9, Align: align.Center, Top: 14}),
			text.New("______________________", props.Text{Size: 9, Align: align.Center, Top: 17}),
			text.New(sig.Role, props.Text{Size: 8, Align: align.Center, Top: 22, Color: mutedColor}),
		))
	}
	return append(rows, row.New(SignatureHeight).Add(cols...))
}
