package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

const quotationTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Quotation {{.Q.Reference}}</title>
<style>
@page { size: {{mm .Geometry.Size.WidthMM}} {{mm .Geometry.Size.HeightMM}}; margin: 0; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; color: #212529; margin: 0; }
.page { box-sizing: border-box; width: {{mm .Geometry.Size.WidthMM}}; padding: {{mm .Geometry.MarginTop}} {{mm .Geometry.MarginRight}} {{mm .Geometry.MarginBottom}} {{mm .Geometry.MarginLeft}}; position: relative; }
.paged .page { height: {{mm .Geometry.Size.HeightMM}}; overflow: hidden; page-break-after: always; }
.paged .page:last-child { page-break-after: auto; }
.block { box-sizing: border-box; overflow: hidden; }
.banner { display: flex; justify-content: space-between; border-bottom: 2px solid #212529; }
.banner h1 { font-size: 14pt; margin: 4mm 0 1mm; }
.banner .meta { text-align: right; padding-top: 4mm; }
.client { display: flex; gap: 6mm; padding-top: 3mm; }
.client > div { flex: 1; }
.grid { display: grid; grid-template-columns: 1fr 5fr 1fr 2fr 1fr 2fr; align-items: start; }
.thead { background: #212529; color: #fff; font-weight: bold; padding-top: 2.5mm; }
.num { text-align: right; }
.row { border-bottom: 1px solid #dee2e6; padding-top: 2mm; }
.row img { max-width: 18mm; max-height: 18mm; float: right; }
.sku { color: #5a5a5a; font-size: 7pt; }
.summary { margin-left: 50%; background: #f0f0f0; padding-top: 4mm; }
.summary div { display: flex; justify-content: space-between; height: 6mm; }
.total { font-weight: bold; }
.section h3 { font-size: 9pt; margin: 2mm 0; }
.signatures { display: flex; justify-content: space-around; margin-top: 8mm; text-align: center; }
.signatures .line { border-top: 1px solid #212529; width: 50mm; margin-top: 10mm; padding-top: 1mm; }
.footer { position: absolute; bottom: {{mm .Geometry.MarginBottom}}; right: {{mm .Geometry.MarginRight}}; font-size: 7pt; color: #5a5a5a; }
</style>
</head>
<body class="{{if .Paged}}paged{{else}}preview{{end}}">
{{- range .Pages}}
<section class="page">
{{- range .Blocks}}
<div class="block {{.Kind}}"{{if $.Paged}} style="height: {{mm .Height}}"{{end}}>
{{- if eq .Kind "banner"}}
  <div><h1>{{$.Q.LegalName}}</h1><strong>QUOTATION</strong></div>
  <div class="meta">Ref: {{$.Q.Reference}}<br>Date: {{date $.Q.Date}}</div>
{{- else if eq .Kind "client"}}
  <div><strong>Client</strong><br>{{$.Q.Client.CompanyName}}{{with $.Q.Client.ContactPerson}}<br>{{.}}{{end}}{{with $.Q.Client.ContactNumber}}<br>{{.}}{{end}}{{with $.Q.Client.EmailAddress}}<br>{{.}}{{end}}</div>
  <div><strong>Address</strong>{{with $.Q.Client.Address}}<br>{{.}}{{end}}</div>
{{- else if eq .Kind "table_header"}}
  <div class="grid thead"><span>#</span><span>Product</span><span class="num">Qty</span><span class="num">Unit Price</span><span class="num">Disc.</span><span class="num">Amount</span></div>
{{- else if eq .Kind "row"}}{{with .Line}}
  <div class="grid row">
    <span>{{.Number}}</span>
    <span>{{if .Image}}<img src="{{.Image}}" alt="">{{end}}<strong>{{.Title}}</strong>{{if .SKUs}}<br><span class="sku">{{join .SKUs ", "}}</span>{{end}}{{range plain .Description}}<br>{{.}}{{end}}</span>
    <span class="num">{{.Quantity}}</span>
    <span class="num">{{money .UnitPrice}}</span>
    <span class="num">{{if .Discounted}}{{money .Discount}}{{else}}-{{end}}</span>
    <span class="num">{{money .Total}}</span>
  </div>{{end}}
{{- else if eq .Kind "summary"}}{{with $.Q.Summary}}
  <div class="summary">
    <div><span>Subtotal</span><span>{{currency .Subtotal}}</span></div>
    <div><span>Discount ({{percent .DiscountPercent}})</span><span>{{currency (neg .DiscountTotal)}}</span></div>
    <div class="total"><span>Total</span><span>{{currency .Total}}</span></div>
    <div><span></span><span>{{.VATLabel}}</span></div>
  </div>{{end}}
{{- else if eq .Kind "logistics_notes"}}
  <div class="section"><h3>Logistics Notes</h3><ul>{{range $.Q.LogisticsNotes}}<li>{{.}}</li>{{end}}</ul></div>
{{- else if eq .Kind "terms_signatures"}}
  <div class="section"><h3>Terms and Conditions</h3><ul>{{range $.Q.Terms}}<li>{{.}}</li>{{end}}</ul></div>
  <div class="signatures">{{range $.Q.Signatures}}<div><div>{{.Name}}</div><div class="line">{{.Role}}</div></div>{{end}}</div>
{{- end}}
</div>
{{- end}}
{{- if $.Paged}}<div class="footer">Page {{.Number}} of {{$.PageCount}}</div>{{end}}
</section>
{{- end}}
</body>
</html>
`

var quotationHTML = template.Must(template.New("quotation").Funcs(template.FuncMap{
	"mm":       func(v float64) string { return fmt.Sprintf("%.1fmm", v) },
	"date":     FormatDate,
	"money":    FormatMoney,
	"currency": FormatCurrency,
	"percent":  FormatPercent,
	"plain":    PlainText,
	"join":     strings.Join,
	"neg":      negate,
}).Parse(quotationTemplate))

type blockView struct {
	Kind   string
	Height float64
	Line   *Line
}

type pageView struct {
	Number int
	Blocks []blockView
}

type htmlView struct {
	Q         *Quotation
	Geometry  Geometry
	Paged     bool
	Pages     []pageView
	PageCount int
}

func toView(q *Quotation, b Block, h float64) blockView {
	v := blockView{Kind: b.Kind.String(), Height: h}
	if b.Kind == BlockRow {
		v.Line = &q.Lines[b.Index]
	}
	return v
}

// RenderPagedHTML renders every laid out page as a fixed-size section
func RenderPagedHTML(q *Quotation, g Geometry, pages []Page) ([]byte, error) {
	view := htmlView{Q: q, Geometry: g, Paged: true, PageCount: len(pages)}
	for _, p := range pages {
		pv := pageView{Number: p.Number}
		for _, pl := range p.Placements {
			pv.Blocks = append(pv.Blocks, toView(q, pl.Block, pl.Height))
		}
		view.Pages = append(view.Pages, pv)
	}
	return executeTemplate(view)
}

// RenderPreviewHTML renders the whole document as one continuous page with the banner once
func RenderPreviewHTML(q *Quotation, g Geometry, pages []Page) ([]byte, error) {
	view := htmlView{Q: q, Geometry: g, PageCount: 1}
	pv := pageView{Number: 1}
	bannerSeen := false
	for _, p := range pages {
		for _, pl := range p.Placements {
			if pl.Kind == BlockBanner {
				if bannerSeen {
					continue
				}
				bannerSeen = true
			}
			pv.Blocks = append(pv.Blocks, toView(q, pl.Block, pl.Height))
		}
	}
	view.Pages = []pageView{pv}
	return executeTemplate(view)
}

func executeTemplate(view htmlView) ([]byte, error) {
	var buf bytes.Buffer
	if err := quotationHTML.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("executing quotation template: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewRenderer produces the single-page HTML preview
type PreviewRenderer struct {
	geometry Geometry
}

// NewPreviewRenderer creates an HTML preview renderer
func NewPreviewRenderer() *PreviewRenderer {
	return &PreviewRenderer{}
}

// ContentType implements Renderer
func (r *PreviewRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer
func (r *PreviewRenderer) Extension() string { return "html" }

// Begin implements Renderer
func (r *PreviewRenderer) Begin(ctx context.Context, q *Quotation, g Geometry) error {
	r.geometry = g
	return nil
}

// Finish implements Renderer
func (r *PreviewRenderer) Finish(ctx context.Context, q *Quotation, pages []Page) ([]byte, error) {
	return RenderPreviewHTML(q, r.geometry, pages)
}
