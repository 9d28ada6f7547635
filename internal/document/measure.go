package document

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Fixed block heights in millimetres
const (
	BannerHeight      = 30.0
	TableHeaderHeight = 9.0
	SignatureHeight   = 30.0
	sectionTitle      = 8.0
	blockPadding      = 4.0
	minRowHeight      = 9.0
	imageRowHeight    = 22.0
	summaryRowHeight  = 6.0
)

// descriptionColumns is the share of the 12 column grid given to the product cell
const descriptionColumns = 5.0

// Measurer estimates the rendered height of a block in millimetres
type Measurer interface {
	Measure(q *Quotation, b Block) float64
}

// TextMeasurer estimates heights by wrapping text at a fixed average glyph width
type TextMeasurer struct {
	Width      float64
	CharWidth  float64
	LineHeight float64
}

// NewTextMeasurer returns a measurer tuned for 9pt body text
func NewTextMeasurer(printableWidth float64) *TextMeasurer {
	return &TextMeasurer{Width: printableWidth, CharWidth: 1.9, LineHeight: 4.5}
}

// Lines returns how many wrapped lines text needs inside widthMM
func (m *TextMeasurer) Lines(text string, widthMM float64) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	perLine := int(widthMM / m.CharWidth)
	if perLine < 1 {
		perLine = 1
	}
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(strings.TrimSpace(para))
		if n == 0 {
			continue
		}
		lines += int(math.Ceil(float64(n) / float64(perLine)))
	}
	return lines
}

// Measure implements Measurer
func (m *TextMeasurer) Measure(q *Quotation, b Block) float64 {
	switch b.Kind {
	case BlockBanner:
		return BannerHeight
	case BlockClient:
		c := q.Client
		lines := 0
		for _, field := range []string{c.CompanyName, c.ContactPerson, c.ContactNumber, c.EmailAddress} {
			lines += m.Lines(field, m.Width/2)
		}
		lines += m.Lines(c.Address, m.Width/2)
		return sectionTitle + float64(lines)*m.LineHeight + blockPadding
	case BlockTableHeader:
		return TableHeaderHeight
	case BlockRow:
		return m.measureRow(q.Lines[b.Index])
	case BlockSummary:
		return 4*summaryRowHeight + blockPadding
	case BlockLogisticsNotes:
		if len(q.LogisticsNotes) == 0 {
			return 0
		}
		lines := 0
		for _, note := range q.LogisticsNotes {
			lines += m.Lines(note, m.Width)
		}
		return sectionTitle + float64(lines)*m.LineHeight + blockPadding
	case BlockTermsAndSignatures:
		lines := 0
		for _, term := range q.Terms {
			lines += m.Lines(term, m.Width)
		}
		return sectionTitle + float64(lines)*m.LineHeight + SignatureHeight
	}
	return 0
}

func (m *TextMeasurer) measureRow(line Line) float64 {
	width := m.Width * descriptionColumns / 12
	lines := m.Lines(line.Title, width)
	lines += m.Lines(strings.Join(line.SKUs, ", "), width)
	for _, text := range PlainText(line.Description) {
		lines += m.Lines(text, width)
	}

	h := float64(lines)*m.LineHeight + blockPadding
	if line.Image != "" && h < imageRowHeight {
		h = imageRowHeight
	}
	if h < minRowHeight {
		h = minRowHeight
	}
	return h
}
