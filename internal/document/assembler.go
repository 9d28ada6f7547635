package document

import (
	"context"
	"errors"
	"fmt"
)

// ErrRendererInit is returned when the renderer cannot start a document
var ErrRendererInit = errors.New("renderer initialization failed")

// State is a step of document assembly
type State int

const (
	StateInitializing State = iota
	StateRenderingBanner
	StateRenderingClientBlock
	StateRenderingTableHeader
	StateRenderingRow
	StateRenderingSummary
	StateRenderingLogisticsNotes
	StateRenderingTermsAndSignatures
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRenderingBanner:
		return "rendering_banner"
	case StateRenderingClientBlock:
		return "rendering_client_block"
	case StateRenderingTableHeader:
		return "rendering_table_header"
	case StateRenderingRow:
		return "rendering_row"
	case StateRenderingSummary:
		return "rendering_summary"
	case StateRenderingLogisticsNotes:
		return "rendering_logistics_notes"
	case StateRenderingTermsAndSignatures:
		return "rendering_terms_and_signatures"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Transition is reported to the observer on every state change.
// Row is the line index while rendering rows and -1 otherwise.
type Transition struct {
	State     State
	Row       int
	Page      int
	PageBreak bool
}

// Observer receives every transition in order
type Observer func(Transition)

// Renderer turns laid out pages into bytes
type Renderer interface {
	// Begin prepares a new document; an error aborts assembly
	Begin(ctx context.Context, q *Quotation, g Geometry) error
	// Finish produces the output for the laid out pages
	Finish(ctx context.Context, q *Quotation, pages []Page) ([]byte, error)
	ContentType() string
	Extension() string
}

// Document is a finished render
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
	Pages       int
}

// Assembler measures and paginates quotation blocks, then hands the layout to a renderer
type Assembler struct {
	geometry Geometry
	measurer Measurer
	observer Observer
}

// NewAssembler creates an assembler. A nil measurer uses a TextMeasurer for the geometry.
func NewAssembler(g Geometry, m Measurer, observer Observer) *Assembler {
	if m == nil {
		m = NewTextMeasurer(g.PrintableWidth())
	}
	return &Assembler{geometry: g, measurer: m, observer: observer}
}

// Geometry returns the page geometry used for layout
func (a *Assembler) Geometry() Geometry {
	return a.geometry
}

func (a *Assembler) emit(t Transition) {
	if a.observer != nil {
		a.observer(t)
	}
}

// Assemble builds the document. It returns ctx.Err() as soon as the context
// is done between blocks, and never returns partial output.
func (a *Assembler) Assemble(ctx context.Context, q *Quotation, r Renderer) (*Document, error) {
	a.emit(Transition{State: StateInitializing, Row: -1, Page: 1})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Begin(ctx, q, a.geometry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererInit, err)
	}

	pages, err := a.layout(ctx, q)
	if err != nil {
		return nil, err
	}

	a.emit(Transition{State: StateFinalizing, Row: -1, Page: len(pages)})
	out, err := r.Finish(ctx, q, pages)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", r.Extension(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.emit(Transition{State: StateDone, Row: -1, Page: len(pages)})
	return &Document{
		Filename:    "QUOTATION_" + safeFilenamePart(q.Reference) + "." + r.Extension(),
		ContentType: r.ContentType(),
		Bytes:       out,
		Pages:       len(pages),
	}, nil
}

// Layout measures and paginates q without rendering
func (a *Assembler) Layout(ctx context.Context, q *Quotation) ([]Page, error) {
	return a.layout(ctx, q)
}

type step struct {
	state State
	block Block
}

func (a *Assembler) layout(ctx context.Context, q *Quotation) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.emit(Transition{State: StateRenderingBanner, Row: -1, Page: 1})
	banner := Block{Kind: BlockBanner}
	banner.Height = a.measurer.Measure(q, banner)
	l := NewLayout(a.geometry.PrintableHeight(), banner)

	steps := make([]step, 0, len(q.Lines)+5)
	add := func(s State, k BlockKind, idx int) {
		steps = append(steps, step{state: s, block: Block{Kind: k, Index: idx}})
	}
	add(StateRenderingClientBlock, BlockClient, -1)
	add(StateRenderingTableHeader, BlockTableHeader, -1)
	for i := range q.Lines {
		add(StateRenderingRow, BlockRow, i)
	}
	add(StateRenderingSummary, BlockSummary, -1)
	add(StateRenderingLogisticsNotes, BlockLogisticsNotes, -1)
	add(StateRenderingTermsAndSignatures, BlockTermsAndSignatures, -1)

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := st.block
		b.Height = a.measurer.Measure(q, b)
		broke := l.Place(b)

		row := -1
		if b.Kind == BlockRow {
			row = b.Index
		}
		a.emit(Transition{State: st.state, Row: row, Page: l.CurrentPage(), PageBreak: broke})
	}
	return l.Pages(), nil
}
