package document

// BlockKind identifies a section of the quotation document
type BlockKind int

const (
	BlockBanner BlockKind = iota
	BlockClient
	BlockTableHeader
	BlockRow
	BlockSummary
	BlockLogisticsNotes
	BlockTermsAndSignatures
)

func (k BlockKind) String() string {
	switch k {
	case BlockBanner:
		return "banner"
	case BlockClient:
		return "client"
	case BlockTableHeader:
		return "table_header"
	case BlockRow:
		return "row"
	case BlockSummary:
		return "summary"
	case BlockLogisticsNotes:
		return "logistics_notes"
	case BlockTermsAndSignatures:
		return "terms_signatures"
	}
	return "unknown"
}

// Block is one measured section. Index is the line index for BlockRow.
type Block struct {
	Kind   BlockKind
	Index  int
	Height float64
}

// Placement is a block positioned on a page, Y measured from the top of the printable area
type Placement struct {
	Block
	Y float64
}

// Page is one laid out page
type Page struct {
	Number     int
	Placements []Placement
	Used       float64
}

// Layout places blocks top to bottom, starting a new page whenever the next
// block would overflow the printable height. Every page starts with the banner.
type Layout struct {
	printable float64
	banner    Block
	pages     []Page
}

// NewLayout starts the first page with the banner already placed
func NewLayout(printableHeight float64, banner Block) *Layout {
	l := &Layout{printable: printableHeight, banner: banner}
	l.newPage()
	return l
}

func (l *Layout) newPage() {
	l.pages = append(l.pages, Page{
		Number:     len(l.pages) + 1,
		Placements: []Placement{{Block: l.banner, Y: 0}},
		Used:       l.banner.Height,
	})
}

// Place positions b and reports whether a page break was emitted first.
// A block that does not fit even on a fresh page is placed there alone
// and allowed to overflow.
func (l *Layout) Place(b Block) bool {
	if b.Height <= 0 {
		return false
	}
	broke := false
	cur := &l.pages[len(l.pages)-1]
	if cur.Used+b.Height > l.printable && len(cur.Placements) > 1 {
		l.newPage()
		cur = &l.pages[len(l.pages)-1]
		broke = true
	}
	cur.Placements = append(cur.Placements, Placement{Block: b, Y: cur.Used})
	cur.Used += b.Height
	return broke
}

// Pages returns the laid out pages
func (l *Layout) Pages() []Page {
	return l.pages
}

// CurrentPage is the number of the page receiving blocks
func (l *Layout) CurrentPage() int {
	return len(l.pages)
}

// Paginate lays out blocks after the banner
func Paginate(printableHeight float64, banner Block, blocks []Block) []Page {
	l := NewLayout(printableHeight, banner)
	for _, b := range blocks {
		l.Place(b)
	}
	return l.Pages()
}
