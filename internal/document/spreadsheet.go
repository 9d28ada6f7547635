package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetContentType is the MIME type of BuildSpreadsheet output
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildSpreadsheet writes the quotation as a single-sheet workbook
func BuildSpreadsheet(q *Quotation) (*Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Quotation"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	widths := []float64{6, 36, 18, 8, 14, 12, 16}
	for i, c := range columns {
		if err := f.SetColWidth(sheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	set := func(cell string, v interface{}) {
		_ = f.SetCellValue(sheet, cell, v)
	}

	set("A1", sanitizeCell(q.LegalName))
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	set("A2", "Quotation "+sanitizeCell(q.Reference))
	set("A3", "Date: "+FormatDate(q.Date))
	set("A4", "Client: "+sanitizeCell(q.Client.CompanyName))
	if q.Client.ContactPerson != "" {
		set("E4", "Attn: "+sanitizeCell(q.Client.ContactPerson))
	}
	if q.Client.Address != "" {
		set("A5", "Address: "+sanitizeCell(q.Client.Address))
	}

	headers := []string{"#", "Product", "SKU", "Qty", "Unit Price", "Discount", "Amount"}
	for i, h := range headers {
		set(fmt.Sprintf("%s7", columns[i]), h)
	}
	_ = f.SetCellStyle(sheet, "A7", "G7", headerStyle)

	r := 8
	for _, l := range q.Lines {
		product := sanitizeCell(l.Title)
		if desc := PlainText(l.Description); len(desc) > 0 {
			product += "\n" + sanitizeCell(strings.Join(desc, "\n"))
		}
		unit, _ := l.UnitPrice.Float64()
		disc, _ := l.Discount.Float64()
		total, _ := l.Total.Float64()

		set(fmt.Sprintf("A%d", r), l.Number)
		set(fmt.Sprintf("B%d", r), product)
		set(fmt.Sprintf("C%d", r), sanitizeCell(strings.Join(l.SKUs, ", ")))
		set(fmt.Sprintf("D%d", r), l.Quantity)
		set(fmt.Sprintf("E%d", r), unit)
		set(fmt.Sprintf("F%d", r), disc)
		set(fmt.Sprintf("G%d", r), total)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("D%d", r), cellStyle)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("E%d", r), fmt.Sprintf("G%d", r), moneyStyle)
		r++
	}

	r++
	summary := []struct {
		label string
		value float64
	}{
		{"Subtotal", toFloat(q.Summary.Subtotal)},
		{"Discount (" + FormatPercent(q.Summary.DiscountPercent) + ")", -toFloat(q.Summary.DiscountTotal)},
		{"Total", toFloat(q.Summary.Total)},
	}
	for _, s := range summary {
		set(fmt.Sprintf("F%d", r), s.label)
		set(fmt.Sprintf("G%d", r), s.value)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("G%d", r), fmt.Sprintf("G%d", r), boldMoney)
		r++
	}
	set(fmt.Sprintf("G%d", r), q.Summary.VATLabel)

	if len(q.LogisticsNotes) > 0 {
		r += 2
		set(fmt.Sprintf("A%d", r), "Logistics Notes")
		for _, note := range q.LogisticsNotes {
			r++
			set(fmt.Sprintf("B%d", r), sanitizeCell(note))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return &Document{
		Filename:    SpreadsheetFilename(q.Reference),
		ContentType: SpreadsheetContentType,
		Bytes:       buf.Bytes(),
		Pages:       1,
	}, nil
}

// sanitizeCell prevents formula injection by prefixing dangerous leading characters with a quote
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
