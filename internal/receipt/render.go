package receipt

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/quickkart/marketplace/internal/domain/money"
)

// Core PDF fonts have no rupee glyph.
const currency = "Rs."

const (
	pageBottom = 270.0
	rowHeight  = 7.0
)

// column x positions in mm
const (
	colDesc     = 14.0
	colQty      = 90.0
	colGross    = 110.0
	colDiscount = 150.0
	colTotal    = 180.0
)

// Render draws the receipt as a PDF document.
func Render(r Receipt) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tax Invoice "+r.InvoiceNumber, true)
	pdf.SetCreator(r.Seller.Name, true)
	pdf.SetCreationDate(r.OrderDate)
	pdf.AliasNbPages("{nb}")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Tax Invoice", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(colDesc, 30, tr("Sold By: "+r.Seller.Name))
	pdf.Text(colDesc, 35, tr("Ship-from Address: "+r.Seller.Address))
	pdf.Text(colDesc, 40, "Pincode: "+r.Seller.Pincode)
	pdf.Text(colDesc, 45, "GSTIN - "+r.Seller.GSTIN)
	pdf.Text(152, 52, "Invoice Number # "+r.InvoiceNumber)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(colDesc, 60, "Order ID:")
	pdf.Text(colDesc, 65, "Order Date:")
	pdf.Text(105, 60, "Billing Address")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(35, 60, r.OrderID)
	pdf.Text(35, 65, r.OrderDate.Format("02/01/2006"))
	pdf.Text(105, 65, tr(r.BillingName))

	pdf.SetXY(104, 67)
	pdf.MultiCell(90, 5, tr(r.BillingAddress), "", "L", false)

	y := 90.0
	tableHeader(pdf, y)
	y += rowHeight

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range r.Items {
		if y > pageBottom {
			pdf.AddPage()
			y = 20
			tableHeader(pdf, y)
			y += rowHeight
			pdf.SetFont("Helvetica", "", 10)
		}

		pdf.Text(colDesc, y, tr(truncate(it.Description, 40)))
		pdf.Text(colQty, y, strconv.Itoa(it.Qty))
		pdf.Text(colGross, y, it.Gross.String())
		pdf.Text(colDiscount, y, it.Discount.String())
		pdf.Text(colTotal, y, it.Total.String())
		y += rowHeight
	}

	if y > pageBottom-30 {
		pdf.AddPage()
		y = 20
	}

	y += 3
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(colDesc, y, "Total")
	pdf.Text(colQty, y, strconv.Itoa(r.ItemCount))
	pdf.Text(colGross, y, r.GrandTotal.String())
	pdf.Text(colDiscount, y, money.Cents(0).String())
	pdf.Text(colTotal, y, r.GrandTotal.String())

	y += 12
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(colDesc, y, "Grand Total")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(colTotal-10, y, currency+" "+r.GrandTotal.String())

	y += 15
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Text(colDesc, y, r.Seller.Name)
	pdf.SetXY(120, y-4)
	pdf.CellFormat(76, 5, "Authorized Signatory", "", 0, "R", false, 0, "")

	pdf.SetLineWidth(0.2)
	pdf.Line(10, y+10, 200, y+10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	return buf.Bytes(), nil
}

func tableHeader(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(colDesc, y, "Description")
	pdf.Text(colQty, y, "Qty")
	pdf.Text(colGross, y, "Gross Amount "+currency)
	pdf.Text(colDiscount, y, "Discount")
	pdf.Text(colTotal, y, "Total "+currency)
	pdf.SetLineWidth(0.1)
	pdf.Line(colDesc, y+2, 200, y+2)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
