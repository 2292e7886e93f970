// Package invoice renders a single-sale invoice as an A5 PDF.
package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"warungledger/backend/internal/domain"
)

type Document struct {
	Issuer   string
	Sale     domain.SaleDetail
	IssuedAt time.Time
	Location *time.Location
}

func Number(saleID string) string {
	return "INV-" + saleID
}

func FileName(saleID string) string {
	return fmt.Sprintf("invoice_%s.pdf", saleID)
}

func Render(w io.Writer, doc Document) error {
	loc := doc.Location
	if loc == nil {
		loc = time.Local
	}
	issuedAt := doc.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	sale := doc.Sale

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(Number(sale.ID), true)
	pdf.SetCreator("warungledger", true)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, tr(doc.Issuer), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "INVOICE", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	labelW := contentW * 0.3
	infoRow := func(label, value string) {
		pdf.CellFormat(labelW, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-labelW, 5, tr(value), "", 1, "L", false, 0, "")
	}
	infoRow("Invoice No.", Number(sale.ID))
	infoRow("Sale date", sale.SaleDate.In(loc).Format("02 Jan 2006"))
	infoRow("Issued", issuedAt.In(loc).Format("02 Jan 2006 15:04"))
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(sale.Customer.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr(sale.Customer.MobileNumber), "", 1, "L", false, 0, "")
	pdf.MultiCell(contentW, 5, tr(sale.Customer.Address), "", "L", false)
	pdf.Ln(3)

	col1 := contentW * 0.46
	col2 := contentW * 0.12
	col3 := contentW * 0.21
	col4 := contentW * 0.21

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(col1, 7, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(col3, 7, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(col4, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1, 7, tr(sale.Product.Name), "1", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, fmt.Sprintf("%d", sale.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, amount(sale.UnitPrice), "1", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, amount(sale.TotalAmount), "1", 1, "R", false, 0, "")
	pdf.Ln(3)

	summaryLabelW := col1 + col2 + col3
	summaryRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(summaryLabelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, value, "", 1, "R", false, 0, "")
	}
	summaryRow("Total", amount(sale.TotalAmount), true)
	summaryRow("Paid", amount(sale.CashReceived), false)
	summaryRow("Remaining", amount(sale.RemainingAmount), true)
	summaryRow("Status", statusLabel(sale.PaymentStatus), false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("invoice: render %s: %w", sale.ID, err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: write %s: %w", sale.ID, err)
	}
	return nil
}

func amount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func statusLabel(status domain.PaymentStatus) string {
	switch status {
	case domain.PaymentPaid:
		return "PAID"
	case domain.PaymentPartial:
		return "PARTIAL"
	default:
		return "PENDING"
	}
}
