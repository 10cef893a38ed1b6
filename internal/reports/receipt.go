package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/arfood/internal/models"
)

// WriteReceipt renders a printable receipt for an order.
func WriteReceipt(w io.Writer, order *models.Order, restaurant string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, restaurant, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Order "+order.OrderNumber, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Cell(40, 6, "Date:")
	pdf.Cell(0, 6, order.CreatedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Customer:")
	pdf.Cell(0, 6, fmt.Sprintf("%s (%s)", order.CustomerName, order.CustomerPhone))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Type:")
	if order.OrderType == models.OrderTypeDineIn {
		pdf.Cell(0, 6, "Dine-in, table "+order.TableNumber)
	} else {
		pdf.Cell(0, 6, "Takeaway")
	}
	pdf.Ln(6)
	pdf.Cell(40, 6, "Status:")
	pdf.Cell(0, 6, string(order.Status))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		name := item.Name
		if item.SpiceLevel != "" {
			name += " (" + item.SpiceLevel + ")"
		}
		pdf.CellFormat(90, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", item.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	type line struct {
		label  string
		amount float64
	}
	totals := []line{
		{"Subtotal", order.Subtotal},
		{"Tax", order.Tax},
		{"Discount", -order.Discount},
	}
	if order.CouponCode != "" {
		totals = append(totals, line{"Coupon " + order.CouponCode, -order.CouponDiscount})
	}
	for _, t := range totals {
		pdf.CellFormat(150, 7, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", t.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, "Grand total (INR)", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", order.GrandTotal), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, "Payment: "+order.PaymentMethod+" / "+order.PaymentStatus, "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
