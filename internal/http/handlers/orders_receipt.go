package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/utils"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phpdave11/gofpdf"
)

type receiptLine struct {
	Name     string
	Quantity int32
	Unit     string
	Subtotal string
}

type receiptData struct {
	BranchName      string
	BranchCode      string
	OrderNumber     string
	OrderType       string
	TableNumber     string
	DeliveryAddress string
	CustomerName    string
	PlacedAt        string
	CompletedAt     string
	Lines           []receiptLine
	Subtotal        string
	DiscountAmount  string
	TaxAmount       string
	TotalAmount     string
	PaymentMethod   string
	AmountPaid      string
	ChangeReturned  string
	PaidStamp       string
}

func (h *Handler) POSOrderReceiptPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	data, err := h.fetchReceiptData(ctx, orderID)
	if err != nil {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	buf, err := renderReceiptPDF(data)
	if err != nil {
		h.Logger.Error("receipt render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	filename := fmt.Sprintf("receipt_%s_%s.pdf", sanitizeFilename(data.BranchCode), sanitizeFilename(data.OrderNumber))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fetchReceiptData(ctx context.Context, orderID int64) (receiptData, error) {
	currency := h.Config.Currency

	var (
		data           receiptData
		tableNumber    pgtype.Int4
		subtotal       pgtype.Numeric
		discountAmount pgtype.Numeric
		taxAmount      pgtype.Numeric
		totalAmount    pgtype.Numeric
		amountPaid     pgtype.Numeric
		changeReturned pgtype.Numeric
		paymentMethod  pgtype.Text
		createdAt      pgtype.Timestamptz
		completedAt    pgtype.Timestamptz
		customerName   pgtype.Text
		deliveryAddr   pgtype.Text
	)
	err := h.DB.QueryRow(ctx, `
		select o.order_number, o.order_type, t.table_number,
		       o.subtotal, o.discount_amount, o.tax_amount, o.total_amount,
		       o.amount_paid, o.change_returned, o.payment_method,
		       o.created_at, o.completed_at, c.name, d.delivery_address
		from orders o
		left join tables t on t.id = o.table_id
		left join customers c on c.id = o.customer_id
		left join delivery_orders d on d.order_id = o.id
		where o.id = $1
	`, orderID).Scan(&data.OrderNumber, &data.OrderType, &tableNumber,
		&subtotal, &discountAmount, &taxAmount, &totalAmount,
		&amountPaid, &changeReturned, &paymentMethod,
		&createdAt, &completedAt, &customerName, &deliveryAddr)
	if err != nil {
		return data, err
	}

	data.BranchName = h.Config.BranchName
	data.BranchCode = h.Config.BranchCode
	if tableNumber.Valid {
		data.TableNumber = fmt.Sprintf("%d", tableNumber.Int32)
	}
	if deliveryAddr.Valid {
		data.DeliveryAddress = deliveryAddr.String
	}
	if customerName.Valid {
		data.CustomerName = customerName.String
	}
	data.PlacedAt = formatReceiptTime(createdAt)
	data.CompletedAt = formatReceiptTime(completedAt)

	total := utils.NumericToFloat64(totalAmount)
	paid := utils.NumericToFloat64Ptr(amountPaid)

	data.Subtotal = formatAmount(currency, utils.NumericToFloat64(subtotal))
	if v := utils.NumericToFloat64(discountAmount); v > 0 {
		data.DiscountAmount = formatAmount(currency, v)
	}
	data.TaxAmount = formatAmount(currency, utils.NumericToFloat64(taxAmount))
	data.TotalAmount = formatAmount(currency, total)
	if paymentMethod.Valid {
		data.PaymentMethod = paymentMethod.String
	}
	if paid != nil {
		data.AmountPaid = formatAmount(currency, *paid)
		if v := utils.NumericToFloat64(changeReturned); v > 0 {
			data.ChangeReturned = formatAmount(currency, v)
		}
	}
	if pos.IsPaid(total, paid) {
		data.PaidStamp = "PAID"
	} else {
		data.PaidStamp = "UNPAID"
	}

	rows, err := h.DB.Query(ctx, `
		select product_name, unit_price, quantity, subtotal
		from order_items
		where order_id = $1
		order by id
	`, orderID)
	if err != nil {
		return data, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name         string
			unitPrice    pgtype.Numeric
			quantity     int32
			lineSubtotal pgtype.Numeric
		)
		if err := rows.Scan(&name, &unitPrice, &quantity, &lineSubtotal); err != nil {
			return data, err
		}
		data.Lines = append(data.Lines, receiptLine{
			Name:     name,
			Quantity: quantity,
			Unit:     formatAmount(currency, utils.NumericToFloat64(unitPrice)),
			Subtotal: formatAmount(currency, utils.NumericToFloat64(lineSubtotal)),
		})
	}
	return data, rows.Err()
}

func formatReceiptTime(ts pgtype.Timestamptz) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.Format("2006-01-02 15:04")
}

func sanitizeFilename(value string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	clean := re.ReplaceAllString(value, "_")
	return strings.Trim(clean, "_")
}

func renderReceiptPDF(data receiptData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, data.BranchName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, data.BranchCode, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order %s", data.OrderNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, data.OrderType, "", 1, "C", false, 0, "")
	if data.TableNumber != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Table %s", data.TableNumber), "", 1, "C", false, 0, "")
	}
	if data.DeliveryAddress != "" {
		pdf.MultiCell(0, 4, data.DeliveryAddress, "", "C", false)
	}
	if data.CustomerName != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s", data.CustomerName), "", 1, "C", false, 0, "")
	}
	if data.PlacedAt != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Placed: %s", data.PlacedAt), "", 1, "C", false, 0, "")
	}
	if data.CompletedAt != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Completed: %s", data.CompletedAt), "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range data.Lines {
		pdf.CellFormat(0, 5, fmt.Sprintf("%dx %s @ %s", line.Quantity, line.Name, line.Unit), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %s", line.Subtotal), "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Subtotal: %s", data.Subtotal), "", 1, "L", false, 0, "")
	if data.DiscountAmount != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Discount: -%s", data.DiscountAmount), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Tax: %s", data.TaxAmount), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s", data.TotalAmount), "", 1, "L", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	if data.PaymentMethod != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Payment: %s", data.PaymentMethod), "", 1, "L", false, 0, "")
	}
	if data.AmountPaid != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Paid: %s", data.AmountPaid), "", 1, "L", false, 0, "")
	}
	if data.ChangeReturned != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Change: %s", data.ChangeReturned), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, data.PaidStamp, "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
