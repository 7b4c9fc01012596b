package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/reelcart/storefront/internal/platform/logger"
)

type InvoiceService interface {
	// GenerateInvoicePDF renders the order snapshot as a PDF and returns
	// the document bytes with a suggested filename. Ownership is enforced
	// through the checkout service lookup.
	GenerateInvoicePDF(ctx context.Context, orderID, userID string) ([]byte, string, error)
}

type invoiceService struct {
	checkout CheckoutService
	log      logger.Logger
}

func NewInvoiceService(checkout CheckoutService, log logger.Logger) InvoiceService {
	return &invoiceService{checkout: checkout, log: log}
}

func (s *invoiceService) GenerateInvoicePDF(ctx context.Context, orderID, userID string) ([]byte, string, error) {
	order, err := s.checkout.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Invoice")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Order: %s", order.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s", order.User.Email))
	pdf.Ln(12)

	for i, item := range order.Items {
		lineTotal := float64(item.Quantity) * item.Product.Price
		line := fmt.Sprintf("#%d %s (%d x %.2f) = %.2f",
			i+1, item.Product.Title, item.Quantity, item.Product.Price, lineTotal)
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.Total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render invoice PDF for order %s: %w", orderID, err)
	}

	s.log.Debugf("Generated invoice PDF for order %s (%d bytes)", orderID, buf.Len())
	return buf.Bytes(), fmt.Sprintf("invoice_%s.pdf", orderID), nil
}
