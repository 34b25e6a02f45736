package services

import (
	"math"

	"procurement-management-api/models"
)

// Match verdicts for a purchase order against its receipts and invoices.
type MatchVerdict string

const (
	MatchVerdictMatched          MatchVerdict = "matched"
	MatchVerdictQuantityMismatch MatchVerdict = "quantity_mismatch"
	MatchVerdictPriceMismatch    MatchVerdict = "price_mismatch"
	MatchVerdictPending          MatchVerdict = "pending"
)

// MatchLine is the per-item reconciliation detail.
type MatchLine struct {
	POItemID         int     `json:"po_item_id"`
	Description      string  `json:"description"`
	OrderedQuantity  int     `json:"ordered_quantity"`
	ReceivedQuantity int     `json:"received_quantity"`
	UnitPrice        float64 `json:"unit_price"`
	ExpectedAmount   float64 `json:"expected_amount"`
}

// MatchResult is the three-way match engine's verdict for one PO.
type MatchResult struct {
	POID           int          `json:"po_id"`
	Verdict        MatchVerdict `json:"verdict"`
	Lines          []MatchLine  `json:"lines"`
	OrderedAmount  float64      `json:"ordered_amount"`
	ReceivedAmount float64      `json:"received_amount"`
	InvoicedAmount float64      `json:"invoiced_amount"`
	HasReceipts    bool         `json:"has_receipts"`
	HasInvoices    bool         `json:"has_invoices"`
	Overridden     bool         `json:"overridden"`
	Detail         string       `json:"detail,omitempty"`
}

// ClassifyPurchaseOrder is the pure three-way match: it reads a PO together
// with its goods receipt notes and invoices and classifies, mutating
// nothing. Received quantities are summed across all GRNs per item; invoiced
// amounts are summed across non-disputed invoices.
//
// Classification order: missing data first (pending is a legitimate waiting
// state, not an error), then quantity disagreement, then price disagreement
// beyond tolerance. A line with zero ordered quantity is excluded from the
// quantity comparison.
func ClassifyPurchaseOrder(po *models.PurchaseOrder, grns []models.GoodsReceiptNote, invoices []models.Invoice, tolerance float64) MatchResult {
	result := MatchResult{POID: po.POID, Overridden: po.Status == models.POStatusMatched}

	receivedByItem := make(map[int]int)
	for _, grn := range grns {
		for _, line := range grn.Lines {
			receivedByItem[line.POItemID] += line.Quantity
		}
	}

	for _, item := range po.Items {
		line := MatchLine{
			POItemID:         item.POItemID,
			Description:      item.Description,
			OrderedQuantity:  item.OrderedQuantity,
			ReceivedQuantity: receivedByItem[item.POItemID],
			UnitPrice:        item.UnitPrice,
			ExpectedAmount:   float64(item.OrderedQuantity) * item.UnitPrice,
		}
		result.Lines = append(result.Lines, line)
		result.OrderedAmount += line.ExpectedAmount
		result.ReceivedAmount += float64(line.ReceivedQuantity) * item.UnitPrice
	}

	for _, invoice := range invoices {
		if invoice.Status == models.InvoiceDisputed {
			continue
		}
		result.HasInvoices = true
		result.InvoicedAmount += invoice.TotalAmount
	}
	result.HasReceipts = len(grns) > 0

	if result.Overridden {
		result.Verdict = MatchVerdictMatched
		result.Detail = "status forced to matched by manual override"
		return result
	}

	if !result.HasReceipts || !result.HasInvoices {
		result.Verdict = MatchVerdictPending
		result.Detail = "awaiting goods receipt or invoice"
		return result
	}

	for _, line := range result.Lines {
		if line.OrderedQuantity == 0 {
			continue
		}
		if line.ReceivedQuantity != line.OrderedQuantity {
			result.Verdict = MatchVerdictQuantityMismatch
			result.Detail = "received quantity differs from ordered quantity"
			return result
		}
	}

	if math.Abs(result.InvoicedAmount-result.OrderedAmount) > tolerance {
		result.Verdict = MatchVerdictPriceMismatch
		result.Detail = "invoiced amount differs from the agreed purchase order amount"
		return result
	}

	result.Verdict = MatchVerdictMatched
	return result
}

// derivePOStatus computes the PO's delivery status from its items after a
// receipt event. Zero-quantity lines are excluded, matching the engine's
// comparison rule.
func derivePOStatus(items []models.PurchaseOrderItem) models.POStatus {
	anyReceived := false
	allReceived := true
	for _, item := range items {
		if item.OrderedQuantity == 0 {
			continue
		}
		if item.ReceivedQuantity > 0 {
			anyReceived = true
		}
		if item.ReceivedQuantity < item.OrderedQuantity {
			allReceived = false
		}
	}
	switch {
	case allReceived && anyReceived:
		return models.POStatusDelivered
	case anyReceived:
		return models.POStatusPartiallyDelivered
	default:
		return models.POStatusPending
	}
}
