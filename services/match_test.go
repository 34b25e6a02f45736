package services

import (
	"testing"
	"time"

	"procurement-management-api/models"
)

func laptopPO() *models.PurchaseOrder {
	return &models.PurchaseOrder{
		POID:   3,
		Status: models.POStatusPending,
		Items: []models.PurchaseOrderItem{
			{POItemID: 11, Description: "Laptop", OrderedQuantity: 10, UnitPrice: 5.00},
		},
	}
}

func grnWith(quantity int) models.GoodsReceiptNote {
	return models.GoodsReceiptNote{
		GRNID:      1,
		POID:       3,
		ReceivedAt: time.Now(),
		Lines: []models.GoodsReceiptLine{
			{GRNID: 1, POItemID: 11, Quantity: quantity},
		},
	}
}

func invoiceFor(amount float64, status models.InvoiceStatus) models.Invoice {
	return models.Invoice{InvoiceID: 1, POID: 3, TotalAmount: amount, Status: status}
}

func TestClassifyFullReceiptAndExactInvoiceMatches(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{invoiceFor(50.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched, got %s (%s)", result.Verdict, result.Detail)
	}
	if result.OrderedAmount != 50.00 || result.InvoicedAmount != 50.00 {
		t.Fatalf("unexpected amounts: ordered=%.2f invoiced=%.2f", result.OrderedAmount, result.InvoicedAmount)
	}
}

func TestClassifyPartialReceiptIsQuantityMismatch(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(6)}
	invoices := []models.Invoice{invoiceFor(50.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictQuantityMismatch {
		t.Fatalf("expected quantity_mismatch, got %s", result.Verdict)
	}
	if result.Lines[0].ReceivedQuantity != 6 {
		t.Fatalf("expected received quantity 6, got %d", result.Lines[0].ReceivedQuantity)
	}
}

func TestClassifyOverbilledInvoiceIsPriceMismatch(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{invoiceFor(55.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictPriceMismatch {
		t.Fatalf("expected price_mismatch, got %s", result.Verdict)
	}
}

func TestClassifyWithinToleranceMatches(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{invoiceFor(50.005, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched within tolerance, got %s", result.Verdict)
	}
}

func TestClassifyWithoutReceiptsOrInvoicesIsPending(t *testing.T) {
	po := laptopPO()

	if result := ClassifyPurchaseOrder(po, nil, nil, 0.01); result.Verdict != MatchVerdictPending {
		t.Fatalf("expected pending with no documents, got %s", result.Verdict)
	}

	grns := []models.GoodsReceiptNote{grnWith(10)}
	if result := ClassifyPurchaseOrder(po, grns, nil, 0.01); result.Verdict != MatchVerdictPending {
		t.Fatalf("expected pending without invoices, got %s", result.Verdict)
	}

	invoices := []models.Invoice{invoiceFor(50.00, models.InvoicePending)}
	if result := ClassifyPurchaseOrder(po, nil, invoices, 0.01); result.Verdict != MatchVerdictPending {
		t.Fatalf("expected pending without receipts, got %s", result.Verdict)
	}
}

func TestClassifyIgnoresDisputedInvoices(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{
		invoiceFor(50.00, models.InvoicePending),
		{InvoiceID: 2, POID: 3, TotalAmount: 999.00, Status: models.InvoiceDisputed},
	}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched with disputed invoice excluded, got %s", result.Verdict)
	}
	if result.InvoicedAmount != 50.00 {
		t.Fatalf("expected invoiced amount 50.00, got %.2f", result.InvoicedAmount)
	}
}

func TestClassifyOnlyDisputedInvoicesIsPending(t *testing.T) {
	po := laptopPO()
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{
		{InvoiceID: 2, POID: 3, TotalAmount: 50.00, Status: models.InvoiceDisputed},
	}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictPending {
		t.Fatalf("expected pending when every invoice is disputed, got %s", result.Verdict)
	}
}

func TestClassifyExcludesZeroQuantityLines(t *testing.T) {
	po := laptopPO()
	po.Items = append(po.Items, models.PurchaseOrderItem{
		POItemID: 12, Description: "Included manual", OrderedQuantity: 0, UnitPrice: 0,
	})
	grns := []models.GoodsReceiptNote{grnWith(10)}
	invoices := []models.Invoice{invoiceFor(50.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched with zero-quantity line excluded, got %s", result.Verdict)
	}
}

func TestClassifyOverriddenPOStaysMatched(t *testing.T) {
	po := laptopPO()
	po.Status = models.POStatusMatched
	grns := []models.GoodsReceiptNote{grnWith(6)}
	invoices := []models.Invoice{invoiceFor(55.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, grns, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched after override, got %s", result.Verdict)
	}
	if !result.Overridden {
		t.Fatal("expected result to be flagged as overridden")
	}
}

func TestClassifySumsReceiptsAcrossMultipleGRNs(t *testing.T) {
	po := laptopPO()
	first := grnWith(6)
	second := models.GoodsReceiptNote{
		GRNID: 2,
		POID:  3,
		Lines: []models.GoodsReceiptLine{{GRNID: 2, POItemID: 11, Quantity: 4}},
	}
	invoices := []models.Invoice{invoiceFor(50.00, models.InvoicePending)}

	result := ClassifyPurchaseOrder(po, []models.GoodsReceiptNote{first, second}, invoices, 0.01)
	if result.Verdict != MatchVerdictMatched {
		t.Fatalf("expected matched across two receipts, got %s", result.Verdict)
	}
	if result.Lines[0].ReceivedQuantity != 10 {
		t.Fatalf("expected summed received quantity 10, got %d", result.Lines[0].ReceivedQuantity)
	}
}

func TestDerivePOStatus(t *testing.T) {
	cases := []struct {
		name  string
		items []models.PurchaseOrderItem
		want  models.POStatus
	}{
		{
			name:  "nothing received",
			items: []models.PurchaseOrderItem{{OrderedQuantity: 10, ReceivedQuantity: 0}},
			want:  models.POStatusPending,
		},
		{
			name:  "partial receipt",
			items: []models.PurchaseOrderItem{{OrderedQuantity: 10, ReceivedQuantity: 6}},
			want:  models.POStatusPartiallyDelivered,
		},
		{
			name:  "full receipt",
			items: []models.PurchaseOrderItem{{OrderedQuantity: 10, ReceivedQuantity: 10}},
			want:  models.POStatusDelivered,
		},
		{
			name: "one line complete one untouched",
			items: []models.PurchaseOrderItem{
				{OrderedQuantity: 10, ReceivedQuantity: 10},
				{OrderedQuantity: 5, ReceivedQuantity: 0},
			},
			want: models.POStatusPartiallyDelivered,
		},
		{
			name: "zero quantity lines do not block delivery",
			items: []models.PurchaseOrderItem{
				{OrderedQuantity: 10, ReceivedQuantity: 10},
				{OrderedQuantity: 0, ReceivedQuantity: 0},
			},
			want: models.POStatusDelivered,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := derivePOStatus(tc.items); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
