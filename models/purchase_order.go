package models

import "time"

type POStatus string

const (
	POStatusPending            POStatus = "pending"
	POStatusPartiallyDelivered POStatus = "partially_delivered"
	POStatusDelivered          POStatus = "delivered"
	POStatusMatched            POStatus = "matched"
	POStatusCancelled          POStatus = "cancelled"
)

type PurchaseOrder struct {
	POID          int       `gorm:"primaryKey;column:po_id" json:"po_id"`
	PONumber      string    `gorm:"column:po_number;unique" json:"po_number"`
	RequisitionID int       `gorm:"column:requisition_id" json:"requisition_id"`
	VendorID      int       `gorm:"column:vendor_id" json:"vendor_id"`
	TotalAmount   float64   `gorm:"column:total_amount" json:"total_amount"`
	Status        POStatus  `gorm:"column:status" json:"status"`
	IssuedBy      int       `gorm:"column:issued_by" json:"issued_by"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Requisition *Requisition        `gorm:"foreignKey:RequisitionID" json:"requisition,omitempty"`
	Vendor      *Vendor             `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:POID" json:"items,omitempty"`
	Receipts    []GoodsReceiptNote  `gorm:"foreignKey:POID" json:"receipts,omitempty"`
	Invoices    []Invoice           `gorm:"foreignKey:POID" json:"invoices,omitempty"`
}

type PurchaseOrderItem struct {
	POItemID         int     `gorm:"primaryKey;column:po_item_id" json:"po_item_id"`
	POID             int     `gorm:"column:po_id" json:"po_id"`
	Description      string  `gorm:"column:description" json:"description"`
	OrderedQuantity  int     `gorm:"column:ordered_quantity" json:"ordered_quantity"`
	UnitPrice        float64 `gorm:"column:unit_price" json:"unit_price"`
	ReceivedQuantity int     `gorm:"column:received_quantity" json:"received_quantity"`
	ItemOrder        int     `gorm:"column:item_order" json:"item_order"`
}

// GoodsReceiptNote is immutable once created; a correction is a new note,
// never an edit.
type GoodsReceiptNote struct {
	GRNID      int       `gorm:"primaryKey;column:grn_id" json:"grn_id"`
	GRNNumber  string    `gorm:"column:grn_number;unique" json:"grn_number"`
	POID       int       `gorm:"column:po_id" json:"po_id"`
	ReceiverID int       `gorm:"column:receiver_id" json:"receiver_id"`
	ReceivedAt time.Time `gorm:"column:received_at" json:"received_at"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	Receiver *User              `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Lines    []GoodsReceiptLine `gorm:"foreignKey:GRNID" json:"lines,omitempty"`
}

type GoodsReceiptLine struct {
	LineID   int `gorm:"primaryKey;column:line_id" json:"line_id"`
	GRNID    int `gorm:"column:grn_id" json:"grn_id"`
	POItemID int `gorm:"column:po_item_id" json:"po_item_id"`
	Quantity int `gorm:"column:quantity" json:"quantity"`
}

// TableName overrides
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

func (GoodsReceiptNote) TableName() string {
	return "goods_receipt_notes"
}

func (GoodsReceiptLine) TableName() string {
	return "goods_receipt_lines"
}
