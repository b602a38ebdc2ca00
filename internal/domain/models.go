package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database doesn't (sqlite in tests)
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// User represents an authenticated account. The email doubles as the
// tenant key for every business entity the user owns.
type User struct {
	BaseModel
	Email       string `gorm:"type:varchar(255);not null;unique" json:"email"`
	Name        string `gorm:"type:varchar(200)" json:"name"`
	IsSuperUser bool   `gorm:"not null;default:false;column:is_super_user" json:"isSuperUser"`
}

// OfferStatus represents the status of an offer
type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "draft"
	OfferStatusSent     OfferStatus = "sent"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusInWork   OfferStatus = "in_work"
)

// IsValid checks if the OfferStatus is a valid enum value
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusDraft, OfferStatusSent, OfferStatusAccepted, OfferStatusInWork:
		return true
	}
	return false
}

// IsConvertible reports whether an offer in this status may be converted to a work
func (s OfferStatus) IsConvertible() bool {
	return s == OfferStatusSent || s == OfferStatusAccepted
}

// Offer represents a quote sent to a client
type Offer struct {
	BaseModel
	TenantEmail   string         `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Title         string         `gorm:"type:varchar(200);not null;index"`
	RecipientName string         `gorm:"type:varchar(200);column:recipient_name"`
	Location      string         `gorm:"type:varchar(500)"`
	Status        OfferStatus    `gorm:"type:varchar(50);not null;default:'draft';index"`
	TotalPrice    float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	MaterialTotal float64        `gorm:"type:decimal(15,2);not null;default:0;column:material_total"`
	WorkTotal     float64        `gorm:"type:decimal(15,2);not null;default:0;column:work_total"`
	ValidUntil    *time.Time     `gorm:"type:date;column:valid_until"`
	Notes         string         `gorm:"type:text"`
	AIRawResponse datatypes.JSON `gorm:"column:ai_raw_response"`
	Items         []OfferItem    `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

// OfferItem is a line item of an offer. Position 0 is the head of the
// list; newly added items are inserted there, not appended.
type OfferItem struct {
	BaseModel
	OfferID           uuid.UUID `gorm:"type:uuid;not null;index;column:offer_id"`
	Offer             *Offer    `gorm:"foreignKey:OfferID"`
	TenantEmail       string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name              string    `gorm:"type:varchar(300);not null"`
	Quantity          float64   `gorm:"type:decimal(12,2);not null;default:0"`
	Unit              string    `gorm:"type:varchar(50)"`
	UnitPrice         float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	MaterialUnitPrice float64   `gorm:"type:decimal(15,2);not null;default:0;column:material_unit_price"`
	WorkTotal         float64   `gorm:"type:decimal(15,2);not null;default:0;column:work_total"`
	MaterialTotal     float64   `gorm:"type:decimal(15,2);not null;default:0;column:material_total"`
	TotalPrice        float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	Position          int       `gorm:"not null;default:0"`
}

// RecalculateTotals derives the item aggregates from quantity and unit prices
func (i *OfferItem) RecalculateTotals() {
	i.WorkTotal = i.Quantity * i.UnitPrice
	i.MaterialTotal = i.Quantity * i.MaterialUnitPrice
	i.TotalPrice = i.WorkTotal + i.MaterialTotal
}

// Work represents a managed job created from an accepted offer (1:1)
type Work struct {
	BaseModel
	TenantEmail    string     `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	OfferID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:offer_id"`
	Offer          *Offer     `gorm:"foreignKey:OfferID"`
	Title          string     `gorm:"type:varchar(200);not null"`
	Location       string     `gorm:"type:varchar(500)"`
	IsActive       bool       `gorm:"not null;default:true;column:is_active;index"`
	ProcessingByAI bool       `gorm:"not null;default:false;column:processing_by_ai"`
	StartDate      *time.Time `gorm:"type:date;column:start_date"`
	EndDate        *time.Time `gorm:"type:date;column:end_date"`
	TotalPrice     float64    `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	Progress       float64    `gorm:"type:decimal(5,2);not null;default:0"`
	Items          []WorkItem `gorm:"foreignKey:WorkID;constraint:OnDelete:CASCADE"`
}

// WorkItem is a task within a work, seeded verbatim from an offer item
type WorkItem struct {
	BaseModel
	WorkID            uuid.UUID `gorm:"type:uuid;not null;index;column:work_id"`
	Work              *Work     `gorm:"foreignKey:WorkID"`
	TenantEmail       string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name              string    `gorm:"type:varchar(300);not null"`
	Quantity          float64   `gorm:"type:decimal(12,2);not null;default:0"`
	Unit              string    `gorm:"type:varchar(50)"`
	UnitPrice         float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	MaterialUnitPrice float64   `gorm:"type:decimal(15,2);not null;default:0;column:material_unit_price"`
	CompletedQuantity float64   `gorm:"type:decimal(12,2);not null;default:0;column:completed_quantity"`
	Progress          int       `gorm:"not null;default:0"`
	TotalPrice        float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
}

// ComputeProgress returns the 0-100 progress for a completed quantity,
// floored and clamped. A zero quantity always yields 0.
func ComputeProgress(completedQuantity, quantity float64) int {
	if quantity <= 0 {
		return 0
	}
	p := int(completedQuantity / quantity * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Worker is a profession-level grouping within a work (e.g. "bricklayer").
// People assigned to items are WorkItemWorker rows referencing the group.
type Worker struct {
	BaseModel
	WorkID      uuid.UUID        `gorm:"type:uuid;not null;index;column:work_id"`
	Work        *Work            `gorm:"foreignKey:WorkID"`
	TenantEmail string           `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Role        string           `gorm:"type:varchar(200);not null"`
	HourlyRate  float64          `gorm:"type:decimal(15,2);not null;default:0;column:hourly_rate"`
	Assignments []WorkItemWorker `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
}

// WorkItemWorker is a person assigned to a work item.
// Quantity is the headcount multiplier for the assignment.
type WorkItemWorker struct {
	BaseModel
	WorkItemID  uuid.UUID  `gorm:"type:uuid;not null;index;column:work_item_id"`
	WorkItem    *WorkItem  `gorm:"foreignKey:WorkItemID"`
	WorkID      uuid.UUID  `gorm:"type:uuid;not null;index;column:work_id"`
	WorkerID    *uuid.UUID `gorm:"type:uuid;index;column:worker_id"`
	TenantEmail string     `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Email       string     `gorm:"type:varchar(255)"`
	Phone       string     `gorm:"type:varchar(50)"`
	Role        string     `gorm:"type:varchar(200)"`
	Quantity    int        `gorm:"not null;default:1"`
}

// WorkforceMember is a tenant-scoped directory entry of a known person
type WorkforceMember struct {
	BaseModel
	TenantEmail string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_workforce_email_tenant;column:tenant_email"`
	Name        string  `gorm:"type:varchar(200);not null"`
	Email       string  `gorm:"type:varchar(255);uniqueIndex:idx_workforce_email_tenant"`
	Phone       string  `gorm:"type:varchar(50)"`
	Role        string  `gorm:"type:varchar(200)"`
	DailyRate   float64 `gorm:"type:decimal(15,2);not null;default:0;column:daily_rate"`
}

// Material tracks quantities needed and procured for a work item
type Material struct {
	BaseModel
	WorkID            uuid.UUID            `gorm:"type:uuid;not null;index;column:work_id"`
	Work              *Work                `gorm:"foreignKey:WorkID"`
	WorkItemID        *uuid.UUID           `gorm:"type:uuid;index;column:work_item_id"`
	TenantEmail       string               `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name              string               `gorm:"type:varchar(300);not null"`
	Quantity          float64              `gorm:"type:decimal(12,2);not null;default:0"`
	Unit              string               `gorm:"type:varchar(50)"`
	UnitPrice         float64              `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	AvailableQuantity float64              `gorm:"type:decimal(12,2);not null;default:0;column:available_quantity"`
	AvailableFull     bool                 `gorm:"not null;default:false;column:available_full"`
	PriceQuotes       []MaterialPriceQuote `gorm:"foreignKey:MaterialID;constraint:OnDelete:CASCADE"`
}

// MaterialPriceQuote is a scraped vendor price for a material
type MaterialPriceQuote struct {
	BaseModel
	MaterialID  uuid.UUID `gorm:"type:uuid;not null;index;column:material_id"`
	TenantEmail string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Vendor      string    `gorm:"type:varchar(200);not null"`
	Price       float64   `gorm:"type:decimal(15,2);not null"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'HUF'"`
	URL         string    `gorm:"type:varchar(1000)"`
	FetchedAt   time.Time `gorm:"not null;column:fetched_at"`
}

// Tool is a piece of equipment reserved for a work
type Tool struct {
	BaseModel
	WorkID      uuid.UUID `gorm:"type:uuid;not null;index;column:work_id"`
	TenantEmail string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name        string    `gorm:"type:varchar(300);not null"`
	Quantity    int       `gorm:"not null;default:1"`
	Description string    `gorm:"type:text"`
}

// WorkDiaryEntry is a dated progress log for a work item.
// ProgressAtDate is the cumulative completed-quantity snapshot at that
// date; the latest entry per item is authoritative for
// WorkItem.CompletedQuantity. DailyRateSnapshot freezes the worker's
// daily rate at logging time so later registry edits don't rewrite
// historical cost.
type WorkDiaryEntry struct {
	BaseModel
	WorkID            uuid.UUID    `gorm:"type:uuid;not null;index;column:work_id"`
	Work              *Work        `gorm:"foreignKey:WorkID"`
	WorkItemID        uuid.UUID    `gorm:"type:uuid;not null;index;column:work_item_id"`
	WorkItem          *WorkItem    `gorm:"foreignKey:WorkItemID"`
	TenantEmail       string       `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Date              time.Time    `gorm:"type:date;not null;index"`
	Quantity          float64      `gorm:"type:decimal(12,2);not null;default:0"`
	WorkHours         float64      `gorm:"type:decimal(6,2);not null;default:0;column:work_hours"`
	WorkerName        string       `gorm:"type:varchar(200);column:worker_name"`
	WorkerEmail       string       `gorm:"type:varchar(255);column:worker_email"`
	DailyRateSnapshot *float64     `gorm:"type:decimal(15,2);column:daily_rate_snapshot"`
	ProgressAtDate    *float64     `gorm:"type:decimal(12,2);column:progress_at_date"`
	GroupNo           *int         `gorm:"column:group_no;index"`
	Accepted          *bool        `gorm:"column:accepted"`
	Notes             string       `gorm:"type:text"`
	Photos            []DiaryPhoto `gorm:"foreignKey:DiaryEntryID;constraint:OnDelete:CASCADE"`
}

// DiaryPhoto is an uploaded photo attached to a diary entry
type DiaryPhoto struct {
	BaseModel
	DiaryEntryID uuid.UUID `gorm:"type:uuid;not null;index;column:diary_entry_id"`
	TenantEmail  string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Filename     string    `gorm:"type:varchar(255);not null"`
	ContentType  string    `gorm:"type:varchar(100);not null;column:content_type"`
	Size         int64     `gorm:"not null"`
	StoragePath  string    `gorm:"type:varchar(500);not null;unique;column:storage_path"`
}

// BillingStatus represents the status of a billing
type BillingStatus string

const (
	BillingStatusDraft  BillingStatus = "draft"
	BillingStatusIssued BillingStatus = "issued"
)

// Billing groups selected offer items into an invoice-like document
type Billing struct {
	BaseModel
	TenantEmail   string        `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	OfferID       uuid.UUID     `gorm:"type:uuid;not null;index;column:offer_id"`
	Offer         *Offer        `gorm:"foreignKey:OfferID"`
	Title         string        `gorm:"type:varchar(200);not null"`
	Status        BillingStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	TotalPrice    float64       `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	InvoiceNumber string        `gorm:"type:varchar(100);column:invoice_number"`
	IssuedAt      *time.Time    `gorm:"column:issued_at"`
	Items         []BillingItem `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE"`
}

// BillingItem is one invoiced line, copied from an offer item
type BillingItem struct {
	BaseModel
	BillingID   uuid.UUID  `gorm:"type:uuid;not null;index;column:billing_id"`
	OfferItemID *uuid.UUID `gorm:"type:uuid;column:offer_item_id"`
	TenantEmail string     `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	Name        string     `gorm:"type:varchar(300);not null"`
	Quantity    float64    `gorm:"type:decimal(12,2);not null;default:0"`
	Unit        string     `gorm:"type:varchar(50)"`
	UnitPrice   float64    `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	TotalPrice  float64    `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
}

// PriceListItem is a tenant's saved price for a recurring task.
// Unique per (task, tenant_email); feeds AI offer generation.
type PriceListItem struct {
	BaseModel
	TenantEmail       string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_pricelist_task_tenant;column:tenant_email"`
	Task              string  `gorm:"type:varchar(300);not null;uniqueIndex:idx_pricelist_task_tenant"`
	Unit              string  `gorm:"type:varchar(50)"`
	UnitPrice         float64 `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	MaterialUnitPrice float64 `gorm:"type:decimal(15,2);not null;default:0;column:material_unit_price"`
}

// Performance holds the per-work profit expectations and inputs
type Performance struct {
	BaseModel
	WorkID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:work_id"`
	TenantEmail           string    `gorm:"type:varchar(255);not null;index;column:tenant_email"`
	ExpectedProfitPercent float64   `gorm:"type:decimal(5,2);not null;default:0;column:expected_profit_percent"`
	OfferPrice            float64   `gorm:"type:decimal(15,2);not null;default:0;column:offer_price"`
	OwnCosts              float64   `gorm:"type:decimal(15,2);not null;default:0;column:own_costs"`
}
