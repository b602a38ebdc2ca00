package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

type OfferDTO struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	RecipientName string      `json:"recipientName,omitempty"`
	Location      string      `json:"location,omitempty"`
	Status        OfferStatus `json:"status"`
	TotalPrice    float64     `json:"totalPrice"`
	MaterialTotal float64     `json:"materialTotal"`
	WorkTotal     float64     `json:"workTotal"`
	ValidUntil    *string     `json:"validUntil,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	ItemCount     int         `json:"itemCount"`
	CreatedAt     string      `json:"createdAt"` // ISO 8601
	UpdatedAt     string      `json:"updatedAt"` // ISO 8601
}

type OfferItemDTO struct {
	ID                uuid.UUID `json:"id"`
	OfferID           uuid.UUID `json:"offerId"`
	Name              string    `json:"name"`
	Quantity          float64   `json:"quantity"`
	Unit              string    `json:"unit,omitempty"`
	UnitPrice         float64   `json:"unitPrice"`
	MaterialUnitPrice float64   `json:"materialUnitPrice"`
	WorkTotal         float64   `json:"workTotal"`
	MaterialTotal     float64   `json:"materialTotal"`
	TotalPrice        float64   `json:"totalPrice"`
	Position          int       `json:"position"`
}

// OfferWithItemsDTO includes the offer with its ordered items
type OfferWithItemsDTO struct {
	OfferDTO
	Items []OfferItemDTO `json:"items"`
}

type WorkDTO struct {
	ID             uuid.UUID `json:"id"`
	OfferID        uuid.UUID `json:"offerId"`
	Title          string    `json:"title"`
	Location       string    `json:"location,omitempty"`
	IsActive       bool      `json:"isActive"`
	ProcessingByAI bool      `json:"processingByAi"`
	StartDate      *string   `json:"startDate,omitempty"`
	EndDate        *string   `json:"endDate,omitempty"`
	TotalPrice     float64   `json:"totalPrice"`
	Progress       float64   `json:"progress"`
	ItemCount      int       `json:"itemCount"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

type WorkItemDTO struct {
	ID                uuid.UUID `json:"id"`
	WorkID            uuid.UUID `json:"workId"`
	Name              string    `json:"name"`
	Quantity          float64   `json:"quantity"`
	Unit              string    `json:"unit,omitempty"`
	UnitPrice         float64   `json:"unitPrice"`
	MaterialUnitPrice float64   `json:"materialUnitPrice"`
	CompletedQuantity float64   `json:"completedQuantity"`
	Progress          int       `json:"progress"`
	TotalPrice        float64   `json:"totalPrice"`
}

type WorkDiaryEntryDTO struct {
	ID                uuid.UUID `json:"id"`
	WorkID            uuid.UUID `json:"workId"`
	WorkItemID        uuid.UUID `json:"workItemId"`
	Date              string    `json:"date"` // yyyy-mm-dd
	Quantity          float64   `json:"quantity"`
	WorkHours         float64   `json:"workHours"`
	WorkerName        string    `json:"workerName,omitempty"`
	WorkerEmail       string    `json:"workerEmail,omitempty"`
	DailyRateSnapshot *float64  `json:"dailyRateSnapshot,omitempty"`
	ProgressAtDate    *float64  `json:"progressAtDate,omitempty"`
	GroupNo           *int      `json:"groupNo,omitempty"`
	Accepted          *bool     `json:"accepted,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	PhotoCount        int       `json:"photoCount"`
}

type WorkforceMemberDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	DailyRate float64   `json:"dailyRate"`
}

type MaterialDTO struct {
	ID                uuid.UUID               `json:"id"`
	WorkID            uuid.UUID               `json:"workId"`
	WorkItemID        *uuid.UUID              `json:"workItemId,omitempty"`
	Name              string                  `json:"name"`
	Quantity          float64                 `json:"quantity"`
	Unit              string                  `json:"unit,omitempty"`
	UnitPrice         float64                 `json:"unitPrice"`
	AvailableQuantity float64                 `json:"availableQuantity"`
	AvailableFull     bool                    `json:"availableFull"`
	PriceQuotes       []MaterialPriceQuoteDTO `json:"priceQuotes,omitempty"`
}

type MaterialPriceQuoteDTO struct {
	Vendor    string  `json:"vendor"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	URL       string  `json:"url,omitempty"`
	FetchedAt string  `json:"fetchedAt"`
}

type BillingDTO struct {
	ID            uuid.UUID        `json:"id"`
	OfferID       uuid.UUID        `json:"offerId"`
	Title         string           `json:"title"`
	Status        BillingStatus    `json:"status"`
	TotalPrice    float64          `json:"totalPrice"`
	InvoiceNumber string           `json:"invoiceNumber,omitempty"`
	IssuedAt      *string          `json:"issuedAt,omitempty"`
	Items         []BillingItemDTO `json:"items,omitempty"`
}

type BillingItemDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit,omitempty"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
}

// WorkProfitDTO is the result of the cost-relative profit calculation
type WorkProfitDTO struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCost    float64 `json:"totalCost"`
	TotalProfit  float64 `json:"totalProfit"`
	ProfitMargin float64 `json:"profitMargin"`
}

// RefreshResultDTO reports the outcome of a completed-quantity resync
type RefreshResultDTO struct {
	UpdatedCount int `json:"updatedCount"`
	TotalCount   int `json:"totalCount"`
}

// GroupApprovalDTO reports the approval state of a diary group
type GroupApprovalDTO struct {
	GroupNo     int  `json:"groupNo"`
	AllAccepted bool `json:"allAccepted"`
	AnyAccepted bool `json:"anyAccepted"`
	Count       int  `json:"count"`
}

// ---------------------------------------------------------------------------
// Requests

type CreateOfferRequest struct {
	Title         string                   `json:"title" validate:"required,max=200"`
	RecipientName string                   `json:"recipientName" validate:"max=200"`
	Location      string                   `json:"location" validate:"max=500"`
	ValidUntil    *time.Time               `json:"validUntil"`
	Notes         string                   `json:"notes"`
	Items         []CreateOfferItemRequest `json:"items" validate:"dive"`
}

type CreateOfferItemRequest struct {
	Name              string  `json:"name" validate:"required,max=300"`
	Quantity          float64 `json:"quantity" validate:"gte=0"`
	Unit              string  `json:"unit" validate:"max=50"`
	UnitPrice         float64 `json:"unitPrice" validate:"gte=0"`
	MaterialUnitPrice float64 `json:"materialUnitPrice" validate:"gte=0"`
}

type UpdateOfferRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=200"`
	RecipientName *string    `json:"recipientName" validate:"omitempty,max=200"`
	Location      *string    `json:"location" validate:"omitempty,max=500"`
	ValidUntil    *time.Time `json:"validUntil"`
	Notes         *string    `json:"notes"`
}

// CreateOfferFromTextRequest asks the text generation provider to turn
// free-form job descriptions into structured offer items
type CreateOfferFromTextRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	RecipientName string `json:"recipientName" validate:"max=200"`
	Location      string `json:"location" validate:"max=500"`
	Text          string `json:"text" validate:"required"`
}

type UpdateOfferItemRequest struct {
	Name              *string  `json:"name" validate:"omitempty,max=300"`
	Quantity          *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit              *string  `json:"unit" validate:"omitempty,max=50"`
	UnitPrice         *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
	MaterialUnitPrice *float64 `json:"materialUnitPrice" validate:"omitempty,gte=0"`
}

type UpdateOfferStatusRequest struct {
	Status OfferStatus `json:"status" validate:"required"`
}

type UpdateWorkRequest struct {
	Title     *string    `json:"title" validate:"omitempty,max=200"`
	Location  *string    `json:"location" validate:"omitempty,max=500"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	IsActive  *bool      `json:"isActive"`
}

type UpdateWorkItemRequest struct {
	Name              *string  `json:"name" validate:"omitempty,max=300"`
	Quantity          *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit              *string  `json:"unit" validate:"omitempty,max=50"`
	UnitPrice         *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
	MaterialUnitPrice *float64 `json:"materialUnitPrice" validate:"omitempty,gte=0"`
}

type CreateDiaryEntryRequest struct {
	WorkItemID     uuid.UUID `json:"workItemId" validate:"required"`
	Date           time.Time `json:"date" validate:"required"`
	Quantity       float64   `json:"quantity" validate:"gte=0"`
	WorkHours      float64   `json:"workHours" validate:"gte=0"`
	WorkerName     string    `json:"workerName" validate:"max=200"`
	WorkerEmail    string    `json:"workerEmail" validate:"omitempty,email"`
	ProgressAtDate *float64  `json:"progressAtDate"`
	GroupNo        *int      `json:"groupNo"`
	Notes          string    `json:"notes"`
}

type SetGroupApprovalRequest struct {
	Accepted bool `json:"accepted"`
}

// CreateWorkforceMemberRequest requires a name plus at least one contact
// method; the cross-field rule is enforced in the service layer.
type CreateWorkforceMemberRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone" validate:"max=50"`
	Role      string  `json:"role" validate:"max=200"`
	DailyRate float64 `json:"dailyRate" validate:"gte=0"`
}

type UpdateWorkforceMemberRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=200"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	Phone     *string  `json:"phone" validate:"omitempty,max=50"`
	Role      *string  `json:"role" validate:"omitempty,max=200"`
	DailyRate *float64 `json:"dailyRate" validate:"omitempty,gte=0"`
}

type CreateMaterialRequest struct {
	WorkItemID *uuid.UUID `json:"workItemId"`
	Name       string     `json:"name" validate:"required,max=300"`
	Quantity   float64    `json:"quantity" validate:"gte=0"`
	Unit       string     `json:"unit" validate:"max=50"`
	UnitPrice  float64    `json:"unitPrice" validate:"gte=0"`
}

type UpdateMaterialRequest struct {
	Quantity          *float64 `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice         *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
	AvailableQuantity *float64 `json:"availableQuantity" validate:"omitempty,gte=0"`
	AvailableFull     *bool    `json:"availableFull"`
}

type CreateToolRequest struct {
	Name        string `json:"name" validate:"required,max=300"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	Description string `json:"description"`
}

// AssignWorkerRequest puts a person on a work item. Known workforce
// members are matched by email; otherwise the contact details are
// stored as given.
type AssignWorkerRequest struct {
	WorkItemID uuid.UUID `json:"workItemId" validate:"required"`
	Name       string    `json:"name" validate:"required,max=200"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone" validate:"max=50"`
	Role       string    `json:"role" validate:"max=200"`
	Quantity   int       `json:"quantity" validate:"gte=1"`
}

type CreateBillingRequest struct {
	OfferID      uuid.UUID   `json:"offerId" validate:"required"`
	Title        string      `json:"title" validate:"required,max=200"`
	OfferItemIDs []uuid.UUID `json:"offerItemIds" validate:"required,min=1"`
}

// IssueBillingRequest optionally names who gets the invoice email
type IssueBillingRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"omitempty,email"`
}

type CreatePriceListItemRequest struct {
	Task              string  `json:"task" validate:"required,max=300"`
	Unit              string  `json:"unit" validate:"max=50"`
	UnitPrice         float64 `json:"unitPrice" validate:"gte=0"`
	MaterialUnitPrice float64 `json:"materialUnitPrice" validate:"gte=0"`
}

type UpdatePerformanceRequest struct {
	ExpectedProfitPercent *float64 `json:"expectedProfitPercent" validate:"omitempty,gte=-100,lte=100"`
	OfferPrice            *float64 `json:"offerPrice" validate:"omitempty,gte=0"`
	OwnCosts              *float64 `json:"ownCosts" validate:"omitempty,gte=0"`
}

// CheckoutSessionRequest starts a subscription checkout with the payment processor
type CheckoutSessionRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

// RedirectResponse carries the URL the client should navigate to
type RedirectResponse struct {
	URL string `json:"url"`
}
