package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FlexNumber accepts a JSON number or a JSON string holding user input.
// Whatever the client typed is preserved verbatim; coercion happens in the
// pricing package.
type FlexNumber string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexNumber(s)
		return nil
	}
	*f = FlexNumber(data)
	return nil
}

// Product is a catalog search result normalized from any product source
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	SKUs        []string `json:"skus"`
	Price       string   `json:"price,omitempty"`
	Source      string   `json:"source"`
}

// SelectedProductInput is one row of the product selection as sent by the client
type SelectedProductInput struct {
	ID          string     `json:"id"`
	UID         string     `json:"uid,omitempty"`
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	SKUs        []string   `json:"skus"`
	Quantity    FlexNumber `json:"quantity"`
	Price       FlexNumber `json:"price"`
	Discounted  bool       `json:"discounted"`
}

// CalculateQuotationRequest asks for the totals of a product selection
type CalculateQuotationRequest struct {
	Products        []SelectedProductInput `json:"products" validate:"dive"`
	DiscountPercent FlexNumber             `json:"discountPercent"`
	VATType         VATType                `json:"vatType" validate:"omitempty,oneof=inclusive exempt zero_rated"`
}

// LineBreakdownDTO shows how one line total was derived
type LineBreakdownDTO struct {
	UID        string `json:"uid"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	Base       string `json:"base"`
	Discount   string `json:"discount"`
	Total      string `json:"total"`
	Discounted bool   `json:"discounted"`
}

// QuotationTotalsDTO is the Pricing Calculator output
type QuotationTotalsDTO struct {
	Lines           []LineBreakdownDTO `json:"lines"`
	Subtotal        string             `json:"subtotal"`
	DiscountTotal   string             `json:"discountTotal"`
	Total           string             `json:"total"`
	DiscountPercent string             `json:"discountPercent"`
	VATType         VATType            `json:"vatType"`
	VATLabel        string             `json:"vatLabel"`
}

// ClientBlock is the addressee section of a quotation
type ClientBlock struct {
	CompanyName   string `json:"companyName" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
	ContactNumber string `json:"contactNumber" validate:"max=50"`
	EmailAddress  string `json:"emailAddress" validate:"omitempty,email"`
	Address       string `json:"address" validate:"max=500"`
}

// QuotationDocumentRequest carries everything needed to assemble a quotation document
type QuotationDocumentRequest struct {
	QuotationNumber string                 `json:"quotationNumber" validate:"required,max=50"`
	Brand           Brand                  `json:"brand" validate:"required"`
	Date            *time.Time             `json:"date,omitempty"`
	Client          ClientBlock            `json:"client"`
	Products        []SelectedProductInput `json:"products" validate:"required,min=1,dive"`
	DiscountPercent FlexNumber             `json:"discountPercent"`
	VATType         VATType                `json:"vatType" validate:"omitempty,oneof=inclusive exempt zero_rated"`
	LogisticsNotes  []string               `json:"logisticsNotes"`
	PreparedBy      string                 `json:"preparedBy" validate:"max=200"`
	ApprovedBy      string                 `json:"approvedBy" validate:"max=200"`
}

// GenerateQuotationNumberRequest asks for the next number of a brand
type GenerateQuotationNumberRequest struct {
	Brand         Brand  `json:"brand" validate:"required"`
	TerritoryCode string `json:"territoryCode,omitempty" validate:"omitempty,min=2,max=50"`
}

// QuotationNumberDTO is the result of a Generate action
type QuotationNumberDTO struct {
	QuotationNumber string `json:"quotationNumber"`
	Prefix          string `json:"prefix"`
	Sequence        string `json:"sequence"`
}

// QuotationNumbersResponse lists previously issued numbers for a prefix
type QuotationNumbersResponse struct {
	QuotationNumbers []string `json:"quotationNumbers"`
}

// LineItemInput is a structured line item on activity create/update
type LineItemInput struct {
	ProductID   string     `json:"productId"`
	Title       string     `json:"title" validate:"required,max=300"`
	SKU         string     `json:"sku" validate:"max=200"`
	Description string     `json:"description"`
	Photo       string     `json:"photo" validate:"max=1000"`
	Quantity    FlexNumber `json:"quantity"`
	UnitPrice   FlexNumber `json:"unitPrice"`
	Discounted  bool       `json:"discounted"`
}

// LegacyProductFields is the parallel delimited encoding older clients send.
// Descriptions are joined with "||", every other field with ",".
type LegacyProductFields struct {
	ProductQuantity    string `json:"productQuantity"`
	ProductAmount      string `json:"productAmount"`
	ProductTitle       string `json:"productTitle"`
	ProductDescription string `json:"productDescription"`
	ProductPhoto       string `json:"productPhoto"`
	ProductSKU         string `json:"productSku"`
}

// CreateActivityRequest creates a new activity
type CreateActivityRequest struct {
	Type            ActivityType         `json:"type" validate:"required,oneof=call quotation sales_order delivery"`
	Source          string               `json:"source" validate:"max=100"`
	Status          ActivityStatus       `json:"status" validate:"omitempty,oneof=draft for_approval approved declined completed"`
	Brand           Brand                `json:"brand"`
	Client          ClientBlock          `json:"client"`
	Remarks         string               `json:"remarks" validate:"max=5000"`
	QuotationNumber string               `json:"quotationNumber" validate:"max=50"`
	VATType         VATType              `json:"vatType" validate:"omitempty,oneof=inclusive exempt zero_rated"`
	DiscountPercent FlexNumber           `json:"discountPercent"`
	Items           []LineItemInput      `json:"items" validate:"dive"`
	Legacy          *LegacyProductFields `json:"legacy,omitempty"`
}

// UpdateActivityRequest updates an existing activity. Nil fields are left unchanged.
type UpdateActivityRequest struct {
	Source          *string          `json:"source" validate:"omitempty,max=100"`
	Client          *ClientBlock     `json:"client"`
	Remarks         *string          `json:"remarks" validate:"omitempty,max=5000"`
	QuotationNumber *string          `json:"quotationNumber" validate:"omitempty,max=50"`
	VATType         *VATType         `json:"vatType" validate:"omitempty,oneof=inclusive exempt zero_rated"`
	DiscountPercent *FlexNumber      `json:"discountPercent"`
	Items           *[]LineItemInput `json:"items" validate:"omitempty,dive"`
}

// DeclineActivityRequest carries the manager's reason for declining
type DeclineActivityRequest struct {
	Remarks string `json:"remarks" validate:"required,max=5000"`
}

// LineItemDTO is the API representation of a line item
type LineItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Position    int       `json:"position"`
	ProductID   string    `json:"productId,omitempty"`
	Title       string    `json:"title"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	Photo       string    `json:"photo"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Discounted  bool      `json:"discounted"`
	Amount      string    `json:"amount"`
}

// ActivityDTO is the API representation of an activity
type ActivityDTO struct {
	ID              uuid.UUID            `json:"id"`
	Type            ActivityType         `json:"type"`
	Source          string               `json:"source"`
	Status          ActivityStatus       `json:"status"`
	Brand           Brand                `json:"brand,omitempty"`
	Client          ClientBlock          `json:"client"`
	Remarks         string               `json:"remarks"`
	QuotationNumber string               `json:"quotationNumber,omitempty"`
	QuotationAmount string               `json:"quotationAmount"`
	VATType         VATType              `json:"vatType,omitempty"`
	DiscountPercent string               `json:"discountPercent"`
	AgentID         string               `json:"agentId"`
	AgentName       string               `json:"agentName"`
	TerritoryCode   string               `json:"territoryCode,omitempty"`
	ManagerID       string               `json:"managerId,omitempty"`
	ManagerName     string               `json:"managerName,omitempty"`
	ManagerRemarks  string               `json:"managerRemarks,omitempty"`
	SubmittedAt     *string              `json:"submittedAt,omitempty"`
	DecidedAt       *string              `json:"decidedAt,omitempty"`
	Items           []LineItemDTO        `json:"items"`
	Legacy          *LegacyProductFields `json:"legacy,omitempty"`
	CreatedAt       string               `json:"createdAt"`
	UpdatedAt       string               `json:"updatedAt"`
}

// ExportQuotationRequest asks for a stored export reachable through a temporary link
type ExportQuotationRequest struct {
	Format    string                   `json:"format" validate:"required,oneof=pdf xlsx"`
	SessionID string                   `json:"sessionId" validate:"required,max=100"`
	Quotation QuotationDocumentRequest `json:"quotation"`
}

// DownloadLinkDTO is a temporary single-use link to an exported document
type DownloadLinkDTO struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	ExpiresAt string `json:"expiresAt"`
}

// ExportSessionDTO reports whether the previous export of a session was interrupted
type ExportSessionDTO struct {
	Interrupted     bool    `json:"interrupted"`
	ReferenceNumber string  `json:"referenceNumber,omitempty"`
	Format          string  `json:"format,omitempty"`
	StartedAt       *string `json:"startedAt,omitempty"`
}

// PaginatedResponse wraps paginated results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse is the legacy error shape kept for swagger annotations
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
