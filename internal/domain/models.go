package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ActivityType represents the kind of sales activity being logged
type ActivityType string

const (
	ActivityTypeCall       ActivityType = "call"
	ActivityTypeQuotation  ActivityType = "quotation"
	ActivityTypeSalesOrder ActivityType = "sales_order"
	ActivityTypeDelivery   ActivityType = "delivery"
)

// IsValid checks if the ActivityType is a valid enum value
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeQuotation, ActivityTypeSalesOrder, ActivityTypeDelivery:
		return true
	}
	return false
}

// ActivityStatus represents the workflow status of an activity
type ActivityStatus string

const (
	ActivityStatusDraft       ActivityStatus = "draft"
	ActivityStatusForApproval ActivityStatus = "for_approval"
	ActivityStatusApproved    ActivityStatus = "approved"
	ActivityStatusDeclined    ActivityStatus = "declined"
	ActivityStatusCompleted   ActivityStatus = "completed"
)

// IsValid checks if the ActivityStatus is a valid enum value
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusDraft, ActivityStatusForApproval, ActivityStatusApproved, ActivityStatusDeclined, ActivityStatusCompleted:
		return true
	}
	return false
}

// VATType is the VAT classification printed on a quotation
type VATType string

const (
	VATInclusive VATType = "inclusive"
	VATExempt    VATType = "exempt"
	VATZeroRated VATType = "zero_rated"
)

// IsValid checks if the VATType is a valid enum value
func (v VATType) IsValid() bool {
	switch v {
	case VATInclusive, VATExempt, VATZeroRated:
		return true
	}
	return false
}

// Label returns the text shown next to the grand total
func (v VATType) Label() string {
	switch v {
	case VATExempt:
		return "VAT Exempt"
	case VATZeroRated:
		return "Zero-Rated"
	default:
		return "VAT Inc"
	}
}

// Activity is a logged sales activity. Quotation, sales order and delivery
// activities carry line items and, for quotations, a quotation number.
type Activity struct {
	BaseModel
	Type            ActivityType    `gorm:"type:varchar(30);not null;index"`
	Source          string          `gorm:"type:varchar(100)"`
	Status          ActivityStatus  `gorm:"type:varchar(30);not null;index"`
	Brand           Brand           `gorm:"type:varchar(30);index"`
	CompanyName     string          `gorm:"type:varchar(200);column:company_name"`
	ContactPerson   string          `gorm:"type:varchar(200);column:contact_person"`
	ContactNumber   string          `gorm:"type:varchar(50);column:contact_number"`
	EmailAddress    string          `gorm:"type:varchar(200);column:email_address"`
	Address         string          `gorm:"type:varchar(500)"`
	Remarks         string          `gorm:"type:text"`
	QuotationNumber string          `gorm:"type:varchar(50);index;column:quotation_number"`
	QuotationAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:quotation_amount"`
	VATType         VATType         `gorm:"type:varchar(20);column:vat_type"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:discount_percent"`
	AgentID         string          `gorm:"type:varchar(100);not null;index;column:agent_id"`
	AgentName       string          `gorm:"type:varchar(200);column:agent_name"`
	TerritoryCode   string          `gorm:"type:varchar(50);column:territory_code"`
	ManagerID       string          `gorm:"type:varchar(100);index;column:manager_id"`
	ManagerName     string          `gorm:"type:varchar(200);column:manager_name"`
	ManagerRemarks  string          `gorm:"type:text;column:manager_remarks"`
	SubmittedAt     *time.Time      `gorm:"column:submitted_at"`
	DecidedAt       *time.Time      `gorm:"column:decided_at"`
	Items           []LineItem      `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
}

// LineItem is one product row of an activity, stored as a unit
type LineItem struct {
	BaseModel
	ActivityID  uuid.UUID       `gorm:"type:uuid;not null;index;column:activity_id"`
	Position    int             `gorm:"not null;default:0"`
	ProductID   string          `gorm:"type:varchar(100);column:product_id"`
	Title       string          `gorm:"type:varchar(300);not null"`
	SKU         string          `gorm:"type:varchar(200)"`
	Description string          `gorm:"type:text"`
	Photo       string          `gorm:"type:varchar(1000)"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Discounted  bool            `gorm:"not null;default:false"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// TableName keeps the table name stable regardless of naming strategy
func (LineItem) TableName() string {
	return "activity_line_items"
}
