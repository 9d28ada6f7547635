package mapper

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	dto := domain.ActivityDTO{
		ID:     activity.ID,
		Type:   activity.Type,
		Source: activity.Source,
		Status: activity.Status,
		Brand:  activity.Brand,
		Client: domain.ClientBlock{
			CompanyName:   activity.CompanyName,
			ContactPerson: activity.ContactPerson,
			ContactNumber: activity.ContactNumber,
			EmailAddress:  activity.EmailAddress,
			Address:       activity.Address,
		},
		Remarks:         activity.Remarks,
		QuotationNumber: activity.QuotationNumber,
		QuotationAmount: FormatMoney(activity.QuotationAmount),
		VATType:         activity.VATType,
		DiscountPercent: FormatMoney(activity.DiscountPercent),
		AgentID:         activity.AgentID,
		AgentName:       activity.AgentName,
		TerritoryCode:   activity.TerritoryCode,
		ManagerID:       activity.ManagerID,
		ManagerName:     activity.ManagerName,
		ManagerRemarks:  activity.ManagerRemarks,
		SubmittedAt:     formatTimePtr(activity.SubmittedAt),
		DecidedAt:       formatTimePtr(activity.DecidedAt),
		CreatedAt:       activity.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:       activity.UpdatedAt.UTC().Format(timestampLayout),
	}

	dto.Items = make([]domain.LineItemDTO, len(activity.Items))
	for i := range activity.Items {
		dto.Items[i] = ToLineItemDTO(&activity.Items[i])
	}
	if len(activity.Items) > 0 {
		legacy := EncodeLegacyProducts(activity.Items)
		dto.Legacy = &legacy
	}
	return dto
}

// ToLineItemDTO converts LineItem to LineItemDTO
func ToLineItemDTO(item *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:          item.ID,
		Position:    item.Position,
		ProductID:   item.ProductID,
		Title:       item.Title,
		SKU:         item.SKU,
		Description: item.Description,
		Photo:       item.Photo,
		Quantity:    item.Quantity,
		UnitPrice:   FormatMoney(item.UnitPrice),
		Discounted:  item.Discounted,
		Amount:      FormatMoney(item.Amount),
	}
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []domain.Activity) []domain.ActivityDTO {
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = ToActivityDTO(&activities[i])
	}
	return dtos
}

// FormatMoney renders a decimal with two fraction digits
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
