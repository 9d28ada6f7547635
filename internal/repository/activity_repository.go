package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist or is outside the caller's scope
var ErrNotFound = errors.New("record not found")

// ActivityFilters narrows activity listings. Nil fields are ignored.
type ActivityFilters struct {
	Type            *domain.ActivityType
	Status          *domain.ActivityStatus
	Brand           *domain.Brand
	AgentID         *string
	QuotationNumber *string
}

var activitySortFields = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"companyName":     "company_name",
	"quotationAmount": "quotation_amount",
	"quotationNumber": "quotation_number",
	"status":          "status",
}

// ActivityRepository handles database operations for activities and their line items.
//
// Index recommendations:
// - CREATE INDEX idx_activities_quotation_number ON activities(quotation_number text_pattern_ops);
// - CREATE INDEX idx_activities_agent_id ON activities(agent_id);
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts the activity together with its line items
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByID loads an activity with ordered line items, scoped to the caller
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id)
	query = ApplyAgentFilter(ctx, query)
	err := query.First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// Update saves the activity. When replaceItems is set the stored line items are
// swapped for activity.Items in one transaction.
func (r *ActivityRepository) Update(ctx context.Context, activity *domain.Activity, replaceItems bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceItems {
			if err := tx.Where("activity_id = ?", activity.ID).Delete(&domain.LineItem{}).Error; err != nil {
				return fmt.Errorf("deleting line items: %w", err)
			}
			for i := range activity.Items {
				activity.Items[i].ID = uuid.Nil
				activity.Items[i].ActivityID = activity.ID
			}
			if len(activity.Items) > 0 {
				if err := tx.Create(&activity.Items).Error; err != nil {
					return fmt.Errorf("creating line items: %w", err)
				}
			}
		}
		if err := tx.Omit("Items").Save(activity).Error; err != nil {
			return fmt.Errorf("saving activity: %w", err)
		}
		return nil
	})
}

// Delete removes an activity and its line items
func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&domain.LineItem{}).Error; err != nil {
			return fmt.Errorf("deleting line items: %w", err)
		}
		result := tx.Delete(&domain.Activity{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListWithFilters retrieves activities matching the filters with pagination.
// Line items are preloaded.
func (r *ActivityRepository) ListWithFilters(ctx context.Context, filters *ActivityFilters, sort SortConfig, page, pageSize int) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	page, pageSize = NormalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Activity{})
	query = ApplyAgentFilter(ctx, query)
	if filters != nil {
		query = r.applyFilters(query, filters)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting filtered activities: %w", err)
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order(BuildOrderClause(sort, activitySortFields, "updated_at")).
		Offset(offset).Limit(pageSize).
		Find(&activities).Error
	if err != nil {
		return nil, 0, fmt.Errorf("fetching filtered activities: %w", err)
	}

	return activities, total, nil
}

func (r *ActivityRepository) applyFilters(query *gorm.DB, filters *ActivityFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Brand != nil {
		query = query.Where("brand = ?", *filters.Brand)
	}
	if filters.AgentID != nil {
		query = query.Where("agent_id = ?", *filters.AgentID)
	}
	if filters.QuotationNumber != nil {
		query = query.Where("quotation_number = ?", *filters.QuotationNumber)
	}
	return query
}

// ListQuotationNumbers returns every stored quotation number starting with prefix + "-".
// The lookup is not scoped to the caller: numbers are shared across agents.
func (r *ActivityRepository) ListQuotationNumbers(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&domain.Activity{}).
		Where("quotation_number LIKE ? ESCAPE '\\'", escapeLike(prefix)+"-%").
		Pluck("quotation_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("listing quotation numbers: %w", err)
	}
	return numbers, nil
}

// CountByStatus returns activity counts per status within the caller's scope
func (r *ActivityRepository) CountByStatus(ctx context.Context) (map[domain.ActivityStatus]int64, error) {
	var results []struct {
		Status domain.ActivityStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyAgentFilter(ctx, query)

	if err := query.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("counting activities by status: %w", err)
	}

	counts := make(map[domain.ActivityStatus]int64, len(results))
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, nil
}
