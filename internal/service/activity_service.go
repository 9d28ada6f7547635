package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/mapper"
	"github.com/straye-as/salesops-api/internal/pricing"
	"github.com/straye-as/salesops-api/internal/repository"
	"go.uber.org/zap"
)

// ActivityService handles business logic for logged sales activities and
// their approval workflow
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewActivityService creates a new ActivityService instance
func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// requiresLineItems reports whether the activity type carries products
func requiresLineItems(t domain.ActivityType) bool {
	return t == domain.ActivityTypeQuotation || t == domain.ActivityTypeSalesOrder || t == domain.ActivityTypeDelivery
}

// Create validates and stores a new activity. Amounts are computed from the
// line items; any client-sent totals are ignored.
func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, req.Type)
	}

	status := req.Status
	if req.Type == domain.ActivityTypeCall || req.Type == domain.ActivityTypeQuotation {
		if strings.TrimSpace(req.Source) == "" {
			return nil, fmt.Errorf("%w: source is required for %s activities", ErrInvalidInput, req.Type)
		}
		if status == "" {
			return nil, fmt.Errorf("%w: status is required for %s activities", ErrInvalidInput, req.Type)
		}
	}
	if status == "" {
		status = domain.ActivityStatusDraft
	}
	// New records enter the workflow as draft or completed; approval states are reached through Submit/Approve/Decline
	if status != domain.ActivityStatusDraft && status != domain.ActivityStatusCompleted {
		return nil, fmt.Errorf("%w: new activities must be draft or completed, got %s", ErrInvalidInput, status)
	}

	if req.Brand != "" && !domain.IsValidBrand(string(req.Brand)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBrand, req.Brand)
	}

	inputs := req.Items
	if len(inputs) == 0 && req.Legacy != nil {
		decoded, err := mapper.DecodeLegacyProducts(req.Legacy)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		inputs = decoded
	}

	number := strings.TrimSpace(req.QuotationNumber)
	if req.Type == domain.ActivityTypeQuotation {
		if req.Brand == "" {
			return nil, fmt.Errorf("%w: brand is required for quotations", ErrInvalidInput)
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("%w: a quotation needs at least one line item", ErrInvalidInput)
		}
		if number == "" {
			return nil, fmt.Errorf("%w: quotation number is required", ErrInvalidInput)
		}
	}
	if number != "" && !ValidateQuotationNumber(number) {
		return nil, fmt.Errorf("%w: malformed quotation number %q", ErrInvalidInput, number)
	}

	pc := pricing.ResolveContext(req.VATType, req.DiscountPercent)
	items := buildLineItems(inputs)
	total := priceLineItems(items, pc.Discount())

	activity := &domain.Activity{
		Type:            req.Type,
		Source:          strings.TrimSpace(req.Source),
		Status:          status,
		Brand:           req.Brand,
		CompanyName:     req.Client.CompanyName,
		ContactPerson:   req.Client.ContactPerson,
		ContactNumber:   req.Client.ContactNumber,
		EmailAddress:    req.Client.EmailAddress,
		Address:         req.Client.Address,
		Remarks:         req.Remarks,
		QuotationNumber: number,
		QuotationAmount: total,
		DiscountPercent: pc.Discount(),
		AgentID:         userCtx.UserID.String(),
		AgentName:       userCtx.DisplayName,
		TerritoryCode:   userCtx.TerritoryCode,
		Items:           items,
	}
	if requiresLineItems(req.Type) {
		activity.VATType = pc.VATType()
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("type", string(activity.Type)),
		zap.String("agent_id", activity.AgentID),
		zap.String("quotation_number", activity.QuotationNumber))

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// Update applies the non-nil fields of req. Approved and completed activities
// are read-only, and an assigned quotation number never changes.
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateActivityRequest) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(userCtx, activity) {
		return nil, ErrPermissionDenied
	}
	if activity.Status != domain.ActivityStatusDraft && activity.Status != domain.ActivityStatusDeclined {
		return nil, fmt.Errorf("%w: %s activities cannot be edited", ErrConflict, activity.Status)
	}

	if req.QuotationNumber != nil {
		number := strings.TrimSpace(*req.QuotationNumber)
		switch {
		case activity.QuotationNumber != "" && number != activity.QuotationNumber:
			return nil, ErrQuotationNumberImmutable
		case activity.QuotationNumber == "" && number != "":
			if !ValidateQuotationNumber(number) {
				return nil, fmt.Errorf("%w: malformed quotation number %q", ErrInvalidInput, number)
			}
			activity.QuotationNumber = number
		}
	}

	if req.Source != nil {
		activity.Source = strings.TrimSpace(*req.Source)
	}
	if req.Client != nil {
		activity.CompanyName = req.Client.CompanyName
		activity.ContactPerson = req.Client.ContactPerson
		activity.ContactNumber = req.Client.ContactNumber
		activity.EmailAddress = req.Client.EmailAddress
		activity.Address = req.Client.Address
	}
	if req.Remarks != nil {
		activity.Remarks = *req.Remarks
	}

	pc := pricing.NewContext()
	if req.VATType != nil {
		pc.SetVATType(*req.VATType)
	} else {
		if activity.VATType != "" {
			pc.SetVATType(activity.VATType)
		}
		pc.SetDiscount(activity.DiscountPercent)
	}
	if req.DiscountPercent != nil && strings.TrimSpace(string(*req.DiscountPercent)) != "" {
		pc.SetDiscount(pricing.ParsePrice(string(*req.DiscountPercent)))
	}

	replaceItems := req.Items != nil
	if replaceItems {
		if activity.Type == domain.ActivityTypeQuotation && len(*req.Items) == 0 {
			return nil, fmt.Errorf("%w: a quotation needs at least one line item", ErrInvalidInput)
		}
		activity.Items = buildLineItems(*req.Items)
	}
	activity.QuotationAmount = priceLineItems(activity.Items, pc.Discount())
	activity.DiscountPercent = pc.Discount()
	if requiresLineItems(activity.Type) {
		activity.VATType = pc.VATType()
	}
	if !replaceItems {
		// Line amounts follow the discount even when the rows themselves are unchanged
		replaceItems = len(activity.Items) > 0
	}

	if err := s.activityRepo.Update(ctx, activity, replaceItems); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.logger.Info("activity updated",
		zap.String("activity_id", activity.ID.String()),
		zap.String("updated_by", userCtx.UserID.String()))

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// Delete removes a draft activity
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	activity, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.canModify(userCtx, activity) {
		return ErrPermissionDenied
	}
	if activity.Status != domain.ActivityStatusDraft {
		return fmt.Errorf("%w: only drafts can be deleted", ErrInvalidTransition)
	}

	if err := s.activityRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	s.logger.Info("activity deleted",
		zap.String("activity_id", id.String()),
		zap.String("deleted_by", userCtx.UserID.String()))
	return nil
}

// GetByID retrieves a single activity visible to the caller
func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivityDTO, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// List returns a paginated list of activities visible to the caller
func (s *ActivityService) List(ctx context.Context, filters *repository.ActivityFilters, sort repository.SortConfig, page, pageSize int) (*domain.PaginatedResponse, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}

	page, pageSize = repository.NormalizePage(page, pageSize)

	activities, total, err := s.activityRepo.ListWithFilters(ctx, filters, sort, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToActivityDTOs(activities),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// StatusCounts returns the number of visible activities per workflow status
func (s *ActivityService) StatusCounts(ctx context.Context) (map[domain.ActivityStatus]int64, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}
	counts, err := s.activityRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}
	return counts, nil
}

// Submit sends an agent's draft (or a declined activity, after rework) for approval
func (s *ActivityService) Submit(ctx context.Context, id uuid.UUID) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(userCtx, activity) {
		return nil, ErrPermissionDenied
	}
	if activity.Status != domain.ActivityStatusDraft && activity.Status != domain.ActivityStatusDeclined {
		return nil, fmt.Errorf("%w: cannot submit a %s activity", ErrInvalidTransition, activity.Status)
	}
	if activity.Type == domain.ActivityTypeQuotation && (activity.QuotationNumber == "" || len(activity.Items) == 0) {
		return nil, fmt.Errorf("%w: quotation needs a number and line items before submission", ErrInvalidInput)
	}

	now := s.now()
	activity.Status = domain.ActivityStatusForApproval
	activity.SubmittedAt = &now
	activity.DecidedAt = nil
	activity.ManagerRemarks = ""

	return s.saveTransition(ctx, activity, userCtx, "activity submitted")
}

// Approve accepts an activity awaiting approval. Managers only.
func (s *ActivityService) Approve(ctx context.Context, id uuid.UUID) (*domain.ActivityDTO, error) {
	return s.decide(ctx, id, domain.ActivityStatusApproved, "")
}

// Decline rejects an activity awaiting approval with the manager's remarks. Managers only.
func (s *ActivityService) Decline(ctx context.Context, id uuid.UUID, remarks string) (*domain.ActivityDTO, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, fmt.Errorf("%w: remarks are required when declining", ErrInvalidInput)
	}
	return s.decide(ctx, id, domain.ActivityStatusDeclined, remarks)
}

func (s *ActivityService) decide(ctx context.Context, id uuid.UUID, to domain.ActivityStatus, remarks string) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.IsManager() {
		return nil, ErrPermissionDenied
	}

	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity.Status != domain.ActivityStatusForApproval {
		return nil, fmt.Errorf("%w: cannot move %s activity to %s", ErrInvalidTransition, activity.Status, to)
	}

	now := s.now()
	activity.Status = to
	activity.DecidedAt = &now
	activity.ManagerID = userCtx.UserID.String()
	activity.ManagerName = userCtx.DisplayName
	activity.ManagerRemarks = remarks

	return s.saveTransition(ctx, activity, userCtx, "activity "+string(to))
}

func (s *ActivityService) saveTransition(ctx context.Context, activity *domain.Activity, userCtx *auth.UserContext, msg string) (*domain.ActivityDTO, error) {
	if err := s.activityRepo.Update(ctx, activity, false); err != nil {
		return nil, fmt.Errorf("failed to update activity status: %w", err)
	}

	s.logger.Info(msg,
		zap.String("activity_id", activity.ID.String()),
		zap.String("status", string(activity.Status)),
		zap.String("by", userCtx.UserID.String()))

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

func (s *ActivityService) load(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

// canModify allows the owning agent and managers
func (s *ActivityService) canModify(userCtx *auth.UserContext, activity *domain.Activity) bool {
	if userCtx.IsManager() || userCtx.IsAdmin() {
		return true
	}
	return activity.AgentID == userCtx.UserID.String()
}

// buildLineItems converts inputs into ordered line items with clamped quantity and price
func buildLineItems(inputs []domain.LineItemInput) []domain.LineItem {
	items := make([]domain.LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = domain.LineItem{
			Position:    i,
			ProductID:   in.ProductID,
			Title:       strings.TrimSpace(in.Title),
			SKU:         in.SKU,
			Description: in.Description,
			Photo:       in.Photo,
			Quantity:    pricing.ParseQuantity(string(in.Quantity)),
			UnitPrice:   pricing.ParsePrice(string(in.UnitPrice)),
			Discounted:  in.Discounted,
		}
	}
	return items
}

// priceLineItems sets every item's amount and returns the grand total
func priceLineItems(items []domain.LineItem, discountPct decimal.Decimal) decimal.Decimal {
	products := make([]pricing.SelectedProduct, len(items))
	for i, item := range items {
		products[i] = pricing.SelectedProduct{
			ID:         item.ProductID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Discounted: item.Discounted,
		}
	}
	totals := pricing.Calculate(products, discountPct)
	for i := range items {
		items[i].Amount = totals.Lines[i].Total.Round(2)
	}
	return totals.Total.Round(2)
}
