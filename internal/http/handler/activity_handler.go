package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/service"
	"go.uber.org/zap"
)

// ActivityHandler handles HTTP requests for sales activities (calls, quotations, sales orders, deliveries)
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler instance
func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activities
// @Description Get paginated list of activities. Agents only see their own.
// @Tags Activities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Filter by activity type (call, quotation, sales_order, delivery)"
// @Param status query string false "Filter by status (draft, for_approval, approved, declined, completed)"
// @Param brand query string false "Filter by brand"
// @Param agentId query string false "Filter by agent ID (managers only)"
// @Param quotationNumber query string false "Filter by quotation number prefix"
// @Param sortBy query string false "Sort field (createdAt, updatedAt, companyName, quotationAmount, quotationNumber)"
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	filters := &repository.ActivityFilters{}

	if activityType := q.Get("type"); activityType != "" {
		at := domain.ActivityType(activityType)
		if !at.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid activity type. Valid values: call, quotation, sales_order, delivery")
			return
		}
		filters.Type = &at
	}

	if status := q.Get("status"); status != "" {
		s := domain.ActivityStatus(status)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status. Valid values: draft, for_approval, approved, declined, completed")
			return
		}
		filters.Status = &s
	}

	if brand := q.Get("brand"); brand != "" {
		if !domain.IsValidBrand(brand) {
			respondWithError(w, http.StatusBadRequest, "Invalid brand")
			return
		}
		b := domain.Brand(brand)
		filters.Brand = &b
	}

	if agentID := q.Get("agentId"); agentID != "" {
		filters.AgentID = &agentID
	}
	if number := q.Get("quotationNumber"); number != "" {
		filters.QuotationNumber = &number
	}

	sort := repository.DefaultSortConfig()
	if sortBy := q.Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if order := q.Get("sortOrder"); order != "" {
		sort.Order = repository.ParseSortOrder(order)
	}

	result, err := h.activityService.List(r.Context(), filters, sort, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list activities")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Stats godoc
// @Summary Activity counts by status
// @Tags Activities
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/stats [get]
func (h *ActivityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.activityService.StatusCounts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "count activities")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// GetByID godoc
// @Summary Get activity by ID
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// Create godoc
// @Summary Create activity
// @Description Log a new sales activity. Quotations need a brand, a quotation number and at least one line item.
// @Description Totals are recomputed from the line items; legacy delimited product fields are accepted when items are empty.
// @Tags Activities
// @Accept json
// @Produce json
// @Param body body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create activity")
		return
	}

	w.Header().Set("Location", "/api/v1/activities/"+activity.ID.String())
	respondJSON(w, http.StatusCreated, activity)
}

// Update godoc
// @Summary Update activity
// @Description Update a draft or declined activity. The quotation number cannot change once set.
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Param body body domain.UpdateActivityRequest true "Activity data"
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// Delete godoc
// @Summary Delete activity
// @Description Only drafts can be deleted
// @Tags Activities
// @Param id path string true "Activity ID" format(uuid)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	if err := h.activityService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete activity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit godoc
// @Summary Submit activity for approval
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id}/submit [post]
func (h *ActivityHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	activity, err := h.activityService.Submit(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "submit activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// Approve godoc
// @Summary Approve activity
// @Description Managers only
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id}/approve [post]
func (h *ActivityHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	activity, err := h.activityService.Approve(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "approve activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// Decline godoc
// @Summary Decline activity
// @Description Managers only; remarks are required
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Param body body domain.DeclineActivityRequest true "Decline reason"
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id}/decline [post]
func (h *ActivityHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	var req domain.DeclineActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Decline(r.Context(), id, req.Remarks)
	if err != nil {
		respondServiceError(w, h.logger, err, "decline activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

func activityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid activity ID format")
		return uuid.Nil, false
	}
	return id, true
}
