package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/straye-as/salesops-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupActivityHandler(t *testing.T) *ActivityHandler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := service.NewActivityService(repository.NewActivityRepository(db), zap.NewNop())
	return NewActivityHandler(svc, zap.NewNop())
}

func createActivityBody() map[string]interface{} {
	return map[string]interface{}{
		"type":            "quotation",
		"source":          "walk-in",
		"status":          "draft",
		"brand":           "ecoshift",
		"client":          map[string]string{"companyName": "Acme Trading"},
		"quotationNumber": "EC-MN-2025-0004",
		"discountPercent": 10,
		"items": []map[string]interface{}{
			{"title": "LED Panel", "quantity": "2", "unitPrice": 100, "discounted": true},
			{"title": "Floodlight", "quantity": 1, "unitPrice": "50"},
		},
	}
}

func createActivity(t *testing.T, h *ActivityHandler, user *auth.UserContext) domain.ActivityDTO {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Create(rr, withUser(jsonRequest(t, http.MethodPost, "/api/v1/activities", createActivityBody()), user))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var dto domain.ActivityDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	return dto
}

func TestActivityHandler_Create(t *testing.T) {
	h := setupActivityHandler(t)
	user := agent()

	rr := httptest.NewRecorder()
	h.Create(rr, withUser(jsonRequest(t, http.MethodPost, "/api/v1/activities", createActivityBody()), user))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var dto domain.ActivityDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, "/api/v1/activities/"+dto.ID.String(), rr.Header().Get("Location"))
	assert.Equal(t, "230.00", dto.QuotationAmount)
	assert.Equal(t, user.UserID.String(), dto.AgentID)
	assert.Len(t, dto.Items, 2)
}

func TestActivityHandler_CreateValidation(t *testing.T) {
	h := setupActivityHandler(t)

	body := createActivityBody()
	delete(body, "type")
	rr := httptest.NewRecorder()
	h.Create(rr, withUser(jsonRequest(t, http.MethodPost, "/api/v1/activities", body), agent()))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeAPIError(t, rr)
	assert.Contains(t, apiErr.Errors, "type")
}

func TestActivityHandler_CreateWithoutUser(t *testing.T) {
	h := setupActivityHandler(t)

	rr := httptest.NewRecorder()
	h.Create(rr, jsonRequest(t, http.MethodPost, "/api/v1/activities", createActivityBody()))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestActivityHandler_GetByID(t *testing.T) {
	h := setupActivityHandler(t)
	user := agent()
	created := createActivity(t, h, user)

	t.Run("owner", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activities/"+created.ID.String(), nil)
		h.GetByID(rr, withChiContext(withUser(req, user), map[string]string{"id": created.ID.String()}))

		require.Equal(t, http.StatusOK, rr.Code)
		var dto domain.ActivityDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, created.ID, dto.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activities/nope", nil)
		h.GetByID(rr, withChiContext(withUser(req, user), map[string]string{"id": "nope"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("other agent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activities/"+created.ID.String(), nil)
		h.GetByID(rr, withChiContext(withUser(req, agent()), map[string]string{"id": created.ID.String()}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestActivityHandler_ListFilters(t *testing.T) {
	h := setupActivityHandler(t)
	user := agent()
	createActivity(t, h, user)

	t.Run("valid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?status=draft&brand=ecoshift&pageSize=5", nil)
		h.List(rr, withUser(req, user))

		require.Equal(t, http.StatusOK, rr.Code)
		var page struct {
			Data     []domain.ActivityDTO `json:"data"`
			Total    int64                `json:"total"`
			PageSize int                  `json:"pageSize"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 5, page.PageSize)
	})

	for _, query := range []string{"status=unknown", "type=meeting", "brand=acme"} {
		t.Run(query, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?"+query, nil)
			h.List(rr, withUser(req, user))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestActivityHandler_ApprovalFlow(t *testing.T) {
	h := setupActivityHandler(t)
	owner := agent()
	created := createActivity(t, h, owner)
	params := map[string]string{"id": created.ID.String()}
	target := "/api/v1/activities/" + created.ID.String()

	rr := httptest.NewRecorder()
	h.Submit(rr, withChiContext(withUser(httptest.NewRequest(http.MethodPost, target+"/submit", nil), owner), params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// agents cannot approve
	rr = httptest.NewRecorder()
	h.Approve(rr, withChiContext(withUser(httptest.NewRequest(http.MethodPost, target+"/approve", nil), owner), params))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// decline needs remarks
	rr = httptest.NewRecorder()
	h.Decline(rr, withChiContext(withUser(jsonRequest(t, http.MethodPost, target+"/decline", map[string]string{}), manager()), params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Approve(rr, withChiContext(withUser(httptest.NewRequest(http.MethodPost, target+"/approve", nil), manager()), params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var dto domain.ActivityDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, domain.ActivityStatusApproved, dto.Status)
	assert.NotNil(t, dto.DecidedAt)

	// approved activities are final
	rr = httptest.NewRecorder()
	h.Delete(rr, withChiContext(withUser(httptest.NewRequest(http.MethodDelete, target, nil), owner), params))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestActivityHandler_UpdateQuotationNumberImmutable(t *testing.T) {
	h := setupActivityHandler(t)
	owner := agent()
	created := createActivity(t, h, owner)

	rr := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPut, "/api/v1/activities/"+created.ID.String(), map[string]string{"quotationNumber": "EC-MN-2025-0099"})
	h.Update(rr, withChiContext(withUser(req, owner), map[string]string{"id": created.ID.String()}))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestActivityHandler_DeleteDraft(t *testing.T) {
	h := setupActivityHandler(t)
	owner := agent()
	created := createActivity(t, h, owner)
	params := map[string]string{"id": created.ID.String()}

	rr := httptest.NewRecorder()
	h.Delete(rr, withChiContext(withUser(httptest.NewRequest(http.MethodDelete, "/", nil), owner), params))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.GetByID(rr, withChiContext(withUser(httptest.NewRequest(http.MethodGet, "/", nil), owner), params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestActivityHandler_Stats(t *testing.T) {
	h := setupActivityHandler(t)
	owner := agent()
	createActivity(t, h, owner)
	createActivity(t, h, owner)

	rr := httptest.NewRecorder()
	h.Stats(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/activities/stats", nil), manager()))

	require.Equal(t, http.StatusOK, rr.Code)
	var counts map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counts))
	assert.Equal(t, int64(2), counts["draft"])
}
