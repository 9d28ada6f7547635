package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// withChiContext adds chi URL params to a request
func withChiContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, user *auth.UserContext) *http.Request {
	return r.WithContext(auth.WithUserContext(r.Context(), user))
}

func agent() *auth.UserContext {
	return &auth.UserContext{
		UserID:        uuid.New(),
		DisplayName:   "Juan Dela Cruz",
		Roles:         []domain.UserRoleType{domain.RoleSalesAgent},
		TerritoryCode: "MNL-NORTH",
	}
}

func manager() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Ana Reyes",
		Roles:       []domain.UserRoleType{domain.RoleManager},
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr
}

func TestRespondServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		errType  string
		noOutput bool
	}{
		{err: service.ErrUnauthorized, status: http.StatusUnauthorized, errType: domain.ErrorTypeUnauthorized},
		{err: service.ErrPermissionDenied, status: http.StatusForbidden, errType: domain.ErrorTypeForbidden},
		{err: service.ErrNotFound, status: http.StatusNotFound, errType: domain.ErrorTypeNotFound},
		{err: fmt.Errorf("%w: locked", service.ErrQuotationNumberImmutable), status: http.StatusConflict, errType: domain.ErrorTypeConflict},
		{err: fmt.Errorf("%w: approved", service.ErrInvalidTransition), status: http.StatusConflict, errType: domain.ErrorTypeConflict},
		{err: fmt.Errorf("%w: bad", service.ErrInvalidInput), status: http.StatusBadRequest, errType: domain.ErrorTypeBadRequest},
		{err: service.ErrInvalidBrand, status: http.StatusBadRequest, errType: domain.ErrorTypeBadRequest},
		{err: service.ErrMissingTerritory, status: http.StatusBadRequest, errType: domain.ErrorTypeBadRequest},
		{err: fmt.Errorf("%w: gotenberg", service.ErrUpstream), status: http.StatusBadGateway, errType: domain.ErrorTypeBadGateway},
		{err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, errType: domain.ErrorTypeInternal},
		{err: errors.New("boom"), status: http.StatusInternalServerError, errType: domain.ErrorTypeInternal},
		{err: context.Canceled, status: http.StatusOK, noOutput: true},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, zap.NewNop(), tt.err, "do thing")

			assert.Equal(t, tt.status, rr.Code)
			if tt.noOutput {
				assert.Empty(t, rr.Body.String())
				return
			}
			apiErr := decodeAPIError(t, rr)
			assert.Equal(t, tt.errType, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestRespondServiceError_InternalDetailIsGeneric(t *testing.T) {
	rr := httptest.NewRecorder()
	respondServiceError(rr, zap.NewNop(), errors.New("pq: password authentication failed"), "list activities")

	apiErr := decodeAPIError(t, rr)
	assert.Equal(t, "Failed to list activities", apiErr.Detail)
}

func TestDecodeJSON_Validation(t *testing.T) {
	type body struct {
		Items []struct {
			Title string `json:"title" validate:"required"`
		} `json:"items" validate:"min=1,dive"`
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"items":[{"title":""}]}`))
	var dst body
	ok := decodeJSON(rr, req, &dst)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeAPIError(t, rr)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "items[0].title")
}

func TestDecodeJSON_MalformedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"items":`))
	var dst map[string]interface{}

	assert.False(t, decodeJSON(rr, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	payload := `{"title":"` + string(bytes.Repeat([]byte("a"), maxBodyBytes)) + `"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(payload))
	var dst map[string]interface{}

	assert.False(t, decodeJSON(rr, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
