package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/straye-as/salesops-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupActivityService(t *testing.T) (*service.ActivityService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	return service.NewActivityService(repo, zap.NewNop()), db
}

func agentContext(id uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:        id,
		DisplayName:   "Juan Dela Cruz",
		Roles:         []domain.UserRoleType{domain.RoleSalesAgent},
		TerritoryCode: "MNL-NORTH",
	})
}

func managerContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Ana Reyes",
		Roles:       []domain.UserRoleType{domain.RoleManager},
	})
}

func quotationRequest() *domain.CreateActivityRequest {
	return &domain.CreateActivityRequest{
		Type:            domain.ActivityTypeQuotation,
		Source:          "walk-in",
		Status:          domain.ActivityStatusDraft,
		Brand:           domain.BrandEcoshift,
		Client:          domain.ClientBlock{CompanyName: "Acme Trading"},
		QuotationNumber: "EC-MN-2025-0004",
		DiscountPercent: "10",
		Items: []domain.LineItemInput{
			{Title: "LED Panel", Quantity: "2", UnitPrice: "100", Discounted: true},
			{Title: "Floodlight", Quantity: "1", UnitPrice: "50"},
		},
	}
}

func TestActivityService_CreateComputesTotals(t *testing.T) {
	svc, _ := setupActivityService(t)
	agentID := uuid.New()

	req := quotationRequest()
	dto, err := svc.Create(agentContext(agentID), req)
	require.NoError(t, err)

	assert.Equal(t, "230.00", dto.QuotationAmount)
	assert.Equal(t, "10.00", dto.DiscountPercent)
	assert.Equal(t, domain.VATInclusive, dto.VATType)
	assert.Equal(t, agentID.String(), dto.AgentID)
	assert.Equal(t, "MNL-NORTH", dto.TerritoryCode)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, "180.00", dto.Items[0].Amount)
	assert.Equal(t, "50.00", dto.Items[1].Amount)
	assert.Equal(t, 1, dto.Items[1].Position)
}

func TestActivityService_CreateClampsInput(t *testing.T) {
	svc, _ := setupActivityService(t)

	req := quotationRequest()
	req.DiscountPercent = ""
	req.Items = []domain.LineItemInput{{Title: "Cable", Quantity: "0", UnitPrice: "-5"}, {Title: "Tape", Quantity: "abc", UnitPrice: "x"}}

	dto, err := svc.Create(agentContext(uuid.New()), req)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Items[0].Quantity)
	assert.Equal(t, "0.00", dto.Items[0].UnitPrice)
	assert.Equal(t, 1, dto.Items[1].Quantity)
	assert.Equal(t, "0.00", dto.QuotationAmount)
}

func TestActivityService_CreateExemptForcesDiscount(t *testing.T) {
	svc, _ := setupActivityService(t)

	req := quotationRequest()
	req.DiscountPercent = ""
	req.VATType = domain.VATExempt

	dto, err := svc.Create(agentContext(uuid.New()), req)
	require.NoError(t, err)
	assert.Equal(t, "12.00", dto.DiscountPercent)
	// 200 - 24 + 50
	assert.Equal(t, "226.00", dto.QuotationAmount)
}

func TestActivityService_CreateFromLegacyFields(t *testing.T) {
	svc, _ := setupActivityService(t)

	req := quotationRequest()
	req.Items = nil
	req.Legacy = &domain.LegacyProductFields{
		ProductQuantity:    "2,1",
		ProductAmount:      "100,50",
		ProductTitle:       "LED Panel,Floodlight",
		ProductDescription: "<p>a</p>||<p>b</p>",
	}

	dto, err := svc.Create(agentContext(uuid.New()), req)
	require.NoError(t, err)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, "<p>b</p>", dto.Items[1].Description)
	assert.Equal(t, "250.00", dto.QuotationAmount)

	req.Legacy.ProductQuantity = "2"
	_, err = svc.Create(agentContext(uuid.New()), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestActivityService_CreateValidation(t *testing.T) {
	svc, _ := setupActivityService(t)
	ctx := agentContext(uuid.New())

	tests := []struct {
		name   string
		mutate func(r *domain.CreateActivityRequest)
		want   error
	}{
		{"missing source", func(r *domain.CreateActivityRequest) { r.Source = "" }, service.ErrInvalidInput},
		{"missing status", func(r *domain.CreateActivityRequest) { r.Status = "" }, service.ErrInvalidInput},
		{"no items", func(r *domain.CreateActivityRequest) { r.Items = nil }, service.ErrInvalidInput},
		{"no number", func(r *domain.CreateActivityRequest) { r.QuotationNumber = "" }, service.ErrInvalidInput},
		{"bad number", func(r *domain.CreateActivityRequest) { r.QuotationNumber = "Q-1" }, service.ErrInvalidInput},
		{"bad brand", func(r *domain.CreateActivityRequest) { r.Brand = "acme" }, service.ErrInvalidBrand},
		{"approval status", func(r *domain.CreateActivityRequest) { r.Status = domain.ActivityStatusApproved }, service.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := quotationRequest()
			tt.mutate(req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Create(context.Background(), quotationRequest())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestActivityService_CallNeedsNoItems(t *testing.T) {
	svc, _ := setupActivityService(t)

	dto, err := svc.Create(agentContext(uuid.New()), &domain.CreateActivityRequest{
		Type:   domain.ActivityTypeCall,
		Source: "outbound",
		Status: domain.ActivityStatusCompleted,
		Client: domain.ClientBlock{CompanyName: "Acme Trading"},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", dto.QuotationAmount)
	assert.Empty(t, dto.VATType)
}

func TestActivityService_QuotationNumberImmutable(t *testing.T) {
	svc, db := setupActivityService(t)
	agentID := uuid.New()
	activity := testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0001")

	other := "EC-MN-2025-0002"
	_, err := svc.Update(agentContext(agentID), activity.ID, &domain.UpdateActivityRequest{QuotationNumber: &other})
	assert.ErrorIs(t, err, service.ErrQuotationNumberImmutable)

	same := "EC-MN-2025-0001"
	remarks := "follow up friday"
	dto, err := svc.Update(agentContext(agentID), activity.ID, &domain.UpdateActivityRequest{QuotationNumber: &same, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, "EC-MN-2025-0001", dto.QuotationNumber)
	assert.Equal(t, remarks, dto.Remarks)
}

func TestActivityService_UpdateRecomputesAmounts(t *testing.T) {
	svc, db := setupActivityService(t)
	agentID := uuid.New()
	activity := testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0001")

	items := []domain.LineItemInput{
		{Title: "LED Panel", Quantity: "3", UnitPrice: "100", Discounted: true},
	}
	discount := domain.FlexNumber("20")
	dto, err := svc.Update(agentContext(agentID), activity.ID, &domain.UpdateActivityRequest{
		Items:           &items,
		DiscountPercent: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, "240.00", dto.QuotationAmount)
	require.Len(t, dto.Items, 1)

	reloaded, err := svc.GetByID(agentContext(agentID), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "240.00", reloaded.QuotationAmount)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 3, reloaded.Items[0].Quantity)
}

func TestActivityService_OtherAgentCannotSee(t *testing.T) {
	svc, db := setupActivityService(t)
	activity := testutil.CreateTestActivity(t, db, uuid.NewString(), "EC-MN-2025-0001")

	_, err := svc.GetByID(agentContext(uuid.New()), activity.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	dto, err := svc.GetByID(managerContext(), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, activity.ID, dto.ID)
}

func TestActivityService_ApprovalWorkflow(t *testing.T) {
	svc, db := setupActivityService(t)
	agentID := uuid.New()
	activity := testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0001")

	// approving a draft is not allowed
	_, err := svc.Approve(managerContext(), activity.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	dto, err := svc.Submit(agentContext(agentID), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusForApproval, dto.Status)
	assert.NotNil(t, dto.SubmittedAt)

	// agents cannot decide
	_, err = svc.Approve(agentContext(agentID), activity.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = svc.Decline(managerContext(), activity.ID, "  ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	dto, err = svc.Decline(managerContext(), activity.ID, "price too low")
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusDeclined, dto.Status)
	assert.Equal(t, "price too low", dto.ManagerRemarks)
	assert.Equal(t, "Ana Reyes", dto.ManagerName)

	dto, err = svc.Submit(agentContext(agentID), activity.ID)
	require.NoError(t, err)
	assert.Empty(t, dto.ManagerRemarks)

	dto, err = svc.Approve(managerContext(), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusApproved, dto.Status)

	_, err = svc.Submit(agentContext(agentID), activity.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	remarks := "late edit"
	_, err = svc.Update(agentContext(agentID), activity.ID, &domain.UpdateActivityRequest{Remarks: &remarks})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestActivityService_DeleteDraftsOnly(t *testing.T) {
	svc, db := setupActivityService(t)
	agentID := uuid.New()
	draft := testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0001")
	submitted := testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0002")

	_, err := svc.Submit(agentContext(agentID), submitted.ID)
	require.NoError(t, err)

	err = svc.Delete(agentContext(agentID), submitted.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	require.NoError(t, svc.Delete(agentContext(agentID), draft.ID))

	_, err = svc.GetByID(agentContext(agentID), draft.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestActivityService_List(t *testing.T) {
	svc, db := setupActivityService(t)
	agentID := uuid.New()
	testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0001")
	testutil.CreateTestActivity(t, db, agentID.String(), "EC-MN-2025-0002")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "EC-MN-2025-0003")

	resp, err := svc.List(agentContext(agentID), nil, repository.DefaultSortConfig(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Data, 1)

	resp, err = svc.List(managerContext(), nil, repository.DefaultSortConfig(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)

	counts, err := svc.StatusCounts(managerContext())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[domain.ActivityStatusDraft])
}
