package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agentContext(id uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: id,
		Roles:  []domain.UserRoleType{domain.RoleSalesAgent},
	})
}

func managerContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Roles:  []domain.UserRoleType{domain.RoleManager},
	})
}

func TestActivityRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	agentID := uuid.New()
	ctx := agentContext(agentID)

	activity := &domain.Activity{
		Type:        domain.ActivityTypeQuotation,
		Status:      domain.ActivityStatusDraft,
		CompanyName: "Acme",
		AgentID:     agentID.String(),
		Items: []domain.LineItem{
			{Position: 1, Title: "Second", Quantity: 1, UnitPrice: decimal.NewFromInt(5), Amount: decimal.NewFromInt(5)},
			{Position: 0, Title: "First", Quantity: 2, UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(20)},
		},
	}
	require.NoError(t, repo.Create(ctx, activity))
	assert.NotEqual(t, uuid.Nil, activity.ID)

	got, err := repo.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "First", got.Items[0].Title)
	assert.Equal(t, "Second", got.Items[1].Title)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestActivityRepository_GetByID_ScopedToAgent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	owner := uuid.New()
	activity := testutil.CreateTestActivity(t, db, owner.String(), "EC-MN-2025-0001")

	_, err := repo.GetByID(agentContext(uuid.New()), activity.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(managerContext(), activity.ID)
	assert.NoError(t, err)

	_, err = repo.GetByID(agentContext(owner), activity.ID)
	assert.NoError(t, err)
}

func TestActivityRepository_UpdateReplacesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	owner := uuid.New()
	ctx := agentContext(owner)
	activity := testutil.CreateTestActivity(t, db, owner.String(), "EC-MN-2025-0002")

	activity.Remarks = "updated"
	activity.Items = []domain.LineItem{
		{Position: 0, Title: "Replacement A", Quantity: 1, UnitPrice: decimal.NewFromInt(1), Amount: decimal.NewFromInt(1)},
		{Position: 1, Title: "Replacement B", Quantity: 3, UnitPrice: decimal.NewFromInt(2), Amount: decimal.NewFromInt(6)},
	}
	require.NoError(t, repo.Update(ctx, activity, true))

	got, err := repo.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Remarks)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Replacement A", got.Items[0].Title)

	var count int64
	require.NoError(t, db.Model(&domain.LineItem{}).Where("activity_id = ?", activity.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestActivityRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	activity := testutil.CreateTestActivity(t, db, uuid.NewString(), "")

	require.NoError(t, repo.Delete(context.Background(), activity.ID))
	assert.ErrorIs(t, repo.Delete(context.Background(), activity.ID), repository.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.LineItem{}).Where("activity_id = ?", activity.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestActivityRepository_ListWithFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	agentA := uuid.New()
	agentB := uuid.New()
	testutil.CreateTestActivity(t, db, agentA.String(), "EC-MN-2025-0001")
	testutil.CreateTestActivity(t, db, agentA.String(), "EC-MN-2025-0002")
	testutil.CreateTestActivity(t, db, agentB.String(), "EC-MN-2025-0003")

	list, total, err := repo.ListWithFilters(agentContext(agentA), nil, repository.DefaultSortConfig(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
	assert.Len(t, list[0].Items, 1)

	status := domain.ActivityStatusApproved
	_, total, err = repo.ListWithFilters(managerContext(), &repository.ActivityFilters{Status: &status}, repository.DefaultSortConfig(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	sort := repository.SortConfig{Field: "quotationNumber", Order: repository.SortOrderAsc}
	list, total, err = repo.ListWithFilters(managerContext(), nil, sort, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "EC-MN-2025-0001", list[0].QuotationNumber)
}

func TestActivityRepository_ListQuotationNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	testutil.CreateTestActivity(t, db, uuid.NewString(), "EC-MN-2025-0001")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "EC-MN-2025-0003")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "EC-CE-2025-0009")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "DS-MN-2025-0004")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "")

	numbers, err := repo.ListQuotationNumbers(agentContext(uuid.New()), "EC-MN-2025")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"EC-MN-2025-0001", "EC-MN-2025-0003"}, numbers)

	numbers, err = repo.ListQuotationNumbers(context.Background(), "BC-MN-2025")
	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestActivityRepository_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	testutil.CreateTestActivity(t, db, uuid.NewString(), "")
	testutil.CreateTestActivity(t, db, uuid.NewString(), "")

	counts, err := repo.CountByStatus(managerContext())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.ActivityStatusDraft])
}
