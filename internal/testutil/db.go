package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/database"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the schema migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateTestActivity inserts a draft quotation owned by agentID
func CreateTestActivity(t *testing.T, db *gorm.DB, agentID, quotationNumber string) *domain.Activity {
	t.Helper()

	activity := &domain.Activity{
		Type:            domain.ActivityTypeQuotation,
		Source:          "outbound call",
		Status:          domain.ActivityStatusDraft,
		Brand:           domain.BrandEcoshift,
		CompanyName:     "Acme Trading",
		QuotationNumber: quotationNumber,
		QuotationAmount: decimal.NewFromInt(200),
		VATType:         domain.VATInclusive,
		AgentID:         agentID,
		AgentName:       "Test Agent",
		TerritoryCode:   "MNL",
		Items: []domain.LineItem{
			{
				Position:  0,
				Title:     "LED Panel",
				SKU:       "LP-100",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(100),
				Amount:    decimal.NewFromInt(200),
			},
		},
	}
	require.NoError(t, db.Create(activity).Error)
	return activity
}
