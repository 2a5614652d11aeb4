package wallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.FreelancerProfile{},
		&models.WalletTransaction{},
	))
	return db
}

func TestCreditFreelancer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	userID := uuid.New()
	profile := models.FreelancerProfile{UserID: userID}
	require.NoError(t, db.Create(&profile).Error)

	projectA := uuid.New()
	projectB := uuid.New()

	require.NoError(t, svc.CreditFreelancer(db, userID, 500, projectA, "Payout A"))
	require.NoError(t, svc.CreditFreelancer(db, userID, 250, projectB, "Payout B"))

	var got models.FreelancerProfile
	require.NoError(t, db.First(&got, "user_id = ?", userID).Error)
	assert.Equal(t, int64(750), got.Balance)

	var ledger []models.WalletTransaction
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at ASC").Find(&ledger).Error)
	require.Len(t, ledger, 2)
	assert.Equal(t, int64(500), ledger[0].Amount)
	require.NotNil(t, ledger[0].ReferenceID)
	assert.Equal(t, projectA, *ledger[0].ReferenceID)

	total, err := svc.Earnings(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), total)
}

func TestCreditFreelancerValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	userID := uuid.New()
	profile := models.FreelancerProfile{UserID: userID}
	require.NoError(t, db.Create(&profile).Error)

	assert.Error(t, svc.CreditFreelancer(db, userID, 0, uuid.New(), "zero"))
	assert.Error(t, svc.CreditFreelancer(db, userID, -10, uuid.New(), "negative"))

	// unknown user leaves no ledger row
	assert.Error(t, svc.CreditFreelancer(db, uuid.New(), 100, uuid.New(), "ghost"))

	var count int64
	db.Model(&models.WalletTransaction{}).Count(&count)
	assert.Equal(t, int64(0), count)

	total, err := svc.Earnings(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
