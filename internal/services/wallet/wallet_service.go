package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreditFreelancer adds funds to the freelancer's balance and creates a ledger
// entry. Must be called within a DB transaction.
func (s *Service) CreditFreelancer(tx *gorm.DB, userID uuid.UUID, amount int64, referenceID uuid.UUID, description string) error {
	if amount <= 0 {
		return errors.New("amount to credit must be greater than zero")
	}

	result := tx.Model(&models.FreelancerProfile{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("freelancer profile not found for user %s", userID)
	}

	ledger := models.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        models.WalletTrxCredit,
		Description: description,
		ReferenceID: &referenceID,
	}

	if err := tx.Create(&ledger).Error; err != nil {
		return err
	}

	return nil
}

// Earnings sums the credit ledger for a freelancer.
func (s *Service) Earnings(userID uuid.UUID) (int64, error) {
	var total int64
	err := s.DB.Model(&models.WalletTransaction{}).
		Where("user_id = ?", userID).
		Where("type = ?", models.WalletTrxCredit).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
