package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/wallet"
)

type FreelancerHandler struct {
	DB     *gorm.DB
	Wallet *wallet.Service
}

func NewFreelancerHandler(db *gorm.DB, w *wallet.Service) *FreelancerHandler {
	return &FreelancerHandler{DB: db, Wallet: w}
}

type freelancerOut struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Skills            []string  `json:"skills"`
	Description       string    `json:"description"`
	Balance           int64     `json:"balance"`
	CurrentProjects   []string  `json:"current_projects"`
	CompletedProjects []string  `json:"completed_projects"`
	Applications      []string  `json:"applications"`
}

// GetProfile returns a freelancer profile with its project and application
// lists materialized from the join tables.
func (h *FreelancerHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var profile models.FreelancerProfile
	if err := h.DB.Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Freelancer not found"})
	}

	out := freelancerOut{
		ID:          profile.ID,
		UserID:      profile.UserID,
		Skills:      models.Strings(profile.Skills),
		Description: profile.Description,
		Balance:     profile.Balance,
	}
	if profile.User != nil {
		out.Name = profile.User.Name
		out.Email = profile.User.Email
	}

	out.CurrentProjects = h.projectIDs(userID, models.ProjectListCurrent)
	out.CompletedProjects = h.projectIDs(userID, models.ProjectListCompleted)

	var links []models.FreelancerApplication
	if err := h.DB.Where("freelancer_id = ?", userID).Find(&links).Error; err != nil {
		log.Println("Error fetching application links:", err)
	}
	out.Applications = make([]string, 0, len(links))
	for _, l := range links {
		out.Applications = append(out.Applications, l.ApplicationID.String())
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *FreelancerHandler) projectIDs(userID uuid.UUID, listType models.ProjectListType) []string {
	var rows []models.FreelancerProject
	if err := h.DB.Where("freelancer_id = ? AND type = ?", userID, listType).Find(&rows).Error; err != nil {
		log.Println("Error fetching project list:", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProjectID.String())
	}
	return ids
}

type updateProfileReq struct {
	Skills      []string `json:"skills"`
	Description *string  `json:"description"`
}

// UpdateProfile lets a freelancer change their own skills and description.
func (h *FreelancerHandler) UpdateProfile(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}

	var profile models.FreelancerProfile
	if err := h.DB.First(&profile, "user_id = ?", userUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Freelancer not found"})
	}

	updates := map[string]interface{}{}
	if req.Skills != nil {
		cleaned := make([]string, 0, len(req.Skills))
		for _, s := range req.Skills {
			if s = strings.TrimSpace(s); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		updates["skills"] = models.JSONStrings(cleaned)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&profile).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update profile"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Profile updated"})
}

// GetEarnings returns the freelancer's balance plus the credit ledger total.
func (h *FreelancerHandler) GetEarnings(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var profile models.FreelancerProfile
	if err := h.DB.First(&profile, "user_id = ?", userUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Freelancer not found"})
	}

	total, err := h.Wallet.Earnings(userUUID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch earnings"})
	}

	var ledger []models.WalletTransaction
	if err := h.DB.Where("user_id = ?", userUUID).Order("created_at DESC").Find(&ledger).Error; err != nil {
		log.Println("Error fetching wallet ledger:", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"balance":        profile.Balance,
			"total_earnings": total,
			"transactions":   ledger,
		},
	})
}
