package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/workflow"
)

type ApplicationHandler struct {
	DB       *gorm.DB
	Workflow *workflow.Service
}

func NewApplicationHandler(db *gorm.DB, wf *workflow.Service) *ApplicationHandler {
	return &ApplicationHandler{DB: db, Workflow: wf}
}

type placeBidReq struct {
	Proposal      string `json:"proposal"`
	BidAmount     int64  `json:"bid_amount"`
	EstimatedDays int    `json:"estimated_days"`
}

// PlaceBid submits the calling freelancer's bid on a project.
func (h *ApplicationHandler) PlaceBid(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req placeBidReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}
	if req.BidAmount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Bid amount must be positive"})
	}

	app, err := h.Workflow.PlaceBid(workflow.BidInput{
		ProjectID:     projectID,
		FreelancerID:  userUUID,
		Proposal:      req.Proposal,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Project not found"})
		case errors.Is(err, workflow.ErrNotAvailable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": err.Error()})
		default:
			log.Println("Error placing bid:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to place bid"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": app})
}

// List returns applications visible to the caller: freelancers see their own,
// clients see applications on their projects, admins see everything.
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}
	role, _ := c.Locals("role").(string)

	q := h.DB.Order("created_at DESC")
	switch role {
	case string(models.RoleFreelancer):
		q = q.Where("freelancer_id = ?", userUUID)
	case string(models.RoleClient):
		q = q.Where("client_id = ?", userUUID)
	}

	var apps []models.Application
	if err := q.Find(&apps).Error; err != nil {
		log.Println("Error fetching applications:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch applications"})
	}
	return c.JSON(fiber.Map{"success": true, "data": apps})
}

// ListByProject returns all applications on one project.
func (h *ApplicationHandler) ListByProject(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	var apps []models.Application
	if err := h.DB.Where("project_id = ?", projectID).Order("created_at ASC").Find(&apps).Error; err != nil {
		log.Println("Error fetching applications:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch applications"})
	}
	return c.JSON(fiber.Map{"success": true, "data": apps})
}

// Approve accepts one application; every other pending application on the
// project is rejected in the same transaction.
func (h *ApplicationHandler) Approve(c *fiber.Ctx) error {
	appID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID"})
	}

	if !h.clientGuard(c, appID) {
		return nil
	}

	if err := h.Workflow.ApproveApplication(appID); err != nil {
		return h.decisionError(c, err, "Failed to approve application")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Application approved"})
}

// Reject is a terminal reject of one application.
func (h *ApplicationHandler) Reject(c *fiber.Ctx) error {
	appID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID"})
	}

	if !h.clientGuard(c, appID) {
		return nil
	}

	if err := h.Workflow.RejectApplication(appID); err != nil {
		return h.decisionError(c, err, "Failed to reject application")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Application rejected"})
}

// clientGuard verifies the caller is the client the application was made to.
// On failure it writes the response and returns false.
func (h *ApplicationHandler) clientGuard(c *fiber.Ctx, appID uuid.UUID) bool {
	userUUID, err := getUserUUID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
		return false
	}

	var app models.Application
	if err := h.DB.First(&app, "id = ?", appID).Error; err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Application not found"})
		return false
	}
	if app.ClientID != userUUID {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
		return false
	}
	return true
}

func (h *ApplicationHandler) decisionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Not found"})
	case errors.Is(err, workflow.ErrAlreadyDecided):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		log.Println("Application decision error:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": fallback})
	}
}
