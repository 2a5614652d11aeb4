package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/workflow"
)

type ProjectHandler struct {
	DB       *gorm.DB
	Workflow *workflow.Service
}

func NewProjectHandler(db *gorm.DB, wf *workflow.Service) *ProjectHandler {
	return &ProjectHandler{DB: db, Workflow: wf}
}

// List returns all projects, newest first.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var projects []models.Project
	if err := h.DB.Preload("Bids").Order("posted_at DESC").Find(&projects).Error; err != nil {
		log.Println("Error fetching projects:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch projects"})
	}
	return c.JSON(fiber.Map{"success": true, "data": projects})
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	var project models.Project
	if err := h.DB.Preload("Bids").First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Project not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": project})
}

type createProjectReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      int64    `json:"budget"`
	Skills      []string `json:"skills"`
	Deadline    *string  `json:"deadline"`
}

// Create posts a new project owned by the calling client, with a snapshot of
// the client's name and email taken now.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req createProjectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Title is required"})
	}
	if req.Budget <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Budget must be positive"})
	}

	var client models.User
	if err := h.DB.First(&client, "id = ?", userUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	project := models.Project{
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Title:       title,
		Description: req.Description,
		Budget:      req.Budget,
		Skills:      models.JSONStrings(skills),
		Status:      models.ProjectAvailable,
		PostedAt:    time.Now(),
	}
	if req.Deadline != nil {
		if d, err := time.Parse(time.RFC3339, *req.Deadline); err == nil {
			project.Deadline = &d
		}
	}

	if err := h.DB.Create(&project).Error; err != nil {
		log.Println("Error creating project:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create project"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": project})
}

type submitWorkReq struct {
	ProjectLink           string `json:"project_link"`
	ManualLink            string `json:"manual_link"`
	SubmissionDescription string `json:"submission_description"`
}

// SubmitWork records a delivery from the assigned freelancer.
func (h *ProjectHandler) SubmitWork(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Project not found"})
	}
	if project.FreelancerID == nil || *project.FreelancerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	var req submitWorkReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}

	if err := h.Workflow.SubmitWork(projectID, req.ProjectLink, req.ManualLink, req.SubmissionDescription); err != nil {
		return h.workflowError(c, err, "Failed to submit work")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Work submitted"})
}

// ApproveSubmission completes the project and pays out the freelancer.
func (h *ProjectHandler) ApproveSubmission(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	if !h.ownerGuard(c, projectID) {
		return nil
	}

	if err := h.Workflow.ApproveSubmission(projectID); err != nil {
		return h.workflowError(c, err, "Failed to approve submission")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Submission approved"})
}

// RejectSubmission clears the delivery so the freelancer can resubmit.
func (h *ProjectHandler) RejectSubmission(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	if !h.ownerGuard(c, projectID) {
		return nil
	}

	if err := h.Workflow.RejectSubmission(projectID); err != nil {
		return h.workflowError(c, err, "Failed to reject submission")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Submission rejected"})
}

// ownerGuard verifies the caller owns the project. On failure it writes the
// error response and returns false; the handler must stop.
func (h *ProjectHandler) ownerGuard(c *fiber.Ctx, projectID uuid.UUID) bool {
	userUUID, err := getUserUUID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
		return false
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Project not found"})
		return false
	}
	if project.ClientID != userUUID {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
		return false
	}
	return true
}

func (h *ProjectHandler) workflowError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Not found"})
	case errors.Is(err, workflow.ErrNotAssigned),
		errors.Is(err, workflow.ErrNoSubmission),
		errors.Is(err, workflow.ErrNotAvailable),
		errors.Is(err, workflow.ErrAlreadyDecided):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		log.Println("Workflow error:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": fallback})
	}
}
