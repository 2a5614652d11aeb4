package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
)

type PaymentHandler struct {
	DB *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{DB: db}
}

type createPaymentReq struct {
	ProjectID string  `json:"project_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

// CreatePayment records a client payment against an assigned project. The
// record starts Pending; the client confirms it via UpdatePayment.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req createPaymentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Amount must be positive"})
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Project not found"})
	}
	if project.ClientID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}
	if project.FreelancerID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Project has no assigned freelancer"})
	}

	method := req.Method
	if method == "" {
		method = "Card"
	}

	payment := models.Payment{
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: *project.FreelancerID,
		Amount:       req.Amount,
		Method:       method,
		Status:       models.PaymentPending,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		log.Println("Error creating payment:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create payment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payment})
}

type updatePaymentReq struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// UpdatePayment moves a payment to Completed or Failed.
func (h *PaymentHandler) UpdatePayment(c *fiber.Ctx) error {
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid payment ID"})
	}

	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req updatePaymentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}

	status := models.PaymentStatus(req.Status)
	if status != models.PaymentCompleted && status != models.PaymentFailed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Status must be Completed or Failed"})
	}

	var payment models.Payment
	if err := h.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Payment not found"})
	}
	if payment.ClientID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}
	if payment.Status != models.PaymentPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Payment already settled"})
	}

	updates := map[string]interface{}{"status": status}
	if req.TransactionID != "" {
		updates["transaction_id"] = req.TransactionID
	}
	if status == models.PaymentCompleted {
		now := time.Now()
		updates["paid_at"] = &now
	}

	if err := h.DB.Model(&payment).Updates(updates).Error; err != nil {
		log.Println("Error updating payment:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update payment"})
	}

	return c.JSON(fiber.Map{"success": true, "data": payment})
}

// ListClientPayments returns the calling client's payments.
func (h *PaymentHandler) ListClientPayments(c *fiber.Ctx) error {
	return h.listPayments(c, "client_id")
}

// ListFreelancerPayments returns payments addressed to the calling freelancer.
func (h *PaymentHandler) ListFreelancerPayments(c *fiber.Ctx) error {
	return h.listPayments(c, "freelancer_id")
}

func (h *PaymentHandler) listPayments(c *fiber.Ctx, column string) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var payments []models.Payment
	if err := h.DB.Where(column+" = ?", userUUID).Order("created_at DESC").Find(&payments).Error; err != nil {
		log.Println("Error fetching payments:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch payments"})
	}
	return c.JSON(fiber.Map{"success": true, "data": payments})
}

type createInvoiceReq struct {
	PaymentID   string  `json:"payment_id"`
	Amount      float64 `json:"amount"`
	Tax         float64 `json:"tax"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

// CreateInvoice lets the freelancer bill a received payment. The invoice
// number is generated server-side.
func (h *PaymentHandler) CreateInvoice(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req createInvoiceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Amount must be positive"})
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid payment ID"})
	}

	var payment models.Payment
	if err := h.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Payment not found"})
	}
	if payment.FreelancerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	description := req.Description
	if description == "" {
		description = "Invoice for completed project"
	}

	invoice := models.Invoice{
		PaymentID:    payment.ID,
		ProjectID:    payment.ProjectID,
		ClientID:     payment.ClientID,
		FreelancerID: payment.FreelancerID,
		Amount:       req.Amount,
		Tax:          req.Tax,
		TotalAmount:  req.Amount + req.Tax,
		Status:       models.InvoiceUnpaid,
		Description:  description,
	}
	if req.DueDate != nil {
		if d, err := time.Parse(time.RFC3339, *req.DueDate); err == nil {
			invoice.DueDate = &d
		}
	}

	if err := h.DB.Create(&invoice).Error; err != nil {
		log.Println("Error creating invoice:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create invoice"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": invoice})
}

type updateInvoiceReq struct {
	Status string `json:"status"`
}

// UpdateInvoice lets the billed client settle or flag an invoice.
func (h *PaymentHandler) UpdateInvoice(c *fiber.Ctx) error {
	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid invoice ID"})
	}

	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req updateInvoiceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid body"})
	}

	status := models.InvoiceStatus(req.Status)
	if status != models.InvoicePaid && status != models.InvoiceOverdue {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Status must be Paid or Overdue"})
	}

	var invoice models.Invoice
	if err := h.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Invoice not found"})
	}
	if invoice.ClientID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	if err := h.DB.Model(&invoice).Update("status", status).Error; err != nil {
		log.Println("Error updating invoice:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update invoice"})
	}

	return c.JSON(fiber.Map{"success": true, "data": invoice})
}

// ListClientInvoices returns invoices billed to the calling client.
func (h *PaymentHandler) ListClientInvoices(c *fiber.Ctx) error {
	return h.listInvoices(c, "client_id")
}

// ListFreelancerInvoices returns invoices issued by the calling freelancer.
func (h *PaymentHandler) ListFreelancerInvoices(c *fiber.Ctx) error {
	return h.listInvoices(c, "freelancer_id")
}

func (h *PaymentHandler) listInvoices(c *fiber.Ctx, column string) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var invoices []models.Invoice
	if err := h.DB.Where(column+" = ?", userUUID).Order("created_at DESC").Find(&invoices).Error; err != nil {
		log.Println("Error fetching invoices:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch invoices"})
	}
	return c.JSON(fiber.Map{"success": true, "data": invoices})
}
