package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/wallet"
)

var (
	ErrAlreadyDecided = errors.New("application already decided")
	ErrNotAssigned    = errors.New("project is not assigned")
	ErrNoSubmission   = errors.New("project has no submission")
	ErrNotAvailable   = errors.New("project is not open for bids")
)

// Service runs the project/application state machines. Every multi-step
// workflow executes inside a single transaction so a partial failure rolls
// everything back.
type Service struct {
	DB     *gorm.DB
	Wallet *wallet.Service

	// RDB is optional; when set, notifications are also published on
	// notifications:<userID> for live delivery.
	RDB *redis.Client
}

func NewService(db *gorm.DB, w *wallet.Service) *Service {
	return &Service{DB: db, Wallet: w}
}

type BidInput struct {
	ProjectID     uuid.UUID
	FreelancerID  uuid.UUID
	Proposal      string
	BidAmount     int64
	EstimatedDays int
}

// PlaceBid creates the application with client/freelancer/project snapshots,
// records the bid on the project, links it to the freelancer and notifies the
// client.
func (s *Service) PlaceBid(in BidInput) (*models.Application, error) {
	var project models.Project
	if err := s.DB.First(&project, "id = ?", in.ProjectID).Error; err != nil {
		return nil, err
	}
	if project.Status != models.ProjectAvailable {
		return nil, ErrNotAvailable
	}

	var freelancer models.User
	if err := s.DB.Preload("FreelancerProfile").First(&freelancer, "id = ?", in.FreelancerID).Error; err != nil {
		return nil, err
	}
	if freelancer.FreelancerProfile == nil {
		return nil, fmt.Errorf("freelancer profile not found for user %s", in.FreelancerID)
	}

	var client models.User
	if err := s.DB.First(&client, "id = ?", project.ClientID).Error; err != nil {
		return nil, err
	}

	app := models.Application{
		ProjectID:        project.ID,
		ClientID:         client.ID,
		ClientName:       client.Name,
		ClientEmail:      client.Email,
		FreelancerID:     freelancer.ID,
		FreelancerName:   freelancer.Name,
		FreelancerEmail:  freelancer.Email,
		FreelancerSkills: freelancer.FreelancerProfile.Skills,
		Title:            project.Title,
		Description:      project.Description,
		Budget:           project.Budget,
		RequiredSkills:   project.Skills,
		Proposal:         in.Proposal,
		BidAmount:        in.BidAmount,
		EstimatedDays:    in.EstimatedDays,
		Status:           models.ApplicationPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		bid := models.Bid{
			ProjectID:    project.ID,
			FreelancerID: freelancer.ID,
			Amount:       in.BidAmount,
		}
		if err := tx.Create(&bid).Error; err != nil {
			return err
		}
		link := models.FreelancerApplication{
			FreelancerID:  freelancer.ID,
			ApplicationID: app.ID,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		return s.notify(tx, client.ID, models.NotificationBid,
			fmt.Sprintf("%s placed a bid of %d on \"%s\"", freelancer.Name, in.BidAmount, project.Title))
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ApproveApplication accepts one application and, in the same transaction,
// rejects every other Pending application on the project, assigns the
// freelancer, moves the project to Assigned with the bid amount as budget and
// registers the project in the freelancer's current list.
func (s *Service) ApproveApplication(appID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		if app.Status != models.ApplicationPending {
			return ErrAlreadyDecided
		}

		var project models.Project
		if err := tx.First(&project, "id = ?", app.ProjectID).Error; err != nil {
			return err
		}

		var freelancer models.User
		if err := tx.First(&freelancer, "id = ?", app.FreelancerID).Error; err != nil {
			return err
		}

		if err := tx.Model(&app).Update("status", models.ApplicationAccepted).Error; err != nil {
			return err
		}

		// auto-reject the rest; no partial or multi-award
		var losers []models.Application
		if err := tx.
			Where("project_id = ? AND status = ? AND id <> ?", app.ProjectID, models.ApplicationPending, app.ID).
			Find(&losers).Error; err != nil {
			return err
		}
		for _, loser := range losers {
			if err := tx.Model(&models.Application{}).
				Where("id = ?", loser.ID).
				Update("status", models.ApplicationRejected).Error; err != nil {
				return err
			}
			if err := s.notify(tx, loser.FreelancerID, models.NotificationRejection,
				fmt.Sprintf("Your bid on \"%s\" was not selected", project.Title)); err != nil {
				return err
			}
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"freelancer_id":   app.FreelancerID,
			"freelancer_name": freelancer.Name,
			"budget":          app.BidAmount,
			"status":          models.ProjectAssigned,
		}).Error; err != nil {
			return err
		}

		current := models.FreelancerProject{
			FreelancerID: app.FreelancerID,
			ProjectID:    project.ID,
			Type:         models.ProjectListCurrent,
		}
		if err := tx.
			Where("freelancer_id = ? AND project_id = ? AND type = ?", current.FreelancerID, current.ProjectID, current.Type).
			FirstOrCreate(&current).Error; err != nil {
			return err
		}

		return s.notify(tx, app.FreelancerID, models.NotificationApproval,
			fmt.Sprintf("Your bid on \"%s\" was accepted", project.Title))
	})
}

// RejectApplication is a terminal reject of one pending application.
func (s *Service) RejectApplication(appID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		if app.Status != models.ApplicationPending {
			return ErrAlreadyDecided
		}
		if err := tx.Model(&app).Update("status", models.ApplicationRejected).Error; err != nil {
			return err
		}
		return s.notify(tx, app.FreelancerID, models.NotificationRejection,
			fmt.Sprintf("Your bid on \"%s\" was rejected", app.Title))
	})
}

// SubmitWork records the freelancer's delivery on an Assigned project.
func (s *Service) SubmitWork(projectID uuid.UUID, projectLink, manualLink, description string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			return err
		}
		if project.Status != models.ProjectAssigned {
			return ErrNotAssigned
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"submission":             true,
			"project_link":           projectLink,
			"manual_link":            manualLink,
			"submission_description": description,
		}).Error; err != nil {
			return err
		}

		return s.notify(tx, project.ClientID, models.NotificationSubmission,
			fmt.Sprintf("Work submitted for \"%s\"", project.Title))
	})
}

// ApproveSubmission completes the project: accepts the submission, moves it
// from the freelancer's current to completed list and credits the budget to
// the freelancer's balance, all in one transaction.
func (s *Service) ApproveSubmission(projectID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			return err
		}
		if project.Status != models.ProjectAssigned || project.FreelancerID == nil {
			return ErrNotAssigned
		}
		if !project.Submission {
			return ErrNoSubmission
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"submission_accepted": true,
			"status":              models.ProjectCompleted,
		}).Error; err != nil {
			return err
		}

		freelancerID := *project.FreelancerID
		if err := tx.
			Where("freelancer_id = ? AND project_id = ? AND type = ?", freelancerID, project.ID, models.ProjectListCurrent).
			Delete(&models.FreelancerProject{}).Error; err != nil {
			return err
		}
		completed := models.FreelancerProject{
			FreelancerID: freelancerID,
			ProjectID:    project.ID,
			Type:         models.ProjectListCompleted,
		}
		if err := tx.
			Where("freelancer_id = ? AND project_id = ? AND type = ?", completed.FreelancerID, completed.ProjectID, completed.Type).
			FirstOrCreate(&completed).Error; err != nil {
			return err
		}

		if err := s.Wallet.CreditFreelancer(tx, freelancerID, project.Budget, project.ID,
			fmt.Sprintf("Payout for \"%s\"", project.Title)); err != nil {
			return err
		}

		return s.notify(tx, freelancerID, models.NotificationPayment,
			fmt.Sprintf("Submission for \"%s\" approved, %d credited to your balance", project.Title, project.Budget))
	})
}

// RejectSubmission clears the submission fields; the project stays Assigned so
// the freelancer can resubmit.
func (s *Service) RejectSubmission(projectID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			return err
		}
		if !project.Submission {
			return ErrNoSubmission
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"submission":             false,
			"project_link":           "",
			"manual_link":            "",
			"submission_description": "",
		}).Error; err != nil {
			return err
		}

		if project.FreelancerID == nil {
			return nil
		}
		return s.notify(tx, *project.FreelancerID, models.NotificationRejection,
			fmt.Sprintf("Submission for \"%s\" was rejected", project.Title))
	})
}

func (s *Service) notify(tx *gorm.DB, userID uuid.UUID, kind models.NotificationType, message string) error {
	n := models.Notification{
		UserID:  userID,
		Type:    kind,
		Message: message,
	}
	if err := tx.Create(&n).Error; err != nil {
		return err
	}

	if s.RDB != nil {
		payload, _ := json.Marshal(n)
		if err := s.RDB.Publish(context.Background(), "notifications:"+userID.String(), payload).Err(); err != nil {
			log.Println("Error publishing notification:", err)
		}
	}
	return nil
}
