package chatroom

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
)

// ErrNotAuthorized covers every denied join: unknown project, wrong
// freelancer, or a client joining before the project is assigned. Callers
// must not reveal which case occurred.
var ErrNotAuthorized = errors.New("not authorized for this room")

// Service owns the per-project chat log: join authorization, lazy chat
// creation and the append-only message sequence.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GetChat returns the chat snapshot for a project, or an empty snapshot when
// no chat row exists yet. Lookups never create the chat.
func (s *Service) GetChat(projectID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.seq ASC")
		}).
		First(&chat, "id = ?", projectID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Chat{ID: projectID, Messages: []models.Message{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if chat.Messages == nil {
		chat.Messages = []models.Message{}
	}
	return &chat, nil
}

// JoinAsFreelancer authorizes the project's assigned freelancer into the room
// and returns the snapshot, creating the chat record if absent. A project with
// no assignment, or someone else's id, is denied without side effects.
func (s *Service) JoinAsFreelancer(projectID, freelancerID uuid.UUID) (*models.Chat, error) {
	var project models.Project
	if err := s.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	if project.FreelancerID == nil || *project.FreelancerID != freelancerID {
		return nil, ErrNotAuthorized
	}

	return s.ensureChat(projectID)
}

// JoinAsClient authorizes a client-side join, which is only meaningful once
// the project has an assignment (Assigned or Completed).
func (s *Service) JoinAsClient(projectID uuid.UUID) (*models.Chat, error) {
	var project models.Project
	if err := s.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	if project.Status != models.ProjectAssigned && project.Status != models.ProjectCompleted {
		return nil, ErrNotAuthorized
	}

	return s.ensureChat(projectID)
}

// AppendMessage appends one message to the project's chat, creating the chat
// lazily. The message id is server-generated and its order is the database
// sequence; sentAt is the sender's clock, stored verbatim. Returns the updated
// snapshot.
func (s *Service) AppendMessage(projectID, senderID uuid.UUID, text, sentAt string) (*models.Chat, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		chat := models.Chat{ID: projectID}
		if err := tx.Where("id = ?", projectID).FirstOrCreate(&chat).Error; err != nil {
			return err
		}

		msg := models.Message{
			ChatID:   projectID,
			SenderID: senderID,
			Text:     text,
			SentAt:   sentAt,
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetChat(projectID)
}

func (s *Service) ensureChat(projectID uuid.UUID) (*models.Chat, error) {
	chat := models.Chat{ID: projectID}
	if err := s.DB.Where("id = ?", projectID).FirstOrCreate(&chat).Error; err != nil {
		return nil, err
	}
	return s.GetChat(projectID)
}
