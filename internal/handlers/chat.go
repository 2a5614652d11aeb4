package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/chatroom"
)

type ChatHandler struct {
	DB    *gorm.DB
	Hub   *realtime.Hub
	RDB   *redis.Client
	Rooms *chatroom.Service
}

func NewChatHandler(db *gorm.DB, hub *realtime.Hub, rdb *redis.Client, rooms *chatroom.Service) *ChatHandler {
	return &ChatHandler{DB: db, Hub: hub, RDB: rdb, Rooms: rooms}
}

// GetChat returns the chat history for a project. A project with no messages
// yet gets an empty snapshot, not a 404.
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "projectId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid project ID"})
	}

	chat, err := h.Rooms.GetChat(projectID)
	if err != nil {
		log.Println("Error fetching chat:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch chat"})
	}
	return c.JSON(fiber.Map{"success": true, "data": chat})
}

// wsEvent is the envelope for every inbound socket event.
type wsEvent struct {
	Type         string `json:"type"`
	ProjectID    string `json:"projectId"`
	FreelancerID string `json:"freelancerId"`
	SenderID     string `json:"senderId"`
	Message      string `json:"message"`
	Time         string `json:"time"`
}

// WebSocketHandler drives one chat session: register with the hub, pump
// outbound frames, then loop on inbound events until the transport dies.
// Denied joins are dropped silently so callers cannot probe room existence.
func (h *ChatHandler) WebSocketHandler(c *websocket.Conn) {
	userIDStr := c.Query("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		log.Println("WebSocket rejected: invalid user_id")
		_ = c.Close()
		return
	}

	client := realtime.NewClient(userID, realtime.NewWebSocketConn(c))
	h.Hub.RegisterClient(client)
	defer h.Hub.UnregisterClient(client)

	// write pump; exits when unregister closes Send
	go func() {
		for msg := range client.Send {
			if err := client.Conn.WriteText(msg); err != nil {
				return
			}
		}
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}

		var ev wsEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Println("Invalid socket event:", err)
			continue
		}

		switch ev.Type {
		case "join-chat-room":
			h.handleFreelancerJoin(client, ev)
		case "join-chat-room-client":
			h.handleClientJoin(client, ev)
		case "update-messages":
			h.handleUpdateMessages(client, ev)
		case "new-message":
			h.handleNewMessage(client, ev)
		default:
			log.Println("Unknown socket event type:", ev.Type)
		}
	}
}

func (h *ChatHandler) handleFreelancerJoin(client *realtime.Client, ev wsEvent) {
	projectID, err := uuid.Parse(ev.ProjectID)
	if err != nil {
		return
	}
	freelancerID, err := uuid.Parse(ev.FreelancerID)
	if err != nil {
		return
	}

	chat, err := h.Rooms.JoinAsFreelancer(projectID, freelancerID)
	if err != nil {
		log.Printf("Join denied for room %s: %v", ev.ProjectID, err)
		return
	}

	h.Hub.JoinRoom(client, ev.ProjectID)
	h.Hub.BroadcastToRoom(ev.ProjectID, fiber.Map{
		"type":      "user-joined-room",
		"projectId": ev.ProjectID,
		"userId":    client.UserID.String(),
	}, client)
	h.Hub.SendToClient(client, fiber.Map{
		"type": "messages-updated",
		"chat": chat,
	})
}

func (h *ChatHandler) handleClientJoin(client *realtime.Client, ev wsEvent) {
	projectID, err := uuid.Parse(ev.ProjectID)
	if err != nil {
		return
	}

	chat, err := h.Rooms.JoinAsClient(projectID)
	if err != nil {
		log.Printf("Client join denied for room %s: %v", ev.ProjectID, err)
		return
	}

	h.Hub.JoinRoom(client, ev.ProjectID)
	h.Hub.BroadcastToRoom(ev.ProjectID, fiber.Map{
		"type":      "user-joined-room",
		"projectId": ev.ProjectID,
		"userId":    client.UserID.String(),
	}, client)
	h.Hub.SendToClient(client, fiber.Map{
		"type": "messages-updated",
		"chat": chat,
	})
}

// handleUpdateMessages sends the requester a fresh private snapshot; it never
// touches room membership.
func (h *ChatHandler) handleUpdateMessages(client *realtime.Client, ev wsEvent) {
	projectID, err := uuid.Parse(ev.ProjectID)
	if err != nil {
		return
	}

	chat, err := h.Rooms.GetChat(projectID)
	if err != nil {
		log.Println("Error loading chat snapshot:", err)
		return
	}

	h.Hub.SendToClient(client, fiber.Map{
		"type": "messages-updated",
		"chat": chat,
	})
}

func (h *ChatHandler) handleNewMessage(client *realtime.Client, ev wsEvent) {
	projectID, err := uuid.Parse(ev.ProjectID)
	if err != nil {
		return
	}
	senderID, err := uuid.Parse(ev.SenderID)
	if err != nil {
		return
	}

	chat, err := h.Rooms.AppendMessage(projectID, senderID, ev.Message, ev.Time)
	if err != nil {
		log.Println("Error appending message:", err)
		return
	}

	// sender gets the authoritative snapshot; everyone else gets a nudge to
	// re-pull via update-messages
	h.Hub.SendToClient(client, fiber.Map{
		"type": "messages-updated",
		"chat": chat,
	})
	h.Hub.BroadcastToRoom(ev.ProjectID, fiber.Map{
		"type":      "message-from-user",
		"projectId": ev.ProjectID,
		"senderId":  ev.SenderID,
	}, client)

	if h.RDB != nil {
		payload, _ := json.Marshal(fiber.Map{
			"projectId": ev.ProjectID,
			"senderId":  ev.SenderID,
		})
		if err := h.RDB.Publish(context.Background(), "chat:"+ev.ProjectID, payload).Err(); err != nil {
			log.Println("Error publishing chat event:", err)
		}
	}
}
