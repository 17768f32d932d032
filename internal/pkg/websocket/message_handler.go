package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Inbound command types
const (
	CommandSelectCourse   = "selectCourse"
	CommandDeselectCourse = "deselectCourse"
	CommandSelectSemester = "selectSemester"
)

// commandTimeout bounds the work done for one command; fetches run in the background
const commandTimeout = 5 * time.Second

// SelectionCommander applies selection commands for a student. Results reach
// the client through the hub as snapshots.
type SelectionCommander interface {
	SelectCourse(ctx context.Context, userID int64, courseID string) error
	DeselectCourse(ctx context.Context, userID int64) error
	SelectSemester(ctx context.Context, userID int64, semester int) error
}

// ErrorPayload is sent back when a command is rejected
type ErrorPayload struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

// MessageHandler turns client messages into selection commands
type MessageHandler struct {
	hub       *Hub
	commander SelectionCommander
	logger    zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(hub *Hub, commander SelectionCommander, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		hub:       hub,
		commander: commander,
		logger:    logger,
	}
}

// Start processes client messages until ctx is cancelled
func (h *MessageHandler) Start(ctx context.Context) {
	messages := make(chan *Message, 64)
	h.hub.AddMessageListener(messages)

	go func() {
		defer h.hub.RemoveMessageListener(messages)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-messages:
				h.HandleIncomingMessage(ctx, msg)
			}
		}
	}()
}

// HandleIncomingMessage applies one command and reports rejections to the sender
func (h *MessageHandler) HandleIncomingMessage(ctx context.Context, msg *Message) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := h.apply(ctx, msg); err != nil {
		h.logger.Debug().Err(err).Int64("userID", msg.UserID).Str("type", msg.Type).Msg("Websocket command rejected")
		_ = h.hub.SendToUser(msg.UserID, MessageTypeError, ErrorPayload{Command: msg.Type, Message: err.Error()})
	}
}

func (h *MessageHandler) apply(ctx context.Context, msg *Message) error {
	switch msg.Type {
	case CommandSelectCourse:
		var payload struct {
			CourseID string `json:"courseId"`
		}
		if err := decodePayload(msg, &payload); err != nil {
			return err
		}
		return h.commander.SelectCourse(ctx, msg.UserID, payload.CourseID)

	case CommandDeselectCourse:
		return h.commander.DeselectCourse(ctx, msg.UserID)

	case CommandSelectSemester:
		var payload struct {
			Semester int `json:"semester"`
		}
		if err := decodePayload(msg, &payload); err != nil {
			return err
		}
		return h.commander.SelectSemester(ctx, msg.UserID, payload.Semester)

	default:
		return fmt.Errorf("unknown command %q", msg.Type)
	}
}

func decodePayload(msg *Message, v interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s requires a payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}
