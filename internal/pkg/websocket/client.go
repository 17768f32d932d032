package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 4 * 1024            // commands are tiny
)

var errMalformed = errors.New("malformed message")

// Client is one open socket of a student
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte // encoded outbound messages
	userID int64
	logger zerolog.Logger
}

func (c *Client) remoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// decodeCommand parses an inbound frame and binds it to the socket's student.
func (c *Client) decodeCommand(frame []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil || msg.Type == "" {
		return nil, errMalformed
	}
	msg.UserID = c.userID
	msg.Timestamp = time.Now()
	return &msg, nil
}

// readPump forwards commands to the hub until the socket fails
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log := c.logger.With().Int64("userID", c.userID).Logger()
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				log.Info().Msg("WebSocket closed normally")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
				log.Warn().Err(err).Msg("Unexpected WebSocket close")
			default:
				log.Debug().Err(err).Msg("WebSocket read error")
			}
			return
		}

		msg, err := c.decodeCommand(frame)
		if err != nil {
			log.Warn().Err(err).Msg("Rejected client frame")
			_ = c.hub.SendToUser(c.userID, MessageTypeError, ErrorPayload{Message: err.Error()})
			continue
		}
		c.hub.dispatch(msg)
	}
}

// writePump writes queued messages, one JSON document per frame, and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, []byte{})
				return
			}
			if err := write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
