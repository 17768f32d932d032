package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_SendToUserOnlyReachesThatUser(t *testing.T) {
	hub := startHub(t)

	mine := &Client{hub: hub, send: make(chan []byte, 8), userID: 7}
	other := &Client{hub: hub, send: make(chan []byte, 8), userID: 8}
	require.True(t, hub.Register(mine))
	require.True(t, hub.Register(other))
	assert.Equal(t, 1, hub.ClientCount(7))

	require.NoError(t, hub.SendToUser(7, MessageTypeSnapshot, map[string]int{"generation": 2}))

	msg := receive(t, mine.send)
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.JSONEq(t, `{"generation":2}`, string(msg.Payload))

	select {
	case <-other.send:
		t.Fatal("message leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 1), userID: 1}
	require.True(t, hub.Register(client))

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-client.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.False(t, hub.Register(&Client{hub: hub, send: make(chan []byte, 1), userID: 2}))
}

type commandCall struct {
	kind     string
	userID   int64
	courseID string
	semester int
}

type fakeCommander struct {
	mu    sync.Mutex
	calls []commandCall
	err   error
}

func (f *fakeCommander) record(c commandCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeCommander) SelectCourse(ctx context.Context, userID int64, courseID string) error {
	return f.record(commandCall{kind: "course", userID: userID, courseID: courseID})
}

func (f *fakeCommander) DeselectCourse(ctx context.Context, userID int64) error {
	return f.record(commandCall{kind: "deselect", userID: userID})
}

func (f *fakeCommander) SelectSemester(ctx context.Context, userID int64, semester int) error {
	return f.record(commandCall{kind: "semester", userID: userID, semester: semester})
}

func TestMessageHandler_AppliesCommands(t *testing.T) {
	hub := startHub(t)
	commander := &fakeCommander{}
	handler := NewMessageHandler(hub, commander, zerolog.Nop())
	ctx := context.Background()

	handler.HandleIncomingMessage(ctx, &Message{Type: CommandSelectCourse, UserID: 3, Payload: json.RawMessage(`{"courseId":"CS"}`)})
	handler.HandleIncomingMessage(ctx, &Message{Type: CommandSelectSemester, UserID: 3, Payload: json.RawMessage(`{"semester":2}`)})
	handler.HandleIncomingMessage(ctx, &Message{Type: CommandDeselectCourse, UserID: 3})

	assert.Equal(t, []commandCall{
		{kind: "course", userID: 3, courseID: "CS"},
		{kind: "semester", userID: 3, semester: 2},
		{kind: "deselect", userID: 3},
	}, commander.calls)
}

func TestMessageHandler_ReportsRejections(t *testing.T) {
	hub := startHub(t)
	commander := &fakeCommander{err: errors.New("course is not one of the student's enrolled courses")}
	handler := NewMessageHandler(hub, commander, zerolog.Nop())

	client := &Client{hub: hub, send: make(chan []byte, 8), userID: 3}
	require.True(t, hub.Register(client))

	handler.HandleIncomingMessage(context.Background(), &Message{Type: CommandSelectCourse, UserID: 3, Payload: json.RawMessage(`{"courseId":"XX"}`)})
	msg := receive(t, client.send)
	assert.Equal(t, MessageTypeError, msg.Type)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, CommandSelectCourse, payload.Command)
	assert.Contains(t, payload.Message, "enrolled")

	handler.HandleIncomingMessage(context.Background(), &Message{Type: "dance", UserID: 3})
	msg = receive(t, client.send)
	assert.Equal(t, MessageTypeError, msg.Type)

	handler.HandleIncomingMessage(context.Background(), &Message{Type: CommandSelectSemester, UserID: 3})
	msg = receive(t, client.send)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Len(t, commander.calls, 1)
}

func TestHandler_PushesOnConnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)

	handler := NewHandler(hub, nil, func(userID int64) {
		_ = hub.SendToUser(userID, MessageTypeSnapshot, map[string]string{"state": "NoCourseSelected"})
	}, zerolog.Nop())

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(5))
		c.Next()
	}, handler.HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.JSONEq(t, `{"state":"NoCourseSelected"}`, string(msg.Payload))
}

func TestHandler_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(startHub(t), nil, nil, zerolog.Nop())

	router := gin.New()
	router.GET("/ws", handler.HandleConnection)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://portal.campus.edu.my"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://portal.campus.edu.my")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}

func TestClient_DecodeCommandBindsOwnStudent(t *testing.T) {
	client := &Client{userID: 12}

	msg, err := client.decodeCommand([]byte(`{"type":"selectCourse","userId":99,"payload":{"courseId":"CS"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(12), msg.UserID)
	assert.Equal(t, CommandSelectCourse, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	_, err = client.decodeCommand([]byte(`not json`))
	assert.ErrorIs(t, err, errMalformed)
	_, err = client.decodeCommand([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, errMalformed)
}
