package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"restaurant_chat/internal/config"
	"restaurant_chat/internal/domain"
	"restaurant_chat/internal/realtime"
	"restaurant_chat/internal/service"
	"restaurant_chat/pkg/jwt"
	"restaurant_chat/pkg/logger"
)

const testSecret = "test-secret"

type sendCall struct {
	chatID   string
	content  string
	senderID string
}

type fakeChatService struct {
	mu        sync.Mutex
	sends     []sendCall
	markReads []string
	resolves  []string
}

func (s *fakeChatService) Start(ctx context.Context, orderID, issue, category string) (*domain.Chat, error) {
	return &domain.Chat{ID: "chat-1", OrderID: orderID, Status: domain.ChatStatusActive}, nil
}

func (s *fakeChatService) Send(ctx context.Context, chatID, content, senderID string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, sendCall{chatID: chatID, content: content, senderID: senderID})
	return &domain.Message{ID: "msg-1", SenderID: senderID, Content: content}, nil
}

func (s *fakeChatService) MarkRead(ctx context.Context, chatID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markReads = append(s.markReads, readerID)
	return nil
}

func (s *fakeChatService) Resolve(ctx context.Context, chatID, resolverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolves = append(s.resolves, resolverID)
	return nil
}

func (s *fakeChatService) GetByOrder(ctx context.Context, orderID string) (*domain.Chat, error) {
	return &domain.Chat{ID: "chat-1", OrderID: orderID}, nil
}

func (s *fakeChatService) ListForAdmin(ctx context.Context) ([]*domain.Chat, error) {
	return []*domain.Chat{}, nil
}

func (s *fakeChatService) SetTyping(ctx context.Context, chatID, authorID, authorClientID string, isTyping bool) {
}

func (s *fakeChatService) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

type fakeAuditService struct {
	mu      sync.Mutex
	queried []string
}

func (s *fakeAuditService) Record(ctx context.Context, chat *domain.Chat, action, actorID string) {}

func (s *fakeAuditService) History(ctx context.Context, chatID string) ([]*domain.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queried = append(s.queried, chatID)
	return []*domain.AuditEvent{{ChatID: chatID, Action: domain.AuditChatStarted}}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeChatService, *fakeAuditService) {
	t.Helper()

	log := logger.New("error")
	chatSvc := &fakeChatService{}
	auditSvc := &fakeAuditService{}
	authSvc := service.NewAuthService(config.JWTConfig{AccessSecret: testSecret}, log)

	h := NewWebSocketHandler(realtime.NewHub(log), chatSvc, authSvc, auditSvc, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", h.Handle)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, chatSvc, auditSvc
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func command(t *testing.T, conn *websocket.Conn, event string, data any) realtime.OutEvent {
	t.Helper()

	if err := conn.WriteJSON(realtime.OutEvent{Event: event, Data: data, AckID: "a1"}); err != nil {
		t.Fatalf("failed to write command: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack struct {
		Event string          `json:"event"`
		AckID string          `json:"ack_id"`
		Error string          `json:"error"`
		Data  json.RawMessage `json:"data"`
	}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("failed to read ack: %v", err)
	}
	if ack.Event != realtime.EventAck || ack.AckID != "a1" {
		t.Fatalf("unexpected frame instead of ack: %+v", ack)
	}
	return realtime.OutEvent{Event: ack.Event, AckID: ack.AckID, Error: ack.Error, Data: ack.Data}
}

func customerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userID, "", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func adminToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userID, service.RoleAdmin, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// Соединение без токена не может выдать себя за реального клиента:
// sender_id из запроса не подставляется в качестве идентичности.
func TestAnonymousCannotSend(t *testing.T) {
	srv, chatSvc, _ := newTestServer(t)
	conn := dial(t, srv, "")

	ack := command(t, conn, "chat:send", map[string]any{
		"chat_id":   "chat-1",
		"content":   "spoofed",
		"sender_id": "C1",
	})

	if ack.Error == "" {
		t.Fatalf("anonymous send was acknowledged without error")
	}
	if chatSvc.sendCount() != 0 {
		t.Errorf("service received %d sends from anonymous connection, want 0", chatSvc.sendCount())
	}
}

func TestAnonymousCannotMarkReadOrResolve(t *testing.T) {
	srv, chatSvc, _ := newTestServer(t)
	conn := dial(t, srv, "")

	if ack := command(t, conn, "chat:markRead", map[string]any{"chat_id": "chat-1"}); ack.Error == "" {
		t.Errorf("anonymous markRead was acknowledged without error")
	}
	if ack := command(t, conn, "chat:resolve", map[string]any{"chat_id": "chat-1"}); ack.Error == "" {
		t.Errorf("anonymous resolve was acknowledged without error")
	}

	chatSvc.mu.Lock()
	defer chatSvc.mu.Unlock()
	if len(chatSvc.markReads) != 0 || len(chatSvc.resolves) != 0 {
		t.Errorf("anonymous connection reached mutating operations: markReads=%d resolves=%d",
			len(chatSvc.markReads), len(chatSvc.resolves))
	}
}

// Идентичность отправителя — только из токена соединения,
// даже если в запросе пришел чужой sender_id.
func TestSendUsesConnectionIdentity(t *testing.T) {
	srv, chatSvc, _ := newTestServer(t)
	conn := dial(t, srv, "?token="+customerToken(t, "C1"))

	ack := command(t, conn, "chat:send", map[string]any{
		"chat_id":   "chat-1",
		"content":   "Hi",
		"sender_id": "someone-else",
	})

	if ack.Error != "" {
		t.Fatalf("authenticated send failed: %s", ack.Error)
	}

	chatSvc.mu.Lock()
	defer chatSvc.mu.Unlock()
	if len(chatSvc.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(chatSvc.sends))
	}
	if chatSvc.sends[0].senderID != "C1" {
		t.Errorf("senderID = %q, want connection identity C1", chatSvc.sends[0].senderID)
	}
}

func TestInvalidTokenIsClassifiedAsAnonymous(t *testing.T) {
	srv, chatSvc, _ := newTestServer(t)

	// Соединение не рвется, но писать оно не может
	conn := dial(t, srv, "?token=garbage")

	ack := command(t, conn, "chat:send", map[string]any{
		"chat_id": "chat-1",
		"content": "hello",
	})
	if ack.Error == "" {
		t.Fatalf("send over invalid token was acknowledged without error")
	}
	if chatSvc.sendCount() != 0 {
		t.Errorf("service received sends from invalid-token connection")
	}
}

func TestChatAuditRequiresAdmin(t *testing.T) {
	srv, _, auditSvc := newTestServer(t)

	customer := dial(t, srv, "?token="+customerToken(t, "C1"))
	if ack := command(t, customer, "admin:getChatAudit", map[string]any{"chat_id": "chat-1"}); ack.Error == "" {
		t.Errorf("non-admin audit query was acknowledged without error")
	}

	admin := dial(t, srv, "?token="+adminToken(t, "admin-1"))
	ack := command(t, admin, "admin:getChatAudit", map[string]any{"chat_id": "chat-1"})
	if ack.Error != "" {
		t.Fatalf("admin audit query failed: %s", ack.Error)
	}

	var events []*domain.AuditEvent
	if err := json.Unmarshal(ack.Data.(json.RawMessage), &events); err != nil {
		t.Fatalf("failed to decode audit events: %v", err)
	}
	if len(events) != 1 || events[0].ChatID != "chat-1" {
		t.Errorf("unexpected audit payload: %+v", events)
	}

	auditSvc.mu.Lock()
	defer auditSvc.mu.Unlock()
	if len(auditSvc.queried) != 1 {
		t.Errorf("audit service queried %d times, want 1", len(auditSvc.queried))
	}
}
