package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"restaurant_chat/internal/domain"
	"restaurant_chat/internal/realtime"
	"restaurant_chat/internal/service"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

// Команды realtime-каталога
const (
	cmdChatJoin      = "chat:join"
	cmdChatLeave     = "chat:leave"
	cmdChatStart     = "chat:start"
	cmdChatSend      = "chat:send"
	cmdChatMarkRead  = "chat:markRead"
	cmdChatResolve   = "chat:resolve"
	cmdChatGetOrder  = "chat:getByOrder"
	cmdChatTyping    = "chat:typing"
	cmdAdminGetChats = "admin:getChats"
	cmdAdminAudit    = "admin:getChatAudit"
)

type WebSocketHandler struct {
	hub          *realtime.Hub
	chatService  service.ChatService
	authService  service.AuthService
	auditService service.AuditService
	log          logger.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, chatService service.ChatService, authService service.AuthService, auditService service.AuditService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		chatService:  chatService,
		authService:  authService,
		auditService: auditService,
		log:          log,
	}
}

// userProfile — опциональный профиль из параметров рукопожатия.
// Используется только для определения роли администратора.
type userProfile struct {
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// Handle принимает realtime-соединение: классифицирует идентичность
// (токен или anonymous), никогда не отклоняя соединение, и запускает
// цикл обработки команд.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	userID := realtime.AnonymousID
	isAdmin := false

	if token := c.Query("token"); token != "" {
		identity, err := h.authService.ValidateToken(token)
		if err != nil {
			// Невалидный токен не повод рвать соединение, просто anonymous
			h.log.Warn("Invalid handshake token, treating as anonymous", "error", err)
		} else {
			userID = identity.ID
			isAdmin = identity.Role == service.RoleAdmin
		}
	}

	if raw := c.Query("user"); raw != "" && userID != realtime.AnonymousID {
		var profile userProfile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			if profile.IsAdmin || profile.Role == service.RoleAdmin {
				isAdmin = true
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := realtime.NewClient(uuid.NewString(), userID, isAdmin, conn, h.log)
	h.hub.Register(client)
	if isAdmin {
		// Ровно одно вступление в админскую комнату на соединение
		h.hub.Join(client.ID, domain.AdminRoom)
	}

	go client.WritePump()

	defer func() {
		h.hub.Unregister(client.ID)
		conn.Close()
	}()

	for {
		env, err := client.ReadEnvelope()
		if err != nil {
			h.log.Debug("Connection closed", "client_id", client.ID, "error", err)
			return
		}
		h.dispatch(c, client, env)
	}
}

func (h *WebSocketHandler) dispatch(c *gin.Context, client *realtime.Client, env *realtime.Envelope) {
	ctx := c.Request.Context()

	switch env.Event {
	case cmdChatJoin:
		var req struct {
			ChatID string `json:"chat_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			return
		}
		h.hub.Join(client.ID, domain.ChatRoom(req.ChatID))

	case cmdChatLeave:
		var req struct {
			ChatID string `json:"chat_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			return
		}
		h.hub.Leave(client.ID, domain.ChatRoom(req.ChatID))

	case cmdChatStart:
		var req struct {
			OrderID  string `json:"order_id"`
			Issue    string `json:"issue"`
			Category string `json:"category"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.OrderID == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		chat, err := h.chatService.Start(ctx, req.OrderID, req.Issue, req.Category)
		if err != nil {
			h.ack(client, env, err, nil)
			return
		}

		h.hub.Join(client.ID, chat.RoomName())
		h.ack(client, env, nil, chat)

	case cmdChatSend:
		var req struct {
			ChatID  string `json:"chat_id"`
			Content string `json:"content"`
			// sender_id из запроса игнорируется: идентичность берется
			// только из соединения, иначе ее можно подменить
			SenderID string `json:"sender_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" || req.Content == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		// Анонимное соединение не может писать от имени реального пользователя
		if client.Anonymous() {
			h.ack(client, env, pkgerrors.ErrUnauthorized, nil)
			return
		}

		message, err := h.chatService.Send(ctx, req.ChatID, req.Content, client.UserID)
		if err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, message)

	case cmdChatMarkRead:
		var req struct {
			ChatID string `json:"chat_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		// Отметки о прочтении привязаны к идентичности читателя
		if client.Anonymous() {
			h.ack(client, env, pkgerrors.ErrUnauthorized, nil)
			return
		}

		if err := h.chatService.MarkRead(ctx, req.ChatID, client.UserID); err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, map[string]bool{"success": true})

	case cmdChatResolve:
		var req struct {
			ChatID string `json:"chat_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		if client.Anonymous() {
			h.ack(client, env, pkgerrors.ErrUnauthorized, nil)
			return
		}

		if err := h.chatService.Resolve(ctx, req.ChatID, client.UserID); err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, map[string]bool{"success": true})

	case cmdChatGetOrder:
		var req struct {
			OrderID string `json:"order_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.OrderID == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		chat, err := h.chatService.GetByOrder(ctx, req.OrderID)
		if err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, chat)

	case cmdChatTyping:
		var req struct {
			ChatID   string `json:"chat_id"`
			IsTyping bool   `json:"is_typing"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			return
		}
		h.chatService.SetTyping(ctx, req.ChatID, client.UserID, client.ID, req.IsTyping)

	case cmdAdminGetChats:
		if !client.IsAdmin {
			h.ack(client, env, pkgerrors.ErrForbidden, nil)
			return
		}

		chats, err := h.chatService.ListForAdmin(ctx)
		if err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, chats)

	case cmdAdminAudit:
		if !client.IsAdmin {
			h.ack(client, env, pkgerrors.ErrForbidden, nil)
			return
		}

		var req struct {
			ChatID string `json:"chat_id"`
		}
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ChatID == "" {
			h.ack(client, env, pkgerrors.ErrBadRequest, nil)
			return
		}

		events, err := h.auditService.History(ctx, req.ChatID)
		if err != nil {
			h.ack(client, env, err, nil)
			return
		}
		h.ack(client, env, nil, events)

	default:
		h.log.Warn("Unknown command", "event", env.Event, "client_id", client.ID)
		h.ack(client, env, pkgerrors.ErrBadRequest, nil)
	}
}

// ack подтверждает команду, если клиент запросил подтверждение.
func (h *WebSocketHandler) ack(client *realtime.Client, env *realtime.Envelope, err error, data any) {
	if env.AckID == "" {
		return
	}
	client.Send(realtime.Ack(env.AckID, err, data))
}
