package list_messages_handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// Ограничения на размер страницы журнала.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// MessageLog читает журнал отправленных сообщений.
type MessageLog interface {
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*model.TelegramMessage, error)
}

// ListMessagesHandler структура для обработчика
type ListMessagesHandler struct {
	userService *usersService.UserService
	messages    MessageLog
}

// NewListMessagesHandler создает новый экземпляр обработчика
func NewListMessagesHandler(userService *usersService.UserService, messages MessageLog) *ListMessagesHandler {
	return &ListMessagesHandler{
		userService: userService,
		messages:    messages,
	}
}

// ServeHTTP отдает журнал сообщений, отправленных пользователю, новые первыми
func (h *ListMessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionSendMessages) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	recipientID, err := actor.PathID(r, "id")
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if _, err := h.userService.GetUserByID(r.Context(), recipientID); err != nil {
		actor.WriteError(w, err)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	messages, err := h.messages.ListByRecipient(r.Context(), recipientID, limit)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []*model.TelegramMessage{}
	}

	httpError.JSONResponse(w, http.StatusOK, messages)
}
