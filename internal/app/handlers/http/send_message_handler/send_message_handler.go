package send_message_handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	"github.com/uzfiles/approvalbot/internal/notify"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// SendMessageRequest структура для данных запроса
type SendMessageRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// SendMessageHandler структура для обработчика
type SendMessageHandler struct {
	userService *usersService.UserService
	dispatcher  *notify.Dispatcher
}

// NewSendMessageHandler создает новый экземпляр обработчика
func NewSendMessageHandler(userService *usersService.UserService, dispatcher *notify.Dispatcher) *SendMessageHandler {
	return &SendMessageHandler{
		userService: userService,
		dispatcher:  dispatcher,
	}
}

// ServeHTTP ставит личное сообщение пользователю в очередь отправки
func (h *SendMessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionSendMessages) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	var request SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(request.Text) == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing text in request body")
		return
	}

	recipient, err := h.userService.GetUserByID(r.Context(), request.UserID)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	h.dispatcher.SendUserMessage(user.ID, recipient, request.Text)

	httpError.JSONResponse(w, http.StatusAccepted, map[string]string{"message": "Message queued"})
}
