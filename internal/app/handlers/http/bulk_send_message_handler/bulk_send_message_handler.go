package bulk_send_message_handler

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

// BulkSendMessageRequest структура для данных запроса.
// Пустые user_ids и role означают рассылку всем пользователям.
type BulkSendMessageRequest struct {
	Text    string  `json:"text"`
	UserIDs []int64 `json:"user_ids,omitempty"`
	Role    string  `json:"role,omitempty"`
}

// BulkSendMessageHandler структура для обработчика
type BulkSendMessageHandler struct {
	userService *usersService.UserService
	dispatcher  *notify.Dispatcher
}

// NewBulkSendMessageHandler создает новый экземпляр обработчика
func NewBulkSendMessageHandler(userService *usersService.UserService, dispatcher *notify.Dispatcher) *BulkSendMessageHandler {
	return &BulkSendMessageHandler{
		userService: userService,
		dispatcher:  dispatcher,
	}
}

// ServeHTTP ставит массовую рассылку в очередь с интервалом между отправками
func (h *BulkSendMessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionSendMessages) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	var request BulkSendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(request.Text) == "" {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Missing text in request body")
		return
	}
	if request.Role != "" && !model.Role(request.Role).Valid() {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
		return
	}

	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	wanted := make(map[int64]bool, len(request.UserIDs))
	for _, id := range request.UserIDs {
		wanted[id] = true
	}

	recipients := make([]*model.User, 0, len(users))
	for _, u := range users {
		if len(wanted) > 0 && !wanted[u.ID] {
			continue
		}
		if request.Role != "" && u.Role != model.Role(request.Role) {
			continue
		}
		recipients = append(recipients, u)
	}

	h.dispatcher.BulkSend(user.ID, recipients, request.Text)

	httpError.JSONResponse(w, http.StatusAccepted, map[string]any{
		"message":    "Bulk send queued",
		"recipients": len(recipients),
	})
}
