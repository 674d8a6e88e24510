package list_users_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// ListUsersResponse структура для ответа
type ListUsersResponse struct {
	Users []*model.User `json:"users"`
	Count int           `json:"count"`
}

// ListUsersHandler структура для обработчика
type ListUsersHandler struct {
	userService *usersService.UserService
}

// NewListUsersHandler создает новый экземпляр обработчика
func NewListUsersHandler(userService *usersService.UserService) *ListUsersHandler {
	return &ListUsersHandler{userService: userService}
}

// ServeHTTP возвращает всех пользователей системы
func (h *ListUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionManageUsers) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, ListUsersResponse{Users: users, Count: len(users)})
}
