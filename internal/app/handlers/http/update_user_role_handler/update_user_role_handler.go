package update_user_role_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// UpdateUserRoleRequest структура для данных запроса
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRoleHandler структура для обработчика
type UpdateUserRoleHandler struct {
	userService *usersService.UserService
}

// NewUpdateUserRoleHandler создает новый экземпляр обработчика
func NewUpdateUserRoleHandler(userService *usersService.UserService) *UpdateUserRoleHandler {
	return &UpdateUserRoleHandler{userService: userService}
}

// ServeHTTP меняет роль пользователя с защитой от понижения последнего CEO
func (h *UpdateUserRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	userID, err := actor.PathID(r, "id")
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	var request UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := model.Role(request.Role)
	if !role.Valid() {
		httpError.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown role %q", request.Role))
		return
	}

	if err := h.userService.UpdateUserRole(r.Context(), user, userID, role); err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("User %d role updated to %s", userID, role),
		"user_id": userID,
	})
}
