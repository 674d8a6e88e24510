package delete_user_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// DeleteUserHandler структура для обработчика
type DeleteUserHandler struct {
	userService *usersService.UserService
}

// NewDeleteUserHandler создает новый экземпляр обработчика
func NewDeleteUserHandler(userService *usersService.UserService) *DeleteUserHandler {
	return &DeleteUserHandler{userService: userService}
}

// ServeHTTP удаляет пользователя. Свою учетку и последнего CEO удалить нельзя.
func (h *DeleteUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	if err := h.userService.DeleteUser(r.Context(), user, userID); err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
