package create_user_handler

import (
	"encoding/json"
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// CreateUserRequest структура для данных запроса
type CreateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Region   *string `json:"region,omitempty"`
	Role     string  `json:"role"`
}

// CreateUserHandler структура для обработчика
type CreateUserHandler struct {
	userService *usersService.UserService
}

// NewCreateUserHandler создает новый экземпляр обработчика
func NewCreateUserHandler(userService *usersService.UserService) *CreateUserHandler {
	return &CreateUserHandler{userService: userService}
}

// ServeHTTP заводит нового пользователя с указанной ролью
func (h *CreateUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	var request CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.userService.CreateUser(r.Context(), user,
		request.Name, request.Email, request.Password,
		request.Phone, request.Region, model.Role(request.Role))
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusCreated, created)
}
