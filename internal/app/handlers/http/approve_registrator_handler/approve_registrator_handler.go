package approve_registrator_handler

import (
	"encoding/json"
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// ApproveRegistratorRequest структура для данных запроса
type ApproveRegistratorRequest struct {
	RegisteredCount    int     `json:"registered_count"`
	NotRegisteredCount int     `json:"not_registered_count"`
	AcceptedNote       *string `json:"accepted_note,omitempty"`
}

// ApproveRegistratorHandler структура для обработчика
type ApproveRegistratorHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewApproveRegistratorHandler создает новый экземпляр обработчика
func NewApproveRegistratorHandler(userService *usersService.UserService, fileService *filesService.FileService) *ApproveRegistratorHandler {
	return &ApproveRegistratorHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP переводит файл из waiting в accepted и фиксирует счетчики
func (h *ApproveRegistratorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	fileID, err := actor.PathID(r, "id")
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	var request ApproveRegistratorRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.fileService.ApproveByRegistrator(r.Context(), user, fileID,
		request.RegisteredCount, request.NotRegisteredCount, request.AcceptedNote)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, file)
}
