package reject_file_handler

import (
	"encoding/json"
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// RejectFileRequest структура для данных запроса
type RejectFileRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// RejectFileHandler структура для обработчика
type RejectFileHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewRejectFileHandler создает новый экземпляр обработчика
func NewRejectFileHandler(userService *usersService.UserService, fileService *filesService.FileService) *RejectFileHandler {
	return &RejectFileHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP отклоняет файл из pending или waiting
func (h *RejectFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var request RejectFileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.fileService.Reject(r.Context(), user, fileID, request.Notes)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, file)
}
