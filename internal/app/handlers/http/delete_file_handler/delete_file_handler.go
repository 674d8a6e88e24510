package delete_file_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// DeleteFileHandler структура для обработчика
type DeleteFileHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewDeleteFileHandler создает новый экземпляр обработчика
func NewDeleteFileHandler(userService *usersService.UserService, fileService *filesService.FileService) *DeleteFileHandler {
	return &DeleteFileHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP удаляет файл. Операция доступна только руководителю.
func (h *DeleteFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	if err := h.fileService.DeleteFile(r.Context(), user, fileID); err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
