package get_file_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// GetFileHandler структура для обработчика
type GetFileHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewGetFileHandler создает новый экземпляр обработчика
func NewGetFileHandler(userService *usersService.UserService, fileService *filesService.FileService) *GetFileHandler {
	return &GetFileHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP возвращает карточку файла вместе с владельцем
func (h *GetFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionViewAllFiles) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	fileID, err := actor.PathID(r, "id")
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	file, err := h.fileService.GetFileByID(r.Context(), fileID)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, file)
}
