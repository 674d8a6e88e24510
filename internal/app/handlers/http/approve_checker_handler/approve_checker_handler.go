package approve_checker_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// ApproveCheckerHandler структура для обработчика
type ApproveCheckerHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewApproveCheckerHandler создает новый экземпляр обработчика
func NewApproveCheckerHandler(userService *usersService.UserService, fileService *filesService.FileService) *ApproveCheckerHandler {
	return &ApproveCheckerHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP переводит файл из pending в waiting от имени проверяющего
func (h *ApproveCheckerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.fileService.ApproveByChecker(r.Context(), user, fileID)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, file)
}
