package stats_handler

import (
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// StatsResponse структура для ответа
type StatsResponse struct {
	Total    int                      `json:"total"`
	ByStatus map[model.FileStatus]int `json:"by_status"`
}

// StatsHandler структура для обработчика
type StatsHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewStatsHandler создает новый экземпляр обработчика
func NewStatsHandler(userService *usersService.UserService, fileService *filesService.FileService) *StatsHandler {
	return &StatsHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP возвращает сводку по количеству файлов в каждом статусе
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	byStatus, err := h.fileService.Stats(r.Context(), user)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	httpError.JSONResponse(w, http.StatusOK, StatsResponse{Total: total, ByStatus: byStatus})
}
