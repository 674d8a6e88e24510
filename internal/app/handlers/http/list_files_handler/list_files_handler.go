package list_files_handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/files/repository"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// ListFilesResponse структура для ответа
type ListFilesResponse struct {
	Files []*model.UploadedFile `json:"files"`
	Count int                   `json:"count"`
}

// ListFilesHandler структура для обработчика
type ListFilesHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewListFilesHandler создает новый экземпляр обработчика
func NewListFilesHandler(userService *usersService.UserService, fileService *filesService.FileService) *ListFilesHandler {
	return &ListFilesHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP возвращает файлы с фильтрами по статусу, региону, тексту и датам
func (h *ListFilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	files, err := h.fileService.ListFiles(r.Context(), user, filter)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, ListFilesResponse{Files: files, Count: len(files)})
}

func filterFromQuery(r *http.Request) (repository.ListFilter, error) {
	q := r.URL.Query()
	filter := repository.ListFilter{
		Status: model.FileStatus(q.Get("status")),
		Region: q.Get("region"),
		Search: q.Get("search"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, model.ErrValidation
	}
	var err error
	if filter.DateFrom, err = parseDate(q.Get("date_from")); err != nil {
		return filter, model.ErrValidation
	}
	if filter.DateTo, err = parseDate(q.Get("date_to")); err != nil {
		return filter, model.ErrValidation
	}
	if raw := q.Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			return filter, model.ErrValidation
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil || filter.Offset < 0 {
			return filter, model.ErrValidation
		}
	}
	return filter, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
