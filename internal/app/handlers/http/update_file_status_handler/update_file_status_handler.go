package update_file_status_handler

import (
	"encoding/json"
	"net/http"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// UpdateFileStatusRequest структура для данных запроса.
// attachments — файлы-ответы администратора, пересылаются владельцу
// вместе с уведомлением по их telegram file_id.
type UpdateFileStatusRequest struct {
	Status             string              `json:"status"`
	AdminNotes         *string             `json:"admin_notes,omitempty"`
	RegisteredCount    *int                `json:"registered_count,omitempty"`
	NotRegisteredCount *int                `json:"not_registered_count,omitempty"`
	AcceptedNote       *string             `json:"accepted_note,omitempty"`
	Attachments        []AttachmentPayload `json:"attachments,omitempty"`
}

// AttachmentPayload структура для файла-ответа в запросе
type AttachmentPayload struct {
	Kind           string `json:"kind"`
	TelegramFileID string `json:"telegram_file_id"`
}

// UpdateFileStatusHandler структура для обработчика
type UpdateFileStatusHandler struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// NewUpdateFileStatusHandler создает новый экземпляр обработчика
func NewUpdateFileStatusHandler(userService *usersService.UserService, fileService *filesService.FileService) *UpdateFileStatusHandler {
	return &UpdateFileStatusHandler{
		userService: userService,
		fileService: fileService,
	}
}

// ServeHTTP выставляет статус файла напрямую, минуя пошаговый цикл
func (h *UpdateFileStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var request UpdateFileStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpError.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attachments := make([]model.ResponseAttachment, 0, len(request.Attachments))
	for _, a := range request.Attachments {
		attachments = append(attachments, model.ResponseAttachment{
			Kind:   model.FileType(a.Kind),
			FileID: a.TelegramFileID,
		})
	}

	file, err := h.fileService.UpdateStatus(r.Context(), user, fileID, filesService.UpdateStatusInput{
		Status:             model.FileStatus(request.Status),
		AdminNotes:         request.AdminNotes,
		RegisteredCount:    request.RegisteredCount,
		NotRegisteredCount: request.NotRegisteredCount,
		AcceptedNote:       request.AcceptedNote,
		Attachments:        attachments,
	})
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	httpError.JSONResponse(w, http.StatusOK, file)
}
