package connect_link_handler

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/actor"
	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// ConnectLinkResponse структура для ответа
type ConnectLinkResponse struct {
	Link   string `json:"link"`
	QRCode string `json:"qr_code"`
}

// ConnectLinkHandler структура для обработчика
type ConnectLinkHandler struct {
	userService *usersService.UserService
	botUsername string
}

// NewConnectLinkHandler создает новый экземпляр обработчика
func NewConnectLinkHandler(userService *usersService.UserService, botUsername string) *ConnectLinkHandler {
	return &ConnectLinkHandler{
		userService: userService,
		botUsername: botUsername,
	}
}

// ServeHTTP выдает одноразовую ссылку для привязки Telegram к учетке.
// QR-код возвращается как PNG в base64.
func (h *ConnectLinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := actor.FromRequest(r, h.userService)
	if err != nil {
		actor.WriteError(w, err)
		return
	}
	if !user.Role.Can(model.ActionManageUsers) {
		actor.WriteError(w, model.ErrRoleNotAllowed)
		return
	}

	userID, err := actor.PathID(r, "id")
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	token, err := h.userService.IssueConnectionToken(r.Context(), userID)
	if err != nil {
		actor.WriteError(w, err)
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", h.botUsername, token)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		httpError.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate QR code: %v", err))
		return
	}

	httpError.JSONResponse(w, http.StatusOK, ConnectLinkResponse{
		Link:   link,
		QRCode: base64.StdEncoding.EncodeToString(png),
	})
}
