// Package actor определяет действующего пользователя HTTP-запроса и
// переводит доменные ошибки в HTTP-статусы.
package actor

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/domain/users/service"
	httpError "github.com/uzfiles/approvalbot/pkg/http"
)

// HeaderName — заголовок с идентификатором действующего пользователя.
const HeaderName = "X-Actor-ID"

// FromRequest достает пользователя по заголовку X-Actor-ID
func FromRequest(r *http.Request, users *service.UserService) (*model.User, error) {
	raw := r.Header.Get(HeaderName)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing %s header", model.ErrValidation, HeaderName)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s header", model.ErrValidation, HeaderName)
	}
	user, err := users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown actor %d", model.ErrValidation, id)
		}
		return nil, err
	}
	return user, nil
}

// PathID парсит числовой сегмент пути, например {id}.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s in path", model.ErrValidation, name)
	}
	return id, nil
}

// WriteError пишет ошибку с кодом, соответствующим ее доменному смыслу:
// некорректный ввод, запрет по роли, отсутствие сущности или конфликт состояния.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		httpError.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrRoleNotAllowed):
		httpError.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		httpError.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrUnableToTransition),
		errors.Is(err, model.ErrLastCEO),
		errors.Is(err, model.ErrSelfDelete):
		httpError.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		httpError.ErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
