package model

import "errors"

// Ошибки доменного уровня. Обработчики транслируют их в HTTP-статусы.
var (
	// ErrNotFound — сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUnableToTransition — файл не в том статусе, из которого возможен переход.
	ErrUnableToTransition = errors.New("unable to transition file status")
	// ErrRoleNotAllowed — у пользователя нет права на действие.
	ErrRoleNotAllowed = errors.New("role not allowed to perform action")
	// ErrLastCEO — нельзя удалить или понизить последнего CEO.
	ErrLastCEO = errors.New("cannot remove the last CEO")
	// ErrSelfDelete — пользователь не может удалить сам себя.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrValidation — некорректные входные данные.
	ErrValidation = errors.New("validation failed")
)
