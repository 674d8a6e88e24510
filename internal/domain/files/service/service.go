package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uzfiles/approvalbot/internal/domain/files/repository"
	"github.com/uzfiles/approvalbot/internal/domain/model"
)

const maxNoteLength = 1000

// FileStore описывает операции хранилища, нужные сервису файлов.
type FileStore interface {
	CreateFile(ctx context.Context, f *model.UploadedFile) (int64, error)
	GetFileByID(ctx context.Context, fileID int64) (*model.UploadedFile, error)
	TransitionStatus(ctx context.Context, fileID int64, from, to model.FileStatus, adminNotes *string) (bool, error)
	AcceptFromWaiting(ctx context.Context, fileID int64, registered, notRegistered int, acceptedNote *string) (bool, error)
	UpdateStatusDirect(ctx context.Context, fileID int64, status model.FileStatus, adminNotes *string, registered, notRegistered *int, acceptedNote *string) (model.FileStatus, error)
	ListFiles(ctx context.Context, filter repository.ListFilter) ([]*model.UploadedFile, error)
	RecentFilesByUser(ctx context.Context, userID int64, limit int) ([]*model.UploadedFile, error)
	CountFilesByUser(ctx context.Context, userID int64) (int, error)
	DeleteFile(ctx context.Context, fileID int64) error
	CountByStatus(ctx context.Context) (map[model.FileStatus]int, error)
}

// Notifier принимает уведомления о смене статуса. Доставка асинхронная:
// вызов ставит задачу в очередь и сразу возвращается.
type Notifier interface {
	FileStatusChanged(file *model.UploadedFile, newStatus model.FileStatus, adminNotes string)
	FileStatusChangedWithAttachments(file *model.UploadedFile, newStatus model.FileStatus, adminNotes string, attachments []model.ResponseAttachment)
}

// FileService реализует жизненный цикл согласования файлов
type FileService struct {
	repo     FileStore
	notifier Notifier
}

// NewFileService создает новый экземпляр FileService
func NewFileService(repo FileStore, notifier Notifier) *FileService {
	return &FileService{repo: repo, notifier: notifier}
}

// CreateUpload сохраняет новый файл в статусе pending.
func (s *FileService) CreateUpload(ctx context.Context, f *model.UploadedFile) (*model.UploadedFile, error) {
	f.Status = model.StatusPending
	fileID, err := s.repo.CreateFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}
	f.ID = fileID
	return f, nil
}

// GetFileByID возвращает файл с владельцем.
func (s *FileService) GetFileByID(ctx context.Context, fileID int64) (*model.UploadedFile, error) {
	return s.repo.GetFileByID(ctx, fileID)
}

// ApproveByChecker переводит файл pending -> waiting.
// При конкурирующих попытках успешной будет ровно одна.
func (s *FileService) ApproveByChecker(ctx context.Context, actor *model.User, fileID int64) (*model.UploadedFile, error) {
	if !actor.Role.Can(model.ActionApproveAsChecker) {
		return nil, model.ErrRoleNotAllowed
	}

	ok, err := s.repo.TransitionStatus(ctx, fileID, model.StatusPending, model.StatusWaiting, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.failTransition(ctx, fileID)
	}

	file, err := s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.notifier.FileStatusChanged(file, model.StatusWaiting, "")
	return file, nil
}

// ApproveByRegistrator переводит файл waiting -> accepted вместе с итогами
// регистрации. Оба счётчика обязательны и неотрицательны.
func (s *FileService) ApproveByRegistrator(ctx context.Context, actor *model.User, fileID int64, registered, notRegistered int, acceptedNote *string) (*model.UploadedFile, error) {
	if !actor.Role.Can(model.ActionApproveAsRegistrator) {
		return nil, model.ErrRoleNotAllowed
	}
	if registered < 0 || notRegistered < 0 {
		return nil, fmt.Errorf("%w: counts must be non-negative", model.ErrValidation)
	}
	if err := validateNote(acceptedNote); err != nil {
		return nil, err
	}

	ok, err := s.repo.AcceptFromWaiting(ctx, fileID, registered, notRegistered, acceptedNote)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.failTransition(ctx, fileID)
	}

	file, err := s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.notifier.FileStatusChanged(file, model.StatusAccepted, "")
	return file, nil
}

// Reject переводит файл в rejected: checker из pending, registrator из waiting.
func (s *FileService) Reject(ctx context.Context, actor *model.User, fileID int64, note *string) (*model.UploadedFile, error) {
	if err := validateNote(note); err != nil {
		return nil, err
	}

	file, err := s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var from model.FileStatus
	switch file.Status {
	case model.StatusPending:
		if !actor.Role.Can(model.ActionApproveAsChecker) {
			return nil, model.ErrRoleNotAllowed
		}
		from = model.StatusPending
	case model.StatusWaiting:
		if !actor.Role.Can(model.ActionApproveAsRegistrator) {
			return nil, model.ErrRoleNotAllowed
		}
		from = model.StatusWaiting
	default:
		return nil, model.ErrUnableToTransition
	}

	ok, err := s.repo.TransitionStatus(ctx, fileID, from, model.StatusRejected, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.failTransition(ctx, fileID)
	}

	file, err = s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	notes := ""
	if note != nil {
		notes = *note
	}
	s.notifier.FileStatusChanged(file, model.StatusRejected, notes)
	return file, nil
}

// UpdateStatusInput параметры прямого обновления статуса из админки.
type UpdateStatusInput struct {
	Status             model.FileStatus
	AdminNotes         *string
	RegisteredCount    *int
	NotRegisteredCount *int
	AcceptedNote       *string
	Attachments        []model.ResponseAttachment
}

// UpdateStatus устанавливает произвольный статус напрямую. Заметки
// сохраняются всегда; уведомление уходит при фактической смене статуса
// либо когда приложены файлы-ответы, тогда они пересылаются владельцу.
func (s *FileService) UpdateStatus(ctx context.Context, actor *model.User, fileID int64, in UpdateStatusInput) (*model.UploadedFile, error) {
	if !actor.Role.Can(model.ActionDirectStatusUpdate) {
		return nil, model.ErrRoleNotAllowed
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, in.Status)
	}
	if err := validateNote(in.AdminNotes); err != nil {
		return nil, err
	}
	if err := validateNote(in.AcceptedNote); err != nil {
		return nil, err
	}
	if in.Status == model.StatusAccepted {
		if in.RegisteredCount == nil || in.NotRegisteredCount == nil {
			return nil, fmt.Errorf("%w: registered counts are required for accepted status", model.ErrValidation)
		}
		if *in.RegisteredCount < 0 || *in.NotRegisteredCount < 0 {
			return nil, fmt.Errorf("%w: counts must be non-negative", model.ErrValidation)
		}
	}
	for _, a := range in.Attachments {
		if !a.Kind.Valid() || a.FileID == "" {
			return nil, fmt.Errorf("%w: invalid response attachment", model.ErrValidation)
		}
	}

	oldStatus, err := s.repo.UpdateStatusDirect(ctx, fileID, in.Status, in.AdminNotes,
		in.RegisteredCount, in.NotRegisteredCount, in.AcceptedNote)
	if err != nil {
		return nil, err
	}

	file, err := s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if oldStatus != in.Status || len(in.Attachments) > 0 {
		notes := ""
		if in.AdminNotes != nil {
			notes = *in.AdminNotes
		}
		if len(in.Attachments) > 0 {
			s.notifier.FileStatusChangedWithAttachments(file, in.Status, notes, in.Attachments)
		} else {
			s.notifier.FileStatusChanged(file, in.Status, notes)
		}
	}
	return file, nil
}

// ListFiles возвращает файлы по фильтру для админки.
func (s *FileService) ListFiles(ctx context.Context, actor *model.User, filter repository.ListFilter) ([]*model.UploadedFile, error) {
	if !actor.Role.Can(model.ActionViewAllFiles) {
		return nil, model.ErrRoleNotAllowed
	}
	return s.repo.ListFiles(ctx, filter)
}

// RecentFilesByUser возвращает последние файлы пользователя и их общее число.
func (s *FileService) RecentFilesByUser(ctx context.Context, userID int64, limit int) ([]*model.UploadedFile, int, error) {
	files, err := s.repo.RecentFilesByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountFilesByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// DeleteFile удаляет запись о файле.
func (s *FileService) DeleteFile(ctx context.Context, actor *model.User, fileID int64) error {
	if !actor.Role.Can(model.ActionDeleteFile) {
		return model.ErrRoleNotAllowed
	}
	return s.repo.DeleteFile(ctx, fileID)
}

// Stats возвращает количество файлов по статусам.
func (s *FileService) Stats(ctx context.Context, actor *model.User) (map[model.FileStatus]int, error) {
	if !actor.Role.Can(model.ActionViewAllFiles) {
		return nil, model.ErrRoleNotAllowed
	}
	return s.repo.CountByStatus(ctx)
}

// failTransition превращает нулевой RowsAffected в осмысленную ошибку:
// либо файла нет, либо он уже в другом статусе.
func (s *FileService) failTransition(ctx context.Context, fileID int64) (*model.UploadedFile, error) {
	if _, err := s.repo.GetFileByID(ctx, fileID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return nil, model.ErrUnableToTransition
}

func validateNote(note *string) error {
	if note == nil {
		return nil
	}
	if len([]rune(strings.TrimSpace(*note))) > maxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", model.ErrValidation, maxNoteLength)
	}
	return nil
}
