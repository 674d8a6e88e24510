// Package flow реализует диалоговые сценарии бота: регистрацию и загрузку
// файлов. Сценарии — явные конечные автоматы над состоянием из session.Store,
// диспетчеризация идёт по паре (сценарий, шаг) и типу входящего события.
package flow

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/messages"
	"github.com/uzfiles/approvalbot/internal/session"
)

// Keyboard — какую клавиатуру показать вместе с сообщением.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	// KeyboardMain — основное меню (Yuklash / Fayllar / Yordam / Yangilash).
	KeyboardMain
	// KeyboardCancel — одна кнопка отмены загрузки.
	KeyboardCancel
	// KeyboardContact — кнопка запроса контакта.
	KeyboardContact
	// KeyboardRegions — inline-список регионов по две кнопки в ряд плюс пропуск.
	KeyboardRegions
)

// Contact — номер телефона, которым поделился пользователь.
type Contact struct {
	Phone string
}

// Attachment — вложение из входящего сообщения.
type Attachment struct {
	Kind     model.FileType
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// Event — входящее событие чата, уже разобранное транспортным слоем.
type Event struct {
	ChatID      int64
	DisplayName string
	Text        string
	Contact     *Contact
	Attachment  *Attachment
	// Callback — данные нажатой inline-кнопки (region_<idx> или region_skip).
	Callback string
}

// Gateway — операции канала, нужные сценариям: отправка сообщений и
// получение постоянной ссылки на вложение.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) error
	ResolveFileHandle(ctx context.Context, fileID string) (string, error)
}

// UserDirectory — операции справочника пользователей, нужные сценариям.
type UserDirectory interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error)
	RegisterFromTelegram(ctx context.Context, phone, fullName string, region *string, telegramID int64) (*model.User, error)
	CompleteConnection(ctx context.Context, token string, telegramID int64) (*model.User, error)
}

// FileIntake — приём загруженных файлов.
type FileIntake interface {
	CreateUpload(ctx context.Context, f *model.UploadedFile) (*model.UploadedFile, error)
	RecentFilesByUser(ctx context.Context, userID int64, limit int) ([]*model.UploadedFile, int, error)
}

// Engine связывает сценарии с хранилищем сессий и доменными сервисами.
type Engine struct {
	sessions    session.Store
	users       UserDirectory
	files       FileIntake
	gateway     Gateway
	maxFileSize int64
	logger      *logrus.Entry
}

// NewEngine создает новый Engine.
func NewEngine(sessions session.Store, users UserDirectory, files FileIntake, gateway Gateway, maxFileSize int64, logger *logrus.Entry) *Engine {
	return &Engine{
		sessions:    sessions,
		users:       users,
		files:       files,
		gateway:     gateway,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Start обрабатывает /start. payload — необязательный токен привязки из
// глубокой ссылки t.me/<bot>?start=<token>.
func (e *Engine) Start(ctx context.Context, ev Event, payload string) error {
	if payload != "" {
		user, err := e.users.CompleteConnection(ctx, payload, ev.ChatID)
		if err == nil {
			_ = e.sessions.Delete(ev.ChatID)
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.AccountLinked(user.Name), KeyboardMain)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		// Неизвестный или просроченный токен: продолжаем как обычный /start.
	}

	user, err := e.users.GetUserByTelegramID(ctx, ev.ChatID)
	if err == nil {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.WelcomeBack(user.Name), KeyboardMain)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	if err := e.sessions.Set(ev.ChatID, session.State{
		Flow:        session.FlowRegistration,
		Step:        session.StepAwaitingContact,
		DisplayName: ev.DisplayName,
	}); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.WelcomeNew, KeyboardContact)
}

// HandleText маршрутизирует текстовое сообщение: сначала кнопки меню,
// затем текущий шаг сценария.
func (e *Engine) HandleText(ctx context.Context, ev Event) error {
	text := strings.TrimSpace(ev.Text)

	switch text {
	case messages.BtnUpload, messages.BtnUploadNew:
		return e.Upload(ctx, ev)
	case messages.BtnFiles, messages.BtnFilesMy, messages.BtnRefresh:
		return e.Files(ctx, ev)
	case messages.BtnHelp:
		return e.Help(ctx, ev)
	case messages.BtnHome, messages.BtnHomePage, messages.BtnRegister:
		return e.Start(ctx, ev, "")
	case messages.BtnCancel, "/cancel":
		return e.Cancel(ctx, ev)
	}

	state, ok := e.sessions.Get(ev.ChatID)
	if !ok {
		return nil
	}

	switch {
	case state.Flow == session.FlowRegistration && state.Step == session.StepAwaitingFullName:
		return e.handleFullName(ctx, ev, state, text)
	case state.Flow == session.FlowUpload && state.Step == session.StepAwaitingName:
		return e.handleUploadName(ctx, ev, state, text)
	case state.Flow == session.FlowUpload && state.Step == session.StepAwaitingFile:
		// На этом шаге ждём вложение, любой текст — переспрос.
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.ExpectedFile, KeyboardCancel)
	}
	return nil
}

// Help показывает справку.
func (e *Engine) Help(ctx context.Context, ev Event) error {
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.HelpText, KeyboardMain)
}

// Files показывает последние файлы пользователя.
func (e *Engine) Files(ctx context.Context, ev Event) error {
	user, err := e.users.GetUserByTelegramID(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.NotRegistered, KeyboardNone)
		}
		return err
	}

	files, total, err := e.files.RecentFilesByUser(ctx, user.ID, 10)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.FilesEmpty, KeyboardMain)
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.FilesList(files, total), KeyboardMain)
}

// Cancel прерывает активную загрузку, если она есть.
func (e *Engine) Cancel(ctx context.Context, ev Event) error {
	state, ok := e.sessions.Get(ev.ChatID)
	if ok && state.Flow == session.FlowUpload {
		if err := e.sessions.Delete(ev.ChatID); err != nil {
			return err
		}
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.UploadCancelled, KeyboardMain)
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.NothingToCancel, KeyboardMain)
}
