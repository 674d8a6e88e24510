package flow

import (
	"context"
	"errors"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/messages"
	"github.com/uzfiles/approvalbot/internal/session"
)

// Upload начинает сценарий загрузки. Незарегистрированные пользователи
// отправляются на регистрацию.
func (e *Engine) Upload(ctx context.Context, ev Event) error {
	_, err := e.users.GetUserByTelegramID(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			if err := e.sessions.Set(ev.ChatID, session.State{
				Flow:        session.FlowRegistration,
				Step:        session.StepAwaitingContact,
				DisplayName: ev.DisplayName,
			}); err != nil {
				return err
			}
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.RegisterFirst, KeyboardContact)
		}
		return err
	}

	if err := e.sessions.Set(ev.ChatID, session.State{
		Flow: session.FlowUpload,
		Step: session.StepAwaitingName,
	}); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskFileName, KeyboardCancel)
}

// handleUploadName принимает название файла. Пустой ввод — переспрос.
func (e *Engine) handleUploadName(ctx context.Context, ev Event, state session.State, text string) error {
	if text == "" {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.FileNameInvalid, KeyboardCancel)
	}

	state.PendingFileName = text
	state.Step = session.StepAwaitingFile
	if err := e.sessions.Set(ev.ChatID, state); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskFile, KeyboardCancel)
}

// HandleAttachment обрабатывает вложение. Запись создаётся только после
// успешной проверки размера и получения постоянной ссылки; при любой
// ошибке сессия остаётся на шаге AwaitingFile и пользователь может
// повторить отправку.
func (e *Engine) HandleAttachment(ctx context.Context, ev Event) error {
	state, ok := e.sessions.Get(ev.ChatID)
	if !ok || state.Flow != session.FlowUpload {
		return nil
	}
	if state.Step == session.StepAwaitingName {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.FileNameInvalid, KeyboardCancel)
	}
	if state.Step != session.StepAwaitingFile || ev.Attachment == nil {
		return nil
	}
	att := ev.Attachment

	user, err := e.users.GetUserByTelegramID(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			_ = e.sessions.Delete(ev.ChatID)
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.NotRegistered, KeyboardNone)
		}
		return err
	}

	if att.Size > e.maxFileSize {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.FileTooLarge(att.Size, e.maxFileSize), KeyboardCancel)
	}

	_ = e.gateway.SendMessage(ctx, ev.ChatID, messages.Processing, KeyboardNone)

	handle, err := e.gateway.ResolveFileHandle(ctx, att.FileID)
	if err != nil {
		e.logger.WithField("chat_id", ev.ChatID).WithError(err).Error("failed to resolve file handle")
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.ResolveFailed, KeyboardCancel)
	}

	mime := att.MimeType
	file := &model.UploadedFile{
		UserID:           user.ID,
		Name:             state.PendingFileName,
		OriginalFilename: att.FileName,
		TelegramFileID:   att.FileID,
		FilePath:         handle,
		FileType:         att.Kind,
		MimeType:         &mime,
		FileSize:         att.Size,
	}

	created, err := e.files.CreateUpload(ctx, file)
	if err != nil {
		e.logger.WithField("chat_id", ev.ChatID).WithError(err).Error("failed to save upload")
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.SaveFailed, KeyboardCancel)
	}

	if err := e.sessions.Delete(ev.ChatID); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.UploadDone(created, user.Name), KeyboardMain)
}
