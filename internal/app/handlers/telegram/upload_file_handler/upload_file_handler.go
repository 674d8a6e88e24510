package upload_file_handler

import (
	"context"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/flow"
)

// UploadFileHandler принимает вложения всех поддерживаемых типов:
// документы, фото, видео, аудио и голосовые сообщения
type UploadFileHandler struct {
	engine *flow.Engine
}

// NewUploadFileHandler возвращает структуру обработчика
func NewUploadFileHandler(engine *flow.Engine) *UploadFileHandler {
	return &UploadFileHandler{engine: engine}
}

func (h *UploadFileHandler) Handle(c telebot.Context) error {
	ev := flow.Event{
		ChatID:      c.Sender().ID,
		DisplayName: c.Sender().FirstName,
		Attachment:  attachmentFrom(c.Message()),
	}
	return h.engine.HandleAttachment(context.Background(), ev)
}

// attachmentFrom извлекает вложение из сообщения. Для фото Telegram не
// присылает имени файла, подставляем стандартное.
func attachmentFrom(msg *telebot.Message) *flow.Attachment {
	switch {
	case msg.Document != nil:
		return &flow.Attachment{
			Kind:     model.FileTypeDocument,
			FileID:   msg.Document.FileID,
			FileName: orDefault(msg.Document.FileName, "document"),
			MimeType: orDefault(msg.Document.MIME, "application/octet-stream"),
			Size:     msg.Document.FileSize,
		}
	case msg.Photo != nil:
		return &flow.Attachment{
			Kind:     model.FileTypePhoto,
			FileID:   msg.Photo.FileID,
			FileName: "photo.jpg",
			MimeType: "image/jpeg",
			Size:     msg.Photo.FileSize,
		}
	case msg.Video != nil:
		return &flow.Attachment{
			Kind:     model.FileTypeVideo,
			FileID:   msg.Video.FileID,
			FileName: orDefault(msg.Video.FileName, "video.mp4"),
			MimeType: orDefault(msg.Video.MIME, "video/mp4"),
			Size:     msg.Video.FileSize,
		}
	case msg.Audio != nil:
		return &flow.Attachment{
			Kind:     model.FileTypeAudio,
			FileID:   msg.Audio.FileID,
			FileName: orDefault(msg.Audio.FileName, "audio.mp3"),
			MimeType: orDefault(msg.Audio.MIME, "audio/mpeg"),
			Size:     msg.Audio.FileSize,
		}
	case msg.Voice != nil:
		return &flow.Attachment{
			Kind:     model.FileTypeVoice,
			FileID:   msg.Voice.FileID,
			FileName: "voice.ogg",
			MimeType: "audio/ogg",
			Size:     msg.Voice.FileSize,
		}
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *UploadFileHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
