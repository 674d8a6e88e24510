// Package telegram адаптирует telebot к интерфейсам сценариев и диспетчера
// уведомлений. Файлы пользователей остаются на серверах Telegram, наружу
// отдаётся только file_path.
package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/flow"
	"github.com/uzfiles/approvalbot/internal/messages"
)

var htmlOpts = &telebot.SendOptions{ParseMode: telebot.ModeHTML}

// Gateway реализует flow.Gateway поверх telebot.
type Gateway struct {
	bot *telebot.Bot
}

// NewGateway создает новый Gateway.
func NewGateway(bot *telebot.Bot) *Gateway {
	return &Gateway{bot: bot}
}

// SendMessage отправляет HTML-сообщение с нужной клавиатурой.
func (g *Gateway) SendMessage(_ context.Context, chatID int64, text string, kb flow.Keyboard) error {
	opts := &telebot.SendOptions{
		ParseMode:   telebot.ModeHTML,
		ReplyMarkup: markupFor(kb),
	}
	_, err := g.bot.Send(telebot.ChatID(chatID), text, opts)
	return err
}

// ResolveFileHandle получает постоянный file_path вложения через getFile.
// Telegram отказывает для файлов, которые сам не может отдать (свыше 20 MB
// через Bot API), тогда вызывающий сообщает об ошибке пользователю.
func (g *Gateway) ResolveFileHandle(_ context.Context, fileID string) (string, error) {
	file, err := g.bot.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve telegram file: %w", err)
	}
	return file.FilePath, nil
}

// Notify возвращает адаптер для диспетчера уведомлений.
func (g *Gateway) Notify() *NotifySender {
	return &NotifySender{g: g}
}

// NotifySender реализует notify.Gateway.
type NotifySender struct {
	g *Gateway
}

// SendMessage отправляет уведомление без клавиатуры.
func (n *NotifySender) SendMessage(ctx context.Context, chatID int64, text string) error {
	return n.g.SendMessage(ctx, chatID, text, flow.KeyboardNone)
}

// SendAttachment пересылает файл по его telegram file_id. Байты не
// скачиваются: Telegram отдаёт файл получателю сам.
func (n *NotifySender) SendAttachment(_ context.Context, chatID int64, kind model.FileType, fileID, caption string) error {
	ref := telebot.File{FileID: fileID}

	var media any
	switch kind {
	case model.FileTypePhoto:
		media = &telebot.Photo{File: ref, Caption: caption}
	case model.FileTypeVideo:
		media = &telebot.Video{File: ref, Caption: caption}
	case model.FileTypeAudio:
		media = &telebot.Audio{File: ref, Caption: caption}
	case model.FileTypeVoice:
		media = &telebot.Voice{File: ref, Caption: caption}
	default:
		media = &telebot.Document{File: ref, Caption: caption}
	}

	_, err := n.g.bot.Send(telebot.ChatID(chatID), media, htmlOpts)
	return err
}

func markupFor(kb flow.Keyboard) *telebot.ReplyMarkup {
	switch kb {
	case flow.KeyboardMain:
		return &telebot.ReplyMarkup{
			ResizeKeyboard: true,
			ReplyKeyboard: [][]telebot.ReplyButton{
				{{Text: messages.BtnUpload}, {Text: messages.BtnFiles}, {Text: messages.BtnHelp}},
				{{Text: messages.BtnRefresh}},
			},
		}
	case flow.KeyboardCancel:
		return &telebot.ReplyMarkup{
			ResizeKeyboard: true,
			ReplyKeyboard: [][]telebot.ReplyButton{
				{{Text: messages.BtnCancel}},
			},
		}
	case flow.KeyboardContact:
		return &telebot.ReplyMarkup{
			ResizeKeyboard: true,
			ReplyKeyboard: [][]telebot.ReplyButton{
				{{Text: messages.BtnShareContact, Contact: true}},
			},
		}
	case flow.KeyboardRegions:
		return regionMarkup()
	default:
		return nil
	}
}

// regionMarkup строит inline-список регионов: по две кнопки в ряд и
// отдельная кнопка пропуска.
func regionMarkup() *telebot.ReplyMarkup {
	regions := model.Regions()

	var rows [][]telebot.InlineButton
	var row []telebot.InlineButton
	for i, region := range regions {
		row = append(row, telebot.InlineButton{
			Text: region,
			Data: fmt.Sprintf("%s%d", flow.RegionCallbackPrefix, i),
		})
		if len(row) == 2 || i == len(regions)-1 {
			rows = append(rows, row)
			row = nil
		}
	}
	rows = append(rows, []telebot.InlineButton{
		{Text: messages.BtnSkipRegion, Data: flow.RegionSkipCallback},
	})

	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}
