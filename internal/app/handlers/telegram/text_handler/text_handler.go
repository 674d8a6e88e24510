package text_handler

import (
	"context"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/flow"
)

// TextHandler маршрутизирует текстовые сообщения: кнопки меню и шаги
// активного сценария (имя при регистрации, название файла при загрузке)
type TextHandler struct {
	engine *flow.Engine
}

// NewTextHandler возвращает структуру обработчика
func NewTextHandler(engine *flow.Engine) *TextHandler {
	return &TextHandler{engine: engine}
}

func (h *TextHandler) Handle(c telebot.Context) error {
	ev := flow.Event{
		ChatID:      c.Sender().ID,
		DisplayName: c.Sender().FirstName,
		Text:        c.Text(),
	}
	return h.engine.HandleText(context.Background(), ev)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *TextHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
