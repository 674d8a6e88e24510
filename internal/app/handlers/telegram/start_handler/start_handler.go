package start_handler

import (
	"context"
	"strings"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/flow"
)

// StartHandler структура для обработки команды /start
type StartHandler struct {
	engine *flow.Engine
}

// NewStartHandler возвращает структуру обработчика
func NewStartHandler(engine *flow.Engine) *StartHandler {
	return &StartHandler{engine: engine}
}

// Handle обрабатывает /start. Полезной нагрузкой может прийти токен
// привязки из глубокой ссылки t.me/<bot>?start=<token>.
func (h *StartHandler) Handle(c telebot.Context) error {
	payload := ""
	if msg := c.Message(); msg != nil {
		payload = strings.TrimSpace(msg.Payload)
	}

	ev := flow.Event{
		ChatID:      c.Sender().ID,
		DisplayName: c.Sender().FirstName,
	}
	return h.engine.Start(context.Background(), ev, payload)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
