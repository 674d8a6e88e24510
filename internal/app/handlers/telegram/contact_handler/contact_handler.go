package contact_handler

import (
	"context"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/flow"
)

// ContactHandler обрабатывает присланный контакт на шаге регистрации
type ContactHandler struct {
	engine *flow.Engine
}

// NewContactHandler возвращает структуру обработчика
func NewContactHandler(engine *flow.Engine) *ContactHandler {
	return &ContactHandler{engine: engine}
}

func (h *ContactHandler) Handle(c telebot.Context) error {
	ev := flow.Event{
		ChatID:      c.Sender().ID,
		DisplayName: c.Sender().FirstName,
	}
	if contact := c.Message().Contact; contact != nil {
		ev.Contact = &flow.Contact{Phone: contact.PhoneNumber}
	}
	return h.engine.HandleContact(context.Background(), ev)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *ContactHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
