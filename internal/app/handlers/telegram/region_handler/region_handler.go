package region_handler

import (
	"context"
	"strings"

	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/flow"
)

// RegionHandler обрабатывает callback-кнопки выбора региона при регистрации
type RegionHandler struct {
	engine *flow.Engine
}

// NewRegionHandler возвращает структуру обработчика
func NewRegionHandler(engine *flow.Engine) *RegionHandler {
	return &RegionHandler{engine: engine}
}

func (h *RegionHandler) Handle(c telebot.Context) error {
	data := strings.TrimSpace(strings.TrimPrefix(c.Callback().Data, "\f"))
	if !strings.HasPrefix(data, flow.RegionCallbackPrefix) {
		return c.Respond()
	}

	ev := flow.Event{
		ChatID:      c.Sender().ID,
		DisplayName: c.Sender().FirstName,
		Callback:    data,
	}
	if err := h.engine.HandleRegionCallback(context.Background(), ev); err != nil {
		return err
	}
	return c.Respond()
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *RegionHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
