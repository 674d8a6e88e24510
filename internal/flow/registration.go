package flow

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/messages"
	"github.com/uzfiles/approvalbot/internal/session"
)

// Префиксы callback-данных выбора региона.
const (
	RegionCallbackPrefix = "region_"
	RegionSkipCallback   = "region_skip"
)

// HandleContact обрабатывает присланный контакт. Если телефон уже известен,
// привязка идемпотентна: второй аккаунт не создаётся.
func (e *Engine) HandleContact(ctx context.Context, ev Event) error {
	if ev.Contact == nil || ev.Contact.Phone == "" {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.ContactUnreadable, KeyboardNone)
	}
	phone := ev.Contact.Phone

	user, err := e.users.LinkTelegramByPhone(ctx, phone, ev.ChatID)
	if err == nil {
		_ = e.sessions.Delete(ev.ChatID)
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.AccountLinked(user.Name), KeyboardMain)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	if err := e.sessions.Set(ev.ChatID, session.State{
		Flow:         session.FlowRegistration,
		Step:         session.StepAwaitingFullName,
		PendingPhone: phone,
		DisplayName:  ev.DisplayName,
	}); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskFullName, KeyboardNone)
}

// handleFullName принимает полное имя. Короткое имя оставляет шаг на месте.
func (e *Engine) handleFullName(ctx context.Context, ev Event, state session.State, text string) error {
	if len([]rune(text)) < 2 {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.FullNameTooShort, KeyboardNone)
	}

	state.PendingName = text
	state.Step = session.StepAwaitingRegion
	if err := e.sessions.Set(ev.ChatID, state); err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskRegion, KeyboardRegions)
}

// HandleRegionCallback завершает регистрацию по нажатию inline-кнопки региона.
func (e *Engine) HandleRegionCallback(ctx context.Context, ev Event) error {
	state, ok := e.sessions.Get(ev.ChatID)
	if !ok || state.Flow != session.FlowRegistration || state.Step != session.StepAwaitingRegion {
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.RegistrationExpired, KeyboardNone)
	}

	var region *string
	data := strings.TrimSpace(ev.Callback)
	if data != RegionSkipCallback {
		idx, err := strconv.Atoi(strings.TrimPrefix(data, RegionCallbackPrefix))
		if err != nil {
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskRegion, KeyboardRegions)
		}
		name, ok := model.RegionByIndex(idx)
		if !ok {
			return e.gateway.SendMessage(ctx, ev.ChatID, messages.AskRegion, KeyboardRegions)
		}
		region = &name
	}

	user, err := e.users.RegisterFromTelegram(ctx, state.PendingPhone, state.PendingName, region, ev.ChatID)
	if err != nil {
		e.logger.WithField("chat_id", ev.ChatID).WithError(err).Error("failed to register user")
		return e.gateway.SendMessage(ctx, ev.ChatID, messages.RegistrationExpired, KeyboardNone)
	}

	if err := e.sessions.Delete(ev.ChatID); err != nil {
		return err
	}

	regionText := ""
	if user.Region != nil {
		regionText = *user.Region
	}
	phone := ""
	if user.PhoneNumber != nil {
		phone = *user.PhoneNumber
	}
	return e.gateway.SendMessage(ctx, ev.ChatID, messages.RegistrationDone(user.Name, phone, regionText), KeyboardMain)
}
