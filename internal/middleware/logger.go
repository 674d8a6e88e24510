// Package middleware содержит middleware для telebot.
package middleware

import (
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

// Logger возвращает middleware, которое логирует входящие обновления:
// отправителя, тип события и текст или данные callback.
func Logger(logger *logrus.Entry) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			fields := logrus.Fields{}
			if sender := c.Sender(); sender != nil {
				fields["chat_id"] = sender.ID
				fields["username"] = sender.Username
			}
			if msg := c.Message(); msg != nil {
				switch {
				case msg.Contact != nil:
					fields["event"] = "contact"
				case msg.Document != nil:
					fields["event"] = "document"
				case msg.Photo != nil:
					fields["event"] = "photo"
				case msg.Video != nil:
					fields["event"] = "video"
				case msg.Audio != nil:
					fields["event"] = "audio"
				case msg.Voice != nil:
					fields["event"] = "voice"
				default:
					fields["event"] = "text"
					fields["text"] = msg.Text
				}
			} else if cb := c.Callback(); cb != nil {
				fields["event"] = "callback"
				fields["data"] = cb.Data
			}
			logger.WithFields(fields).Debug("telegram update")
			return next(c)
		}
	}
}
