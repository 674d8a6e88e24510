package middleware

import (
	"errors"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

// Recover возвращает middleware, перехватывающее панику в обработчике.
// Паника логируется и превращается в обычную ошибку, чтобы бот продолжал
// обрабатывать следующие обновления.
func Recover(logger *logrus.Entry) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var e error
					switch x := r.(type) {
					case error:
						e = x
					case string:
						e = errors.New(x)
					default:
						e = errors.New("unknown panic")
					}
					logger.WithError(e).Error("recovered from panic in handler")
					err = e
				}
			}()
			return next(c)
		}
	}
}
