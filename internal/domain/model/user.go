package model

import "time"

// User — учётная запись. Создаётся либо ботом при регистрации через Telegram,
// либо администратором через веб-консоль.
type User struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	PhoneNumber            *string    `json:"phone_number,omitempty"`
	Region                 *string    `json:"region,omitempty"`
	TelegramID             *int64     `json:"telegram_id,omitempty"`
	Role                   Role       `json:"role"`
	PasswordHash           string     `json:"-"`
	ConnectionToken        *string    `json:"-"`
	ConnectionTokenExpires *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// HasTelegram сообщает, привязан ли к учётной записи Telegram-чат.
func (u *User) HasTelegram() bool {
	return u != nil && u.TelegramID != nil && *u.TelegramID != 0
}

// IsChecker сообщает, является ли пользователь проверяющим первого уровня.
func (u *User) IsChecker() bool { return u != nil && u.Role == RoleChecker }

// IsRegistrator сообщает, является ли пользователь регистратором.
func (u *User) IsRegistrator() bool { return u != nil && u.Role == RoleRegistrator }

// IsCEO сообщает, является ли пользователь руководителем.
func (u *User) IsCEO() bool { return u != nil && u.Role == RoleCEO }

// ConnectionTokenValid проверяет, что токен привязки совпадает и не истёк.
func (u *User) ConnectionTokenValid(token string, now time.Time) bool {
	return u != nil &&
		u.ConnectionToken != nil && *u.ConnectionToken == token &&
		u.ConnectionTokenExpires != nil && u.ConnectionTokenExpires.After(now)
}
