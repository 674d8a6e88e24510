package model

import "time"

// TelegramMessage — запись одной попытки доставки сообщения пользователю.
// Журнал только пополняется: записи после создания не изменяются.
type TelegramMessage struct {
	ID               int64     `json:"id"`
	SenderID         int64     `json:"sender_id"`
	RecipientID      int64     `json:"recipient_id"`
	Message          string    `json:"message"`
	TelegramChatID   *int64    `json:"telegram_chat_id,omitempty"`
	IsBulk           bool      `json:"is_bulk"`
	RecipientCount   *int      `json:"recipient_count,omitempty"`
	SentSuccessfully bool      `json:"sent_successfully"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
