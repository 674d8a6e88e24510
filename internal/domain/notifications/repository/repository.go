package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

// MessageRepository пишет журнал отправленных Telegram-сообщений.
// Журнал append-only: записи после создания не меняются.
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository создает новый экземпляр MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// RecordMessage сохраняет результат одной попытки доставки.
func (r *MessageRepository) RecordMessage(ctx context.Context, m *model.TelegramMessage) (int64, error) {
	query := `
        INSERT INTO telegram_messages (sender_id, recipient_id, message, telegram_chat_id,
                                       is_bulk, recipient_count, sent_successfully, error_message)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var messageID int64
	err := r.db.QueryRow(ctx, query,
		m.SenderID, m.RecipientID, m.Message, m.TelegramChatID,
		m.IsBulk, m.RecipientCount, m.SentSuccessfully, m.ErrorMessage).
		Scan(&messageID)
	if err != nil {
		return 0, fmt.Errorf("failed to record telegram message: %w", err)
	}
	return messageID, nil
}

// ListByRecipient возвращает журнал сообщений пользователя, новые первыми.
func (r *MessageRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*model.TelegramMessage, error) {
	query := `
        SELECT id, sender_id, recipient_id, message, telegram_chat_id,
               is_bulk, recipient_count, sent_successfully, error_message, created_at
        FROM telegram_messages
        WHERE recipient_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list telegram messages: %w", err)
	}
	defer rows.Close()

	var out []*model.TelegramMessage
	for rows.Next() {
		var m model.TelegramMessage
		err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Message, &m.TelegramChatID,
			&m.IsBulk, &m.RecipientCount, &m.SentSuccessfully, &m.ErrorMessage, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan telegram message: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
