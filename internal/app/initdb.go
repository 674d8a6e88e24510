package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/uzfiles/approvalbot/internal/infra/config"
)

// InitDatabase устанавливает подключение к базе данных и доводит схему
func InitDatabase(cfg *config.Config, logger *logrus.Entry) (*pgxpool.Pool, error) {
	const op = "app.InitDatabase"

	connConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database config: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(context.Background(), connConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create database pool: %w", op, err)
	}

	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := EnsureSchema(context.Background(), db); err != nil {
		return nil, fmt.Errorf("%s: failed to ensure schema: %w", op, err)
	}

	logger.Info("database connected")
	return db, nil
}

// schemaStatements — идемпотентные DDL-операторы. Закрытые наборы ролей и
// статусов продублированы check-ограничениями, чтобы база отклоняла
// значения вне enum-ов независимо от валидации в коде.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT UNIQUE,
		region TEXT,
		telegram_id BIGINT UNIQUE,
		role TEXT NOT NULL DEFAULT 'user'
			CHECK (role IN ('user', 'checker', 'registrator', 'ceo',
				'branch_agency_head', 'branch_chamber_head',
				'branch_deputy', 'onec_developer')),
		password_hash TEXT NOT NULL,
		connection_token TEXT,
		connection_token_expires TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS uploaded_files (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		telegram_file_id TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_type TEXT NOT NULL
			CHECK (file_type IN ('document', 'photo', 'video', 'audio', 'voice')),
		mime_type TEXT,
		file_size BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'waiting', 'accepted', 'rejected')),
		admin_notes TEXT,
		registered_count INT NOT NULL DEFAULT 0,
		not_registered_count INT NOT NULL DEFAULT 0,
		accepted_note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uploaded_files_status ON uploaded_files (status)`,
	`CREATE INDEX IF NOT EXISTS idx_uploaded_files_user_id ON uploaded_files (user_id)`,
	`CREATE TABLE IF NOT EXISTS telegram_messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL,
		recipient_id BIGINT NOT NULL,
		message TEXT NOT NULL,
		telegram_chat_id BIGINT,
		is_bulk BOOLEAN NOT NULL DEFAULT false,
		recipient_count INT,
		sent_successfully BOOLEAN NOT NULL DEFAULT false,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_telegram_messages_recipient ON telegram_messages (recipient_id)`,
}

// EnsureSchema создает таблицы, если их еще нет
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
