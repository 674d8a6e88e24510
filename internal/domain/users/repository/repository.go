package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

const userColumns = `id, name, email, phone_number, region, telegram_id, role, password_hash,
       connection_token, connection_token_expires, created_at, updated_at`

// UserRepository реализация хранилища пользователей в PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.Region, &user.TelegramID,
		&user.Role, &user.PasswordHash, &user.ConnectionToken, &user.ConnectionTokenExpires,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID получает пользователя по ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByTelegramID получает пользователя по ID telegram
func (r *UserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE telegram_id = $1", userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}
	return user, nil
}

// GetUserByPhone получает пользователя по номеру телефона
func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE phone_number = $1", userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return user, nil
}

// CreateUser создает нового пользователя и возвращает его ID
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := `
        INSERT INTO users (name, email, phone_number, region, telegram_id, role, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var userID int64
	err := r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.PhoneNumber, user.Region, user.TelegramID, user.Role, user.PasswordHash).
		Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// LinkTelegramByPhone атомарно привязывает telegram_id к пользователю с данным
// номером телефона. Возвращает обновлённого пользователя или model.ErrNotFound.
func (r *UserRepository) LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error) {
	query := fmt.Sprintf(`
        UPDATE users SET telegram_id = $1, updated_at = now()
        WHERE phone_number = $2
        RETURNING %s
    `, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, telegramID, phone))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to link telegram by phone: %w", err)
	}
	return user, nil
}

// LinkTelegram привязывает telegram_id к пользователю по его ID.
func (r *UserRepository) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE users SET telegram_id = $1, connection_token = NULL, connection_token_expires = NULL, updated_at = now() WHERE id = $2",
		telegramID, userID)
	if err != nil {
		return fmt.Errorf("failed to link telegram: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdateUserRole обновляет роль пользователя
func (r *UserRepository) UpdateUserRole(ctx context.Context, userID int64, role model.Role) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE users SET role = $1, updated_at = now() WHERE id = $2", role, userID)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteUser удаляет пользователя
func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CountByRole возвращает количество пользователей с заданной ролью
func (r *UserRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users WHERE role = $1", role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}

// SetConnectionToken сохраняет одноразовый токен привязки Telegram
func (r *UserRepository) SetConnectionToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE users SET connection_token = $1, connection_token_expires = $2, updated_at = now() WHERE id = $3",
		token, expires, userID)
	if err != nil {
		return fmt.Errorf("failed to set connection token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetUserByConnectionToken ищет пользователя по токену привязки
func (r *UserRepository) GetUserByConnectionToken(ctx context.Context, token string) (*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE connection_token = $1", userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by connection token: %w", err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей, новые первыми
func (r *UserRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
