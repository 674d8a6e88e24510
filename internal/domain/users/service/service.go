package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

// Время жизни токена привязки Telegram.
const connectionTokenTTL = 10 * time.Minute

// UserStore описывает операции хранилища, нужные сервису пользователей.
type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, userID, telegramID int64) error
	UpdateUserRole(ctx context.Context, userID int64, role model.Role) error
	DeleteUser(ctx context.Context, userID int64) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
	SetConnectionToken(ctx context.Context, userID int64, token string, expires time.Time) error
	GetUserByConnectionToken(ctx context.Context, token string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// UserService содержит бизнес-логику работы с пользователями
type UserService struct {
	repo UserStore
	now  func() time.Time
}

// NewUserService создает новый экземпляр UserService
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// RegisterFromTelegram создает пользователя по данным, собранным ботом.
// Email синтезируется из номера телефона, пароль случайный. Если номер
// уже зарегистрирован (например, администратором через консоль), новый
// аккаунт не создается, к существующему привязывается telegram_id.
func (s *UserService) RegisterFromTelegram(ctx context.Context, phone, fullName string, region *string, telegramID int64) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	if len([]rune(fullName)) < 2 {
		return nil, fmt.Errorf("%w: full name is too short", model.ErrValidation)
	}
	if region != nil && !model.ValidRegion(*region) {
		return nil, fmt.Errorf("%w: unknown region %q", model.ErrValidation, *region)
	}

	existing, err := s.repo.GetUserByPhone(ctx, phone)
	if err == nil {
		if err := s.repo.LinkTelegram(ctx, existing.ID, telegramID); err != nil {
			return nil, fmt.Errorf("failed to link telegram: %w", err)
		}
		existing.TelegramID = &telegramID
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         fullName,
		Email:        phone + "@telegram.local",
		PhoneNumber:  &phone,
		Region:       region,
		TelegramID:   &telegramID,
		Role:         model.RoleUser,
		PasswordHash: string(hash),
	}

	userID, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.ID = userID
	return user, nil
}

// LinkTelegramByPhone привязывает telegram_id к существующему пользователю
// с данным номером. Возвращает model.ErrNotFound, если номер не известен.
func (s *UserService) LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error) {
	user, err := s.repo.LinkTelegramByPhone(ctx, phone, telegramID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to link telegram: %w", err)
	}
	return user, nil
}

// GetUserByTelegramID возвращает пользователя по telegram_id
func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.repo.GetUserByTelegramID(ctx, telegramID)
}

// GetUserByID возвращает пользователя по ID
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// ListUsers возвращает всех пользователей
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser создает пользователя от имени администратора.
func (s *UserService) CreateUser(ctx context.Context, actor *model.User, name, email, password string, phone, region *string, role model.Role) (*model.User, error) {
	if !actor.Role.Can(model.ActionManageUsers) {
		return nil, model.ErrRoleNotAllowed
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: name and email are required", model.ErrValidation)
	}
	if region != nil && !model.ValidRegion(*region) {
		return nil, fmt.Errorf("%w: unknown region %q", model.ErrValidation, *region)
	}
	if password == "" {
		password = uuid.NewString()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PhoneNumber:  phone,
		Region:       region,
		Role:         role,
		PasswordHash: string(hash),
	}
	userID, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = userID
	return user, nil
}

// UpdateUserRole меняет роль пользователя. Последнего CEO понизить нельзя.
func (s *UserService) UpdateUserRole(ctx context.Context, actor *model.User, userID int64, role model.Role) error {
	if !actor.Role.Can(model.ActionManageUsers) {
		return model.ErrRoleNotAllowed
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	target, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.IsCEO() && role != model.RoleCEO {
		if err := s.ensureNotLastCEO(ctx); err != nil {
			return err
		}
	}
	return s.repo.UpdateUserRole(ctx, userID, role)
}

// DeleteUser удаляет пользователя. Нельзя удалить себя и последнего CEO.
func (s *UserService) DeleteUser(ctx context.Context, actor *model.User, userID int64) error {
	if !actor.Role.Can(model.ActionManageUsers) {
		return model.ErrRoleNotAllowed
	}
	if actor.ID == userID {
		return model.ErrSelfDelete
	}

	target, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.IsCEO() {
		if err := s.ensureNotLastCEO(ctx); err != nil {
			return err
		}
	}
	return s.repo.DeleteUser(ctx, userID)
}

func (s *UserService) ensureNotLastCEO(ctx context.Context) error {
	count, err := s.repo.CountByRole(ctx, model.RoleCEO)
	if err != nil {
		return err
	}
	if count <= 1 {
		return model.ErrLastCEO
	}
	return nil
}

// IssueConnectionToken выдаёт одноразовый токен для привязки Telegram
// через глубокую ссылку /start <token>.
func (s *UserService) IssueConnectionToken(ctx context.Context, userID int64) (string, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	expires := s.now().Add(connectionTokenTTL)
	if err := s.repo.SetConnectionToken(ctx, userID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// CompleteConnection привязывает telegram_id по токену из глубокой ссылки.
func (s *UserService) CompleteConnection(ctx context.Context, token string, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByConnectionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.ConnectionTokenValid(token, s.now()) {
		return nil, model.ErrNotFound
	}
	if err := s.repo.LinkTelegram(ctx, user.ID, telegramID); err != nil {
		return nil, err
	}
	user.TelegramID = &telegramID
	return user, nil
}
