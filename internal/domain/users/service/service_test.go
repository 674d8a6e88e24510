package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

// fakeUserStore — in-memory реализация UserStore для тестов.
type fakeUserStore struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, u := range f.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUserStore) GetUserByPhone(_ context.Context, phone string) (*model.User, error) {
	for _, u := range f.users {
		if u.PhoneNumber != nil && *u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) (int64, error) {
	id := f.nextID
	f.nextID++
	cp := *user
	cp.ID = id
	f.users[id] = &cp
	return id, nil
}

func (f *fakeUserStore) LinkTelegramByPhone(_ context.Context, phone string, telegramID int64) (*model.User, error) {
	for _, u := range f.users {
		if u.PhoneNumber != nil && *u.PhoneNumber == phone {
			u.TelegramID = &telegramID
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUserStore) LinkTelegram(_ context.Context, userID, telegramID int64) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	u.TelegramID = &telegramID
	u.ConnectionToken = nil
	u.ConnectionTokenExpires = nil
	return nil
}

func (f *fakeUserStore) UpdateUserRole(_ context.Context, userID int64, role model.Role) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, userID int64) error {
	if _, ok := f.users[userID]; !ok {
		return model.ErrNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeUserStore) CountByRole(_ context.Context, role model.Role) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserStore) SetConnectionToken(_ context.Context, userID int64, token string, expires time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	u.ConnectionToken = &token
	u.ConnectionTokenExpires = &expires
	return nil
}

func (f *fakeUserStore) GetUserByConnectionToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range f.users {
		if u.ConnectionToken != nil && *u.ConnectionToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserStore) addUser(role model.Role) *model.User {
	id := f.nextID
	f.nextID++
	u := &model.User{ID: id, Name: "user", Email: "u@example.com", Role: role}
	f.users[id] = u
	return u
}

// Регистрация через бота: роль user, email из телефона, bcrypt-хеш пароля.
func TestRegisterFromTelegram(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	region := "Фарғона шахар"
	user, err := svc.RegisterFromTelegram(context.Background(), "+998901234567", "Halimjon Hikmatjonov", &region, 777)
	if err != nil {
		t.Fatalf("RegisterFromTelegram: %v", err)
	}

	if user.Email != "+998901234567@telegram.local" {
		t.Errorf("email = %q", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, ожидалось user", user.Role)
	}
	if user.TelegramID == nil || *user.TelegramID != 777 {
		t.Error("telegram_id не сохранён")
	}
	if user.PasswordHash == "" {
		t.Error("пустой хеш пароля")
	}
}

// Повторная регистрация по уже известному номеру не плодит дубликаты:
// к существующему аккаунту привязывается telegram_id.
func TestRegisterFromTelegramExistingPhone(t *testing.T) {
	store := newFakeUserStore()
	phone := "+998901234567"
	existing := store.addUser(model.RoleChecker)
	existing.PhoneNumber = &phone

	svc := NewUserService(store)
	user, err := svc.RegisterFromTelegram(context.Background(), phone, "Halimjon Hikmatjonov", nil, 777)
	if err != nil {
		t.Fatalf("RegisterFromTelegram: %v", err)
	}

	if user.ID != existing.ID {
		t.Errorf("id = %d, ожидался существующий %d", user.ID, existing.ID)
	}
	if user.Role != model.RoleChecker {
		t.Errorf("role = %q, роль существующего аккаунта не должна меняться", user.Role)
	}
	if user.TelegramID == nil || *user.TelegramID != 777 {
		t.Error("telegram_id не привязан к существующему аккаунту")
	}
	if len(store.users) != 1 {
		t.Errorf("в хранилище %d пользователей, ожидался 1", len(store.users))
	}
}

// Слишком короткое имя отклоняется.
func TestRegisterFromTelegramShortName(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	_, err := svc.RegisterFromTelegram(context.Background(), "+998901234567", " A ", nil, 777)
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("ожидалась ErrValidation, получено %v", err)
	}
}

// Неизвестный регион отклоняется.
func TestRegisterFromTelegramUnknownRegion(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	region := "Ташкент"
	_, err := svc.RegisterFromTelegram(context.Background(), "+998901234567", "Halimjon Hikmatjonov", &region, 777)
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("ожидалась ErrValidation, получено %v", err)
	}
}

// Привязка по телефону: существующий пользователь получает telegram_id.
func TestLinkTelegramByPhone(t *testing.T) {
	store := newFakeUserStore()
	phone := "+998901234567"
	u := store.addUser(model.RoleUser)
	u.PhoneNumber = &phone

	svc := NewUserService(store)
	linked, err := svc.LinkTelegramByPhone(context.Background(), phone, 555)
	if err != nil {
		t.Fatalf("LinkTelegramByPhone: %v", err)
	}
	if linked.TelegramID == nil || *linked.TelegramID != 555 {
		t.Error("telegram_id не привязан")
	}

	if _, err := svc.LinkTelegramByPhone(context.Background(), "+998000000000", 555); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

// Только роль с правом manage_users меняет роли.
func TestUpdateUserRolePermission(t *testing.T) {
	store := newFakeUserStore()
	actor := store.addUser(model.RoleChecker)
	target := store.addUser(model.RoleUser)

	svc := NewUserService(store)
	err := svc.UpdateUserRole(context.Background(), actor, target.ID, model.RoleChecker)
	if !errors.Is(err, model.ErrRoleNotAllowed) {
		t.Errorf("ожидалась ErrRoleNotAllowed, получено %v", err)
	}
}

// Последнего CEO нельзя понизить в роли.
func TestUpdateUserRoleLastCEO(t *testing.T) {
	store := newFakeUserStore()
	ceo := store.addUser(model.RoleCEO)

	svc := NewUserService(store)
	err := svc.UpdateUserRole(context.Background(), ceo, ceo.ID, model.RoleUser)
	if !errors.Is(err, model.ErrLastCEO) {
		t.Errorf("ожидалась ErrLastCEO, получено %v", err)
	}

	// При двух CEO понижение допустимо.
	store.addUser(model.RoleCEO)
	if err := svc.UpdateUserRole(context.Background(), ceo, ceo.ID, model.RoleUser); err != nil {
		t.Errorf("UpdateUserRole: %v", err)
	}
}

// Самоудаление запрещено.
func TestDeleteUserSelf(t *testing.T) {
	store := newFakeUserStore()
	ceo := store.addUser(model.RoleCEO)

	svc := NewUserService(store)
	err := svc.DeleteUser(context.Background(), ceo, ceo.ID)
	if !errors.Is(err, model.ErrSelfDelete) {
		t.Errorf("ожидалась ErrSelfDelete, получено %v", err)
	}
}

// Удаление последнего CEO запрещено, обычного пользователя — допустимо.
func TestDeleteUserLastCEO(t *testing.T) {
	store := newFakeUserStore()
	ceo := store.addUser(model.RoleCEO)
	other := store.addUser(model.RoleUser)
	admin := store.addUser(model.RoleRegistrator)

	svc := NewUserService(store)
	if err := svc.DeleteUser(context.Background(), admin, ceo.ID); !errors.Is(err, model.ErrLastCEO) {
		t.Errorf("ожидалась ErrLastCEO, получено %v", err)
	}
	if err := svc.DeleteUser(context.Background(), admin, other.ID); err != nil {
		t.Errorf("DeleteUser: %v", err)
	}
}

// Токен привязки действует 10 минут и одноразовый.
func TestConnectionTokenLifecycle(t *testing.T) {
	store := newFakeUserStore()
	u := store.addUser(model.RoleUser)

	svc := NewUserService(store)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token, err := svc.IssueConnectionToken(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssueConnectionToken: %v", err)
	}

	linked, err := svc.CompleteConnection(context.Background(), token, 999)
	if err != nil {
		t.Fatalf("CompleteConnection: %v", err)
	}
	if linked.TelegramID == nil || *linked.TelegramID != 999 {
		t.Error("telegram_id не привязан по токену")
	}

	// Токен очищается после привязки.
	if _, err := svc.CompleteConnection(context.Background(), token, 999); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("повторное использование токена: ожидалась ErrNotFound, получено %v", err)
	}
}

// Просроченный токен не работает.
func TestConnectionTokenExpired(t *testing.T) {
	store := newFakeUserStore()
	u := store.addUser(model.RoleUser)

	svc := NewUserService(store)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token, err := svc.IssueConnectionToken(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssueConnectionToken: %v", err)
	}

	now = now.Add(11 * time.Minute)
	if _, err := svc.CompleteConnection(context.Background(), token, 999); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound для просроченного токена, получено %v", err)
	}
}
