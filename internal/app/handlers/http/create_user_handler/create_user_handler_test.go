package create_user_handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
)

// fakeUserStore хранит пользователей в памяти
type fakeUserStore struct {
	users  map[int64]*model.User
	nextID int64
}

func (s *fakeUserStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetUserByTelegramID(context.Context, int64) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (s *fakeUserStore) GetUserByPhone(context.Context, string) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *model.User) (int64, error) {
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user.ID, nil
}

func (s *fakeUserStore) LinkTelegramByPhone(context.Context, string, int64) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (s *fakeUserStore) LinkTelegram(context.Context, int64, int64) error { return nil }

func (s *fakeUserStore) UpdateUserRole(context.Context, int64, model.Role) error { return nil }

func (s *fakeUserStore) DeleteUser(context.Context, int64) error { return nil }

func (s *fakeUserStore) CountByRole(context.Context, model.Role) (int, error) { return 0, nil }

func (s *fakeUserStore) SetConnectionToken(context.Context, int64, string, time.Time) error {
	return nil
}

func (s *fakeUserStore) GetUserByConnectionToken(context.Context, string) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (s *fakeUserStore) ListUsers(context.Context) ([]*model.User, error) { return nil, nil }

func newTestMux(store *fakeUserStore) *http.ServeMux {
	handler := NewCreateUserHandler(usersService.NewUserService(store))
	mux := http.NewServeMux()
	mux.Handle("POST /users", handler)
	return mux
}

// Регистратор создает проверяющего через консоль.
func TestCreateUserOK(t *testing.T) {
	store := &fakeUserStore{users: map[int64]*model.User{
		1: {ID: 1, Name: "Admin", Role: model.RoleRegistrator},
	}, nextID: 1}
	mux := newTestMux(store)

	body := `{"name":"Inspector","email":"inspector@example.com","role":"checker"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var got model.User
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Role != model.RoleChecker {
		t.Errorf("role = %s, want %s", got.Role, model.RoleChecker)
	}
	if got.ID == 0 {
		t.Error("expected assigned user id")
	}
}

// Проверяющий не управляет пользователями.
func TestCreateUserForbidden(t *testing.T) {
	store := &fakeUserStore{users: map[int64]*model.User{
		1: {ID: 1, Name: "Checker", Role: model.RoleChecker},
	}}
	mux := newTestMux(store)

	body := `{"name":"Someone","email":"someone@example.com","role":"user"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// Неизвестная роль в теле запроса.
func TestCreateUserBadRole(t *testing.T) {
	store := &fakeUserStore{users: map[int64]*model.User{
		1: {ID: 1, Name: "Admin", Role: model.RoleRegistrator},
	}}
	mux := newTestMux(store)

	body := `{"name":"Someone","email":"someone@example.com","role":"director"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
