package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/messages"
	"github.com/uzfiles/approvalbot/internal/session"
)

// fakeFlowGateway записывает отправленные сообщения.
type fakeFlowGateway struct {
	sent       []sentMsg
	resolveErr error
}

type sentMsg struct {
	chatID int64
	text   string
	kb     Keyboard
}

func (g *fakeFlowGateway) SendMessage(_ context.Context, chatID int64, text string, kb Keyboard) error {
	g.sent = append(g.sent, sentMsg{chatID: chatID, text: text, kb: kb})
	return nil
}

func (g *fakeFlowGateway) ResolveFileHandle(_ context.Context, fileID string) (string, error) {
	if g.resolveErr != nil {
		return "", g.resolveErr
	}
	return "documents/" + fileID, nil
}

func (g *fakeFlowGateway) last() sentMsg {
	if len(g.sent) == 0 {
		return sentMsg{}
	}
	return g.sent[len(g.sent)-1]
}

// fakeDirectory — справочник пользователей в памяти.
type fakeDirectory struct {
	users   map[int64]*model.User // по telegram_id
	byPhone map[string]*model.User
	nextID  int64
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[int64]*model.User{}, byPhone: map[string]*model.User{}, nextID: 1}
}

func (d *fakeDirectory) GetUserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	u, ok := d.users[telegramID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) LinkTelegramByPhone(_ context.Context, phone string, telegramID int64) (*model.User, error) {
	u, ok := d.byPhone[phone]
	if !ok {
		return nil, model.ErrNotFound
	}
	u.TelegramID = &telegramID
	d.users[telegramID] = u
	return u, nil
}

func (d *fakeDirectory) RegisterFromTelegram(_ context.Context, phone, fullName string, region *string, telegramID int64) (*model.User, error) {
	if _, ok := d.byPhone[phone]; ok {
		return nil, errors.New("duplicate phone")
	}
	u := &model.User{
		ID:          d.nextID,
		Name:        fullName,
		PhoneNumber: &phone,
		Region:      region,
		TelegramID:  &telegramID,
		Role:        model.RoleUser,
	}
	d.nextID++
	d.users[telegramID] = u
	d.byPhone[phone] = u
	return u, nil
}

func (d *fakeDirectory) CompleteConnection(_ context.Context, token string, telegramID int64) (*model.User, error) {
	for _, u := range d.byPhone {
		if u.ConnectionToken != nil && *u.ConnectionToken == token {
			u.TelegramID = &telegramID
			d.users[telegramID] = u
			return u, nil
		}
	}
	return nil, model.ErrNotFound
}

// fakeIntake принимает загрузки.
type fakeIntake struct {
	uploads []*model.UploadedFile
}

func (f *fakeIntake) CreateUpload(_ context.Context, file *model.UploadedFile) (*model.UploadedFile, error) {
	cp := *file
	cp.ID = int64(len(f.uploads) + 1)
	cp.Status = model.StatusPending
	f.uploads = append(f.uploads, &cp)
	return &cp, nil
}

func (f *fakeIntake) RecentFilesByUser(_ context.Context, userID int64, limit int) ([]*model.UploadedFile, int, error) {
	var out []*model.UploadedFile
	for _, file := range f.uploads {
		if file.UserID == userID && len(out) < limit {
			out = append(out, file)
		}
	}
	return out, len(out), nil
}

type fixture struct {
	engine   *Engine
	gateway  *fakeFlowGateway
	dir      *fakeDirectory
	intake   *fakeIntake
	sessions *session.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	gateway := &fakeFlowGateway{}
	dir := newFakeDirectory()
	intake := &fakeIntake{}
	sessions := session.NewMemoryStore(time.Hour)
	t.Cleanup(sessions.Close)

	return &fixture{
		engine:   NewEngine(sessions, dir, intake, gateway, 1536*1024*1024, logrus.NewEntry(logger)),
		gateway:  gateway,
		dir:      dir,
		intake:   intake,
		sessions: sessions,
	}
}

const chatID = int64(777)

func (f *fixture) registeredUser(t *testing.T) *model.User {
	t.Helper()
	u, err := f.dir.RegisterFromTelegram(context.Background(), "+998900000001", "Test User", nil, chatID)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// Сценарий полной регистрации: контакт, имя, регион с индексом 2.
func TestRegistrationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.engine.Start(ctx, Event{ChatID: chatID, DisplayName: "aziz"}, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.gateway.last().kb != KeyboardContact {
		t.Errorf("после /start ожидалась клавиатура контакта, получено %v", f.gateway.last().kb)
	}

	if err := f.engine.HandleContact(ctx, Event{ChatID: chatID, Contact: &Contact{Phone: "+998901234567"}}); err != nil {
		t.Fatalf("HandleContact: %v", err)
	}

	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "Aziz Aziz"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if f.gateway.last().kb != KeyboardRegions {
		t.Errorf("после имени ожидался выбор региона, получено %v", f.gateway.last().kb)
	}

	if err := f.engine.HandleRegionCallback(ctx, Event{ChatID: chatID, Callback: "region_2"}); err != nil {
		t.Fatalf("HandleRegionCallback: %v", err)
	}

	user, err := f.dir.GetUserByTelegramID(ctx, chatID)
	if err != nil {
		t.Fatalf("пользователь не создан: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q", user.Role)
	}
	if user.PhoneNumber == nil || *user.PhoneNumber != "+998901234567" {
		t.Errorf("phone = %v", user.PhoneNumber)
	}
	wantRegion, _ := model.RegionByIndex(2)
	if user.Region == nil || *user.Region != wantRegion {
		t.Errorf("region = %v, ожидался %q", user.Region, wantRegion)
	}

	// Сессия завершена.
	if _, ok := f.sessions.Get(chatID); ok {
		t.Error("сессия не очищена после регистрации")
	}
}

// Известный телефон привязывается к существующему аккаунту, второй не создаётся.
func TestRegistrationIdempotentPhoneLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	phone := "+998901234567"
	existing := &model.User{ID: 50, Name: "Halim", PhoneNumber: &phone, Role: model.RoleUser}
	f.dir.byPhone[phone] = existing

	if err := f.engine.HandleContact(ctx, Event{ChatID: chatID, Contact: &Contact{Phone: phone}}); err != nil {
		t.Fatalf("HandleContact: %v", err)
	}

	user, err := f.dir.GetUserByTelegramID(ctx, chatID)
	if err != nil {
		t.Fatalf("привязка не произошла: %v", err)
	}
	if user.ID != 50 {
		t.Errorf("создан новый пользователь вместо привязки: id=%d", user.ID)
	}
	if !strings.Contains(f.gateway.last().text, "Halim") {
		t.Errorf("неожиданный ответ: %q", f.gateway.last().text)
	}
}

// Короткое имя не двигает шаг.
func TestRegistrationShortName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.engine.HandleContact(ctx, Event{ChatID: chatID, Contact: &Contact{Phone: "+998901234567"}})
	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: " A "}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	state, ok := f.sessions.Get(chatID)
	if !ok || state.Step != session.StepAwaitingFullName {
		t.Errorf("шаг = %+v, ожидался awaiting_full_name", state)
	}
	if f.gateway.last().text != "<b>⚠️ Xatolik!</b>\n\nIltimos, to'liq ism va familiyangizni kiriting.\n\n<i>Masalan: Halimjon Hikmatjonov</i>" {
		t.Errorf("неожиданный переспрос: %q", f.gateway.last().text)
	}
}

// Истёкшая сессия: выбор региона предлагает начать заново.
func TestRegionCallbackExpiredSession(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.HandleRegionCallback(context.Background(), Event{ChatID: chatID, Callback: "region_1"}); err != nil {
		t.Fatalf("HandleRegionCallback: %v", err)
	}
	if !strings.Contains(f.gateway.last().text, "/start") {
		t.Errorf("ожидалось предложение начать заново: %q", f.gateway.last().text)
	}
}

// Сценарий загрузки: имя, затем документ 500 KB.
func TestUploadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.registeredUser(t)

	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "📤 Yuklash"}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "Report Q1"}); err != nil {
		t.Fatalf("имя файла: %v", err)
	}

	err := f.engine.HandleAttachment(ctx, Event{ChatID: chatID, Attachment: &Attachment{
		Kind:     model.FileTypeDocument,
		FileID:   "BQACAgIAAx",
		FileName: "report.pdf",
		MimeType: "application/pdf",
		Size:     500 * 1024,
	}})
	if err != nil {
		t.Fatalf("HandleAttachment: %v", err)
	}

	if len(f.intake.uploads) != 1 {
		t.Fatalf("создано %d записей", len(f.intake.uploads))
	}
	up := f.intake.uploads[0]
	if up.Status != model.StatusPending {
		t.Errorf("status = %q", up.Status)
	}
	if up.Name != "Report Q1" || up.UserID != user.ID {
		t.Errorf("запись: %+v", up)
	}
	if up.FilePath != "documents/BQACAgIAAx" {
		t.Errorf("file_path = %q", up.FilePath)
	}
	if up.FileType != model.FileTypeDocument {
		t.Errorf("file_type = %q", up.FileType)
	}
	if got := messages.UploadDone(up, user.Name); !strings.Contains(got, "document") {
		t.Errorf("в подтверждении нет типа файла: %q", got)
	}
	if _, ok := f.sessions.Get(chatID); ok {
		t.Error("сессия не очищена после загрузки")
	}
}

// Файл больше лимита: записи нет, сессия остаётся на шаге AwaitingFile.
func TestUploadFileTooLarge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registeredUser(t)

	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "📤 Yuklash"})
	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "Katta fayl"})

	err := f.engine.HandleAttachment(ctx, Event{ChatID: chatID, Attachment: &Attachment{
		Kind:   model.FileTypeVideo,
		FileID: "huge",
		Size:   2 * 1024 * 1024 * 1024,
	}})
	if err != nil {
		t.Fatalf("HandleAttachment: %v", err)
	}

	if len(f.intake.uploads) != 0 {
		t.Error("запись создана для файла сверх лимита")
	}
	state, ok := f.sessions.Get(chatID)
	if !ok || state.Step != session.StepAwaitingFile {
		t.Errorf("сессия: %+v, ожидался awaiting_file", state)
	}
}

// Ошибка получения ссылки: записи нет, можно повторить отправку.
func TestUploadResolveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registeredUser(t)
	f.gateway.resolveErr = errors.New("telegram: file is too big")

	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "📤 Yuklash"})
	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "Hujjat"})

	err := f.engine.HandleAttachment(ctx, Event{ChatID: chatID, Attachment: &Attachment{
		Kind:   model.FileTypeDocument,
		FileID: "x",
		Size:   1024,
	}})
	if err != nil {
		t.Fatalf("HandleAttachment: %v", err)
	}

	if len(f.intake.uploads) != 0 {
		t.Error("запись создана при ошибке получения ссылки")
	}
	state, ok := f.sessions.Get(chatID)
	if !ok || state.Step != session.StepAwaitingFile {
		t.Errorf("сессия: %+v, ожидался awaiting_file", state)
	}
}

// Текст вместо файла на шаге AwaitingFile — переспрос без смены шага.
func TestUploadTextInsteadOfFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registeredUser(t)

	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "📤 Yuklash"})
	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "Hujjat"})

	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "mana fayl"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	state, ok := f.sessions.Get(chatID)
	if !ok || state.Step != session.StepAwaitingFile {
		t.Errorf("сессия: %+v", state)
	}
}

// Отмена из любого шага загрузки очищает сессию без создания записи.
func TestUploadCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registeredUser(t)

	_ = f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "📤 Yuklash"})
	if err := f.engine.HandleText(ctx, Event{ChatID: chatID, Text: "❌ Bekor qilish"}); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, ok := f.sessions.Get(chatID); ok {
		t.Error("сессия не очищена после отмены")
	}
	if len(f.intake.uploads) != 0 {
		t.Error("создана запись после отмены")
	}
	if !strings.Contains(f.gateway.last().text, "Bekor qilindi") {
		t.Errorf("ответ: %q", f.gateway.last().text)
	}
}

// Загрузка без регистрации отправляет на регистрацию.
func TestUploadUnregistered(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.HandleText(context.Background(), Event{ChatID: chatID, Text: "📤 Yuklash"}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.gateway.last().kb != KeyboardContact {
		t.Errorf("ожидалась клавиатура контакта, получено %v", f.gateway.last().kb)
	}
	state, ok := f.sessions.Get(chatID)
	if !ok || state.Flow != session.FlowRegistration || state.Step != session.StepAwaitingContact {
		t.Errorf("сессия: %+v", state)
	}
}

// /start с токеном привязывает веб-аккаунт к чату.
func TestStartWithConnectionToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token := "abc123"
	phone := "+998905555555"
	f.dir.byPhone[phone] = &model.User{ID: 9, Name: "Web User", PhoneNumber: &phone, ConnectionToken: &token}

	if err := f.engine.Start(ctx, Event{ChatID: chatID}, token); err != nil {
		t.Fatalf("Start: %v", err)
	}

	user, err := f.dir.GetUserByTelegramID(ctx, chatID)
	if err != nil || user.ID != 9 {
		t.Errorf("аккаунт не привязан: %v, %v", user, err)
	}
}

// Повторный /start зарегистрированного пользователя.
func TestStartWelcomeBack(t *testing.T) {
	f := newFixture(t)
	f.registeredUser(t)

	if err := f.engine.Start(context.Background(), Event{ChatID: chatID}, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.gateway.last().kb != KeyboardMain {
		t.Errorf("ожидалось главное меню, получено %v", f.gateway.last().kb)
	}
	if !strings.Contains(f.gateway.last().text, "Test User") {
		t.Errorf("ответ: %q", f.gateway.last().text)
	}
}
