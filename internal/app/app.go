package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v4"

	"github.com/uzfiles/approvalbot/internal/app/handlers/http/approve_checker_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/approve_registrator_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/bulk_send_message_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/connect_link_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/create_user_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/delete_file_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/delete_user_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/get_file_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/list_files_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/list_messages_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/list_users_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/reject_file_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/send_message_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/stats_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/update_file_status_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/http/update_user_role_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/telegram/contact_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/telegram/region_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/telegram/start_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/telegram/text_handler"
	"github.com/uzfiles/approvalbot/internal/app/handlers/telegram/upload_file_handler"
	filesRepo "github.com/uzfiles/approvalbot/internal/domain/files/repository"
	filesService "github.com/uzfiles/approvalbot/internal/domain/files/service"
	msgRepo "github.com/uzfiles/approvalbot/internal/domain/notifications/repository"
	usersRepo "github.com/uzfiles/approvalbot/internal/domain/users/repository"
	usersService "github.com/uzfiles/approvalbot/internal/domain/users/service"
	"github.com/uzfiles/approvalbot/internal/flow"
	"github.com/uzfiles/approvalbot/internal/infra/config"
	"github.com/uzfiles/approvalbot/internal/infra/logging"
	"github.com/uzfiles/approvalbot/internal/middleware"
	"github.com/uzfiles/approvalbot/internal/notify"
	"github.com/uzfiles/approvalbot/internal/session"
	"github.com/uzfiles/approvalbot/internal/telegram"
)

// Services собирает доменные сервисы приложения
type Services struct {
	userService *usersService.UserService
	fileService *filesService.FileService
}

// App связывает бота, HTTP-консоль, базу и фоновую доставку уведомлений
type App struct {
	config     *config.Config
	bot        *telebot.Bot
	db         *pgxpool.Pool
	server     *http.Server
	logger     *logrus.Entry
	sessions   *session.MemoryStore
	dispatcher *notify.Dispatcher
	engine     *flow.Engine
	messageLog *msgRepo.MessageRepository

	Services
}

// NewApp создает приложение из файла конфигурации
func NewApp(configPath string) (*App, error) {
	configImpl, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config.LoadConfig: %w", err)
	}

	logger, err := logging.Setup(configImpl.Logging.Level, configImpl.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logging.Setup: %w", err)
	}

	db, err := InitDatabase(configImpl, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	poller, err := telegram.NewPoller(configImpl)
	if err != nil {
		return nil, fmt.Errorf("telegram.NewPoller: %w", err)
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  configImpl.TelegramBot.Token,
		Poller: poller,
	})
	if err != nil {
		return nil, fmt.Errorf("telebot.NewBot: %w", err)
	}

	app := &App{
		config: configImpl,
		bot:    bot,
		db:     db,
		logger: logger,
	}

	app.initServices()

	return app, nil
}

// Функция для инициализации сервисов, репозиториев и фоновых компонентов
func (app *App) initServices() {
	// Инициализация репозиториев
	userRepo := usersRepo.NewUserRepository(app.db)
	fileRepo := filesRepo.NewFileRepository(app.db)
	messageRepo := msgRepo.NewMessageRepository(app.db)
	app.messageLog = messageRepo

	gateway := telegram.NewGateway(app.bot)

	app.dispatcher = notify.NewDispatcher(
		gateway.Notify(),
		messageRepo,
		app.logger,
		app.config.Workflow.AttachmentDelay,
		app.config.Workflow.BulkSendInterval,
	)

	// Инициализация сервисов
	app.userService = usersService.NewUserService(userRepo)
	app.fileService = filesService.NewFileService(fileRepo, app.dispatcher)

	app.sessions = session.NewMemoryStore(app.config.Workflow.SessionTTL)
	app.engine = flow.NewEngine(
		app.sessions,
		app.userService,
		app.fileService,
		gateway,
		app.config.Workflow.MaxFileSize,
		app.logger,
	)
}

// ListenAndServeTelegram запускает бота
func (app *App) ListenAndServeTelegram() {
	app.bootstrapHandlersTelegram()
	go app.bot.Start()
}

// bootstrapHandlersTelegram регистрирует обработчики бота
func (app *App) bootstrapHandlersTelegram() {
	app.bot.Use(middleware.Recover(app.logger))
	if app.config.TelegramBot.Debug {
		app.bot.Use(middleware.Logger(app.logger))
	}

	app.bot.Handle("/start", start_handler.NewStartHandler(app.engine).GetHandlerFunc())
	app.bot.Handle(telebot.OnContact, contact_handler.NewContactHandler(app.engine).GetHandlerFunc())
	app.bot.Handle(telebot.OnText, text_handler.NewTextHandler(app.engine).GetHandlerFunc())

	// Все типы вложений идут через один обработчик загрузки
	uploads := upload_file_handler.NewUploadFileHandler(app.engine).GetHandlerFunc()
	app.bot.Handle(telebot.OnDocument, uploads)
	app.bot.Handle(telebot.OnPhoto, uploads)
	app.bot.Handle(telebot.OnVideo, uploads)
	app.bot.Handle(telebot.OnAudio, uploads)
	app.bot.Handle(telebot.OnVoice, uploads)

	app.bot.Handle(telebot.OnCallback, region_handler.NewRegionHandler(app.engine).GetHandlerFunc())
}

// ListenAndServeHTTP запускает консоль согласования
func (app *App) ListenAndServeHTTP() error {
	mx := http.NewServeMux()

	mx.Handle("GET /approval/files", list_files_handler.NewListFilesHandler(app.userService, app.fileService))
	mx.Handle("GET /approval/files/{id}", get_file_handler.NewGetFileHandler(app.userService, app.fileService))
	mx.Handle("DELETE /approval/files/{id}", delete_file_handler.NewDeleteFileHandler(app.userService, app.fileService))
	mx.Handle("POST /approval/files/{id}/approve-checker", approve_checker_handler.NewApproveCheckerHandler(app.userService, app.fileService))
	mx.Handle("POST /approval/files/{id}/approve-registrator", approve_registrator_handler.NewApproveRegistratorHandler(app.userService, app.fileService))
	mx.Handle("POST /approval/files/{id}/reject", reject_file_handler.NewRejectFileHandler(app.userService, app.fileService))
	mx.Handle("POST /approval/files/{id}/status", update_file_status_handler.NewUpdateFileStatusHandler(app.userService, app.fileService))
	mx.Handle("GET /approval/stats", stats_handler.NewStatsHandler(app.userService, app.fileService))

	mx.Handle("GET /users", list_users_handler.NewListUsersHandler(app.userService))
	mx.Handle("POST /users", create_user_handler.NewCreateUserHandler(app.userService))
	mx.Handle("POST /users/{id}/role", update_user_role_handler.NewUpdateUserRoleHandler(app.userService))
	mx.Handle("DELETE /users/{id}", delete_user_handler.NewDeleteUserHandler(app.userService))
	mx.Handle("POST /users/{id}/connect-link", connect_link_handler.NewConnectLinkHandler(app.userService, app.bot.Me.Username))
	mx.Handle("GET /users/{id}/messages", list_messages_handler.NewListMessagesHandler(app.userService, app.messageLog))

	mx.Handle("POST /messages/send", send_message_handler.NewSendMessageHandler(app.userService, app.dispatcher))
	mx.Handle("POST /messages/bulk", bulk_send_message_handler.NewBulkSendMessageHandler(app.userService, app.dispatcher))

	app.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler: mx,
	}

	return app.server.ListenAndServe()
}

// ListenAndServe запускает доставку уведомлений, бота и HTTP-сервер.
// Блокируется до остановки HTTP-сервера.
func (app *App) ListenAndServe() error {
	app.dispatcher.Start()
	app.ListenAndServeTelegram()

	if err := app.ListenAndServeHTTP(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown останавливает компоненты в порядке, обратном запуску
func (app *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if app.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("server.Shutdown: %w", err)
		}
	}

	app.bot.Stop()
	app.dispatcher.Stop()
	app.sessions.Close()
	app.db.Close()

	return firstErr
}
