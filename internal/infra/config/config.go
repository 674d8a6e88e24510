package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config описывает полную конфигурацию приложения.
// Значения читаются из yaml-файла, после чего чувствительные поля
// (токен бота, пароль БД) могут быть переопределены переменными окружения.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	TelegramBot struct {
		Token         string        `yaml:"token"`
		Mode          string        `yaml:"mode"` // polling | webhook
		WebhookURL    string        `yaml:"webhook_url"`
		WebhookListen string        `yaml:"webhook_listen"`
		PollInterval  time.Duration `yaml:"poll_interval"`
		Debug         bool          `yaml:"debug"`
	} `yaml:"telegram_bot"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
	} `yaml:"database"`
	Workflow struct {
		SessionTTL       time.Duration `yaml:"session_ttl"`
		MaxFileSize      int64         `yaml:"max_file_size"`
		BulkSendInterval time.Duration `yaml:"bulk_send_interval"`
		AttachmentDelay  time.Duration `yaml:"attachment_delay"`
	} `yaml:"workflow"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
	} `yaml:"logging"`
}

// Значения по умолчанию для рабочего процесса.
const (
	defaultSessionTTL       = time.Hour
	defaultMaxFileSize      = 1536 * 1024 * 1024 // 1.5 GB, лимит Telegram Bot API
	defaultBulkSendInterval = time.Second
	defaultAttachmentDelay  = 500 * time.Millisecond
	defaultPollInterval     = time.Second
)

func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			fmt.Println("f.Close() failed ", err)
		}
	}(f)

	config := &Config{}
	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnv()

	if config.TelegramBot.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.TelegramBot.Mode == "" {
		c.TelegramBot.Mode = "polling"
	}
	if c.TelegramBot.PollInterval == 0 {
		c.TelegramBot.PollInterval = defaultPollInterval
	}
	if c.Workflow.SessionTTL == 0 {
		c.Workflow.SessionTTL = defaultSessionTTL
	}
	if c.Workflow.MaxFileSize == 0 {
		c.Workflow.MaxFileSize = defaultMaxFileSize
	}
	if c.Workflow.BulkSendInterval == 0 {
		c.Workflow.BulkSendInterval = defaultBulkSendInterval
	}
	if c.Workflow.AttachmentDelay == 0 {
		c.Workflow.AttachmentDelay = defaultAttachmentDelay
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// applyEnv переопределяет секреты значениями из окружения.
// .env подхватывается, если лежит рядом с бинарником.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramBot.Token = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

// DatabaseURL собирает строку подключения к Postgres для pgxpool.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}
