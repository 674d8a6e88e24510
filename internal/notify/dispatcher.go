// Package notify доставляет уведомления владельцам файлов в Telegram.
//
// Доставка асинхронная и fire-and-forget: вызов ставит задачу в очередь и
// сразу возвращается, коммит статуса никогда не ждёт внешнего канала.
// Каждая попытка, успешная или нет, оставляет запись в журнале telegram_messages.
package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uzfiles/approvalbot/internal/domain/model"
	"github.com/uzfiles/approvalbot/internal/messages"
)

// Причины отказа доставки, попадающие в журнал.
const (
	errNoTelegramID = "User or Telegram ID not found"
	errNoBot        = "Bot configuration not found"
)

const recordTimeout = 5 * time.Second

// Gateway — внешний канал доставки сообщений.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendAttachment(ctx context.Context, chatID int64, kind model.FileType, fileID, caption string) error
}

// MessageLog — журнал попыток доставки.
type MessageLog interface {
	RecordMessage(ctx context.Context, m *model.TelegramMessage) (int64, error)
}

type job struct {
	senderID       int64
	recipientID    int64
	chatID         *int64
	text           string
	isBulk         bool
	recipientCount *int
	delay          time.Duration
	attachments    []model.ResponseAttachment
}

// Dispatcher — очередь уведомлений с одним фоновым воркером.
type Dispatcher struct {
	gateway         Gateway
	log             MessageLog
	logger          *logrus.Entry
	attachmentDelay time.Duration
	bulkInterval    time.Duration

	jobs chan job
	done chan struct{}

	sleep func(time.Duration)
}

// NewDispatcher создает Dispatcher. gateway может быть nil, если бот не
// сконфигурирован: задачи тогда фиксируются в журнале как неудачные.
func NewDispatcher(gateway Gateway, log MessageLog, logger *logrus.Entry, attachmentDelay, bulkInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		gateway:         gateway,
		log:             log,
		logger:          logger,
		attachmentDelay: attachmentDelay,
		bulkInterval:    bulkInterval,
		jobs:            make(chan job, 256),
		done:            make(chan struct{}),
		sleep:           time.Sleep,
	}
}

// Start запускает фонового воркера. Воркер живёт до Stop.
func (d *Dispatcher) Start() {
	go d.worker()
}

// Stop останавливает приём задач и дожидается, пока воркер опустошит очередь.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	<-d.done
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for j := range d.jobs {
		if j.delay > 0 {
			d.sleep(j.delay)
		}
		d.deliver(j)
	}
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.jobs <- j:
	default:
		d.logger.WithFields(logrus.Fields{
			"recipient_id": j.recipientID,
		}).Warn("notification queue is full, dropping job")
	}
}

// FileStatusChanged ставит в очередь уведомление владельцу файла о смене
// статуса. Вызывается сервисом файлов после коммита перехода.
func (d *Dispatcher) FileStatusChanged(file *model.UploadedFile, newStatus model.FileStatus, adminNotes string) {
	if file.Owner == nil {
		d.logger.WithField("file_id", file.ID).Warn("file owner is not loaded, skipping notification")
		return
	}
	d.enqueue(job{
		recipientID: file.Owner.ID,
		chatID:      file.Owner.TelegramID,
		text:        messages.StatusChanged(file, newStatus, adminNotes),
	})
}

// FileStatusChangedWithAttachments дополнительно отправляет файлы-ответы
// администратора отдельными сообщениями вслед за уведомлением.
func (d *Dispatcher) FileStatusChangedWithAttachments(file *model.UploadedFile, newStatus model.FileStatus, adminNotes string, attachments []model.ResponseAttachment) {
	if file.Owner == nil {
		d.logger.WithField("file_id", file.ID).Warn("file owner is not loaded, skipping notification")
		return
	}
	d.enqueue(job{
		recipientID: file.Owner.ID,
		chatID:      file.Owner.TelegramID,
		text:        messages.StatusChanged(file, newStatus, adminNotes),
		attachments: attachments,
	})
}

// SendUserMessage ставит в очередь произвольное сообщение пользователю
// от имени администратора.
func (d *Dispatcher) SendUserMessage(senderID int64, recipient *model.User, text string) {
	d.enqueue(job{
		senderID:    senderID,
		recipientID: recipient.ID,
		chatID:      recipient.TelegramID,
		text:        text,
	})
}

// BulkSend рассылает сообщение списку получателей. Каждая доставка
// независима и разнесена во времени, частичная доставка допустима.
// Воркер выдерживает паузы последовательно, поэтому каждая задача после
// первой несёт один интервал: получатель i уходит через i*bulkInterval.
func (d *Dispatcher) BulkSend(senderID int64, recipients []*model.User, text string) {
	count := len(recipients)
	for i, recipient := range recipients {
		var delay time.Duration
		if i > 0 {
			delay = d.bulkInterval
		}
		d.enqueue(job{
			senderID:       senderID,
			recipientID:    recipient.ID,
			chatID:         recipient.TelegramID,
			text:           text,
			isBulk:         true,
			recipientCount: &count,
			delay:          delay,
		})
	}
}

func (d *Dispatcher) deliver(j job) {
	record := &model.TelegramMessage{
		SenderID:       j.senderID,
		RecipientID:    j.recipientID,
		Message:        j.text,
		TelegramChatID: j.chatID,
		IsBulk:         j.isBulk,
		RecipientCount: j.recipientCount,
	}

	switch {
	case d.gateway == nil:
		reason := errNoBot
		record.ErrorMessage = &reason
	case j.chatID == nil:
		reason := errNoTelegramID
		record.ErrorMessage = &reason
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := d.gateway.SendMessage(ctx, *j.chatID, j.text)
		cancel()
		if err != nil {
			reason := err.Error()
			record.ErrorMessage = &reason
			d.logger.WithFields(logrus.Fields{
				"recipient_id": j.recipientID,
				"chat_id":      *j.chatID,
			}).WithError(err).Error("failed to deliver notification")
		} else {
			record.SentSuccessfully = true
			d.sendAttachments(*j.chatID, j.attachments)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := d.log.RecordMessage(ctx, record); err != nil {
		d.logger.WithError(err).Error("failed to record notification attempt")
	}
}

// sendAttachments отправляет файлы-ответы с фиксированной паузой между
// ними, чтобы не упереться в лимиты Telegram.
func (d *Dispatcher) sendAttachments(chatID int64, attachments []model.ResponseAttachment) {
	for _, a := range attachments {
		d.sleep(d.attachmentDelay)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := d.gateway.SendAttachment(ctx, chatID, a.Kind, a.FileID, "📎 <b>Admin javob fayli</b>")
		cancel()
		if err != nil {
			d.logger.WithFields(logrus.Fields{
				"chat_id": chatID,
				"kind":    a.Kind,
			}).WithError(err).Error("failed to deliver attachment")
		}
	}
}
