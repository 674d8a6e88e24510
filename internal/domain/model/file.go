package model

import "time"

// FileStatus — статус загруженного файла в цикле согласования.
type FileStatus string

const (
	StatusPending  FileStatus = "pending"
	StatusWaiting  FileStatus = "waiting"
	StatusAccepted FileStatus = "accepted"
	StatusRejected FileStatus = "rejected"
)

// AllStatuses возвращает все допустимые статусы файла.
func AllStatuses() []FileStatus {
	return []FileStatus{StatusPending, StatusWaiting, StatusAccepted, StatusRejected}
}

// Valid сообщает, входит ли статус в допустимый набор.
func (s FileStatus) Valid() bool {
	switch s {
	case StatusPending, StatusWaiting, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным: из него нет переходов.
func (s FileStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// FileType — тип вложения, присланного в чат.
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypePhoto    FileType = "photo"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeVoice    FileType = "voice"
)

// Valid сообщает, поддерживается ли тип вложения.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeDocument, FileTypePhoto, FileTypeVideo, FileTypeAudio, FileTypeVoice:
		return true
	}
	return false
}

// ResponseAttachment — файл-ответ администратора, пересылаемый владельцу
// вместе с уведомлением о решении. Хранится на серверах Telegram.
type ResponseAttachment struct {
	Kind   FileType `json:"kind"`
	FileID string   `json:"telegram_file_id"`
}

// UploadedFile — файл, присланный пользователем через бота. Содержимое
// остаётся на серверах Telegram: храним только telegram_file_id и
// разрешённый file_path, по которым содержимое можно получить повторно.
type UploadedFile struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	Name               string     `json:"name"`
	OriginalFilename   string     `json:"original_filename"`
	TelegramFileID     string     `json:"telegram_file_id"`
	FilePath           string     `json:"file_path"`
	FileType           FileType   `json:"file_type"`
	MimeType           *string    `json:"mime_type,omitempty"`
	FileSize           int64      `json:"file_size"`
	Status             FileStatus `json:"status"`
	AdminNotes         *string    `json:"admin_notes,omitempty"`
	RegisteredCount    int        `json:"registered_count"`
	NotRegisteredCount int        `json:"not_registered_count"`
	AcceptedNote       *string    `json:"accepted_note,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Owner заполняется запросами со связкой по users (список файлов в консоли).
	Owner *User `json:"user,omitempty"`
}

// CanBeApprovedByChecker проверяет предусловие перехода pending -> waiting.
func (f *UploadedFile) CanBeApprovedByChecker() bool {
	return f != nil && f.Status == StatusPending
}

// CanBeApprovedByRegistrator проверяет предусловие перехода waiting -> accepted.
func (f *UploadedFile) CanBeApprovedByRegistrator() bool {
	return f != nil && f.Status == StatusWaiting
}
