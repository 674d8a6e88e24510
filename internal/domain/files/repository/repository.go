package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

const fileColumns = `f.id, f.user_id, f.name, f.original_filename, f.telegram_file_id, f.file_path,
       f.file_type, f.mime_type, f.file_size, f.status, f.admin_notes,
       f.registered_count, f.not_registered_count, f.accepted_note, f.created_at, f.updated_at`

// FileRepository реализация хранилища файлов в PostgreSQL
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository создает новый экземпляр FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

func scanFile(row pgx.Row) (*model.UploadedFile, error) {
	var f model.UploadedFile
	err := row.Scan(
		&f.ID, &f.UserID, &f.Name, &f.OriginalFilename, &f.TelegramFileID, &f.FilePath,
		&f.FileType, &f.MimeType, &f.FileSize, &f.Status, &f.AdminNotes,
		&f.RegisteredCount, &f.NotRegisteredCount, &f.AcceptedNote, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// CreateFile сохраняет метаданные загруженного файла и возвращает его ID.
// Сам файл остаётся на серверах Telegram.
func (r *FileRepository) CreateFile(ctx context.Context, f *model.UploadedFile) (int64, error) {
	query := `
        INSERT INTO uploaded_files (user_id, name, original_filename, telegram_file_id, file_path,
                                    file_type, mime_type, file_size, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var fileID int64
	err := r.db.QueryRow(ctx, query,
		f.UserID, f.Name, f.OriginalFilename, f.TelegramFileID, f.FilePath,
		f.FileType, f.MimeType, f.FileSize, f.Status).
		Scan(&fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	return fileID, nil
}

// GetFileByID возвращает файл вместе с владельцем.
func (r *FileRepository) GetFileByID(ctx context.Context, fileID int64) (*model.UploadedFile, error) {
	query := fmt.Sprintf(`
        SELECT %s, u.id, u.name, u.email, u.region, u.telegram_id, u.role
        FROM uploaded_files f
        JOIN users u ON u.id = f.user_id
        WHERE f.id = $1
    `, fileColumns)

	var f model.UploadedFile
	var owner model.User
	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&f.ID, &f.UserID, &f.Name, &f.OriginalFilename, &f.TelegramFileID, &f.FilePath,
		&f.FileType, &f.MimeType, &f.FileSize, &f.Status, &f.AdminNotes,
		&f.RegisteredCount, &f.NotRegisteredCount, &f.AcceptedNote, &f.CreatedAt, &f.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Email, &owner.Region, &owner.TelegramID, &owner.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file by ID: %w", err)
	}
	f.Owner = &owner
	return &f, nil
}

// TransitionStatus переводит файл из статуса from в статус to одним
// условным UPDATE. Возвращает false, если файл уже не в статусе from:
// так конкурирующие проверяющие не затирают решения друг друга.
func (r *FileRepository) TransitionStatus(ctx context.Context, fileID int64, from, to model.FileStatus, adminNotes *string) (bool, error) {
	query := `
        UPDATE uploaded_files
        SET status = $1, admin_notes = COALESCE($2, admin_notes), updated_at = now()
        WHERE id = $3 AND status = $4
    `
	tag, err := r.db.Exec(ctx, query, to, adminNotes, fileID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition file status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AcceptFromWaiting переводит файл waiting -> accepted вместе с итогами
// регистрации. Тот же условный UPDATE, что и TransitionStatus.
func (r *FileRepository) AcceptFromWaiting(ctx context.Context, fileID int64, registered, notRegistered int, acceptedNote *string) (bool, error) {
	query := `
        UPDATE uploaded_files
        SET status = $1, registered_count = $2, not_registered_count = $3,
            accepted_note = $4, updated_at = now()
        WHERE id = $5 AND status = $6
    `
	tag, err := r.db.Exec(ctx, query,
		model.StatusAccepted, registered, notRegistered, acceptedNote, fileID, model.StatusWaiting)
	if err != nil {
		return false, fmt.Errorf("failed to accept file: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatusDirect устанавливает произвольный статус в транзакции с
// блокировкой строки и возвращает прежний статус.
func (r *FileRepository) UpdateStatusDirect(ctx context.Context, fileID int64, status model.FileStatus, adminNotes *string, registered, notRegistered *int, acceptedNote *string) (model.FileStatus, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oldStatus model.FileStatus
	err = tx.QueryRow(ctx, "SELECT status FROM uploaded_files WHERE id = $1 FOR UPDATE", fileID).
		Scan(&oldStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to lock file row: %w", err)
	}

	query := `
        UPDATE uploaded_files
        SET status = $1, admin_notes = $2,
            registered_count = COALESCE($3, registered_count),
            not_registered_count = COALESCE($4, not_registered_count),
            accepted_note = COALESCE($5, accepted_note),
            updated_at = now()
        WHERE id = $6
    `
	if _, err := tx.Exec(ctx, query, status, adminNotes, registered, notRegistered, acceptedNote, fileID); err != nil {
		return "", fmt.Errorf("failed to update file status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return oldStatus, nil
}

// ListFilter задаёт условия выборки файлов.
type ListFilter struct {
	Status   model.FileStatus
	Region   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// ListFiles возвращает файлы с владельцами, новые первыми.
func (r *FileRepository) ListFiles(ctx context.Context, filter ListFilter) ([]*model.UploadedFile, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "f.status = "+arg(filter.Status))
	}
	if filter.Region != "" {
		conds = append(conds, "u.region = "+arg(filter.Region))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		p := arg(pattern)
		conds = append(conds, fmt.Sprintf("(f.name ILIKE %s OR f.original_filename ILIKE %s OR u.name ILIKE %s)", p, p, p))
	}
	if filter.DateFrom != nil {
		conds = append(conds, "f.created_at >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conds = append(conds, "f.created_at < "+arg(*filter.DateTo))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 15
	}

	query := fmt.Sprintf(`
        SELECT %s, u.id, u.name, u.email, u.region, u.telegram_id, u.role
        FROM uploaded_files f
        JOIN users u ON u.id = f.user_id
        %s
        ORDER BY f.created_at DESC
        LIMIT %s OFFSET %s
    `, fileColumns, where, arg(limit), arg(filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*model.UploadedFile
	for rows.Next() {
		var f model.UploadedFile
		var owner model.User
		err := rows.Scan(
			&f.ID, &f.UserID, &f.Name, &f.OriginalFilename, &f.TelegramFileID, &f.FilePath,
			&f.FileType, &f.MimeType, &f.FileSize, &f.Status, &f.AdminNotes,
			&f.RegisteredCount, &f.NotRegisteredCount, &f.AcceptedNote, &f.CreatedAt, &f.UpdatedAt,
			&owner.ID, &owner.Name, &owner.Email, &owner.Region, &owner.TelegramID, &owner.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.Owner = &owner
		files = append(files, &f)
	}
	return files, rows.Err()
}

// RecentFilesByUser возвращает последние файлы пользователя для списка в боте.
func (r *FileRepository) RecentFilesByUser(ctx context.Context, userID int64, limit int) ([]*model.UploadedFile, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM uploaded_files f
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC
        LIMIT $2
    `, fileColumns)

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent files: %w", err)
	}
	defer rows.Close()

	var files []*model.UploadedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountFilesByUser возвращает общее число файлов пользователя.
func (r *FileRepository) CountFilesByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM uploaded_files WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user files: %w", err)
	}
	return count, nil
}

// DeleteFile удаляет запись о файле.
func (r *FileRepository) DeleteFile(ctx context.Context, fileID int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM uploaded_files WHERE id = $1", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CountByStatus возвращает количество файлов в каждом статусе.
func (r *FileRepository) CountByStatus(ctx context.Context) (map[model.FileStatus]int, error) {
	rows, err := r.db.Query(ctx, "SELECT status, count(*) FROM uploaded_files GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count files by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.FileStatus]int)
	for rows.Next() {
		var status model.FileStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
